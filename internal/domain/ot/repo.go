package ot

import "context"

type Repository interface {
	Create(ctx context.Context, p *Procedure) error
	GetByID(ctx context.Context, otID string) (*Procedure, error)
	ListByAdmission(ctx context.Context, admissionID string) ([]*Procedure, error)
}
