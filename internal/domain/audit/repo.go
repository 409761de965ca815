package audit

import "context"

// Repository persists audit entries. Append only; no update or delete.
type Repository interface {
	Create(ctx context.Context, e *Entry) error
	GetByID(ctx context.Context, logID string) (*Entry, error)
	ListByRecord(ctx context.Context, tableName, recordID string) ([]*Entry, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*Entry, error)
	ListByAction(ctx context.Context, action ActionType, limit int) ([]*Entry, error)
	ListRecent(ctx context.Context, limit int) ([]*Entry, error)
}
