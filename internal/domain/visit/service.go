package visit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/domain/doctor"
	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/domain/patient"
	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/platform/db"
	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/platform/idgen"
)

var (
	ErrNotFound          = errors.New("visit not found")
	ErrInvalidTransition = errors.New("invalid visit status transition")
)

// PatientGetter resolves patient references.
type PatientGetter interface {
	Get(ctx context.Context, patientID string) (*patient.Patient, error)
}

// DoctorGetter resolves doctor references for fee snapshots.
type DoctorGetter interface {
	Get(ctx context.Context, doctorID string) (*doctor.Doctor, error)
}

type Service struct {
	repo     Repository
	patients PatientGetter
	doctors  DoctorGetter
	ids      idgen.IDSource
	tx       db.TxRunner
	now      func() time.Time
}

func NewService(repo Repository, patients PatientGetter, doctors DoctorGetter, ids idgen.IDSource, tx db.TxRunner) *Service {
	return &Service{
		repo:     repo,
		patients: patients,
		doctors:  doctors,
		ids:      ids,
		tx:       tx,
		now:      time.Now,
	}
}

// Create registers an OPD visit. The serial number is the next rank in the
// doctor's queue for the day, and the consultation fee is snapshotted from
// the doctor's current schedule. Serial assignment and the insert run in one
// transaction so two concurrent registrations cannot share a serial.
func (s *Service) Create(ctx context.Context, patientID, doctorID string, visitType Type) (*Visit, error) {
	if !validTypes[visitType] {
		return nil, fmt.Errorf("invalid visit type: %s", visitType)
	}

	if _, err := s.patients.Get(ctx, patientID); err != nil {
		return nil, fmt.Errorf("patient %s: %w", patientID, err)
	}

	doc, err := s.doctors.Get(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("doctor %s: %w", doctorID, err)
	}

	fee := doc.NewPatientFee
	if visitType == TypeOPDFollowup {
		fee = doc.FollowupFee
	}

	v := &Visit{
		VisitID:   s.ids.VisitID(),
		PatientID: patientID,
		DoctorID:  doctorID,
		VisitDate: s.now(),
		VisitType: visitType,
		OPDFee:    fee.RoundBank(2),
		Status:    StatusActive,
	}

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		max, err := s.repo.MaxSerial(ctx, doctorID, v.VisitDate)
		if err != nil {
			return err
		}
		v.SerialNumber = max + 1
		return s.repo.Create(ctx, v)
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Service) Get(ctx context.Context, visitID string) (*Visit, error) {
	return s.repo.GetByID(ctx, visitID)
}

// Complete marks an active visit as completed.
func (s *Service) Complete(ctx context.Context, visitID string) error {
	return s.transition(ctx, visitID, StatusCompleted)
}

// Cancel marks an active visit as cancelled.
func (s *Service) Cancel(ctx context.Context, visitID string) error {
	return s.transition(ctx, visitID, StatusCancelled)
}

func (s *Service) transition(ctx context.Context, visitID string, to Status) error {
	v, err := s.repo.GetByID(ctx, visitID)
	if err != nil {
		return err
	}
	if v.Status != StatusActive {
		return fmt.Errorf("%w: visit is %s", ErrInvalidTransition, v.Status)
	}
	return s.repo.UpdateStatus(ctx, visitID, to)
}

func (s *Service) ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]*Visit, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}

// DoctorQueue returns the doctor's visits for a day in serial order.
func (s *Service) DoctorQueue(ctx context.Context, doctorID string, day time.Time) ([]*Visit, error) {
	return s.repo.ListByDoctorAndDate(ctx, doctorID, day)
}
