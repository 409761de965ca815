package ipd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/domain/bed"
	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/domain/patient"
	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/domain/visit"
	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/platform/db"
	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/platform/idgen"
)

var (
	ErrNotFound             = errors.New("admission not found")
	ErrBedNotAvailable      = errors.New("bed is not available")
	ErrNotAdmitted          = errors.New("admission is not in admitted state")
	ErrVisitPatientMismatch = errors.New("visit belongs to a different patient")
)

// BedStore is the slice of the bed repository the state machine drives. All
// bed status flips go through CompareAndSetStatus so that concurrent
// operations on the same bed serialize on the row.
type BedStore interface {
	GetByID(ctx context.Context, id int) (*bed.Bed, error)
	CompareAndSetStatus(ctx context.Context, id int, from, to bed.Status) (bool, error)
}

// PatientGetter resolves patient references.
type PatientGetter interface {
	Get(ctx context.Context, patientID string) (*patient.Patient, error)
}

// VisitGetter resolves originating visit references.
type VisitGetter interface {
	Get(ctx context.Context, visitID string) (*visit.Visit, error)
}

type Service struct {
	admissions Repository
	beds       BedStore
	patients   PatientGetter
	visits     VisitGetter
	ids        idgen.IDSource
	tx         db.TxRunner
	now        func() time.Time
}

func NewService(admissions Repository, beds BedStore, patients PatientGetter, visits VisitGetter, ids idgen.IDSource, tx db.TxRunner) *Service {
	return &Service{
		admissions: admissions,
		beds:       beds,
		patients:   patients,
		visits:     visits,
		ids:        ids,
		tx:         tx,
		now:        time.Now,
	}
}

// AdmitRequest carries the front-desk input for a new admission.
type AdmitRequest struct {
	PatientID  string          `json:"patient_id"`
	BedID      int             `json:"bed_id"`
	FileCharge decimal.Decimal `json:"file_charge"`
	VisitID    *string         `json:"visit_id,omitempty"`
	Diagnosis  *string         `json:"diagnosis,omitempty"`
}

// Admit creates an admission and occupies the bed in one transaction. When
// two admits race for the same bed, the conditional bed update lets exactly
// one succeed; the other fails with ErrBedNotAvailable.
func (s *Service) Admit(ctx context.Context, req AdmitRequest) (*Admission, error) {
	if req.FileCharge.IsNegative() {
		return nil, fmt.Errorf("file charge must not be negative")
	}

	if _, err := s.patients.Get(ctx, req.PatientID); err != nil {
		return nil, fmt.Errorf("patient %s: %w", req.PatientID, err)
	}

	if req.VisitID != nil {
		v, err := s.visits.Get(ctx, *req.VisitID)
		if err != nil {
			return nil, fmt.Errorf("visit %s: %w", *req.VisitID, err)
		}
		if v.PatientID != req.PatientID {
			return nil, ErrVisitPatientMismatch
		}
	}

	a := &Admission{
		AdmissionID:   s.ids.AdmissionID(),
		PatientID:     req.PatientID,
		VisitID:       req.VisitID,
		BedID:         req.BedID,
		AdmissionDate: s.now(),
		FileCharge:    req.FileCharge.RoundBank(2),
		Status:        StatusAdmitted,
		Diagnosis:     req.Diagnosis,
	}

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.occupyBed(ctx, req.BedID); err != nil {
			return err
		}
		return s.admissions.Create(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) occupyBed(ctx context.Context, bedID int) error {
	ok, err := s.beds.CompareAndSetStatus(ctx, bedID, bed.StatusAvailable, bed.StatusOccupied)
	if err != nil {
		return err
	}
	if !ok {
		// Distinguish a missing bed from a contended one.
		b, err := s.beds.GetByID(ctx, bedID)
		if err != nil {
			return fmt.Errorf("bed %d: %w", bedID, err)
		}
		return fmt.Errorf("%w: bed %s is %s", ErrBedNotAvailable, b.BedNumber, b.Status)
	}
	return nil
}

// ChangeBed moves an admitted patient to another available bed. The old bed
// release, the new bed claim, and the admission update are atomic together.
func (s *Service) ChangeBed(ctx context.Context, admissionID string, newBedID int) (*Admission, error) {
	var a *Admission
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		a, err = s.admissions.GetByID(ctx, admissionID)
		if err != nil {
			return err
		}
		if a.Status != StatusAdmitted {
			return fmt.Errorf("%w: status is %s", ErrNotAdmitted, a.Status)
		}
		if a.BedID == newBedID {
			return fmt.Errorf("%w: admission already occupies bed %d", ErrBedNotAvailable, newBedID)
		}

		if err := s.occupyBed(ctx, newBedID); err != nil {
			return err
		}
		if _, err := s.beds.CompareAndSetStatus(ctx, a.BedID, bed.StatusOccupied, bed.StatusAvailable); err != nil {
			return err
		}
		ok, err := s.admissions.SetBed(ctx, admissionID, newBedID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: admission changed concurrently", ErrNotAdmitted)
		}
		a.BedID = newBedID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Discharge ends the stay: status to DISCHARGED, discharge timestamp set,
// bed released. Atomic; fails when the admission is not currently admitted.
func (s *Service) Discharge(ctx context.Context, admissionID string, at *time.Time) (*Admission, error) {
	when := s.now()
	if at != nil {
		when = *at
	}

	var a *Admission
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		a, err = s.admissions.GetByID(ctx, admissionID)
		if err != nil {
			return err
		}
		if a.Status != StatusAdmitted {
			return fmt.Errorf("%w: status is %s", ErrNotAdmitted, a.Status)
		}

		ok, err := s.admissions.SetDischarged(ctx, admissionID, when)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: admission changed concurrently", ErrNotAdmitted)
		}

		if _, err := s.beds.CompareAndSetStatus(ctx, a.BedID, bed.StatusOccupied, bed.StatusAvailable); err != nil {
			return err
		}

		a.Status = StatusDischarged
		a.DischargeDate = &when
		return nil
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ComputeBedCharges prices the bed usage of an admission: whole days between
// admission and discharge (or now), minimum one day, times the bed's per-day
// rate. Pure read.
func (s *Service) ComputeBedCharges(ctx context.Context, admissionID string) (*BedChargeSummary, error) {
	a, err := s.admissions.GetByID(ctx, admissionID)
	if err != nil {
		return nil, err
	}

	b, err := s.beds.GetByID(ctx, a.BedID)
	if err != nil {
		return nil, fmt.Errorf("bed %d: %w", a.BedID, err)
	}

	end := s.now()
	if a.DischargeDate != nil {
		end = *a.DischargeDate
	}

	days := int(end.Sub(a.AdmissionDate).Hours() / 24)
	if days < 1 {
		days = 1
	}

	total := b.PerDayCharge.Mul(decimal.NewFromInt(int64(days))).RoundBank(2)
	return &BedChargeSummary{
		AdmissionID:  a.AdmissionID,
		BedID:        b.ID,
		Days:         days,
		PerDayCharge: b.PerDayCharge,
		Total:        total,
	}, nil
}

func (s *Service) Get(ctx context.Context, admissionID string) (*Admission, error) {
	return s.admissions.GetByID(ctx, admissionID)
}

func (s *Service) ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]*Admission, int, error) {
	return s.admissions.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListActive(ctx context.Context, limit, offset int) ([]*Admission, int, error) {
	return s.admissions.ListActive(ctx, limit, offset)
}
