package discharge

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/domain/billing"
	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/domain/ipd"
	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/domain/patient"
	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/domain/payment"
	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/domain/visit"
)

const (
	groupFileCharge = "FILE_CHARGE"
	groupOPDFee     = "OPD_FEE"
)

// AdmissionSource reads admissions and runs the discharge state change. The
// ipd service satisfies it, so discharging through here also frees the bed.
type AdmissionSource interface {
	Get(ctx context.Context, admissionID string) (*ipd.Admission, error)
	Discharge(ctx context.Context, admissionID string, at *time.Time) (*ipd.Admission, error)
}

type PatientGetter interface {
	Get(ctx context.Context, patientID string) (*patient.Patient, error)
}

type VisitGetter interface {
	Get(ctx context.Context, visitID string) (*visit.Visit, error)
}

type ChargeLister interface {
	ListByTarget(ctx context.Context, target billing.Target) ([]*billing.Charge, error)
}

type PaymentLister interface {
	List(ctx context.Context, scope payment.Scope) ([]*payment.Payment, error)
}

type Service struct {
	admissions AdmissionSource
	patients   PatientGetter
	visits     VisitGetter
	charges    ChargeLister
	payments   PaymentLister
	now        func() time.Time
}

func NewService(admissions AdmissionSource, patients PatientGetter, visits VisitGetter, charges ChargeLister, payments PaymentLister) *Service {
	return &Service{
		admissions: admissions,
		patients:   patients,
		visits:     visits,
		charges:    charges,
		payments:   payments,
		now:        time.Now,
	}
}

// GenerateBill composes the full discharge statement for an admission. It is
// a pure read; the admission can still be active, in which case the stay is
// priced up to now. BalanceDue is negative when payments exceed charges.
func (s *Service) GenerateBill(ctx context.Context, admissionID string) (*Bill, error) {
	a, err := s.admissions.Get(ctx, admissionID)
	if err != nil {
		return nil, err
	}

	p, err := s.patients.Get(ctx, a.PatientID)
	if err != nil {
		return nil, fmt.Errorf("patient %s: %w", a.PatientID, err)
	}

	var v *visit.Visit
	if a.VisitID != nil {
		v, err = s.visits.Get(ctx, *a.VisitID)
		if err != nil {
			return nil, fmt.Errorf("visit %s: %w", *a.VisitID, err)
		}
	}

	charges, err := s.charges.ListByTarget(ctx, billing.AdmissionTarget(admissionID))
	if err != nil {
		return nil, err
	}

	payments, err := s.payments.List(ctx, payment.AdmissionScope(admissionID))
	if err != nil {
		return nil, err
	}

	totalCharges := decimal.Zero
	groups := map[string][]BillLine{
		groupFileCharge: {{
			Name:     "IPD File Charge",
			Quantity: 1,
			Rate:     a.FileCharge,
			Total:    a.FileCharge,
		}},
	}
	totalCharges = totalCharges.Add(a.FileCharge)

	if v != nil {
		groups[groupOPDFee] = []BillLine{{
			Name:     "OPD Consultation Fee",
			Quantity: 1,
			Rate:     v.OPDFee,
			Total:    v.OPDFee,
		}}
		totalCharges = totalCharges.Add(v.OPDFee)
	}

	for _, c := range charges {
		ct := string(c.ChargeType)
		groups[ct] = append(groups[ct], BillLine{
			Name:     c.ChargeName,
			Quantity: c.Quantity,
			Rate:     c.Rate,
			Total:    c.TotalAmount,
		})
		totalCharges = totalCharges.Add(c.TotalAmount)
	}

	totalPaid := decimal.Zero
	advancePaid := decimal.Zero
	lines := make([]PaymentLine, 0, len(payments))
	for _, pay := range payments {
		totalPaid = totalPaid.Add(pay.Amount)
		if pay.Type == payment.TypeIPDAdvance {
			advancePaid = advancePaid.Add(pay.Amount)
		}
		lines = append(lines, PaymentLine{
			PaymentID: pay.PaymentID,
			Date:      pay.PaymentDate,
			Amount:    pay.Amount,
			Mode:      string(pay.Mode),
			Type:      string(pay.Type),
			Reference: pay.TransactionRef,
		})
	}

	end := s.now()
	if a.DischargeDate != nil {
		end = *a.DischargeDate
	}

	return &Bill{
		AdmissionID: admissionID,
		Patient: PatientInfo{
			ID:      p.PatientID,
			Name:    p.Name,
			Age:     p.Age,
			Gender:  string(p.Gender),
			Mobile:  p.MobileNumber,
			Address: p.Address,
		},
		Stay: StayInfo{
			AdmissionDate: a.AdmissionDate,
			DischargeDate: a.DischargeDate,
			Days:          stayDays(a.AdmissionDate, end),
		},
		ChargesByType: groups,
		Payments:      lines,
		Summary: Summary{
			TotalCharges: totalCharges,
			TotalPaid:    totalPaid,
			AdvancePaid:  advancePaid,
			BalanceDue:   totalCharges.Sub(totalPaid),
		},
		GeneratedAt: s.now(),
	}, nil
}

// ProcessDischarge runs the admission state machine, so the bed is released
// along with the status change.
func (s *Service) ProcessDischarge(ctx context.Context, admissionID string, at *time.Time) (*ipd.Admission, error) {
	return s.admissions.Discharge(ctx, admissionID, at)
}

// PendingAmount is the statement's balance due on its own.
func (s *Service) PendingAmount(ctx context.Context, admissionID string) (decimal.Decimal, error) {
	bill, err := s.GenerateBill(ctx, admissionID)
	if err != nil {
		return decimal.Zero, err
	}
	return bill.Summary.BalanceDue, nil
}

// stayDays counts calendar coverage inclusive of both endpoints, minimum one.
func stayDays(admitted, end time.Time) int {
	days := int(end.Sub(admitted).Hours()/24) + 1
	if days < 1 {
		days = 1
	}
	return days
}
