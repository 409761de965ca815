package discharge

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/domain/billing"
	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/domain/ipd"
	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/domain/patient"
	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/domain/payment"
	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/domain/visit"
)

type fakeAdmissions struct {
	admissions map[string]*ipd.Admission
	discharged []string
}

func (f *fakeAdmissions) Get(ctx context.Context, id string) (*ipd.Admission, error) {
	a, ok := f.admissions[id]
	if !ok {
		return nil, ipd.ErrNotFound
	}
	return a, nil
}

func (f *fakeAdmissions) Discharge(ctx context.Context, id string, at *time.Time) (*ipd.Admission, error) {
	a, ok := f.admissions[id]
	if !ok {
		return nil, ipd.ErrNotFound
	}
	if a.Status != ipd.StatusAdmitted {
		return nil, ipd.ErrNotAdmitted
	}
	when := time.Now()
	if at != nil {
		when = *at
	}
	a.Status = ipd.StatusDischarged
	a.DischargeDate = &when
	f.discharged = append(f.discharged, id)
	return a, nil
}

type fakePatients struct{ patients map[string]*patient.Patient }

func (f fakePatients) Get(ctx context.Context, id string) (*patient.Patient, error) {
	p, ok := f.patients[id]
	if !ok {
		return nil, patient.ErrNotFound
	}
	return p, nil
}

type fakeVisits struct{ visits map[string]*visit.Visit }

func (f fakeVisits) Get(ctx context.Context, id string) (*visit.Visit, error) {
	v, ok := f.visits[id]
	if !ok {
		return nil, visit.ErrNotFound
	}
	return v, nil
}

type fakeCharges struct{ byAdmission map[string][]*billing.Charge }

func (f fakeCharges) ListByTarget(ctx context.Context, target billing.Target) ([]*billing.Charge, error) {
	return f.byAdmission[*target.AdmissionID], nil
}

type fakePayments struct{ byAdmission map[string][]*payment.Payment }

func (f fakePayments) List(ctx context.Context, scope payment.Scope) ([]*payment.Payment, error) {
	return f.byAdmission[*scope.AdmissionID], nil
}

func newTestService(t *testing.T) (*Service, *fakeAdmissions, *fakeCharges, *fakePayments) {
	t.Helper()

	admitted := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	visitID := "V20250310090000001"
	admissions := &fakeAdmissions{admissions: map[string]*ipd.Admission{
		"IPD202503100001": {
			AdmissionID:   "IPD202503100001",
			PatientID:     "P202503100001",
			VisitID:       &visitID,
			BedID:         1,
			AdmissionDate: admitted,
			FileCharge:    decimal.NewFromInt(100),
			Status:        ipd.StatusAdmitted,
		},
	}}
	patients := fakePatients{patients: map[string]*patient.Patient{
		"P202503100001": {
			PatientID:    "P202503100001",
			Name:         "Ramesh Kumar",
			Age:          45,
			Gender:       patient.GenderMale,
			MobileNumber: "9876543210",
		},
	}}
	visits := fakeVisits{visits: map[string]*visit.Visit{
		visitID: {VisitID: visitID, PatientID: "P202503100001", OPDFee: decimal.NewFromInt(300)},
	}}
	charges := &fakeCharges{byAdmission: map[string][]*billing.Charge{}}
	payments := &fakePayments{byAdmission: map[string][]*payment.Payment{}}

	svc := NewService(admissions, patients, visits, charges, payments)
	now := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	return svc, admissions, charges, payments
}

func admissionID(t *testing.T) string {
	t.Helper()
	return "IPD202503100001"
}

func TestGenerateBill_SyntheticGroups(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	bill, err := svc.GenerateBill(context.Background(), admissionID(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fc, ok := bill.ChargesByType["FILE_CHARGE"]
	if !ok || len(fc) != 1 {
		t.Fatalf("expected one FILE_CHARGE line, got %v", fc)
	}
	if fc[0].Total.StringFixed(2) != "100.00" {
		t.Errorf("expected file charge 100.00, got %s", fc[0].Total)
	}

	opd, ok := bill.ChargesByType["OPD_FEE"]
	if !ok || len(opd) != 1 {
		t.Fatalf("expected one OPD_FEE line, got %v", opd)
	}
	if opd[0].Total.StringFixed(2) != "300.00" {
		t.Errorf("expected OPD fee 300.00, got %s", opd[0].Total)
	}

	if bill.Summary.TotalCharges.StringFixed(2) != "400.00" {
		t.Errorf("expected total 400.00, got %s", bill.Summary.TotalCharges)
	}
}

func TestGenerateBill_GroupsLedgerByType(t *testing.T) {
	svc, _, charges, _ := newTestService(t)
	id := admissionID(t)

	aid := id
	charges.byAdmission[id] = []*billing.Charge{
		{ChargeID: "CHG1", AdmissionID: &aid, ChargeType: billing.TypeInvestigation, ChargeName: "CBC", Quantity: 1, Rate: decimal.NewFromInt(350), TotalAmount: decimal.NewFromInt(350)},
		{ChargeID: "CHG2", AdmissionID: &aid, ChargeType: billing.TypeInvestigation, ChargeName: "LFT", Quantity: 1, Rate: decimal.NewFromInt(550), TotalAmount: decimal.NewFromInt(550)},
		{ChargeID: "CHG3", AdmissionID: &aid, ChargeType: billing.TypeOT, ChargeName: "Appendectomy", Quantity: 1, Rate: decimal.NewFromInt(15000), TotalAmount: decimal.NewFromInt(15000)},
	}

	bill, err := svc.GenerateBill(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(bill.ChargesByType["INVESTIGATION"]) != 2 {
		t.Errorf("expected 2 investigation lines, got %d", len(bill.ChargesByType["INVESTIGATION"]))
	}
	if len(bill.ChargesByType["OT"]) != 1 {
		t.Errorf("expected 1 OT line, got %d", len(bill.ChargesByType["OT"]))
	}

	// 100 file + 300 OPD + 350 + 550 + 15000.
	if bill.Summary.TotalCharges.StringFixed(2) != "16300.00" {
		t.Errorf("expected total 16300.00, got %s", bill.Summary.TotalCharges)
	}
}

func TestGenerateBill_AdvanceExceedsCharges(t *testing.T) {
	svc, _, _, payments := newTestService(t)
	id := admissionID(t)

	aid := id
	payments.byAdmission[id] = []*payment.Payment{
		{
			PaymentID:   "PAY1",
			PatientID:   "P202503100001",
			AdmissionID: &aid,
			Type:        payment.TypeIPDAdvance,
			Amount:      decimal.NewFromInt(5000),
			Mode:        payment.ModeUPI,
			Status:      payment.StatusCompleted,
			PaymentDate: time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC),
		},
	}

	bill, err := svc.GenerateBill(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Charges are 100 file + 300 OPD = 400 against a 5000 advance.
	if bill.Summary.BalanceDue.StringFixed(2) != "-4600.00" {
		t.Errorf("expected due -4600.00, got %s", bill.Summary.BalanceDue)
	}
	if bill.Summary.AdvancePaid.StringFixed(2) != "5000.00" {
		t.Errorf("expected advance 5000.00, got %s", bill.Summary.AdvancePaid)
	}
	if len(bill.Payments) != 1 {
		t.Errorf("expected 1 payment line, got %d", len(bill.Payments))
	}
}

func TestGenerateBill_StayDays(t *testing.T) {
	svc, admissions, _, _ := newTestService(t)
	id := admissionID(t)

	// Admitted 2025-03-10 09:00, bill generated 2025-03-14 10:00: four whole
	// days elapsed, five calendar days covered.
	bill, err := svc.GenerateBill(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bill.Stay.Days != 5 {
		t.Errorf("expected 5 days, got %d", bill.Stay.Days)
	}

	// Same-day discharge still counts one day.
	sameDay := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	admissions.admissions[id].DischargeDate = &sameDay
	bill, err = svc.GenerateBill(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bill.Stay.Days != 1 {
		t.Errorf("expected 1 day for same-day discharge, got %d", bill.Stay.Days)
	}
}

func TestProcessDischarge_DelegatesToStateMachine(t *testing.T) {
	svc, admissions, _, _ := newTestService(t)
	id := admissionID(t)

	a, err := svc.ProcessDischarge(context.Background(), id, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Status != ipd.StatusDischarged {
		t.Errorf("expected DISCHARGED, got %s", a.Status)
	}
	if len(admissions.discharged) != 1 || admissions.discharged[0] != id {
		t.Error("expected discharge to run through the admission state machine")
	}

	if _, err := svc.ProcessDischarge(context.Background(), id, nil); err == nil {
		t.Error("expected error discharging twice")
	}
}

func TestPendingAmount(t *testing.T) {
	svc, _, _, payments := newTestService(t)
	id := admissionID(t)

	aid := id
	payments.byAdmission[id] = []*payment.Payment{
		{PaymentID: "PAY1", AdmissionID: &aid, Type: payment.TypeIPDAdvance, Amount: decimal.NewFromInt(150), Mode: payment.ModeCash, Status: payment.StatusCompleted},
	}

	due, err := svc.PendingAmount(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if due.StringFixed(2) != "250.00" {
		t.Errorf("expected 250.00, got %s", due)
	}
}
