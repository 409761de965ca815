package integration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/domain/audit"
	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/domain/bed"
	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/domain/billing"
	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/domain/discharge"
	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/domain/doctor"
	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/domain/ipd"
	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/domain/ot"
	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/domain/patient"
	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/domain/payment"
	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/domain/visit"
	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/platform/db"
	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/platform/idgen"
)

const testActor = "U-INTEG"

type targetChecker struct {
	visits     *visit.Service
	admissions *ipd.Service
}

func (t *targetChecker) CheckTarget(ctx context.Context, target billing.Target) error {
	if target.VisitID != nil {
		_, err := t.visits.Get(ctx, *target.VisitID)
		return err
	}
	if target.AdmissionID != nil {
		_, err := t.admissions.Get(ctx, *target.AdmissionID)
		return err
	}
	return nil
}

// stack wires the full service graph against the shared test database, the
// same way the server entrypoint does.
type stack struct {
	patients   *patient.Service
	doctors    *doctor.Service
	beds       *bed.Service
	visits     *visit.Service
	admissions *ipd.Service
	billing    *billing.Service
	payments   *payment.Service
	discharge  *discharge.Service
	ot         *ot.Service
	audit      *audit.Service
}

func newStack(pool *pgxpool.Pool) *stack {
	ids := idgen.New()
	tx := db.NewRunner(pool)

	auditSvc := audit.NewService(audit.NewRepoPG(pool), ids)
	chargeAuditor := audit.NewChargeAuditor(auditSvc)
	rateAuditor := audit.NewRateAuditor(auditSvc)

	patients := patient.NewService(patient.NewRepoPG(pool), ids)
	doctors := doctor.NewService(doctor.NewRepoPG(pool), ids, rateAuditor, tx)
	bedRepo := bed.NewRepoPG(pool)
	beds := bed.NewService(bedRepo, rateAuditor, tx)

	visits := visit.NewService(visit.NewRepoPG(pool), patients, doctors, ids, tx)
	admissions := ipd.NewService(ipd.NewRepoPG(pool), bedRepo, patients, visits, ids, tx)

	bill := billing.NewService(billing.NewRepoPG(pool), &targetChecker{visits: visits, admissions: admissions}, chargeAuditor, ids, tx)
	payments := payment.NewService(payment.NewRepoPG(pool), patients, visits, admissions, bill, ids)

	return &stack{
		patients:   patients,
		doctors:    doctors,
		beds:       beds,
		visits:     visits,
		admissions: admissions,
		billing:    bill,
		payments:   payments,
		discharge:  discharge.NewService(admissions, patients, visits, bill, payments),
		ot:         ot.NewService(ot.NewRepoPG(pool), admissions, bill, ids),
		audit:      auditSvc,
	}
}

func registerPatient(t *testing.T, ctx context.Context, s *stack, name string) *patient.Patient {
	t.Helper()
	p := &patient.Patient{
		Name:         name,
		Age:          42,
		Gender:       patient.GenderMale,
		MobileNumber: uniqueMobile(),
	}
	if err := s.patients.Register(ctx, p); err != nil {
		t.Fatalf("register patient: %v", err)
	}
	return p
}

func createDoctor(t *testing.T, ctx context.Context, s *stack) *doctor.Doctor {
	t.Helper()
	spec := "General Medicine"
	d := &doctor.Doctor{
		Name:           "Dr. Integration",
		Specialization: &spec,
		NewPatientFee:  decimal.NewFromInt(300),
		FollowupFee:    decimal.NewFromInt(150),
	}
	if err := s.doctors.Create(ctx, d); err != nil {
		t.Fatalf("create doctor: %v", err)
	}
	return d
}

func createBed(t *testing.T, ctx context.Context, s *stack, perDay int64) *bed.Bed {
	t.Helper()
	b := &bed.Bed{
		BedNumber:    fmt.Sprintf("ITB-%d", time.Now().UnixNano()%1_000_000_000),
		WardType:     bed.WardGeneral,
		PerDayCharge: decimal.NewFromInt(perDay),
	}
	if err := s.beds.Create(ctx, b); err != nil {
		t.Fatalf("create bed: %v", err)
	}
	return b
}

func TestAdmissionBillingDischargeFlow(t *testing.T) {
	pool := requireDB(t)
	ctx := context.Background()
	s := newStack(pool)

	p := registerPatient(t, ctx, s, "Flow Patient")
	d := createDoctor(t, ctx, s)
	b := createBed(t, ctx, s, 2000)

	v, err := s.visits.Create(ctx, p.PatientID, d.DoctorID, visit.TypeOPDNew)
	if err != nil {
		t.Fatalf("create visit: %v", err)
	}
	if v.OPDFee.StringFixed(2) != "300.00" {
		t.Fatalf("expected OPD fee 300.00, got %s", v.OPDFee.StringFixed(2))
	}

	adm, err := s.admissions.Admit(ctx, ipd.AdmitRequest{
		PatientID:  p.PatientID,
		BedID:      b.ID,
		FileCharge: decimal.NewFromInt(100),
		VisitID:    &v.VisitID,
	})
	if err != nil {
		t.Fatalf("admit: %v", err)
	}

	got, err := s.beds.Get(ctx, b.ID)
	if err != nil {
		t.Fatalf("get bed: %v", err)
	}
	if got.Status != bed.StatusOccupied {
		t.Fatalf("expected bed OCCUPIED after admit, got %s", got.Status)
	}

	// A second admission to the same bed must lose.
	other := registerPatient(t, ctx, s, "Waiting Patient")
	_, err = s.admissions.Admit(ctx, ipd.AdmitRequest{
		PatientID:  other.PatientID,
		BedID:      b.ID,
		FileCharge: decimal.Zero,
	})
	if !errors.Is(err, ipd.ErrBedNotAvailable) {
		t.Fatalf("expected ErrBedNotAvailable, got %v", err)
	}

	target := billing.AdmissionTarget(adm.AdmissionID)

	if _, err := s.billing.AddCharges(ctx, target, billing.TypeService, []billing.ChargeInput{
		{Name: "Wound Dressing", Rate: decimal.NewFromInt(500), Quantity: 2},
	}, testActor); err != nil {
		t.Fatalf("add service charge: %v", err)
	}

	manual, err := s.billing.AddCharge(ctx, target, billing.TypeManual, billing.ChargeInput{
		Name: "Attendant Pass", Rate: decimal.NewFromInt(50), Quantity: 1,
	}, testActor)
	if err != nil {
		t.Fatalf("add manual charge: %v", err)
	}
	entries, err := s.audit.ListByRecord(ctx, "billing_charges", manual.ChargeID)
	if err != nil {
		t.Fatalf("list audit entries: %v", err)
	}
	if len(entries) != 1 || entries[0].ActionType != audit.ActionManualChargeAdd {
		t.Fatalf("expected one MANUAL_CHARGE_ADD entry, got %+v", entries)
	}

	proc, err := s.ot.Create(ctx, ot.CreateRequest{
		AdmissionID:     adm.AdmissionID,
		OperationName:   "Appendectomy",
		OperationDate:   time.Now(),
		DurationMinutes: 90,
		SurgeonName:     "Dr. Surgeon",
	}, testActor)
	if err != nil {
		t.Fatalf("create ot procedure: %v", err)
	}
	otCharges, err := s.ot.AddCharges(ctx, proc.OTID, ot.ChargeRequest{
		SurgeonCharge:    decimal.NewFromInt(5000),
		AnesthesiaCharge: decimal.NewFromInt(2000),
		FacilityCharge:   decimal.NewFromInt(3000),
	}, testActor)
	if err != nil {
		t.Fatalf("add ot charges: %v", err)
	}
	if len(otCharges) != 3 {
		t.Fatalf("expected 3 OT charges, got %d", len(otCharges))
	}

	if _, err := s.payments.RecordAdvance(ctx, adm.AdmissionID, decimal.NewFromInt(5000), "cash", nil, nil, testActor); err != nil {
		t.Fatalf("record advance: %v", err)
	}

	// Ledger 11050 plus the 100 file charge, against the 5000 advance.
	bal, err := s.payments.CalculateBalance(ctx, p.PatientID, nil, &adm.AdmissionID)
	if err != nil {
		t.Fatalf("calculate balance: %v", err)
	}
	if bal.TotalCharges.StringFixed(2) != "11150.00" {
		t.Errorf("expected total charges 11150.00, got %s", bal.TotalCharges.StringFixed(2))
	}
	if bal.BalanceDue.StringFixed(2) != "6150.00" {
		t.Errorf("expected balance due 6150.00, got %s", bal.BalanceDue.StringFixed(2))
	}
	if bal.AdvanceBalance.StringFixed(2) != "5000.00" {
		t.Errorf("expected advance 5000.00, got %s", bal.AdvanceBalance.StringFixed(2))
	}

	bill, err := s.discharge.GenerateBill(ctx, adm.AdmissionID)
	if err != nil {
		t.Fatalf("generate bill: %v", err)
	}
	// The statement also carries the originating visit's OPD fee.
	if bill.Summary.TotalCharges.StringFixed(2) != "11450.00" {
		t.Errorf("expected bill total 11450.00, got %s", bill.Summary.TotalCharges.StringFixed(2))
	}
	if bill.Summary.BalanceDue.StringFixed(2) != "6450.00" {
		t.Errorf("expected bill balance due 6450.00, got %s", bill.Summary.BalanceDue.StringFixed(2))
	}
	if len(bill.ChargesByType["OT"]) != 3 {
		t.Errorf("expected 3 OT bill lines, got %d", len(bill.ChargesByType["OT"]))
	}
	if len(bill.ChargesByType["FILE_CHARGE"]) != 1 || len(bill.ChargesByType["OPD_FEE"]) != 1 {
		t.Errorf("expected synthetic FILE_CHARGE and OPD_FEE groups, got %v", bill.ChargesByType)
	}

	done, err := s.discharge.ProcessDischarge(ctx, adm.AdmissionID, nil)
	if err != nil {
		t.Fatalf("process discharge: %v", err)
	}
	if done.Status != ipd.StatusDischarged {
		t.Fatalf("expected DISCHARGED, got %s", done.Status)
	}

	got, err = s.beds.Get(ctx, b.ID)
	if err != nil {
		t.Fatalf("get bed: %v", err)
	}
	if got.Status != bed.StatusAvailable {
		t.Fatalf("expected bed AVAILABLE after discharge, got %s", got.Status)
	}

	// The freed bed can now take the waiting patient.
	if _, err := s.admissions.Admit(ctx, ipd.AdmitRequest{
		PatientID:  other.PatientID,
		BedID:      b.ID,
		FileCharge: decimal.Zero,
	}); err != nil {
		t.Fatalf("re-admit after discharge: %v", err)
	}
}

func TestConcurrentAdmits_OneBedOneWinner(t *testing.T) {
	pool := requireDB(t)
	ctx := context.Background()
	s := newStack(pool)

	b := createBed(t, ctx, s, 1500)

	const contenders = 8
	patients := make([]*patient.Patient, contenders)
	for i := range patients {
		patients[i] = registerPatient(t, ctx, s, fmt.Sprintf("Contender %d", i))
	}

	var wg sync.WaitGroup
	errs := make([]error, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.admissions.Admit(ctx, ipd.AdmitRequest{
				PatientID:  patients[i].PatientID,
				BedID:      b.ID,
				FileCharge: decimal.Zero,
			})
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		switch {
		case err == nil:
			winners++
		case errors.Is(err, ipd.ErrBedNotAvailable):
		default:
			t.Fatalf("unexpected admit error: %v", err)
		}
	}
	if winners != 1 {
		t.Fatalf("expected exactly one admission to win the bed, got %d", winners)
	}

	got, err := s.beds.Get(ctx, b.ID)
	if err != nil {
		t.Fatalf("get bed: %v", err)
	}
	if got.Status != bed.StatusOccupied {
		t.Fatalf("expected bed OCCUPIED, got %s", got.Status)
	}
}
