package ipd

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/domain/bed"
	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/domain/patient"
	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/domain/visit"
	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/platform/idgen"
)

type mockRepo struct {
	admissions map[string]*Admission
}

func newMockRepo() *mockRepo {
	return &mockRepo{admissions: make(map[string]*Admission)}
}

func (m *mockRepo) Create(ctx context.Context, a *Admission) error {
	m.admissions[a.AdmissionID] = a
	return nil
}

func (m *mockRepo) GetByID(ctx context.Context, id string) (*Admission, error) {
	a, ok := m.admissions[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockRepo) SetDischarged(ctx context.Context, id string, at time.Time) (bool, error) {
	a, ok := m.admissions[id]
	if !ok || a.Status != StatusAdmitted {
		return false, nil
	}
	a.Status = StatusDischarged
	a.DischargeDate = &at
	return true, nil
}

func (m *mockRepo) SetBed(ctx context.Context, id string, bedID int) (bool, error) {
	a, ok := m.admissions[id]
	if !ok || a.Status != StatusAdmitted {
		return false, nil
	}
	a.BedID = bedID
	return true, nil
}

func (m *mockRepo) ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]*Admission, int, error) {
	var out []*Admission
	for _, a := range m.admissions {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	return out, len(out), nil
}

func (m *mockRepo) ListActive(ctx context.Context, limit, offset int) ([]*Admission, int, error) {
	var out []*Admission
	for _, a := range m.admissions {
		if a.Status == StatusAdmitted {
			out = append(out, a)
		}
	}
	return out, len(out), nil
}

type mockBeds struct {
	beds map[int]*bed.Bed
}

func (m *mockBeds) GetByID(ctx context.Context, id int) (*bed.Bed, error) {
	b, ok := m.beds[id]
	if !ok {
		return nil, bed.ErrNotFound
	}
	return b, nil
}

func (m *mockBeds) CompareAndSetStatus(ctx context.Context, id int, from, to bed.Status) (bool, error) {
	b, ok := m.beds[id]
	if !ok || b.Status != from {
		return false, nil
	}
	b.Status = to
	return true, nil
}

type fakePatients struct{ known map[string]bool }

func (f fakePatients) Get(ctx context.Context, id string) (*patient.Patient, error) {
	if !f.known[id] {
		return nil, patient.ErrNotFound
	}
	return &patient.Patient{PatientID: id}, nil
}

type fakeVisits struct{ visits map[string]*visit.Visit }

func (f fakeVisits) Get(ctx context.Context, id string) (*visit.Visit, error) {
	v, ok := f.visits[id]
	if !ok {
		return nil, visit.ErrNotFound
	}
	return v, nil
}

type passthroughTx struct{}

func (passthroughTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestService(t *testing.T) (*Service, *mockRepo, *mockBeds, *time.Time) {
	t.Helper()
	repo := newMockRepo()
	beds := &mockBeds{beds: map[int]*bed.Bed{
		1: {ID: 1, BedNumber: "G-101", WardType: bed.WardGeneral, PerDayCharge: decimal.NewFromInt(500), Status: bed.StatusAvailable},
		2: {ID: 2, BedNumber: "P-201", WardType: bed.WardPrivate, PerDayCharge: decimal.NewFromInt(2000), Status: bed.StatusAvailable},
		3: {ID: 3, BedNumber: "G-102", WardType: bed.WardGeneral, PerDayCharge: decimal.NewFromInt(500), Status: bed.StatusMaintenance},
	}}
	now := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

	patients := fakePatients{known: map[string]bool{"P202503140001": true}}
	visits := fakeVisits{visits: map[string]*visit.Visit{
		"V20250314100000001": {VisitID: "V20250314100000001", PatientID: "P202503140001"},
		"V20250314100000002": {VisitID: "V20250314100000002", PatientID: "P202503140099"},
	}}

	ids := idgen.NewWithClock(func() time.Time { return now })
	svc := NewService(repo, beds, patients, visits, ids, passthroughTx{})
	clock := &now
	svc.now = func() time.Time { return *clock }
	return svc, repo, beds, clock
}

func TestAdmit_OccupiesBed(t *testing.T) {
	svc, _, beds, _ := newTestService(t)

	a, err := svc.Admit(context.Background(), AdmitRequest{
		PatientID:  "P202503140001",
		BedID:      1,
		FileCharge: decimal.NewFromInt(100),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Status != StatusAdmitted {
		t.Errorf("expected ADMITTED, got %s", a.Status)
	}
	if beds.beds[1].Status != bed.StatusOccupied {
		t.Errorf("expected bed 1 OCCUPIED, got %s", beds.beds[1].Status)
	}
	if a.AdmissionID == "" {
		t.Error("expected generated admission id")
	}
}

func TestAdmit_SecondAdmitToSameBedFails(t *testing.T) {
	svc, _, beds, _ := newTestService(t)

	if _, err := svc.Admit(context.Background(), AdmitRequest{PatientID: "P202503140001", BedID: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := svc.Admit(context.Background(), AdmitRequest{PatientID: "P202503140001", BedID: 1})
	if !errors.Is(err, ErrBedNotAvailable) {
		t.Fatalf("expected ErrBedNotAvailable, got %v", err)
	}
	if beds.beds[1].Status != bed.StatusOccupied {
		t.Errorf("bed should stay OCCUPIED by the first admission, got %s", beds.beds[1].Status)
	}
}

func TestAdmit_MaintenanceBedRejected(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.Admit(context.Background(), AdmitRequest{PatientID: "P202503140001", BedID: 3})
	if !errors.Is(err, ErrBedNotAvailable) {
		t.Fatalf("expected ErrBedNotAvailable, got %v", err)
	}
}

func TestAdmit_Validation(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	if _, err := svc.Admit(context.Background(), AdmitRequest{
		PatientID:  "P202503140001",
		BedID:      1,
		FileCharge: decimal.NewFromInt(-5),
	}); err == nil {
		t.Error("expected error for negative file charge")
	}

	if _, err := svc.Admit(context.Background(), AdmitRequest{PatientID: "P209901010001", BedID: 1}); err == nil {
		t.Error("expected error for unknown patient")
	}

	otherVisit := "V20250314100000002"
	if _, err := svc.Admit(context.Background(), AdmitRequest{
		PatientID: "P202503140001",
		BedID:     1,
		VisitID:   &otherVisit,
	}); !errors.Is(err, ErrVisitPatientMismatch) {
		t.Errorf("expected ErrVisitPatientMismatch, got %v", err)
	}
}

func TestChangeBed_SwapsOccupancy(t *testing.T) {
	svc, _, beds, _ := newTestService(t)

	a, err := svc.Admit(context.Background(), AdmitRequest{PatientID: "P202503140001", BedID: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	moved, err := svc.ChangeBed(context.Background(), a.AdmissionID, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if moved.BedID != 2 {
		t.Errorf("expected bed 2, got %d", moved.BedID)
	}
	if beds.beds[1].Status != bed.StatusAvailable {
		t.Errorf("old bed should be AVAILABLE, got %s", beds.beds[1].Status)
	}
	if beds.beds[2].Status != bed.StatusOccupied {
		t.Errorf("new bed should be OCCUPIED, got %s", beds.beds[2].Status)
	}
}

func TestChangeBed_TargetOccupied(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	a, err := svc.Admit(context.Background(), AdmitRequest{PatientID: "P202503140001", BedID: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Admit(context.Background(), AdmitRequest{PatientID: "P202503140001", BedID: 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.ChangeBed(context.Background(), a.AdmissionID, 2); !errors.Is(err, ErrBedNotAvailable) {
		t.Errorf("expected ErrBedNotAvailable, got %v", err)
	}
}

func TestDischarge_FreesBed(t *testing.T) {
	svc, repo, beds, clock := newTestService(t)

	a, err := svc.Admit(context.Background(), AdmitRequest{PatientID: "P202503140001", BedID: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	*clock = clock.Add(48 * time.Hour)
	d, err := svc.Discharge(context.Background(), a.AdmissionID, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Status != StatusDischarged {
		t.Errorf("expected DISCHARGED, got %s", d.Status)
	}
	if d.DischargeDate == nil || !d.DischargeDate.Equal(*clock) {
		t.Errorf("expected discharge date %v, got %v", *clock, d.DischargeDate)
	}
	if beds.beds[1].Status != bed.StatusAvailable {
		t.Errorf("expected bed released, got %s", beds.beds[1].Status)
	}
	if repo.admissions[a.AdmissionID].Status != StatusDischarged {
		t.Error("expected persisted status DISCHARGED")
	}
}

func TestDischarge_AlreadyDischarged(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	a, err := svc.Admit(context.Background(), AdmitRequest{PatientID: "P202503140001", BedID: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Discharge(context.Background(), a.AdmissionID, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.Discharge(context.Background(), a.AdmissionID, nil); !errors.Is(err, ErrNotAdmitted) {
		t.Errorf("expected ErrNotAdmitted, got %v", err)
	}
}

func TestComputeBedCharges(t *testing.T) {
	svc, _, _, clock := newTestService(t)

	a, err := svc.Admit(context.Background(), AdmitRequest{PatientID: "P202503140001", BedID: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Under a day still bills one full day.
	*clock = clock.Add(6 * time.Hour)
	s, err := svc.ComputeBedCharges(context.Background(), a.AdmissionID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Days != 1 {
		t.Errorf("expected 1 day, got %d", s.Days)
	}
	if s.Total.StringFixed(2) != "2000.00" {
		t.Errorf("expected total 2000.00, got %s", s.Total)
	}

	// Three and a half days rounds down to three whole days.
	*clock = clock.Add(78 * time.Hour)
	s, err = svc.ComputeBedCharges(context.Background(), a.AdmissionID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Days != 3 {
		t.Errorf("expected 3 days, got %d", s.Days)
	}
	if s.Total.StringFixed(2) != "6000.00" {
		t.Errorf("expected total 6000.00, got %s", s.Total)
	}
}

func TestComputeBedCharges_UsesDischargeDate(t *testing.T) {
	svc, _, _, clock := newTestService(t)

	a, err := svc.Admit(context.Background(), AdmitRequest{PatientID: "P202503140001", BedID: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	*clock = clock.Add(50 * time.Hour)
	if _, err := svc.Discharge(context.Background(), a.AdmissionID, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The clock moving on after discharge must not change the total.
	*clock = clock.Add(200 * time.Hour)
	s, err := svc.ComputeBedCharges(context.Background(), a.AdmissionID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Days != 2 {
		t.Errorf("expected 2 days, got %d", s.Days)
	}
	if s.Total.StringFixed(2) != "1000.00" {
		t.Errorf("expected total 1000.00, got %s", s.Total)
	}
}
