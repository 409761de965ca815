package bed

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

type mockRepo struct {
	beds   map[int]*Bed
	nextID int
}

func newMockRepo() *mockRepo {
	return &mockRepo{beds: make(map[int]*Bed), nextID: 1}
}

func (m *mockRepo) Create(ctx context.Context, b *Bed) error {
	b.ID = m.nextID
	m.nextID++
	m.beds[b.ID] = b
	return nil
}

func (m *mockRepo) GetByID(ctx context.Context, id int) (*Bed, error) {
	b, ok := m.beds[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (m *mockRepo) GetByNumber(ctx context.Context, num string) (*Bed, error) {
	for _, b := range m.beds {
		if b.BedNumber == num {
			copied := *b
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) Update(ctx context.Context, b *Bed) error {
	if _, ok := m.beds[b.ID]; !ok {
		return ErrNotFound
	}
	copied := *b
	m.beds[b.ID] = &copied
	return nil
}

func (m *mockRepo) CompareAndSetStatus(ctx context.Context, id int, from, to Status) (bool, error) {
	b, ok := m.beds[id]
	if !ok {
		return false, nil
	}
	if b.Status != from {
		return false, nil
	}
	b.Status = to
	return true, nil
}

func (m *mockRepo) List(ctx context.Context, ward WardType, status Status, limit, offset int) ([]*Bed, int, error) {
	var out []*Bed
	for _, b := range m.beds {
		if ward != "" && b.WardType != ward {
			continue
		}
		if status != "" && b.Status != status {
			continue
		}
		out = append(out, b)
	}
	return out, len(out), nil
}

func (m *mockRepo) Occupancy(ctx context.Context) ([]*OccupancyStats, error) {
	return nil, nil
}

// mockTx discards repository writes when the callback fails, so tests can
// observe transactional behavior.
type mockTx struct {
	repo *mockRepo
}

func (m mockTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	snapshot := make(map[int]*Bed, len(m.repo.beds))
	for id, b := range m.repo.beds {
		copied := *b
		snapshot[id] = &copied
	}
	if err := fn(ctx); err != nil {
		m.repo.beds = snapshot
		return err
	}
	return nil
}

func newTestService() (*Service, *mockRepo) {
	repo := newMockRepo()
	return NewService(repo, noopAudit{}, mockTx{repo: repo}), repo
}

type noopAudit struct{}

func (noopAudit) LogRateChange(ctx context.Context, actor, table, recordID string, oldRate, newRate decimal.Decimal) error {
	return nil
}

type failingAudit struct{}

func (failingAudit) LogRateChange(ctx context.Context, actor, table, recordID string, oldRate, newRate decimal.Decimal) error {
	return errors.New("audit store unavailable")
}

func TestCreate_StartsAvailable(t *testing.T) {
	svc, _ := newTestService()

	b := &Bed{BedNumber: "G-101", WardType: WardGeneral, PerDayCharge: decimal.NewFromInt(500)}
	if err := svc.Create(context.Background(), b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Status != StatusAvailable {
		t.Errorf("expected new bed AVAILABLE, got %s", b.Status)
	}
}

func TestCreate_RejectsDuplicateNumber(t *testing.T) {
	svc, _ := newTestService()

	b := &Bed{BedNumber: "G-101", WardType: WardGeneral, PerDayCharge: decimal.NewFromInt(500)}
	if err := svc.Create(context.Background(), b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dup := &Bed{BedNumber: "G-101", WardType: WardPrivate, PerDayCharge: decimal.NewFromInt(2000)}
	if err := svc.Create(context.Background(), dup); err != ErrDuplicateNumber {
		t.Fatalf("expected ErrDuplicateNumber, got %v", err)
	}
}

func TestCreate_RejectsInvalidWard(t *testing.T) {
	svc, _ := newTestService()

	b := &Bed{BedNumber: "X-1", WardType: "DELUXE", PerDayCharge: decimal.NewFromInt(500)}
	if err := svc.Create(context.Background(), b); err == nil {
		t.Fatal("expected error for invalid ward type")
	}
}

func TestCanTransition_Table(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusAvailable, StatusOccupied, true},
		{StatusAvailable, StatusMaintenance, true},
		{StatusOccupied, StatusAvailable, true},
		{StatusOccupied, StatusMaintenance, false},
		{StatusMaintenance, StatusAvailable, true},
		{StatusMaintenance, StatusOccupied, false},
	}
	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestSetMaintenance_OccupiedBedRejected(t *testing.T) {
	svc, repo := newTestService()

	b := &Bed{BedNumber: "G-101", WardType: WardGeneral, PerDayCharge: decimal.NewFromInt(500)}
	if err := svc.Create(context.Background(), b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	repo.beds[b.ID].Status = StatusOccupied

	_, err := svc.SetMaintenance(context.Background(), b.ID, true)
	if err == nil {
		t.Fatal("expected error moving occupied bed to maintenance")
	}
}

func TestSetMaintenance_RoundTrip(t *testing.T) {
	svc, repo := newTestService()

	b := &Bed{BedNumber: "G-101", WardType: WardGeneral, PerDayCharge: decimal.NewFromInt(500)}
	if err := svc.Create(context.Background(), b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.SetMaintenance(context.Background(), b.ID, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.beds[b.ID].Status != StatusMaintenance {
		t.Errorf("expected MAINTENANCE, got %s", repo.beds[b.ID].Status)
	}

	if _, err := svc.SetMaintenance(context.Background(), b.ID, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.beds[b.ID].Status != StatusAvailable {
		t.Errorf("expected AVAILABLE, got %s", repo.beds[b.ID].Status)
	}
}

func TestUpdateRate_Rounds(t *testing.T) {
	svc, repo := newTestService()

	b := &Bed{BedNumber: "P-1", WardType: WardPrivate, PerDayCharge: decimal.NewFromInt(2000)}
	if err := svc.Create(context.Background(), b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updated, err := svc.UpdateRate(context.Background(), b.ID, decimal.RequireFromString("2500.999"), "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !updated.PerDayCharge.Equal(decimal.RequireFromString("2501.00")) {
		t.Errorf("expected 2501.00, got %s", updated.PerDayCharge)
	}
	if !repo.beds[b.ID].PerDayCharge.Equal(decimal.RequireFromString("2501.00")) {
		t.Errorf("rate not persisted")
	}
}

func TestUpdateRate_AuditFailureLeavesRateUnchanged(t *testing.T) {
	svc, repo := newTestService()

	b := &Bed{BedNumber: "P-1", WardType: WardPrivate, PerDayCharge: decimal.NewFromInt(2000)}
	if err := svc.Create(context.Background(), b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	broken := NewService(repo, failingAudit{}, mockTx{repo: repo})
	_, err := broken.UpdateRate(context.Background(), b.ID, decimal.NewFromInt(9999), "admin")
	if err == nil {
		t.Fatal("expected error when audit write fails")
	}

	if !repo.beds[b.ID].PerDayCharge.Equal(decimal.NewFromInt(2000)) {
		t.Errorf("rate change persisted without audit entry: got %s", repo.beds[b.ID].PerDayCharge)
	}
}
