package audit

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/domain/billing"
	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/platform/idgen"
)

type mockRepo struct {
	entries map[string]*Entry
	order   []string
}

func newMockRepo() *mockRepo {
	return &mockRepo{entries: make(map[string]*Entry)}
}

func (m *mockRepo) Create(ctx context.Context, e *Entry) error {
	m.entries[e.LogID] = e
	m.order = append(m.order, e.LogID)
	return nil
}

func (m *mockRepo) GetByID(ctx context.Context, id string) (*Entry, error) {
	e, ok := m.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	return e, nil
}

func (m *mockRepo) ListByRecord(ctx context.Context, tableName, recordID string) ([]*Entry, error) {
	var out []*Entry
	for _, id := range m.order {
		e := m.entries[id]
		if e.TableName == tableName && e.RecordID == recordID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockRepo) ListByUser(ctx context.Context, userID string, limit int) ([]*Entry, error) {
	var out []*Entry
	for _, id := range m.order {
		if e := m.entries[id]; e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockRepo) ListByAction(ctx context.Context, action ActionType, limit int) ([]*Entry, error) {
	var out []*Entry
	for _, id := range m.order {
		if e := m.entries[id]; e.ActionType == action {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockRepo) ListRecent(ctx context.Context, limit int) ([]*Entry, error) {
	var out []*Entry
	for _, id := range m.order {
		out = append(out, m.entries[id])
	}
	return out, nil
}

func newTestService(t *testing.T) (*Service, *mockRepo) {
	t.Helper()
	repo := newMockRepo()
	now := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	svc := NewService(repo, idgen.NewWithClock(func() time.Time { return now }))
	svc.now = func() time.Time { return now }
	return svc, repo
}

func TestAppend_SerializesSnapshots(t *testing.T) {
	svc, repo := newTestService(t)

	before := map[string]interface{}{"rate": "150.00"}
	after := map[string]interface{}{"rate": "200.00"}
	e, err := svc.Append(context.Background(), "U001", ActionRateChange, "doctors", "D001", before, after)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.LogID == "" {
		t.Error("expected generated log id")
	}

	stored := repo.entries[e.LogID]
	var decoded map[string]string
	if err := json.Unmarshal(stored.OldValue, &decoded); err != nil {
		t.Fatalf("old value not valid JSON: %v", err)
	}
	if decoded["rate"] != "150.00" {
		t.Errorf("expected old rate 150.00, got %s", decoded["rate"])
	}
}

func TestAppend_NilValuesStayNil(t *testing.T) {
	svc, repo := newTestService(t)

	e, err := svc.Append(context.Background(), "U001", ActionManualChargeAdd, "billing_charges", "CHG001", nil, map[string]int{"quantity": 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.entries[e.LogID].OldValue != nil {
		t.Error("expected nil old value for additions")
	}
	if repo.entries[e.LogID].NewValue == nil {
		t.Error("expected new value to be set")
	}
}

func TestAppend_Validation(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.Append(context.Background(), "", ActionRateChange, "doctors", "D001", nil, nil); err == nil {
		t.Error("expected error for empty user")
	}
	if _, err := svc.Append(context.Background(), "U001", "DELETE_ALL", "doctors", "D001", nil, nil); err == nil {
		t.Error("expected error for unknown action type")
	}
	if _, err := svc.Append(context.Background(), "U001", ActionRateChange, "", "D001", nil, nil); err == nil {
		t.Error("expected error for empty table name")
	}
}

func TestChargeAuditor_ImplementsBillingLogger(t *testing.T) {
	svc, repo := newTestService(t)
	auditor := NewChargeAuditor(svc)

	snap := billing.Snapshot{ChargeName: "Extra dressing", Rate: "150.00", Quantity: 1, TotalAmount: "150.00"}
	if err := auditor.LogManualChargeAdd(context.Background(), "ADMIN01", "CHG001", snap); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries, _ := repo.ListByRecord(context.Background(), "billing_charges", "CHG001")
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].ActionType != ActionManualChargeAdd {
		t.Errorf("expected MANUAL_CHARGE_ADD, got %s", entries[0].ActionType)
	}

	before := snap
	after := billing.Snapshot{ChargeName: "Extra dressing", Rate: "200.00", Quantity: 1, TotalAmount: "200.00"}
	if err := auditor.LogManualChargeEdit(context.Background(), "ADMIN01", "CHG001", before, after); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries, _ = repo.ListByRecord(context.Background(), "billing_charges", "CHG001")
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
}

func TestRateAuditor_RecordsBothRates(t *testing.T) {
	svc, repo := newTestService(t)
	auditor := NewRateAuditor(svc)

	err := auditor.LogRateChange(context.Background(), "ADMIN01", "beds", "G-101",
		decimal.NewFromInt(500), decimal.NewFromInt(650))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries, _ := repo.ListByRecord(context.Background(), "beds", "G-101")
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	var oldVal, newVal struct {
		Rate string `json:"rate"`
	}
	if err := json.Unmarshal(entries[0].OldValue, &oldVal); err != nil {
		t.Fatalf("old value not valid JSON: %v", err)
	}
	if err := json.Unmarshal(entries[0].NewValue, &newVal); err != nil {
		t.Fatalf("new value not valid JSON: %v", err)
	}
	if oldVal.Rate != "500.00" || newVal.Rate != "650.00" {
		t.Errorf("expected rates 500.00 and 650.00, got %s and %s", oldVal.Rate, newVal.Rate)
	}
}
