package patient

import (
	"context"
	"testing"
	"time"

	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/platform/idgen"
)

type mockRepo struct {
	patients map[string]*Patient
	byMobile map[string]*Patient
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		patients: make(map[string]*Patient),
		byMobile: make(map[string]*Patient),
	}
}

func (m *mockRepo) Create(ctx context.Context, p *Patient) error {
	copied := *p
	m.patients[p.PatientID] = &copied
	m.byMobile[p.MobileNumber] = &copied
	return nil
}

func (m *mockRepo) GetByID(ctx context.Context, id string) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (m *mockRepo) GetByMobile(ctx context.Context, mobile string) (*Patient, error) {
	p, ok := m.byMobile[mobile]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (m *mockRepo) Update(ctx context.Context, p *Patient) error {
	old, ok := m.patients[p.PatientID]
	if !ok {
		return ErrNotFound
	}
	delete(m.byMobile, old.MobileNumber)
	copied := *p
	m.patients[p.PatientID] = &copied
	m.byMobile[p.MobileNumber] = &copied
	return nil
}

func (m *mockRepo) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var out []*Patient
	for _, p := range m.patients {
		out = append(out, p)
	}
	return out, len(out), nil
}

func (m *mockRepo) SearchByName(ctx context.Context, name string, limit, offset int) ([]*Patient, int, error) {
	return m.List(ctx, limit, offset)
}

func newTestService() (*Service, *mockRepo) {
	repo := newMockRepo()
	ids := idgen.NewWithClock(func() time.Time {
		return time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	})
	return NewService(repo, ids), repo
}

func validPatient() *Patient {
	return &Patient{
		Name:         "Ramesh Kumar",
		Age:          45,
		Gender:       GenderMale,
		MobileNumber: "9876543210",
	}
}

func TestRegister_AssignsPatientID(t *testing.T) {
	svc, _ := newTestService()

	p := validPatient()
	if err := svc.Register(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.PatientID != "P202503140001" {
		t.Errorf("expected P202503140001, got %s", p.PatientID)
	}
}

func TestRegister_RejectsInvalidInput(t *testing.T) {
	svc, _ := newTestService()

	tests := []struct {
		name   string
		mutate func(*Patient)
	}{
		{"blank name", func(p *Patient) { p.Name = "   " }},
		{"negative age", func(p *Patient) { p.Age = -1 }},
		{"age too high", func(p *Patient) { p.Age = 151 }},
		{"bad gender", func(p *Patient) { p.Gender = "UNKNOWN" }},
		{"short mobile", func(p *Patient) { p.MobileNumber = "98765" }},
		{"mobile wrong prefix", func(p *Patient) { p.MobileNumber = "1234567890" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPatient()
			tt.mutate(p)
			if err := svc.Register(context.Background(), p); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestRegister_RejectsDuplicateMobile(t *testing.T) {
	svc, _ := newTestService()

	if err := svc.Register(context.Background(), validPatient()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dup := validPatient()
	dup.Name = "Someone Else"
	err := svc.Register(context.Background(), dup)
	if err != ErrDuplicateMobile {
		t.Fatalf("expected ErrDuplicateMobile, got %v", err)
	}
}

func TestUpdate_KeepsIDImmutable(t *testing.T) {
	svc, repo := newTestService()

	p := validPatient()
	if err := svc.Register(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updated := *p
	updated.Name = "Ramesh K"
	updated.Age = 46
	if err := svc.Update(context.Background(), &updated); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored := repo.patients[p.PatientID]
	if stored.Name != "Ramesh K" || stored.Age != 46 {
		t.Errorf("update not applied: %+v", stored)
	}
}

func TestUpdate_RejectsMobileTakenByOther(t *testing.T) {
	svc, _ := newTestService()

	first := validPatient()
	if err := svc.Register(context.Background(), first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second := validPatient()
	second.MobileNumber = "9123456789"
	if err := svc.Register(context.Background(), second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second.MobileNumber = first.MobileNumber
	err := svc.Update(context.Background(), second)
	if err != ErrDuplicateMobile {
		t.Fatalf("expected ErrDuplicateMobile, got %v", err)
	}
}

func TestGet_NotFound(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Get(context.Background(), "P209901010001")
	if err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
