package patient

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/platform/idgen"
)

var (
	ErrNotFound        = errors.New("patient not found")
	ErrDuplicateMobile = errors.New("mobile number already registered")
)

// Indian mobile numbers: ten digits starting with 6-9.
var mobilePattern = regexp.MustCompile(`^[6-9]\d{9}$`)

type Service struct {
	repo Repository
	ids  idgen.IDSource
}

func NewService(repo Repository, ids idgen.IDSource) *Service {
	return &Service{repo: repo, ids: ids}
}

func (s *Service) validate(p *Patient) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if p.Age < 0 || p.Age > 150 {
		return fmt.Errorf("age must be between 0 and 150, got %d", p.Age)
	}
	if !validGenders[p.Gender] {
		return fmt.Errorf("invalid gender: %s", p.Gender)
	}
	if !mobilePattern.MatchString(p.MobileNumber) {
		return fmt.Errorf("invalid mobile number: %s", p.MobileNumber)
	}
	return nil
}

// Register creates a patient with a freshly issued patient id. Mobile number
// uniqueness is enforced here and backed by a unique constraint.
func (s *Service) Register(ctx context.Context, p *Patient) error {
	if err := s.validate(p); err != nil {
		return err
	}

	existing, err := s.repo.GetByMobile(ctx, p.MobileNumber)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if existing != nil {
		return ErrDuplicateMobile
	}

	p.PatientID = s.ids.PatientID()
	return s.repo.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, patientID string) (*Patient, error) {
	return s.repo.GetByID(ctx, patientID)
}

func (s *Service) GetByMobile(ctx context.Context, mobile string) (*Patient, error) {
	return s.repo.GetByMobile(ctx, mobile)
}

// Update modifies a patient's demographic fields. The patient id itself is
// immutable.
func (s *Service) Update(ctx context.Context, p *Patient) error {
	if err := s.validate(p); err != nil {
		return err
	}

	current, err := s.repo.GetByID(ctx, p.PatientID)
	if err != nil {
		return err
	}

	if current.MobileNumber != p.MobileNumber {
		other, err := s.repo.GetByMobile(ctx, p.MobileNumber)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		if other != nil {
			return ErrDuplicateMobile
		}
	}

	return s.repo.Update(ctx, p)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) Search(ctx context.Context, name string, limit, offset int) ([]*Patient, int, error) {
	if strings.TrimSpace(name) == "" {
		return s.repo.List(ctx, limit, offset)
	}
	return s.repo.SearchByName(ctx, name, limit, offset)
}
