package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/platform/auth"
	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/platform/idgen"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrDuplicate          = errors.New("username or email already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

const tokenTTL = 12 * time.Hour

type Service struct {
	repo       Repository
	ids        idgen.IDSource
	signingKey []byte
}

func NewService(repo Repository, ids idgen.IDSource, signingKey []byte) *Service {
	return &Service{repo: repo, ids: ids, signingKey: signingKey}
}

// CreateRequest is the admin input for a new account.
type CreateRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     Role   `json:"role"`
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*User, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if strings.TrimSpace(req.Email) == "" {
		return nil, fmt.Errorf("email is required")
	}
	if len(req.Password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}
	if strings.TrimSpace(req.FullName) == "" {
		return nil, fmt.Errorf("full name is required")
	}
	if !validRoles[req.Role] {
		return nil, fmt.Errorf("invalid role %q", req.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := &User{
		UserID:       s.ids.NextID("U"),
		Username:     username,
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(req.FullName),
		Role:         req.Role,
		Active:       true,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate verifies credentials and issues a signed token. Unknown user,
// wrong password, and deactivated account all come back as the same error.
func (s *Service) Authenticate(ctx context.Context, username, password string) (string, *User, error) {
	u, err := s.repo.GetByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if !u.Active {
		return "", nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := auth.IssueToken(s.signingKey, u.UserID, u.FullName, []string{string(u.Role)}, tokenTTL)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

func (s *Service) Get(ctx context.Context, userID string) (*User, error) {
	return s.repo.GetByID(ctx, userID)
}

func (s *Service) SetActive(ctx context.Context, userID string, active bool) error {
	return s.repo.SetActive(ctx, userID, active)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*User, int, error) {
	return s.repo.List(ctx, limit, offset)
}
