package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/platform/idgen"
)

var ErrNotFound = errors.New("audit entry not found")

const defaultListLimit = 100

type Service struct {
	repo Repository
	ids  idgen.IDSource
	now  func() time.Time
}

func NewService(repo Repository, ids idgen.IDSource) *Service {
	return &Service{repo: repo, ids: ids, now: time.Now}
}

// Append records one audit entry. oldValue and newValue may be nil; anything
// else is serialized to JSON.
func (s *Service) Append(ctx context.Context, userID string, action ActionType, tableName, recordID string, oldValue, newValue interface{}) (*Entry, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("user id is required")
	}
	if !validActions[action] {
		return nil, fmt.Errorf("invalid action type %q", action)
	}
	if tableName == "" || recordID == "" {
		return nil, fmt.Errorf("table name and record id are required")
	}

	e := &Entry{
		LogID:      s.ids.NextID("LOG"),
		UserID:     userID,
		ActionType: action,
		TableName:  tableName,
		RecordID:   recordID,
		Timestamp:  s.now(),
	}

	var err error
	if e.OldValue, err = marshalValue(oldValue); err != nil {
		return nil, fmt.Errorf("old value: %w", err)
	}
	if e.NewValue, err = marshalValue(newValue); err != nil {
		return nil, fmt.Errorf("new value: %w", err)
	}

	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func marshalValue(v interface{}) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func (s *Service) Get(ctx context.Context, logID string) (*Entry, error) {
	return s.repo.GetByID(ctx, logID)
}

func (s *Service) ListByRecord(ctx context.Context, tableName, recordID string) ([]*Entry, error) {
	return s.repo.ListByRecord(ctx, tableName, recordID)
}

func (s *Service) ListByUser(ctx context.Context, userID string, limit int) ([]*Entry, error) {
	return s.repo.ListByUser(ctx, userID, clampLimit(limit))
}

func (s *Service) ListByAction(ctx context.Context, action ActionType, limit int) ([]*Entry, error) {
	if !validActions[action] {
		return nil, fmt.Errorf("invalid action type %q", action)
	}
	return s.repo.ListByAction(ctx, action, clampLimit(limit))
}

func (s *Service) ListRecent(ctx context.Context, limit int) ([]*Entry, error) {
	return s.repo.ListRecent(ctx, clampLimit(limit))
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > defaultListLimit {
		return defaultListLimit
	}
	return limit
}
