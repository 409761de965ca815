package audit

import (
	"encoding/json"
	"time"
)

// ActionType classifies what an audit entry records.
type ActionType string

const (
	ActionManualChargeAdd  ActionType = "MANUAL_CHARGE_ADD"
	ActionManualChargeEdit ActionType = "MANUAL_CHARGE_EDIT"
	ActionRateChange       ActionType = "RATE_CHANGE"
)

var validActions = map[ActionType]bool{
	ActionManualChargeAdd:  true,
	ActionManualChargeEdit: true,
	ActionRateChange:       true,
}

// Entry maps to the audit_logs table. Entries are append only: there is no
// update or delete path anywhere in the codebase. OldValue and NewValue hold
// JSON snapshots of the record before and after the change.
type Entry struct {
	LogID      string          `db:"log_id" json:"log_id"`
	UserID     string          `db:"user_id" json:"user_id"`
	ActionType ActionType      `db:"action_type" json:"action_type"`
	TableName  string          `db:"table_name" json:"table_name"`
	RecordID   string          `db:"record_id" json:"record_id"`
	OldValue   json.RawMessage `db:"old_value" json:"old_value,omitempty"`
	NewValue   json.RawMessage `db:"new_value" json:"new_value,omitempty"`
	Timestamp  time.Time       `db:"timestamp" json:"timestamp"`
}
