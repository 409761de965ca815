package audit

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/domain/billing"
)

// ChargeAuditor satisfies billing.AuditLogger, turning ledger activity into
// audit_logs rows keyed on the billing_charges table.
type ChargeAuditor struct {
	svc *Service
}

func NewChargeAuditor(svc *Service) *ChargeAuditor { return &ChargeAuditor{svc: svc} }

var _ billing.AuditLogger = (*ChargeAuditor)(nil)

func (a *ChargeAuditor) LogManualChargeAdd(ctx context.Context, actor, chargeID string, created billing.Snapshot) error {
	_, err := a.svc.Append(ctx, actor, ActionManualChargeAdd, "billing_charges", chargeID, nil, created)
	return err
}

func (a *ChargeAuditor) LogManualChargeEdit(ctx context.Context, actor, chargeID string, before, after billing.Snapshot) error {
	_, err := a.svc.Append(ctx, actor, ActionManualChargeEdit, "billing_charges", chargeID, before, after)
	return err
}

// RateAuditor records master-data rate changes for doctors and beds.
type RateAuditor struct {
	svc *Service
}

func NewRateAuditor(svc *Service) *RateAuditor { return &RateAuditor{svc: svc} }

type rateValue struct {
	Rate string `json:"rate"`
}

func (a *RateAuditor) LogRateChange(ctx context.Context, actor, table, recordID string, oldRate, newRate decimal.Decimal) error {
	_, err := a.svc.Append(ctx, actor, ActionRateChange, table, recordID,
		rateValue{Rate: oldRate.StringFixed(2)}, rateValue{Rate: newRate.StringFixed(2)})
	return err
}
