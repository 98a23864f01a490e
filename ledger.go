/*
Copyright 2024 Blnk Finance Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package memberhub

import (
	"context"
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/cashrewards/memberhub/model"
)

type ledgerWriter interface {
	RecordMemberRedeems(ctx context.Context, redeems []*model.MemberRedeem) (int64, error)
}

// LedgerBatch stages the ledger rows of one withdrawal. Every row shares the
// withdrawal id and the request time fixed when the batch was created.
type LedgerBatch struct {
	writer          ledgerWriter
	withdrawalID    string
	requestedAt     time.Time
	paymentMethodID int
	entries         []*model.MemberRedeem
	committed       bool
}

// NewLedgerBatch starts a batch for a withdrawal by the member identified by
// correlationKey at requestedAt.
func NewLedgerBatch(writer ledgerWriter, correlationKey string, method model.PaymentMethod, requestedAt time.Time) *LedgerBatch {
	requestedAt = requestedAt.UTC()
	return &LedgerBatch{
		writer:          writer,
		withdrawalID:    model.NewWithdrawalID(correlationKey, requestedAt),
		requestedAt:     requestedAt,
		paymentMethodID: method.ID(),
	}
}

func (b *LedgerBatch) WithdrawalID() string {
	return b.withdrawalID
}

func (b *LedgerBatch) Entries() []*model.MemberRedeem {
	return b.entries
}

// Add stages one row. Amounts are stored at two decimal places.
func (b *LedgerBatch) Add(memberID int64, amount decimal.Decimal, isPartial bool) {
	b.entries = append(b.entries, &model.MemberRedeem{
		MemberID:        memberID,
		AmountRequested: amount.Round(model.AmountPlaces),
		PaymentMethodID: b.paymentMethodID,
		WithdrawalID:    b.withdrawalID,
		IsPartial:       isPartial,
		DateRequested:   b.requestedAt,
	})
}

// AddPlan stages one row per allocation of plan.
func (b *LedgerBatch) AddPlan(plan AllocationPlan) {
	for _, a := range plan.Allocations {
		b.Add(a.MemberID, a.Amount, plan.IsPartial)
	}
}

// Commit writes every staged row in one database transaction and returns the
// number of rows written. A batch can be committed once.
func (b *LedgerBatch) Commit(ctx context.Context) (int64, error) {
	ctx, span := tracer.Start(ctx, "Committing withdrawal ledger")
	defer span.End()
	span.SetAttributes(attribute.String("withdrawal.id", b.withdrawalID), attribute.Int("withdrawal.entries", len(b.entries)))

	if b.committed {
		return 0, errors.New("ledger batch already committed")
	}
	if len(b.entries) == 0 {
		return 0, errors.New("ledger batch has no entries")
	}

	count, err := b.writer.RecordMemberRedeems(ctx, b.entries)
	if err != nil {
		return 0, logAndRecordError(span, "ledger commit failed: ", pkgerrors.Wrapf(err, "committing withdrawal %s", b.withdrawalID))
	}
	b.committed = true
	return count, nil
}
