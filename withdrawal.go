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
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/cashrewards/memberhub/internal/apierror"
	redlock "github.com/cashrewards/memberhub/internal/lock"
	"github.com/cashrewards/memberhub/model"
)

// WithdrawalRequest is a member's request to withdraw cashback.
type WithdrawalRequest struct {
	MemberID      int64           `json:"member_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
	Otp           string          `json:"-"`
}

// WithdrawalResult describes a committed withdrawal.
type WithdrawalResult struct {
	WithdrawalID  string                `json:"withdrawal_id"`
	MemberID      int64                 `json:"member_id"`
	Amount        decimal.Decimal       `json:"amount"`
	Drawn         decimal.Decimal       `json:"drawn"`
	PaymentMethod model.PaymentMethod   `json:"payment_method"`
	IsPartial     bool                  `json:"is_partial"`
	RequestedAt   time.Time             `json:"requested_at"`
	Entries       []*model.MemberRedeem `json:"entries"`
	Eligibility   Eligibility           `json:"eligibility"`
}

type balanceInvalidator interface {
	Invalidate(ctx context.Context, memberIDs []int64)
}

// Withdraw validates req, allocates it across the member's memberships and
// records one ledger row per membership drawn, all in one commit.
//
// Checks run in this order and stop at the first failure: payment method,
// member, OTP, balances known, amount, wallet account, approved purchase.
// Nothing is written unless every check passes.
func (m *MemberHub) Withdraw(ctx context.Context, req WithdrawalRequest) (*WithdrawalResult, error) {
	ctx, span := tracer.Start(ctx, "Processing withdrawal")
	defer span.End()
	span.SetAttributes(attribute.Int64("member.id", req.MemberID), attribute.String("withdrawal.amount", req.Amount.String()))

	method, ok := model.ParsePaymentMethod(req.PaymentMethod)
	if !ok {
		return nil, ruleError(ErrInvalidPaymentMethod, "payment method %q is not supported", req.PaymentMethod)
	}

	member, err := m.getWithdrawingMember(ctx, req.MemberID)
	if err != nil {
		return nil, err
	}

	if err := m.verifyOtp(ctx, member, req.Otp); err != nil {
		return nil, err
	}

	if m.redis != nil && m.config.Withdrawal.LockEnabled {
		locker, err := m.acquireLock(ctx, member)
		if err != nil {
			return nil, logAndRecordError(span, "withdrawal lock failed: ", err)
		}
		defer func() {
			if err := locker.Unlock(context.Background()); err != nil {
				logrus.Warnf("releasing withdrawal lock %s: %v", locker.Key(), err)
			}
		}()
	}

	sources, err := m.loadSources(ctx, member.MemberID, true)
	if err != nil {
		return nil, err
	}

	if err := m.validateAmount(req.Amount, sources); err != nil {
		return nil, err
	}

	if method.IsWallet() {
		if err := m.validateWalletAccount(ctx, member.MemberID); err != nil {
			return nil, err
		}
	}

	eligibility, err := m.checkEligibility(ctx, sources)
	if err != nil {
		return nil, err
	}
	if !eligibility.Eligible {
		return nil, ErrMemberNotRedeem
	}

	plan, err := Allocate(req.Amount, sources)
	if err != nil {
		return nil, logAndRecordError(span, "allocation failed: ", pkgerrors.Wrapf(err, "allocating %s for member %d", req.Amount, member.MemberID))
	}

	batch := NewLedgerBatch(m.datasource, member.CorrelationKey(), method, m.clock.Now())
	batch.AddPlan(plan)
	if _, err := batch.Commit(ctx); err != nil {
		return nil, err
	}

	result := &WithdrawalResult{
		WithdrawalID:  batch.WithdrawalID(),
		MemberID:      member.MemberID,
		Amount:        req.Amount,
		Drawn:         plan.Total(),
		PaymentMethod: method,
		IsPartial:     plan.IsPartial,
		RequestedAt:   batch.requestedAt,
		Entries:       batch.Entries(),
		Eligibility:   eligibility,
	}
	span.SetAttributes(attribute.String("withdrawal.id", result.WithdrawalID), attribute.Bool("withdrawal.partial", result.IsPartial))
	logrus.Infof("withdrawal %s recorded for member %d: %d entries, %s drawn", result.WithdrawalID, member.MemberID, len(result.Entries), result.Drawn.StringFixed(model.AmountPlaces))

	if inv, ok := m.balances.(balanceInvalidator); ok {
		drawn := make([]int64, 0, len(plan.Allocations))
		for _, a := range plan.Allocations {
			drawn = append(drawn, a.MemberID)
		}
		inv.Invalidate(ctx, drawn)
	}
	m.postWithdrawalActions(result)

	return result, nil
}

// getWithdrawingMember loads the acting member. A member that does not exist,
// is not active or is not validated cannot withdraw.
func (m *MemberHub) getWithdrawingMember(ctx context.Context, memberID int64) (*model.Member, error) {
	member, err := m.datasource.GetMemberByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, apierror.New(apierror.ErrNotFound, "")) {
			return nil, ErrMemberNotFound
		}
		return nil, pkgerrors.Wrap(err, "loading member")
	}
	if member == nil || !member.CanWithdraw() {
		return nil, ErrMemberNotFound
	}
	return member, nil
}

func (m *MemberHub) verifyOtp(ctx context.Context, member *model.Member, code string) error {
	ctx, span := tracer.Start(ctx, "Verifying otp")
	defer span.End()

	valid, err := m.verifier.Verify(ctx, member, code)
	if err != nil {
		logAndRecordError(span, "otp verification failed: ", err)
		return ErrInvalidMobileOtp
	}
	if !valid {
		return ErrInvalidMobileOtp
	}
	return nil
}

// validateAmount checks amount against the configured bounds and the rounded
// total of the drawable balances in sources.
func (m *MemberHub) validateAmount(amount decimal.Decimal, sources []Source) error {
	aggregate, known := model.AggregateAvailable(balanceViews(sources))
	if !known {
		return ErrMemberNoAvailableBalance
	}

	bounds := m.config.Withdrawal
	switch {
	case !amount.IsPositive():
		return ruleError(ErrInvalidAmount, "amount %s must be greater than zero", amount)
	case !model.HasAmountPrecision(amount):
		return ruleError(ErrInvalidAmount, "amount %s has more than %d decimal places", amount, model.AmountPlaces)
	case amount.LessThan(bounds.MinimumAmount):
		return ruleError(ErrInvalidAmount, "amount %s is below the minimum of %s", amount, bounds.MinimumAmount)
	case amount.GreaterThan(aggregate):
		return ruleError(ErrInvalidAmount, "amount %s exceeds the available balance of %s", amount, aggregate.StringFixed(model.AmountPlaces))
	case amount.GreaterThanOrEqual(bounds.MaximumAmount):
		return ruleError(ErrInvalidAmount, "amount %s must be below the maximum of %s", amount, bounds.MaximumAmount)
	}
	return nil
}

func (m *MemberHub) validateWalletAccount(ctx context.Context, memberID int64) error {
	account, err := m.datasource.GetActiveWalletAccount(ctx, memberID)
	if err != nil {
		return pkgerrors.Wrap(err, "loading wallet account")
	}
	if account == nil || !account.IsActive || !account.Verified {
		return ErrPaypalAccountHasNotBeenVerified
	}
	return nil
}

// acquireLock takes the per-person withdrawal lock, waiting up to the
// configured timeout for a concurrent withdrawal to finish.
func (m *MemberHub) acquireLock(ctx context.Context, member *model.Member) (*redlock.Locker, error) {
	timeout := time.Duration(m.config.Withdrawal.LockTimeoutSec) * time.Second
	locker := redlock.NewLocker(m.redis, redlock.WithdrawalKey(member.CorrelationKey()), model.GenerateUUIDWithSuffix("loc"))
	if err := locker.WaitLock(ctx, timeout, timeout); err != nil {
		return nil, err
	}
	return locker, nil
}

// GetWithdrawal returns the ledger rows recorded under withdrawalID.
func (m *MemberHub) GetWithdrawal(ctx context.Context, withdrawalID string) ([]*model.MemberRedeem, error) {
	ctx, span := tracer.Start(ctx, "Getting withdrawal")
	defer span.End()

	redeems, err := m.datasource.GetMemberRedeemsByWithdrawalID(ctx, withdrawalID)
	if err != nil {
		return nil, err
	}
	return redeems, nil
}
