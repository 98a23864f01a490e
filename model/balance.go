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

package model

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// AmountPlaces is the precision, in decimal places, of every ledger amount.
const AmountPlaces = 2

type balanceState uint8

const (
	balanceUnknown balanceState = iota
	balanceKnown
)

// AvailableBalance is the tagged three-valued balance of a membership:
// a known positive amount, a known zero, or unknown. The zero value is unknown.
type AvailableBalance struct {
	state  balanceState
	amount decimal.Decimal
}

// KnownBalance returns a balance with a recorded amount.
func KnownBalance(amount decimal.Decimal) AvailableBalance {
	return AvailableBalance{state: balanceKnown, amount: amount}
}

// UnknownBalance returns a balance for a membership that has no balance record.
func UnknownBalance() AvailableBalance {
	return AvailableBalance{state: balanceUnknown}
}

// BalanceFromNullDecimal converts a nullable database column into the tagged form.
func BalanceFromNullDecimal(d decimal.NullDecimal) AvailableBalance {
	if !d.Valid {
		return UnknownBalance()
	}
	return KnownBalance(d.Decimal)
}

func (b AvailableBalance) IsKnown() bool {
	return b.state == balanceKnown
}

// Amount returns the recorded amount and whether it is known.
func (b AvailableBalance) Amount() (decimal.Decimal, bool) {
	if !b.IsKnown() {
		return decimal.Zero, false
	}
	return b.amount, true
}

// Drawable reports whether a withdrawal may draw from this balance.
// Only a known, strictly positive amount is drawable.
func (b AvailableBalance) Drawable() bool {
	return b.IsKnown() && b.amount.IsPositive()
}

// Cap is the most a single withdrawal may take from this balance: the amount
// cut down to AmountPlaces. Non-drawable balances have a zero cap.
func (b AvailableBalance) Cap() decimal.Decimal {
	if !b.Drawable() {
		return decimal.Zero
	}
	return b.amount.Truncate(AmountPlaces)
}

func (b AvailableBalance) String() string {
	if !b.IsKnown() {
		return "unknown"
	}
	return b.amount.String()
}

func (b AvailableBalance) MarshalJSON() ([]byte, error) {
	if !b.IsKnown() {
		return []byte("null"), nil
	}
	return b.amount.MarshalJSON()
}

func (b *AvailableBalance) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*b = UnknownBalance()
		return nil
	}
	var amount decimal.Decimal
	if err := json.Unmarshal(data, &amount); err != nil {
		return err
	}
	*b = KnownBalance(amount)
	return nil
}

// BalanceView is a point-in-time read of one membership's available balance.
type BalanceView struct {
	MemberID         int64            `json:"member_id"`
	AvailableBalance AvailableBalance `json:"available_balance"`
}

// BalanceSummary groups the balance views of every membership of a person.
type BalanceSummary struct {
	MemberID       int64           `json:"member_id"`
	Balances       []BalanceView   `json:"balances"`
	TotalAvailable decimal.Decimal `json:"total_available"`
	HasKnown       bool            `json:"has_known_balance"`
}

// AggregateAvailable sums every drawable balance and rounds the total to
// AmountPlaces. The second return value is false when no balance is known.
func AggregateAvailable(views []BalanceView) (decimal.Decimal, bool) {
	total := decimal.Zero
	known := false
	for _, v := range views {
		if v.AvailableBalance.IsKnown() {
			known = true
		}
		if v.AvailableBalance.Drawable() {
			amount, _ := v.AvailableBalance.Amount()
			total = total.Add(amount)
		}
	}
	return total.Round(AmountPlaces), known
}
