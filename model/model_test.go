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
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailableBalance_States(t *testing.T) {
	unknown := UnknownBalance()
	assert.False(t, unknown.IsKnown())
	assert.False(t, unknown.Drawable())
	assert.True(t, unknown.Cap().IsZero())

	var zeroValue AvailableBalance
	assert.False(t, zeroValue.IsKnown(), "zero value must be unknown, not a zero balance")

	zero := KnownBalance(decimal.Zero)
	assert.True(t, zero.IsKnown())
	assert.False(t, zero.Drawable())

	negative := KnownBalance(decimal.NewFromInt(-5))
	assert.False(t, negative.Drawable())
	assert.True(t, negative.Cap().IsZero())

	positive := KnownBalance(decimal.RequireFromString("140.1264"))
	assert.True(t, positive.Drawable())
	assert.Equal(t, "140.12", positive.Cap().StringFixed(2))
}

func TestAvailableBalance_CapTruncates(t *testing.T) {
	tests := []struct {
		balance string
		cap     string
	}{
		{"140.1264", "140.12"},
		{"140.1299", "140.12"},
		{"16", "16.00"},
		{"0.009", "0.00"},
		{"50.5", "50.50"},
	}
	for _, tt := range tests {
		b := KnownBalance(decimal.RequireFromString(tt.balance))
		assert.Equal(t, tt.cap, b.Cap().StringFixed(2), tt.balance)
	}
}

func TestAvailableBalance_JSON(t *testing.T) {
	views := []BalanceView{
		{MemberID: 1, AvailableBalance: KnownBalance(decimal.RequireFromString("12.5"))},
		{MemberID: 2, AvailableBalance: UnknownBalance()},
	}
	raw, err := json.Marshal(views)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"available_balance":null`)
	assert.Contains(t, string(raw), `"available_balance":"12.5"`)

	var decoded []BalanceView
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.False(t, decoded[1].AvailableBalance.IsKnown())
	amount, ok := decoded[0].AvailableBalance.Amount()
	assert.True(t, ok)
	assert.True(t, amount.Equal(decimal.RequireFromString("12.5")))
}

func TestBalanceFromNullDecimal(t *testing.T) {
	assert.False(t, BalanceFromNullDecimal(decimal.NullDecimal{}).IsKnown())
	b := BalanceFromNullDecimal(decimal.NullDecimal{Decimal: decimal.NewFromInt(3), Valid: true})
	assert.True(t, b.Drawable())
}

func TestAggregateAvailable(t *testing.T) {
	total, known := AggregateAvailable([]BalanceView{
		{MemberID: 1, AvailableBalance: UnknownBalance()},
	})
	assert.False(t, known)
	assert.True(t, total.IsZero())

	total, known = AggregateAvailable([]BalanceView{
		{MemberID: 1, AvailableBalance: KnownBalance(decimal.RequireFromString("140.1264"))},
		{MemberID: 2, AvailableBalance: KnownBalance(decimal.Zero)},
		{MemberID: 3, AvailableBalance: KnownBalance(decimal.NewFromInt(-4))},
		{MemberID: 4, AvailableBalance: UnknownBalance()},
	})
	assert.True(t, known)
	assert.Equal(t, "140.13", total.StringFixed(2))
}

func TestParsePaymentMethod(t *testing.T) {
	method, ok := ParsePaymentMethod("paypal")
	assert.True(t, ok)
	assert.Equal(t, PaymentMethodPayPal, method)
	assert.True(t, method.IsWallet())
	assert.Equal(t, 2, method.ID())

	method, ok = ParsePaymentMethod(" BankTransfer ")
	assert.True(t, ok)
	assert.False(t, method.IsWallet())
	assert.Equal(t, 1, method.ID())

	_, ok = ParsePaymentMethod("Cheque")
	assert.False(t, ok)
	_, ok = ParsePaymentMethod("")
	assert.False(t, ok)
}

func TestNewWithdrawalID(t *testing.T) {
	at := time.Date(2024, 3, 9, 7, 5, 2, 999, time.FixedZone("AEST", 10*3600))
	assert.Equal(t, "person-1-20240308210502", NewWithdrawalID("person-1", at))

	member := &Member{MemberID: 42}
	assert.Equal(t, "42", member.CorrelationKey())
	member.PersonID = "abc"
	assert.Equal(t, "abc", member.CorrelationKey())
}

func TestMember_CanWithdraw(t *testing.T) {
	assert.True(t, (&Member{Status: MemberStatusActive, IsValidated: true}).CanWithdraw())
	assert.False(t, (&Member{Status: "Inactive", IsValidated: true}).CanWithdraw())
	assert.False(t, (&Member{Status: MemberStatusActive}).CanWithdraw())
}

func TestHasAmountPrecision(t *testing.T) {
	assert.True(t, HasAmountPrecision(decimal.RequireFromString("15.10")))
	assert.True(t, HasAmountPrecision(decimal.RequireFromString("15.000")))
	assert.False(t, HasAmountPrecision(decimal.RequireFromString("15.001")))
}

func TestGenerateUUIDWithSuffix(t *testing.T) {
	id := GenerateUUIDWithSuffix("loc")
	assert.True(t, strings.HasPrefix(id, "loc_"))
}
