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
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// WithdrawalIDLayout is the timestamp layout of a withdrawal id (yyyyMMddHHmmss).
const WithdrawalIDLayout = "20060102150405"

type PaymentMethod string

const (
	PaymentMethodBankTransfer PaymentMethod = "BankTransfer"
	PaymentMethodPayPal       PaymentMethod = "PayPal"
)

var paymentMethodIDs = map[PaymentMethod]int{
	PaymentMethodBankTransfer: 1,
	PaymentMethodPayPal:       2,
}

// ParsePaymentMethod matches value against the accepted payment methods, ignoring case.
func ParsePaymentMethod(value string) (PaymentMethod, bool) {
	for method := range paymentMethodIDs {
		if strings.EqualFold(strings.TrimSpace(value), string(method)) {
			return method, true
		}
	}
	return "", false
}

func (p PaymentMethod) ID() int {
	return paymentMethodIDs[p]
}

// IsWallet reports whether the method pays out to an electronic wallet.
func (p PaymentMethod) IsWallet() bool {
	return p == PaymentMethodPayPal
}

// MemberRedeem is one append-only ledger row of a withdrawal.
// PaymentStatus is owned by downstream payment processing.
type MemberRedeem struct {
	ID              int64           `json:"id,omitempty"`
	MemberID        int64           `json:"member_id"`
	AmountRequested decimal.Decimal `json:"amount_requested"`
	PaymentMethodID int             `json:"payment_method_id"`
	WithdrawalID    string          `json:"withdrawal_id"`
	IsPartial       bool            `json:"is_partial"`
	DateRequested   time.Time       `json:"date_requested"`
	PaymentStatus   string          `json:"payment_status,omitempty"`
}

// NewWithdrawalID builds the correlation key shared by every row of one withdrawal.
func NewWithdrawalID(correlationKey string, at time.Time) string {
	return fmt.Sprintf("%s-%s", correlationKey, at.UTC().Format(WithdrawalIDLayout))
}
