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
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/cashrewards/memberhub"
)

// ValidateCreateWithdrawal checks the shape of the request only. Amount
// bounds and payment method support are withdrawal rules and are enforced by
// the withdrawal itself so their order is kept.
func (w *CreateWithdrawal) ValidateCreateWithdrawal() error {
	return validation.ValidateStruct(w,
		validation.Field(&w.Amount, validation.NotNil.Error("amount is required")),
		validation.Field(&w.PaymentMethod, validation.Required),
		validation.Field(&w.Otp, validation.Required.Error("otp is required")),
	)
}

func (w *CreateWithdrawal) ToWithdrawalRequest(memberID int64) memberhub.WithdrawalRequest {
	req := memberhub.WithdrawalRequest{
		MemberID:      memberID,
		PaymentMethod: strings.TrimSpace(w.PaymentMethod),
		Otp:           strings.TrimSpace(w.Otp),
	}
	if w.Amount != nil {
		req.Amount = *w.Amount
	}
	return req
}
