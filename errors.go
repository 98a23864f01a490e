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
	"errors"
	"fmt"

	"github.com/cashrewards/memberhub/internal/apierror"
)

// Rule failures of a withdrawal. Every one of them is raised before the
// ledger is written; match them with errors.Is.
var (
	ErrInvalidPaymentMethod            = apierror.New(apierror.ErrInvalidPaymentMethod, "payment method is not supported")
	ErrMemberNotFound                  = apierror.New(apierror.ErrMemberNotFound, "member not found")
	ErrMemberNoAvailableBalance        = apierror.New(apierror.ErrMemberNoAvailableBalance, "member has no available balance")
	ErrInvalidMobileOtp                = apierror.New(apierror.ErrInvalidMobileOtp, "mobile otp is invalid")
	ErrInvalidAmount                   = apierror.New(apierror.ErrInvalidAmount, "withdrawal amount is invalid")
	ErrMemberNotRedeem                 = apierror.New(apierror.ErrMemberNotRedeem, "member has no approved purchase and cannot redeem")
	ErrPaypalAccountHasNotBeenVerified = apierror.New(apierror.ErrPaypalAccountHasNotBeenVerified, "paypal account has not been verified")
)

// ErrAllocationShortfall means the balances read for allocation could not
// cover an amount that passed validation.
var ErrAllocationShortfall = errors.New("allocation did not cover the requested amount")

// ruleError returns an error matching sentinel with a more specific message.
func ruleError(sentinel apierror.APIError, format string, args ...interface{}) error {
	return apierror.New(sentinel.Code, fmt.Sprintf(format, args...))
}
