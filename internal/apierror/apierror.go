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

package apierror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
)

type ErrorCode string

const (
	ErrNotFound       ErrorCode = "NOT_FOUND"
	ErrConflict       ErrorCode = "CONFLICT"
	ErrBadRequest     ErrorCode = "BAD_REQUEST"
	ErrInvalidInput   ErrorCode = "INVALID_INPUT"
	ErrInternalServer ErrorCode = "INTERNAL_SERVER_ERROR"

	// Withdrawal rule failures. Each is raised before any ledger write.
	ErrInvalidPaymentMethod            ErrorCode = "INVALID_PAYMENT_METHOD"
	ErrMemberNotFound                  ErrorCode = "MEMBER_NOT_FOUND"
	ErrMemberNoAvailableBalance        ErrorCode = "MEMBER_NO_AVAILABLE_BALANCE"
	ErrInvalidMobileOtp                ErrorCode = "INVALID_MOBILE_OTP"
	ErrInvalidAmount                   ErrorCode = "INVALID_AMOUNT"
	ErrMemberNotRedeem                 ErrorCode = "MEMBER_NOT_REDEEM"
	ErrPaypalAccountHasNotBeenVerified ErrorCode = "PAYPAL_ACCOUNT_HAS_NOT_BEEN_VERIFIED"
)

type APIError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func (e APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches on the error code so a sentinel still matches after details were attached.
func (e APIError) Is(target error) bool {
	t, ok := target.(APIError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func NewAPIError(code ErrorCode, message string, details interface{}) APIError {
	logrus.Error(details)
	return APIError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// New builds a rule error without logging; use it for package level sentinels.
func New(code ErrorCode, message string) APIError {
	return APIError{Code: code, Message: message}
}

func MapErrorToHTTPStatus(err error) int {
	var apiErr APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case ErrNotFound, ErrMemberNotFound:
			return http.StatusNotFound
		case ErrConflict:
			return http.StatusConflict
		case ErrInvalidInput, ErrBadRequest, ErrInvalidPaymentMethod, ErrInvalidAmount:
			return http.StatusBadRequest
		case ErrInvalidMobileOtp:
			return http.StatusUnauthorized
		case ErrMemberNoAvailableBalance, ErrMemberNotRedeem, ErrPaypalAccountHasNotBeenVerified:
			return http.StatusUnprocessableEntity
		case ErrInternalServer:
			return http.StatusInternalServerError
		default:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}
