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

// Package otp verifies the one-time passwords members send with a withdrawal.
package otp

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base32"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"github.com/cashrewards/memberhub/config"
	"github.com/cashrewards/memberhub/internal/request"
	"github.com/cashrewards/memberhub/model"
)

// Verifier checks a code against the member's mobile and email.
// A false result with a nil error means the code is wrong; an error means
// the check itself could not be made.
type Verifier interface {
	Verify(ctx context.Context, member *model.Member, code string) (bool, error)
}

// NewVerifier builds the verifier selected by cfg.Provider.
func NewVerifier(cfg config.OTPConfig) (Verifier, error) {
	switch cfg.Provider {
	case config.OTPProviderHTTP:
		return NewHTTPVerifier(cfg.Url, cfg.ApiKey), nil
	case config.OTPProviderTOTP:
		return NewTOTPVerifier(cfg.Secret, cfg.PeriodSec, time.Now), nil
	default:
		return nil, fmt.Errorf("unknown otp provider %q", cfg.Provider)
	}
}

// HTTPVerifier delegates verification to an external OTP service.
type HTTPVerifier struct {
	url    string
	apiKey string
}

type verifyRequest struct {
	MemberID int64  `json:"member_id"`
	Mobile   string `json:"mobile"`
	Email    string `json:"email"`
	Code     string `json:"code"`
}

type verifyResponse struct {
	Valid bool `json:"valid"`
}

func NewHTTPVerifier(url, apiKey string) *HTTPVerifier {
	return &HTTPVerifier{url: strings.TrimRight(url, "/"), apiKey: apiKey}
}

func (v *HTTPVerifier) Verify(ctx context.Context, member *model.Member, code string) (bool, error) {
	if strings.TrimSpace(code) == "" {
		return false, nil
	}

	req, err := request.NewJSONRequest(ctx, http.MethodPost, v.url+"/verify", verifyRequest{
		MemberID: member.MemberID,
		Mobile:   member.Mobile,
		Email:    member.Email,
		Code:     code,
	}, map[string]string{"X-Api-Key": v.apiKey})
	if err != nil {
		return false, err
	}

	var response verifyResponse
	resp, err := request.Call(req, &response)
	if err != nil {
		// The service rejects unknown or expired codes with 4XX.
		if resp != nil && resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return false, nil
		}
		return false, err
	}
	return response.Valid, nil
}

// TOTPVerifier validates time-based codes derived from a per-member secret,
// so no code has to be stored.
type TOTPVerifier struct {
	secret []byte
	period uint
	now    func() time.Time
}

func NewTOTPVerifier(secret string, period uint, now func() time.Time) *TOTPVerifier {
	return &TOTPVerifier{secret: []byte(secret), period: period, now: now}
}

// memberSecret derives the base32 TOTP secret of a member from the mobile
// and email the code was sent to.
func (v *TOTPVerifier) memberSecret(member *model.Member) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(member.Mobile))
	mac.Write([]byte{'|'})
	mac.Write([]byte(strings.ToLower(member.Email)))
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(mac.Sum(nil))
}

func (v *TOTPVerifier) opts() totp.ValidateOpts {
	return totp.ValidateOpts{
		Period:    v.period,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	}
}

// GenerateCode returns the code valid for member at t.
func (v *TOTPVerifier) GenerateCode(member *model.Member, t time.Time) (string, error) {
	return totp.GenerateCodeCustom(v.memberSecret(member), t, v.opts())
}

func (v *TOTPVerifier) Verify(_ context.Context, member *model.Member, code string) (bool, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return false, nil
	}

	valid, err := totp.ValidateCustom(code, v.memberSecret(member), v.now().UTC(), v.opts())
	if err == otp.ErrValidateInputInvalidLength {
		return false, nil
	}
	return valid, err
}
