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

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cashrewards/memberhub"
	"github.com/cashrewards/memberhub/api/middleware"
	"github.com/cashrewards/memberhub/config"
	"github.com/cashrewards/memberhub/database/mocks"
	"github.com/cashrewards/memberhub/internal/apierror"
	"github.com/cashrewards/memberhub/model"
)

const homeClientID = 1000000

type TestRequest struct {
	Payload  io.Reader
	Response interface{}
	Method   string
	Route    string
	Header   map[string]string
	Router   *gin.Engine
}

func SetUpTestRequest(s TestRequest) (*httptest.ResponseRecorder, error) {
	req := httptest.NewRequest(s.Method, s.Route, s.Payload)
	for key, value := range s.Header {
		req.Header.Set(key, value)
	}
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	s.Router.ServeHTTP(resp, req)

	if s.Response != nil {
		if err := json.NewDecoder(resp.Body).Decode(s.Response); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

type otpResult bool

func (o otpResult) Verify(context.Context, *model.Member, string) (bool, error) {
	return bool(o), nil
}

func testConfiguration() *config.Configuration {
	return &config.Configuration{
		ProjectName: "MemberHub",
		DataSource:  config.DataSourceConfig{Dns: "postgres://localhost/memberhub"},
		Server:      config.ServerConfig{Secure: true, SecretKey: "api-secret"},
		Withdrawal: config.WithdrawalConfig{
			MinimumAmount: decimal.NewFromInt(10),
			MaximumAmount: decimal.NewFromInt(10000),
			HomeClientID:  homeClientID,
		},
		OTP: config.OTPConfig{Provider: config.OTPProviderHTTP},
	}
}

func setupRouter(t *testing.T, ds *mocks.MockDataSource, otpValid bool) *gin.Engine {
	t.Helper()
	config.MockConfig(testConfiguration())
	hub, err := memberhub.NewMemberHub(ds,
		memberhub.WithOTPVerifier(otpResult(otpValid)),
		memberhub.WithClock(memberhub.ClockFunc(func() time.Time {
			return time.Date(2024, 3, 9, 7, 5, 2, 0, time.UTC)
		})),
	)
	require.NoError(t, err)
	return NewAPI(hub).Router()
}

func authHeader() map[string]string {
	return map[string]string{middleware.KeyHeader: "api-secret"}
}

func payload(t *testing.T, v interface{}) io.Reader {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(raw)
}

func expectMember(ds *mocks.MockDataSource, balances ...model.BalanceView) {
	ds.On("GetMemberByID", mock.Anything, int64(1001)).Return(&model.Member{
		MemberID: 1001, ClientID: homeClientID, PersonID: "person-1", Status: model.MemberStatusActive, IsValidated: true,
	}, nil)
	ds.On("GetMembershipInfo", mock.Anything, int64(1001)).Return(&model.MembershipInfo{Items: []model.Membership{
		{MemberID: 2002, ClientID: 1000034, PersonID: "person-1"},
		{MemberID: 1001, ClientID: homeClientID, PersonID: "person-1"},
	}}, nil)
	ds.On("GetBalanceViews", mock.Anything, []int64{1001, 2002}).Return(balances, nil)
}

func TestCreateWithdrawal(t *testing.T) {
	ds := new(mocks.MockDataSource)
	expectMember(ds,
		model.BalanceView{MemberID: 1001, AvailableBalance: model.KnownBalance(decimal.NewFromInt(50))},
		model.BalanceView{MemberID: 2002, AvailableBalance: model.KnownBalance(decimal.NewFromInt(60))},
	)
	ds.On("HasApprovedPurchases", mock.Anything, int64(1001)).Return(true, nil)
	ds.On("RecordMemberRedeems", mock.Anything, mock.Anything).Return(int64(2), nil)

	router := setupRouter(t, ds, true)

	var response map[string]interface{}
	resp, err := SetUpTestRequest(TestRequest{
		Payload:  payload(t, map[string]interface{}{"amount": "110.00", "payment_method": "BankTransfer", "otp": "123456"}),
		Response: &response,
		Method:   http.MethodPost,
		Route:    "/members/1001/withdrawals",
		Header:   authHeader(),
		Router:   router,
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, resp.Code)
	assert.Equal(t, "person-1-20240309070502", response["withdrawal_id"])
	assert.Equal(t, true, response["is_partial"])
	entries, ok := response["entries"].([]interface{})
	require.True(t, ok)
	assert.Len(t, entries, 2)
	_, hasOtp := response["otp"]
	assert.False(t, hasOtp)
}

func TestCreateWithdrawal_RuleFailures(t *testing.T) {
	tests := []struct {
		name       string
		body       map[string]interface{}
		otpValid   bool
		wantStatus int
		wantCode   apierror.ErrorCode
	}{
		{
			name:       "unsupported payment method",
			body:       map[string]interface{}{"amount": 20, "payment_method": "Cheque", "otp": "123456"},
			otpValid:   true,
			wantStatus: http.StatusBadRequest,
			wantCode:   apierror.ErrInvalidPaymentMethod,
		},
		{
			name:       "invalid otp",
			body:       map[string]interface{}{"amount": 20, "payment_method": "BankTransfer", "otp": "000000"},
			wantStatus: http.StatusUnauthorized,
			wantCode:   apierror.ErrInvalidMobileOtp,
		},
		{
			name:       "amount above balance",
			body:       map[string]interface{}{"amount": "500", "payment_method": "BankTransfer", "otp": "123456"},
			otpValid:   true,
			wantStatus: http.StatusBadRequest,
			wantCode:   apierror.ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := new(mocks.MockDataSource)
			expectMember(ds,
				model.BalanceView{MemberID: 1001, AvailableBalance: model.KnownBalance(decimal.NewFromInt(50))},
				model.BalanceView{MemberID: 2002, AvailableBalance: model.KnownBalance(decimal.NewFromInt(60))},
			)
			router := setupRouter(t, ds, tt.otpValid)

			var response map[string]interface{}
			resp, err := SetUpTestRequest(TestRequest{
				Payload:  payload(t, tt.body),
				Response: &response,
				Method:   http.MethodPost,
				Route:    "/members/1001/withdrawals",
				Header:   authHeader(),
				Router:   router,
			})
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, resp.Code)
			assert.Equal(t, string(tt.wantCode), response["code"])
			ds.AssertNotCalled(t, "RecordMemberRedeems", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateWithdrawal_BadRequest(t *testing.T) {
	ds := new(mocks.MockDataSource)
	router := setupRouter(t, ds, true)

	tests := []struct {
		name  string
		route string
		body  string
	}{
		{name: "member id is not a number", route: "/members/abc/withdrawals", body: `{"amount":20,"payment_method":"PayPal","otp":"1"}`},
		{name: "malformed json", route: "/members/1001/withdrawals", body: `{"amount":`},
		{name: "missing amount", route: "/members/1001/withdrawals", body: `{"payment_method":"PayPal","otp":"123456"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := SetUpTestRequest(TestRequest{
				Payload: bytes.NewBufferString(tt.body),
				Method:  http.MethodPost,
				Route:   tt.route,
				Header:  authHeader(),
				Router:  router,
			})
			require.NoError(t, err)
			assert.Equal(t, http.StatusBadRequest, resp.Code)
		})
	}
	ds.AssertNotCalled(t, "GetMemberByID", mock.Anything, mock.Anything)
}

func TestCreateWithdrawal_RequiresSecretKey(t *testing.T) {
	ds := new(mocks.MockDataSource)
	router := setupRouter(t, ds, true)

	resp, err := SetUpTestRequest(TestRequest{
		Payload: payload(t, map[string]interface{}{"amount": 20, "payment_method": "PayPal", "otp": "123456"}),
		Method:  http.MethodPost,
		Route:   "/members/1001/withdrawals",
		Router:  router,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestGetMemberBalances(t *testing.T) {
	ds := new(mocks.MockDataSource)
	expectMember(ds,
		model.BalanceView{MemberID: 1001, AvailableBalance: model.KnownBalance(decimal.RequireFromString("140.1264"))},
		model.BalanceView{MemberID: 2002, AvailableBalance: model.UnknownBalance()},
	)
	router := setupRouter(t, ds, true)

	var summary model.BalanceSummary
	resp, err := SetUpTestRequest(TestRequest{
		Method:   http.MethodGet,
		Route:    "/members/1001/balances?refresh=true",
		Header:   authHeader(),
		Response: &summary,
		Router:   router,
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.Code)
	require.Len(t, summary.Balances, 2)
	assert.Equal(t, int64(1001), summary.Balances[0].MemberID)
	assert.False(t, summary.Balances[1].AvailableBalance.IsKnown())
	assert.Equal(t, "140.13", summary.TotalAvailable.StringFixed(2))
}

func TestGetWithdrawal(t *testing.T) {
	ds := new(mocks.MockDataSource)
	ds.On("GetMemberRedeemsByWithdrawalID", mock.Anything, "person-1-20240309070502").Return([]*model.MemberRedeem{
		{ID: 1, MemberID: 1001, AmountRequested: decimal.NewFromInt(50), WithdrawalID: "person-1-20240309070502", IsPartial: true},
		{ID: 2, MemberID: 2002, AmountRequested: decimal.NewFromInt(60), WithdrawalID: "person-1-20240309070502", IsPartial: true},
	}, nil)
	ds.On("GetMemberRedeemsByWithdrawalID", mock.Anything, "unknown").Return(nil, apierror.NewAPIError(apierror.ErrNotFound, "Withdrawal 'unknown' not found", nil))
	router := setupRouter(t, ds, true)

	var rows []model.MemberRedeem
	resp, err := SetUpTestRequest(TestRequest{
		Method:   http.MethodGet,
		Route:    "/withdrawals/person-1-20240309070502",
		Header:   authHeader(),
		Response: &rows,
		Router:   router,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, rows, 2)

	resp, err = SetUpTestRequest(TestRequest{
		Method: http.MethodGet,
		Route:  "/withdrawals/unknown",
		Header: authHeader(),
		Router: router,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
