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
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cashrewards/memberhub/config"
	"github.com/cashrewards/memberhub/database/mocks"
	"github.com/cashrewards/memberhub/model"
)

const (
	homeClientID    = 1000000
	partnerClientID = 1000034
)

var fixedNow = time.Date(2024, 3, 9, 7, 5, 2, 0, time.UTC)

type stubVerifier struct {
	valid bool
	err   error
	calls int
}

func (s *stubVerifier) Verify(context.Context, *model.Member, string) (bool, error) {
	s.calls++
	return s.valid, s.err
}

func testConfig() *config.Configuration {
	return &config.Configuration{
		ProjectName: "MemberHub",
		DataSource:  config.DataSourceConfig{Dns: "postgres://localhost/memberhub"},
		Withdrawal: config.WithdrawalConfig{
			MinimumAmount:  decimal.NewFromInt(10),
			MaximumAmount:  decimal.NewFromInt(10000),
			HomeClientID:   homeClientID,
			LockTimeoutSec: 1,
		},
		OTP:          config.OTPConfig{Provider: config.OTPProviderHTTP},
		BalanceCache: config.BalanceCacheConfig{TTLSec: 60},
	}
}

func newTestHubWithConfig(t *testing.T, cfg *config.Configuration, ds *mocks.MockDataSource, opts ...Option) *MemberHub {
	t.Helper()
	config.MockConfig(cfg)
	base := []Option{
		WithClock(ClockFunc(func() time.Time { return fixedNow })),
		WithOTPVerifier(&stubVerifier{valid: true}),
	}
	hub, err := NewMemberHub(ds, append(base, opts...)...)
	require.NoError(t, err)
	return hub
}

func newTestHub(t *testing.T, ds *mocks.MockDataSource, opts ...Option) *MemberHub {
	return newTestHubWithConfig(t, testConfig(), ds, opts...)
}

func activeMember(memberID int64, personID string) *model.Member {
	return &model.Member{
		MemberID:    memberID,
		ClientID:    homeClientID,
		PersonID:    personID,
		FirstName:   gofakeit.FirstName(),
		Email:       gofakeit.Email(),
		Mobile:      gofakeit.Phone(),
		Status:      model.MemberStatusActive,
		IsValidated: true,
		DateJoined:  fixedNow.Add(-365 * 24 * time.Hour),
	}
}

func membership(memberID int64, clientID int, personID string) model.Membership {
	return model.Membership{MemberID: memberID, ClientID: clientID, PersonID: personID, DateJoined: fixedNow.Add(-time.Duration(memberID) * time.Hour)}
}

func known(amount string) model.AvailableBalance {
	return model.KnownBalance(decimal.RequireFromString(amount))
}

// withdrawalFixture wires the reads of one withdrawal onto a mock datasource.
type withdrawalFixture struct {
	member      *model.Member
	memberships []model.Membership
	balances    map[int64]model.AvailableBalance
	purchases   map[int64]bool
}

func (f withdrawalFixture) expect(ds *mocks.MockDataSource) {
	ds.On("GetMemberByID", mock.Anything, f.member.MemberID).Return(f.member, nil)
	ds.On("GetMembershipInfo", mock.Anything, f.member.MemberID).Return(&model.MembershipInfo{Items: f.memberships}, nil)
	ds.On("GetBalanceViews", mock.Anything, mock.Anything).Return(func(_ context.Context, ids []int64) []model.BalanceView {
		views := make([]model.BalanceView, 0, len(ids))
		for _, id := range ids {
			balance, ok := f.balances[id]
			if !ok {
				balance = model.UnknownBalance()
			}
			views = append(views, model.BalanceView{MemberID: id, AvailableBalance: balance})
		}
		return views
	}, nil)
	for id, approved := range f.purchases {
		ds.On("HasApprovedPurchases", mock.Anything, id).Return(approved, nil)
	}
}

func expectCommit(ds *mocks.MockDataSource) *[]*model.MemberRedeem {
	var committed []*model.MemberRedeem
	ds.On("RecordMemberRedeems", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		committed = args.Get(1).([]*model.MemberRedeem)
	}).Return(func(_ context.Context, redeems []*model.MemberRedeem) int64 {
		return int64(len(redeems))
	}, nil)
	return &committed
}
