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
package mocks

import (
	"context"

	"github.com/cashrewards/memberhub/model"
	"github.com/stretchr/testify/mock"
)

// MockDataSource is a mock implementation of the IDataSource interface
type MockDataSource struct {
	mock.Mock
}

// Member methods

func (m *MockDataSource) GetMemberByID(ctx context.Context, memberID int64) (*model.Member, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Member), args.Error(1)
}

func (m *MockDataSource) GetMembershipInfo(ctx context.Context, memberID int64) (*model.MembershipInfo, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MembershipInfo), args.Error(1)
}

// Balance methods

func (m *MockDataSource) GetBalanceViews(ctx context.Context, memberIDs []int64) ([]model.BalanceView, error) {
	args := m.Called(ctx, memberIDs)
	if fn, ok := args.Get(0).(func(context.Context, []int64) []model.BalanceView); ok {
		return fn(ctx, memberIDs), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.BalanceView), args.Error(1)
}

// Purchase methods

func (m *MockDataSource) HasApprovedPurchases(ctx context.Context, memberID int64) (bool, error) {
	args := m.Called(ctx, memberID)
	return args.Bool(0), args.Error(1)
}

// Wallet methods

func (m *MockDataSource) GetActiveWalletAccount(ctx context.Context, memberID int64) (*model.WalletAccount, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WalletAccount), args.Error(1)
}

// Redeem methods

func (m *MockDataSource) RecordMemberRedeems(ctx context.Context, redeems []*model.MemberRedeem) (int64, error) {
	args := m.Called(ctx, redeems)
	if fn, ok := args.Get(0).(func(context.Context, []*model.MemberRedeem) int64); ok {
		return fn(ctx, redeems), args.Error(1)
	}
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDataSource) GetMemberRedeemsByWithdrawalID(ctx context.Context, withdrawalID string) ([]*model.MemberRedeem, error) {
	args := m.Called(ctx, withdrawalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.MemberRedeem), args.Error(1)
}
