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
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cashrewards/memberhub/database/mocks"
	"github.com/cashrewards/memberhub/model"
)

func TestLedgerBatch_SharedIdentity(t *testing.T) {
	sydney := time.FixedZone("AEST", 10*3600)
	batch := NewLedgerBatch(new(mocks.MockDataSource), "person-1", model.PaymentMethodPayPal, fixedNow.In(sydney))

	batch.AddPlan(AllocationPlan{
		Allocations: []Allocation{
			{MemberID: 1001, Amount: decimal.RequireFromString("50")},
			{MemberID: 2002, Amount: decimal.RequireFromString("60.005")},
		},
		IsPartial: true,
	})

	assert.Equal(t, "person-1-20240309070502", batch.WithdrawalID())
	entries := batch.Entries()
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, batch.WithdrawalID(), e.WithdrawalID)
		assert.True(t, e.DateRequested.Equal(fixedNow))
		assert.Equal(t, time.UTC, e.DateRequested.Location())
		assert.Equal(t, 2, e.PaymentMethodID)
		assert.True(t, e.IsPartial)
	}
	assert.Equal(t, "60.01", entries[1].AmountRequested.String())
}

func TestLedgerBatch_Commit(t *testing.T) {
	ds := new(mocks.MockDataSource)
	ds.On("RecordMemberRedeems", mock.Anything, mock.Anything).Return(int64(1), nil).Once()

	batch := NewLedgerBatch(ds, "42", model.PaymentMethodBankTransfer, fixedNow)
	batch.Add(42, decimal.NewFromInt(15), false)

	count, err := batch.Commit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	_, err = batch.Commit(context.Background())
	assert.EqualError(t, err, "ledger batch already committed")
	ds.AssertNumberOfCalls(t, "RecordMemberRedeems", 1)
}

func TestLedgerBatch_EmptyBatch(t *testing.T) {
	ds := new(mocks.MockDataSource)
	batch := NewLedgerBatch(ds, "42", model.PaymentMethodBankTransfer, fixedNow)

	_, err := batch.Commit(context.Background())
	assert.EqualError(t, err, "ledger batch has no entries")
	ds.AssertNotCalled(t, "RecordMemberRedeems", mock.Anything, mock.Anything)
}

func TestLedgerBatch_CommitFailureCanRetry(t *testing.T) {
	ds := new(mocks.MockDataSource)
	writeErr := errors.New("deadlock detected")
	ds.On("RecordMemberRedeems", mock.Anything, mock.Anything).Return(int64(0), writeErr).Once()
	ds.On("RecordMemberRedeems", mock.Anything, mock.Anything).Return(int64(1), nil).Once()

	batch := NewLedgerBatch(ds, "42", model.PaymentMethodBankTransfer, fixedNow)
	batch.Add(42, decimal.NewFromInt(15), false)

	_, err := batch.Commit(context.Background())
	assert.ErrorIs(t, err, writeErr)
	assert.Contains(t, err.Error(), "committing withdrawal 42-20240309070502")

	count, err := batch.Commit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
