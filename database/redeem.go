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

package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cashrewards/memberhub/internal/apierror"
	"github.com/cashrewards/memberhub/model"
)

// RecordMemberRedeems inserts every ledger row of one withdrawal inside a
// single database transaction. Either all rows are committed or none are.
//
// Parameters:
// - ctx: The context to manage the lifecycle of the transaction.
// - redeems: The rows to insert. Each row's ID is set from the database on success.
//
// Returns:
// - int64: The number of rows committed.
// - error: An error if the transaction could not be started, a row failed, or the commit failed.
func (d Datasource) RecordMemberRedeems(ctx context.Context, redeems []*model.MemberRedeem) (int64, error) {
	if len(redeems) == 0 {
		return 0, nil
	}

	tx, err := d.Conn.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelDefault})
	if err != nil {
		return 0, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to begin transaction", err)
	}

	// Ensure that the transaction is rolled back if an error occurs during execution
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	ids := make([]int64, len(redeems))
	for i, r := range redeems {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO memberhub.member_redeems (member_id, amount_requested, payment_method_id, withdrawal_id, is_partial, date_requested)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`, r.MemberID, r.AmountRequested.StringFixed(model.AmountPlaces), r.PaymentMethodID, r.WithdrawalID, r.IsPartial, r.DateRequested).Scan(&ids[i])
		if err != nil {
			return 0, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to record member redeem", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to commit transaction", err)
	}

	for i, r := range redeems {
		r.ID = ids[i]
	}
	return int64(len(redeems)), nil
}

// GetMemberRedeemsByWithdrawalID retrieves the ledger rows that share a withdrawal id.
func (d Datasource) GetMemberRedeemsByWithdrawalID(ctx context.Context, withdrawalID string) ([]*model.MemberRedeem, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT id, member_id, amount_requested, payment_method_id, withdrawal_id, is_partial, date_requested, COALESCE(payment_status, '')
		FROM memberhub.member_redeems
		WHERE withdrawal_id = $1
		ORDER BY id
	`, withdrawalID)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve member redeems", err)
	}
	defer rows.Close()

	var redeems []*model.MemberRedeem
	for rows.Next() {
		r := &model.MemberRedeem{}
		if err := rows.Scan(&r.ID, &r.MemberID, &r.AmountRequested, &r.PaymentMethodID, &r.WithdrawalID, &r.IsPartial, &r.DateRequested, &r.PaymentStatus); err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan member redeem", err)
		}
		redeems = append(redeems, r)
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error occurred while iterating over member redeems", err)
	}

	if len(redeems) == 0 {
		return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Withdrawal '%s' not found", withdrawalID), nil)
	}
	return redeems, nil
}
