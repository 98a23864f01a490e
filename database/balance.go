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

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/cashrewards/memberhub/internal/apierror"
	"github.com/cashrewards/memberhub/model"
)

// GetBalanceViews retrieves the available balance of each member ID.
// A member with no balance row, or a NULL balance, gets an unknown balance;
// the result keeps the order of memberIDs.
func (d Datasource) GetBalanceViews(ctx context.Context, memberIDs []int64) ([]model.BalanceView, error) {
	if len(memberIDs) == 0 {
		return []model.BalanceView{}, nil
	}

	rows, err := d.Conn.QueryContext(ctx, `
		SELECT member_id, available_balance
		FROM memberhub.member_balances
		WHERE member_id = ANY($1)
	`, pq.Array(memberIDs))
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve balances", err)
	}
	defer rows.Close()

	found := make(map[int64]model.AvailableBalance, len(memberIDs))
	for rows.Next() {
		var memberID int64
		var available decimal.NullDecimal
		if err := rows.Scan(&memberID, &available); err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan balance data", err)
		}
		found[memberID] = model.BalanceFromNullDecimal(available)
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error occurred while iterating over balances", err)
	}

	views := make([]model.BalanceView, 0, len(memberIDs))
	for _, id := range memberIDs {
		balance, ok := found[id]
		if !ok {
			balance = model.UnknownBalance()
		}
		views = append(views, model.BalanceView{MemberID: id, AvailableBalance: balance})
	}
	return views, nil
}
