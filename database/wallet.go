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
	"errors"

	"github.com/cashrewards/memberhub/internal/apierror"
	"github.com/cashrewards/memberhub/model"
)

// GetActiveWalletAccount retrieves the member's active linked wallet account.
// It returns nil and no error when the member has no active account.
func (d Datasource) GetActiveWalletAccount(ctx context.Context, memberID int64) (*model.WalletAccount, error) {
	account := &model.WalletAccount{}
	err := d.Conn.QueryRowContext(ctx, `
		SELECT member_id, email, is_active, verified, created_at
		FROM memberhub.paypal_accounts
		WHERE member_id = $1 AND is_active = TRUE
		ORDER BY created_at DESC
		LIMIT 1
	`, memberID).Scan(&account.MemberID, &account.Email, &account.IsActive, &account.Verified, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve wallet account", err)
	}
	return account, nil
}
