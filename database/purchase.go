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

	"github.com/cashrewards/memberhub/internal/apierror"
)

const purchaseStatusApproved = "Approved"

// HasApprovedPurchases checks whether the member has ever recorded an approved purchase.
func (d Datasource) HasApprovedPurchases(ctx context.Context, memberID int64) (bool, error) {
	var exists bool
	err := d.Conn.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM memberhub.member_transactions
			WHERE member_id = $1 AND status = $2
		)
	`, memberID, purchaseStatusApproved).Scan(&exists)
	if err != nil {
		return false, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to check purchase history", err)
	}
	return exists, nil
}
