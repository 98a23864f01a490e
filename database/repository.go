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

	"github.com/cashrewards/memberhub/model"
)

// IDataSource defines the interface for data source operations, grouping related functionalities.
type IDataSource interface {
	member   // Interface for member and membership lookups
	balance  // Interface for balance reads
	purchase // Interface for purchase history checks
	wallet   // Interface for linked wallet accounts
	redeem   // Interface for the withdrawal ledger
}

// member defines methods for reading members and their sibling memberships.
type member interface {
	GetMemberByID(ctx context.Context, memberID int64) (*model.Member, error)             // Retrieves a member by ID
	GetMembershipInfo(ctx context.Context, memberID int64) (*model.MembershipInfo, error) // Retrieves every membership sharing the member's person identity
}

// balance defines methods for reading available balances.
type balance interface {
	GetBalanceViews(ctx context.Context, memberIDs []int64) ([]model.BalanceView, error) // Retrieves one balance view per member ID, in the given order
}

// purchase defines methods for checking purchase history.
type purchase interface {
	HasApprovedPurchases(ctx context.Context, memberID int64) (bool, error) // Checks whether the member ever had an approved purchase
}

// wallet defines methods for linked electronic wallet accounts.
type wallet interface {
	GetActiveWalletAccount(ctx context.Context, memberID int64) (*model.WalletAccount, error) // Retrieves the active wallet account, nil when none
}

// redeem defines methods for the append-only withdrawal ledger.
type redeem interface {
	RecordMemberRedeems(ctx context.Context, redeems []*model.MemberRedeem) (int64, error)                  // Inserts all rows in one transaction
	GetMemberRedeemsByWithdrawalID(ctx context.Context, withdrawalID string) ([]*model.MemberRedeem, error) // Retrieves the rows of one withdrawal
}
