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
	"fmt"

	"github.com/cashrewards/memberhub/internal/apierror"
	"github.com/cashrewards/memberhub/model"
)

// GetMemberByID retrieves a member by its ID.
// Returns an ErrNotFound API error when no member has that ID.
func (d Datasource) GetMemberByID(ctx context.Context, memberID int64) (*model.Member, error) {
	member := &model.Member{}
	var premiumClientID sql.NullInt64

	row := d.Conn.QueryRowContext(ctx, `
		SELECT member_id, client_id, COALESCE(person_id, ''), first_name, email, mobile, status, is_validated,
		       premium_status, premium_client_id, date_joined
		FROM memberhub.members
		WHERE member_id = $1
	`, memberID)

	err := row.Scan(
		&member.MemberID, &member.ClientID, &member.PersonID, &member.FirstName, &member.Email, &member.Mobile,
		&member.Status, &member.IsValidated, &member.PremiumStatus, &premiumClientID, &member.DateJoined,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Member with ID '%d' not found", memberID), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve member", err)
	}
	if premiumClientID.Valid {
		member.PremiumClientID = int(premiumClientID.Int64)
	}

	return member, nil
}

// GetMembershipInfo retrieves every membership that shares the person identity
// of the given member. A member without a person identity resolves to itself.
// Rows come back in join order; callers apply their own priority ordering.
func (d Datasource) GetMembershipInfo(ctx context.Context, memberID int64) (*model.MembershipInfo, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT m.member_id, m.client_id, COALESCE(m.person_id, ''), m.date_joined
		FROM memberhub.members m
		WHERE m.member_id = $1
		   OR (m.person_id IS NOT NULL
		       AND m.person_id = (SELECT person_id FROM memberhub.members WHERE member_id = $1))
		ORDER BY m.date_joined, m.member_id
	`, memberID)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve memberships", err)
	}
	defer rows.Close()

	info := &model.MembershipInfo{}
	for rows.Next() {
		var item model.Membership
		if err := rows.Scan(&item.MemberID, &item.ClientID, &item.PersonID, &item.DateJoined); err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan membership data", err)
		}
		info.Items = append(info.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error occurred while iterating over memberships", err)
	}

	if len(info.Items) == 0 {
		return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Member with ID '%d' not found", memberID), nil)
	}

	return info, nil
}
