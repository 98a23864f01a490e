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
	"sort"

	pkgerrors "github.com/pkg/errors"

	"github.com/cashrewards/memberhub/internal/apierror"
	"github.com/cashrewards/memberhub/model"
)

// Source is a membership paired with the balance read for it.
type Source struct {
	Membership model.Membership
	Balance    model.AvailableBalance
}

// OrderMemberships returns memberships in draw priority: memberships of the
// home client first, then every other membership in the order given.
// The input slice is left untouched.
func OrderMemberships(items []model.Membership, homeClientID int) []model.Membership {
	ordered := make([]model.Membership, len(items))
	copy(ordered, items)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].ClientID == homeClientID && ordered[j].ClientID != homeClientID
	})
	return ordered
}

// resolveMemberships fetches every membership linked to memberID and orders it
// for drawing.
func (m *MemberHub) resolveMemberships(ctx context.Context, memberID int64) ([]model.Membership, error) {
	ctx, span := tracer.Start(ctx, "Resolving memberships")
	defer span.End()

	info, err := m.datasource.GetMembershipInfo(ctx, memberID)
	if err != nil {
		if errors.Is(err, apierror.New(apierror.ErrNotFound, "")) {
			return nil, ErrMemberNotFound
		}
		return nil, logAndRecordError(span, "membership lookup failed: ", pkgerrors.Wrap(err, "resolving memberships"))
	}
	if info == nil || len(info.Items) == 0 {
		return nil, ErrMemberNotFound
	}

	return OrderMemberships(info.Items, m.config.Withdrawal.HomeClientID), nil
}

// pairSources attaches a balance to each membership, keeping membership order.
// A membership missing from views gets an unknown balance.
func pairSources(memberships []model.Membership, views []model.BalanceView) []Source {
	byMember := make(map[int64]model.AvailableBalance, len(views))
	for _, v := range views {
		byMember[v.MemberID] = v.AvailableBalance
	}

	sources := make([]Source, 0, len(memberships))
	for _, ms := range memberships {
		balance, ok := byMember[ms.MemberID]
		if !ok {
			balance = model.UnknownBalance()
		}
		sources = append(sources, Source{Membership: ms, Balance: balance})
	}
	return sources
}

func balanceViews(sources []Source) []model.BalanceView {
	views := make([]model.BalanceView, 0, len(sources))
	for _, s := range sources {
		views = append(views, model.BalanceView{MemberID: s.Membership.MemberID, AvailableBalance: s.Balance})
	}
	return views
}
