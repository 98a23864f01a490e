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
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/cashrewards/memberhub/model"
)

// cent is the smallest amount that can be drawn from a membership.
var cent = decimal.New(1, -model.AmountPlaces)

// Allocation is the amount drawn from one membership.
type Allocation struct {
	MemberID int64           `json:"member_id"`
	ClientID int             `json:"client_id"`
	Amount   decimal.Decimal `json:"amount"`
}

// AllocationPlan is the outcome of a waterfall over the sources of one withdrawal.
type AllocationPlan struct {
	Requested   decimal.Decimal `json:"requested"`
	Allocations []Allocation    `json:"allocations"`
	// Remaining is what the sources could not cover. It is either zero or a
	// rounding residue of at most one cent per drawable source.
	Remaining decimal.Decimal `json:"remaining"`
	IsPartial bool            `json:"is_partial"`
}

// Total is the sum drawn across every allocation.
func (p AllocationPlan) Total() decimal.Decimal {
	total := decimal.Zero
	for _, a := range p.Allocations {
		total = total.Add(a.Amount)
	}
	return total
}

// Allocate draws requested from sources in the order given. Each drawable
// source contributes at most its cap (balance cut to two decimal places);
// sources that are unknown, zero or negative are skipped and get no
// allocation. The plan is partial when more than one source was drawn.
//
// Validation compares the request with the half-up rounded total of all
// balances while caps are cut down, so a remainder of up to one cent per
// drawable source can be left over. Anything above that is ErrAllocationShortfall.
func Allocate(requested decimal.Decimal, sources []Source) (AllocationPlan, error) {
	plan := AllocationPlan{Requested: requested}
	remaining := requested
	drawable := 0

	for _, s := range sources {
		if !remaining.IsPositive() {
			break
		}
		if !s.Balance.Drawable() {
			continue
		}
		drawable++

		drawn := decimal.Min(s.Balance.Cap(), remaining)
		if drawn.IsPositive() {
			plan.Allocations = append(plan.Allocations, Allocation{
				MemberID: s.Membership.MemberID,
				ClientID: s.Membership.ClientID,
				Amount:   drawn,
			})
		}
		remaining = remaining.Sub(drawn)
	}

	plan.Remaining = remaining
	plan.IsPartial = len(plan.Allocations) > 1

	if remaining.IsPositive() {
		tolerance := cent.Mul(decimal.NewFromInt(int64(drawable)))
		if remaining.GreaterThan(tolerance) {
			return plan, ErrAllocationShortfall
		}
		logrus.Warnf("allocation left a rounding residue of %s on a request of %s", remaining.StringFixed(model.AmountPlaces), requested.StringFixed(model.AmountPlaces))
	}

	return plan, nil
}
