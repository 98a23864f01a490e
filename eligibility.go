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

	pkgerrors "github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
)

// Eligibility is the outcome of the approved-purchase check for one call.
// It is computed once and passed along; nothing on MemberHub holds it.
type Eligibility struct {
	Eligible bool `json:"eligible"`
	// QualifyingMemberID is the first membership, in priority order, found
	// with an approved purchase. Zero when none was found.
	QualifyingMemberID int64 `json:"qualifying_member_id,omitempty"`
	// Checked counts the memberships whose purchase history was queried.
	Checked int `json:"checked"`
}

// checkEligibility queries purchase history one membership at a time in
// priority order and stops at the first approved purchase. The queries run
// sequentially so that later memberships are never queried once one passes.
func (m *MemberHub) checkEligibility(ctx context.Context, sources []Source) (Eligibility, error) {
	ctx, span := tracer.Start(ctx, "Checking redeem eligibility")
	defer span.End()

	var result Eligibility
	for _, s := range sources {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		result.Checked++
		approved, err := m.datasource.HasApprovedPurchases(ctx, s.Membership.MemberID)
		if err != nil {
			return result, logAndRecordError(span, "purchase history lookup failed: ", pkgerrors.Wrapf(err, "checking purchases of member %d", s.Membership.MemberID))
		}
		if approved {
			result.Eligible = true
			result.QualifyingMemberID = s.Membership.MemberID
			break
		}
	}

	span.SetAttributes(attribute.Bool("eligibility.eligible", result.Eligible), attribute.Int("eligibility.checked", result.Checked))
	return result, nil
}
