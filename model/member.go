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

package model

import (
	"strconv"
	"time"
)

const MemberStatusActive = "Active"

type Member struct {
	MemberID        int64     `json:"member_id"`
	ClientID        int       `json:"client_id"`
	PersonID        string    `json:"person_id,omitempty"`
	FirstName       string    `json:"first_name"`
	Email           string    `json:"email"`
	Mobile          string    `json:"mobile"`
	Status          string    `json:"status"`
	IsValidated     bool      `json:"is_validated"`
	PremiumStatus   int       `json:"premium_status"`
	PremiumClientID int       `json:"premium_client_id,omitempty"`
	DateJoined      time.Time `json:"date_joined"`
}

// CanWithdraw reports whether the member is marked available and validated.
func (m *Member) CanWithdraw() bool {
	return m.Status == MemberStatusActive && m.IsValidated
}

// CorrelationKey is the identity prefix of a withdrawal id: the person id
// when one is set, the member id otherwise.
func (m *Member) CorrelationKey() string {
	if m.PersonID != "" {
		return m.PersonID
	}
	return strconv.FormatInt(m.MemberID, 10)
}

// Membership is one (member, client) pairing under a shared person identity.
type Membership struct {
	MemberID   int64     `json:"member_id"`
	ClientID   int       `json:"client_id"`
	PersonID   string    `json:"person_id,omitempty"`
	DateJoined time.Time `json:"date_joined"`
}

type MembershipInfo struct {
	Items []Membership `json:"items"`
}

func (i *MembershipInfo) MemberIDs() []int64 {
	ids := make([]int64, 0, len(i.Items))
	for _, item := range i.Items {
		ids = append(ids, item.MemberID)
	}
	return ids
}

type WalletAccount struct {
	MemberID  int64     `json:"member_id"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at"`
}
