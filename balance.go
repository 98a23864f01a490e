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
	"fmt"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/cashrewards/memberhub/internal/cache"
	"github.com/cashrewards/memberhub/model"
)

// BalanceProvider reads the available balance of each member ID. With
// forceRefresh set, no cached value may be returned.
type BalanceProvider interface {
	GetBalanceViews(ctx context.Context, memberIDs []int64, forceRefresh bool) ([]model.BalanceView, error)
}

type balanceReader interface {
	GetBalanceViews(ctx context.Context, memberIDs []int64) ([]model.BalanceView, error)
}

// datasourceBalances reads straight from the database; forceRefresh has nothing to bypass.
type datasourceBalances struct {
	reader balanceReader
}

func (d datasourceBalances) GetBalanceViews(ctx context.Context, memberIDs []int64, _ bool) ([]model.BalanceView, error) {
	return d.reader.GetBalanceViews(ctx, memberIDs)
}

// cachedBalance is the cached form of a balance view. Amount is empty for
// an unknown balance.
type cachedBalance struct {
	MemberID int64
	Known    bool
	Amount   string
}

func toCachedBalance(v model.BalanceView) cachedBalance {
	amount, known := v.AvailableBalance.Amount()
	cb := cachedBalance{MemberID: v.MemberID, Known: known}
	if known {
		cb.Amount = amount.String()
	}
	return cb
}

func (c cachedBalance) view() (model.BalanceView, error) {
	if !c.Known {
		return model.BalanceView{MemberID: c.MemberID, AvailableBalance: model.UnknownBalance()}, nil
	}
	amount, err := decimal.NewFromString(c.Amount)
	if err != nil {
		return model.BalanceView{}, err
	}
	return model.BalanceView{MemberID: c.MemberID, AvailableBalance: model.KnownBalance(amount)}, nil
}

// CachedBalanceProvider serves balance views from a cache keyed per member and
// reads misses from the database in one query.
type CachedBalanceProvider struct {
	reader balanceReader
	cache  cache.Cache
	ttl    time.Duration
}

func NewCachedBalanceProvider(reader balanceReader, c cache.Cache, ttl time.Duration) *CachedBalanceProvider {
	return &CachedBalanceProvider{reader: reader, cache: c, ttl: ttl}
}

func balanceCacheKey(memberID int64) string {
	return fmt.Sprintf("memberhub:balance:%d", memberID)
}

func (p *CachedBalanceProvider) GetBalanceViews(ctx context.Context, memberIDs []int64, forceRefresh bool) ([]model.BalanceView, error) {
	ctx, span := tracer.Start(ctx, "Fetching balance views")
	defer span.End()
	span.SetAttributes(attribute.Bool("balance.force_refresh", forceRefresh), attribute.Int("balance.members", len(memberIDs)))

	found := make(map[int64]model.BalanceView, len(memberIDs))
	var misses []int64
	for _, id := range memberIDs {
		if forceRefresh {
			misses = append(misses, id)
			continue
		}
		var cb cachedBalance
		err := p.cache.Get(ctx, balanceCacheKey(id), &cb)
		if err != nil {
			if !errors.Is(err, cache.ErrCacheMiss) {
				logrus.Warnf("balance cache read failed for member %d: %v", id, err)
			}
			misses = append(misses, id)
			continue
		}
		view, err := cb.view()
		if err != nil {
			misses = append(misses, id)
			continue
		}
		found[id] = view
	}

	if len(misses) > 0 {
		views, err := p.reader.GetBalanceViews(ctx, misses)
		if err != nil {
			return nil, logAndRecordError(span, "balance read failed: ", err)
		}
		for _, v := range views {
			found[v.MemberID] = v
			if err := p.cache.Set(ctx, balanceCacheKey(v.MemberID), toCachedBalance(v), p.ttl); err != nil {
				logrus.Warnf("balance cache write failed for member %d: %v", v.MemberID, err)
			}
		}
	}

	views := make([]model.BalanceView, 0, len(memberIDs))
	for _, id := range memberIDs {
		v, ok := found[id]
		if !ok {
			v = model.BalanceView{MemberID: id, AvailableBalance: model.UnknownBalance()}
		}
		views = append(views, v)
	}
	return views, nil
}

// Invalidate drops the cached balances of memberIDs.
func (p *CachedBalanceProvider) Invalidate(ctx context.Context, memberIDs []int64) {
	for _, id := range memberIDs {
		if err := p.cache.Delete(ctx, balanceCacheKey(id)); err != nil {
			logrus.Warnf("balance cache invalidation failed for member %d: %v", id, err)
		}
	}
}

// loadSources resolves the memberships of memberID in draw priority and pairs
// each with its balance.
func (m *MemberHub) loadSources(ctx context.Context, memberID int64, forceRefresh bool) ([]Source, error) {
	memberships, err := m.resolveMemberships(ctx, memberID)
	if err != nil {
		return nil, err
	}

	ids := (&model.MembershipInfo{Items: memberships}).MemberIDs()
	views, err := m.balances.GetBalanceViews(ctx, ids, forceRefresh)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "fetching balance views")
	}
	return pairSources(memberships, views), nil
}

// GetBalanceSummary returns the balance of every membership linked to
// memberID, in draw priority, with the rounded total that a withdrawal is
// validated against.
func (m *MemberHub) GetBalanceSummary(ctx context.Context, memberID int64, forceRefresh bool) (*model.BalanceSummary, error) {
	ctx, span := tracer.Start(ctx, "Getting balance summary")
	defer span.End()

	sources, err := m.loadSources(ctx, memberID, forceRefresh)
	if err != nil {
		return nil, err
	}

	views := balanceViews(sources)
	total, known := model.AggregateAvailable(views)
	return &model.BalanceSummary{
		MemberID:       memberID,
		Balances:       views,
		TotalAvailable: total,
		HasKnown:       known,
	}, nil
}
