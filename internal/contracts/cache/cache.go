// Package cache decorates the contract store with a Redis-backed view cache.
// Guarantee views are read on every claim declaration and quittance
// generation; caching keeps the external contract system off the hot path.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"sinistra/internal/contracts"
)

const viewKeyPrefix = "contracts:view:"

var lookupDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "sinistra_contract_view_lookup_duration_seconds",
	Help:    "Latency of contract guarantee view lookups by outcome",
	Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
}, []string{"outcome"})

// viewSnapshot is the serialized form of a guarantee view. Snapshots are
// immutable facts at resolution time; staleness is bounded by the TTL.
type viewSnapshot struct {
	EMF                   string `json:"emf"`
	HasPrevoyance         bool   `json:"has_prevoyance"`
	OutstandingPrincipal  int64  `json:"outstanding_principal"`
	PrevoyanceBeneficiary string `json:"prevoyance_beneficiary,omitempty"`
	PrevoyanceCapital     int64  `json:"prevoyance_capital,omitempty"`
}

func (s viewSnapshot) toGuarantees() contracts.Guarantees {
	g := contracts.Guarantees{EMF: s.EMF, CapitalRestantDu: s.OutstandingPrincipal}
	if s.HasPrevoyance {
		g.Prevoyance = &contracts.PrevoyanceGuarantee{
			Beneficiaire: s.PrevoyanceBeneficiary,
			Capital:      s.PrevoyanceCapital,
		}
	}
	return g
}

// Store wraps an upstream contract store with Redis caching.
type Store struct {
	upstream contracts.Store
	client   *redis.Client
	ttl      time.Duration
}

func New(upstream contracts.Store, client *redis.Client, ttl time.Duration) *Store {
	return &Store{upstream: upstream, client: client, ttl: ttl}
}

func (s *Store) Resolve(ctx context.Context, ref contracts.Ref) (contracts.GuaranteeView, error) {
	start := time.Now()
	key := viewKeyPrefix + string(ref.Variant) + ":" + ref.ContractID.String()

	raw, err := s.client.Get(ctx, key).Bytes()
	if err == nil {
		var snap viewSnapshot
		if jsonErr := json.Unmarshal(raw, &snap); jsonErr == nil {
			lookupDuration.WithLabelValues("hit").Observe(time.Since(start).Seconds())
			return contracts.View(snap.toGuarantees()), nil
		}
		// Corrupt entry: fall through to upstream and overwrite.
	} else if !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("contract view cache get: %w", err)
	}

	view, err := s.upstream.Resolve(ctx, ref)
	if err != nil {
		lookupDuration.WithLabelValues("miss").Observe(time.Since(start).Seconds())
		return nil, err
	}

	snap := viewSnapshot{
		EMF:                   view.EMFName(),
		HasPrevoyance:         view.HasPrevoyance(),
		OutstandingPrincipal:  view.OutstandingPrincipal(),
		PrevoyanceBeneficiary: view.PrevoyanceBeneficiary(),
		PrevoyanceCapital:     view.PrevoyanceCapital(),
	}
	if raw, err := json.Marshal(snap); err == nil {
		// Best effort: a failed cache write never fails the resolution.
		_ = s.client.Set(ctx, key, raw, s.ttl).Err()
	}
	lookupDuration.WithLabelValues("miss").Observe(time.Since(start).Seconds())
	return view, nil
}
