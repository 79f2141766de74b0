//go:build integration

package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sinistra/internal/contracts"
	platformredis "sinistra/internal/platform/redis"
	id "sinistra/pkg/domain"
)

// countingStore tracks upstream resolutions so cache hits are observable.
type countingStore struct {
	upstream contracts.Store
	calls    int
}

func (s *countingStore) Resolve(ctx context.Context, ref contracts.Ref) (contracts.GuaranteeView, error) {
	s.calls++
	return s.upstream.Resolve(ctx, ref)
}

// Needs a reachable Redis:
//
//	REDIS_ADDR=localhost:6379 go test -tags=integration ./internal/contracts/cache/
func TestResolveCachesViews(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	client, err := platformredis.Connect(ctx, addr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	inner := contracts.NewInMemory()
	contract := contracts.CreditIndividuel{
		ID:               id.NewContractID(),
		NumeroContrat:    "IND-IT-0001",
		Emprunteur:       "Fatou Ndiaye",
		CapitalRestantDu: 450_000,
		Prevoyance:       &contracts.PrevoyanceGuarantee{Beneficiaire: "Awa Diop", Capital: 150_000},
		EMF:              "MicroFin Sarl",
	}
	inner.Register(contract)
	counting := &countingStore{upstream: inner}
	store := New(counting, client, time.Minute)
	t.Cleanup(func() {
		client.Del(ctx, viewKeyPrefix+string(contracts.VariantCreditIndividuel)+":"+contract.ID.String())
	})

	first, err := store.Resolve(ctx, contract.Ref())
	require.NoError(t, err)
	assert.Equal(t, 1, counting.calls)

	second, err := store.Resolve(ctx, contract.Ref())
	require.NoError(t, err)
	assert.Equal(t, 1, counting.calls, "second resolve should hit the cache")

	assert.Equal(t, first.OutstandingPrincipal(), second.OutstandingPrincipal())
	assert.True(t, second.HasPrevoyance())
	assert.Equal(t, "Awa Diop", second.PrevoyanceBeneficiary())
}
