package contracts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "sinistra/pkg/domain"
	"sinistra/pkg/platform/sentinel"
)

func TestParseVariant(t *testing.T) {
	for _, tag := range []string{"credit_individuel", "credit_groupe",
		"credit_scolaire", "credit_agricole", "credit_stock"} {
		v, err := ParseVariant(tag)
		require.NoError(t, err, tag)
		assert.Equal(t, VariantTag(tag), v)
	}

	_, err := ParseVariant("credit_immobilier")
	assert.Error(t, err)
}

func TestGuaranteeView(t *testing.T) {
	t.Run("with prevoyance", func(t *testing.T) {
		view := View(Guarantees{
			EMF:              "MicroFin Sarl",
			CapitalRestantDu: 500_000,
			Prevoyance:       &PrevoyanceGuarantee{Beneficiaire: "Awa Diop", Capital: 200_000},
		})
		assert.True(t, view.HasPrevoyance())
		assert.EqualValues(t, 500_000, view.OutstandingPrincipal())
		assert.Equal(t, "Awa Diop", view.PrevoyanceBeneficiary())
		assert.EqualValues(t, 200_000, view.PrevoyanceCapital())
		assert.Equal(t, "MicroFin Sarl", view.EMFName())
	})

	t.Run("without prevoyance", func(t *testing.T) {
		view := View(Guarantees{EMF: "MicroFin Sarl", CapitalRestantDu: 80_000})
		assert.False(t, view.HasPrevoyance())
		assert.Empty(t, view.PrevoyanceBeneficiary())
		assert.Zero(t, view.PrevoyanceCapital())
	})
}

func TestInMemoryResolve(t *testing.T) {
	store := NewInMemory()
	contract := CreditAgricole{
		ID:               id.NewContractID(),
		NumeroContrat:    "AGR-2024-0042",
		Emprunteur:       "Moussa Ba",
		Campagne:         "arachide 2024",
		CapitalRestantDu: 320_000,
		EMF:              "EMF Agricole",
	}
	store.Register(contract)

	view, err := store.Resolve(context.Background(), contract.Ref())
	require.NoError(t, err)
	assert.EqualValues(t, 320_000, view.OutstandingPrincipal())
	assert.Equal(t, "EMF Agricole", view.EMFName())

	// Same id under a different variant is a different reference.
	_, err = store.Resolve(context.Background(),
		Ref{Variant: VariantCreditStock, ContractID: contract.ID})
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}
