package ports

import (
	"context"
	"testing"

	"github.com/aretw0/tendril/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ContractDefinition is the fixture saved by RunDefinitionStoreContract.
func ContractDefinition() *domain.Definition {
	return &domain.Definition{
		Components: domain.ComponentSet{
			domain.KindCounter: {{Label: "pours", Value: 0}},
			domain.KindTimer:   {{Label: "clock", Value: 30.5}},
		},
		Events: []domain.EventDef{
			{
				Label:      "refill",
				Conditions: []domain.CheckDef{{Label: "pours", Method: "less_than", Value: 1}},
				Effects:    []domain.ActionDef{{Label: "pours", Method: "increase_value", Arg: 5}},
			},
			{
				Label:      "announce",
				Conditions: []domain.CheckDef{{Label: "clock", Method: "greater_than", Value: 10.0}},
				Effects:    []domain.ActionDef{{Label: "clock", Method: "set_state", Arg: "STOPPED"}},
				Deactivate: []domain.CheckDef{{Label: "pours", Method: "equal_to", Value: 5}},
			},
		},
	}
}

// RunDefinitionStoreContract runs a suite of tests to verify that a DefinitionStore
// implementation adheres to the defined interface contract.
// The store must be empty when the suite starts.
func RunDefinitionStoreContract(t *testing.T, store DefinitionStore) {
	ctx := context.Background()

	t.Run("Load Empty", func(t *testing.T) {
		_, err := store.Load(ctx)
		assert.ErrorIs(t, err, domain.ErrDefinitionNotFound)
	})

	t.Run("Save and Load", func(t *testing.T) {
		def := ContractDefinition()
		require.NoError(t, store.Save(ctx, def), "Save should not return error")

		loaded, err := store.Load(ctx)
		require.NoError(t, err, "Load should not return error")

		require.Len(t, loaded.Components, 2)
		assert.Equal(t, "pours", loaded.Components[domain.KindCounter][0].Label)
		assert.Equal(t, "clock", loaded.Components[domain.KindTimer][0].Label)

		require.Len(t, loaded.Events, 2)
		assert.Equal(t, "refill", loaded.Events[0].Label, "event order must be preserved")
		assert.Equal(t, "announce", loaded.Events[1].Label)
		assert.Equal(t, "increase_value", loaded.Events[0].Effects[0].Method)
		assert.Len(t, loaded.Events[1].Deactivate, 1)
		assert.Empty(t, loaded.Events[1].Activate)
		// Numbers may come back as float64 or json.Number depending on the encoding,
		// so compare through the domain coercion.
		v, err := domain.Coerce(loaded.Events[0].Effects[0].Arg, domain.TypeInt)
		require.NoError(t, err)
		assert.Equal(t, int64(5), v.AsInt())
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		def := ContractDefinition()
		def.Events = def.Events[:1]
		require.NoError(t, store.Save(ctx, def))

		loaded, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Len(t, loaded.Events, 1)
	})
}
