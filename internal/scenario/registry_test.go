package scenario_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"espectral-server/internal/models"
	"espectral-server/internal/scenario"
)

func TestGet(t *testing.T) {
	t.Run("Known scenario", func(t *testing.T) {
		def, err := scenario.Get("casa_embrujada")
		require.NoError(t, err)
		assert.Equal(t, "La Casa Embrujada", def.Title)
		assert.NotEmpty(t, def.Description)
		assert.NotEmpty(t, def.OpeningInstruction)
	})

	t.Run("Unknown scenario", func(t *testing.T) {
		_, err := scenario.Get("cementerio_olvidado")
		assert.ErrorIs(t, err, models.ErrScenarioNotFound)
	})
}

func TestList(t *testing.T) {
	defs := scenario.List()

	require.Len(t, defs, 2)
	assert.Equal(t, "casa_embrujada", defs[0].ID)
	assert.Equal(t, "ouija_maldita", defs[1].ID)

	for _, def := range defs {
		assert.NotEmpty(t, def.Title)
		assert.NotEmpty(t, def.OpeningInstruction)
	}
}
