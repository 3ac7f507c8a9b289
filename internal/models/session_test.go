package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"espectral-server/internal/models"
)

func TestTurnEntry(t *testing.T) {
	entry := models.TurnEntry("Abro la puerta", "La puerta chirría y se abre.")
	assert.Equal(t, "\n\n>> Jugador: Abro la puerta\n\nLa puerta chirría y se abre.", entry)
}

func TestLastNarrative(t *testing.T) {
	t.Run("Opening only", func(t *testing.T) {
		s := &models.GameSession{Transcript: "La mansión te espera."}
		assert.Equal(t, "La mansión te espera.", s.LastNarrative())
	})

	t.Run("After several turns", func(t *testing.T) {
		transcript := "Apertura." +
			models.TurnEntry("Entro", "El vestíbulo está helado.") +
			models.TurnEntry("Subo", "El pasillo se estrecha a cada paso.")
		s := &models.GameSession{Transcript: transcript}
		assert.Equal(t, "El pasillo se estrecha a cada paso.", s.LastNarrative())
	})

	t.Run("Empty transcript", func(t *testing.T) {
		s := &models.GameSession{}
		assert.Equal(t, "", s.LastNarrative())
	})
}
