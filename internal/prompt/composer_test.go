package prompt_test

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"espectral-server/internal/prompt"
	"espectral-server/internal/scenario"
)

func TestOpening(t *testing.T) {
	def, err := scenario.Get("casa_embrujada")
	require.NoError(t, err)

	messages := prompt.Opening(def)

	require.Len(t, messages, 2)
	assert.Equal(t, prompt.RoleSystem, messages[0].Role)
	assert.Equal(t, def.OpeningInstruction, messages[0].Content)
	assert.Equal(t, prompt.RoleUser, messages[1].Role)
	assert.Equal(t, "Comienza la narración. Describe la escena inicial de forma breve y directa.", messages[1].Content)

	// Composition is pure: same input, same messages.
	assert.Equal(t, messages, prompt.Opening(def))
}

func TestContinuation(t *testing.T) {
	transcript := "La puerta se abre sola."
	messages := prompt.Continuation("La Casa Embrujada", 4, transcript, "Entro despacio")

	require.Len(t, messages, 2)
	assert.Equal(t, prompt.RoleSystem, messages[0].Role)
	assert.Equal(t, prompt.RoleUser, messages[1].Role)

	system := messages[0].Content
	assert.Contains(t, system, "Modo de Juego: La Casa Embrujada")
	assert.Contains(t, system, fmt.Sprintf("Turno: 4 de %d", prompt.TurnCeiling))
	assert.Contains(t, system, transcript)

	assert.Equal(t, "Mi acción es: Entro despacio", messages[1].Content)
}

func TestContinuationWindowsTranscript(t *testing.T) {
	head := strings.Repeat("a", 500)
	tail := strings.Repeat("b", prompt.HistoryWindow)
	messages := prompt.Continuation("La Ouija Maldita", 7, head+tail, "Pregunto su nombre")

	system := messages[0].Content
	assert.Contains(t, system, tail)
	assert.NotContains(t, system, "a"+tail)
}

func TestTranscriptTail(t *testing.T) {
	t.Run("Short transcript passes through", func(t *testing.T) {
		assert.Equal(t, "corto", prompt.TranscriptTail("corto"))
	})

	t.Run("Long transcript keeps only the tail", func(t *testing.T) {
		transcript := strings.Repeat("x", prompt.HistoryWindow+200) + "final"
		got := prompt.TranscriptTail(transcript)

		assert.Len(t, got, prompt.HistoryWindow)
		assert.True(t, strings.HasSuffix(got, "final"))
	})

	t.Run("Exact window size passes through", func(t *testing.T) {
		transcript := strings.Repeat("y", prompt.HistoryWindow)
		assert.Equal(t, transcript, prompt.TranscriptTail(transcript))
	})

	t.Run("Never cuts inside a multibyte rune", func(t *testing.T) {
		transcript := strings.Repeat("ñ", 600) + "abc"
		got := prompt.TranscriptTail(transcript)

		assert.True(t, utf8.ValidString(got))
		assert.True(t, strings.HasSuffix(got, "ñabc"))
		assert.LessOrEqual(t, len(got), prompt.HistoryWindow)
	})
}
