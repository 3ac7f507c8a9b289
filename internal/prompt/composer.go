// Package prompt builds the ordered message sequences sent to the
// narrative generator. Composition is a pure function of the session
// state and the player's action, which keeps it testable without
// touching the generator.
package prompt

import (
	"fmt"
	"unicode/utf8"

	"espectral-server/internal/scenario"
)

// Generation policy. Temperature 0.9 deliberately favors narrative
// variety over determinism; 450 completion tokens keeps replies short
// enough that the style directive can forbid mid-sentence cuts.
const (
	MaxCompletionTokens = 450
	Temperature         = 0.9

	// HistoryWindow is the trailing slice of the raw transcript fed
	// back on every continuation, in characters (not turns). It may cut
	// mid-sentence; that is an accepted simplicity/cost tradeoff.
	HistoryWindow = 1000

	// TurnCeiling is advisory only. It shapes the prompt's pacing and
	// is never enforced as a hard stop.
	TurnCeiling = 20
)

// Message roles as expected by chat-completion APIs.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

const openingKickoff = "Comienza la narración. Describe la escena inicial de forma breve y directa."

const continuationTemplate = `Eres un narrador de terror interactivo. Continúa la historia de forma CONCISA pero COMPLETA.
- REGLA PRINCIPAL: ¡NUNCA termines una respuesta a media oración! Asegúrate de que cada respuesta sea un párrafo bien formado y concluido.
- Modo de Juego: %s
- Turno: %d de %d.
- Objetivo: Generar un impacto inmediato. Las acciones deben tener consecuencias claras.
- Regla de Acciones: Al final de tu narración, sugiere 2 o 3 acciones numeradas y audaces para el jugador. Ejemplo: **1. Examinar el libro.** **2. Salir corriendo.**
- Historial Reciente (últimos 2 turnos): %s`

// Message is one entry of the generation request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Opening composes the messages for a session's first generation call
// (turn 0). There is no history yet: the scenario's opening instruction
// carries all the context.
func Opening(def scenario.Definition) []Message {
	return []Message{
		{Role: RoleSystem, Content: def.OpeningInstruction},
		{Role: RoleUser, Content: openingKickoff},
	}
}

// Continuation composes the messages for turn N (N >= 1). The system
// message embeds the scenario title, the current turn, the advisory
// ceiling and the trailing transcript excerpt; the player action goes
// in a user message with a fixed label.
func Continuation(scenarioTitle string, turn int, transcript, action string) []Message {
	system := fmt.Sprintf(continuationTemplate, scenarioTitle, turn, TurnCeiling, TranscriptTail(transcript))
	return []Message{
		{Role: RoleSystem, Content: system},
		{Role: RoleUser, Content: "Mi acción es: " + action},
	}
}

// TranscriptTail returns roughly the last HistoryWindow characters of
// the transcript, or the whole transcript when it is shorter. The cut
// never lands inside a multibyte rune: accented Spanish text must stay
// valid UTF-8 for the generation request.
func TranscriptTail(transcript string) string {
	if len(transcript) <= HistoryWindow {
		return transcript
	}
	start := len(transcript) - HistoryWindow
	for start < len(transcript) && !utf8.RuneStart(transcript[start]) {
		start++
	}
	return transcript[start:]
}
