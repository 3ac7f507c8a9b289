// Package scenario holds the static catalog of game modes. Definitions
// are immutable and shared read-only by every session.
package scenario

import (
	"sort"

	"espectral-server/internal/models"
)

// Definition describes one playable game mode. OpeningInstruction is
// the system prompt used for the very first generation call of a
// session; its exact wording sets the narrative tone.
type Definition struct {
	ID                 string `json:"id"`
	Title              string `json:"title"`
	Description        string `json:"description"`
	OpeningInstruction string `json:"-"`
}

var catalog = map[string]Definition{
	"casa_embrujada": {
		ID:          "casa_embrujada",
		Title:       "La Casa Embrujada",
		Description: "Explora una mansión abandonada donde los susurros en las paredes cuentan una historia macabra. ¿Resolverás el misterio o te convertirás en un eco más?",
		OpeningInstruction: `Eres un narrador de terror gótico. El jugador es un investigador paranormal en la Mansión Blackwood. Inicia con una descripción CORTA y directa de la entrada. El objetivo es crear tensión inmediata. Describe la puerta principal y una ventana rota como opciones de entrada. Mantén las respuestas CONCISAS (máximo 150 palabras).`,
	},
	"ouija_maldita": {
		ID:          "ouija_maldita",
		Title:       "La Ouija Maldita",
		Description: "Una noche de tormenta, tú y tus amigos decidís jugar a la Ouija. Lo que empieza como un juego, pronto se convierte en una lucha por vuestras almas.",
		OpeningInstruction: `Eres el maestro de un juego de terror demoníaco. 5 amigos (jugador y 4 NPCs: Sara la escéptica, Leo el creyente, Ana la nerviosa, David el bromista) están en un sótano con una Ouija. Inicia la historia en el momento EXACTO en que ponen los dedos sobre la planchette. Describe la tensión y el primer movimiento antinatural de la planchette. Sé BREVE e impactante (máximo 150 palabras). Controlas a los NPCs y al demonio.`,
	},
}

// Get returns the definition for the given scenario id.
func Get(id string) (Definition, error) {
	def, ok := catalog[id]
	if !ok {
		return Definition{}, models.ErrScenarioNotFound
	}
	return def, nil
}

// List returns all definitions ordered by id.
func List() []Definition {
	defs := make([]Definition, 0, len(catalog))
	for _, def := range catalog {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].ID < defs[j].ID })
	return defs
}
