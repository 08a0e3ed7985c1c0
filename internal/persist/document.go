// Package persist is the persistence façade (Section 4.B): the only
// authorized path to durable state. It owns atomic document writes,
// debouncing, and a secondary archival store for events/stats, grounded
// on the teacher's internal/persistence/db.go.
package persist

import (
	"github.com/talgya/mini-world/internal/character"
	"github.com/talgya/mini-world/internal/model"
)

// CurrentSchemaVersion is the world_version a freshly migrated document
// carries (Section 3.4).
const CurrentSchemaVersion = 5

// Document is the full persisted unit (Section 6.3): model.World plus the
// character package's Users/NPCSheets, composed here (not inside
// model.World) to avoid an import cycle between model and character.
type Document struct {
	World *model.World   `json:"world"`
	Chars *character.World `json:"chars"`
}

// NewDocument returns an empty, fully-initialized Document at schema
// version 0 (pre-migration).
func NewDocument() *Document {
	return &Document{
		World: model.NewWorld(),
		Chars: character.NewWorld(),
	}
}
