package character

import (
	"time"

	"github.com/talgya/mini-world/internal/model"
)

// User is a persistent account (Section 3.1).
type User struct {
	UserID           string          `json:"user_id"`
	DisplayName      string          `json:"display_name"`
	PasswordVerifier string          `json:"password_verifier"`
	IsAdmin          bool            `json:"is_admin"`
	Sheet            *CharacterSheet `json:"sheet"`
	CreatedAt        time.Time       `json:"created_at"`
	LastSeen         time.Time       `json:"last_seen"`
}

// Player binds a live transport session to a User (Section 3.1). Ephemeral:
// unbound on disconnect, never persisted on its own.
type Player struct {
	SessionID string
	UserID    string
	RoomID    string
	Sheet     *CharacterSheet
}

// World is the container for users and NPC sheets — kept alongside
// model.World (not inside it) to avoid an import cycle between model and
// character, matching the composition-root pattern used by
// internal/persist.Document.
type World struct {
	Users     map[string]*User           `json:"users"`      // user-id -> User
	NPCSheets map[string]*CharacterSheet `json:"npc_sheets"` // display-name -> sheet
	NPCIDs    map[string]model.UUID      `json:"npc_ids"`    // display-name -> uuid
}

// NewWorld returns an empty character World.
func NewWorld() *World {
	return &World{
		Users:     make(map[string]*User),
		NPCSheets: make(map[string]*CharacterSheet),
		NPCIDs:    make(map[string]model.UUID),
	}
}
