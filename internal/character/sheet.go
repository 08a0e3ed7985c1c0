// Package character provides the CharacterSheet, User, and Player types —
// the per-person state shared by players and NPCs (Section 3.1).
// Needs/attributes/matrix clamp-on-write, mirroring the teacher's
// agents.NeedsState and agents.AgentSoul clamp helpers.
package character

import "github.com/talgya/mini-world/internal/model"

// Attributes holds GURPS-style stats, integers 3..18, default 10.
type Attributes struct {
	Strength     int `json:"strength"`
	Dexterity    int `json:"dexterity"`
	Intelligence int `json:"intelligence"`
	Health       int `json:"health"`
}

// DefaultAttributes returns the Section 3.1 default: all attributes at 10.
func DefaultAttributes() Attributes {
	return Attributes{Strength: 10, Dexterity: 10, Intelligence: 10, Health: 10}
}

// ClampAttribute bounds a single attribute to [3, 18].
func ClampAttribute(v int) int {
	if v < 3 {
		return 3
	}
	if v > 18 {
		return 18
	}
	return v
}

// Derived holds stats computed from Attributes plus combat state.
type Derived struct {
	HP     int `json:"hp"`
	MaxHP  int `json:"max_hp"`
	Will   int `json:"will"`
	Perception int `json:"perception"`
	FP     int `json:"fp"`
	MaxFP  int `json:"max_fp"`
}

// FateAspects are the four Fate-style narrative hooks.
type FateAspects struct {
	HighConcept string `json:"high_concept"`
	Trouble     string `json:"trouble"`
	Background  string `json:"background"`
	Focus       string `json:"focus"`
}

// MatrixAxisCount is the number of psychosocial axes (Glossary).
const MatrixAxisCount = 11

// PsychosocialMatrix is an 11-axis integer vector, each axis in [-10, 10].
// Axis meaning is left to callers (e.g. axis 0 = authoritarian<->egalitarian);
// the domain model only enforces bounds, matching the teacher's
// AgentSoul.AdjustCoherence clamp-on-write pattern generalized to N axes.
type PsychosocialMatrix [MatrixAxisCount]int

// Clamp bounds every axis to [-10, 10].
func (m *PsychosocialMatrix) Clamp() {
	for i, v := range m {
		if v < -10 {
			m[i] = -10
		} else if v > 10 {
			m[i] = 10
		} else {
			m[i] = v
		}
	}
}

// Needs tracks the four floating-point needs, 0..100, default 100.
type Needs struct {
	Hunger        float64 `json:"hunger"`
	Thirst        float64 `json:"thirst"`
	Socialization float64 `json:"socialization"`
	Sleep         float64 `json:"sleep"`
}

// DefaultNeeds returns all needs at 100 (Section 3.1 default).
func DefaultNeeds() Needs {
	return Needs{Hunger: 100, Thirst: 100, Socialization: 100, Sleep: 100}
}

// Clamp bounds every need to [0, 100].
func (n *Needs) Clamp() {
	n.Hunger = clamp100(n.Hunger)
	n.Thirst = clamp100(n.Thirst)
	n.Socialization = clamp100(n.Socialization)
	n.Sleep = clamp100(n.Sleep)
}

func clamp100(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// ExtendedNeeds are the three extra needs used by the autonomy override
// (Section 4.H.2): safety, wealth_desire, social_status.
type ExtendedNeeds struct {
	Safety        float64 `json:"safety"`
	WealthDesire  float64 `json:"wealth_desire"`
	SocialStatus  float64 `json:"social_status"`
}

// Personality traits, 0..100 (Section 3.1).
type Personality struct {
	Responsibility int `json:"responsibility"`
	Aggression     int `json:"aggression"`
	Confidence     int `json:"confidence"`
	Curiosity      int `json:"curiosity"`
}

// Memory is one entry of an NPC's Tier-2-style memory stream.
type Memory struct {
	Tick    uint64 `json:"tick"`
	Content string `json:"content"`
}

// ActionRecord is one element of a GOAP plan queue (Section 4.H.4).
type ActionRecord struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args"`
}

// Planner holds the GOAP execution state (Section 3.1).
type Planner struct {
	ActionPoints          int            `json:"action_points"`
	PlanQueue             []ActionRecord `json:"plan_queue"`
	SleepingTicksRemaining int           `json:"sleeping_ticks_remaining"`
	SleepingBedUUID       model.UUID     `json:"sleeping_bed_uuid,omitempty"`
}

// CharacterSheet is the per-player-character and per-NPC state container.
type CharacterSheet struct {
	DisplayName string `json:"display_name"`
	Description string `json:"description"`

	Attributes Attributes  `json:"attributes"`
	Derived    Derived     `json:"derived"`
	Fate       FateAspects `json:"fate"`
	Matrix     PsychosocialMatrix `json:"matrix"`

	Advantages    []string `json:"advantages,omitempty"`
	Disadvantages []string `json:"disadvantages,omitempty"`
	Quirks        []string `json:"quirks,omitempty"`

	Morale          int        `json:"morale"` // 0..100
	Yielded         bool       `json:"yielded"`
	IsDead          bool       `json:"is_dead"`
	EquippedWeapon  model.UUID `json:"equipped_weapon,omitempty"`
	EquippedArmor   model.UUID `json:"equipped_armor,omitempty"`

	Needs         Needs         `json:"needs"`
	Extended      ExtendedNeeds `json:"extended_needs"`
	Personality   Personality   `json:"personality"`

	Memories      []Memory          `json:"memories,omitempty"`
	Relationships map[string]int    `json:"relationships,omitempty"` // entity-id -> -100..100

	Planner Planner `json:"planner"`

	Inventory model.Inventory `json:"inventory"`
}

// NewCharacterSheet returns a sheet with every field at spec-documented
// defaults (Section 3.1).
func NewCharacterSheet(name, description string) *CharacterSheet {
	return &CharacterSheet{
		DisplayName: name,
		Description: description,
		Attributes:  DefaultAttributes(),
		Derived:     Derived{HP: 10, MaxHP: 10, Will: 10, Perception: 10, FP: 10, MaxFP: 10},
		Morale:      100,
		Needs:       DefaultNeeds(),
		Relationships: make(map[string]int),
	}
}

// ClampMorale bounds Morale to [0, 100].
func (c *CharacterSheet) ClampMorale() {
	if c.Morale < 0 {
		c.Morale = 0
	}
	if c.Morale > 100 {
		c.Morale = 100
	}
}

// ClampRelationship bounds a relationship value to [-100, 100].
func ClampRelationship(v int) int {
	if v < -100 {
		return -100
	}
	if v > 100 {
		return 100
	}
	return v
}
