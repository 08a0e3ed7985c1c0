package mutate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/talgya/mini-world/internal/character"
	"github.com/talgya/mini-world/internal/model"
	"github.com/talgya/mini-world/internal/persist"
	"github.com/talgya/mini-world/internal/service"
)

// NPCService implements the Section 4.F NPC CRUD and AI-generation
// operations.
type NPCService struct {
	Doc *persist.Document
}

// NewNPCService constructs an NPCService over doc.
func NewNPCService(doc *persist.Document) *NPCService { return &NPCService{Doc: doc} }

// Add creates an NPC sheet with the given name/description in roomID,
// maintaining Room.NPCs, Chars.NPCSheets, and Chars.NPCIDs together
// (Section 4.F: "maintains npcs set and npc_sheets/npc_ids").
func (s *NPCService) Add(roomID, name, description string) service.Result {
	room, ok := s.Doc.World.Rooms[roomID]
	if !ok {
		return service.Fail(service.New(service.KindNotFound, fmt.Sprintf("no such room %q", roomID)))
	}
	if _, exists := s.Doc.Chars.NPCSheets[name]; exists {
		return service.Fail(service.New(service.KindConstraint, fmt.Sprintf("an NPC named %q already exists", name)))
	}
	sheet := character.NewCharacterSheet(name, description)
	s.Doc.Chars.NPCSheets[name] = sheet
	s.Doc.Chars.NPCIDs[name] = model.UUID(newUUID())
	room.NPCs[name] = true
	return service.Ok([]service.Emit{{Text: fmt.Sprintf("%s now stands here.", name)}}, []service.Broadcast{
		{RoomID: roomID, Text: fmt.Sprintf("%s arrives.", name)},
	})
}

// Remove deletes an NPC from roomID's live set. The sheet is retained in
// Chars.NPCSheets per Section 3.3 ("their sheet persists even after
// death... sheet retained for historical reference") — this operation is
// the admin-initiated analog, not combat death, but follows the same
// retention rule since the spec treats NPC removal as terminal either way.
func (s *NPCService) Remove(roomID, name string) service.Result {
	room, ok := s.Doc.World.Rooms[roomID]
	if !ok {
		return service.Fail(service.New(service.KindNotFound, fmt.Sprintf("no such room %q", roomID)))
	}
	if _, present := room.NPCs[name]; !present {
		return service.Fail(service.New(service.KindNotFound, fmt.Sprintf("no NPC %q here", name)))
	}
	delete(room.NPCs, name)
	return service.Ok([]service.Emit{{Text: fmt.Sprintf("%s is gone.", name)}}, []service.Broadcast{
		{RoomID: roomID, Text: fmt.Sprintf("%s leaves.", name)},
	})
}

// SetDescription updates an NPC sheet's description.
func (s *NPCService) SetDescription(name, description string) service.Result {
	sheet, ok := s.Doc.Chars.NPCSheets[name]
	if !ok {
		return service.Fail(service.New(service.KindNotFound, fmt.Sprintf("no such NPC %q", name)))
	}
	sheet.Description = description
	return service.Ok([]service.Emit{{Text: "Description updated."}}, nil)
}

// SetAttribute sets one of strength/dexterity/intelligence/health, clamped
// to [3, 18] (Section 3.1).
func (s *NPCService) SetAttribute(name, key, value string) service.Result {
	sheet, ok := s.Doc.Chars.NPCSheets[name]
	if !ok {
		return service.Fail(service.New(service.KindNotFound, fmt.Sprintf("no such NPC %q", name)))
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		return service.Fail(service.New(service.KindValidation, fmt.Sprintf("%q is not a number", value)))
	}
	v = character.ClampAttribute(v)
	switch key {
	case "strength":
		sheet.Attributes.Strength = v
	case "dexterity":
		sheet.Attributes.Dexterity = v
	case "intelligence":
		sheet.Attributes.Intelligence = v
	case "health":
		sheet.Attributes.Health = v
	default:
		return service.Fail(service.New(service.KindValidation, fmt.Sprintf("unknown attribute %q", key)))
	}
	return service.Ok([]service.Emit{{Text: fmt.Sprintf("%s's %s set to %d.", name, key, v)}}, nil)
}

// SetAspect sets one of high_concept/trouble/background/focus.
func (s *NPCService) SetAspect(name, key, value string) service.Result {
	sheet, ok := s.Doc.Chars.NPCSheets[name]
	if !ok {
		return service.Fail(service.New(service.KindNotFound, fmt.Sprintf("no such NPC %q", name)))
	}
	switch key {
	case "high_concept":
		sheet.Fate.HighConcept = value
	case "trouble":
		sheet.Fate.Trouble = value
	case "background":
		sheet.Fate.Background = value
	case "focus":
		sheet.Fate.Focus = value
	default:
		return service.Fail(service.New(service.KindValidation, fmt.Sprintf("unknown aspect %q", key)))
	}
	return service.Ok([]service.Emit{{Text: fmt.Sprintf("%s's %s aspect set.", name, key)}}, nil)
}

// SetMatrix sets one axis (0-based index given as key) of the psychosocial
// matrix, clamped to [-10, 10] (Section 3.1).
func (s *NPCService) SetMatrix(name, key, value string) service.Result {
	sheet, ok := s.Doc.Chars.NPCSheets[name]
	if !ok {
		return service.Fail(service.New(service.KindNotFound, fmt.Sprintf("no such NPC %q", name)))
	}
	idx, err := strconv.Atoi(key)
	if err != nil || idx < 0 || idx >= character.MatrixAxisCount {
		return service.Fail(service.New(service.KindValidation, fmt.Sprintf("axis %q out of range", key)))
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		return service.Fail(service.New(service.KindValidation, fmt.Sprintf("%q is not a number", value)))
	}
	sheet.Matrix[idx] = v
	sheet.Matrix.Clamp()
	return service.Ok([]service.Emit{{Text: fmt.Sprintf("%s's matrix axis %d set to %d.", name, idx, sheet.Matrix[idx])}}, nil)
}

// Generator produces text from a prompt (Section 4.L's generate contract),
// satisfied by internal/llmadapter.Adapter. Declared here rather than
// imported to keep internal/mutate free of a dependency on the adapter's
// HTTP/timeout machinery — it only needs the one-call contract.
type Generator interface {
	Generate(prompt string, maxTokens int) (string, error)
}

// Generate creates an NPC via AI: gen.Generate is called with a prompt
// bundling the optional hints (room, name, description) the admin
// supplied; on any adapter error, no NPC is created (Section 4.F: "on AI
// failure, no NPC is created and an error is reported").
func (s *NPCService) Generate(gen Generator, roomID, nameHint, descHint string) service.Result {
	room, ok := s.Doc.World.Rooms[roomID]
	if !ok {
		return service.Fail(service.New(service.KindNotFound, fmt.Sprintf("no such room %q", roomID)))
	}
	prompt := fmt.Sprintf(
		"Generate a TinyMUD NPC. World: %s. Room: %s (%s). Name hint: %q. Description hint: %q. Respond with a short name and one-sentence description, separated by a pipe.",
		s.Doc.World.Name, roomID, room.Description, nameHint, descHint,
	)
	text, err := gen.Generate(prompt, 200)
	if err != nil {
		return service.Fail(service.Wrap(service.KindAdapter, "NPC generation failed", err))
	}
	name, desc := splitGenerated(text, nameHint, descHint)
	if name == "" {
		return service.Fail(service.New(service.KindAdapter, "NPC generation produced no usable name"))
	}
	return s.Add(roomID, name, desc)
}

func splitGenerated(text, nameHint, descHint string) (string, string) {
	if i := strings.IndexByte(text, '|'); i >= 0 {
		name := strings.TrimSpace(text[:i])
		desc := strings.TrimSpace(text[i+1:])
		if name == "" {
			name = nameHint
		}
		if desc == "" {
			desc = descHint
		}
		return name, desc
	}
	if nameHint != "" {
		return nameHint, firstNonEmpty(descHint, strings.TrimSpace(text))
	}
	return strings.TrimSpace(text), descHint
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
