package mutate

import (
	"fmt"

	"github.com/talgya/mini-world/internal/character"
	"github.com/talgya/mini-world/internal/locks"
	"github.com/talgya/mini-world/internal/model"
	"github.com/talgya/mini-world/internal/persist"
	"github.com/talgya/mini-world/internal/resolve"
	"github.com/talgya/mini-world/internal/service"
)

// MovementService implements the Section 4.F movement operation: traverse
// a door/stair by fuzzy name, enforcing permission (Section 4.G) and
// updating Room.Players atomically, announcing departure then arrival
// (Section 5 ordering rule).
type MovementService struct {
	Doc *persist.Document
}

// NewMovementService constructs a MovementService over doc.
func NewMovementService(doc *persist.Document) *MovementService {
	return &MovementService{Doc: doc}
}

// exitCandidates lists every door and stair name traversable from room.
func exitCandidates(room *model.Room) []resolve.Candidate {
	cands := make([]resolve.Candidate, 0, len(room.Doors)+2)
	for name := range room.Doors {
		cands = append(cands, resolve.Candidate{ID: name, Name: name})
	}
	if room.StairsUp != "" {
		cands = append(cands, resolve.Candidate{ID: "stairs up", Name: "stairs up"})
	}
	if room.StairsDown != "" {
		cands = append(cands, resolve.Candidate{ID: "stairs down", Name: "stairs down"})
	}
	return cands
}

func exitTarget(room *model.Room, name string) (target string, isDoor bool) {
	switch name {
	case "stairs up":
		return room.StairsUp, false
	case "stairs down":
		return room.StairsDown, false
	default:
		return room.Doors[name], true
	}
}

// Traverse moves sessionID (currently in roomID as sheet's player) through
// exitQuery to its target room, if permitted.
func (s *MovementService) Traverse(sessionID, roomID, actorUserID string, sheet *character.CharacterSheet, exitQuery string, exists locks.UserExists, relOf locks.RelationshipOf) service.Result {
	room, ok := s.Doc.World.Rooms[roomID]
	if !ok {
		return service.Fail(service.New(service.KindNotFound, fmt.Sprintf("no such room %q", roomID)))
	}
	r := resolve.Resolve(exitQuery, exitCandidates(room))
	switch r.Outcome {
	case resolve.NotFound:
		return service.Fail(service.New(service.KindNotFound, fmt.Sprintf("there is no way %q here", exitQuery)))
	case resolve.Ambiguous:
		return service.Fail(service.New(service.KindNotFound, fmt.Sprintf("which way do you mean: %v?", r.Suggestions)))
	}
	name := r.Resolved.Name
	target, isDoor := exitTarget(room, name)

	if isDoor {
		if policy, has := locks.HasPolicy(room, name); has {
			if !locks.Allowed(policy, actorUserID, exists, relOf) {
				return service.Fail(service.New(service.KindPermission, fmt.Sprintf("The %s is locked.", name)))
			}
		}
	}

	destRoom, ok := s.Doc.World.Rooms[target]
	if !ok {
		return service.Fail(service.Wrap(service.KindIntegrity, "travel target missing", fmt.Errorf("room %q", target)))
	}

	delete(room.Players, sessionID)
	destRoom.Players[sessionID] = true

	return service.Ok(
		[]service.Emit{{Text: fmt.Sprintf("You go through %s.", name)}},
		[]service.Broadcast{
			{RoomID: roomID, Text: fmt.Sprintf("%s leaves through %s.", sheet.DisplayName, name), Exclude: sessionID},
			{RoomID: target, Text: fmt.Sprintf("%s arrives.", sheet.DisplayName), Exclude: sessionID},
		},
	)
}
