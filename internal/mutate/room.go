// Package mutate implements the world-mutation services (Section 4.F):
// room, object, NPC, interaction, movement, and trade. Every exported
// service function returns a service.Result, grounded on the teacher's
// agents.ApplyAction/applyX family (internal/agents/behavior.go), which
// likewise funnels varied mutation kinds through one uniformly-shaped
// return and clamps derived state on write rather than trusting callers.
package mutate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/talgya/mini-world/internal/model"
	"github.com/talgya/mini-world/internal/persist"
	"github.com/talgya/mini-world/internal/service"
)

// RoomService implements the Section 4.F room operations.
type RoomService struct {
	Doc *persist.Document
}

// CreateRoom adds a new room with a unique id. Fails with ConstraintError
// if id is already taken.
func (s *RoomService) CreateRoom(id, description string) service.Result {
	if _, exists := s.Doc.World.Rooms[id]; exists {
		return service.Fail(service.New(service.KindConstraint, fmt.Sprintf("room %q already exists", id)))
	}
	room := model.NewRoom(id, model.UUID(newUUID()), description)
	s.Doc.World.Rooms[id] = room
	return service.Ok([]service.Emit{{Text: fmt.Sprintf("Room %q created.", id)}}, nil)
}

// SetDescription updates a room's description.
func (s *RoomService) SetDescription(id, description string) service.Result {
	room, ok := s.Doc.World.Rooms[id]
	if !ok {
		return service.Fail(service.New(service.KindNotFound, fmt.Sprintf("no such room %q", id)))
	}
	room.Description = description
	return service.Ok([]service.Emit{{Text: "Description updated."}}, nil)
}

// AddDoor creates a door named name in room sourceID targeting targetID,
// then creates (or reuses, disambiguated) the reciprocal door on the
// target side, and keeps doors/door_ids/objects in tri-agreement on both
// sides (Section 4.F, Section 3.2).
func (s *RoomService) AddDoor(sourceID, name, targetID string) service.Result {
	source, ok := s.Doc.World.Rooms[sourceID]
	if !ok {
		return service.Fail(service.New(service.KindNotFound, fmt.Sprintf("no such room %q", sourceID)))
	}
	target, ok := s.Doc.World.Rooms[targetID]
	if !ok {
		return service.Fail(service.New(service.KindNotFound, fmt.Sprintf("no such room %q", targetID)))
	}
	if _, taken := source.Doors[name]; taken {
		return service.Fail(service.New(service.KindConstraint, fmt.Sprintf("door %q already exists in %q", name, sourceID)))
	}

	installDoor(source, name, targetID)

	reciprocalName := name
	if existingTarget, taken := target.Doors[reciprocalName]; taken && existingTarget != sourceID {
		reciprocalName = uniqueDoorName(target, fmt.Sprintf("%s (to %s)", name, sourceID))
	}
	if _, already := target.Doors[reciprocalName]; !already {
		installDoor(target, reciprocalName, sourceID)
	}

	return service.Ok([]service.Emit{{Text: fmt.Sprintf("Door %q now leads from %q to %q.", name, sourceID, targetID)}}, nil)
}

// uniqueDoorName appends a numeric suffix until base is free in room.
func uniqueDoorName(room *model.Room, base string) string {
	candidate := base
	for n := 2; ; n++ {
		if _, taken := room.Doors[candidate]; !taken {
			return candidate
		}
		candidate = base + " " + strconv.Itoa(n)
	}
}

// installDoor writes a door's three representations (doors, door_ids,
// objects) in one place so they never drift (Section 3.2 invariant).
func installDoor(room *model.Room, name, targetID string) {
	id := model.UUID(newUUID())
	room.Doors[name] = targetID
	room.DoorIDs[name] = id
	room.Objects[id] = &model.Object{
		UUID:             id,
		Name:             name,
		Description:      "A way through.",
		Tags:             []string{"Immovable", "Travel Point"},
		LinkTargetRoomID: targetID,
	}
}

// RemoveDoor deletes a door and its Object from room, then finds and
// deletes the reciprocal door on the target side too (Section 4.F:
// "unlink doors (removes both sides)"), using AddDoor's own
// reciprocal-naming convention to locate it. A reciprocal that was given
// some other, unrelated name (e.g. via LinkDoor's independent naming)
// isn't found by this heuristic; UnlinkDoors remains the explicit-names
// fallback for that case.
func (s *RoomService) RemoveDoor(roomID, name string) service.Result {
	room, ok := s.Doc.World.Rooms[roomID]
	if !ok {
		return service.Fail(service.New(service.KindNotFound, fmt.Sprintf("no such room %q", roomID)))
	}
	id, ok := room.DoorIDs[name]
	if !ok {
		return service.Fail(service.New(service.KindNotFound, fmt.Sprintf("no such door %q", name)))
	}
	targetID := room.Doors[name]
	removeDoorSide(room, name, id)

	if target, ok := s.Doc.World.Rooms[targetID]; ok {
		if reciprocalName := reciprocalDoorName(target, name, roomID); reciprocalName != "" {
			removeDoorSide(target, reciprocalName, target.DoorIDs[reciprocalName])
		}
	}
	return service.Ok([]service.Emit{{Text: fmt.Sprintf("Door %q removed.", name)}}, nil)
}

// removeDoorSide deletes a door's three representations from room in one
// place, mirroring installDoor.
func removeDoorSide(room *model.Room, name string, id model.UUID) {
	delete(room.Doors, name)
	delete(room.DoorIDs, name)
	delete(room.Objects, id)
	delete(room.DoorLocks, name)
}

// reciprocalDoorName finds the door in target that AddDoor would have
// installed as the other side of a door named name in roomID, trying the
// shared name first and then the disambiguated "name (to roomID)" form.
// Returns "" if neither is present.
func reciprocalDoorName(target *model.Room, name, roomID string) string {
	if target.Doors[name] == roomID {
		return name
	}
	disambiguated := fmt.Sprintf("%s (to %s)", name, roomID)
	if target.Doors[disambiguated] == roomID {
		return disambiguated
	}
	return ""
}

// UnlinkDoors removes door a in roomA and door b in roomB — the
// explicit-names form for reciprocals RemoveDoor's naming heuristic can't
// find on its own (Section 4.F: "unlink doors (removes both sides)").
// Tolerates b already being gone, since RemoveDoor(roomA, a) will itself
// have cascaded to remove it when the two names follow AddDoor's
// convention.
func (s *RoomService) UnlinkDoors(roomA, a, roomB, b string) service.Result {
	if r := s.RemoveDoor(roomA, a); r.Err != nil {
		return r
	}
	if r := s.RemoveDoor(roomB, b); r.Err != nil {
		if se, ok := r.Err.(*service.Error); !ok || se.Kind != service.KindNotFound {
			return r
		}
	}
	return service.Ok([]service.Emit{{Text: "Doors unlinked."}}, nil)
}

// LinkDoor names and creates two independent doors (a in roomA targeting
// roomB, b in roomB targeting roomA) in one call — the explicit two-name
// form of the command surface's `/room linkdoor <a> | <da> | <b> | <db>`.
func (s *RoomService) LinkDoor(roomA, doorA, roomB, doorB string) service.Result {
	a, ok := s.Doc.World.Rooms[roomA]
	if !ok {
		return service.Fail(service.New(service.KindNotFound, fmt.Sprintf("no such room %q", roomA)))
	}
	b, ok := s.Doc.World.Rooms[roomB]
	if !ok {
		return service.Fail(service.New(service.KindNotFound, fmt.Sprintf("no such room %q", roomB)))
	}
	if _, taken := a.Doors[doorA]; taken {
		return service.Fail(service.New(service.KindConstraint, fmt.Sprintf("door %q already exists in %q", doorA, roomA)))
	}
	if _, taken := b.Doors[doorB]; taken {
		return service.Fail(service.New(service.KindConstraint, fmt.Sprintf("door %q already exists in %q", doorB, roomB)))
	}
	installDoor(a, doorA, roomB)
	installDoor(b, doorB, roomA)
	return service.Ok([]service.Emit{{Text: fmt.Sprintf("Linked %q <-> %q.", roomA, roomB)}}, nil)
}

// SetStairs sets room's stairs-up and stairs-down targets, reciprocating
// on both target rooms (Section 4.F: "set-stairs (reciprocates up/down)").
func (s *RoomService) SetStairs(roomID, upTarget, downTarget string) service.Result {
	room, ok := s.Doc.World.Rooms[roomID]
	if !ok {
		return service.Fail(service.New(service.KindNotFound, fmt.Sprintf("no such room %q", roomID)))
	}
	if upTarget != "" {
		up, ok := s.Doc.World.Rooms[upTarget]
		if !ok {
			return service.Fail(service.New(service.KindNotFound, fmt.Sprintf("no such room %q", upTarget)))
		}
		installStairs(room, &room.StairsUp, &room.StairsUpID, upTarget, "stairs up")
		installStairs(up, &up.StairsDown, &up.StairsDownID, roomID, "stairs down")
	}
	if downTarget != "" {
		down, ok := s.Doc.World.Rooms[downTarget]
		if !ok {
			return service.Fail(service.New(service.KindNotFound, fmt.Sprintf("no such room %q", downTarget)))
		}
		installStairs(room, &room.StairsDown, &room.StairsDownID, downTarget, "stairs down")
		installStairs(down, &down.StairsUp, &down.StairsUpID, roomID, "stairs up")
	}
	return service.Ok([]service.Emit{{Text: "Stairs set."}}, nil)
}

func installStairs(room *model.Room, target *string, targetID *model.UUID, newTarget, name string) {
	id := model.UUID(newUUID())
	*target = newTarget
	*targetID = id
	room.Objects[id] = &model.Object{
		UUID:             id,
		Name:             name,
		Description:      "A stairway.",
		Tags:             []string{"Immovable", "Travel Point"},
		LinkTargetRoomID: newTarget,
	}
}

// LockDoor installs a lock policy on a door. policy is a small textual
// grammar accepted from the command surface: comma-separated entries,
// each either a bare user-id (allow_ids) or `rel:<type>:<user-id>`
// (allow_rel).
func (s *RoomService) LockDoor(roomID, doorName, policy string) service.Result {
	room, ok := s.Doc.World.Rooms[roomID]
	if !ok {
		return service.Fail(service.New(service.KindNotFound, fmt.Sprintf("no such room %q", roomID)))
	}
	if _, ok := room.Doors[doorName]; !ok {
		return service.Fail(service.New(service.KindNotFound, fmt.Sprintf("no such door %q", doorName)))
	}
	p := model.DoorLockPolicy{}
	for _, entry := range strings.Split(policy, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if strings.HasPrefix(entry, "rel:") {
			parts := strings.SplitN(entry, ":", 3)
			if len(parts) == 3 {
				p.AllowRel = append(p.AllowRel, model.RelationAllow{RelType: parts[1], OtherUserID: parts[2]})
			}
			continue
		}
		p.AllowIDs = append(p.AllowIDs, entry)
	}
	room.DoorLocks[doorName] = p
	return service.Ok([]service.Emit{{Text: fmt.Sprintf("Door %q locked.", doorName)}}, nil)
}

// NewRoomService constructs a RoomService over doc.
func NewRoomService(doc *persist.Document) *RoomService { return &RoomService{Doc: doc} }
