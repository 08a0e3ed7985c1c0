package mutate

import (
	"testing"

	"github.com/talgya/mini-world/internal/character"
	"github.com/talgya/mini-world/internal/service"
)

func allowAll() (func(string) bool, func(string, string) string) {
	return func(string) bool { return true }, func(string, string) string { return "" }
}

func TestTraverseMovesPlayerAndAnnouncesInOrder(t *testing.T) {
	rooms := docWithRoom(t, "a")
	rooms.CreateRoom("b", "room b")
	rooms.AddDoor("a", "north", "b")
	move := &MovementService{Doc: rooms.Doc}
	sheet := character.NewCharacterSheet("Alice", "")
	rooms.Doc.World.Rooms["a"].Players["sess-1"] = true
	exists, relOf := allowAll()

	r := move.Traverse("sess-1", "a", "user-1", sheet, "north", exists, relOf)
	if r.Err != nil {
		t.Fatalf("unexpected error: %v", r.Err)
	}
	if rooms.Doc.World.Rooms["a"].Players["sess-1"] {
		t.Fatal("expected the session removed from the departure room")
	}
	if !rooms.Doc.World.Rooms["b"].Players["sess-1"] {
		t.Fatal("expected the session added to the arrival room")
	}
	if len(r.Broadcasts) != 2 {
		t.Fatalf("expected departure and arrival broadcasts, got %d", len(r.Broadcasts))
	}
	if r.Broadcasts[0].RoomID != "a" || r.Broadcasts[1].RoomID != "b" {
		t.Fatalf("expected departure broadcast first, arrival second, got %+v", r.Broadcasts)
	}
	for _, b := range r.Broadcasts {
		if b.Exclude != "sess-1" {
			t.Fatalf("expected both broadcasts to exclude the mover, got %+v", b)
		}
	}
}

func TestTraverseLockedDoorDenied(t *testing.T) {
	rooms := docWithRoom(t, "a")
	rooms.CreateRoom("b", "room b")
	rooms.AddDoor("a", "north", "b")
	rooms.LockDoor("a", "north", "someone-else")
	move := &MovementService{Doc: rooms.Doc}
	sheet := character.NewCharacterSheet("Alice", "")
	rooms.Doc.World.Rooms["a"].Players["sess-1"] = true
	exists, relOf := allowAll()

	r := move.Traverse("sess-1", "a", "user-1", sheet, "north", exists, relOf)
	if errKind(r.Err) != service.KindPermission {
		t.Fatalf("expected a permission error for a locked door, got %+v", r.Err)
	}
	if !rooms.Doc.World.Rooms["a"].Players["sess-1"] {
		t.Fatal("expected the session to remain in the departure room when denied")
	}
}

func TestTraverseUnknownExit(t *testing.T) {
	rooms := docWithRoom(t, "a")
	move := &MovementService{Doc: rooms.Doc}
	sheet := character.NewCharacterSheet("Alice", "")
	exists, relOf := allowAll()

	r := move.Traverse("sess-1", "a", "user-1", sheet, "south", exists, relOf)
	if errKind(r.Err) != service.KindNotFound {
		t.Fatalf("expected a not-found error for an unknown exit, got %+v", r.Err)
	}
}

func TestTraverseStairs(t *testing.T) {
	rooms := docWithRoom(t, "ground")
	rooms.CreateRoom("upper", "upper floor")
	rooms.SetStairs("ground", "upper", "")
	move := &MovementService{Doc: rooms.Doc}
	sheet := character.NewCharacterSheet("Alice", "")
	rooms.Doc.World.Rooms["ground"].Players["sess-1"] = true
	exists, relOf := allowAll()

	r := move.Traverse("sess-1", "ground", "user-1", sheet, "stairs up", exists, relOf)
	if r.Err != nil {
		t.Fatalf("unexpected error: %v", r.Err)
	}
	if !rooms.Doc.World.Rooms["upper"].Players["sess-1"] {
		t.Fatal("expected the session to arrive upstairs")
	}
}
