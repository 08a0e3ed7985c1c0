package mutate

import (
	"fmt"

	"github.com/talgya/mini-world/internal/character"
	"github.com/talgya/mini-world/internal/model"
	"github.com/talgya/mini-world/internal/persist"
	"github.com/talgya/mini-world/internal/resolve"
	"github.com/talgya/mini-world/internal/service"
)

// InteractionService implements the Section 4.F interaction verbs:
// available-actions listing plus Pick Up, Drop, Open, Search, Wield,
// Eat, Drink, Craft, Claim, Unclaim. Movement ("Move Through") is handled
// by MovementService since it spans two rooms and permission policy.
type InteractionService struct {
	Doc *persist.Document
}

// NewInteractionService constructs an InteractionService over doc.
func NewInteractionService(doc *persist.Document) *InteractionService {
	return &InteractionService{Doc: doc}
}

// AvailableActions derives the action list for obj purely from its tags
// (Section 4.F).
func AvailableActions(obj *model.Object) []string {
	var actions []string
	if !obj.HasTag("Immovable") {
		actions = append(actions, "Pick Up", "Drop")
	}
	if obj.HasTag("Container") {
		actions = append(actions, "Open", "Search")
	}
	if obj.HasTag("weapon") {
		actions = append(actions, "Wield")
	}
	if _, ok := affordanceValue(obj.Tags, "edible"); ok {
		actions = append(actions, "Eat")
	}
	if _, ok := affordanceValue(obj.Tags, "drinkable"); ok {
		actions = append(actions, "Drink")
	}
	if obj.HasTag("Travel Point") {
		actions = append(actions, "Move Through")
	}
	if key, ok := craftSpotTemplate(obj.Tags); ok {
		actions = append(actions, fmt.Sprintf("Craft %s", key))
	}
	actions = append(actions, "Claim", "Unclaim")
	return actions
}

func roomCandidates(room *model.Room) []resolve.Candidate {
	cands := make([]resolve.Candidate, 0, len(room.Objects))
	for id, o := range room.Objects {
		cands = append(cands, resolve.Candidate{ID: string(id), Name: o.Name})
	}
	return cands
}

func inventoryCandidates(inv *model.Inventory) []resolve.Candidate {
	var cands []resolve.Candidate
	for _, o := range inv {
		if o != nil {
			cands = append(cands, resolve.Candidate{ID: string(o.UUID), Name: o.Name})
		}
	}
	return cands
}

// PickUp resolves objectQuery fuzzily against roomID's objects, then
// places it into sheet's inventory per the slot-preference rule (Section
// 4.F): requires no Immovable tag; fails with ConstraintError if no slot
// of the right size class is free.
func (s *InteractionService) PickUp(roomID string, sheet *character.CharacterSheet, objectQuery string) service.Result {
	room, ok := s.Doc.World.Rooms[roomID]
	if !ok {
		return service.Fail(service.New(service.KindNotFound, fmt.Sprintf("no such room %q", roomID)))
	}
	r := resolve.Resolve(objectQuery, roomCandidates(room))
	switch r.Outcome {
	case resolve.NotFound:
		return service.Fail(service.New(service.KindNotFound, fmt.Sprintf("you don't see %q here", objectQuery)))
	case resolve.Ambiguous:
		return service.Fail(service.New(service.KindNotFound, fmt.Sprintf("which one do you mean: %v?", r.Suggestions)))
	}
	obj := room.Objects[model.UUID(r.Resolved.ID)]
	if obj.HasTag("Immovable") {
		return service.Fail(service.New(service.KindConstraint, fmt.Sprintf("%s cannot be picked up", obj.Name)))
	}
	order := model.PreferredOrder(obj)
	idx := sheet.Inventory.FirstFree(order)
	if idx == -1 {
		return service.Fail(service.New(service.KindConstraint, "your inventory is full"))
	}
	delete(room.Objects, obj.UUID)
	sheet.Inventory.Place(idx, obj)
	return service.Ok([]service.Emit{{Text: fmt.Sprintf("You pick up %s.", obj.Name)}}, []service.Broadcast{
		{RoomID: roomID, Text: fmt.Sprintf("%s picks up %s.", sheet.DisplayName, obj.Name)},
	})
}

// Drop moves an inventory object back into roomID's objects.
func (s *InteractionService) Drop(roomID string, sheet *character.CharacterSheet, objectQuery string) service.Result {
	room, ok := s.Doc.World.Rooms[roomID]
	if !ok {
		return service.Fail(service.New(service.KindNotFound, fmt.Sprintf("no such room %q", roomID)))
	}
	r := resolve.Resolve(objectQuery, inventoryCandidates(&sheet.Inventory))
	switch r.Outcome {
	case resolve.NotFound:
		return service.Fail(service.New(service.KindNotFound, fmt.Sprintf("you aren't carrying %q", objectQuery)))
	case resolve.Ambiguous:
		return service.Fail(service.New(service.KindNotFound, fmt.Sprintf("which one do you mean: %v?", r.Suggestions)))
	}
	obj := sheet.Inventory.Remove(model.UUID(r.Resolved.ID))
	obj.RemoveTag("stowed")
	room.Objects[obj.UUID] = obj
	return service.Ok([]service.Emit{{Text: fmt.Sprintf("You drop %s.", obj.Name)}}, []service.Broadcast{
		{RoomID: roomID, Text: fmt.Sprintf("%s drops %s.", sheet.DisplayName, obj.Name)},
	})
}

// Search performs the container Search action (Section 4.F, and the Open
// Question decision recorded in DESIGN.md: always-on-first-search from all
// matching templates, no repeat). Matching templates are those whose
// LootLocationHint.DisplayName equals the container's Name.
func (s *InteractionService) Search(roomID string, sheet *character.CharacterSheet, objectQuery string) service.Result {
	_, obj, err := s.resolveRoomObject(roomID, objectQuery)
	if err != nil {
		return service.Fail(err)
	}
	if !obj.HasTag("Container") {
		return service.Fail(service.New(service.KindConstraint, fmt.Sprintf("%s cannot be searched", obj.Name)))
	}
	if obj.Searched {
		return service.Fail(service.New(service.KindConstraint, "already searched"))
	}
	obj.Searched = true

	var spawned []string
	for _, tmpl := range s.Doc.World.ObjectTemplates {
		if tmpl.LootLocationHint == nil || tmpl.LootLocationHint.DisplayName != obj.Name {
			continue
		}
		loot := tmpl.Instantiate(model.UUID(newUUID()))
		idx := model.FirstFreeContainerSlot(&obj.Contents, loot)
		if idx == -1 {
			continue
		}
		obj.Contents[idx] = loot
		spawned = append(spawned, loot.Name)
	}
	if len(spawned) == 0 {
		return service.Ok([]service.Emit{{Text: fmt.Sprintf("You search %s and find nothing.", obj.Name)}}, nil)
	}
	return service.Ok([]service.Emit{{Text: fmt.Sprintf("You search %s and find: %v.", obj.Name, spawned)}}, nil)
}

// Open lists a container's contents; requires a prior Search (Section
// 4.F: "Open (Container): requires prior search").
func (s *InteractionService) Open(roomID string, objectQuery string) service.Result {
	_, obj, err := s.resolveRoomObject(roomID, objectQuery)
	if err != nil {
		return service.Fail(err)
	}
	if !obj.HasTag("Container") {
		return service.Fail(service.New(service.KindConstraint, fmt.Sprintf("%s cannot be opened", obj.Name)))
	}
	if !obj.Searched {
		return service.Fail(service.New(service.KindConstraint, fmt.Sprintf("search %s first", obj.Name)))
	}
	var names []string
	for _, o := range obj.Contents {
		if o != nil {
			names = append(names, o.Name)
		}
	}
	if len(names) == 0 {
		return service.Ok([]service.Emit{{Text: fmt.Sprintf("%s is empty.", obj.Name)}}, nil)
	}
	return service.Ok([]service.Emit{{Text: fmt.Sprintf("%s contains: %v.", obj.Name, names)}}, nil)
}

// Wield equips a weapon into the actor's hand, per Section 3.1 tag
// "weapon" -- enables Wield; hand slots preferred.
func (s *InteractionService) Wield(sheet *character.CharacterSheet, objectQuery string) service.Result {
	r := resolve.Resolve(objectQuery, inventoryCandidates(&sheet.Inventory))
	switch r.Outcome {
	case resolve.NotFound:
		return service.Fail(service.New(service.KindNotFound, fmt.Sprintf("you aren't carrying %q", objectQuery)))
	case resolve.Ambiguous:
		return service.Fail(service.New(service.KindNotFound, fmt.Sprintf("which one do you mean: %v?", r.Suggestions)))
	}
	idx := sheet.Inventory.Find(model.UUID(r.Resolved.ID))
	obj := sheet.Inventory[idx]
	if !obj.HasTag("weapon") {
		return service.Fail(service.New(service.KindValidation, fmt.Sprintf("%s is not a weapon", obj.Name)))
	}
	if !model.IsHand(idx) {
		if free := sheet.Inventory.FirstFree([]int{model.SlotRightHand, model.SlotLeftHand}); free != -1 {
			sheet.Inventory[idx] = nil
			sheet.Inventory.Place(free, obj)
			idx = free
		} else {
			return service.Fail(service.New(service.KindConstraint, "both hands are full"))
		}
	}
	sheet.EquippedWeapon = obj.UUID
	return service.Ok([]service.Emit{{Text: fmt.Sprintf("You wield %s.", obj.Name)}}, nil)
}

// Eat applies an object's Edible value to hunger, consumes it, and spawns
// deconstruct-recipe outputs into the current room (Section 4.F).
func (s *InteractionService) Eat(roomID string, sheet *character.CharacterSheet, objectQuery string) service.Result {
	return s.consume(roomID, sheet, objectQuery, "edible", func(n int) { sheet.Needs.Hunger += float64(n) })
}

// Drink is the thirst analog of Eat.
func (s *InteractionService) Drink(roomID string, sheet *character.CharacterSheet, objectQuery string) service.Result {
	return s.consume(roomID, sheet, objectQuery, "drinkable", func(n int) { sheet.Needs.Thirst += float64(n) })
}

func (s *InteractionService) consume(roomID string, sheet *character.CharacterSheet, objectQuery, affordance string, apply func(int)) service.Result {
	room, ok := s.Doc.World.Rooms[roomID]
	if !ok {
		return service.Fail(service.New(service.KindNotFound, fmt.Sprintf("no such room %q", roomID)))
	}
	r := resolve.Resolve(objectQuery, inventoryCandidates(&sheet.Inventory))
	switch r.Outcome {
	case resolve.NotFound:
		return service.Fail(service.New(service.KindNotFound, fmt.Sprintf("you aren't carrying %q", objectQuery)))
	case resolve.Ambiguous:
		return service.Fail(service.New(service.KindNotFound, fmt.Sprintf("which one do you mean: %v?", r.Suggestions)))
	}
	idx := sheet.Inventory.Find(model.UUID(r.Resolved.ID))
	obj := sheet.Inventory[idx]
	n, ok := affordanceValue(obj.Tags, affordance)
	if !ok {
		return service.Fail(service.New(service.KindValidation, fmt.Sprintf("%s is not %s", obj.Name, affordance)))
	}
	apply(n)
	sheet.Needs.Clamp()
	sheet.Inventory.Remove(obj.UUID)
	for _, outputName := range obj.DeconstructRecipe {
		out := &model.Object{UUID: model.UUID(newUUID()), Name: outputName}
		room.Objects[out.UUID] = out
	}
	return service.Ok([]service.Emit{{Text: fmt.Sprintf("You consume %s.", obj.Name)}}, nil)
}

// CraftAtSpot executes "Craft <template>" at a craft-spot Object: if the
// template exists and the actor holds all components by display-name
// count, consumes components and spawns the instance; otherwise reports
// specific missing components or an unknown template (Section 4.F).
func (s *InteractionService) CraftAtSpot(roomID string, sheet *character.CharacterSheet, spotQuery string) service.Result {
	room, spot, err := s.resolveRoomObject(roomID, spotQuery)
	if err != nil {
		return service.Fail(err)
	}
	key, ok := craftSpotTemplate(spot.Tags)
	if !ok {
		return service.Fail(service.New(service.KindConstraint, fmt.Sprintf("%s has no craft spot", spot.Name)))
	}
	tmpl, ok := s.Doc.World.ObjectTemplates[key]
	if !ok {
		return service.Fail(service.New(service.KindConstraint, fmt.Sprintf("unknown craft template %q", key)))
	}

	need := map[string]int{}
	for _, c := range tmpl.CraftRecipe {
		need[c]++
	}
	var missing []string
	for name, n := range need {
		if sheet.Inventory.CountByName(name) < n {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return service.Fail(service.New(service.KindConstraint, fmt.Sprintf("missing components: %v", missing)))
	}
	for name, n := range need {
		sheet.Inventory.ConsumeByName(name, n)
	}
	obj := tmpl.Instantiate(model.UUID(newUUID()))
	room.Objects[obj.UUID] = obj
	return service.Ok([]service.Emit{{Text: fmt.Sprintf("You craft %s.", obj.Name)}}, []service.Broadcast{
		{RoomID: roomID, Text: fmt.Sprintf("%s crafts %s.", sheet.DisplayName, obj.Name)},
	})
}

// Claim sets an unowned room Object's owner to actorUserID.
func (s *InteractionService) Claim(roomID, actorUserID, objectQuery string) service.Result {
	_, obj, err := s.resolveRoomObject(roomID, objectQuery)
	if err != nil {
		return service.Fail(err)
	}
	if obj.OwnerUserID != "" && obj.OwnerUserID != actorUserID {
		return service.Fail(service.New(service.KindPermission, fmt.Sprintf("%s is already claimed", obj.Name)))
	}
	obj.OwnerUserID = actorUserID
	return service.Ok([]service.Emit{{Text: fmt.Sprintf("You claim %s.", obj.Name)}}, nil)
}

// Unclaim clears ownership, only if actorUserID currently holds it.
func (s *InteractionService) Unclaim(roomID, actorUserID, objectQuery string) service.Result {
	_, obj, err := s.resolveRoomObject(roomID, objectQuery)
	if err != nil {
		return service.Fail(err)
	}
	if obj.OwnerUserID != actorUserID {
		return service.Fail(service.New(service.KindPermission, fmt.Sprintf("you don't own %s", obj.Name)))
	}
	obj.OwnerUserID = ""
	return service.Ok([]service.Emit{{Text: fmt.Sprintf("You unclaim %s.", obj.Name)}}, nil)
}

func (s *InteractionService) resolveRoomObject(roomID, query string) (*model.Room, *model.Object, *service.Error) {
	room, ok := s.Doc.World.Rooms[roomID]
	if !ok {
		return nil, nil, service.New(service.KindNotFound, fmt.Sprintf("no such room %q", roomID))
	}
	r := resolve.Resolve(query, roomCandidates(room))
	switch r.Outcome {
	case resolve.NotFound:
		return nil, nil, service.New(service.KindNotFound, fmt.Sprintf("you don't see %q here", query))
	case resolve.Ambiguous:
		return nil, nil, service.New(service.KindNotFound, fmt.Sprintf("which one do you mean: %v?", r.Suggestions))
	}
	return room, room.Objects[model.UUID(r.Resolved.ID)], nil
}
