package model

// Slot indices per Section 3.1: hands, small-stow, large-stow.
const (
	SlotLeftHand  = 0
	SlotRightHand = 1
	SlotSmallLo   = 2 // inclusive
	SlotSmallHi   = 5 // inclusive
	SlotLargeLo   = 6 // inclusive
	SlotLargeHi   = 7 // inclusive
	NumSlots      = 8
)

// Inventory is the fixed 8-slot sequence every character carries.
// A nil entry means the slot is empty. Mirrors the teacher's fixed-size
// array inventory (agents.GoodInventory) rather than a map, since slot
// identity (which hand, which stow position) is itself meaningful here.
type Inventory [NumSlots]*Object

// IsHand reports whether idx is a hand slot (accepts any size).
func IsHand(idx int) bool {
	return idx == SlotLeftHand || idx == SlotRightHand
}

// IsSmallStow reports whether idx is a small-stow slot.
func IsSmallStow(idx int) bool {
	return idx >= SlotSmallLo && idx <= SlotSmallHi
}

// IsLargeStow reports whether idx is a large-stow slot.
func IsLargeStow(idx int) bool {
	return idx >= SlotLargeLo && idx <= SlotLargeHi
}

// Accepts reports whether the slot at idx can hold obj, given its size tags.
func Accepts(idx int, obj *Object) bool {
	if IsHand(idx) {
		return true
	}
	small := obj.HasTag("small")
	large := obj.HasTag("large")
	if IsSmallStow(idx) {
		return small
	}
	if IsLargeStow(idx) {
		return large
	}
	return false
}

// ContainerSlots is a Container Object's four internal slots: two small,
// two large (Section 3.1: "containers hold four internal slots (two
// small, two large)").
type ContainerSlots [4]*Object

const (
	ContainerSmallLo = 0
	ContainerSmallHi = 1
	ContainerLargeLo = 2
	ContainerLargeHi = 3
)

// FirstFreeContainerSlot returns the first free slot index matching obj's
// size class, or -1 if full.
func FirstFreeContainerSlot(slots *ContainerSlots, obj *Object) int {
	lo, hi := ContainerSmallLo, ContainerSmallHi
	if obj.HasTag("large") {
		lo, hi = ContainerLargeLo, ContainerLargeHi
	}
	for i := lo; i <= hi; i++ {
		if slots[i] == nil {
			return i
		}
	}
	return -1
}

// Find returns the slot index holding obj's UUID, or -1.
func (inv *Inventory) Find(id UUID) int {
	for i, o := range inv {
		if o != nil && o.UUID == id {
			return i
		}
	}
	return -1
}

// FirstFree returns the first empty slot index in the given order, or -1.
func (inv *Inventory) FirstFree(order []int) int {
	for _, idx := range order {
		if inv[idx] == nil {
			return idx
		}
	}
	return -1
}

// PreferredOrder returns the slot search order for picking up obj, per
// Section 4.F Interaction service Pick Up: small -> stow slots then hands;
// large -> large-stow slots then hands.
func PreferredOrder(obj *Object) []int {
	if obj.HasTag("large") {
		return []int{SlotLargeLo, SlotLargeLo + 1, SlotRightHand, SlotLeftHand}
	}
	// small (default): stow slots 2..5, then right hand, then left hand.
	return []int{SlotSmallLo, SlotSmallLo + 1, SlotSmallLo + 2, SlotSmallLo + 3, SlotRightHand, SlotLeftHand}
}

// Place puts obj into slot idx, marking it stowed unless the slot is a hand.
// Caller must have validated Accepts(idx, obj) and that obj isn't already
// present elsewhere in this inventory (Section 3.1: no UUID appears twice).
func (inv *Inventory) Place(idx int, obj *Object) {
	if IsHand(idx) {
		obj.RemoveTag("stowed")
	} else {
		obj.AddTag("stowed")
	}
	inv[idx] = obj
}

// Remove clears the slot holding id, returning the removed Object (or nil).
func (inv *Inventory) Remove(id UUID) *Object {
	idx := inv.Find(id)
	if idx == -1 {
		return nil
	}
	obj := inv[idx]
	inv[idx] = nil
	return obj
}

// CountByName returns how many inventory items have the given display name.
func (inv *Inventory) CountByName(name string) int {
	n := 0
	for _, o := range inv {
		if o != nil && o.Name == name {
			n++
		}
	}
	return n
}

// ConsumeByName removes up to n objects with the given display name,
// returning the removed objects. Used by crafting to consume components.
func (inv *Inventory) ConsumeByName(name string, n int) []*Object {
	var removed []*Object
	for i, o := range inv {
		if n <= 0 {
			break
		}
		if o != nil && o.Name == name {
			removed = append(removed, o)
			inv[i] = nil
			n--
		}
	}
	return removed
}
