// Package combat implements the Section 4.K combat service: damage,
// morale/yield, and flee. Grounded on the teacher's engine/crime.go
// deterministic modular-arithmetic checks and agents/soul.go's
// clamp-on-write derived-state pattern, generalized from NPC wellbeing to
// hit points and morale.
package combat

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/talgya/mini-world/internal/character"
	"github.com/talgya/mini-world/internal/locks"
	"github.com/talgya/mini-world/internal/model"
	"github.com/talgya/mini-world/internal/service"
)

// Combatant bundles the fields combat reads/writes so the service does not
// need to know whether it is acting on a Player's or NPC's sheet.
type Combatant struct {
	Name  string
	Sheet *character.CharacterSheet
}

// Damage computes dmg = max(1, strength/2 + weapon_damage - armor_defense)
// (Section 4.K). weapon_damage and armor_defense are looked up from the
// attacker's/defender's equipped object tags ("Damage: N", "Defense: N");
// both default to 0 absent equipment or a matching tag.
func Damage(attacker, defender *character.CharacterSheet, attackerWeapon, defenderArmor *model.Object) int {
	weaponDamage := 0
	if attackerWeapon != nil {
		if n, ok := affordanceValue(attackerWeapon.Tags, "damage"); ok {
			weaponDamage = n
		}
	}
	armorDefense := 0
	if defenderArmor != nil {
		if n, ok := affordanceValue(defenderArmor.Tags, "defense"); ok {
			armorDefense = n
		}
	}
	dmg := attacker.Attributes.Strength/2 + weaponDamage - armorDefense
	if dmg < 1 {
		dmg = 1
	}
	return dmg
}

func affordanceValue(tags []string, key string) (int, bool) {
	prefix := strings.ToLower(key) + ":"
	for _, t := range tags {
		lower := strings.ToLower(t)
		if strings.HasPrefix(lower, prefix) {
			n, err := strconv.Atoi(strings.TrimSpace(t[len(prefix):]))
			if err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

// Attack applies one hit from attacker to defender, updates hp/morale/
// yield/death, and reports the outcome (Section 4.K). rng is injected so
// morale rolls are deterministic in tests.
func Attack(attacker, defender Combatant, attackerWeapon, defenderArmor *model.Object, defenderIsPlayer bool, rng *rand.Rand) service.Result {
	if defender.Sheet.IsDead {
		return service.Fail(service.New(service.KindConstraint, fmt.Sprintf("%s is already dead", defender.Name)))
	}
	dmg := Damage(attacker.Sheet, defender.Sheet, attackerWeapon, defenderArmor)
	defender.Sheet.Derived.HP -= dmg
	if defender.Sheet.Derived.HP < 0 {
		defender.Sheet.Derived.HP = 0
	}

	var emits []service.Emit
	emits = append(emits, service.Emit{Text: fmt.Sprintf("You hit %s for %d damage.", defender.Name, dmg)})

	if defender.Sheet.Derived.HP == 0 {
		if defenderIsPlayer {
			defender.Sheet.IsDead = true
			return service.Ok(emits, []service.Broadcast{{Text: fmt.Sprintf("%s has died.", defender.Name)}})
		}
		defender.Sheet.Yielded = true
		return service.Ok(emits, []service.Broadcast{{Text: fmt.Sprintf("%s has been defeated.", defender.Name)}})
	}

	if !defenderIsPlayer {
		lowHP := defender.Sheet.Derived.HP*100 <= defender.Sheet.Derived.MaxHP*30
		roll := rng.Intn(100) + 1
		moraleCheck := roll+defender.Sheet.Morale+defender.Sheet.Personality.Confidence-defender.Sheet.Personality.Aggression < 50
		if lowHP || moraleCheck {
			defender.Sheet.Yielded = true
			emits = append(emits, service.Emit{Text: fmt.Sprintf("%s yields!", defender.Name)})
		}
	}

	return service.Ok(emits, nil)
}

// Flee moves actor to a random adjacent room via any accessible door,
// stair, or Travel Point Object, filtering by permission first and then
// choosing uniformly at random among valid destinations (Section 4.K,
// and the Open Question decision recorded in DESIGN.md). Requires the
// actor be neither dead nor yielded.
func Flee(sheet *character.CharacterSheet, room *model.Room, actorUserID string, exists locks.UserExists, relOf locks.RelationshipOf, rng *rand.Rand) (string, *service.Error) {
	if sheet.IsDead {
		return "", service.New(service.KindConstraint, "the dead cannot flee")
	}
	if sheet.Yielded {
		return "", service.New(service.KindConstraint, "you have yielded and cannot flee")
	}

	var destinations []string
	for name, target := range room.Doors {
		if policy, has := locks.HasPolicy(room, name); has && !locks.Allowed(policy, actorUserID, exists, relOf) {
			continue
		}
		destinations = append(destinations, target)
	}
	if room.StairsUp != "" {
		destinations = append(destinations, room.StairsUp)
	}
	if room.StairsDown != "" {
		destinations = append(destinations, room.StairsDown)
	}
	if len(destinations) == 0 {
		return "", service.New(service.KindConstraint, "there is nowhere to flee to")
	}
	return destinations[rng.Intn(len(destinations))], nil
}
