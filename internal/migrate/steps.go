package migrate

// migrateAddVersion ensures the world map and world_version field exist.
// Idempotent: setting the same default twice is a no-op.
func migrateAddVersion(doc map[string]any) map[string]any {
	w := ensureMap(doc, "world")
	if _, ok := w["world_version"]; !ok {
		w["world_version"] = 0
	}
	if _, ok := w["rooms"]; !ok {
		w["rooms"] = map[string]any{}
	}
	if _, ok := w["object_templates"]; !ok {
		w["object_templates"] = map[string]any{}
	}
	if _, ok := w["relationships"]; !ok {
		w["relationships"] = map[string]any{}
	}
	if _, ok := w["factions"]; !ok {
		w["factions"] = map[string]any{}
	}
	if _, ok := w["safety_level"]; !ok {
		w["safety_level"] = "PG-13"
	}
	if _, ok := w["advanced_goap_enabled"]; !ok {
		w["advanced_goap_enabled"] = false
	}
	c := ensureMap(doc, "chars")
	if _, ok := c["users"]; !ok {
		c["users"] = map[string]any{}
	}
	if _, ok := c["npc_sheets"]; !ok {
		c["npc_sheets"] = map[string]any{}
	}
	if _, ok := c["npc_ids"]; !ok {
		c["npc_ids"] = map[string]any{}
	}
	return doc
}

// migrateNeedsDefaults fills missing need fields on every sheet (users'
// and NPCs') with spec defaults, and clamps any out-of-range numerics
// found in a partially corrupted document (Section 4.A failure semantics).
func migrateNeedsDefaults(doc map[string]any) map[string]any {
	c := ensureMap(doc, "chars")
	forEachSheet(c, func(sheet map[string]any) {
		needs := ensureMap(sheet, "needs")
		backfillNeed(needs, "hunger")
		backfillNeed(needs, "thirst")
		backfillNeed(needs, "socialization")
		backfillNeed(needs, "sleep")

		ext := ensureMap(sheet, "extended_needs")
		backfillNeedZero(ext, "safety")
		backfillNeedZero(ext, "wealth_desire")
		backfillNeedZero(ext, "social_status")

		if _, ok := sheet["personality"]; !ok {
			sheet["personality"] = map[string]any{
				"responsibility": 50, "aggression": 50, "confidence": 50, "curiosity": 50,
			}
		}

		planner := ensureMap(sheet, "planner")
		if _, ok := planner["action_points"]; !ok {
			planner["action_points"] = 3
		}
		if _, ok := planner["plan_queue"]; !ok {
			planner["plan_queue"] = []any{}
		}
		if _, ok := planner["sleeping_ticks_remaining"]; !ok {
			planner["sleeping_ticks_remaining"] = 0
		}

		if _, ok := sheet["relationships"]; !ok {
			sheet["relationships"] = map[string]any{}
		}
		if attrs, ok := sheet["attributes"].(map[string]any); ok {
			clampAttr(attrs, "strength")
			clampAttr(attrs, "dexterity")
			clampAttr(attrs, "intelligence")
			clampAttr(attrs, "health")
		} else {
			sheet["attributes"] = map[string]any{
				"strength": 10, "dexterity": 10, "intelligence": 10, "health": 10,
			}
		}
		if _, ok := sheet["morale"]; !ok {
			sheet["morale"] = 100
		}
	})
	return doc
}

func backfillNeed(needs map[string]any, key string) {
	v, ok := needs[key].(float64)
	if !ok {
		needs[key] = 100.0
		return
	}
	needs[key] = clampFloat(v, 0, 100)
}

func backfillNeedZero(m map[string]any, key string) {
	v, ok := m[key].(float64)
	if !ok {
		m[key] = 0.0
		return
	}
	m[key] = clampFloat(v, 0, 100)
}

func clampAttr(attrs map[string]any, key string) {
	v, ok := attrs[key].(float64)
	if !ok {
		attrs[key] = 10
		return
	}
	attrs[key] = clampFloat(v, 3, 18)
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// migrateEnsureUUIDs assigns fresh UUIDs to any room, object, template, or
// NPC missing one, and ensures every room has its door_ids, players, npcs,
// doors and door_locks maps (Section 3.4 step 3). Stairs ids are not
// touched here; migrateDoorStairObjects assigns them.
func migrateEnsureUUIDs(doc map[string]any) map[string]any {
	w := ensureMap(doc, "world")
	rooms := ensureMap(w, "rooms")
	for _, rv := range rooms {
		room, ok := rv.(map[string]any)
		if !ok {
			continue
		}
		if s, ok := room["uuid"].(string); !ok || s == "" {
			room["uuid"] = newUUID()
		}
		if _, ok := room["door_ids"]; !ok {
			room["door_ids"] = map[string]any{}
		}
		if _, ok := room["players"]; !ok {
			room["players"] = map[string]any{}
		}
		if _, ok := room["npcs"]; !ok {
			room["npcs"] = map[string]any{}
		}
		if _, ok := room["doors"]; !ok {
			room["doors"] = map[string]any{}
		}
		if _, ok := room["door_locks"]; !ok {
			room["door_locks"] = map[string]any{}
		}
		objects := ensureMap(room, "objects")
		fixed := map[string]any{}
		for k, ov := range objects {
			obj, ok := ov.(map[string]any)
			if !ok {
				continue
			}
			id, ok := obj["uuid"].(string)
			if !ok || id == "" {
				id = newUUID()
				obj["uuid"] = id
			}
			fixed[id] = obj
			_ = k
		}
		room["objects"] = fixed
	}

	templates := ensureMap(w, "object_templates")
	for _, tv := range templates {
		tmpl, ok := tv.(map[string]any)
		if !ok {
			continue
		}
		if s, ok := tmpl["key"].(string); !ok || s == "" {
			tmpl["key"] = newUUID()
		}
	}

	c := ensureMap(doc, "chars")
	npcSheets := ensureMap(c, "npc_sheets")
	npcIDs := ensureMap(c, "npc_ids")
	for name := range npcSheets {
		if _, ok := npcIDs[name].(string); !ok {
			npcIDs[name] = newUUID()
		}
	}

	return doc
}

// migrateDoorStairObjects ensures every door/stairs target named in a
// Room's doors/stairs maps has a corresponding Immovable+Travel Point
// Object with matching link_target_room_id (Section 3.2, Section 3.4 step
// 4). It does not attempt reciprocal repair across rooms — that is the
// job of the integrity auditor (Section 4.J), which runs after load.
func migrateDoorStairObjects(doc map[string]any) map[string]any {
	w := ensureMap(doc, "world")
	rooms := ensureMap(w, "rooms")
	for _, rv := range rooms {
		room, ok := rv.(map[string]any)
		if !ok {
			continue
		}
		doors := ensureMap(room, "doors")
		doorIDs := ensureMap(room, "door_ids")
		objects := ensureMap(room, "objects")

		for name, targetV := range doors {
			target, _ := targetV.(string)
			ensureTravelObject(doorIDs, objects, name, target, "door_ids")
		}

		if up, ok := room["stairs_up_to"].(string); ok && up != "" {
			ensureSingleTravelObject(room, objects, "stairs_up_id", "stairs up", up)
		}
		if down, ok := room["stairs_down_to"].(string); ok && down != "" {
			ensureSingleTravelObject(room, objects, "stairs_down_id", "stairs down", down)
		}
	}
	return doc
}

func ensureTravelObject(idMap, objects map[string]any, name, target, _ string) {
	if idStr, ok := idMap[name].(string); ok {
		if obj, ok := objects[idStr].(map[string]any); ok {
			fixTravelTags(obj, target)
			return
		}
	}
	id := newUUID()
	idMap[name] = id
	objects[id] = newTravelObject(id, name, target)
}

func ensureSingleTravelObject(room, objects map[string]any, idField, name, target string) {
	if idStr, ok := room[idField].(string); ok {
		if obj, ok := objects[idStr].(map[string]any); ok {
			fixTravelTags(obj, target)
			return
		}
	}
	id := newUUID()
	room[idField] = id
	objects[id] = newTravelObject(id, name, target)
}

func newTravelObject(id, name, target string) map[string]any {
	return map[string]any{
		"uuid":                 id,
		"name":                 name,
		"description":          "A way through.",
		"tags":                 []any{"Immovable", "Travel Point"},
		"link_target_room_id":  target,
	}
}

func fixTravelTags(obj map[string]any, target string) {
	obj["link_target_room_id"] = target
	tags, _ := obj["tags"].([]any)
	has := func(want string) bool {
		for _, t := range tags {
			if s, ok := t.(string); ok && s == want {
				return true
			}
		}
		return false
	}
	if !has("Immovable") {
		tags = append(tags, "Immovable")
	}
	if !has("Travel Point") {
		tags = append(tags, "Travel Point")
	}
	obj["tags"] = tags
}

// migrateCombatFields backfills combat-related sheet fields absent from
// older documents (Section 3.4 step 5).
func migrateCombatFields(doc map[string]any) map[string]any {
	c := ensureMap(doc, "chars")
	forEachSheet(c, func(sheet map[string]any) {
		if _, ok := sheet["yielded"]; !ok {
			sheet["yielded"] = false
		}
		if _, ok := sheet["is_dead"]; !ok {
			sheet["is_dead"] = false
		}
		derived := ensureMap(sheet, "derived")
		if _, ok := derived["hp"]; !ok {
			derived["hp"] = 10
		}
		if _, ok := derived["max_hp"]; !ok {
			derived["max_hp"] = 10
		}
		if _, ok := derived["will"]; !ok {
			derived["will"] = 10
		}
		if _, ok := derived["perception"]; !ok {
			derived["perception"] = 10
		}
		if _, ok := derived["fp"]; !ok {
			derived["fp"] = 10
		}
		if _, ok := derived["max_fp"]; !ok {
			derived["max_fp"] = 10
		}
	})
	return doc
}

// forEachSheet calls fn for every user's sheet and every NPC sheet.
func forEachSheet(chars map[string]any, fn func(sheet map[string]any)) {
	users := ensureMap(chars, "users")
	for _, uv := range users {
		user, ok := uv.(map[string]any)
		if !ok {
			continue
		}
		sheet := ensureMap(user, "sheet")
		fn(sheet)
	}
	npcSheets := ensureMap(chars, "npc_sheets")
	for _, sv := range npcSheets {
		sheet, ok := sv.(map[string]any)
		if !ok {
			continue
		}
		fn(sheet)
		_ = sheet
	}
	// Replace in place since forEachSheet's fn mutates maps by reference
	// already (map[string]any values share the same underlying map), so
	// no write-back is needed here.
}
