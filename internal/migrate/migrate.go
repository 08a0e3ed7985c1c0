// Package migrate implements the TinyMUD schema migration registry
// (Section 3.4). Migrations operate on the document's raw decoded form
// (map[string]any) rather than the typed persist.Document, so that older
// documents missing fields the current schema expects can be backfilled
// before strict unmarshaling — mirroring the teacher's
// persistence/db.go migrate(), which tolerates old columns via
// best-effort ALTER TABLE, generalized here to JSON documents instead of
// SQL DDL.
package migrate

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Migration is one idempotent, version-tagged transform over the raw
// document. Apply must not mutate its argument; it returns a new map.
type Migration struct {
	Version int
	Name    string
	Apply   func(doc map[string]any) map[string]any
}

// Registry is the ordered list of all migrations, lowest version first.
var Registry = []Migration{
	{1, "add version field", migrateAddVersion},
	{2, "consolidate needs defaults", migrateNeedsDefaults},
	{3, "ensure uuids and door/stair id maps", migrateEnsureUUIDs},
	{4, "ensure door/stair objects exist", migrateDoorStairObjects},
	{5, "backfill combat fields", migrateCombatFields},
}

// Run applies every migration whose version exceeds the document's current
// world_version, in ascending order, returning the migrated document and
// its final version. Each step works on a deep copy so a failure never
// leaves a partially migrated document installed (Section 3.4: "no partial
// migration is persisted").
func Run(raw map[string]any) (map[string]any, int, error) {
	doc := deepCopyMap(raw)
	current := currentVersion(doc)

	for _, m := range Registry {
		if m.Version <= current {
			continue
		}
		next := deepCopyMap(doc)
		func() {
			defer func() {
				if r := recover(); r != nil {
					slog.Error("migration panicked", "migration", m.Name, "version", m.Version, "recover", r)
					next = nil
				}
			}()
			next = m.Apply(next)
		}()
		if next == nil {
			return nil, current, fmt.Errorf("migration %d (%s) failed", m.Version, m.Name)
		}
		setVersion(next, m.Version)
		doc = next
		current = m.Version
		slog.Info("migration applied", "version", m.Version, "name", m.Name)
	}

	return doc, current, nil
}

func currentVersion(doc map[string]any) int {
	w, ok := doc["world"].(map[string]any)
	if !ok {
		return 0
	}
	switch v := w["world_version"].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

func setVersion(doc map[string]any, v int) {
	w := ensureMap(doc, "world")
	w["world_version"] = v
}

// ensureMap returns (creating if absent) the nested map at key.
func ensureMap(doc map[string]any, key string) map[string]any {
	if m, ok := doc[key].(map[string]any); ok {
		return m
	}
	m := make(map[string]any)
	doc[key] = m
	return m
}

func deepCopyMap(m map[string]any) map[string]any {
	// Round-trip through JSON: simple, correct for the scalar/list/map-only
	// document shape the spec guarantees (Section 4.A).
	b, err := json.Marshal(m)
	if err != nil {
		return map[string]any{}
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		return map[string]any{}
	}
	return out
}

func newUUID() string {
	return uuid.NewString()
}
