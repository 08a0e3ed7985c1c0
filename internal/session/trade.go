package session

import (
	"fmt"
	"strings"

	"github.com/talgya/mini-world/internal/character"
	"github.com/talgya/mini-world/internal/model"
	"github.com/talgya/mini-world/internal/mutate"
	"github.com/talgya/mini-world/internal/service"
)

// dispatchTrade implements the Section 4.F trade/barter state machine's
// command surface: open, offer, confirm, reject, cancel. Not named in
// Section 6.4's "selected" command table, but required to exercise
// internal/mutate.TradeService.
func (m *Manager) dispatchTrade(sess *Session, rest string) (service.Result, bool) {
	sub, arg := splitVerb(rest)
	switch strings.ToLower(sub) {
	case "open":
		other, ok := m.findUserByName(strings.TrimSpace(arg))
		if !ok {
			return service.Fail(service.New(service.KindNotFound, fmt.Sprintf("no such user %q", arg))), false
		}
		return m.trades.Initiate(sess.player.UserID, other.UserID), false
	case "offer":
		parts := splitPipes(arg)
		if len(parts) != 2 {
			return service.Fail(service.New(service.KindValidation, "usage: /trade offer <trade-id> | <uuid,uuid,...>")), false
		}
		offer := parseUUIDList(parts[1])
		return m.trades.Propose(parts[0], sess.player.UserID, offer), true
	case "confirm":
		tradeID := strings.TrimSpace(arg)
		t, ok := m.trades.Trades[tradeID]
		if !ok {
			return service.Fail(service.New(service.KindNotFound, "no such trade")), false
		}
		sheetA, okA := m.sheetForUser(t.UserA)
		sheetB, okB := m.sheetForUser(t.UserB)
		if !okA || !okB {
			return service.Fail(service.New(service.KindIntegrity, "a trade party no longer exists")), false
		}
		r := m.trades.Confirm(tradeID, sess.player.UserID, sheetA, sheetB)
		if r.Err == nil && t.State == mutate.TradeAccepted {
			m.logEvent("trade", fmt.Sprintf("trade %s completed between %s and %s", tradeID, t.UserA, t.UserB))
		}
		return r, true
	case "reject":
		return m.trades.Reject(strings.TrimSpace(arg)), false
	case "cancel":
		return m.trades.Cancel(strings.TrimSpace(arg)), false
	default:
		return service.Fail(service.New(service.KindValidation, "usage: /trade open|offer|confirm|reject|cancel ...")), false
	}
}

func (m *Manager) sheetForUser(userID string) (*character.CharacterSheet, bool) {
	user, ok := m.doc().Chars.Users[userID]
	if !ok {
		return nil, false
	}
	return user.Sheet, true
}

func parseUUIDList(s string) []model.UUID {
	var out []model.UUID
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, model.UUID(p))
		}
	}
	return out
}
