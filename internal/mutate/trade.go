package mutate

import (
	"fmt"

	"github.com/talgya/mini-world/internal/character"
	"github.com/talgya/mini-world/internal/model"
	"github.com/talgya/mini-world/internal/persist"
	"github.com/talgya/mini-world/internal/service"
)

// TradeState is one state of the two-party confirmation state machine
// (Section 4.F: "initiated -> proposed -> accepted|rejected|cancelled").
type TradeState string

const (
	TradeInitiated TradeState = "initiated"
	TradeProposed  TradeState = "proposed"
	TradeAccepted  TradeState = "accepted"
	TradeRejected  TradeState = "rejected"
	TradeCancelled TradeState = "cancelled"
)

// Trade is one in-flight barter between two users (Section 9
// re-architecture cue: "model each as a state machine bound to the
// session").
type Trade struct {
	ID         string
	State      TradeState
	UserA      string
	UserB      string
	OfferA     []model.UUID // object uuids UserA proposes to give
	OfferB     []model.UUID
	ConfirmedA bool
	ConfirmedB bool
}

// TradeService holds in-flight trades in memory only — never persisted,
// per Section 5 ("any in-flight confirmation state machines (trade/
// barter) cancel" on disconnect).
type TradeService struct {
	Doc    *persist.Document
	Trades map[string]*Trade
}

// NewTradeService constructs an empty TradeService over doc.
func NewTradeService(doc *persist.Document) *TradeService {
	return &TradeService{Doc: doc, Trades: make(map[string]*Trade)}
}

// Initiate opens a new trade between userA and userB.
func (s *TradeService) Initiate(userA, userB string) service.Result {
	id := newUUID()
	s.Trades[id] = &Trade{ID: id, State: TradeInitiated, UserA: userA, UserB: userB}
	return service.Ok([]service.Emit{{Text: fmt.Sprintf("Trade %s opened with %s.", id, userB)}}, nil)
}

// Propose sets the offer for one side and advances to Proposed, resetting
// both confirmations — any change to either offer must be reconfirmed by
// both parties before the swap can commit.
func (s *TradeService) Propose(tradeID, userID string, offer []model.UUID) service.Result {
	t, ok := s.Trades[tradeID]
	if !ok {
		return service.Fail(service.New(service.KindNotFound, "no such trade"))
	}
	if t.State == TradeAccepted || t.State == TradeRejected || t.State == TradeCancelled {
		return service.Fail(service.New(service.KindConstraint, "trade is no longer open"))
	}
	switch userID {
	case t.UserA:
		t.OfferA = offer
	case t.UserB:
		t.OfferB = offer
	default:
		return service.Fail(service.New(service.KindPermission, "you are not a party to this trade"))
	}
	t.State = TradeProposed
	t.ConfirmedA = false
	t.ConfirmedB = false
	return service.Ok([]service.Emit{{Text: "Offer recorded."}}, nil)
}

// Confirm marks userID's side confirmed on the current offer set. When
// both sides have confirmed the exact same state, the swap commits
// atomically (Section 4.F: "both parties must confirm the exact set
// before atomic swap; partial inventory-full failure aborts entire trade
// with rollback").
func (s *TradeService) Confirm(tradeID, userID string, sheetA, sheetB *character.CharacterSheet) service.Result {
	t, ok := s.Trades[tradeID]
	if !ok {
		return service.Fail(service.New(service.KindNotFound, "no such trade"))
	}
	if t.State != TradeProposed {
		return service.Fail(service.New(service.KindConstraint, "trade has no pending offer to confirm"))
	}
	switch userID {
	case t.UserA:
		t.ConfirmedA = true
	case t.UserB:
		t.ConfirmedB = true
	default:
		return service.Fail(service.New(service.KindPermission, "you are not a party to this trade"))
	}
	if !t.ConfirmedA || !t.ConfirmedB {
		return service.Ok([]service.Emit{{Text: "Waiting for the other party to confirm."}}, nil)
	}
	if err := commitTrade(t, sheetA, sheetB); err != nil {
		t.State = TradeCancelled
		return service.Fail(err)
	}
	t.State = TradeAccepted
	return service.Ok([]service.Emit{{Text: "Trade complete."}}, nil)
}

// Reject or Cancel terminate a trade without any inventory change.
func (s *TradeService) Reject(tradeID string) service.Result  { return s.terminate(tradeID, TradeRejected) }
func (s *TradeService) Cancel(tradeID string) service.Result  { return s.terminate(tradeID, TradeCancelled) }

func (s *TradeService) terminate(tradeID string, st TradeState) service.Result {
	t, ok := s.Trades[tradeID]
	if !ok {
		return service.Fail(service.New(service.KindNotFound, "no such trade"))
	}
	t.State = st
	delete(s.Trades, tradeID)
	return service.Ok([]service.Emit{{Text: fmt.Sprintf("Trade %s.", st)}}, nil)
}

// commitTrade performs the atomic exchange: it first verifies every
// offered object is still present and every destination inventory has
// room, building the moves entirely on copies of both inventories before
// writing either one back — so a failure partway through never leaves one
// side's inventory mutated while the other's is not (Section 4.F
// rollback requirement).
func commitTrade(t *Trade, sheetA, sheetB *character.CharacterSheet) error {
	invA, invB := sheetA.Inventory, sheetB.Inventory // copies: model.Inventory is a value array

	objsA, err := takeAll(&invA, t.OfferA)
	if err != nil {
		return service.Wrap(service.KindConstraint, "trade aborted", err)
	}
	objsB, err := takeAll(&invB, t.OfferB)
	if err != nil {
		return service.Wrap(service.KindConstraint, "trade aborted", err)
	}

	if err := giveAll(&invB, objsA); err != nil {
		return service.Wrap(service.KindConstraint, "recipient inventory full, trade aborted", err)
	}
	if err := giveAll(&invA, objsB); err != nil {
		return service.Wrap(service.KindConstraint, "recipient inventory full, trade aborted", err)
	}

	sheetA.Inventory = invA
	sheetB.Inventory = invB
	return nil
}

func takeAll(inv *model.Inventory, ids []model.UUID) ([]*model.Object, error) {
	objs := make([]*model.Object, 0, len(ids))
	for _, id := range ids {
		obj := inv.Remove(id)
		if obj == nil {
			return nil, fmt.Errorf("offered object %s no longer held", id)
		}
		objs = append(objs, obj)
	}
	return objs, nil
}

func giveAll(inv *model.Inventory, objs []*model.Object) error {
	for _, obj := range objs {
		idx := inv.FirstFree(model.PreferredOrder(obj))
		if idx == -1 {
			return fmt.Errorf("no room for %s", obj.Name)
		}
		inv.Place(idx, obj)
	}
	return nil
}
