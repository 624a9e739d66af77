// Package fulfillment holds the transition tables for catalog order lines and designer orders.
package fulfillment

import (
	"errors"
	"fmt"

	"bakery-service/internal/models"
)

var ErrInvalidTransition = errors.New("invalid state transition")

type Kind string

const (
	KindOrderLine     Kind = "order_line"
	KindDesignerOrder Kind = "designer_order"
)

type Action string

const (
	ActionAccept               Action = "accept"
	ActionReject               Action = "reject"
	ActionShip                 Action = "ship"
	ActionReceive              Action = "receive"
	ActionReceiveWithCondition Action = "receive_with_condition"
)

type edge struct {
	from   models.OrderState
	action Action
	to     models.OrderState
}

var lineEdges = []edge{
	{models.StatePlaced, ActionAccept, models.StateAccepted},
	{models.StatePlaced, ActionReject, models.StateRejected},
	{models.StateAccepted, ActionShip, models.StateShipped},
	{models.StateShipped, ActionReceive, models.StateReceived},
	{models.StateShipped, ActionReceiveWithCondition, models.StateReceivedWithCondition},
}

var designerEdges = []edge{
	{models.StatePlaced, ActionAccept, models.StateAccepted},
	{models.StatePlaced, ActionReject, models.StateRejected},
	{models.StateAccepted, ActionShip, models.StateShipped},
	{models.StateShipped, ActionReceive, models.StateReceived},
}

// Machine answers "where does this action lead from this state" for one order kind.
//
// A strict machine enforces the full table. A lenient machine keeps the prior-state check only
// for actions listed in guarded; every other supported action lands on its target state from
// anywhere, which is how the legacy routes behaved for accept, reject and receive.
type Machine struct {
	kind    Kind
	strict  bool
	guarded map[Action]bool
	next    map[models.OrderState]map[Action]models.OrderState
	targets map[Action]models.OrderState
}

func NewOrderLineMachine(strict bool) *Machine {
	return newMachine(KindOrderLine, strict, lineEdges, ActionShip)
}

func NewDesignerOrderMachine(strict bool) *Machine {
	return newMachine(KindDesignerOrder, strict, designerEdges, ActionShip)
}

func newMachine(kind Kind, strict bool, edges []edge, guarded ...Action) *Machine {
	m := &Machine{
		kind:    kind,
		strict:  strict,
		guarded: make(map[Action]bool, len(guarded)),
		next:    make(map[models.OrderState]map[Action]models.OrderState),
		targets: make(map[Action]models.OrderState),
	}
	for _, a := range guarded {
		m.guarded[a] = true
	}
	for _, e := range edges {
		if m.next[e.from] == nil {
			m.next[e.from] = make(map[Action]models.OrderState)
		}
		m.next[e.from][e.action] = e.to
		m.targets[e.action] = e.to
	}
	return m
}

func (m *Machine) Kind() Kind { return m.kind }

func (m *Machine) Strict() bool { return m.strict }

// Supports reports whether the order kind has the action at all.
func (m *Machine) Supports(a Action) bool {
	_, ok := m.targets[a]
	return ok
}

func (m *Machine) Next(from models.OrderState, a Action) (models.OrderState, error) {
	target, ok := m.targets[a]
	if !ok {
		return "", fmt.Errorf("%w: %s does not support %s", ErrInvalidTransition, m.kind, a)
	}
	if !from.Valid() {
		return "", fmt.Errorf("%w: unknown state %q", ErrInvalidTransition, from)
	}
	if !m.strict && !m.guarded[a] {
		return target, nil
	}
	to, ok := m.next[from][a]
	if !ok {
		return "", fmt.Errorf("%w: cannot %s %s from %s", ErrInvalidTransition, a, m.kind, from)
	}
	return to, nil
}

func IsTerminal(s models.OrderState) bool {
	switch s {
	case models.StateRejected, models.StateReceived, models.StateReceivedWithCondition:
		return true
	case models.StatePlaced, models.StateAccepted, models.StateShipped:
		return false
	}
	return false
}
