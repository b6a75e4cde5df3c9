package conquest

import "fmt"

// OrderKind is the closed set of order variants. Move-phase orders are
// Hold through Convoy; Retreat belongs to the retreat phase; Build and
// Disband to the build phase.
type OrderKind int

const (
	Hold OrderKind = iota
	Move
	SupportHold
	SupportMove
	Convoy
	Retreat
	Build
	Disband
)

func (k OrderKind) String() string {
	switch k {
	case Hold:
		return "hold"
	case Move:
		return "move"
	case SupportHold:
		return "support-hold"
	case SupportMove:
		return "support-move"
	case Convoy:
		return "convoy"
	case Retreat:
		return "retreat"
	case Build:
		return "build"
	case Disband:
		return "disband"
	default:
		return "unknown"
	}
}

// Order is a single order issued by one player for one part.
//
//	Hold        — Part holds
//	Move        — Part moves to Target
//	SupportHold — Part supports the unit on Target holding
//	SupportMove — Part supports the move From -> Target
//	Convoy      — Part (a coast fleet) convoys the move From -> Target
//	Retreat     — dislodged unit from Part retreats to Target
//	Build       — new unit built on Part
//	Disband     — unit on Part removed
type Order struct {
	Kind   OrderKind
	Player PlayerID
	Part   PartID
	Target PartID
	From   PartID
}

// OrderResult describes the adjudicated outcome of an order.
type OrderResult int

const (
	Succeeded OrderResult = iota
	Bounced               // move repelled or standoff
	Cut                   // support invalidated by an attack
	Broken                // convoy chain disrupted or paradoxical
	Dislodged             // the ordered unit was forced out
	Void                  // order was invalid, unit held instead
)

func (r OrderResult) String() string {
	switch r {
	case Succeeded:
		return "succeeded"
	case Bounced:
		return "bounced"
	case Cut:
		return "cut"
	case Broken:
		return "broken"
	case Dislodged:
		return "dislodged"
	case Void:
		return "void"
	default:
		return "unknown"
	}
}

// ResolvedOrder pairs an order with its outcome.
type ResolvedOrder struct {
	Order  Order
	Result OrderResult
}

// Describe renders the order in the fixed phase-log grammar.
func (o Order) Describe(w *World) string {
	switch o.Kind {
	case Hold:
		return fmt.Sprintf("%s H", w.PartName(o.Part))
	case Move:
		return fmt.Sprintf("%s M %s", w.PartName(o.Part), w.PartName(o.Target))
	case SupportHold:
		return fmt.Sprintf("%s S %s", w.PartName(o.Part), w.PartName(o.Target))
	case SupportMove:
		return fmt.Sprintf("%s S %s from %s", w.PartName(o.Part), w.PartName(o.Target), w.PartName(o.From))
	case Convoy:
		return fmt.Sprintf("%s C %s from %s", w.PartName(o.Part), w.PartName(o.Target), w.PartName(o.From))
	case Retreat:
		return fmt.Sprintf("%s R %s", w.PartName(o.Part), w.PartName(o.Target))
	case Build:
		return fmt.Sprintf("B %s", w.PartName(o.Part))
	case Disband:
		return fmt.Sprintf("D %s", w.PartName(o.Part))
	default:
		return fmt.Sprintf("%s ?", w.PartName(o.Part))
	}
}
