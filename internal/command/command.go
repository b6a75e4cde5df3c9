// Package command parses the line-oriented input grammar: orders, draw
// votes, press, and the query commands. Parsing is purely syntactic;
// name resolution against the map happens in the session.
package command

import (
	"fmt"
	"strings"
)

type Kind int

const (
	CmdOrder Kind = iota
	CmdDraw
	CmdPress
	CmdMap
	CmdRules
	CmdPhase
	CmdPressRead
	CmdReady
	CmdResolve
)

// OrderSpec is the unresolved textual form of one order.
//
//	<part> M <dest>         move
//	H <part>                hold
//	<part> S <target>       support hold
//	<part> S <to> from <fr> support move
//	<part> C <to> from <fr> convoy
//	<part> R <dest>         retreat
//	B <part>                build
//	D <part>                disband
type OrderSpec struct {
	Verb   byte
	Part   string
	Target string
	From   string
}

// Command is one parsed input line.
type Command struct {
	Kind    Kind
	Player  string
	Vote    bool
	To      string // press recipient or "public"
	Message string
	Order   OrderSpec
}

// Parse decodes one input line. Empty lines and lines starting with #
// return (nil, nil) so callers can skip them.
func Parse(line string) (*Command, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil, nil
	}

	fields := strings.Fields(line)
	switch fields[0] {
	case "--order":
		return parseOrder(fields[1:])
	case "--draw":
		return parseDraw(fields[1:])
	case "--press":
		return parsePress(line, fields)
	case "--map":
		return only(fields, &Command{Kind: CmdMap})
	case "--rules":
		return only(fields, &Command{Kind: CmdRules})
	case "--phase":
		return only(fields, &Command{Kind: CmdPhase})
	case "--press-read":
		if len(fields) != 2 {
			return nil, fmt.Errorf("usage: --press-read <player|public>")
		}
		return &Command{Kind: CmdPressRead, To: fields[1]}, nil
	case "--ready":
		if len(fields) != 2 {
			return nil, fmt.Errorf("usage: --ready <player>")
		}
		return &Command{Kind: CmdReady, Player: fields[1]}, nil
	case "--resolve":
		return only(fields, &Command{Kind: CmdResolve})
	default:
		return nil, fmt.Errorf("unknown command %q", fields[0])
	}
}

func only(fields []string, c *Command) (*Command, error) {
	if len(fields) != 1 {
		return nil, fmt.Errorf("%s takes no arguments", fields[0])
	}
	return c, nil
}

func parseOrder(args []string) (*Command, error) {
	if len(args) < 2 {
		return nil, fmt.Errorf("usage: --order <player> <order>")
	}
	c := &Command{Kind: CmdOrder, Player: args[0]}
	spec, err := parseOrderSpec(args[1:])
	if err != nil {
		return nil, err
	}
	c.Order = spec
	return c, nil
}

func parseOrderSpec(toks []string) (OrderSpec, error) {
	// Prefix verbs take the part as their sole argument.
	switch toks[0] {
	case "H", "B", "D":
		if len(toks) != 2 {
			return OrderSpec{}, fmt.Errorf("usage: %s <part>", toks[0])
		}
		return OrderSpec{Verb: toks[0][0], Part: toks[1]}, nil
	}

	if len(toks) < 3 {
		return OrderSpec{}, fmt.Errorf("incomplete order %q", strings.Join(toks, " "))
	}
	spec := OrderSpec{Part: toks[0]}
	verb := toks[1]
	switch verb {
	case "M", "R":
		if len(toks) != 3 {
			return OrderSpec{}, fmt.Errorf("usage: <part> %s <dest>", verb)
		}
		spec.Verb = verb[0]
		spec.Target = toks[2]
	case "S":
		spec.Verb = 'S'
		spec.Target = toks[2]
		switch {
		case len(toks) == 3:
		case len(toks) == 5 && toks[3] == "from":
			spec.From = toks[4]
		default:
			return OrderSpec{}, fmt.Errorf("usage: <part> S <target> [from <part>]")
		}
	case "C":
		if len(toks) != 5 || toks[3] != "from" {
			return OrderSpec{}, fmt.Errorf("usage: <part> C <to> from <part>")
		}
		spec.Verb = 'C'
		spec.Target = toks[2]
		spec.From = toks[4]
	default:
		return OrderSpec{}, fmt.Errorf("unknown order verb %q", verb)
	}
	return spec, nil
}

func parseDraw(args []string) (*Command, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("usage: --draw <player> 1|0")
	}
	c := &Command{Kind: CmdDraw, Player: args[0]}
	switch args[1] {
	case "1":
		c.Vote = true
	case "0":
		c.Vote = false
	default:
		return nil, fmt.Errorf("draw vote must be 1 or 0, got %q", args[1])
	}
	return c, nil
}

// parsePress keeps the raw message text, whitespace included, past the
// recipient token.
func parsePress(line string, fields []string) (*Command, error) {
	if len(fields) < 4 {
		return nil, fmt.Errorf("usage: --press <from> <to|public> <message>")
	}
	rest := line
	for _, tok := range fields[:3] {
		i := strings.Index(rest, tok)
		rest = rest[i+len(tok):]
	}
	return &Command{Kind: CmdPress, Player: fields[1], To: fields[2], Message: strings.TrimSpace(rest)}, nil
}
