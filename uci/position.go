package uci

import (
	"strings"

	"chessbot/position"
)

// ParsePosition applies the arguments of a position command to cur.
// An invalid FEN keeps cur; moves are played until the first one that is
// not legal, and the rest are dropped.
func ParsePosition(cur *position.Position, args []string) (*position.Position, error) {
	if len(args) == 0 {
		return cur, nil
	}

	pos := cur
	rest := args[1:]
	switch args[0] {
	case "startpos":
		pos = position.Start()
		if len(rest) > 0 {
			rest = rest[1:]
		}
	case "fen":
		i := 0
		for i < len(rest) && rest[i] != "moves" {
			i++
		}
		p, err := position.FromFEN(strings.Join(rest[:i], " "))
		if err != nil {
			return cur, err
		}
		pos = p
		rest = rest[i:]
		if len(rest) > 0 {
			rest = rest[1:]
		}
	}

	return pos.Apply(rest...)
}
