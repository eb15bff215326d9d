package uci

import (
	"fmt"
	"strconv"
	"time"

	"chessbot/search"
)

type goFields struct {
	wtime, btime, winc, binc *uint64
	movestogo                *uint64
	depth                    *uint64
	nodes                    *uint64
	movetime                 *uint64
	infinite                 bool
}

// parseUint returns nil when s is not an unsigned integer of the given
// size, which later makes the budget invalid.
func parseUint(s string, bits int) *uint64 {
	n, err := strconv.ParseUint(s, 10, bits)
	if err != nil {
		return nil
	}
	return &n
}

func ms(n uint64) time.Duration {
	return time.Duration(n) * time.Millisecond
}

// ParseGo decodes the arguments of a go command. Arguments are read as
// key value pairs; a budget is valid when exactly one of the clock pair,
// depth, nodes, movetime or infinite is given.
func ParseGo(args []string) (search.Budget, error) {
	var f goFields

	for i := 0; i < len(args); i += 2 {
		key, value := args[i], ""
		if i+1 < len(args) {
			value = args[i+1]
		}
		switch key {
		case "wtime":
			f.wtime = parseUint(value, 32)
		case "btime":
			f.btime = parseUint(value, 32)
		case "winc":
			f.winc = parseUint(value, 32)
		case "binc":
			f.binc = parseUint(value, 32)
		case "movestogo":
			f.movestogo = parseUint(value, 32)
		case "depth":
			f.depth = parseUint(value, 8)
		case "nodes":
			f.nodes = parseUint(value, 64)
		case "movetime":
			f.movetime = parseUint(value, 32)
		case "infinite":
			f.infinite = true
		default:
			return search.Budget{}, fmt.Errorf("%w: unrecognised token %q", search.ErrInvalidBudget, key)
		}
	}

	return f.budget()
}

func (f goFields) budget() (search.Budget, error) {
	clock := f.wtime != nil && f.btime != nil
	partialClock := f.wtime != nil || f.btime != nil

	families := 0
	for _, set := range []bool{partialClock, f.depth != nil, f.nodes != nil, f.movetime != nil, f.infinite} {
		if set {
			families++
		}
	}
	if families != 1 {
		return search.Budget{}, fmt.Errorf("%w: want exactly one limit, got %d", search.ErrInvalidBudget, families)
	}

	var b search.Budget
	switch {
	case partialClock:
		if !clock {
			return search.Budget{}, fmt.Errorf("%w: wtime and btime go together", search.ErrInvalidBudget)
		}
		var winc, binc *time.Duration
		var movestogo *int
		if f.winc != nil {
			d := ms(*f.winc)
			winc = &d
		}
		if f.binc != nil {
			d := ms(*f.binc)
			binc = &d
		}
		if f.movestogo != nil {
			n := int(*f.movestogo)
			movestogo = &n
		}
		b = search.Time(ms(*f.wtime), ms(*f.btime), winc, binc, movestogo)
	case f.depth != nil:
		b = search.Depth(int(*f.depth))
	case f.nodes != nil:
		b = search.Nodes(*f.nodes)
	case f.movetime != nil:
		b = search.Movetime(ms(*f.movetime))
	default:
		b = search.Infinite()
	}
	return b, b.Validate()
}
