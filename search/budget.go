package search

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidBudget = errors.New("invalid search budget")

// MaxDepth is the deepest fixed-depth search accepted. Plies past MaxPly
// are cut off by the searcher.
const MaxDepth = 255

// Kind discriminates the variants of Budget.
type Kind int

const (
	KindDepth Kind = iota
	KindMovetime
	KindNodes
	KindTime
	KindInfinite
)

func (k Kind) String() string {
	switch k {
	case KindDepth:
		return "depth"
	case KindMovetime:
		return "movetime"
	case KindNodes:
		return "nodes"
	case KindTime:
		return "time"
	case KindInfinite:
		return "infinite"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Budget says when a search should stop. Exactly one variant is active,
// selected by Kind; only the fields of that variant are meaningful.
type Budget struct {
	Kind Kind

	Depth    int
	Movetime time.Duration
	Nodes    uint64

	WTime     time.Duration
	BTime     time.Duration
	WInc      *time.Duration
	BInc      *time.Duration
	MovesToGo *int
}

func Depth(n int) Budget {
	return Budget{Kind: KindDepth, Depth: n}
}

func Movetime(d time.Duration) Budget {
	return Budget{Kind: KindMovetime, Movetime: d}
}

func Nodes(n uint64) Budget {
	return Budget{Kind: KindNodes, Nodes: n}
}

// Time is a clock budget. The optional fields may be nil.
func Time(wtime, btime time.Duration, winc, binc *time.Duration, movesToGo *int) Budget {
	return Budget{
		Kind:      KindTime,
		WTime:     wtime,
		BTime:     btime,
		WInc:      winc,
		BInc:      binc,
		MovesToGo: movesToGo,
	}
}

func Infinite() Budget {
	return Budget{Kind: KindInfinite}
}

// Validate rejects budgets a search cannot run with.
func (b Budget) Validate() error {
	switch b.Kind {
	case KindDepth:
		if b.Depth < 1 || b.Depth > MaxDepth {
			return fmt.Errorf("%w: depth %d not in 1..%d", ErrInvalidBudget, b.Depth, MaxDepth)
		}
	case KindMovetime:
		if b.Movetime < 0 {
			return fmt.Errorf("%w: negative movetime", ErrInvalidBudget)
		}
	case KindNodes:
	case KindTime:
		if b.WTime < 0 || b.BTime < 0 {
			return fmt.Errorf("%w: negative clock", ErrInvalidBudget)
		}
	case KindInfinite:
	default:
		return fmt.Errorf("%w: unknown kind %v", ErrInvalidBudget, b.Kind)
	}
	return nil
}

func (b Budget) String() string {
	switch b.Kind {
	case KindDepth:
		return fmt.Sprintf("depth %d", b.Depth)
	case KindMovetime:
		return fmt.Sprintf("movetime %d", b.Movetime.Milliseconds())
	case KindNodes:
		return fmt.Sprintf("nodes %d", b.Nodes)
	case KindTime:
		s := fmt.Sprintf("wtime %d btime %d", b.WTime.Milliseconds(), b.BTime.Milliseconds())
		if b.WInc != nil {
			s += fmt.Sprintf(" winc %d", b.WInc.Milliseconds())
		}
		if b.BInc != nil {
			s += fmt.Sprintf(" binc %d", b.BInc.Milliseconds())
		}
		if b.MovesToGo != nil {
			s += fmt.Sprintf(" movestogo %d", *b.MovesToGo)
		}
		return s
	case KindInfinite:
		return "infinite"
	}
	return b.Kind.String()
}
