// Package search is a plain alpha-beta negamax searcher with principal
// variation tracking, iterative deepening and a polled time budget.
package search

import (
	"context"
	"time"

	"chessbot/eval"
	"chessbot/position"
)

const (
	Inf    = 32001
	NegInf = -Inf
	Mate   = 32000
	Draw   = 0

	// MaxPly bounds the recursion. Nodes at this ply are evaluated
	// statically.
	MaxPly = 128

	// PollInterval is the node cadence at which the stop conditions are
	// checked.
	PollInterval = 1024
)

// MatedIn is the score of the side to move being mated at ply.
func MatedIn(ply int) int {
	return -Mate + ply
}

// MateIn is the score of mating the opponent at ply.
func MateIn(ply int) int {
	return Mate - ply
}

// IsMateScore reports whether score encodes a forced mate for either side.
func IsMateScore(score int) bool {
	return score >= Mate-MaxPly || score <= -Mate+MaxPly
}

// Searcher holds the search configuration. It keeps no per-search state
// so one Searcher may run many searches, one at a time.
type Searcher struct {
	Eval     eval.Evaluator
	Chess960 bool
}

// New returns a Searcher using e, or material evaluation when e is nil.
func New(e eval.Evaluator) *Searcher {
	if e == nil {
		e = eval.Material{}
	}
	return &Searcher{Eval: e}
}

// Info is the state shared by every node of one search.
type Info struct {
	Nodes uint64

	ctx       context.Context
	start     time.Time
	allowance time.Duration
	timed     bool
	stopped   bool
}

// NewInfo starts the clock for a search. A nil allowance means the search
// is only stopped through ctx.
func NewInfo(ctx context.Context, allowance *time.Duration) *Info {
	info := &Info{ctx: ctx, start: time.Now()}
	if allowance != nil {
		info.allowance = *allowance
		info.timed = true
	}
	return info
}

func (info *Info) Stopped() bool {
	return info.stopped
}

func (info *Info) Elapsed() time.Duration {
	return time.Since(info.start)
}

func (info *Info) poll() {
	if info.timed && Expired(info.start, info.allowance) {
		info.stopped = true
		return
	}
	if info.ctx != nil && info.ctx.Err() != nil {
		info.stopped = true
	}
}

// Search is fail-hard negamax. It returns the score of pos for the side to
// move and leaves the best line below pos in pv.
func (s *Searcher) Search(info *Info, alpha, beta int, pos *position.Position, depth, ply int, pv *PVTable) int {
	pv.Clear()

	if info.Nodes%PollInterval == 0 {
		info.poll()
	}
	if info.stopped && ply > 0 {
		return 0
	}

	if ply >= MaxPly || depth == 0 {
		return s.Eval.Evaluate(pos)
	}

	switch pos.Status() {
	case position.Checkmated:
		return MatedIn(ply)
	case position.Drawn:
		return Draw
	}

	best := NegInf
	var childPV PVTable
	for _, m := range pos.LegalMoves() {
		child := pos.Play(m)
		info.Nodes++
		score := -s.Search(info, -beta, -alpha, child, depth-1, ply+1, &childPV)
		if score <= best {
			continue
		}
		best = score
		if score > alpha {
			alpha = score
			pv.Store(m, &childPV)
			if alpha >= beta {
				break
			}
		}
	}
	return best
}
