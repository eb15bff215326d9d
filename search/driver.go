package search

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"chessbot/position"
)

// Progress describes one completed iteration.
type Progress struct {
	Depth   int             `json:"depth"`
	Score   int             `json:"score"`
	Nodes   uint64          `json:"nodes"`
	NPS     uint64          `json:"nps"`
	Elapsed time.Duration   `json:"-"`
	TimeMS  int64           `json:"time"`
	PV      []string        `json:"pv"`
	Moves   []position.Move `json:"-"`
}

// NodesPerSecond scales the node count by the elapsed wall time, counting
// less than a millisecond as one.
func NodesPerSecond(nodes uint64, elapsed time.Duration) uint64 {
	ms := elapsed.Milliseconds()
	if ms < 1 {
		ms = 1
	}
	return nodes * 1000 / uint64(ms)
}

// Run searches pos by iterative deepening until budget is spent or ctx is
// done, calling report after every completed depth. The returned move is
// the head of the last completed line, or the first legal move when the
// root is drawn and no line was searched. It is the null move only when pos
// has no legal moves.
func (s *Searcher) Run(ctx context.Context, pos *position.Position, budget Budget, report func(Progress)) position.Move {
	ceiling := MaxPly
	var allowance *time.Duration

	switch budget.Kind {
	case KindDepth:
		ceiling = budget.Depth
	case KindTime:
		a := Allowance(budget, pos.Turn())
		allowance = &a
	case KindMovetime:
		a := budget.Movetime
		allowance = &a
	case KindNodes, KindInfinite:
	default:
		panic("search: unknown budget kind " + budget.Kind.String())
	}

	terminal := pos.Status() != position.Ongoing
	info := NewInfo(ctx, allowance)
	logger := log.With().Str("fen", pos.FEN()).Str("budget", budget.String()).Logger()

	var best position.Move
	var pv PVTable
	for depth := 1; depth <= ceiling; depth++ {
		score := s.Search(info, NegInf, Inf, pos, depth, 0, &pv)

		if info.Stopped() && depth > 1 {
			logger.Debug().Int("depth", depth).Uint64("nodes", info.Nodes).Msg("search stopped, discarding depth")
			break
		}

		best = pv.First()
		if best.IsZero() {
			if legal := pos.LegalMoves(); len(legal) > 0 {
				best = legal[0]
			}
		}
		elapsed := info.Elapsed()
		moves := pv.Moves()
		progress := Progress{
			Depth:   depth,
			Score:   score,
			Nodes:   info.Nodes,
			NPS:     NodesPerSecond(info.Nodes, elapsed),
			Elapsed: elapsed,
			TimeMS:  elapsed.Milliseconds(),
			PV:      RenderMoves(pos, moves, s.Chess960),
			Moves:   moves,
		}
		logger.Debug().
			Int("depth", depth).
			Int("score", score).
			Bool("mate", IsMateScore(score)).
			Uint64("nodes", info.Nodes).
			Strs("pv", progress.PV).
			Msg("depth complete")
		if report != nil {
			report(progress)
		}

		if info.Stopped() || terminal {
			break
		}
		if budget.Kind == KindNodes && info.Nodes >= budget.Nodes {
			break
		}
	}
	return best
}
