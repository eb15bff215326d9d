package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"chessbot/position"
	"chessbot/search"
)

const defaultBenchDepth = 4

var benchPositions = []string{
	position.StartFEN,
	position.Kiwipete,
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
	"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
	"4r2k/1p3rbp/2p1N1p1/p3n3/P2NB1nq/1P6/4R1P1/B1Q2RK1 b - - 4 32",
}

// bench searches every bench position to depth and prints the total node
// count, which changes only when the search or move generation does.
func bench(ctx context.Context, searcher *search.Searcher, depth int) error {
	var total uint64
	start := time.Now()

	for _, fen := range benchPositions {
		pos, err := position.FromFEN(fen)
		if err != nil {
			return err
		}
		var nodes uint64
		best := searcher.Run(ctx, pos, search.Depth(depth), func(p search.Progress) {
			nodes = p.Nodes
		})
		total += nodes
		fmt.Printf("%-75s %s %d\n", fen, best, nodes)
		log.Debug().Str("fen", fen).Uint64("nodes", nodes).Msg("bench position")

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	elapsed := time.Since(start)
	fmt.Printf("nodes %d time %d nps %d\n", total, elapsed.Milliseconds(), search.NodesPerSecond(total, elapsed))
	return nil
}
