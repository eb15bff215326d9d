package bots

import (
	"context"
	"fmt"

	"github.com/notnil/chess"
	"github.com/rs/zerolog/log"

	"chessbot/position"
	"chessbot/search"
)

// SearchBot plays the move found by the alpha-beta searcher.
type SearchBot struct {
	Searcher *search.Searcher
	Budget   search.Budget
}

func NewSearchBot(searcher *search.Searcher, budget search.Budget) *SearchBot {
	return &SearchBot{Searcher: searcher, Budget: budget}
}

func (b *SearchBot) Name() string {
	return fmt.Sprintf("Search Bot (%s, %s)", b.Budget, b.Searcher.Eval.Name())
}

func (b *SearchBot) BestMove(game *chess.Game) *chess.Move {
	if game == nil || game.Outcome() != chess.NoOutcome {
		return nil
	}

	pos, err := position.FromFEN(game.Position().String())
	if err != nil {
		log.Error().Err(err).Msg("bot cannot read game position")
		return nil
	}

	best := b.Searcher.Run(context.Background(), pos, b.Budget, func(p search.Progress) {
		log.Debug().Int("depth", p.Depth).Int("score", p.Score).Strs("pv", p.PV).Msg("bot thinking")
	})
	if best.IsZero() {
		return nil
	}
	return findMove(game, best.String())
}
