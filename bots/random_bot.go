package bots

import (
	"math/rand"

	"github.com/notnil/chess"
)

// RandomBot plays a uniformly random legal move.
type RandomBot struct {
	rng *rand.Rand
}

func NewRandomBot(seed int64) *RandomBot {
	return &RandomBot{rng: rand.New(rand.NewSource(seed))}
}

func (b *RandomBot) BestMove(game *chess.Game) *chess.Move {
	moves := game.ValidMoves()
	if len(moves) == 0 {
		return nil
	}
	return moves[b.rng.Intn(len(moves))]
}

func (b *RandomBot) Name() string {
	return "Random Bot"
}
