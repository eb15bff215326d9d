package bots

import "github.com/notnil/chess"

// FirstMoveBot always plays the first legal move.
type FirstMoveBot struct{}

func NewFirstMoveBot() *FirstMoveBot {
	return &FirstMoveBot{}
}

func (b *FirstMoveBot) BestMove(game *chess.Game) *chess.Move {
	moves := game.ValidMoves()
	if len(moves) > 0 {
		return moves[0]
	}
	return nil
}

func (b *FirstMoveBot) Name() string {
	return "First Move"
}
