package bots

import (
	"github.com/notnil/chess"
)

// ChessBot picks a move for the side to move in game. It returns nil when
// the game has no legal moves.
type ChessBot interface {
	BestMove(game *chess.Game) *chess.Move
	Name() string
}

// All returns the bots offered by the board window, strongest first.
func All(search *SearchBot) []ChessBot {
	return []ChessBot{search, NewFirstMoveBot(), NewRandomBot(1)}
}

// findMove returns the move of game's legal moves with the same squares
// and promotion as uci.
func findMove(game *chess.Game, uci string) *chess.Move {
	for _, m := range game.ValidMoves() {
		if m.String() == uci {
			return m
		}
	}
	return nil
}
