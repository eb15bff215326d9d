// Package eval holds static evaluators. Scores are centipawns from the
// point of view of the side to move.
package eval

import (
	"fmt"
	"strings"

	"github.com/notnil/chess"

	"chessbot/position"
)

// Evaluator scores a position for the side to move. Implementations must
// be pure and stay well inside the search's mate bounds.
type Evaluator interface {
	Evaluate(pos *position.Position) int
	Name() string
}

var pieceValues = [...]int{
	chess.King:   0,
	chess.Queen:  900,
	chess.Rook:   500,
	chess.Bishop: 330,
	chess.Knight: 320,
	chess.Pawn:   100,
}

// PieceValue returns the material value of a piece type in centipawns.
func PieceValue(pt chess.PieceType) int {
	if pt == chess.NoPieceType || int(pt) >= len(pieceValues) {
		return 0
	}
	return pieceValues[pt]
}

// Material counts piece values only.
type Material struct{}

func (Material) Name() string {
	return "material"
}

func (Material) Evaluate(pos *position.Position) int {
	return relative(pos.Turn(), materialScore(pos.Board()))
}

// materialScore is white minus black.
func materialScore(board *chess.Board) int {
	var score int
	for sq := chess.A1; sq <= chess.H8; sq++ {
		piece := board.Piece(sq)
		if piece == chess.NoPiece {
			continue
		}
		if piece.Color() == chess.White {
			score += PieceValue(piece.Type())
		} else {
			score -= PieceValue(piece.Type())
		}
	}
	return score
}

func relative(turn chess.Color, whiteScore int) int {
	if turn == chess.Black {
		return -whiteScore
	}
	return whiteScore
}

// Names lists the evaluators ByName understands.
func Names() []string {
	return []string{Material{}.Name(), Positional{}.Name()}
}

// ByName resolves an evaluator from its configuration name.
func ByName(name string) (Evaluator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "material":
		return Material{}, nil
	case "positional":
		return Positional{}, nil
	}
	return nil, fmt.Errorf("unknown evaluator %q (want one of %s)", name, strings.Join(Names(), ", "))
}
