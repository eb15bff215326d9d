package eval

import (
	"github.com/notnil/chess"

	"chessbot/position"
)

// Weights of the positional terms, in centipawns per unit.
const (
	DoubledPawnPenalty  = 30
	IsolatedPawnPenalty = 50
	KingShelterBonus    = 10
	KingDangerPenalty   = 15
	CenterBonus         = 20
	AdvancedPieceBonus  = 10
	MobilityWeight      = 2
)

var center = [...]chess.Square{chess.D4, chess.E4, chess.D5, chess.E5}

// Positional adds pawn structure, king safety, centre occupation and
// piece activity on top of material, plus mobility for the side to move.
type Positional struct{}

func (Positional) Name() string {
	return "positional"
}

func (Positional) Evaluate(pos *position.Position) int {
	board := pos.Board()

	white := materialScore(board) +
		pawnStructure(board) +
		kingSafety(board) +
		centerControl(board) +
		pieceActivity(board)

	return relative(pos.Turn(), white) + MobilityWeight*len(pos.Chess().ValidMoves())
}

func pawnStructure(board *chess.Board) int {
	var whitePawns, blackPawns [8]int
	for sq := chess.A1; sq <= chess.H8; sq++ {
		switch board.Piece(sq) {
		case chess.WhitePawn:
			whitePawns[sq.File()]++
		case chess.BlackPawn:
			blackPawns[sq.File()]++
		}
	}
	return filePenalty(blackPawns) - filePenalty(whitePawns)
}

func filePenalty(pawns [8]int) int {
	var penalty int
	for file, count := range pawns {
		if count == 0 {
			continue
		}
		if count > 1 {
			penalty += DoubledPawnPenalty * (count - 1)
		}
		left := file > 0 && pawns[file-1] > 0
		right := file < 7 && pawns[file+1] > 0
		if !left && !right {
			penalty += IsolatedPawnPenalty
		}
	}
	return penalty
}

func kingSafety(board *chess.Board) int {
	var score int
	for sq := chess.A1; sq <= chess.H8; sq++ {
		switch board.Piece(sq) {
		case chess.WhiteKing:
			score += kingProtection(sq, chess.White, board)
		case chess.BlackKing:
			score -= kingProtection(sq, chess.Black, board)
		}
	}
	return score
}

// kingProtection weighs friendly against enemy pieces on the squares
// around the king.
func kingProtection(kingSq chess.Square, color chess.Color, board *chess.Board) int {
	var score int
	kingFile := int(kingSq.File())
	kingRank := int(kingSq.Rank())

	for x := -1; x <= 1; x++ {
		for y := -1; y <= 1; y++ {
			if x == 0 && y == 0 {
				continue
			}
			file, rank := kingFile+x, kingRank+y
			if file < 0 || file > 7 || rank < 0 || rank > 7 {
				continue
			}
			piece := board.Piece(chess.NewSquare(chess.File(file), chess.Rank(rank)))
			if piece == chess.NoPiece {
				continue
			}
			if piece.Color() == color {
				score += KingShelterBonus
			} else {
				score -= KingDangerPenalty
			}
		}
	}
	return score
}

func centerControl(board *chess.Board) int {
	var score int
	for _, sq := range center {
		piece := board.Piece(sq)
		if piece == chess.NoPiece {
			continue
		}
		if piece.Color() == chess.White {
			score += CenterBonus
		} else {
			score -= CenterBonus
		}
	}
	return score
}

// pieceActivity rewards non-king pieces standing in the opponent's half.
func pieceActivity(board *chess.Board) int {
	var score int
	for sq := chess.A1; sq <= chess.H8; sq++ {
		piece := board.Piece(sq)
		if piece == chess.NoPiece || piece.Type() == chess.King || piece.Type() == chess.Pawn {
			continue
		}
		switch {
		case piece.Color() == chess.White && sq.Rank() >= chess.Rank5:
			score += AdvancedPieceBonus
		case piece.Color() == chess.Black && sq.Rank() <= chess.Rank4:
			score -= AdvancedPieceBonus
		}
	}
	return score
}
