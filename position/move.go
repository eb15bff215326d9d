package position

import (
	"errors"
	"fmt"
	"strings"

	"github.com/notnil/chess"
)

var ErrIllegalMove = errors.New("illegal move")

// Move is a legal move produced by Position.LegalMoves. The zero Move is
// the null move and prints as "0000".
type Move struct {
	mv *chess.Move
}

func (m Move) IsZero() bool {
	return m.mv == nil
}

// String is the UCI long algebraic form with castling as king-to-target.
func (m Move) String() string {
	if m.mv == nil {
		return "0000"
	}
	return m.mv.String()
}

func (m Move) From() chess.Square {
	return m.mv.S1()
}

func (m Move) To() chess.Square {
	return m.mv.S2()
}

func (m Move) Promo() chess.PieceType {
	return m.mv.Promo()
}

// Chess exposes the wrapped move.
func (m Move) Chess() *chess.Move {
	return m.mv
}

// Equal compares moves by squares and promotion piece.
func (m Move) Equal(o Move) bool {
	if m.mv == nil || o.mv == nil {
		return m.mv == o.mv
	}
	return m.mv.S1() == o.mv.S1() && m.mv.S2() == o.mv.S2() && m.mv.Promo() == o.mv.Promo()
}

func (m Move) resetsClock(b *chess.Board) bool {
	return m.mv.HasTag(chess.Capture) ||
		m.mv.HasTag(chess.EnPassant) ||
		b.Piece(m.mv.S1()).Type() == chess.Pawn
}

// castling maps between king-to-target and king-captures-rook notation
// for the standard starting squares.
var castling = map[string]string{
	"e1g1": "e1h1",
	"e1c1": "e1a1",
	"e8g8": "e8h8",
	"e8c8": "e8a8",
}

var castlingReverse = map[string]string{
	"e1h1": "e1g1",
	"e1a1": "e1c1",
	"e8h8": "e8g8",
	"e8a8": "e8c8",
}

// ParseMove decodes a UCI move and matches it against the legal moves.
// Castling is accepted both as king-to-target (e1g1) and as
// king-captures-rook (e1h1).
func (p *Position) ParseMove(s string) (Move, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 4 && len(s) != 5 {
		return Move{}, fmt.Errorf("%w: %q", ErrIllegalMove, s)
	}

	if target, ok := castlingReverse[s]; ok && p.isCastleByRookCapture(s) {
		s = target
	}

	for _, m := range p.LegalMoves() {
		if m.String() == s {
			return m, nil
		}
	}
	return Move{}, fmt.Errorf("%w: %q in %s", ErrIllegalMove, s, p.FEN())
}

func (p *Position) isCastleByRookCapture(s string) bool {
	b := p.pos.Board()
	from := b.Piece(squareOf(s[0:2]))
	to := b.Piece(squareOf(s[2:4]))
	return from.Type() == chess.King &&
		to.Type() == chess.Rook &&
		from.Color() == to.Color() &&
		from.Color() == p.pos.Turn()
}

// FormatMove prints m as played from p. With chess960 set, castling is
// printed as the king capturing its own rook.
func (p *Position) FormatMove(m Move, chess960 bool) string {
	s := m.String()
	if !chess960 || m.IsZero() {
		return s
	}
	if p.pos.Board().Piece(m.From()).Type() != chess.King {
		return s
	}
	if rookSq, ok := castling[s]; ok {
		return rookSq
	}
	return s
}

func squareOf(name string) chess.Square {
	file := chess.File(name[0] - 'a')
	rank := chess.Rank(name[1] - '1')
	if file < chess.FileA || file > chess.FileH || rank < chess.Rank1 || rank > chess.Rank8 {
		return chess.NoSquare
	}
	return chess.NewSquare(file, rank)
}
