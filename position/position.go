// Package position adapts github.com/notnil/chess to the small rules-engine
// surface the searcher needs: legal moves, copy-and-apply, terminal status
// and move notation.
package position

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/notnil/chess"
)

const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// Kiwipete is the usual move generator torture position.
const Kiwipete = "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"

// FiftyMoveLimit is the half-move clock value at which the game is drawn.
const FiftyMoveLimit = 100

var ErrBadFEN = errors.New("invalid fen")

// Status is the terminal state of a position for the side to move.
type Status int

const (
	Ongoing Status = iota
	Checkmated
	Drawn
)

func (s Status) String() string {
	switch s {
	case Ongoing:
		return "ongoing"
	case Checkmated:
		return "checkmated"
	case Drawn:
		return "drawn"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Position is an immutable game state. Play never touches the receiver,
// so a parent can hand the same position to every sibling branch.
type Position struct {
	pos      *chess.Position
	halfMove int
}

// FromFEN decodes a FEN string. Missing move clocks default to "0 1".
func FromFEN(fen string) (*Position, error) {
	fields := strings.Fields(fen)
	switch len(fields) {
	case 4:
		fields = append(fields, "0", "1")
	case 5:
		fields = append(fields, "1")
	case 6:
	default:
		return nil, fmt.Errorf("%w: %q has %d fields", ErrBadFEN, fen, len(fields))
	}

	halfMove, err := strconv.Atoi(fields[4])
	if err != nil || halfMove < 0 {
		return nil, fmt.Errorf("%w: half-move clock %q", ErrBadFEN, fields[4])
	}

	opt, err := chess.FEN(strings.Join(fields, " "))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadFEN, err)
	}

	return &Position{
		pos:      chess.NewGame(opt).Position(),
		halfMove: halfMove,
	}, nil
}

// Start returns the standard initial position.
func Start() *Position {
	p, err := FromFEN(StartFEN)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Position) FEN() string {
	return p.pos.String()
}

func (p *Position) String() string {
	return p.FEN()
}

func (p *Position) Turn() chess.Color {
	return p.pos.Turn()
}

func (p *Position) Board() *chess.Board {
	return p.pos.Board()
}

func (p *Position) HalfMoveClock() int {
	return p.halfMove
}

// Chess exposes the wrapped position for callers that already speak notnil.
func (p *Position) Chess() *chess.Position {
	return p.pos
}

// LegalMoves returns every legal move in the generator's deterministic order.
func (p *Position) LegalMoves() []Move {
	valid := p.pos.ValidMoves()
	moves := make([]Move, len(valid))
	for i, mv := range valid {
		moves[i] = Move{mv: mv}
	}
	return moves
}

// Play returns the position after m. m must come from p.LegalMoves.
func (p *Position) Play(m Move) *Position {
	next := &Position{
		pos:      p.pos.Update(m.mv),
		halfMove: p.halfMove + 1,
	}
	if m.resetsClock(p.pos.Board()) {
		next.halfMove = 0
	}
	return next
}

// Status reports checkmate, draw (stalemate or fifty-move rule) or neither.
// A mate delivered on the hundredth half-move is still a mate.
func (p *Position) Status() Status {
	switch p.pos.Status() {
	case chess.Checkmate:
		return Checkmated
	case chess.Stalemate:
		return Drawn
	}
	if p.halfMove >= FiftyMoveLimit {
		return Drawn
	}
	return Ongoing
}

// Apply parses and plays a sequence of moves. It stops at the first move
// that does not parse and returns the position reached so far along with
// the error.
func (p *Position) Apply(moves ...string) (*Position, error) {
	cur := p
	for _, s := range moves {
		m, err := cur.ParseMove(s)
		if err != nil {
			return cur, err
		}
		cur = cur.Play(m)
	}
	return cur, nil
}
