package search

import (
	"strings"

	"github.com/samber/lo"

	"chessbot/position"
)

// PVTable holds the best line found below one node.
type PVTable struct {
	moves  [MaxPly]position.Move
	length int
}

// Store makes m followed by child's line the new best line.
func (pv *PVTable) Store(m position.Move, child *PVTable) {
	pv.moves[0] = m
	n := copy(pv.moves[1:], child.moves[:child.length])
	pv.length = n + 1
}

func (pv *PVTable) Len() int {
	return pv.length
}

func (pv *PVTable) Clear() {
	pv.length = 0
}

// Moves returns a copy of the line.
func (pv *PVTable) Moves() []position.Move {
	out := make([]position.Move, pv.length)
	copy(out, pv.moves[:pv.length])
	return out
}

// First returns the head of the line, or the null move when it is empty.
func (pv *PVTable) First() position.Move {
	if pv.length == 0 {
		return position.Move{}
	}
	return pv.moves[0]
}

// Render prints the line as played from pos, each move in the castling
// notation chosen by chess960.
func (pv *PVTable) Render(pos *position.Position, chess960 bool) string {
	return strings.Join(RenderMoves(pos, pv.Moves(), chess960), " ")
}

// RenderMoves formats a line move by move, replaying it on copies of pos.
func RenderMoves(pos *position.Position, moves []position.Move, chess960 bool) []string {
	cur := pos
	return lo.Map(moves, func(m position.Move, _ int) string {
		s := cur.FormatMove(m, chess960)
		cur = cur.Play(m)
		return s
	})
}
