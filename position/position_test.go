package position

import (
	"errors"
	"strings"
	"testing"

	"github.com/notnil/chess"
)

// placement drops the move clocks and en passant field, which differ
// between generators for the same game state.
func placement(fen string) string {
	return strings.Join(strings.Fields(fen)[:3], " ")
}

func TestFromFEN(t *testing.T) {
	// arrange
	cases := []struct {
		fen          string
		wantTurn     chess.Color
		wantHalfMove int
		wantErr      bool
	}{
		{fen: StartFEN, wantTurn: chess.White},
		{fen: "7k/6n1/8/8/8/8/1N6/K7 w - - 99 6969", wantTurn: chess.White, wantHalfMove: 99},
		{fen: "8/8/8/8/8/1k6/4r3/K7 w - -", wantTurn: chess.White},
		{fen: "4r2k/1p3rbp/2p1N1p1/p3n3/P2NB1nq/1P6/4R1P1/B1Q2RK1 b - - 4 32", wantTurn: chess.Black, wantHalfMove: 4},
		{fen: "", wantErr: true},
		{fen: "8/8/8 w", wantErr: true},
		{fen: "8/8/8/8/8/1k6/4r3/K7 w - - x 1", wantErr: true},
	}

	for _, c := range cases {
		// act
		p, err := FromFEN(c.fen)

		// assert
		if c.wantErr {
			if !errors.Is(err, ErrBadFEN) {
				t.Errorf("%q: want ErrBadFEN got: %v", c.fen, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: %v", c.fen, err)
		}
		if p.Turn() != c.wantTurn {
			t.Errorf("%q: want turn: %v got: %v", c.fen, c.wantTurn, p.Turn())
		}
		if p.HalfMoveClock() != c.wantHalfMove {
			t.Errorf("%q: want half-move clock: %d got: %d", c.fen, c.wantHalfMove, p.HalfMoveClock())
		}
	}
}

func TestStatus(t *testing.T) {
	// arrange
	cases := []struct {
		name string
		fen  string
		want Status
	}{
		{name: "start", fen: StartFEN, want: Ongoing},
		{name: "back rank mate", fen: "4R1k1/5ppp/8/8/8/8/8/6K1 b - - 0 1", want: Checkmated},
		{name: "stalemate", fen: "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1", want: Drawn},
		{name: "fifty moves", fen: "7k/6n1/8/8/8/8/1N6/K7 w - - 100 6969", want: Drawn},
		{name: "ninety-nine half moves", fen: "7k/6n1/8/8/8/8/1N6/K7 w - - 99 6969", want: Ongoing},
		{name: "mate beats fifty moves", fen: "4R1k1/5ppp/8/8/8/8/8/6K1 b - - 100 80", want: Checkmated},
	}

	for _, c := range cases {
		p, err := FromFEN(c.fen)
		if err != nil {
			t.Fatalf("%s: %v", c.name, err)
		}

		// act
		got := p.Status()

		// assert
		if got != c.want {
			t.Errorf("%s: want: %v got: %v", c.name, c.want, got)
		}
	}
}

func TestPlayDoesNotMutateParent(t *testing.T) {
	p := Start()
	before := p.FEN()

	for _, m := range p.LegalMoves() {
		child := p.Play(m)
		if child.FEN() == before {
			t.Errorf("%v: child equals parent", m)
		}
	}

	if p.FEN() != before {
		t.Errorf("want: %s got: %s", before, p.FEN())
	}
}

func TestPlayHalfMoveClock(t *testing.T) {
	// arrange
	p, err := FromFEN("7k/6n1/8/8/8/8/1N6/K7 w - - 99 6969")
	if err != nil {
		t.Fatal(err)
	}

	// act
	next, err := p.Apply("b2d3")

	// assert
	if err != nil {
		t.Fatal(err)
	}
	if next.HalfMoveClock() != 100 {
		t.Errorf("want: 100 got: %d", next.HalfMoveClock())
	}
	if next.Status() != Drawn {
		t.Errorf("want: %v got: %v", Drawn, next.Status())
	}

	pawn, err := Start().Apply("e2e4")
	if err != nil {
		t.Fatal(err)
	}
	if pawn.HalfMoveClock() != 0 {
		t.Errorf("pawn push: want: 0 got: %d", pawn.HalfMoveClock())
	}
}

func TestApplyStopsAtFirstBadMove(t *testing.T) {
	// act
	p, err := Start().Apply("e2e4", "e7e5", "e1e3", "g1f3")

	// assert
	if !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("want ErrIllegalMove got: %v", err)
	}
	want := "rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w"
	if got := placement(p.FEN())[:len(want)]; got != want {
		t.Errorf("want: %s got: %s", want, got)
	}
}

func TestApplyCastlingNotations(t *testing.T) {
	// arrange
	cases := []struct {
		moves string
		want  string
	}{
		{
			moves: "g2g3 g7g6 f1g2 f8g7 g1f3 g8f6 e1g1 e8g8",
			want:  "rnbq1rk1/ppppppbp/5np1/8/8/5NP1/PPPPPPBP/RNBQ1RK1 w -",
		},
		{
			moves: "g2g3 g7g6 f1g2 f8g7 g1f3 g8f6 e1h1 e8h8",
			want:  "rnbq1rk1/ppppppbp/5np1/8/8/5NP1/PPPPPPBP/RNBQ1RK1 w -",
		},
		{
			moves: "e2e4 c7c5 g1f3 d7d6 d2d4 c5d4 f3d4 g8f6 b1c3 g7g6",
			want:  "rnbqkb1r/pp2pp1p/3p1np1/8/3NP3/2N5/PPP2PPP/R1BQKB1R w KQkq",
		},
	}

	for _, c := range cases {
		// act
		p, err := Start().Apply(strings.Fields(c.moves)...)

		// assert
		if err != nil {
			t.Fatalf("%s: %v", c.moves, err)
		}
		if got := placement(p.FEN()); got != c.want {
			t.Errorf("want: %s got: %s", c.want, got)
		}
	}
}

func TestFormatMoveCastling(t *testing.T) {
	p, err := FromFEN("r3k3/7P/8/4N3/5K2/8/8/8 b q - 1 1")
	if err != nil {
		t.Fatal(err)
	}

	m, err := p.ParseMove("e8a8")
	if err != nil {
		t.Fatal(err)
	}

	if got := p.FormatMove(m, false); got != "e8c8" {
		t.Errorf("standard: want: e8c8 got: %s", got)
	}
	if got := p.FormatMove(m, true); got != "e8a8" {
		t.Errorf("chess960: want: e8a8 got: %s", got)
	}

	// a plain king move is never rewritten
	k, err := p.ParseMove("e8d8")
	if err != nil {
		t.Fatal(err)
	}
	if got := p.FormatMove(k, true); got != "e8d8" {
		t.Errorf("want: e8d8 got: %s", got)
	}
}

func TestMoveEqual(t *testing.T) {
	a, err := Start().ParseMove("e2e4")
	if err != nil {
		t.Fatal(err)
	}
	b, err := Start().ParseMove("e2e4")
	if err != nil {
		t.Fatal(err)
	}
	c, err := Start().ParseMove("d2d4")
	if err != nil {
		t.Fatal(err)
	}

	if !a.Equal(b) {
		t.Errorf("%v != %v", a, b)
	}
	if a.Equal(c) {
		t.Errorf("%v == %v", a, c)
	}
	if (Move{}).String() != "0000" {
		t.Errorf("want: 0000 got: %s", Move{})
	}
}
