package search

import (
	"fmt"
	"time"

	"github.com/notnil/chess"
)

// TimeFraction is the share of the remaining clock spent on one move.
const TimeFraction = 10

// Allowance returns the thinking time for a clock budget. It panics for
// any other kind of budget.
func Allowance(b Budget, turn chess.Color) time.Duration {
	if b.Kind != KindTime {
		panic(fmt.Sprintf("search: allowance requested for %v budget", b.Kind))
	}
	if turn == chess.White {
		return b.WTime / TimeFraction
	}
	return b.BTime / TimeFraction
}

// Expired reports whether allowance has elapsed since start.
func Expired(start time.Time, allowance time.Duration) bool {
	return time.Since(start) >= allowance
}
