package position

// Perft counts the leaf nodes of the legal move tree to the given depth.
// It involves neither search nor evaluation and exists to validate move
// generation against published counts.
func Perft(p *Position, depth int) uint64 {
	if depth <= 0 {
		return 1
	}
	moves := p.LegalMoves()
	if depth == 1 {
		return uint64(len(moves))
	}

	var nodes uint64
	for _, m := range moves {
		nodes += Perft(p.Play(m), depth-1)
	}
	return nodes
}

// DivideEntry is the perft count below one root move.
type DivideEntry struct {
	Move  Move
	Nodes uint64
}

// Divide splits a perft count by root move, in generator order.
func Divide(p *Position, depth int) []DivideEntry {
	if depth <= 0 {
		return nil
	}
	moves := p.LegalMoves()
	entries := make([]DivideEntry, 0, len(moves))
	for _, m := range moves {
		entries = append(entries, DivideEntry{Move: m, Nodes: Perft(p.Play(m), depth-1)})
	}
	return entries
}
