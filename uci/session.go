// Package uci speaks the Universal Chess Interface over a pair of streams.
package uci

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"chessbot/eval"
	"chessbot/position"
	"chessbot/search"
)

// Options configures a Session.
type Options struct {
	Name      string
	Author    string
	Evaluator eval.Evaluator
	Chess960  bool
}

// Session is one UCI conversation. Commands are handled in order; go
// runs on its own goroutine so stop and isready are answered while it
// thinks.
type Session struct {
	opts     Options
	searcher *search.Searcher
	pos      *position.Position
	logger   zerolog.Logger

	outMu sync.Mutex
	out   io.Writer

	g        *errgroup.Group
	cancel   context.CancelFunc
	infinite bool
}

func NewSession(out io.Writer, opts Options) *Session {
	if opts.Name == "" {
		opts.Name = "chessbot"
	}
	searcher := search.New(opts.Evaluator)
	searcher.Chess960 = opts.Chess960
	return &Session{
		opts:     opts,
		searcher: searcher,
		pos:      position.Start(),
		logger:   log.With().Str("component", "uci").Logger(),
		out:      out,
	}
}

func (s *Session) println(a ...any) {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	fmt.Fprintln(s.out, a...)
}

func (s *Session) printf(format string, a ...any) {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	fmt.Fprintf(s.out, format, a...)
}

// Run reads commands from in until quit or end of input. At end of input
// a running search with a finite budget is allowed to finish.
func (s *Session) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}
		if quit := s.Handle(ctx, scanner.Text()); quit {
			return nil
		}
	}
	if ctx.Err() != nil || s.infinite {
		s.stop()
	}
	s.wait()
	return scanner.Err()
}

// Handle executes one command line and reports whether it was quit.
func (s *Session) Handle(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false
	}
	cmd, args := parts[0], parts[1:]

	switch cmd {
	case "uci":
		s.println("id name", s.opts.Name)
		if s.opts.Author != "" {
			s.println("id author", s.opts.Author)
		}
		s.printf("option name UCI_Chess960 type check default %t\n", s.opts.Chess960)
		s.printf("option name Evaluator type combo default %s", s.searcher.Eval.Name())
		for _, name := range eval.Names() {
			s.printf(" var %s", name)
		}
		s.println()
		s.println("uciok")

	case "isready":
		s.println("readyok")

	case "ucinewgame":
		s.stop()
		s.pos = position.Start()

	case "position":
		s.stop()
		pos, err := ParsePosition(s.pos, args)
		if err != nil {
			s.logger.Debug().Err(err).Str("line", line).Msg("position")
		}
		s.pos = pos

	case "go":
		s.stop()
		budget, err := ParseGo(args)
		if err != nil {
			s.logger.Debug().Err(err).Str("line", line).Msg("go rejected")
			return false
		}
		s.start(ctx, budget)

	case "stop":
		s.stop()

	case "setoption":
		s.stop()
		s.setOption(args)

	case "perft":
		s.stop()
		if depth, ok := parseDepth(args); ok {
			s.perft(depth)
		}

	case "split":
		s.stop()
		if depth, ok := parseDepth(args); ok && depth > 0 {
			s.split(depth)
		}

	case "d":
		s.println(s.pos.FEN())

	case "quit":
		s.stop()
		return true

	default:
		s.logger.Debug().Str("line", line).Msg("unknown command")
	}
	return false
}

func (s *Session) start(ctx context.Context, budget search.Budget) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.infinite = budget.Kind == search.KindInfinite
	s.g = &errgroup.Group{}

	pos := s.pos
	searcher := *s.searcher
	s.logger.Info().Str("budget", budget.String()).Str("fen", pos.FEN()).Msg("search started")

	s.g.Go(func() error {
		defer cancel()
		start := time.Now()
		best := searcher.Run(ctx, pos, budget, func(p search.Progress) {
			s.printf("info depth %d score cp %d nodes %d nps %d time %d pv %s\n",
				p.Depth, p.Score, p.Nodes, p.NPS, p.TimeMS, strings.Join(p.PV, " "))
		})
		s.println("bestmove", pos.FormatMove(best, searcher.Chess960))
		s.logger.Info().Str("bestmove", best.String()).Dur("took", time.Since(start)).Msg("search finished")
		return nil
	})
}

// stop cancels the running search, if any, and waits for its bestmove.
func (s *Session) stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wait()
}

func (s *Session) wait() {
	if s.g == nil {
		return
	}
	_ = s.g.Wait()
	s.g = nil
	s.cancel = nil
	s.infinite = false
}

// setOption handles "setoption name <name> value <value>".
func (s *Session) setOption(args []string) {
	name, value := splitOption(args)
	switch strings.ToLower(name) {
	case "uci_chess960":
		on, err := strconv.ParseBool(value)
		if err != nil {
			s.logger.Debug().Str("value", value).Msg("UCI_Chess960 wants true or false")
			return
		}
		s.opts.Chess960 = on
		s.searcher.Chess960 = on
	case "evaluator":
		e, err := eval.ByName(value)
		if err != nil {
			s.logger.Debug().Err(err).Msg("setoption")
			return
		}
		s.searcher.Eval = e
	default:
		s.logger.Debug().Str("name", name).Msg("unknown option")
	}
}

func splitOption(args []string) (name, value string) {
	var nameParts, valueParts []string
	var cur *[]string
	for _, a := range args {
		switch a {
		case "name":
			cur = &nameParts
		case "value":
			cur = &valueParts
		default:
			if cur != nil {
				*cur = append(*cur, a)
			}
		}
	}
	return strings.Join(nameParts, " "), strings.Join(valueParts, " ")
}

func parseDepth(args []string) (int, bool) {
	if len(args) == 0 {
		return 0, false
	}
	n, err := strconv.ParseUint(args[0], 10, 8)
	if err != nil {
		return 0, false
	}
	return int(n), true
}

func (s *Session) perft(depth int) {
	for i := 1; i <= depth; i++ {
		start := time.Now()
		nodes := position.Perft(s.pos, i)
		elapsed := time.Since(start)
		s.printf("info depth %d nodes %d time %d nps %d\n",
			i, nodes, elapsed.Milliseconds(), search.NodesPerSecond(nodes, elapsed))
		if i == depth {
			s.printf("nodes %d\n", nodes)
		}
	}
}

func (s *Session) split(depth int) {
	var total uint64
	for _, e := range position.Divide(s.pos, depth) {
		total += e.Nodes
		s.printf("%s %d\n", s.pos.FormatMove(e.Move, s.opts.Chess960), e.Nodes)
	}
	s.printf("nodes %d\n", total)
}
