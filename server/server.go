// Package server exposes the searcher over HTTP and websockets.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"chessbot/position"
	"chessbot/search"
	"chessbot/uci"
)

var errBusy = errors.New("a search is already running")

// SearchRequest describes a position and a budget. Budget fields follow
// the go command of UCI and the same combinations are accepted. Times are
// in milliseconds.
type SearchRequest struct {
	FEN       string   `json:"fen,omitempty"`
	Moves     []string `json:"moves,omitempty"`
	Depth     *int64   `json:"depth,omitempty"`
	Movetime  *int64   `json:"movetime,omitempty"`
	Nodes     *int64   `json:"nodes,omitempty"`
	WTime     *int64   `json:"wtime,omitempty"`
	BTime     *int64   `json:"btime,omitempty"`
	WInc      *int64   `json:"winc,omitempty"`
	BInc      *int64   `json:"binc,omitempty"`
	MovesToGo *int64   `json:"movestogo,omitempty"`
	Infinite  bool     `json:"infinite,omitempty"`
}

// Position returns the requested position. Unlike the UCI position
// command, an illegal move is an error.
func (r SearchRequest) Position() (*position.Position, error) {
	pos := position.Start()
	if r.FEN != "" {
		p, err := position.FromFEN(r.FEN)
		if err != nil {
			return nil, err
		}
		pos = p
	}
	return pos.Apply(r.Moves...)
}

func (r SearchRequest) Budget() (search.Budget, error) {
	var args []string
	add := func(key string, v *int64) {
		if v != nil {
			args = append(args, key, strconv.FormatInt(*v, 10))
		}
	}
	add("wtime", r.WTime)
	add("btime", r.BTime)
	add("winc", r.WInc)
	add("binc", r.BInc)
	add("movestogo", r.MovesToGo)
	add("depth", r.Depth)
	add("nodes", r.Nodes)
	add("movetime", r.Movetime)
	if r.Infinite {
		args = append(args, "infinite", "")
	}
	return uci.ParseGo(args)
}

// SearchResponse is the outcome of a search. Lines holds one entry per
// completed depth.
type SearchResponse struct {
	BestMove string            `json:"bestmove"`
	Depth    int               `json:"depth"`
	Score    int               `json:"score"`
	Nodes    uint64            `json:"nodes"`
	PV       []string          `json:"pv"`
	Lines    []search.Progress `json:"lines,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type Server struct {
	searcher *search.Searcher
	logger   zerolog.Logger

	// one search at a time
	busy sync.Mutex
}

func New(searcher *search.Searcher) *Server {
	return &Server{
		searcher: searcher,
		logger:   log.With().Str("component", "server").Logger(),
	}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/api/ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	r.Post("/api/search", s.handleSearch)
	r.Get("/ws/search", s.serveSearchWS)
	return r
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	g, ctx := errgroup.WithContext(ctx)
	srv := &http.Server{
		Addr:        addr,
		Handler:     s.Handler(),
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	g.Go(func() error {
		s.logger.Info().Str("addr", addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error().Err(err).Msg("graceful shutdown failed")
			return srv.Close()
		}
		s.logger.Info().Msg("server stopped")
		return nil
	})
	return g.Wait()
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("decode request: %v", err)})
		return
	}
	if req.Infinite {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "infinite searches need /ws/search"})
		return
	}
	pos, budget, err := req.parse()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	resp, err := s.search(r.Context(), pos, budget, nil)
	if errors.Is(err, errBusy) {
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (r SearchRequest) parse() (*position.Position, search.Budget, error) {
	pos, err := r.Position()
	if err != nil {
		return nil, search.Budget{}, err
	}
	budget, err := r.Budget()
	if err != nil {
		return nil, search.Budget{}, err
	}
	return pos, budget, nil
}

// search runs one search, refusing to start while another is running.
func (s *Server) search(ctx context.Context, pos *position.Position, budget search.Budget, report func(search.Progress)) (SearchResponse, error) {
	if !s.busy.TryLock() {
		return SearchResponse{}, errBusy
	}
	defer s.busy.Unlock()

	var resp SearchResponse
	best := s.searcher.Run(ctx, pos, budget, func(p search.Progress) {
		resp.Lines = append(resp.Lines, p)
		if report != nil {
			report(p)
		}
	})
	resp.BestMove = pos.FormatMove(best, s.searcher.Chess960)
	if n := len(resp.Lines); n > 0 {
		last := resp.Lines[n-1]
		resp.Depth, resp.Score, resp.Nodes, resp.PV = last.Depth, last.Score, last.Nodes, last.PV
	}
	s.logger.Info().
		Str("fen", pos.FEN()).
		Str("budget", budget.String()).
		Str("bestmove", resp.BestMove).
		Int("depth", resp.Depth).
		Msg("search finished")
	return resp, nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.logger.Debug().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("took", time.Since(start)).
				Msg("request")
		}()
		next.ServeHTTP(ww, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
