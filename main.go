package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"chessbot/config"
	"chessbot/position"
	"chessbot/search"
	"chessbot/server"
	"chessbot/uci"
)

const usage = `usage: chessbot [-config file] [command]

commands:
  uci                    speak UCI on stdin/stdout (default)
  serve                  run the HTTP and websocket analysis server
  bench [depth]          search the bench positions to a fixed depth
  perft <depth> [fen]    count leaf nodes of the move tree
`

func main() {
	configPath := flag.String("config", "", "path to the YAML config file (default $"+config.EnvPath+")")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load(config.Path(*configPath))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	setupLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, flag.Args()); err != nil {
		log.Error().Err(err).Msg("chessbot")
		os.Exit(1)
	}
}

// setupLogging points the global logger at stderr; stdout belongs to UCI.
func setupLogging(cfg config.Config) {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	if cfg.Log.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.StampMilli})
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	lvl, err := cfg.LogLevel()
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

func newSearcher(cfg config.Config) *search.Searcher {
	s := search.New(cfg.Evaluator())
	s.Chess960 = cfg.Search.Chess960
	return s
}

func run(ctx context.Context, cfg config.Config, args []string) error {
	cmd := "uci"
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "uci":
		session := uci.NewSession(os.Stdout, uci.Options{
			Name:      cfg.Engine.Name,
			Author:    cfg.Engine.Author,
			Evaluator: cfg.Evaluator(),
			Chess960:  cfg.Search.Chess960,
		})
		return session.Run(ctx, os.Stdin)

	case "serve":
		return server.New(newSearcher(cfg)).ListenAndServe(ctx, cfg.Server.Addr)

	case "bench":
		depth := defaultBenchDepth
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 {
				return fmt.Errorf("bench depth %q: want a positive integer", args[0])
			}
			depth = n
		}
		return bench(ctx, newSearcher(cfg), depth)

	case "perft":
		if len(args) == 0 {
			return fmt.Errorf("perft needs a depth")
		}
		depth, err := strconv.Atoi(args[0])
		if err != nil || depth < 1 {
			return fmt.Errorf("perft depth %q: want a positive integer", args[0])
		}
		pos := position.Start()
		if len(args) > 1 {
			pos, err = position.FromFEN(strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
		}
		start := time.Now()
		nodes := position.Perft(pos, depth)
		elapsed := time.Since(start)
		fmt.Printf("nodes %d time %d nps %d\n", nodes, elapsed.Milliseconds(), search.NodesPerSecond(nodes, elapsed))
		return nil
	}

	flag.Usage()
	return fmt.Errorf("unknown command %q", cmd)
}
