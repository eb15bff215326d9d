package config

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestLoad(t *testing.T) {
	// act
	cfg, err := Load(filepath.Join("testdata", "chessbot.yaml"))

	// assert
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Engine.Name != "chessbot-dev" {
		t.Errorf("want: chessbot-dev got: %s", cfg.Engine.Name)
	}
	// keys missing from the file keep their defaults
	if cfg.Engine.Author != Default().Engine.Author {
		t.Errorf("want: %s got: %s", Default().Engine.Author, cfg.Engine.Author)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("want: :8080 got: %s", cfg.Server.Addr)
	}
	if !cfg.Search.Chess960 {
		t.Errorf("want chess960")
	}
	if cfg.Evaluator().Name() != "positional" {
		t.Errorf("want: positional got: %s", cfg.Evaluator().Name())
	}
	if lvl, _ := cfg.LogLevel(); lvl != zerolog.DebugLevel {
		t.Errorf("want: debug got: %v", lvl)
	}
	if cfg.Board.Depth != 3 || cfg.Board.MovetimeMS != 1000 {
		t.Errorf("want depth 3 and movetime 1000 got: %+v", cfg.Board)
	}
}

func TestLoadMissingFileIsDefault(t *testing.T) {
	for _, path := range []string{"", filepath.Join("testdata", "nope.yaml")} {
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("%q: %v", path, err)
		}
		if cfg != Default() {
			t.Errorf("%q: want defaults got: %+v", path, cfg)
		}
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "bad.yaml"))

	if err == nil {
		t.Fatal("want error")
	}
	for _, want := range []string{"search.evaluator", "log.level"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("want %q in: %v", want, err)
		}
	}
}

func TestPath(t *testing.T) {
	t.Setenv(EnvPath, "/etc/chessbot.yaml")

	if got := Path("local.yaml"); got != "local.yaml" {
		t.Errorf("want: local.yaml got: %s", got)
	}
	if got := Path(""); got != "/etc/chessbot.yaml" {
		t.Errorf("want: /etc/chessbot.yaml got: %s", got)
	}
}
