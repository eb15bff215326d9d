// Package config loads the engine settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"chessbot/eval"
)

// EnvPath names the environment variable consulted when no -config flag
// is given.
const EnvPath = "CHESSBOT_CONFIG"

type Config struct {
	Engine Engine `yaml:"engine"`
	Search Search `yaml:"search"`
	Log    Log    `yaml:"log"`
	Server Server `yaml:"server"`
	Board  Board  `yaml:"board"`
}

type Engine struct {
	Name   string `yaml:"name"`
	Author string `yaml:"author"`
}

type Search struct {
	Evaluator string `yaml:"evaluator"`
	Chess960  bool   `yaml:"chess960"`
}

type Log struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

type Server struct {
	Addr string `yaml:"addr"`
}

// Board configures the bot in the board window. A positive Depth wins over
// MovetimeMS.
type Board struct {
	MovetimeMS int `yaml:"movetime_ms"`
	Depth      int `yaml:"depth"`
}

func Default() Config {
	return Config{
		Engine: Engine{Name: "chessbot", Author: "chessbot authors"},
		Search: Search{Evaluator: "material"},
		Log:    Log{Level: "info"},
		Server: Server{Addr: ":8080"},
		Board:  Board{MovetimeMS: 1000},
	}
}

// Load reads path over the defaults. An empty path, or a file that does not
// exist, yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("'%s': %w", path, err)
	}

	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("'%s': %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("'%s': %w", path, err)
	}
	return cfg, nil
}

// Path picks the config file from the flag value or the environment.
func Path(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv(EnvPath)
}

func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Engine.Name) == "" {
		errs = append(errs, errors.New("engine.name is empty"))
	}
	if _, err := eval.ByName(c.Search.Evaluator); err != nil {
		errs = append(errs, fmt.Errorf("search.evaluator: %w", err))
	}
	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.Board.MovetimeMS < 0 || c.Board.Depth < 0 {
		errs = append(errs, errors.New("board limits must not be negative"))
	}
	if c.Board.MovetimeMS == 0 && c.Board.Depth == 0 {
		errs = append(errs, errors.New("board needs movetime_ms or depth"))
	}
	return errors.Join(errs...)
}

func (c Config) LogLevel() (zerolog.Level, error) {
	if c.Log.Level == "" {
		return zerolog.InfoLevel, nil
	}
	return zerolog.ParseLevel(strings.ToLower(c.Log.Level))
}

func (c Config) Evaluator() eval.Evaluator {
	e, err := eval.ByName(c.Search.Evaluator)
	if err != nil {
		return eval.Material{}
	}
	return e
}
