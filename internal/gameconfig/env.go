package gameconfig

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Env holds deployment settings read from the process environment.
type Env struct {
	APIURL       string `env:"GAME_API_URL" envDefault:"http://localhost:3000"`
	StaticDir    string `env:"GAME_STATIC_DIR" envDefault:"public"`
	TuningPath   string `env:"GAME_CONFIG" envDefault:"config/game.yaml"`
	DBPath       string `env:"GAME_DB_PATH" envDefault:"data/times.db"`
	ObserverAddr string `env:"GAME_OBSERVER_ADDR"`
	LogFile      string `env:"GAME_LOG_FILE" envDefault:"logs/game.txt"`
	ListenAddr   string `env:"GAME_LISTEN_ADDR" envDefault:":3000"`
}

// LoadEnv loads dotenvPath (if it exists) into the environment without overriding
// variables that are already set, then parses Env.
func LoadEnv(dotenvPath string) (Env, error) {
	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Env{}, fmt.Errorf("gameconfig: %s: %w", dotenvPath, err)
		}
	}
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("gameconfig: %w", err)
	}
	return e, nil
}
