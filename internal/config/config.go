package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"seabattle/internal/game"
	"seabattle/internal/session"

	log "github.com/sirupsen/logrus"
)

type Board struct {
	Size          int
	Fleet         string
	AllowTouching bool
}

type Bot struct {
	Name     string
	Policy   string
	Interval time.Duration
}

type Config struct {
	HTTPAddr      string
	DBPath        string
	AllowedOrigin string
	SessionSecret string
	LogLevel      string
	LogJSON       bool

	Board Board
	Bot   Bot
	Rules session.Rules
}

func getenvString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Warnf("ignoring %s=%q, not an integer", key, v)
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		log.Warnf("ignoring %s=%q, not a boolean", key, v)
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
		log.Warnf("ignoring %s=%q, not a positive duration", key, v)
	}
	return def
}

func Load() Config {
	return Config{
		HTTPAddr:      getenvString("HTTP_ADDR", ":8080"),
		DBPath:        os.Getenv("DB_PATH"),
		AllowedOrigin: getenvString("ALLOWED_ORIGIN", "*"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		LogLevel:      getenvString("LOG_LEVEL", "info"),
		LogJSON:       getenvBool("LOG_JSON", false),
		Board: Board{
			Size:          getenvInt("BOARD_SIZE", 10),
			Fleet:         getenvString("FLEET", "4:1,3:2,2:3,1:4"),
			AllowTouching: getenvBool("SHIPS_MAY_TOUCH", false),
		},
		Bot: Bot{
			Name:     getenvString("BOT_NAME", "Bot"),
			Policy:   strings.ToLower(getenvString("BOT_POLICY", "hunt")),
			Interval: getenvDuration("BOT_INTERVAL", 500*time.Millisecond),
		},
		Rules: session.Rules{
			BaseAward:      getenvInt("BASE_AWARD", 100),
			ForfeitPercent: getenvInt("FORFEIT_PERCENT", 10),
		},
	}
}

// Fleet turns the board settings into a fleet policy.
func (c Config) Fleet() (game.FleetPolicy, error) {
	if c.Board.Size <= 0 {
		return game.FleetPolicy{}, fmt.Errorf("BOARD_SIZE must be positive, got %d", c.Board.Size)
	}
	ships, err := game.ParseFleet(c.Board.Fleet)
	if err != nil {
		return game.FleetPolicy{}, err
	}
	for length := range ships {
		if length > c.Board.Size {
			return game.FleetPolicy{}, fmt.Errorf("ship of length %d does not fit a board of size %d", length, c.Board.Size)
		}
	}
	return game.FleetPolicy{
		Size:          c.Board.Size,
		Ships:         ships,
		AllowTouching: c.Board.AllowTouching,
	}, nil
}

// SetupLogging applies the level and format to the standard logrus logger.
func (c Config) SetupLogging() {
	if c.LogJSON {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		log.Warnf("unknown log level %q, using info", c.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)
}
