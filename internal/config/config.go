package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/openmohaa/hiscores-dash/internal/models"
)

type Config struct {
	// Server
	Port int
	Env  string

	// CORS
	AllowedOrigins []string

	// Upstream
	HiscoresURL  string
	IconBaseURL  string
	FetchTimeout time.Duration

	// Players
	DefaultPlayer string
	Players       []string
	GroupPlayers  []models.GroupMember

	// Dashboard behavior
	CycleInterval time.Duration
	KillLadder    string
	PinPolicy     string

	// Background refresh pool
	PollInterval time.Duration
	PollWorkers  int
	PollQueue    int

	// Snapshot cache. Redis is used when RedisURL is set.
	CacheTTL  time.Duration
	CacheSize int
	RedisURL  string
}

const defaultGroup = "IronBengal:tl,Kobenhamner:tr,Z o i n k z:bl,PacmanPier:br,BenjiFresh91:c"

// Load loads configuration from environment variables, after merging in a
// .env file from the working directory when one exists.
// It returns an error if a value is present but unusable.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port: getEnvInt("PORT", 8080),
		Env:  getEnv("ENV", "development"),

		HiscoresURL:  getEnv("HISCORES_URL", "https://osrs-highscore-proxy.bensvatos.workers.dev/"),
		IconBaseURL:  getEnv("ICON_BASE_URL", ""),
		FetchTimeout: getEnvDuration("FETCH_TIMEOUT", 10*time.Second),

		DefaultPlayer: getEnv("DEFAULT_PLAYER", "BenjiFresh91"),

		CycleInterval: getEnvDuration("CYCLE_INTERVAL", 6*time.Second),
		KillLadder:    getEnv("KILL_LADDER", "standard"),
		PinPolicy:     getEnv("PIN_POLICY", "sticky"),

		PollInterval: getEnvDuration("POLL_INTERVAL", 2*time.Minute),
		PollWorkers:  getEnvInt("POLL_WORKERS", 4),
		PollQueue:    getEnvInt("POLL_QUEUE_SIZE", 256),

		CacheTTL:  getEnvDuration("CACHE_TTL", 30*time.Second),
		CacheSize: getEnvInt("CACHE_SIZE", 512),
		RedisURL:  getEnv("REDIS_URL", ""),
	}

	cfg.AllowedOrigins = splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:5173"))
	cfg.Players = splitList(getEnv("PLAYERS", cfg.DefaultPlayer))

	var err error
	if cfg.GroupPlayers, err = ParseRoster(getEnv("GROUP_PLAYERS", defaultGroup)); err != nil {
		return nil, err
	}
	if cfg.CycleInterval <= 0 {
		return nil, fmt.Errorf("CYCLE_INTERVAL must be positive, got %s", cfg.CycleInterval)
	}

	return cfg, nil
}

// ParseRoster parses a comma separated group roster. Each entry is a player
// name with an optional ":slot" suffix; entries without one take the next
// free slot in tl, tr, bl, br, c order.
func ParseRoster(s string) ([]models.GroupMember, error) {
	order := []models.GroupSlot{
		models.SlotTopLeft,
		models.SlotTopRight,
		models.SlotBottomLeft,
		models.SlotBottomRight,
		models.SlotCenter,
	}
	used := make(map[models.GroupSlot]bool)

	var members []models.GroupMember
	for _, entry := range splitList(s) {
		name, slot, hasSlot := strings.Cut(entry, ":")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("group roster entry %q has no name", entry)
		}
		if !hasSlot {
			members = append(members, models.GroupMember{Name: name})
			continue
		}

		gs := models.GroupSlot(strings.ToLower(strings.TrimSpace(slot)))
		valid := false
		for _, o := range order {
			valid = valid || o == gs
		}
		if !valid {
			return nil, fmt.Errorf("group roster entry %q: unknown slot %q", entry, slot)
		}
		if used[gs] {
			return nil, fmt.Errorf("group roster: slot %q used twice", gs)
		}
		used[gs] = true
		members = append(members, models.GroupMember{Name: name, Slot: gs})
	}

	if len(members) > len(order) {
		return nil, fmt.Errorf("group roster has %d members, at most %d fit", len(members), len(order))
	}

	free := make([]models.GroupSlot, 0, len(order))
	for _, o := range order {
		if !used[o] {
			free = append(free, o)
		}
	}
	for i := range members {
		if members[i].Slot == "" {
			members[i].Slot = free[0]
			free = free[1:]
		}
	}
	return members, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
