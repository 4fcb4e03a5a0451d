package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the process configuration, read from the environment (and an
// optional .env file).
type Config struct {
	Database  DatabaseConfig
	Log       LogConfig
	Learning  LearningConfig
	Scheduler SchedulerConfig
}

type DatabaseConfig struct {
	Type string // "sqlite" or "postgres"
	DSN  string
}

type LogConfig struct {
	Mode string // "dev" or "prod"
}

type LearningConfig struct {
	Premium        bool
	RNGSeed        int64 // 0 = seeded from the wall clock
	EligibleLevels []int
	SessionGoal    int
	FreeJitter     int
	MaxInterval    int // days; 0 = unbounded
}

type SchedulerConfig struct {
	SessionTimeout   time.Duration // 0 disables the abandoned-session sweep
	SweepInterval    time.Duration
	SnapshotInterval time.Duration
}

// Load reads the configuration. Malformed values are reported, missing ones
// fall back to defaults.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dbType := strings.ToLower(getEnv("DB_TYPE", "sqlite"))
	if dbType != "sqlite" && dbType != "postgres" {
		return nil, fmt.Errorf("unsupported DB_TYPE %q", dbType)
	}

	premium, err := strconv.ParseBool(getEnv("PREMIUM", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid PREMIUM: %w", err)
	}
	seed, err := strconv.ParseInt(getEnv("RNG_SEED", "0"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid RNG_SEED: %w", err)
	}
	levels, err := ParseLevels(getEnv("ELIGIBLE_LEVELS", "1,2,3,4,5,6"))
	if err != nil {
		return nil, fmt.Errorf("invalid ELIGIBLE_LEVELS: %w", err)
	}
	goal, err := strconv.Atoi(getEnv("SESSION_GOAL", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_GOAL: %w", err)
	}
	jitter, err := strconv.Atoi(getEnv("FREE_JITTER", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid FREE_JITTER: %w", err)
	}

	maxInterval, err := strconv.Atoi(getEnv("MAX_INTERVAL", "36500"))
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_INTERVAL: %w", err)
	}
	if maxInterval < 0 {
		return nil, fmt.Errorf("invalid MAX_INTERVAL: %d is negative", maxInterval)
	}

	timeout, err := time.ParseDuration(getEnv("SESSION_TIMEOUT", "2h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TIMEOUT: %w", err)
	}
	sweep, err := time.ParseDuration(getEnv("SWEEP_INTERVAL", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid SWEEP_INTERVAL: %w", err)
	}
	snapshot, err := time.ParseDuration(getEnv("SNAPSHOT_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SNAPSHOT_INTERVAL: %w", err)
	}

	return &Config{
		Database: DatabaseConfig{
			Type: dbType,
			DSN:  buildDSN(dbType),
		},
		Log: LogConfig{
			Mode: getEnv("LOG_MODE", "dev"),
		},
		Learning: LearningConfig{
			Premium:        premium,
			RNGSeed:        seed,
			EligibleLevels: levels,
			SessionGoal:    goal,
			FreeJitter:     jitter,
			MaxInterval:    maxInterval,
		},
		Scheduler: SchedulerConfig{
			SessionTimeout:   timeout,
			SweepInterval:    sweep,
			SnapshotInterval: snapshot,
		},
	}, nil
}

// ParseLevels parses a comma separated list of level tags, e.g. "1,2,3".
func ParseLevels(s string) ([]int, error) {
	var levels []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("level %q: %w", part, err)
		}
		if n < 1 || n > 6 {
			return nil, fmt.Errorf("level %d out of range 1-6", n)
		}
		levels = append(levels, n)
	}
	return levels, nil
}

func buildDSN(dbType string) string {
	if dbType == "postgres" {
		if url := getEnv("DATABASE_URL", ""); url != "" {
			return url
		}
		return fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			getEnv("DB_HOST", "localhost"),
			getEnv("DB_PORT", "5432"),
			getEnv("DB_USER", "postgres"),
			getEnv("DB_PASSWORD", "postgres"),
			getEnv("DB_NAME", "wordsrs"),
			getEnv("DB_SSLMODE", "disable"),
		)
	}

	return getEnv("SQLITE_PATH", "data/wordsrs.db")
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
