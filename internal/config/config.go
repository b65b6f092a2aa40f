package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Booking  BookingConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type PostgresConfig struct {
	User     string
	Password string
	Name     string
	Host     string
	Port     int
	SSLMode  string
}

// BookingConfig carries the availability/hold policy knobs. Everything
// has a sane default so a bare .env still boots.
type BookingConfig struct {
	HoldTTLSec         int // initial hold lifetime
	HoldExtendSec      int // expiry horizon a heartbeat resets to; keep equal to the TTL
	LookaheadDays      int // bound on the available-dates horizon
	DefaultDurationMin int // stay length when no duration rule matches
	LimitedMax         int // max candidate tables still shown as "limited"
	DatesCacheTTLSec   int
	SlotsCacheTTLSec   int
	SweepIntervalSec   int // expired-hold housekeeping cadence
}

func New() (*Config, error) {
	const op = "config.New"

	_ = godotenv.Load()

	serverHost := os.Getenv("SERVER_HOST")
	if serverHost == "" {
		serverHost = "localhost"
	}

	serverPort, err := intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	serverCfg := ServerConfig{
		Host: serverHost,
		Port: serverPort,
	}

	postgresHost := os.Getenv("POSTGRES_HOST")
	if postgresHost == "" {
		postgresHost = "localhost"
	}

	postgresPort, err := intEnv("POSTGRES_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	postgresUser := os.Getenv("POSTGRES_USER")
	if postgresUser == "" {
		return nil, fmt.Errorf("%s: missing POSTGRES_USER", op)
	}

	postgresPassword := os.Getenv("POSTGRES_PASSWORD")
	if postgresPassword == "" {
		return nil, fmt.Errorf("%s: missing POSTGRES_PASSWORD", op)
	}

	postgresDB := os.Getenv("POSTGRES_DB")
	if postgresDB == "" {
		return nil, fmt.Errorf("%s: missing POSTGRES_DB", op)
	}

	postgresSSLMode := os.Getenv("POSTGRES_SSLMODE")
	if postgresSSLMode == "" {
		postgresSSLMode = "disable"
	}

	postgresCfg := PostgresConfig{
		User:     postgresUser,
		Password: postgresPassword,
		Name:     postgresDB,
		Host:     postgresHost,
		Port:     postgresPort,
		SSLMode:  postgresSSLMode,
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	redisCfg := RedisConfig{
		Addr:     redisAddr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	}

	bookingCfg := BookingConfig{}
	if bookingCfg.HoldTTLSec, err = intEnv("HOLD_TTL_SEC", 90); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if bookingCfg.HoldExtendSec, err = intEnv("HOLD_EXTEND_SEC", 90); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if bookingCfg.LookaheadDays, err = intEnv("LOOKAHEAD_DAYS", 90); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if bookingCfg.DefaultDurationMin, err = intEnv("DEFAULT_DURATION_MIN", 120); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if bookingCfg.LimitedMax, err = intEnv("SLOT_LIMITED_MAX", 3); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if bookingCfg.DatesCacheTTLSec, err = intEnv("DATES_CACHE_TTL_SEC", 120); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if bookingCfg.SlotsCacheTTLSec, err = intEnv("SLOTS_CACHE_TTL_SEC", 15); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if bookingCfg.SweepIntervalSec, err = intEnv("HOLD_SWEEP_INTERVAL_SEC", 60); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Config{
		Server:   serverCfg,
		Postgres: postgresCfg,
		Redis:    redisCfg,
		Booking:  bookingCfg,
	}, nil
}

func intEnv(name string, def int) (int, error) {
	s := os.Getenv(name)
	if s == "" {
		return def, nil
	}

	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}

	return v, nil
}
