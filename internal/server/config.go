package server

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port      int
	JWTSecret string
	DBPath    string
}

func DefaultConfig() Config {
	return Config{
		Port:      4000,
		JWTSecret: "dev_secret",
		DBPath:    "todod.db",
	}
}

func ConfigFromEnv(base Config) Config {
	cfg := base
	if v, ok := getEnvInt("PORT"); ok && v > 0 {
		cfg.Port = v
	}
	if v := strings.TrimSpace(os.Getenv("JWT_SECRET")); v != "" {
		cfg.JWTSecret = v
	}
	if v := strings.TrimSpace(os.Getenv("TODOD_DB")); v != "" {
		cfg.DBPath = v
	}
	return cfg
}

func getEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
