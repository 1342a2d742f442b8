package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Config struct {
	GamePath      string
	ModPath       string
	Preferences   string
	Encoding      string
	WorkerCount   int
	DatabaseURL   string
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string
	LogLevel      zerolog.Level
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	return &Config{
		GamePath:      getEnv("GAME_PATH", ""),
		ModPath:       getEnv("MOD_PATH", ""),
		Preferences:   getEnv("PREFERENCES_PATH", ""),
		Encoding:      getEnv("LOCALISATION_ENCODING", "utf-8"),
		WorkerCount:   getEnvInt("WORKER_COUNT", 4),
		DatabaseURL:   getEnv("DATABASE_URL", "postgres://localhost:5432/localisation?sslmode=disable"),
		Neo4jURI:      getEnv("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUser:     getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword: getEnv("NEO4J_PASSWORD", "password"),
		LogLevel:      getEnvLevel("LOG_LEVEL", zerolog.InfoLevel),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvLevel(key string, fallback zerolog.Level) zerolog.Level {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	lvl, err := zerolog.ParseLevel(v)
	if err != nil {
		return fallback
	}
	return lvl
}
