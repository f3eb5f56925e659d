package config

import (
	"os"

	"github.com/rs/zerolog/log"
)

type Config struct {
	Addr         string
	DBHost       string
	DBPort       string
	DBUser       string
	DBPassword   string
	DBName       string
	MongoURI     string
	MongoDB      string
	StoreBackend string // "memory" or "mongo"
}

func LoadConfig() *Config {
	return &Config{
		Addr:         getEnv("ADDR", ":8000"),
		DBHost:       getEnv("DB_HOST", "localhost"),
		DBPort:       getEnv("DB_PORT", "5432"),
		DBUser:       getEnv("DB_USER", "user"),
		DBPassword:   getEnv("DB_PASSWORD", "password"),
		DBName:       getEnv("DB_NAME", "blastarena"),
		MongoURI:     getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:      getEnv("MONGO_DB", "blastarena"),
		StoreBackend: getEnv("STORE_BACKEND", "memory"),
	}
}

// getEnv reads an environment variable and returns its value or a default value
func getEnv(key, defaultValue string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		value = defaultValue
		log.Debug().Str("var", key).Str("default", defaultValue).Msg("environment variable not set, using default")
	}
	return value
}
