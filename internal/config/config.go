package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port           string   `envconfig:"PORT" default:"8080"`
	MongoURI       string   `envconfig:"MONGODB_URI" default:"mongodb://localhost:27017"`
	MongoDatabase  string   `envconfig:"MONGODB_DATABASE" default:"konekt"`
	RedisAddr      string   `envconfig:"REDIS_ADDR"` // empty = single-server in-memory hub
	ServerID       string   `envconfig:"SERVER_ID" default:"server-1"`
	JWTSecret      string   `envconfig:"JWT_SECRET"`
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("godotenv: no .env file loaded")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "change-this-in-production"
		log.Println("Warning: Using default JWT secret. Set JWT_SECRET in .env for production")
	}

	return cfg, nil
}
