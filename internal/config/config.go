package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port      string
	DBDSN     string
	JWTSecret string
	LogFile   string
	// NotifyBacklog bounds how many events a reconnecting session may replay
	// before being told to resync via an ordinary query.
	NotifyBacklog int
}

func Load() Config {
	// Optional .env in the working directory; real env wins.
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "harvestlink.db" // sqlite file in project root
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-secret-change-me"
		log.Println("[config] JWT_SECRET not set, using dev default")
	}
	logFile := os.Getenv("LOG_FILE")
	if logFile == "" {
		logFile = "./harvestlink.log"
	}

	cfg := Config{Port: port, DBDSN: dsn, JWTSecret: secret, LogFile: logFile, NotifyBacklog: 500}
	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s", cfg.Port, cfg.DBDSN, cfg.LogFile)
	return cfg
}
