package config

import (
	"log"
	"os"
)

type Config struct {
	Port    string
	DBDSN   string
	LogFile string
	// ReturnAfterDelivery allows delivered orders to transition to returned,
	// reversing the LTV credit and releasing the products.
	ReturnAfterDelivery bool
}

func Load() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "velours.db" // sqlite file in project root
	}
	logFile := os.Getenv("LOG_FILE")
	if logFile == "" {
		logFile = "./velours.log"
	}
	returns := os.Getenv("RETURN_AFTER_DELIVERY") == "1"

	cfg := Config{Port: port, DBDSN: dsn, LogFile: logFile, ReturnAfterDelivery: returns}
	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s RETURN_AFTER_DELIVERY=%v",
		cfg.Port, cfg.DBDSN, cfg.LogFile, cfg.ReturnAfterDelivery)
	return cfg
}
