package repository

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/mapleleafu/blastarena/blastarena-backend/config"
)

func ConnectToPostgreSQL(cfg *config.Config) {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open PostgreSQL connection")
	}

	if err := db.Ping(); err != nil {
		db.Close()
		log.Fatal().Err(err).Msg("failed to ping PostgreSQL")
	}
	PostgreSQLDB = db

	log.Info().Msg("successfully connected to PostgreSQL")
}

var (
	PostgreSQLDB *sql.DB
)
