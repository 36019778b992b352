package database

import (
	"os"

	"github.com/go-pg/pg/v10"
	"github.com/go-pg/pg/v10/orm"
	_ "github.com/joho/godotenv/autoload"
	"github.com/mkehrer/monopoly-server/app/models"
)

// PostgreSQLConnection opens a connection for user-account queries. Game
// state never touches postgres.
func PostgreSQLConnection() *pg.DB {
	return pg.Connect(&pg.Options{
		User:     os.Getenv("DB_USER"),
		Addr:     os.Getenv("DB_ADDR"),
		Password: os.Getenv("DB_PASSWORD"),
		Database: os.Getenv("DB_NAME"),
	})
}

// Migrate creates the users table if it is missing.
func Migrate(db *pg.DB) error {
	return db.Model((*models.User)(nil)).CreateTable(&orm.CreateTableOptions{
		IfNotExists: true,
	})
}
