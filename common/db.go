package common

import (
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// ConnectDb opens the application database. A postgres DSN in database_url
// takes priority; otherwise sqlite_db names a sqlite file.
func ConnectDb() *gorm.DB {
	cfg := &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	}

	if dsn := os.Getenv("database_url"); dsn != "" {
		db, err := gorm.Open(postgres.Open(dsn), cfg)
		if err != nil {
			Log().Error("Error opening postgres db: " + err.Error())
			return nil
		}
		Log().Info("opened postgres db")
		return db
	}

	dbFile := os.Getenv("sqlite_db")
	if dbFile == "" {
		Log().Error("neither database_url nor sqlite_db is set")
		return nil
	}

	db, err := gorm.Open(sqlite.Open(dbFile), cfg)
	if err != nil {
		Log().Error("Error opening sqlite db: " + err.Error())
		return nil
	}
	Log().Info("opened sqlite db at: " + dbFile)
	return db
}
