package initializers

import (
	"fmt"
	"log"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectToDB(dbURL string) {
	db, err := OpenDatabase(dbURL)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	DB = db
	log.Println("Connected to database successfully.")
}

// OpenDatabase opens MySQL for a DSN, or SQLite for "sqlite:<path>"
// (":memory:" for an in-memory database).
func OpenDatabase(dbURL string) (*gorm.DB, error) {
	cfg := &gorm.Config{TranslateError: true}

	if path, ok := strings.CutPrefix(dbURL, "sqlite:"); ok {
		db, err := gorm.Open(sqlite.Open(path), cfg)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// a single connection keeps ":memory:" databases coherent and serializes writers
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	}

	db, err := gorm.Open(mysql.Open(dbURL), cfg)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	return db, nil
}
