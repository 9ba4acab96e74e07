package main

import (
	"flag"
	"log"
	"os"
	"rentdesk/cmd/migrate/versions"
	"strings"

	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openDb(databaseUri string) *gorm.DB {
	var dialector gorm.Dialector
	if strings.HasPrefix(databaseUri, "postgres://") || strings.HasPrefix(databaseUri, "postgresql://") {
		dialector = postgres.Open(databaseUri)
	} else {
		dialector = sqlite.Open(databaseUri)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		log.Fatalf("error opening database connection: %v", err)
	}
	return db
}

func main() {
	envFile := flag.String("env", "", "File to load env variables from.")
	databaseUri := flag.String("db", "", "Database uri to migrate. Overrides DATABASE_URI.")
	rollback := flag.Bool("rollback", false, "Roll back the most recent migration instead of migrating forward.")
	flag.Parse()

	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil {
			log.Fatalf("error loading .env file '%v': %v", *envFile, err)
		}
	}

	uri := *databaseUri
	if uri == "" {
		uri = os.Getenv("DATABASE_URI")
	}
	if uri == "" {
		log.Fatal("a database uri must be provided via -db or DATABASE_URI")
	}

	db := openDb(uri)

	m := gormigrate.New(db, gormigrate.DefaultOptions, versions.Migrations())

	if *rollback {
		if err := m.RollbackLast(); err != nil {
			log.Fatalf("error rolling back migration: %v", err)
		}
		log.Println("rollback complete")
		return
	}

	if err := m.Migrate(); err != nil {
		log.Fatalf("error running migrations: %v", err)
	}
	log.Println("migrations complete")
}
