package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// dsn asks the server for found rows instead of changed rows, so an UPDATE
// that matches a row but changes nothing still reports RowsAffected > 0.
// Repositories rely on that to tell "row does not exist" apart from "new
// values equal the old ones".
func (c Config) dsn() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&multiStatements=true&clientFoundRows=true",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.DBName,
	)
}

func NewDB(config Config) (*sql.DB, error) {
	db, err := sql.Open("mysql", config.dsn())
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	return db, nil
}

// RunMigrations applies every *.up.sql file in migrationsPath in filename
// order, each inside its own transaction tracked by schema_migrations.
func RunMigrations(db *sql.DB, migrationsPath string) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS schema_migrations (
            version INT PRIMARY KEY,
            applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            dirty BOOLEAN NOT NULL DEFAULT FALSE
        )
    `)
	if err != nil {
		return fmt.Errorf("error creating migrations table: %w", err)
	}

	files, err := os.ReadDir(migrationsPath)
	if err != nil {
		return fmt.Errorf("error reading migrations directory: %w", err)
	}

	var migrations []string
	for _, file := range files {
		if strings.HasSuffix(file.Name(), ".up.sql") {
			migrations = append(migrations, file.Name())
		}
	}
	sort.Strings(migrations)

	for _, migration := range migrations {
		var version int
		fmt.Sscanf(migration, "%d", &version)

		var applied bool
		err := db.QueryRow(
			`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = ? AND NOT dirty)`,
			version).Scan(&applied)
		if err != nil {
			return fmt.Errorf("error checking migration %s: %w", migration, err)
		}
		if applied {
			continue
		}

		content, err := os.ReadFile(filepath.Join(migrationsPath, migration))
		if err != nil {
			return fmt.Errorf("error reading migration file %s: %w", migration, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("error starting transaction: %w", err)
		}

		if _, err := tx.Exec("INSERT INTO schema_migrations (version, dirty) VALUES (?, true)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("error marking migration as dirty %s: %w", migration, err)
		}

		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("error executing migration %s: %w", migration, err)
		}

		if _, err := tx.Exec("UPDATE schema_migrations SET dirty = false WHERE version = ?", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("error marking migration as clean %s: %w", migration, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("error committing migration %s: %w", migration, err)
		}

		log.Infof("Applied migration: %s", migration)
	}

	return nil
}
