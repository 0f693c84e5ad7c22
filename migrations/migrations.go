// Package migrations applies the embedded MySQL schema files in name order.
// Each file carries a "-- +migrate Up" and a "-- +migrate Down" section.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

//go:embed *.sql
var files embed.FS

const createVersionsTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
    version VARCHAR(255) NOT NULL,
    applied_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
    PRIMARY KEY (version)
)`

type Migration struct {
	Version string
	Up      []string
	Down    []string
}

// Load returns the embedded migrations sorted by version.
func Load() ([]Migration, error) {
	entries, err := files.ReadDir(".")
	if err != nil {
		return nil, err
	}

	out := make([]Migration, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		content, err := files.ReadFile(entry.Name())
		if err != nil {
			return nil, err
		}
		out = append(out, Migration{
			Version: entry.Name(),
			Up:      splitStatements(extractSection(string(content), "Up")),
			Down:    splitStatements(extractSection(string(content), "Down")),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// Up applies every migration not yet recorded in schema_migrations.
func Up(ctx context.Context, db *sql.DB, logger logrus.FieldLogger) error {
	items, err := Load()
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, createVersionsTable); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}

	for _, m := range items {
		var exists int
		err := db.QueryRowContext(ctx, `SELECT COUNT(1) FROM schema_migrations WHERE version = ?`, m.Version).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", m.Version, err)
		}
		if exists > 0 {
			logger.WithField("version", m.Version).Debug("Migration already applied")
			continue
		}

		for _, stmt := range m.Up {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("apply migration %s: %w", m.Version, err)
			}
		}
		if _, err := db.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (?)`, m.Version); err != nil {
			return fmt.Errorf("record migration %s: %w", m.Version, err)
		}
		logger.WithField("version", m.Version).Info("Migration applied")
	}

	return nil
}

// Down rolls back the most recently applied migration.
func Down(ctx context.Context, db *sql.DB, logger logrus.FieldLogger) error {
	items, err := Load()
	if err != nil {
		return err
	}

	var version string
	err = db.QueryRowContext(ctx, `SELECT version FROM schema_migrations ORDER BY version DESC LIMIT 1`).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		logger.Info("No migrations to roll back")
		return nil
	}
	if err != nil {
		return fmt.Errorf("find last migration: %w", err)
	}

	for _, m := range items {
		if m.Version != version {
			continue
		}
		for _, stmt := range m.Down {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("roll back migration %s: %w", version, err)
			}
		}
		if _, err := db.ExecContext(ctx, `DELETE FROM schema_migrations WHERE version = ?`, version); err != nil {
			return fmt.Errorf("remove migration record %s: %w", version, err)
		}
		logger.WithField("version", version).Info("Migration rolled back")
		return nil
	}

	return fmt.Errorf("migration file not found for version %s", version)
}

func extractSection(content, section string) string {
	var part strings.Builder
	inPart := false
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "-- +migrate") {
			inPart = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "-- +migrate")) == section
			continue
		}
		if inPart {
			part.WriteString(line)
			part.WriteString("\n")
		}
	}
	return part.String()
}

// splitStatements splits on semicolons; the schema files contain no
// semicolons inside literals.
func splitStatements(sqlText string) []string {
	out := make([]string, 0)
	for _, stmt := range strings.Split(sqlText, ";") {
		if trimmed := strings.TrimSpace(stmt); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
