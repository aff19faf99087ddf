package dal

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteDAL implements RosterDAL using SQLite
type SQLiteDAL struct {
	sqlRoster
}

// NewSQLiteDAL opens (or creates) the database at dbPath, migrates it and
// seeds the default presets on first use.
func NewSQLiteDAL(dbPath string) (*SQLiteDAL, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	// A single connection keeps ":memory:" databases shared across queries.
	db.SetMaxOpenConns(1)

	dal := &SQLiteDAL{sqlRoster{db: db}}
	if err := dal.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return dal, nil
}

func (s *SQLiteDAL) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS team_presets (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		color TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS match_settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		game_length TEXT NOT NULL,
		match_length TEXT NOT NULL,
		style TEXT NOT NULL
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	// subtitles arrived after the first release; older files lack the column.
	var subtitlesExists int
	err := s.db.QueryRow(`
		SELECT COUNT(*)
		FROM pragma_table_info('match_settings')
		WHERE name='subtitles'
	`).Scan(&subtitlesExists)
	if err != nil {
		return fmt.Errorf("failed to check subtitles column existence: %w", err)
	}
	if subtitlesExists == 0 {
		if _, err := s.db.Exec(`ALTER TABLE match_settings ADD COLUMN subtitles INTEGER NOT NULL DEFAULT 0`); err != nil {
			return fmt.Errorf("failed to add subtitles column: %w", err)
		}
	}

	return s.seedIfEmpty()
}
