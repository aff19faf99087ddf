package dal

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Billy-Davies-2/scorebored/internal/match"
	"github.com/Billy-Davies-2/scorebored/internal/models"
)

// sqlRoster holds the queries SQLiteDAL and PostgresDAL have in common.
// Queries are written with ? placeholders and rebound for the driver.
type sqlRoster struct {
	db       *sql.DB
	numbered bool // $1, $2 ... instead of ?
}

func (s *sqlRoster) q(query string) string {
	if !s.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func scanPreset(row interface{ Scan(...any) error }) (models.TeamPreset, error) {
	var p models.TeamPreset
	var color string
	if err := row.Scan(&p.ID, &p.Name, &color); err != nil {
		return p, err
	}
	c, err := match.ParseTeamColor(color)
	if err != nil {
		return p, fmt.Errorf("preset %s: %w", p.ID, err)
	}
	p.Color = c
	return p, nil
}

func (s *sqlRoster) ListPresets() ([]models.TeamPreset, error) {
	rows, err := s.db.Query(`SELECT id, name, color FROM team_presets ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	presets := []models.TeamPreset{}
	for rows.Next() {
		p, err := scanPreset(rows)
		if err != nil {
			return nil, err
		}
		presets = append(presets, p)
	}
	return presets, rows.Err()
}

func (s *sqlRoster) GetPreset(id string) (*models.TeamPreset, error) {
	p, err := scanPreset(s.db.QueryRow(s.q(`SELECT id, name, color FROM team_presets WHERE id = ?`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("preset %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *sqlRoster) SavePreset(preset *models.TeamPreset) (*models.TeamPreset, error) {
	if err := preparePreset(preset); err != nil {
		return nil, err
	}
	_, err := s.db.Exec(s.q(`
		INSERT INTO team_presets (id, name, color) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, color = excluded.color
	`), preset.ID, preset.Name, preset.Color.String())
	if err != nil {
		return nil, fmt.Errorf("failed to save preset %s: %w", preset.ID, err)
	}
	saved := *preset
	return &saved, nil
}

func (s *sqlRoster) DeletePreset(id string) error {
	res, err := s.db.Exec(s.q(`DELETE FROM team_presets WHERE id = ?`), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("preset %q: %w", id, ErrNotFound)
	}
	return nil
}

func (s *sqlRoster) GetSettings() (*models.Settings, error) {
	var game, length, style string
	var subtitles bool
	err := s.db.QueryRow(`SELECT game_length, match_length, style, subtitles FROM match_settings WHERE id = 1`).
		Scan(&game, &length, &style, &subtitles)
	if errors.Is(err, sql.ErrNoRows) {
		d := models.DefaultSettings()
		return &d, nil
	}
	if err != nil {
		return nil, err
	}

	settings := &models.Settings{Subtitles: subtitles}
	if settings.GameLength, err = match.ParseGameLength(game); err != nil {
		return nil, err
	}
	if settings.MatchLength, err = match.ParseMatchLength(length); err != nil {
		return nil, err
	}
	if settings.Style, err = match.ParseStyle(style); err != nil {
		return nil, err
	}
	return settings, nil
}

func (s *sqlRoster) SaveSettings(settings *models.Settings) error {
	if settings == nil {
		return fmt.Errorf("nil settings")
	}
	if err := settings.Validate(); err != nil {
		return err
	}
	_, err := s.db.Exec(s.q(`
		INSERT INTO match_settings (id, game_length, match_length, style, subtitles) VALUES (1, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			game_length = excluded.game_length,
			match_length = excluded.match_length,
			style = excluded.style,
			subtitles = excluded.subtitles
	`), settings.GameLength.String(), settings.MatchLength.String(), settings.Style.String(), settings.Subtitles)
	return err
}

// seed writes the default presets and settings inside tx.
func (s *sqlRoster) seed(tx *sql.Tx) error {
	for _, p := range getDefaultPresets() {
		if _, err := tx.Exec(s.q(`INSERT INTO team_presets (id, name, color) VALUES (?, ?, ?)`),
			p.ID, p.Name, p.Color.String()); err != nil {
			return fmt.Errorf("failed to seed preset %s: %w", p.ID, err)
		}
	}
	d := models.DefaultSettings()
	if _, err := tx.Exec(s.q(`INSERT INTO match_settings (id, game_length, match_length, style, subtitles) VALUES (1, ?, ?, ?, ?)`),
		d.GameLength.String(), d.MatchLength.String(), d.Style.String(), d.Subtitles); err != nil {
		return fmt.Errorf("failed to seed settings: %w", err)
	}
	return nil
}

func (s *sqlRoster) seedIfEmpty() error {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM team_presets`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := s.seed(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *sqlRoster) Reset() error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM team_presets`); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM match_settings`); err != nil {
		return err
	}
	if err := s.seed(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *sqlRoster) Close() error {
	return s.db.Close()
}
