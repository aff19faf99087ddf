package dal

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Billy-Davies-2/scorebored/internal/logger"
	"github.com/Billy-Davies-2/scorebored/internal/match"
	"github.com/Billy-Davies-2/scorebored/internal/models"
)

func init() {
	logger.Init("error")
}

func testRoster(t *testing.T, newDAL func(t *testing.T) RosterDAL) {
	t.Run("seeded defaults", func(t *testing.T) {
		d := newDAL(t)

		presets, err := d.ListPresets()
		if err != nil {
			t.Fatalf("ListPresets() failed: %v", err)
		}
		if len(presets) != 2 || presets[0].ID != "away" || presets[1].ID != "home" {
			t.Fatalf("expected away/home presets sorted by name, got %+v", presets)
		}
		if presets[1].Color != match.ColorLEDRed {
			t.Errorf("home preset should be LED red, got %s", presets[1].Color)
		}

		s, err := d.GetSettings()
		if err != nil {
			t.Fatalf("GetSettings() failed: %v", err)
		}
		if *s != models.DefaultSettings() {
			t.Errorf("expected default settings, got %+v", *s)
		}
	})

	t.Run("save and get preset", func(t *testing.T) {
		d := newDAL(t)

		saved, err := d.SavePreset(&models.TeamPreset{Name: "Net Ninjas", Color: match.ColorLEDGreen})
		if err != nil {
			t.Fatalf("SavePreset() failed: %v", err)
		}
		if saved.ID == "" {
			t.Fatal("SavePreset() should assign an ID")
		}

		got, err := d.GetPreset(saved.ID)
		if err != nil {
			t.Fatalf("GetPreset() failed: %v", err)
		}
		if *got != *saved {
			t.Errorf("GetPreset() = %+v, want %+v", *got, *saved)
		}

		saved.Name = "Net Ninjas II"
		saved.Color = match.ColorLEDMagenta
		if _, err := d.SavePreset(saved); err != nil {
			t.Fatalf("SavePreset() update failed: %v", err)
		}
		got, _ = d.GetPreset(saved.ID)
		if got.Name != "Net Ninjas II" || got.Color != match.ColorLEDMagenta {
			t.Errorf("update not stored: %+v", *got)
		}

		presets, _ := d.ListPresets()
		if len(presets) != 3 {
			t.Errorf("expected 3 presets after insert+update, got %d", len(presets))
		}
	})

	t.Run("invalid preset", func(t *testing.T) {
		d := newDAL(t)
		if _, err := d.SavePreset(&models.TeamPreset{Name: "No Colour"}); !errors.Is(err, match.ErrInvalidColor) {
			t.Errorf("expected ErrInvalidColor, got %v", err)
		}
		if _, err := d.SavePreset(nil); err == nil {
			t.Error("nil preset should be rejected")
		}
	})

	t.Run("delete preset", func(t *testing.T) {
		d := newDAL(t)
		if err := d.DeletePreset("away"); err != nil {
			t.Fatalf("DeletePreset() failed: %v", err)
		}
		if _, err := d.GetPreset("away"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
		if err := d.DeletePreset("away"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound on second delete, got %v", err)
		}
	})

	t.Run("settings", func(t *testing.T) {
		d := newDAL(t)
		want := models.Settings{
			GameLength:  match.Eleven,
			MatchLength: match.BestOfFive,
			Style:       match.StyleClassic,
			Subtitles:   true,
		}
		if err := d.SaveSettings(&want); err != nil {
			t.Fatalf("SaveSettings() failed: %v", err)
		}
		got, err := d.GetSettings()
		if err != nil {
			t.Fatalf("GetSettings() failed: %v", err)
		}
		if *got != want {
			t.Errorf("GetSettings() = %+v, want %+v", *got, want)
		}

		bad := want
		bad.MatchLength = 0
		if err := d.SaveSettings(&bad); !errors.Is(err, match.ErrInvalidMatchLength) {
			t.Errorf("expected ErrInvalidMatchLength, got %v", err)
		}
	})

	t.Run("reset", func(t *testing.T) {
		d := newDAL(t)
		if _, err := d.SavePreset(&models.TeamPreset{Name: "Extra", Color: match.ColorLEDWhite}); err != nil {
			t.Fatalf("SavePreset() failed: %v", err)
		}
		if err := d.SaveSettings(&models.Settings{GameLength: match.Eleven, MatchLength: match.BestOfThree, Style: match.StyleLED}); err != nil {
			t.Fatalf("SaveSettings() failed: %v", err)
		}

		if err := d.Reset(); err != nil {
			t.Fatalf("Reset() failed: %v", err)
		}

		presets, _ := d.ListPresets()
		if len(presets) != 2 {
			t.Errorf("expected default presets after reset, got %+v", presets)
		}
		s, _ := d.GetSettings()
		if *s != models.DefaultSettings() {
			t.Errorf("expected default settings after reset, got %+v", *s)
		}
	})
}

func TestMemoryDAL(t *testing.T) {
	testRoster(t, func(t *testing.T) RosterDAL {
		return NewMemoryDAL()
	})
}

func TestSQLiteDAL(t *testing.T) {
	testRoster(t, func(t *testing.T) RosterDAL {
		d, err := NewSQLiteDAL(filepath.Join(t.TempDir(), "roster.sqlite"))
		if err != nil {
			t.Fatalf("NewSQLiteDAL() failed: %v", err)
		}
		t.Cleanup(func() { d.Close() })
		return d
	})
}

func TestSQLiteDALPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.sqlite")

	d, err := NewSQLiteDAL(path)
	if err != nil {
		t.Fatalf("NewSQLiteDAL() failed: %v", err)
	}
	if _, err := d.SavePreset(&models.TeamPreset{ID: "dinkers", Name: "Dinkers", Color: match.ColorLEDYellow}); err != nil {
		t.Fatalf("SavePreset() failed: %v", err)
	}
	d.Close()

	reopened, err := NewSQLiteDAL(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.GetPreset("dinkers")
	if err != nil {
		t.Fatalf("GetPreset() after reopen failed: %v", err)
	}
	if got.Name != "Dinkers" {
		t.Errorf("unexpected preset %+v", *got)
	}
	presets, _ := reopened.ListPresets()
	if len(presets) != 3 {
		t.Errorf("reopening must not reseed, got %d presets", len(presets))
	}
}

func TestSQLiteDALMigratesSubtitles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.sqlite")

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	_, err = db.Exec(`
		CREATE TABLE team_presets (id TEXT PRIMARY KEY, name TEXT NOT NULL, color TEXT NOT NULL);
		CREATE TABLE match_settings (id INTEGER PRIMARY KEY CHECK (id = 1), game_length TEXT NOT NULL, match_length TEXT NOT NULL, style TEXT NOT NULL);
		INSERT INTO team_presets VALUES ('home', 'Home Team', 'led_red');
		INSERT INTO match_settings VALUES (1, 'eleven', 'best_of_three', 'classic');
	`)
	db.Close()
	if err != nil {
		t.Fatalf("seeding old schema failed: %v", err)
	}

	d, err := NewSQLiteDAL(path)
	if err != nil {
		t.Fatalf("NewSQLiteDAL() failed on old schema: %v", err)
	}
	defer d.Close()

	s, err := d.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings() failed: %v", err)
	}
	want := models.Settings{GameLength: match.Eleven, MatchLength: match.BestOfThree, Style: match.StyleClassic}
	if *s != want {
		t.Errorf("GetSettings() = %+v, want %+v", *s, want)
	}
}

func TestPostgresDAL(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	testRoster(t, func(t *testing.T) RosterDAL {
		d, err := NewPostgresDALWithOptions(url, PostgresOptions{MaxRetries: 1, PingTimeout: 5 * time.Second})
		if err != nil {
			t.Fatalf("NewPostgresDAL() failed: %v", err)
		}
		if err := d.Reset(); err != nil {
			t.Fatalf("Reset() failed: %v", err)
		}
		t.Cleanup(func() { d.Close() })
		return d
	})
}

func TestNumberedPlaceholders(t *testing.T) {
	s := &sqlRoster{numbered: true}
	got := s.q(`INSERT INTO t (a, b) VALUES (?, ?)`)
	if got != `INSERT INTO t (a, b) VALUES ($1, $2)` {
		t.Errorf("unexpected rebinding %q", got)
	}
	if (&sqlRoster{}).q("?") != "?" {
		t.Error("sqlite queries should keep ? placeholders")
	}
}
