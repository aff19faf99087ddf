package dal

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/Billy-Davies-2/scorebored/internal/match"
	"github.com/Billy-Davies-2/scorebored/internal/models"
)

// ErrNotFound is returned when a preset does not exist.
var ErrNotFound = errors.New("not found")

// RosterDAL stores team presets and the match settings the scoreboard
// starts with. Live match state is never persisted.
type RosterDAL interface {
	ListPresets() ([]models.TeamPreset, error)
	GetPreset(id string) (*models.TeamPreset, error)
	// SavePreset inserts or replaces a preset, assigning an ID when empty.
	SavePreset(preset *models.TeamPreset) (*models.TeamPreset, error)
	DeletePreset(id string) error
	GetSettings() (*models.Settings, error)
	SaveSettings(settings *models.Settings) error
	// Reset restores the default presets and settings.
	Reset() error
	Close() error
}

func genID(prefix string) string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return fmt.Sprintf("%s_%s", prefix, hex.EncodeToString(b))
}

func getDefaultPresets() []models.TeamPreset {
	return []models.TeamPreset{
		{ID: "home", Name: "Home Team", Color: match.ColorLEDRed},
		{ID: "away", Name: "Away Team", Color: match.ColorLEDCyan},
	}
}

func preparePreset(preset *models.TeamPreset) error {
	if preset == nil {
		return fmt.Errorf("nil team preset")
	}
	if err := preset.Validate(); err != nil {
		return err
	}
	if preset.ID == "" {
		preset.ID = genID("team")
	}
	return nil
}
