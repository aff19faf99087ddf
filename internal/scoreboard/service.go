// Package scoreboard serialises access to the live match and broadcasts
// every change to displays, caches and commentary sinks.
package scoreboard

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Billy-Davies-2/scorebored/internal/cache"
	"github.com/Billy-Davies-2/scorebored/internal/dal"
	"github.com/Billy-Davies-2/scorebored/internal/logger"
	"github.com/Billy-Davies-2/scorebored/internal/match"
	"github.com/Billy-Davies-2/scorebored/internal/models"
	"github.com/Billy-Davies-2/scorebored/internal/pubsub"
)

// ErrEmptyName is returned when a team would be left without a name.
var ErrEmptyName = models.ErrEmptyName

// Options wires a Service. Every field is optional. The talker runs while
// later operations wait to deliver, so it must not call back into them.
type Options struct {
	Talker    match.Talker
	Announcer match.Announcer
	Broker    pubsub.Broker
	Cache     cache.SnapshotCache
	Roster    dal.RosterDAL
	HomeTeam  string
	AwayTeam  string
	Now       func() time.Time
}

// Service owns the single live match. The match itself is not safe for
// concurrent use, so every operation runs under mu; commentary and events
// produced while the lock is held are delivered after it is released.
// delivery is taken before mu is released, so talkers, subscribers and the
// cache see changes in the order they were made.
type Service struct {
	mu       sync.Mutex
	delivery sync.Mutex
	match    *match.Match

	// Collected under mu, flushed after unlock.
	spoken  [][]string
	pending []string

	talker match.Talker
	broker pubsub.Broker
	cache  cache.SnapshotCache
	roster dal.RosterDAL
	now    func() time.Time
}

// New creates the service and applies the stored settings to a fresh match.
func New(opts Options) (*Service, error) {
	s := &Service{
		talker: opts.Talker,
		broker: opts.Broker,
		cache:  opts.Cache,
		roster: opts.Roster,
		now:    opts.Now,
	}
	if s.cache == nil {
		s.cache = cache.NewMemoryCache()
	}
	if s.roster == nil {
		s.roster = dal.NewMemoryDAL()
	}
	if s.now == nil {
		s.now = time.Now
	}

	var matchOpts []match.Option
	if opts.Announcer != nil {
		matchOpts = append(matchOpts, match.WithAnnouncer(opts.Announcer))
	}
	s.match = match.New(match.TalkerFunc(s.collect), matchOpts...)

	if err := s.match.AddListener(&match.ListenerFuncs{
		Started: func() { s.pending = append(s.pending, pubsub.EventMatchStarted) },
		Ended:   func() { s.pending = append(s.pending, pubsub.EventMatchEnded) },
	}); err != nil {
		return nil, err
	}

	settings, err := s.roster.GetSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	if err := applySettings(s.match, *settings); err != nil {
		return nil, err
	}
	if opts.HomeTeam != "" {
		s.match.Left().SetName(opts.HomeTeam)
	}
	if opts.AwayTeam != "" {
		s.match.Right().SetName(opts.AwayTeam)
	}
	return s, nil
}

func (s *Service) collect(phrases ...string) {
	s.spoken = append(s.spoken, append([]string(nil), phrases...))
}

// AddListener registers an extra match listener. It is called with the
// service lock held and must not call back into the service.
func (s *Service) AddListener(l match.Listener) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.match.AddListener(l)
}

// mutate runs fn under the lock, then speaks, publishes and caches the
// resulting snapshot. Nothing is broadcast when fn fails.
func (s *Service) mutate(ctx context.Context, op string, fn func(m *match.Match) error) (models.Snapshot, error) {
	s.mu.Lock()
	if err := fn(s.match); err != nil {
		s.spoken, s.pending = nil, nil
		s.mu.Unlock()
		logger.Debug("Scoreboard operation rejected", "op", op, "error", err)
		return models.Snapshot{}, err
	}
	snap := models.SnapshotOf(s.match, s.now())
	spoken, pending := s.spoken, s.pending
	s.spoken, s.pending = nil, nil
	s.delivery.Lock()
	s.mu.Unlock()
	defer s.delivery.Unlock()

	if s.talker != nil {
		for _, batch := range spoken {
			s.talker.Say(batch...)
		}
	}
	if s.broker != nil {
		for _, typ := range pending {
			pubsub.PublishPayload(s.broker, typ, snap)
		}
		pubsub.PublishPayload(s.broker, pubsub.EventScoreUpdate, snap)
	}
	if err := s.cache.Put(ctx, snap); err != nil {
		logger.Warn("Failed to cache snapshot", "op", op, "error", err)
	}

	logger.Debug("Scoreboard updated", "op", op,
		"left", snap.Left.Score, "right", snap.Right.Score, "phase", snap.Phase)
	return snap, nil
}

// Point records a point call for side. A point that ends the match also
// deactivates it.
func (s *Service) Point(ctx context.Context, side match.Side) (models.Snapshot, error) {
	return s.mutate(ctx, "point", func(m *match.Match) error {
		if err := m.IncrementTeamScore(side); err != nil {
			return err
		}
		if m.Phase() == match.MatchOver && m.IsActive() {
			m.SetActive(false)
		}
		return nil
	})
}

// Undo takes the last point away from side.
func (s *Service) Undo(ctx context.Context, side match.Side) (models.Snapshot, error) {
	return s.mutate(ctx, "undo", func(m *match.Match) error {
		return m.DecrementTeamScore(side)
	})
}

func (s *Service) AddWin(ctx context.Context, side match.Side) (models.Snapshot, error) {
	return s.mutate(ctx, "add_win", func(m *match.Match) error {
		return m.IncrementTeamVictory(side)
	})
}

func (s *Service) RemoveWin(ctx context.Context, side match.Side) (models.Snapshot, error) {
	return s.mutate(ctx, "remove_win", func(m *match.Match) error {
		return m.DecrementTeamVictory(side)
	})
}

func (s *Service) SwitchSides(ctx context.Context) (models.Snapshot, error) {
	return s.mutate(ctx, "switch_sides", func(m *match.Match) error {
		m.SwitchSides()
		return nil
	})
}

func (s *Service) SwitchServers(ctx context.Context) (models.Snapshot, error) {
	return s.mutate(ctx, "switch_servers", func(m *match.Match) error {
		m.SwitchServers()
		return nil
	})
}

// SetServer assigns the serve directly; NoSide clears it.
func (s *Service) SetServer(ctx context.Context, side match.Side) (models.Snapshot, error) {
	return s.mutate(ctx, "set_server", func(m *match.Match) error {
		return m.SetServer(side)
	})
}

// Reset clears scores, wins and history and stops the match.
func (s *Service) Reset(ctx context.Context) (models.Snapshot, error) {
	return s.mutate(ctx, "reset", func(m *match.Match) error {
		m.Reset()
		s.pending = append(s.pending, pubsub.EventMatchReset)
		return nil
	})
}

func (s *Service) Start(ctx context.Context) (models.Snapshot, error) {
	return s.SetActive(ctx, true)
}

func (s *Service) Stop(ctx context.Context) (models.Snapshot, error) {
	return s.SetActive(ctx, false)
}

// SetActive starts or stops the match; listeners hear about it either way.
func (s *Service) SetActive(ctx context.Context, active bool) (models.Snapshot, error) {
	return s.mutate(ctx, "set_active", func(m *match.Match) error {
		m.SetActive(active)
		return nil
	})
}

// Introduce speaks the matchup.
func (s *Service) Introduce(ctx context.Context) (models.Snapshot, error) {
	return s.mutate(ctx, "introduce", func(m *match.Match) error {
		m.Introduction()
		return nil
	})
}

func applySettings(m *match.Match, settings models.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	if err := m.SetGameLength(settings.GameLength); err != nil {
		return err
	}
	if err := m.SetMatchLength(settings.MatchLength); err != nil {
		return err
	}
	if err := m.SetStyle(settings.Style); err != nil {
		return err
	}
	m.SetSubtitled(settings.Subtitles)
	return nil
}

// Configure applies settings to the live match and stores them as the
// defaults for the next start.
func (s *Service) Configure(ctx context.Context, settings models.Settings) (models.Snapshot, error) {
	snap, err := s.mutate(ctx, "configure", func(m *match.Match) error {
		return applySettings(m, settings)
	})
	if err != nil {
		return snap, err
	}
	if err := s.roster.SaveSettings(&settings); err != nil {
		return snap, fmt.Errorf("failed to save settings: %w", err)
	}
	return snap, nil
}

// RenameTeam changes the name and colour of the team on side. A zero colour
// keeps the current one.
func (s *Service) RenameTeam(ctx context.Context, side match.Side, name string, color match.TeamColor) (models.Snapshot, error) {
	name = strings.TrimSpace(name)
	return s.mutate(ctx, "rename_team", func(m *match.Match) error {
		team, err := m.Team(side)
		if err != nil {
			return err
		}
		if name == "" {
			return ErrEmptyName
		}
		if color != 0 && !color.Valid() {
			return fmt.Errorf("%w: %d", match.ErrInvalidColor, int(color))
		}
		team.SetName(name)
		if color != 0 {
			team.SetColor(color)
		}
		return nil
	})
}

// ApplyPreset puts a stored team identity on side.
func (s *Service) ApplyPreset(ctx context.Context, side match.Side, presetID string) (models.Snapshot, error) {
	preset, err := s.roster.GetPreset(presetID)
	if err != nil {
		return models.Snapshot{}, err
	}
	return s.RenameTeam(ctx, side, preset.Name, preset.Color)
}

// Presets lists the stored team presets.
func (s *Service) Presets() ([]models.TeamPreset, error) {
	return s.roster.ListPresets()
}

// SavePreset stores a preset and announces the roster change.
func (s *Service) SavePreset(preset models.TeamPreset) (*models.TeamPreset, error) {
	saved, err := s.roster.SavePreset(&preset)
	if err != nil {
		return nil, err
	}
	s.publishRoster()
	return saved, nil
}

func (s *Service) DeletePreset(id string) error {
	if err := s.roster.DeletePreset(id); err != nil {
		return err
	}
	s.publishRoster()
	return nil
}

func (s *Service) publishRoster() {
	if s.broker == nil {
		return
	}
	presets, err := s.roster.ListPresets()
	if err != nil {
		logger.Warn("Failed to list presets for roster update", "error", err)
		return
	}
	pubsub.PublishPayload(s.broker, pubsub.EventRosterUpdate, map[string]any{"presets": presets})
}

// Snapshot returns the current state without changing it.
func (s *Service) Snapshot() models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.SnapshotOf(s.match, s.now())
}

// Restore loads the cached snapshot, if any, into the live match so a
// restarted instance picks the score up where it was left. Point history
// and the active flag are not restored.
func (s *Service) Restore(ctx context.Context) (bool, error) {
	snap, ok, err := s.cache.Get(ctx)
	if err != nil || !ok {
		return false, err
	}

	_, err = s.mutate(ctx, "restore", func(m *match.Match) error {
		for _, pair := range []struct {
			team  *match.Team
			state models.TeamState
		}{{m.Left(), snap.Left}, {m.Right(), snap.Right}} {
			if pair.state.Name != "" {
				pair.team.SetName(pair.state.Name)
			}
			if pair.state.Color.Valid() {
				pair.team.SetColor(pair.state.Color)
			}
			pair.team.SetScore(pair.state.Score)
			pair.team.SetWins(pair.state.Wins)
		}
		if err := m.SetServer(snap.Server); err != nil {
			return err
		}
		// Settings last: applying them re-derives the phase from the scores.
		return applySettings(m, snap.Settings)
	})
	if err != nil {
		return false, fmt.Errorf("failed to restore snapshot: %w", err)
	}
	logger.Info("Restored scoreboard from cache", "left", snap.Left.Score, "right", snap.Right.Score)
	return true, nil
}
