package match

import (
	"fmt"

	"github.com/Billy-Davies-2/scorebored/internal/logger"
)

// Phase is the explicit lifecycle state of the current game.
type Phase int

const (
	// InProgress accepts points for the current game.
	InProgress Phase = iota
	// GameOver means the last point ended a game. The next increment starts
	// the following game instead of scoring.
	GameOver
	// MatchOver blocks every increment until Reset.
	MatchOver
)

func (p Phase) String() string {
	switch p {
	case InProgress:
		return "in_progress"
	case GameOver:
		return "game_over"
	case MatchOver:
		return "match_over"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

const (
	defaultLeftName  = "Home Team"
	defaultRightName = "Away Team"
)

// Match is the scoring state machine for a two-sided side-out match.
// It is not safe for concurrent use; callers serialize access.
type Match struct {
	talker    Talker
	announcer Announcer

	style       Style
	active      bool
	subtitles   bool
	gameLength  GameLength
	matchLength MatchLength

	left   *Team
	right  *Team
	server Side
	phase  Phase

	listeners []Listener
	history   PointHistory
}

// Option customises a new Match.
type Option func(*Match)

// WithAnnouncer replaces the score phrase formatter.
func WithAnnouncer(a Announcer) Option {
	return func(m *Match) {
		if a != nil {
			m.announcer = a
		}
	}
}

// New creates a match with the default configuration: 21 point games, a
// single game match, LED style and the default home/away teams.
// A nil talker discards commentary.
func New(talker Talker, opts ...Option) *Match {
	if talker == nil {
		talker = silentTalker{}
	}
	m := &Match{
		talker:      talker,
		announcer:   ServerFirst,
		style:       StyleLED,
		gameLength:  TwentyOne,
		matchLength: One,
		left:        NewTeam(Left),
		right:       NewTeam(Right),
	}
	m.left.SetName(defaultLeftName)
	m.left.SetColor(ColorLEDRed)
	m.right.SetName(defaultRightName)
	m.right.SetColor(ColorLEDCyan)

	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Reset zeroes scores and wins, clears the server and history, and
// deactivates the match.
func (m *Match) Reset() {
	for _, t := range []*Team{m.left, m.right} {
		t.SetScore(0)
		t.SetWins(0)
	}
	m.server = NoSide
	m.phase = InProgress
	m.history.Clear()
	m.SetActive(false)
}

// SwitchSides swaps the teams between the left and right slots. The server
// follows its team and the history is cleared.
func (m *Match) SwitchSides() {
	m.left, m.right = m.right, m.left
	m.left.SwitchSides()
	m.right.SwitchSides()
	m.server = m.server.Opposite()
	m.history.Clear()
}

// SwitchServers hands the serve to the other side. No-op while unassigned.
func (m *Match) SwitchServers() {
	m.server = m.server.Opposite()
}

func (m *Match) ClearHistory() {
	m.history.Clear()
}

// History returns the point history, most recent first.
func (m *Match) History() []Point {
	return m.history.Points()
}

func (m *Match) reachedTarget() bool {
	target := m.gameLength.Points()
	return m.left.score >= target || m.right.score >= target
}

func (m *Match) totalScore() int {
	return m.left.score + m.right.score
}

// IsOvertime reports whether a team reached the target without a two point lead.
func (m *Match) IsOvertime() bool {
	return m.reachedTarget() && abs(m.left.score-m.right.score) < 2
}

// IsEndOfGame reports whether a team reached the target with a two point lead.
func (m *Match) IsEndOfGame() bool {
	return m.reachedTarget() && !m.IsOvertime()
}

// Winner returns the team that won the current game, or nil while it is undecided.
func (m *Match) Winner() *Team {
	if !m.IsEndOfGame() {
		return nil
	}
	if m.left.score > m.right.score {
		return m.left
	}
	return m.right
}

// Loser returns the team that lost the current game, or nil while it is undecided.
func (m *Match) Loser() *Team {
	if !m.IsEndOfGame() {
		return nil
	}
	if m.left.score > m.right.score {
		return m.right
	}
	return m.left
}

// IsEndOfMatch reports whether the game is over and a team holds the
// required number of wins.
func (m *Match) IsEndOfMatch() bool {
	if !m.IsEndOfGame() {
		return false
	}
	need := m.matchLength.MinGames()
	return m.left.wins == need || m.right.wins == need
}

// IsServerChange reports whether the serve rotates at the current total.
func (m *Match) IsServerChange() bool {
	total := m.totalScore()
	if total == 0 {
		return false
	}
	r, ok := m.gameLength.rules()
	if !ok {
		return false
	}
	return total%r.rotation == 0 || m.IsOvertime()
}

// Phase returns the lifecycle state of the current game.
func (m *Match) Phase() Phase {
	return m.phase
}

// settle re-derives the phase after an edit that bypasses the normal point
// flow, such as a configuration change or a corrective undo.
func (m *Match) settle() {
	switch {
	case m.IsEndOfMatch():
		m.phase = MatchOver
	case m.IsEndOfGame():
		m.phase = GameOver
	default:
		m.phase = InProgress
	}
}

// clampWins keeps win counts reachable under the current match length. A
// team may hold one win short of the match, plus the game it has just won.
func (m *Match) clampWins() {
	limit := m.matchLength.MinGames() - 1
	winner := m.Winner()
	for _, t := range []*Team{m.left, m.right} {
		most := limit
		if t == winner {
			most++
		}
		if t.wins > most {
			t.wins = most
		}
	}
}

// IncrementTeamScore records a point call for side.
//
// Depending on the phase the call starts the next game, assigns the first
// server or scores a point. Scoring speaks one batch of commentary.
func (m *Match) IncrementTeamScore(side Side) error {
	team, err := m.Team(side)
	if err != nil {
		return err
	}
	logger.Debug("Increment team score", "side", side, "team", team.Name(), "phase", m.phase)

	switch m.phase {
	case MatchOver:
		return nil
	case GameOver:
		m.startNextGame()
		return nil
	}

	if m.server == NoSide {
		m.server = side
		m.talker.Say(team.Name() + " serves first.")
		return nil
	}

	team.score++
	m.history.Record(side, Increment)
	commentary := []string{"Point " + team.Name()}

	if m.IsEndOfGame() {
		commentary = m.finishGame(commentary)
	} else {
		commentary = m.continueGame(commentary)
	}

	logger.Debug("Score",
		"left", m.left.Name(), "left_score", m.left.score,
		"right", m.right.Name(), "right_score", m.right.score,
		"server", m.server)
	m.talker.Say(commentary...)
	return nil
}

// startNextGame confirms a finished game: scores go back to zero, the loser
// serves and the teams change ends.
func (m *Match) startNextGame() {
	loser := m.Loser()
	m.left.score, m.right.score = 0, 0
	if loser != nil {
		m.server = loser.Side()
	} else {
		m.server = NoSide
	}
	m.SwitchSides()
	m.phase = InProgress
}

func (m *Match) finishGame(commentary []string) []string {
	winner, loser := m.Winner(), m.Loser()
	winner.wins++

	if m.IsEndOfMatch() {
		m.phase = MatchOver
		commentary = append(commentary,
			fmt.Sprintf("Congratulations %s, You have Defeated %s.", winner.Name(), loser.Name()))
	} else {
		m.phase = GameOver
		commentary = append(commentary, "Switch sides, losers serve first.")
	}

	switch {
	case loser.score == 0:
		commentary = append(commentary, "Perfect game!")
	case loser.score <= tauntCeiling:
		commentary = append(commentary, fmt.Sprintf("Sorry %s, %s is not impressed!", loser.Name(), tauntJudge))
	}
	return commentary
}

func (m *Match) continueGame(commentary []string) []string {
	overtime := m.IsOvertime()
	change := m.IsServerChange()

	if !overtime && change {
		commentary = m.appendOfer(commentary)
	}
	if change {
		if !overtime {
			commentary = append(commentary, "Change servers!")
		}
		m.SwitchServers()
	}

	switch {
	case !overtime:
		commentary = append(commentary, m.announceScore())
	case m.left.score == m.right.score:
		commentary = append(commentary, "Deuce!")
	}

	return m.appendGamePoint(commentary)
}

// DecrementTeamScore takes a point away from side as a correction. It undoes
// a win the point had just earned and any serve change it caused. No
// commentary is spoken.
func (m *Match) DecrementTeamScore(side Side) error {
	team, err := m.Team(side)
	if err != nil {
		return err
	}
	logger.Debug("Decrement team score", "side", side, "team", team.Name())

	if team.score == 0 {
		return nil
	}

	if m.IsEndOfGame() {
		// The game-ending point never rotated the serve, so only the win is undone.
		if m.Winner() == team && team.wins > 0 {
			team.wins--
		}
	} else if m.IsServerChange() {
		m.SwitchServers()
	}

	m.history.Record(side, Decrement)
	team.score--
	m.settle()
	return nil
}

// IncrementTeamVictory adds a game win to side. It stops one short of the
// match-winning count, so it can never end a match.
func (m *Match) IncrementTeamVictory(side Side) error {
	team, err := m.Team(side)
	if err != nil {
		return err
	}
	if team.wins < m.matchLength.MinGames()-1 {
		team.wins++
	}
	m.settle()
	return nil
}

// DecrementTeamVictory removes a game win from side, never going below zero.
func (m *Match) DecrementTeamVictory(side Side) error {
	team, err := m.Team(side)
	if err != nil {
		return err
	}
	if team.wins > 0 {
		team.wins--
	}
	m.settle()
	return nil
}

// Introduction speaks the matchup before the volley for serve.
func (m *Match) Introduction() {
	m.talker.Say(
		fmt.Sprintf("Todays matchup: %s versus %s", m.left.Name(), m.right.Name()),
		"Volley for serve",
	)
}

// IsActive reports whether the match is running.
func (m *Match) IsActive() bool {
	return m.active
}

// SetActive updates the active flag and then notifies every listener.
func (m *Match) SetActive(active bool) {
	m.active = active
	if active {
		m.notify("started", Listener.MatchStarted)
	} else {
		m.notify("ended", Listener.MatchEnded)
	}
}

// Team returns the team currently standing on side.
func (m *Match) Team(side Side) (*Team, error) {
	switch side {
	case Left:
		return m.left, nil
	case Right:
		return m.right, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrInvalidSide, side)
}

// Left returns the team in the left slot.
func (m *Match) Left() *Team { return m.left }

// Right returns the team in the right slot.
func (m *Match) Right() *Team { return m.right }

func (m *Match) GameLength() GameLength { return m.gameLength }

// SetGameLength changes the target score. The phase is re-derived because
// the current score may now end (or reopen) the game.
func (m *Match) SetGameLength(g GameLength) error {
	if !g.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidGameLength, int(g))
	}
	m.gameLength = g
	m.settle()
	return nil
}

func (m *Match) MatchLength() MatchLength { return m.matchLength }

// SetMatchLength changes the number of games needed. Wins beyond the new
// length are trimmed.
func (m *Match) SetMatchLength(l MatchLength) error {
	if !l.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidMatchLength, int(l))
	}
	m.matchLength = l
	m.clampWins()
	m.settle()
	return nil
}

func (m *Match) Style() Style { return m.style }

func (m *Match) SetStyle(s Style) error {
	if !s.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidStyle, int(s))
	}
	m.style = s
	return nil
}

func (m *Match) IsSubtitled() bool { return m.subtitles }

func (m *Match) SetSubtitled(subtitles bool) { m.subtitles = subtitles }

// Server returns the serving side, or NoSide before the first serve of a game.
func (m *Match) Server() Side { return m.server }

// SetServer assigns the serve directly. NoSide clears it.
func (m *Match) SetServer(side Side) error {
	if side != NoSide && !side.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidSide, side)
	}
	m.server = side
	return nil
}

func (m *Match) Talker() Talker { return m.talker }

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
