package match

import (
	"fmt"

	"github.com/Billy-Davies-2/scorebored/internal/logger"
)

const (
	// tauntCeiling is the highest losing score that still earns a taunt.
	tauntCeiling = 12
	tauntJudge   = "Jacob"

	// gamePointScore is the score at which a leading team is on game point.
	gamePointScore = 20
)

// OferCall returns the commentary for an unanswered run of the given length,
// or "" when the run does not reach a called tier.
func OferCall(g GameLength, run int) string {
	r, ok := g.rules()
	if !ok || r.runLength == 0 {
		return ""
	}
	tier := run / r.runLength
	if tier < 1 || tier > len(r.runCalls) {
		return ""
	}
	return r.runCalls[tier-1]
}

func (m *Match) appendOfer(commentary []string) []string {
	run := m.history.RunCount()
	logger.Debug("Check for ofer", "run", run)

	if call := OferCall(m.gameLength, run); call != "" {
		commentary = append(commentary, call)
	}
	return commentary
}

// appendGamePoint checks both teams; only a leader can pass the lead test.
func (m *Match) appendGamePoint(commentary []string) []string {
	overtime := m.IsOvertime()
	for _, pair := range [][2]*Team{{m.left, m.right}, {m.right, m.left}} {
		team, other := pair[0], pair[1]
		if team.score < gamePointScore || team.score-other.score < 1 {
			continue
		}
		switch {
		case overtime:
			commentary = append(commentary, "Advantage "+team.Name())
		case team.wins == m.matchLength.MinGames()-1:
			commentary = append(commentary, "Match Point "+team.Name())
		default:
			commentary = append(commentary, "Game Point "+team.Name())
		}
	}
	return commentary
}

func (m *Match) announceScore() string {
	server, receiver := m.left, m.right
	if m.server == Right {
		server, receiver = m.right, m.left
	}
	return m.announcer(Scoreline{
		Server:        server.Name(),
		ServerScore:   server.score,
		Receiver:      receiver.Name(),
		ReceiverScore: receiver.score,
	})
}

// ScoreCall is the score phrase for the current state, as spoken after a point.
func (m *Match) ScoreCall() string {
	return m.announceScore()
}

func (m *Match) String() string {
	return fmt.Sprintf("%s %d - %d %s (server %s, %s)",
		m.left.Name(), m.left.score, m.right.score, m.right.Name(), m.server, m.phase)
}
