package match

import "fmt"

// Talker receives commentary. All phrases passed in one call form a single
// ordered batch. Delivery is fire-and-forget.
type Talker interface {
	Say(phrases ...string)
}

// TalkerFunc adapts a function to Talker.
type TalkerFunc func(phrases ...string)

func (f TalkerFunc) Say(phrases ...string) {
	f(phrases...)
}

type silentTalker struct{}

func (silentTalker) Say(...string) {}

// Scoreline is the score as seen from the serving team.
type Scoreline struct {
	Server        string
	ServerScore   int
	Receiver      string
	ReceiverScore int
}

// Announcer turns the current score into a spoken phrase.
type Announcer func(Scoreline) string

// ServerFirst calls the serving team's score first, as in "7 serving 4",
// and ties as "7 all".
func ServerFirst(s Scoreline) string {
	if s.ServerScore == s.ReceiverScore {
		return fmt.Sprintf("%d all", s.ServerScore)
	}
	return fmt.Sprintf("%d serving %d", s.ServerScore, s.ReceiverScore)
}
