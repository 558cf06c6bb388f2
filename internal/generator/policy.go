package generator

import "strings"

// HandoffPolicy decides whether a turn needs a human agent, given the
// user's message and the reply about to be delivered. It runs once per
// turn, after the model marker has already been evaluated.
type HandoffPolicy func(userMessage, reply string) bool

// humanRequestPhrases are direct asks for a person, matched case-insensitively.
var humanRequestPhrases = []string{
	"talk to a human",
	"speak to a human",
	"talk to a person",
	"speak to a person",
	"real person",
	"human agent",
	"speak to someone",
	"talk to someone",
	"mit einem menschen",
	"echter mensch",
}

// DefaultHandoffPolicy flags turns where the customer explicitly asks for
// a human.
func DefaultHandoffPolicy(userMessage, _ string) bool {
	msg := strings.ToLower(userMessage)
	for _, phrase := range humanRequestPhrases {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}
