package whatsapp

import "strings"

// Command is an agent control command. Plain text from an agent is
// CmdNone and gets forwarded to the customer verbatim.
type Command int

const (
	CmdNone Command = iota
	CmdTakeover
	CmdAI
	CmdDone
	CmdUnknown
)

// ParseCommand classifies agent input. Only messages from allow-listed
// agent numbers are parsed; anything an end user sends is treated as a
// plain message, slash prefix or not.
func ParseCommand(text string) Command {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "/") {
		return CmdNone
	}

	token := trimmed
	if idx := strings.IndexByte(trimmed, ' '); idx > 0 {
		token = trimmed[:idx]
	}

	switch strings.ToLower(token) {
	case "/takeover":
		return CmdTakeover
	case "/ai":
		return CmdAI
	case "/done":
		return CmdDone
	default:
		return CmdUnknown
	}
}
