package whatsapp

import "testing"

func TestParseCommand(t *testing.T) {
	tests := []struct {
		text string
		want Command
	}{
		{"/takeover", CmdTakeover},
		{"/TAKEOVER", CmdTakeover},
		{"  /takeover  ", CmdTakeover},
		{"/ai", CmdAI},
		{"/done", CmdDone},
		{"/done thanks everyone", CmdDone},
		{"/close", CmdUnknown},
		{"/", CmdUnknown},
		{"hello there", CmdNone},
		{"", CmdNone},
		{"a /takeover mid-sentence", CmdNone},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := ParseCommand(tt.text); got != tt.want {
				t.Errorf("ParseCommand(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}
