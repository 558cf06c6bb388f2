package whatsapp

import (
	"fmt"
	"testing"
)

func TestLRUDeduper(t *testing.T) {
	d, err := NewLRUDeduper(4)
	if err != nil {
		t.Fatal(err)
	}

	if d.Seen("wamid.a") {
		t.Error("first sighting reported as seen")
	}
	if !d.Seen("wamid.a") {
		t.Error("second sighting not reported as seen")
	}
	if d.Seen("") {
		t.Error("empty id must never be considered seen")
	}
}

func TestLRUDeduperEviction(t *testing.T) {
	d, err := NewLRUDeduper(4)
	if err != nil {
		t.Fatal(err)
	}

	d.Seen("wamid.0")
	for i := 1; i <= 4; i++ {
		d.Seen(fmt.Sprintf("wamid.%d", i))
	}

	// Oldest entry fell out of the window, so a redelivery of it would
	// be processed again. This bounds memory, not correctness.
	if d.Seen("wamid.0") {
		t.Error("evicted id still reported as seen")
	}
}
