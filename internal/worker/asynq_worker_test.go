package worker

import (
	"testing"
)

func TestPushChannelFor(t *testing.T) {
	if got := pushChannelFor(42); got != "notify:user:42" {
		t.Fatalf("unexpected channel name: %q", got)
	}
}

func TestRegisterNilSafe(t *testing.T) {
	var c *Consumer
	// Must not panic with a nil consumer or mux.
	c.Register(nil)
	NewConsumer(nil).Register(nil)
}
