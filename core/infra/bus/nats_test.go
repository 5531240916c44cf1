package bus

import (
	"errors"
	"testing"

	"github.com/nats-io/nats.go"
)

func TestNatsBusPublishErrors(t *testing.T) {
	var nilBus *NatsBus
	if err := nilBus.Publish("agent.events.log", map[string]any{}); !errors.Is(err, errNilBus) {
		t.Fatalf("expected nil bus error, got %v", err)
	}
	b := &NatsBus{nc: &nats.Conn{}}
	if err := b.Publish("", map[string]any{}); !errors.Is(err, errEmptySubject) {
		t.Fatalf("expected empty subject error, got %v", err)
	}
	if err := b.Publish("agent.events.log", func() {}); err == nil {
		t.Fatalf("expected marshal error for unencodable payload")
	}
}

func TestNatsBusSubscribeErrors(t *testing.T) {
	var nilBus *NatsBus
	if err := nilBus.Subscribe("agent.events.log", "", func([]byte) error { return nil }); !errors.Is(err, errNilBus) {
		t.Fatalf("expected nil bus error, got %v", err)
	}
	b := &NatsBus{nc: &nats.Conn{}}
	if err := b.Subscribe("", "", func([]byte) error { return nil }); !errors.Is(err, errEmptySubject) {
		t.Fatalf("expected empty subject error, got %v", err)
	}
	if err := b.Subscribe("agent.events.log", "", nil); err == nil {
		t.Fatalf("expected nil handler error")
	}
}

func TestNatsBusStatusDefaults(t *testing.T) {
	var nilBus *NatsBus
	if nilBus.IsConnected() {
		t.Fatalf("expected disconnected nil bus")
	}
	if status := nilBus.Status(); status != "UNKNOWN" {
		t.Fatalf("expected UNKNOWN status, got %s", status)
	}
	if url := nilBus.ConnectedURL(); url != "" {
		t.Fatalf("expected empty url, got %s", url)
	}
}
