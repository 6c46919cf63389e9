package services_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"medialookup/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "kitsu", "search", "unexpected status", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"kitsu", "search", "unexpected status"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestHintMapping(t *testing.T) {
	cfgErr := services.Wrap(services.ErrConfiguration, "mal", "search", "missing client id", nil)
	if hint := services.Hint(cfgErr); !strings.Contains(hint, "configuration") {
		t.Fatalf("unexpected hint for configuration error: %q", hint)
	}
	wrapped := fmt.Errorf("outer: %w", services.Wrap(services.ErrExternalTool, "anilist", "search", "", nil))
	if hint := services.Hint(wrapped); !strings.Contains(hint, "retry") {
		t.Fatalf("unexpected hint for external error: %q", hint)
	}
	if hint := services.Hint(nil); hint != "" {
		t.Fatalf("expected empty hint for nil error, got %q", hint)
	}
	if hint := services.Hint(errors.New("dial tcp")); !strings.Contains(hint, "network") {
		t.Fatalf("unexpected default hint: %q", hint)
	}
}
