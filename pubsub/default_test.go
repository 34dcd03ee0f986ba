package pubsub_test

import (
	"errors"
	"testing"

	"github.com/erlorenz/go-hub/pubsub"
)

func TestDefault(t *testing.T) {
	hub := pubsub.Default()
	if hub == nil {
		t.Fatal("Default returned nil")
	}
	if pubsub.Default() != hub {
		t.Error("Default should return the same hub on every call")
	}

	owner := &component{name: "sugar"}
	var got string
	pubsub.Subscribe(hub, owner, "", func(s string) error {
		got = s
		return nil
	})
	defer hub.Unsubscribe(owner)

	if !pubsub.Exists[string](hub, owner) {
		t.Fatal("expected subscription on the default hub")
	}
	if err := pubsub.PublishFrom(hub, owner, "", "hello"); err != nil {
		t.Fatal(err)
	}
	if got != "hello" {
		t.Errorf("expected hello, got %q", got)
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg, err := pubsub.LoadConfig()
		if err != nil {
			t.Fatal(err)
		}
		if cfg != pubsub.DefaultConfig() {
			t.Errorf("expected %+v, got %+v", pubsub.DefaultConfig(), cfg)
		}
	})

	t.Run("Env", func(t *testing.T) {
		t.Setenv("PUBSUB_NAME", "events")
		t.Setenv("PUBSUB_LOG_LEVEL", "debug")

		cfg, err := pubsub.LoadConfig()
		if err != nil {
			t.Fatal(err)
		}
		if want := "events"; cfg.Name != want {
			t.Errorf("Name: wanted %s, got %s", want, cfg.Name)
		}
		if want := "debug"; cfg.LogLevel != want {
			t.Errorf("LogLevel: wanted %s, got %s", want, cfg.LogLevel)
		}

		hub := pubsub.New(pubsub.WithConfig(cfg))
		if hub.Name() != "events" {
			t.Errorf("expected hub name events, got %s", hub.Name())
		}
	})

	t.Run("UnknownLevel", func(t *testing.T) {
		t.Setenv("PUBSUB_LOG_LEVEL", "chatty")

		_, err := pubsub.LoadConfig()
		if !errors.Is(err, pubsub.ErrUnknownLogLevel) {
			t.Errorf("expected ErrUnknownLogLevel, got %v", err)
		}
	})
}
