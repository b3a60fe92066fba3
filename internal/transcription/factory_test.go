package transcription_test

import (
	"errors"
	"testing"

	"subburn/internal/config"
	"subburn/internal/services"
	"subburn/internal/testsupport"
	"subburn/internal/transcription"
)

func TestNewSelectsProvider(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	client, err := transcription.New(cfg, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, ok := client.(*transcription.AssemblyAIClient); !ok {
		t.Fatalf("expected AssemblyAI client, got %T", client)
	}

	cfg.Transcription.Provider = config.ProviderOpenAI
	client, err = transcription.New(cfg, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, ok := client.(*transcription.OpenAIClient); !ok {
		t.Fatalf("expected OpenAI client, got %T", client)
	}
}

func TestNewRequiresKey(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Transcription.APIKey = ""
	if _, err := transcription.New(cfg, nil); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
