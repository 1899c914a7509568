package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestAnonymizeEmail(t *testing.T) {
	got := AnonymizeEmail("ada@example.com")
	if !strings.HasPrefix(got, "user:") {
		t.Errorf("expected user: prefix, got %s", got)
	}
	if strings.Contains(got, "ada") || strings.Contains(got, "example.com") {
		t.Errorf("expected no address material in %s", got)
	}

	// Stable: the same address always hashes to the same value.
	if again := AnonymizeEmail("ada@example.com"); again != got {
		t.Errorf("expected stable hash, got %s then %s", got, again)
	}
	if other := AnonymizeEmail("grace@example.com"); other == got {
		t.Error("expected distinct addresses to hash differently")
	}

	if AnonymizeEmail("") != "" {
		t.Error("expected empty input to stay empty")
	}
}

func TestSanitizeToken(t *testing.T) {
	if got := SanitizeToken(""); got != "<empty>" {
		t.Errorf("unexpected empty token form: %s", got)
	}

	token := "ya29.a0AfH6SMBxxxxxxxx"
	got := SanitizeToken(token)
	if strings.Contains(got, "ya29") {
		t.Errorf("expected no token material in %s", got)
	}
	if got != "[token:22 chars]" {
		t.Errorf("unexpected sanitized form: %s", got)
	}
}

func TestErr(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	logger.Info("with error", Err(errors.New("boom")))
	if !strings.Contains(buf.String(), "error=boom") {
		t.Errorf("expected error attribute, got %s", buf.String())
	}

	buf.Reset()
	logger.Info("without error", Err(nil))
	if strings.Contains(buf.String(), "error=") {
		t.Errorf("expected no error attribute for nil, got %s", buf.String())
	}
}

func TestWithOperation(t *testing.T) {
	var buf bytes.Buffer
	logger := WithOperation(slog.New(slog.NewTextHandler(&buf, nil)), "book")

	logger.Info("done")
	if !strings.Contains(buf.String(), "operation=book") {
		t.Errorf("expected operation attribute, got %s", buf.String())
	}
}
