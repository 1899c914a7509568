package google

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func TestFileStore_LoadAbsent(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "google.json"))

	creds, err := store.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if creds != nil {
		t.Errorf("expected nil credentials for absent file, got %+v", creds)
	}
}

func TestFileStore_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "google.json")
	store := NewFileStore(path)

	want := &Credentials{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		Expiry:       time.Date(2025, time.January, 6, 12, 0, 0, 0, time.UTC),
	}
	if err := store.Save(want); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got.AccessToken != want.AccessToken || got.RefreshToken != want.RefreshToken {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if !got.Expiry.Equal(want.Expiry) {
		t.Errorf("expiry mismatch: %s", got.Expiry)
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat failed: %v", err)
		}
		if perm := info.Mode().Perm(); perm != 0o600 {
			t.Errorf("expected 0600 permissions, got %o", perm)
		}
	}
}

func TestFileStore_SaveReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "google.json")
	store := NewFileStore(path)

	if err := store.Save(&Credentials{AccessToken: "old"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := store.Save(&Credentials{AccessToken: "new"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got.AccessToken != "new" {
		t.Errorf("expected replaced credentials, got %s", got.AccessToken)
	}
}

func TestFileStore_Clear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "google.json")
	store := NewFileStore(path)

	if err := store.Save(&Credentials{AccessToken: "access"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("clear failed: %v", err)
	}

	creds, err := store.Load()
	if err != nil {
		t.Fatalf("load after clear failed: %v", err)
	}
	if creds != nil {
		t.Errorf("expected no credentials after clear, got %+v", creds)
	}

	// Clearing again is not an error.
	if err := store.Clear(); err != nil {
		t.Errorf("second clear failed: %v", err)
	}
}
