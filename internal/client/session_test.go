package client

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"inkwell/internal/models"
)

func TestSessionPersistsAcrossLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")

	s, err := LoadSession(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Token() != "" || s.User() != nil {
		t.Fatal("missing file should load an empty session")
	}

	user := &models.User{ID: models.NewID(), Name: "Ada", Email: "ada@example.com", Role: models.RoleAuthor, PasswordHash: "$2a$10$hash"}
	if err := s.Save("tok", user); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		t.Errorf("session file is readable by others: %v", perm)
	}
	data, _ := os.ReadFile(path)
	if string(data) == "" || strings.Contains(string(data), "$2a$10$hash") {
		t.Errorf("unexpected file contents: %s", data)
	}

	again, err := LoadSession(path)
	if err != nil {
		t.Fatal(err)
	}
	if again.Token() != "tok" || again.User() == nil || again.User().Email != "ada@example.com" {
		t.Errorf("reloaded: token %q user %+v", again.Token(), again.User())
	}

	if err := again.Clear(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("file not removed: %v", err)
	}
	if err := again.Clear(); err != nil {
		t.Errorf("second clear: %v", err)
	}
}

func TestSessionCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSession(path); err == nil {
		t.Error("expected decode error")
	}
}

func TestSessionUserIsCopy(t *testing.T) {
	s := NewSession()
	if err := s.Save("tok", &models.User{Name: "Before"}); err != nil {
		t.Fatal(err)
	}
	s.User().Name = "After"
	if s.User().Name != "Before" {
		t.Error("session state changed through returned user")
	}
}

func TestNilSessionIsSignedOut(t *testing.T) {
	var s *Session
	if s.Token() != "" || s.User() != nil {
		t.Error("nil session should be empty")
	}
	if err := s.Save("tok", nil); err != nil {
		t.Error(err)
	}
	if err := s.Clear(); err != nil {
		t.Error(err)
	}

	if SessionFrom(context.Background()) != nil {
		t.Error("bare context should carry no session")
	}
}
