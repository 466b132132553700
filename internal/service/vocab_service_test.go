package service

import (
	"errors"
	"path/filepath"
	"testing"

	"talkcoach/internal/database"
	"talkcoach/internal/models"
	"talkcoach/internal/repository"
)

func newVocabTestService(t *testing.T) (*VocabService, *models.User) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}

	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	user, err := repository.NewUserRepository(db).CreateUser("learner@example.com", "hash", "Learner")
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return NewVocabService(repository.NewVocabRepository(db)), user
}

func TestVocabSaveAndList(t *testing.T) {
	svc, user := newVocabTestService(t)

	entry, err := svc.Save(user.ID, "serendipity", "a happy accident", "Meeting you was serendipity.")
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if entry.ID == 0 {
		t.Fatal("expected an entry id")
	}

	entries, err := svc.List(user.ID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Word != "serendipity" {
		t.Errorf("expected word serendipity, got %q", entries[0].Word)
	}
}

func TestVocabDuplicateWord(t *testing.T) {
	svc, user := newVocabTestService(t)

	if _, err := svc.Save(user.ID, "echo", "a repeated sound", ""); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if _, err := svc.Save(user.ID, "Echo", "same word, different case", ""); !errors.Is(err, ErrWordExists) {
		t.Errorf("expected ErrWordExists, got %v", err)
	}
}

func TestVocabMarkKnownAndDelete(t *testing.T) {
	svc, user := newVocabTestService(t)

	entry, err := svc.Save(user.ID, "echo", "a repeated sound", "")
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	updated, err := svc.MarkKnown(user.ID, entry.ID, true)
	if err != nil {
		t.Fatalf("mark known failed: %v", err)
	}
	if !updated.Known {
		t.Error("expected entry marked known")
	}

	if err := svc.Delete(user.ID, entry.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := svc.Delete(user.ID, entry.ID); !errors.Is(err, ErrVocabNotFound) {
		t.Errorf("expected ErrVocabNotFound after delete, got %v", err)
	}

	if _, err := svc.MarkKnown(user.ID+1, entry.ID, true); !errors.Is(err, ErrVocabNotFound) {
		t.Errorf("expected ErrVocabNotFound for foreign user, got %v", err)
	}
}
