package db

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/moanarentals/moana/domain"
)

func TestLogRepo(t *testing.T) {
	t.Run("should insert and fetch a log", func(t *testing.T) {
		repo, teardown := setupTestDB(t)
		defer teardown()

		id, err := uuid.NewV7()
		if err != nil {
			t.Fatalf("uuid.NewV7() failed: %v", err)
		}

		want := &domain.Log{
			ID:        id,
			Timestamp: time.Now(),
			Level:     "INFO",
			Message:   "Installed 3 precache assets into moana-static-v1",
			Context:   map[string]any{"store": "moana-static-v1"},
		}

		if err := repo.InsertLog(want); err != nil {
			t.Fatalf("wanted: nil\ngot: %v", err)
		}

		logs, err := repo.GetLogs()
		if err != nil {
			t.Fatalf("wanted: nil\ngot: %v", err)
		}
		if len(logs) != 1 {
			t.Fatalf("wanted: 1 log\ngot: %d", len(logs))
		}

		got := logs[0]
		if got.ID != want.ID {
			t.Fatalf("wanted id: %s\ngot: %s", want.ID, got.ID)
		}
		if got.Message != want.Message {
			t.Fatalf("wanted message: %q\ngot: %q", want.Message, got.Message)
		}
		if got.Context["store"] != "moana-static-v1" {
			t.Fatalf("wanted context to survive the round trip\ngot: %v", got.Context)
		}
		if got.RequestID != nil {
			t.Fatalf("wanted: nil request id\ngot: %v", got.RequestID)
		}
	})

	t.Run("should keep the request association", func(t *testing.T) {
		repo, teardown := setupTestDB(t)
		defer teardown()

		id, err := uuid.NewV7()
		if err != nil {
			t.Fatalf("uuid.NewV7() failed: %v", err)
		}
		requestID, err := uuid.NewV7()
		if err != nil {
			t.Fatalf("uuid.NewV7() failed: %v", err)
		}

		entry := &domain.Log{
			ID:        id,
			Timestamp: time.Now(),
			Level:     "ERROR",
			Message:   "Caching http://origin.test/hero.jpg : boom",
			Context:   map[string]any{},
			RequestID: &requestID,
		}

		if err := repo.InsertLog(entry); err != nil {
			t.Fatalf("wanted: nil\ngot: %v", err)
		}

		logs, err := repo.GetLogs()
		if err != nil {
			t.Fatalf("wanted: nil\ngot: %v", err)
		}
		if len(logs) != 1 {
			t.Fatalf("wanted: 1 log\ngot: %d", len(logs))
		}
		if logs[0].RequestID == nil || *logs[0].RequestID != requestID {
			t.Fatalf("wanted request id: %s\ngot: %v", requestID, logs[0].RequestID)
		}
	})
}
