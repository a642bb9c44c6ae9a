package services

import (
	"database/sql"
	"net/url"
	"sync"
	"testing"

	"github.com/isdelr/glossary-be/internal/database"
)

// setupTestDB creates a named shared in-memory SQLite database with the full
// schema. The name is derived from t.Name() so tests stay isolated.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.NewInMemory(url.PathEscape(t.Name()))
	if err != nil {
		t.Fatalf("create test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return db
}

// recordingBroadcaster captures published messages per topic.
type recordingBroadcaster struct {
	mu       sync.Mutex
	messages map[string][]string
}

func newRecordingBroadcaster() *recordingBroadcaster {
	return &recordingBroadcaster{messages: make(map[string][]string)}
}

func (b *recordingBroadcaster) BroadcastTo(topic string, message []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages[topic] = append(b.messages[topic], string(message))
}

func (b *recordingBroadcaster) count(topic string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.messages[topic])
}
