// Package session manages server-side user sessions on a pluggable
// storage backend.
package session

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/storage"

	"github.com/SettingsForge/SettingsForge/internal/db/models"
	"github.com/SettingsForge/SettingsForge/internal/token"
)

// sessionIDLen is the length of generated session identifiers (~380 bits).
const sessionIDLen = 64

// Store is the global session store instance.
var Store *session.Store

// Data represents the session data structure.
type Data struct {
	User models.User
}

// Write writes the session data for the given session ID with an expiration duration.
func (s *Data) Write(sessionID string, exp time.Duration) error {
	out, err := json.Marshal(s)
	if err != nil {
		return err
	}

	return Store.Storage.Set(sessionID, out, exp)
}

// Read reads the session data for the given session ID.
func (s *Data) Read(sessionID string) error {
	byteData, err := Store.Storage.Get(sessionID)
	if err != nil {
		return err
	}

	return json.Unmarshal(byteData, s)
}

// Init initializes the session store with the provided storage backend.
func Init(storage storage.Storage) {
	if storage == nil {
		panic("storage is nil")
	}

	Store = session.New(session.Config{
		Storage: storage,
	})
}

// GenerateSessionID generates a new secure random session ID.
func GenerateSessionID() string {
	return token.New(sessionIDLen)
}
