package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/homedeck/homedeck/internal/infrastructure/secrets"
)

// Well-known setting keys. Arbitrary keys are accepted too; these are
// the ones the dashboard reads by name.
const (
	KeyLanguage            = "language"
	KeyTheme               = "theme"
	KeyOnboardingCompleted = "hasCompletedOnboarding"
	KeySpotifyConnected    = "spotifyConnected"
	KeySpotifyAccessToken  = "spotifyAccessToken"
	KeyWiFiPassword        = "wifiPassword"
)

// ErrSettingNotFound is returned when a key has no stored value.
var ErrSettingNotFound = errors.New("settings: not found")

// credential carries a value through the secrets Box; the gocrypt tag
// marks it for AES encryption at rest.
type credential struct {
	Value string `gocrypt:"aes"`
}

// Store is a persisted key-value store for client state. Values are
// JSON-serialised; credential keys are AES-encrypted at rest.
type Store struct {
	db  *sql.DB
	box *secrets.Box
}

// NewStore creates a settings store. box may be a pass-through Box when
// encryption is not configured.
func NewStore(db *sql.DB, box *secrets.Box) *Store {
	return &Store{db: db, box: box}
}

// credentialKeys lists settings whose values never hit the database in
// plain text.
var credentialKeys = map[string]bool{
	KeySpotifyAccessToken: true,
	KeyWiFiPassword:       true,
}

// Set stores a value under key, JSON-serialised. Credential keys are
// encrypted first.
func (s *Store) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshalling setting %s: %w", key, err)
	}

	stored := string(data)
	if credentialKeys[key] {
		cred := credential{Value: stored}
		if err := s.box.Encrypt(&cred); err != nil {
			return fmt.Errorf("encrypting setting %s: %w", key, err)
		}
		stored = cred.Value
	}

	query := `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

	if _, err := s.db.ExecContext(ctx, query, key, stored, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("storing setting %s: %w", key, err)
	}
	return nil
}

// Get loads the value stored under key into out.
func (s *Store) Get(ctx context.Context, key string, out any) error {
	var stored string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&stored)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrSettingNotFound
		}
		return fmt.Errorf("loading setting %s: %w", key, err)
	}

	if credentialKeys[key] {
		cred := credential{Value: stored}
		if err := s.box.Decrypt(&cred); err != nil {
			return fmt.Errorf("decrypting setting %s: %w", key, err)
		}
		stored = cred.Value
	}

	if err := json.Unmarshal([]byte(stored), out); err != nil {
		return fmt.Errorf("unmarshalling setting %s: %w", key, err)
	}
	return nil
}

// GetString is a convenience accessor returning fallback for missing
// keys.
func (s *Store) GetString(ctx context.Context, key, fallback string) string {
	var v string
	if err := s.Get(ctx, key, &v); err != nil {
		return fallback
	}
	return v
}

// GetBool is a convenience accessor returning fallback for missing
// keys.
func (s *Store) GetBool(ctx context.Context, key string, fallback bool) bool {
	var v bool
	if err := s.Get(ctx, key, &v); err != nil {
		return fallback
	}
	return v
}

// Delete removes a setting. Missing keys are a no-op.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM settings WHERE key = ?", key); err != nil {
		return fmt.Errorf("deleting setting %s: %w", key, err)
	}
	return nil
}

// All returns every stored key and its raw JSON value. Credential
// values are omitted; they are read individually, never enumerated.
func (s *Store) All(ctx context.Context) (map[string]json.RawMessage, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM settings ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("listing settings: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	out := make(map[string]json.RawMessage)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scanning setting row: %w", err)
		}
		if credentialKeys[key] {
			continue
		}
		out[key] = json.RawMessage(value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating setting rows: %w", err)
	}
	return out, nil
}

// SetMany stores a settings blob in one call, as forwarded from the
// dashboard's bulk save.
func (s *Store) SetMany(ctx context.Context, values map[string]any) error {
	for key, value := range values {
		if err := s.Set(ctx, key, value); err != nil {
			return err
		}
	}
	return nil
}
