package settings

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/homedeck/homedeck/internal/infrastructure/secrets"
)

const testSecretsKey = "abcdefghijklmnopqrstuvwxyz123456"

func setupStore(t *testing.T, key string) (*Store, *sql.DB) {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	schema := `
		CREATE TABLE settings (
			key         TEXT PRIMARY KEY,
			value       TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		t.Fatalf("failed to create test schema: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	box, err := secrets.New(key)
	if err != nil {
		t.Fatalf("secrets.New() error = %v", err)
	}
	return NewStore(db, box), db
}

func TestSetGetRoundTrip(t *testing.T) {
	store, _ := setupStore(t, "")
	ctx := context.Background()

	if err := store.Set(ctx, KeyLanguage, "de"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := store.Set(ctx, KeyOnboardingCompleted, true); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if got := store.GetString(ctx, KeyLanguage, "en"); got != "de" {
		t.Errorf("language = %q", got)
	}
	if !store.GetBool(ctx, KeyOnboardingCompleted, false) {
		t.Error("onboarding flag lost")
	}
}

func TestGetMissingKey(t *testing.T) {
	store, _ := setupStore(t, "")
	ctx := context.Background()

	var v string
	if err := store.Get(ctx, "ghost", &v); !errors.Is(err, ErrSettingNotFound) {
		t.Errorf("Get(ghost) error = %v, want ErrSettingNotFound", err)
	}
	if got := store.GetString(ctx, "ghost", "fallback"); got != "fallback" {
		t.Errorf("GetString fallback = %q", got)
	}
	if got := store.GetBool(ctx, "ghost", true); !got {
		t.Error("GetBool fallback lost")
	}
}

func TestSetOverwrites(t *testing.T) {
	store, _ := setupStore(t, "")
	ctx := context.Background()

	if err := store.Set(ctx, KeyTheme, "dark"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := store.Set(ctx, KeyTheme, "light"); err != nil {
		t.Fatalf("second Set() error = %v", err)
	}
	if got := store.GetString(ctx, KeyTheme, ""); got != "light" {
		t.Errorf("theme = %q, want light", got)
	}
}

func TestCredentialEncryptedAtRest(t *testing.T) {
	store, db := setupStore(t, testSecretsKey)
	ctx := context.Background()

	token := "BQDe3f-secret-spotify-token"
	if err := store.Set(ctx, KeySpotifyAccessToken, token); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	// The raw row must not contain the plain token.
	var raw string
	if err := db.QueryRow("SELECT value FROM settings WHERE key = ?", KeySpotifyAccessToken).Scan(&raw); err != nil {
		t.Fatalf("raw read error = %v", err)
	}
	if strings.Contains(raw, token) {
		t.Error("credential stored in plain text")
	}

	// But it round-trips through the store.
	if got := store.GetString(ctx, KeySpotifyAccessToken, ""); got != token {
		t.Errorf("token = %q, want original", got)
	}
}

func TestCredentialPassThroughWithoutKey(t *testing.T) {
	store, _ := setupStore(t, "")
	ctx := context.Background()

	if err := store.Set(ctx, KeySpotifyAccessToken, "tok"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got := store.GetString(ctx, KeySpotifyAccessToken, ""); got != "tok" {
		t.Errorf("token = %q", got)
	}
}

func TestDelete(t *testing.T) {
	store, _ := setupStore(t, "")
	ctx := context.Background()

	if err := store.Set(ctx, KeyTheme, "dark"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := store.Delete(ctx, KeyTheme); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	var v string
	if err := store.Get(ctx, KeyTheme, &v); !errors.Is(err, ErrSettingNotFound) {
		t.Errorf("Get() after delete error = %v", err)
	}
	if err := store.Delete(ctx, "ghost"); err != nil {
		t.Errorf("Delete(ghost) error = %v, want nil", err)
	}
}

func TestAllOmitsCredentials(t *testing.T) {
	store, _ := setupStore(t, testSecretsKey)
	ctx := context.Background()

	if err := store.SetMany(ctx, map[string]any{
		KeyLanguage:           "en",
		KeyTheme:              "dark",
		KeySpotifyAccessToken: "secret",
	}); err != nil {
		t.Fatalf("SetMany() error = %v", err)
	}

	all, err := store.All(ctx)
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if _, ok := all[KeySpotifyAccessToken]; ok {
		t.Error("All() enumerated a credential")
	}
	if len(all) != 2 {
		t.Errorf("All() returned %d entries, want 2", len(all))
	}
	if string(all[KeyLanguage]) != `"en"` {
		t.Errorf("language raw = %s", all[KeyLanguage])
	}
}
