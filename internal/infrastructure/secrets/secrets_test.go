package secrets

import "testing"

type testCredentials struct {
	AccessToken string `json:"access_token" gocrypt:"aes"`
	Plain       string `json:"plain"`
}

const testKey = "0123456789abcdef0123456789abcdef"

func TestRoundTrip(t *testing.T) {
	box, err := New(testKey)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	creds := testCredentials{AccessToken: "super-secret-token", Plain: "visible"}
	if err := box.Encrypt(&creds); err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}
	if creds.AccessToken == "super-secret-token" {
		t.Error("AccessToken was not encrypted")
	}
	if creds.Plain != "visible" {
		t.Error("untagged field was modified")
	}

	if err := box.Decrypt(&creds); err != nil {
		t.Fatalf("Decrypt() error: %v", err)
	}
	if creds.AccessToken != "super-secret-token" {
		t.Errorf("AccessToken = %q after round trip", creds.AccessToken)
	}
}

func TestPassThroughWithoutKey(t *testing.T) {
	box, err := New("")
	if err != nil {
		t.Fatalf("New(\"\") error: %v", err)
	}
	if box.Enabled() {
		t.Error("empty-key Box should not be enabled")
	}

	creds := testCredentials{AccessToken: "token"}
	if err := box.Encrypt(&creds); err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}
	if creds.AccessToken != "token" {
		t.Error("pass-through Box modified the value")
	}
}

func TestNewRejectsBadKey(t *testing.T) {
	if _, err := New("short"); err == nil {
		t.Error("New() should reject a key that is not valid for AES")
	}
}
