package secrets

import (
	"fmt"

	"github.com/firdasafridi/gocrypt"
)

// Box encrypts and decrypts struct fields tagged `gocrypt:"aes"`.
//
// Stored credentials (Spotify tokens, Wi-Fi passwords) pass through a
// Box before persistence so the database never holds them in plain
// text. A zero-value Box (no key) passes values through unchanged,
// which keeps encryption opt-in via configuration.
type Box struct {
	opt *gocrypt.Option
}

// New creates a Box from a 32-character AES-256 key. An empty key
// returns a pass-through Box.
func New(key string) (*Box, error) {
	if key == "" {
		return &Box{}, nil
	}

	aesOpt, err := gocrypt.NewAESOpt(key)
	if err != nil {
		return nil, fmt.Errorf("initialising AES: %w", err)
	}
	return &Box{opt: &gocrypt.Option{AESOpt: aesOpt}}, nil
}

// Enabled reports whether the Box actually encrypts.
func (b *Box) Enabled() bool {
	return b != nil && b.opt != nil
}

// Encrypt encrypts the tagged string fields of entity in place.
func (b *Box) Encrypt(entity any) error {
	if !b.Enabled() {
		return nil
	}
	if err := gocrypt.New(b.opt).Encrypt(entity); err != nil {
		return fmt.Errorf("encrypting fields: %w", err)
	}
	return nil
}

// Decrypt decrypts the tagged string fields of entity in place.
func (b *Box) Decrypt(entity any) error {
	if !b.Enabled() {
		return nil
	}
	if err := gocrypt.New(b.opt).Decrypt(entity); err != nil {
		return fmt.Errorf("decrypting fields: %w", err)
	}
	return nil
}
