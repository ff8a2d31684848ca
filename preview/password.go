// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package preview

import (
	"github.com/mdhender/phrases/v2"
	"golang.org/x/crypto/bcrypt"
)

// GeneratePhrase produces a human-typeable access phrase for the
// preview server's startup banner, instead of a random token the
// operator has to copy off the terminal byte for byte.
func GeneratePhrase() string {
	return phrases.Generate(4)
}

// HashPhrase returns the bcrypt digest of phrase, stored in memory for
// the lifetime of the preview server.
func HashPhrase(phrase string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(phrase), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPhrase reports whether phrase matches hash.
func CheckPhrase(phrase, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(phrase)) == nil
}
