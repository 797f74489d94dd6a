// Package id generates prefixed unique identifiers for domain entities.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// idLength is the NanoID length. 21 characters of the URL-safe alphabet
// gives collision resistance comparable to UUIDv4 in far fewer bytes.
const idLength = 21

// Generate creates a prefixed unique ID using NanoID.
// Format: prefix-nanoid (e.g., "prod-V1StGXR8_Z5jdHi6B-myT").
//
// Returns an error if the system has insufficient entropy for secure
// random generation.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New(idLength)
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
// Use only where failure should crash the program, e.g. during initialization.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}
