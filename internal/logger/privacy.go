package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
)

const defaultHashSalt = "costing-console-default-salt"

var hashSalt = defaultHashSalt

// InitHashSalt loads the salt for HashID from LOG_HASH_SALT.
func InitHashSalt() {
	hashSalt = os.Getenv("LOG_HASH_SALT")
	if hashSalt == "" {
		Log.Warn().Msg("LOG_HASH_SALT not set, record ids in logs use the default salt")
		hashSalt = defaultHashSalt
	}
}

// HashID creates a privacy-preserving hash of a record id (staff, client, POC).
// This allows tracking actions on a record without exposing its identity.
func HashID(id string) string {
	if id == "" {
		return "<none>"
	}
	sum := sha256.Sum256([]byte(id + ":" + hashSalt))
	return hex.EncodeToString(sum[:])[:8]
}

// SanitizeText is a general-purpose sanitizer for user-provided text such as
// line item descriptions and client names.
func SanitizeText(text string) string {
	if text == "" {
		return "<empty>"
	}

	if len(text) <= 10 {
		return fmt.Sprintf("<%d chars>", len(text))
	}

	return fmt.Sprintf("%s...<%d chars>", text[:3], len(text))
}

// SanitizeDescription redacts a description but keeps its shape for debugging.
func SanitizeDescription(desc string) string {
	if desc == "" {
		return "<empty>"
	}
	return fmt.Sprintf("<redacted: %d words, %d chars>", len(strings.Fields(desc)), len(desc))
}
