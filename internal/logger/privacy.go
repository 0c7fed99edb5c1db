package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
)

const defaultHashSalt = "budget-tracker-default-salt"

var hashSalt = defaultHashSalt

// InitHashSalt loads LOG_HASH_SALT. Without it a fixed default is used, which
// keeps hashes stable across restarts but is guessable.
func InitHashSalt() {
	if salt := os.Getenv("LOG_HASH_SALT"); salt != "" {
		hashSalt = salt
		return
	}
	Log.Warn().Msg("LOG_HASH_SALT not set, using default salt for log hashing")
}

// HashUserID returns a short salted hash so log lines can be correlated
// without exposing account ids.
func HashUserID(userID int64) string {
	return hashString(fmt.Sprintf("user:%d", userID))
}

// MaskEmail keeps the first character of the local part and the domain.
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return "<invalid>"
	}
	return email[:1] + "***" + email[at:]
}

// SanitizeDescription redacts free text while preserving its size.
func SanitizeDescription(desc string) string {
	if desc == "" {
		return "<empty>"
	}
	return fmt.Sprintf("<redacted: %d words, %d chars>", len(strings.Fields(desc)), len(desc))
}

func hashString(s string) string {
	sum := sha256.Sum256([]byte(s + ":" + hashSalt))
	return hex.EncodeToString(sum[:])[:8]
}
