package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
)

// Freshness label constants for cache diagnostics.
const (
	FreshValue    = "Fresh"    // well within its TTL
	AgingValue    = "Aging"    // past the halfway mark
	ExpiringValue = "Expiring" // close to expiry
	ExpiredValue  = "Expired"  // past its TTL, pending deletion
)

// Color variables for console output.
var (
	FreshColor    = color.New(color.FgGreen)             // healthy entry
	AgingColor    = color.New(color.FgYellow)            // standard caution, not bold
	ExpiringColor = color.New(color.FgMagenta)           // strong, distinct warning
	ExpiredColor  = color.New(color.FgRed, color.Bold)   // overdue for deletion
)

// GetPlainFreshness returns a plain text label for a cache entry based
// on how much of its TTL has elapsed (0 = just stored, 1 = expired).
// This is the core logic used for JSON and table printing.
func GetPlainFreshness(ratio float64) string {
	switch {
	case ratio >= 1:
		return ExpiredValue
	case ratio >= 0.85:
		return ExpiringValue
	case ratio >= 0.5:
		return AgingValue
	default:
		return FreshValue
	}
}

// GetColorFreshness returns a colored freshness label for console output.
// It uses GetPlainFreshness to determine the string, and then applies
// the appropriate color.
func GetColorFreshness(ratio float64) string {
	text := GetPlainFreshness(ratio)

	switch text {
	case ExpiredValue:
		return ExpiredColor.Sprint(text)
	case ExpiringValue:
		return ExpiringColor.Sprint(text)
	case AgingValue:
		return AgingColor.Sprint(text)
	default: // "Fresh"
		return FreshColor.Sprint(text)
	}
}

// SanitizeKey maps an arbitrary caller-supplied cache key to a
// filesystem-safe token. Path separators, whitespace and other
// characters with filesystem meaning are replaced with underscores so a
// key can never escape the cache directory or collide with reserved
// names. Sanitization is stable: equal keys always map to equal tokens.
func SanitizeKey(key string) string {
	if key == "" {
		return "_"
	}
	var b strings.Builder
	b.Grow(len(key))
	for _, r := range key {
		switch {
		case r == '/' || r == '\\' || r == ':' || r == '*' || r == '?' ||
			r == '"' || r == '<' || r == '>' || r == '|':
			b.WriteByte('_')
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}
	token := b.String()
	// A leading dot would hide the file; leading dashes confuse tooling.
	if token[0] == '.' || token[0] == '-' {
		token = "_" + token[1:]
	}
	return token
}

// SelectOutputFile returns the appropriate file handle for output,
// based on the provided file path. It falls back to os.Stdout when no
// path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetCacheDirPath returns the directory used for the disk cache.
func GetCacheDirPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".repvault_cache"
	}
	return filepath.Join(homeDir, ".repvault", "cache")
}

// GetSessionDBFilePath returns the path to the SQLite DB file for
// session storage.
func GetSessionDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".repvault_sessions.db"
	}
	return filepath.Join(homeDir, ".repvault", "sessions.db")
}

// GetSnapshotFilePath returns the path of the single-record snapshot
// file used by the default file backend.
func GetSnapshotFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".repvault_session.json"
	}
	return filepath.Join(homeDir, ".repvault", "session.json")
}

// FormatClock renders a duration as m:ss (or h:mm:ss past an hour) for
// timer displays.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Round(time.Second) / time.Second)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// TruncatePath shortens a key or path for table display, keeping the tail.
func TruncatePath(path string, maxWidth int) string {
	if len(path) <= maxWidth {
		return path
	}
	if maxWidth <= 3 {
		return path[len(path)-maxWidth:]
	}
	return "..." + path[len(path)-(maxWidth-3):]
}

// ParseBoolString parses common yes/no spellings into a bool.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true", "1", "on", "":
		return true, nil
	case "no", "n", "false", "0", "off":
		return false, nil
	default:
		return false, fmt.Errorf("cannot interpret %q as boolean", s)
	}
}
