package utils

import (
	"regexp"
	"strings"
	"time"
)

const (
	timestampLayout   = "20060102_150405"
	defaultUploadName = "uploaded.csv"
)

var unsafeFilenameChars = regexp.MustCompile(`[\\/*?:"<>|]+`)

// SanitizeFilename replaces characters that are unsafe in file names with "_".
func SanitizeFilename(name string) string {
	name = unsafeFilenameChars.ReplaceAllString(strings.TrimSpace(name), "_")
	if name == "" {
		return defaultUploadName
	}
	return name
}

func TimestampPrefix(t time.Time) string {
	return t.Format(timestampLayout)
}

// StoredFilename is the name an upload is preserved under.
func StoredFilename(original string, t time.Time) string {
	return TimestampPrefix(t) + "_" + SanitizeFilename(original)
}

// OriginalFilename strips the timestamp prefix added by StoredFilename.
func OriginalFilename(stored string) string {
	prefixLen := len(timestampLayout) + 1
	if len(stored) <= prefixLen || stored[prefixLen-1] != '_' {
		return stored
	}
	if _, err := time.Parse(timestampLayout, stored[:prefixLen-1]); err != nil {
		return stored
	}
	return stored[prefixLen:]
}
