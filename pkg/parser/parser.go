// Package parser decodes annotation platform exports: line-oriented
// audit event logs, zipped project archives, and previously exported
// summary documents.
package parser

import (
	"os"
	"path/filepath"
	"strings"
)

// Format represents a recognized input format.
type Format uint8

const (
	FormatUnknown Format = iota
	FormatEventLog
	FormatArchive
	FormatSummary
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatEventLog:
		return "eventlog"
	case FormatArchive:
		return "archive"
	case FormatSummary:
		return "summary"
	default:
		return "unknown"
	}
}

// ParseFormat parses a format string.
func ParseFormat(s string) Format {
	switch strings.ToLower(s) {
	case "eventlog", "event_log", "log", "jsonl":
		return FormatEventLog
	case "archive", "zip", "export":
		return FormatArchive
	case "summary", "report", "json":
		return FormatSummary
	default:
		return FormatUnknown
	}
}

// Config holds common parser configuration.
type Config struct {
	// BufferSize is the line buffer size in bytes for log parsing.
	BufferSize int

	// MaxLineSize caps a single log line; longer lines are skipped.
	MaxLineSize int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		BufferSize:  64 * 1024,
		MaxLineSize: 1024 * 1024,
	}
}

var zipMagic = []byte{'P', 'K', 0x03, 0x04}

// DetectFormat determines the input format from the file extension,
// falling back to content sniffing for ambiguous names.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip":
		return FormatArchive
	case ".log", ".jsonl":
		return FormatEventLog
	case ".json":
		return FormatSummary
	}

	f, err := os.Open(path)
	if err != nil {
		return FormatUnknown
	}
	defer f.Close()

	header := make([]byte, 4)
	n, err := f.Read(header)
	if err != nil || n < 4 {
		return FormatUnknown
	}
	if string(header) == string(zipMagic) {
		return FormatArchive
	}
	if header[0] == '{' {
		return FormatEventLog
	}
	return FormatUnknown
}
