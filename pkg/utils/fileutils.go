package utils

import (
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/swiftconvert/server/pkg/constants"
)

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeFileName reduces an uploaded filename to a safe basename: path
// components stripped, unsafe characters replaced, length bounded.
func SanitizeFileName(filename string) string {
	filename = filepath.Base(strings.TrimSpace(filename))
	filename = unsafeNameChars.ReplaceAllString(filename, "_")
	filename = strings.Trim(filename, "._")
	if len(filename) > 200 {
		filename = filename[len(filename)-200:]
	}
	return filename
}

// FileExtension returns the lowercase extension of a path without the dot,
// or "" when the path has none.
func FileExtension(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	return strings.TrimPrefix(ext, ".")
}

// EnsureDir creates directory if it doesn't exist
func EnsureDir(dirPath string) error {
	if dirPath == "" {
		return NewValidationError("directory path cannot be empty", nil)
	}
	return os.MkdirAll(dirPath, constants.DefaultDirPermission)
}

// IsCommandAvailable checks if a command is available in PATH
func IsCommandAvailable(command string) bool {
	_, err := exec.LookPath(command)
	return err == nil
}

// ReplaceExtension swaps the extension of a filename for the given format
// token, e.g. ("scan.pdf", "docx") -> "scan.docx".
func ReplaceExtension(filename, format string) string {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	return base + "." + strings.ToLower(format)
}

// CountWords counts whitespace-separated tokens in text.
func CountWords(text string) int {
	return len(strings.Fields(text))
}
