// Package storage owns the lifecycle of every transient file the service
// creates: uploads, converted artifacts, and their age-based sweeping.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/swiftconvert/server/pkg/constants"
	"github.com/swiftconvert/server/pkg/utils"
)

// Store manages the upload and output directories. Filenames are globally
// unique per save, so concurrent requests never collide on a path.
type Store struct {
	UploadDir string
	OutputDir string

	maxFileSize int64
	log         zerolog.Logger
}

// NewStore creates both managed directories under dataDir.
func NewStore(dataDir string, maxFileSize int64, log zerolog.Logger) (*Store, error) {
	s := &Store{
		UploadDir:   filepath.Join(dataDir, constants.UploadDirName),
		OutputDir:   filepath.Join(dataDir, constants.OutputDirName),
		maxFileSize: maxFileSize,
		log:         log,
	}
	for _, dir := range []string{s.UploadDir, s.OutputDir} {
		if err := utils.EnsureDir(dir); err != nil {
			return nil, utils.NewIOError("failed to create storage directory", err).
				WithContext("dir", dir)
		}
	}
	return s, nil
}

// Save writes an upload under a collision-resistant name
// ("{uuid}-{sanitizedName}") and returns the stored path, the normalized
// lowercase extension and the stored filename.
func (s *Store) Save(r io.Reader, filename string) (string, string, string, error) {
	name := utils.SanitizeFileName(filename)
	if name == "" {
		return "", "", "", utils.NewValidationError("no file selected", nil)
	}

	ext := utils.FileExtension(name)
	storedName := fmt.Sprintf("%s-%s", uuid.NewString(), name)
	path := filepath.Join(s.UploadDir, storedName)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, constants.DefaultFilePermission)
	if err != nil {
		return "", "", "", utils.NewIOError("failed to create upload file", err).
			WithContext("path", path)
	}
	_, copyErr := io.Copy(f, r)
	closeErr := f.Close()
	if copyErr != nil || closeErr != nil {
		s.Remove(path)
		if copyErr == nil {
			copyErr = closeErr
		}
		return "", "", "", utils.NewIOError("failed to write upload file", copyErr).
			WithContext("path", path)
	}

	s.log.Info().Str("file", storedName).Msg("file uploaded")
	return path, ext, storedName, nil
}

// CheckSize fails with a validation error and deletes the file as a side
// effect when it exceeds the configured limit.
func (s *Store) CheckSize(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return utils.NewIOError("failed to stat uploaded file", err).
			WithContext("path", path)
	}
	if info.Size() > s.maxFileSize {
		s.Remove(path)
		return utils.NewValidationError(
			fmt.Sprintf("file size exceeds %dMB limit", s.maxFileSize/(1024*1024)), nil).
			WithContext("size", info.Size())
	}
	return nil
}

// Remove deletes a file with bounded retries to ride out transient OS-level
// locks. It reports success instead of raising; callers that need removal to
// be mandatory check the flag and log.
func (s *Store) Remove(path string) bool {
	if err := os.Remove(path); err == nil || os.IsNotExist(err) {
		return true
	} else {
		s.log.Warn().Err(err).Str("path", path).Msg("initial unlink failed, retrying")
	}

	for i := 0; i < constants.RemoveRetries; i++ {
		time.Sleep(constants.RemoveRetryDelay)
		if err := os.Remove(path); err == nil || os.IsNotExist(err) {
			s.log.Info().Str("path", path).Int("retry", i+1).Msg("deleted file after retry")
			return true
		}
	}
	s.log.Warn().Str("path", path).Int("retries", constants.RemoveRetries).
		Msg("failed to delete file, leaving it for the sweep")
	return false
}

// Sweep scans both managed directories non-recursively and removes regular
// files older than maxAge. It runs opportunistically after conversions, not
// on a timer, so staleness is bounded by conversion traffic.
func (s *Store) Sweep(maxAge time.Duration) {
	now := time.Now()
	for _, dir := range []string{s.UploadDir, s.OutputDir} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			s.log.Warn().Err(err).Str("dir", dir).Msg("sweep: cannot read directory")
			continue
		}
		for _, entry := range entries {
			if !entry.Type().IsRegular() {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				continue
			}
			if now.Sub(info.ModTime()) > maxAge {
				path := filepath.Join(dir, entry.Name())
				if s.Remove(path) {
					s.log.Info().Str("path", path).Msg("swept stale file")
				}
			}
		}
	}
}

// OutputPath returns the path of an artifact inside the output directory.
// The name is sanitized to prevent traversal out of the directory.
func (s *Store) OutputPath(name string) string {
	return filepath.Join(s.OutputDir, utils.SanitizeFileName(name))
}

// UploadPath returns the path of a stored upload, sanitized the same way.
func (s *Store) UploadPath(name string) string {
	return filepath.Join(s.UploadDir, utils.SanitizeFileName(name))
}
