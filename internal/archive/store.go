// Package archive persists parsed records as archive entries and builds
// the reference strings other records use to link to them.
package archive

import (
	"crypto/sha512"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// entryIDLength is the number of base64 characters kept from the
// SHA-512 digest when deriving entry identifiers.
const entryIDLength = 28

// Entry is the JSON envelope written for each archived record. The
// record sits under the data key so references can address it with the
// #data fragment.
type Entry struct {
	Data any `json:"data"`
}

// Store writes archive entries for one upload into a directory.
type Store struct {
	dir      string
	uploadID string
	logger   *slog.Logger
}

// NewStore creates a store rooted at dir for the given upload.
func NewStore(dir, uploadID string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		dir:      dir,
		uploadID: uploadID,
		logger:   logger.With(slog.String("component", "archive_store")),
	}
}

// UploadID returns the upload the store writes into.
func (s *Store) UploadID() string {
	return s.uploadID
}

// Write serializes record under key and returns its reference string.
// The file name is derived from the key as <key>.archive.json.
func (s *Store) Write(key string, record any) (string, error) {
	fileName := FileName(key)
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	payload, err := json.MarshalIndent(Entry{Data: record}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal record %s: %w", key, err)
	}
	path := filepath.Join(s.dir, fileName)
	if err := os.WriteFile(path, payload, 0644); err != nil {
		return "", fmt.Errorf("failed to write archive entry: %w", err)
	}

	ref := Reference(s.uploadID, fileName)
	s.logger.Debug("archived record",
		slog.String("key", key),
		slog.String("file", fileName),
		slog.String("reference", ref))
	return ref, nil
}

// FileName returns the archive file name for a record key.
func FileName(key string) string {
	return key + ".archive.json"
}

// EntryID derives the stable entry identifier for a file within an
// upload: a truncated URL-safe base64 SHA-512 over both names.
func EntryID(uploadID, fileName string) string {
	h := sha512.New()
	h.Write([]byte(uploadID))
	h.Write([]byte{0})
	h.Write([]byte(fileName))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))[:entryIDLength]
}

// Reference builds the archive reference string for a file within an
// upload.
func Reference(uploadID, fileName string) string {
	return fmt.Sprintf("../uploads/%s/archive/%s#data", uploadID, EntryID(uploadID, fileName))
}
