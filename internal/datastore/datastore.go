// Package datastore persists one JSON document per file. Every Load reads the
// whole file and every Save rewrites it atomically, keeping a few timestamped
// backups of the previous contents.
package datastore

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	json "github.com/goccy/go-json"
)

// Config holds configuration options for a File
type Config struct {
	FilePath    string
	BackupCount int // Number of backup files to keep (0 disables backups)
	Indent      string
}

// DefaultConfig returns a default configuration
func DefaultConfig(filePath string) Config {
	return Config{
		FilePath:    filePath,
		BackupCount: 3,
		Indent:      "  ",
	}
}

// File is a JSON document of type T stored at a single path.
// It is safe for concurrent use within one process.
type File[T any] struct {
	mu           sync.Mutex
	config       Config
	lastChecksum string
}

// New creates a File with default configuration
func New[T any](filePath string) (*File[T], error) {
	return NewWithConfig[T](DefaultConfig(filePath))
}

// NewWithConfig creates a File with custom configuration
func NewWithConfig[T any](config Config) (*File[T], error) {
	if config.FilePath == "" {
		return nil, errors.New("file path cannot be empty")
	}

	dir := filepath.Dir(config.FilePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &File[T]{config: config}, nil
}

// Path returns the backing file path
func (f *File[T]) Path() string {
	return f.config.FilePath
}

// Load reads and decodes the whole document. A missing or empty file yields
// the zero value of T.
func (f *File[T]) Load() (T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load()
}

// Save encodes v and replaces the document.
func (f *File[T]) Save(v T) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.save(v)
}

// Update performs a read-modify-write cycle under the file lock. If fn returns
// an error nothing is written. A document that fails to decode is handed to fn
// as the zero value together with the decode error, so callers may choose to
// start over instead of failing.
func (f *File[T]) Update(fn func(v T, loadErr error) (T, error)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	current, loadErr := f.load()
	next, err := fn(current, loadErr)
	if err != nil {
		return err
	}
	return f.save(next)
}

func (f *File[T]) load() (T, error) {
	var zero T

	data, err := os.ReadFile(f.config.FilePath)
	if errors.Is(err, os.ErrNotExist) {
		return zero, nil
	}
	if err != nil {
		return zero, fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) == 0 {
		return zero, nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return zero, fmt.Errorf("invalid JSON format: %w", err)
	}

	f.lastChecksum = checksum(data)
	return v, nil
}

func (f *File[T]) save(v T) error {
	data, err := json.MarshalIndent(v, "", f.config.Indent)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	sum := checksum(data)
	if sum == f.lastChecksum {
		if _, err := os.Stat(f.config.FilePath); err == nil {
			return nil
		}
	}

	if f.config.BackupCount > 0 {
		// a failed backup never blocks the write itself
		_ = f.createBackup()
	}

	if err := f.writeFileAtomic(data); err != nil {
		return err
	}

	f.lastChecksum = sum
	return nil
}

// writeFileAtomic performs atomic file write using temporary file and rename
func (f *File[T]) writeFileAtomic(data []byte) error {
	tmpFile := f.config.FilePath + ".tmp"

	file, err := os.OpenFile(tmpFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to open temp file: %w", err)
	}

	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return fmt.Errorf("failed to write to temp file: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	file.Close()

	if err := os.Rename(tmpFile, f.config.FilePath); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// createBackup copies the current file to a timestamped sibling
func (f *File[T]) createBackup() error {
	src, err := os.Open(f.config.FilePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer src.Close()

	timestamp := time.Now().Format("20060102_150405.000000000")
	dst, err := os.Create(fmt.Sprintf("%s.backup.%s", f.config.FilePath, timestamp))
	if err != nil {
		return err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return err
	}

	f.cleanupOldBackups()
	return nil
}

// cleanupOldBackups removes old backup files beyond the configured limit
func (f *File[T]) cleanupOldBackups() {
	matches, err := filepath.Glob(f.config.FilePath + ".backup.*")
	if err != nil || len(matches) <= f.config.BackupCount {
		return
	}

	// timestamp suffixes sort chronologically
	sort.Strings(matches)
	for _, path := range matches[:len(matches)-f.config.BackupCount] {
		os.Remove(path)
	}
}

func checksum(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
