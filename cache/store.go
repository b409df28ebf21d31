package cache

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/maruel/natural"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Store is the checksum file of base directory: "name:md5" lines recording
// checksums of produced files. File is exclusively locked while store is
// open, so concurrent builds in the same directory are serialized.
type Store struct {
	path    string
	f       *os.File
	entries map[string]string
	dirty   bool
	log     *zap.Logger
}

// Open creates checksum file if necessary, waits for exclusive lock and
// reads it. Malformed content is logged and discarded.
func Open(path string, log *zap.Logger) (*Store, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("unable to open checksum file: %w", err)
	}
	log.Debug("Waiting for checksum file lock", zap.String("file", path))
	if err := lock(f); err != nil {
		return nil, multierr.Append(fmt.Errorf("unable to lock %s: %w", path, err), f.Close())
	}
	s := &Store{path: path, f: f, log: log}
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, multierr.Combine(fmt.Errorf("unable to read %s: %w", path, err), unlock(f), f.Close())
	}
	if s.entries, err = parseLines(data); err != nil {
		log.Warn("Ignoring checksum file", zap.String("file", path), zap.Error(err))
		s.entries, s.dirty = make(map[string]string), true
	}
	return s, nil
}

func parseLines(data []byte) (map[string]string, error) {
	res := make(map[string]string)
	sc := bufio.NewScanner(bytes.NewReader(data))
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		i := strings.LastIndexByte(line, ':')
		if i <= 0 || len(line)-i-1 != 32 {
			return nil, fmt.Errorf("%w: line %d: %q", ErrCacheCorruption, n, line)
		}
		res[line[:i]] = line[i+1:]
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCacheCorruption, err)
	}
	return res, nil
}

// Path of the checksum file.
func (s *Store) Path() string {
	return s.path
}

// Get returns recorded checksum.
func (s *Store) Get(name string) (string, bool) {
	sum, ok := s.entries[name]
	return sum, ok
}

// Set records checksum.
func (s *Store) Set(name, sum string) {
	if s.entries[name] != sum {
		s.entries[name], s.dirty = sum, true
	}
}

// Flush rewrites checksum file in place if anything changed.
func (s *Store) Flush() error {
	if !s.dirty {
		return nil
	}
	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	sort.Sort(natural.StringSlice(names))
	var buf bytes.Buffer
	for _, name := range names {
		buf.WriteString(name)
		buf.WriteByte(':')
		buf.WriteString(s.entries[name])
		buf.WriteByte('\n')
	}
	if err := s.f.Truncate(0); err != nil {
		return fmt.Errorf("unable to truncate %s: %w", s.path, err)
	}
	if _, err := s.f.WriteAt(buf.Bytes(), 0); err != nil {
		return fmt.Errorf("unable to write %s: %w", s.path, err)
	}
	s.dirty = false
	return nil
}

// Close flushes changes and releases the lock.
func (s *Store) Close() error {
	if s.f == nil {
		return nil
	}
	err := multierr.Combine(s.Flush(), unlock(s.f), s.f.Close())
	s.f = nil
	return err
}

// Backup copies file into backup directory under baseDir as
// "<name>.<unix millis>.bak" and returns path of the copy.
func Backup(file, baseDir, backupDir string, now time.Time) (string, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return "", err
	}
	dir := filepath.Join(baseDir, backupDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("unable to create backup directory: %w", err)
	}
	dst := filepath.Join(dir, filepath.Base(file)+"."+strconv.FormatInt(now.UnixMilli(), 10)+".bak")
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return "", fmt.Errorf("unable to write backup: %w", err)
	}
	return dst, nil
}
