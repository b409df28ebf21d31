package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/amazon-ion/ion-go/ion"
	"github.com/maruel/natural"

	"cn1css/resfile"
)

const snapshotVersion = 1

type checksumEntry struct {
	Name string `ion:"name"`
	Sum  string `ion:"sum"`
}

type snapshot struct {
	Version int             `ion:"version"`
	Entries []checksumEntry `ion:"entries"`
}

// SnapshotPath returns location of selector checksums of a stylesheet.
func SnapshotPath(stylesheet string) string {
	return stylesheet + ".checksums"
}

// LoadSnapshot reads element checksums of previous build. Missing file is
// an empty snapshot, unreadable one is reported as ErrCacheCorruption
// together with empty snapshot.
func LoadSnapshot(path string) (map[string]string, error) {
	res := make(map[string]string)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return res, nil
	}
	if err != nil {
		return res, err
	}
	var s snapshot
	if err := ion.Unmarshal(data, &s); err != nil {
		return res, fmt.Errorf("%w: %s: %w", ErrCacheCorruption, path, err)
	}
	if s.Version != snapshotVersion {
		return res, fmt.Errorf("%w: %s: unsupported version %d", ErrCacheCorruption, path, s.Version)
	}
	for _, e := range s.Entries {
		if e.Name == "" {
			return make(map[string]string), fmt.Errorf("%w: %s: entry without name", ErrCacheCorruption, path)
		}
		res[e.Name] = e.Sum
	}
	return res, nil
}

// SaveSnapshot atomically stores element checksums.
func SaveSnapshot(path string, sums map[string]string) error {
	names := make([]string, 0, len(sums))
	for name := range sums {
		names = append(names, name)
	}
	sort.Sort(natural.StringSlice(names))

	s := snapshot{Version: snapshotVersion, Entries: make([]checksumEntry, 0, len(names))}
	for _, name := range names {
		s.Entries = append(s.Entries, checksumEntry{Name: name, Sum: sums[name]})
	}
	data, err := ion.MarshalBinary(&s)
	if err != nil {
		return fmt.Errorf("unable to encode checksums: %w", err)
	}
	return resfile.WriteAtomic(path, data)
}
