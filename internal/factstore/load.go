package factstore

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// Load reads path and returns a populated Store. A missing file is not an
// error: it returns an empty store so first-run behaves like an empty
// Fact Store. A file that exists but fails to decode is quarantined to
// "<path>.corrupt.<unix-ts>" and Load returns an empty store plus
// ErrCorrupt (wrapped) so the caller can log at error and continue.
func Load(path string, opts ...Option) (*Store, error) {
	store := New(path, opts...)

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return store, nil
		}
		return store, fmt.Errorf("%w: read %s: %v", ErrIO, path, err)
	}

	var onDisk onDiskFormat
	if err := json.Unmarshal(raw, &onDisk); err != nil {
		quarantine := path + ".corrupt." + strconv.FormatInt(store.now().Unix(), 10)
		if renameErr := os.Rename(path, quarantine); renameErr != nil {
			return store, fmt.Errorf("%w: decode failed (%v) and quarantine failed: %v", ErrCorrupt, err, renameErr)
		}
		return store, fmt.Errorf("%w: %s quarantined at %s: %v", ErrCorrupt, path, quarantine, err)
	}

	for _, f := range onDisk.Facts {
		store.facts[f.Key] = f
	}
	return store, nil
}
