// Package statepaths names the on-disk layout under a daemon state root,
// so every component agrees on where its durable files live without
// passing raw strings around.
package statepaths

import (
	"os"
	"path/filepath"
)

// Layout resolves the concrete paths under a state root directory.
type Layout struct {
	Root string
}

// New returns a Layout rooted at root.
func New(root string) Layout { return Layout{Root: root} }

// FactsFile is the Fact Store's single JSON file.
func (l Layout) FactsFile() string { return filepath.Join(l.Root, "facts.json") }

// ChangesDir holds one JSONL file per day of ChangeRecords.
func (l Layout) ChangesDir() string { return filepath.Join(l.Root, "changes") }

// BackupsDir holds file backups addressed by (change_id, target).
func (l Layout) BackupsDir() string { return filepath.Join(l.Root, "backups") }

// BackupPath returns the backup path for a given change id and target
// file basename.
func (l Layout) BackupPath(changeID, targetBasename string) string {
	return filepath.Join(l.BackupsDir(), changeID, targetBasename)
}

// LogsDir holds daily-rolled JSONL files per component.
func (l Layout) LogsDir() string { return filepath.Join(l.Root, "logs") }

// OffsetsDir holds one offset file per external log source.
func (l Layout) OffsetsDir() string { return filepath.Join(l.Root, "offsets") }

// OffsetFile returns the offset file path for a given source id.
func (l Layout) OffsetFile(sourceID string) string {
	return filepath.Join(l.OffsetsDir(), sourceID+".offset")
}

// LockFile is the single-instance guard acquired at daemon startup.
func (l Layout) LockFile() string { return filepath.Join(l.Root, "annad.lock") }

// EnsureDirs creates every directory in the layout, and any missing
// parents of the root (0o750; state may contain sensitive evidence).
func (l Layout) EnsureDirs() error {
	for _, dir := range []string{l.Root, l.ChangesDir(), l.BackupsDir(), l.LogsDir(), l.OffsetsDir()} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return err
		}
	}
	return nil
}
