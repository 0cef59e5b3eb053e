package poller

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// auditTimeLayout names archive files by UTC fetch time at second resolution,
// e.g. station_status_20260203T100500Z.json.
const auditTimeLayout = "20060102T150405Z"

// AuditWriter persists the raw feed response of one successful cycle. The
// archive is independent of the structured store write: ingestion stays
// auditable even if downstream parsing later fails.
type AuditWriter interface {
	Write(fetchedAt time.Time, raw []byte) error
}

// FileAuditWriter writes one file per cycle into a directory, the body echoed
// verbatim with no schema transformation.
type FileAuditWriter struct {
	dir string
}

// NewFileAuditWriter creates the audit directory if needed and returns a
// writer for it.
func NewFileAuditWriter(dir string) (*FileAuditWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create audit dir: %w", err)
	}
	return &FileAuditWriter{dir: dir}, nil
}

// Write stores the raw response under a timestamped file name.
func (w *FileAuditWriter) Write(fetchedAt time.Time, raw []byte) error {
	name := "station_status_" + fetchedAt.UTC().Format(auditTimeLayout) + ".json"
	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write audit file: %w", err)
	}
	return nil
}

// NopAuditWriter discards raw responses. Used when no audit directory is
// configured and in tests that do not care about the archive.
type NopAuditWriter struct{}

// Write discards the response.
func (NopAuditWriter) Write(time.Time, []byte) error { return nil }

// Ensure implementations satisfy AuditWriter.
var (
	_ AuditWriter = (*FileAuditWriter)(nil)
	_ AuditWriter = NopAuditWriter{}
)
