// Package retention writes the audit manifest created after every
// successful blue-green migration.
package retention

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Junhan0037/SearchFoundry/internal/model"
)

// Recorder writes retention manifests under a configured base directory.
type Recorder struct {
	baseDir string
}

// New wraps baseDir in a Recorder. An empty baseDir defaults to "./reports".
func New(baseDir string) *Recorder {
	if baseDir == "" {
		baseDir = "./reports"
	}
	return &Recorder{baseDir: baseDir}
}

// Record writes reports/reindex/{utc_timestamp}_{targetIndex}/manifest.md
// and returns its path.
func (r *Recorder) Record(m model.RetentionManifest) (string, error) {
	ts := m.Timestamp.UTC().Format("20060102_150405")
	dir := filepath.Join(r.baseDir, "reindex", fmt.Sprintf("%s_%s", ts, m.TargetIndex))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating retention directory: %w", err)
	}

	path := filepath.Join(dir, "manifest.md")
	content := renderManifest(m)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("writing retention manifest: %w", err)
	}

	return path, nil
}

func renderManifest(m model.RetentionManifest) string {
	return fmt.Sprintf(`# Reindex Retention Manifest

- **Timestamp**: %s
- **Source index**: %s
- **Target index**: %s
- **Previous read alias target(s)**: %s
- **Previous write alias target(s)**: %s
- **Source count**: %d
- **Target count**: %d

The previous index (%s) is retained and has not been deleted; it remains
available for rollback via the Rollback Service.
`,
		m.Timestamp.UTC().Format(time.RFC3339),
		m.SourceIndex,
		m.TargetIndex,
		joinOrNone(m.AliasBefore.ReadTargets),
		joinOrNone(m.AliasBefore.WriteTargets),
		m.SourceCount,
		m.TargetCount,
		m.SourceIndex,
	)
}

func joinOrNone(targets []string) string {
	if len(targets) == 0 {
		return "(none)"
	}
	out := targets[0]
	for _, t := range targets[1:] {
		out += ", " + t
	}
	return out
}
