// Package videomap owns the persisted output→video mapping: a plain text
// file with one "OUTPUT=/path/to/video.mp4" entry per line, plus inline
// overrides in "OUTPUT:path;OUTPUT:path" form. The engine re-reads the file
// on every hot-reload signal, so edits made by the CLI (or by hand) are
// picked up without restarting the daemon.
package videomap

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const fileHeader = "# OUTPUT=/absolute/path/video.mp4\n"

// DefaultPath returns the mapping file used when none is configured.
func DefaultPath() string {
	home := os.Getenv("HOME")
	if home == "" {
		home = "."
	}
	return filepath.Join(home, ".config", "livepaper", "videomap.conf")
}

// Parse reads mapping entries from file contents. Blank lines, comments and
// malformed lines are skipped; later entries win over earlier duplicates.
func Parse(contents string) map[string]string {
	entries := make(map[string]string)
	for _, line := range strings.Split(contents, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		output, path, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		output = strings.TrimSpace(output)
		path = strings.TrimSpace(path)
		if output == "" || path == "" {
			continue
		}
		entries[output] = path
	}
	return entries
}

// ParseInline parses the "OUTPUT:path;OUTPUT:path" form used for inline
// configuration. Same leniency as Parse.
func ParseInline(raw string) map[string]string {
	entries := make(map[string]string)
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		output, path, ok := strings.Cut(entry, ":")
		if !ok {
			continue
		}
		output = strings.TrimSpace(output)
		path = strings.TrimSpace(path)
		if output == "" || path == "" {
			continue
		}
		entries[output] = path
	}
	return entries
}

// Serialize renders entries in stable order, suitable for writing back to
// the mapping file. Parse(Serialize(m)) == m for any valid map.
func Serialize(entries map[string]string) string {
	outputs := make([]string, 0, len(entries))
	for output := range entries {
		outputs = append(outputs, output)
	}
	sort.Strings(outputs)

	var b strings.Builder
	b.WriteString(fileHeader)
	for _, output := range outputs {
		fmt.Fprintf(&b, "%s=%s\n", output, entries[output])
	}
	return b.String()
}

// Load reads the mapping file. A missing file is not an error; it just
// yields an empty map.
func Load(path string) map[string]string {
	contents, err := os.ReadFile(path)
	if err != nil {
		return map[string]string{}
	}
	return Parse(string(contents))
}

// Merge overlays file entries on top of inline entries; the file wins.
func Merge(inline, file map[string]string) map[string]string {
	merged := make(map[string]string, len(inline)+len(file))
	for k, v := range inline {
		merged[k] = v
	}
	for k, v := range file {
		merged[k] = v
	}
	return merged
}

// Map is the mapping the scheduler reads when (re)building a frame source.
// It is owned by a single goroutine; mutation arrives only through explicit
// commands.
type Map struct {
	Entries map[string]string
	Default string
}

// Resolve returns the video path for an output, falling back to the default
// path. An empty result means "no video configured" and selects the
// procedural pattern.
func (m Map) Resolve(outputID string) string {
	if path, ok := m.Entries[outputID]; ok {
		return path
	}
	return m.Default
}

func save(path string, entries map[string]string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating map directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, []byte(Serialize(entries)), 0o644); err != nil {
		return fmt.Errorf("writing map file %s: %w", path, err)
	}
	return nil
}

// Set writes or replaces one output entry in the mapping file.
func Set(path, output, video string) error {
	if strings.TrimSpace(output) == "" {
		return fmt.Errorf("output id is empty")
	}
	if strings.TrimSpace(video) == "" {
		return fmt.Errorf("video path is empty")
	}
	entries := Load(path)
	entries[output] = video
	return save(path, entries)
}

// SetAll writes the same video for every output in targets, skipping any
// listed in except. The exclusion list is a post-filter on the target set.
// Returns the output ids actually updated.
func SetAll(path string, targets []string, video string, except []string) ([]string, error) {
	if strings.TrimSpace(video) == "" {
		return nil, fmt.Errorf("video path is empty")
	}
	skip := make(map[string]bool, len(except))
	for _, e := range except {
		skip[e] = true
	}
	entries := Load(path)
	applied := make([]string, 0, len(targets))
	for _, output := range targets {
		if skip[output] {
			continue
		}
		entries[output] = video
		applied = append(applied, output)
	}
	if err := save(path, entries); err != nil {
		return nil, err
	}
	return applied, nil
}

// Unset removes one output entry. Reports whether an entry was present.
func Unset(path, output string) (bool, error) {
	entries := Load(path)
	if _, ok := entries[output]; !ok {
		return false, nil
	}
	delete(entries, output)
	return true, save(path, entries)
}

// UnsetAll removes every entry except the listed ones. Returns the number
// of entries removed.
func UnsetAll(path string, except []string) (int, error) {
	keep := make(map[string]bool, len(except))
	for _, e := range except {
		keep[e] = true
	}
	entries := Load(path)
	removed := 0
	for output := range entries {
		if keep[output] {
			continue
		}
		delete(entries, output)
		removed++
	}
	if removed == 0 {
		return 0, nil
	}
	return removed, save(path, entries)
}
