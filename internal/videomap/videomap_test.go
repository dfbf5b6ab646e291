package videomap

import (
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"
)

func TestParseSkipsJunk(t *testing.T) {
	contents := `# comment
DP-1=/videos/a.mp4

not-an-entry
 HDMI-1 = /videos/b.mp4
=missing-output
DP-2=
`
	got := Parse(contents)
	want := map[string]string{
		"DP-1":   "/videos/a.mp4",
		"HDMI-1": "/videos/b.mp4",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Parse() = %v, want %v", got, want)
	}
}

func TestParseInline(t *testing.T) {
	got := ParseInline("DP-1:/a.mp4; HDMI-1 : /b.mp4 ;;bad-entry;:nope;X:")
	want := map[string]string{
		"DP-1":   "/a.mp4",
		"HDMI-1": "/b.mp4",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseInline() = %v, want %v", got, want)
	}
}

func TestRoundTrip(t *testing.T) {
	entries := map[string]string{
		"DP-1":     "/videos/a.mp4",
		"HDMI-A-1": "/videos/b.mp4",
		"eDP-1":    "/videos/c with spaces.mp4",
	}
	got := Parse(Serialize(entries))
	if !reflect.DeepEqual(got, entries) {
		t.Errorf("round trip = %v, want %v", got, entries)
	}
}

func TestMergeFileWins(t *testing.T) {
	inline := map[string]string{"DP-1": "/inline.mp4", "DP-2": "/inline2.mp4"}
	file := map[string]string{"DP-1": "/file.mp4"}
	got := Merge(inline, file)
	if got["DP-1"] != "/file.mp4" {
		t.Errorf("file entry should win, got %q", got["DP-1"])
	}
	if got["DP-2"] != "/inline2.mp4" {
		t.Errorf("inline-only entry lost, got %q", got["DP-2"])
	}
}

func TestResolveDefault(t *testing.T) {
	m := Map{
		Entries: map[string]string{"DP-1": "/a.mp4"},
		Default: "/fallback.mp4",
	}
	if got := m.Resolve("DP-1"); got != "/a.mp4" {
		t.Errorf("Resolve(DP-1) = %q", got)
	}
	if got := m.Resolve("HDMI-1"); got != "/fallback.mp4" {
		t.Errorf("Resolve(HDMI-1) = %q, want default", got)
	}
	if got := (Map{}).Resolve("HDMI-1"); got != "" {
		t.Errorf("Resolve with no default = %q, want empty", got)
	}
}

func TestSetAndUnset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "videomap.conf")

	if err := Set(path, "DP-1", "/a.mp4"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := Set(path, "HDMI-1", "/b.mp4"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got := Load(path); got["DP-1"] != "/a.mp4" || got["HDMI-1"] != "/b.mp4" {
		t.Fatalf("Load after Set = %v", got)
	}

	removed, err := Unset(path, "DP-1")
	if err != nil || !removed {
		t.Fatalf("Unset(DP-1) = %v, %v", removed, err)
	}
	removed, err = Unset(path, "DP-1")
	if err != nil || removed {
		t.Fatalf("second Unset(DP-1) = %v, %v, want false", removed, err)
	}
	got := Load(path)
	if _, ok := got["DP-1"]; ok {
		t.Errorf("DP-1 still present after Unset: %v", got)
	}
	if got["HDMI-1"] != "/b.mp4" {
		t.Errorf("HDMI-1 mutated by Unset(DP-1): %v", got)
	}
}

func TestSetRejectsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "videomap.conf")
	if err := Set(path, "", "/a.mp4"); err == nil {
		t.Error("Set with empty output should fail")
	}
	if err := Set(path, "DP-1", " "); err == nil {
		t.Error("Set with empty video should fail")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("rejected Set should not create the map file")
	}
}

func TestSetAllExceptIsPostFilter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "videomap.conf")
	if err := Set(path, "DP-2", "/old.mp4"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	applied, err := SetAll(path, []string{"DP-1", "DP-2", "HDMI-1"}, "/new.mp4", []string{"DP-2"})
	if err != nil {
		t.Fatalf("SetAll: %v", err)
	}
	sort.Strings(applied)
	if !reflect.DeepEqual(applied, []string{"DP-1", "HDMI-1"}) {
		t.Errorf("applied = %v", applied)
	}

	got := Load(path)
	want := map[string]string{
		"DP-1":   "/new.mp4",
		"DP-2":   "/old.mp4", // excluded, keeps its existing entry
		"HDMI-1": "/new.mp4",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Load = %v, want %v", got, want)
	}
}

func TestUnsetAllKeepsExceptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "videomap.conf")
	for output, video := range map[string]string{
		"DP-1": "/a.mp4", "DP-2": "/b.mp4", "HDMI-1": "/c.mp4",
	} {
		if err := Set(path, output, video); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}

	removed, err := UnsetAll(path, []string{"HDMI-1"})
	if err != nil {
		t.Fatalf("UnsetAll: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
	got := Load(path)
	if !reflect.DeepEqual(got, map[string]string{"HDMI-1": "/c.mp4"}) {
		t.Errorf("Load = %v", got)
	}
}
