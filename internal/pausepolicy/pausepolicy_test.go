package pausepolicy

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

type fakeDetector struct{ active atomic.Bool }

func (d *fakeDetector) Poll() bool { return d.active.Load() }

func TestPollerEmitsOnlyTransitions(t *testing.T) {
	det := &fakeDetector{}
	p := NewPoller(det, 5*time.Millisecond)
	p.Start()
	defer p.Stop()

	det.active.Store(true)
	select {
	case v := <-p.Changes():
		if !v {
			t.Fatal("expected pause transition")
		}
	case <-time.After(time.Second):
		t.Fatal("no pause transition")
	}

	// Still active: no duplicate events.
	select {
	case v := <-p.Changes():
		t.Fatalf("unexpected event %v while state unchanged", v)
	case <-time.After(50 * time.Millisecond):
	}

	det.active.Store(false)
	select {
	case v := <-p.Changes():
		if v {
			t.Fatal("expected resume transition")
		}
	case <-time.After(time.Second):
		t.Fatal("no resume transition")
	}
}

func TestDisabledAlwaysInactive(t *testing.T) {
	if (Disabled{}).Poll() {
		t.Error("disabled policy must report inactive")
	}
}

func writeProc(t *testing.T, dir, pid, cmdline, environ, stat string) {
	t.Helper()
	p := filepath.Join(dir, pid)
	if err := os.MkdirAll(p, 0o755); err != nil {
		t.Fatal(err)
	}
	for name, contents := range map[string]string{
		"cmdline": cmdline, "environ": environ, "stat": stat,
	} {
		if err := os.WriteFile(filepath.Join(p, name), []byte(contents), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestSteamDetectorMatchesGameCmdline(t *testing.T) {
	dir := t.TempDir()
	writeProc(t, dir, "100",
		"/home/u/.steam/steamapps/common/Game/game.exe\x00-fullscreen",
		"", "100 (game.exe) S 1 100")

	d := &SteamDetector{procDir: dir}
	if !d.Poll() {
		t.Error("steamapps/common cmdline should match")
	}
}

func TestSteamDetectorIgnoresClientAndZombies(t *testing.T) {
	dir := t.TempDir()
	// The Steam client itself.
	writeProc(t, dir, "100", "/usr/lib/steam/steam.sh\x00-silent", "", "100 (steam.sh) S 1 100")
	// A helper process.
	writeProc(t, dir, "101", "/usr/lib/steam/steamwebhelper", "", "101 (steamwebhelper) S 1 101")
	// A zombie game process.
	writeProc(t, dir, "102",
		"/x/steamapps/common/Game/game", "", "102 (game) Z 1 102")
	// Utility app id in environ.
	writeProc(t, dir, "103", "/usr/bin/something", "SteamAppId=480\x00HOME=/home/u", "103 (something) S 1 103")
	// Non-process entries are skipped.
	if err := os.MkdirAll(filepath.Join(dir, "self"), 0o755); err != nil {
		t.Fatal(err)
	}

	d := &SteamDetector{procDir: dir}
	if d.Poll() {
		t.Error("no real game is running")
	}
}

func TestSteamDetectorMatchesProtonEnviron(t *testing.T) {
	dir := t.TempDir()
	writeProc(t, dir, "200", "/usr/bin/wine64\x00game.exe",
		"STEAM_COMPAT_APP_ID=620\x00DISPLAY=:0", "200 (wine64) S 1 200")

	d := &SteamDetector{procDir: dir}
	if !d.Poll() {
		t.Error("proton environ app id should match")
	}
}

func TestSteamDetectorMissingProcDirReportsInactive(t *testing.T) {
	d := &SteamDetector{procDir: "/does/not/exist"}
	if d.Poll() {
		t.Error("probe failure must degrade to inactive")
	}
}

func TestIsRealGameAppID(t *testing.T) {
	for _, denied := range []string{"0", "7", "480", "769", "228980", "229000", "junk", ""} {
		if isRealGameAppID(denied) {
			t.Errorf("app id %q should be rejected", denied)
		}
	}
	if !isRealGameAppID("620") {
		t.Error("real game app id rejected")
	}
}
