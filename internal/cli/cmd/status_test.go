package cmd

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"

	"github.com/kitsunet/livepaper/internal/config"
	"github.com/kitsunet/livepaper/internal/engine"
	"github.com/kitsunet/livepaper/internal/videomap"
)

func TestOfflineStatusReport(t *testing.T) {
	// Point the control socket somewhere empty so no daemon answers.
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())
	viper.Reset()
	config.SetDefaults()

	mapFile := filepath.Join(t.TempDir(), "videomap.conf")
	if err := videomap.Set(mapFile, "DP-1", "/a.mp4"); err != nil {
		t.Fatalf("seeding map file: %v", err)
	}
	viper.Set("map_file", mapFile)
	viper.Set("video", "/default.mp4")

	report, live, err := fetchReport()
	if err != nil {
		t.Fatalf("fetchReport: %v", err)
	}
	if live {
		t.Fatal("no daemon is running, report must be offline")
	}
	if report.DefaultVideo != "/default.mp4" || report.MapFile != mapFile {
		t.Errorf("report = %+v", report)
	}
	if report.Width != 1920 || report.Height != 1080 {
		t.Errorf("medium preset size = %dx%d", report.Width, report.Height)
	}
	if len(report.Outputs) != 1 || report.Outputs[0].ID != "DP-1" ||
		report.Outputs[0].Video != "/a.mp4" || report.Outputs[0].State != "configured" {
		t.Errorf("outputs = %+v", report.Outputs)
	}

	// The compact form is a single line that decodes back losslessly.
	out, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if bytes.ContainsRune(out, '\n') {
		t.Error("compact JSON must not contain newlines")
	}
	var back engine.StatusReport
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Outputs[0].Video != "/a.mp4" {
		t.Errorf("round-trip lost data: %+v", back)
	}
}

func TestResolveMapFilePrecedence(t *testing.T) {
	viper.Reset()
	config.SetDefaults()

	if got := resolveMapFile("/flag.conf"); got != "/flag.conf" {
		t.Errorf("flag value ignored: %q", got)
	}
	viper.Set("map_file", "/config.conf")
	if got := resolveMapFile(""); got != "/config.conf" {
		t.Errorf("config value ignored: %q", got)
	}
	viper.Set("map_file", "")
	if got := resolveMapFile(""); got != videomap.DefaultPath() {
		t.Errorf("default path ignored: %q", got)
	}
}
