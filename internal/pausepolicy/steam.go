package pausepolicy

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

// SteamDetector scans /proc for a running Steam or Proton game. It matches
// either a cmdline under steamapps/common or a game app id exported in the
// process environment, while skipping the Steam client itself, its helper
// processes, and zombies.
type SteamDetector struct {
	// Debug logs the PID and criterion of the first match.
	Debug bool

	procDir string
}

func NewSteamDetector(debug bool) *SteamDetector {
	return &SteamDetector{Debug: debug, procDir: "/proc"}
}

// Poll reports whether a game process is currently running. Any read error
// (permissions, races with exiting processes) counts as "no game".
func (d *SteamDetector) Poll() bool {
	entries, err := os.ReadDir(d.procDir)
	if err != nil {
		return false
	}
	for _, entry := range entries {
		pid := entry.Name()
		if !isNumeric(pid) {
			continue
		}
		procPath := filepath.Join(d.procDir, pid)
		if isZombie(procPath) {
			continue
		}
		if reason := gameReason(procPath); reason != "" {
			if d.Debug {
				log.Debugf("fullscreen-app match pid=%s reason=%s", pid, reason)
			}
			return true
		}
	}
	return false
}

// gameReason returns a human-readable match criterion, or "" for no match.
func gameReason(procPath string) string {
	raw, err := os.ReadFile(filepath.Join(procPath, "cmdline"))
	if err != nil {
		return ""
	}
	cmd := nulJoin(raw)
	cmdLower := strings.ToLower(cmd)

	// The Steam client and its runtime helpers are not games.
	if strings.Contains(cmdLower, "steamwebhelper") ||
		strings.HasSuffix(cmdLower, "/steam") ||
		strings.Contains(cmdLower, "/steam.sh") ||
		strings.Contains(cmdLower, "steam-runtime") {
		return ""
	}

	if strings.Contains(cmd, "steamapps/common/") {
		return "cmdline:steamapps/common"
	}

	// Proton and Steam games export one of these.
	environ, err := os.ReadFile(filepath.Join(procPath, "environ"))
	if err != nil {
		return ""
	}
	blob := nulJoin(environ)
	for _, key := range []string{"SteamAppId", "SteamGameId", "STEAM_COMPAT_APP_ID"} {
		if v := envValue(blob, key); v != "" && isRealGameAppID(v) {
			return "environ:" + key + "=" + v
		}
	}
	return ""
}

func envValue(blob, key string) string {
	prefix := key + "="
	for _, entry := range strings.Fields(blob) {
		if v, ok := strings.CutPrefix(entry, prefix); ok {
			return v
		}
	}
	return ""
}

// isRealGameAppID filters the Steam client and utility app ids that would
// otherwise pause the wallpaper whenever Steam is open.
func isRealGameAppID(v string) bool {
	id, err := strconv.ParseUint(v, 10, 32)
	if err != nil || id == 0 {
		return false
	}
	switch id {
	case 7, 480, 769, 228980, 229000:
		return false
	}
	return true
}

func isZombie(procPath string) bool {
	stat, err := os.ReadFile(filepath.Join(procPath, "stat"))
	if err != nil {
		return false
	}
	// State is the first field after the parenthesized comm, which can
	// itself contain spaces and parens.
	s := string(stat)
	end := strings.LastIndexByte(s, ')')
	if end < 0 {
		return false
	}
	fields := strings.Fields(s[end+1:])
	return len(fields) > 0 && fields[0] == "Z"
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func nulJoin(raw []byte) string {
	return strings.ReplaceAll(string(raw), "\x00", " ")
}
