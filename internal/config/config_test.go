package config

import (
	"testing"
	"time"
)

func valid() Settings {
	return Settings{
		FPS:               30,
		Speed:             1.0,
		Quality:           QualityMedium,
		TickRate:          60,
		PauseEnabled:      true,
		PausePollInterval: 1500 * time.Millisecond,
	}
}

func TestParseQuality(t *testing.T) {
	cases := map[string]Quality{
		"low": QualityLow, "720p": QualityLow,
		"Medium": QualityMedium, "1080p": QualityMedium,
		"high": QualityHigh, "1440p": QualityHigh,
		"ULTRA": QualityUltra, "4k": QualityUltra,
	}
	for raw, want := range cases {
		got, err := ParseQuality(raw)
		if err != nil || got != want {
			t.Errorf("ParseQuality(%q) = %v, %v; want %v", raw, got, err, want)
		}
	}
	if _, err := ParseQuality("potato"); err == nil {
		t.Error("ParseQuality(potato) should fail")
	}
}

func TestParseHWAccel(t *testing.T) {
	if got, err := ParseHWAccel("cuda"); err != nil || got != HWAccelNvdec {
		t.Errorf("ParseHWAccel(cuda) = %v, %v", got, err)
	}
	if got, err := ParseHWAccel(""); err != nil || got != HWAccelAuto {
		t.Errorf("ParseHWAccel(\"\") = %v, %v", got, err)
	}
	if _, err := ParseHWAccel("quicksync"); err == nil {
		t.Error("ParseHWAccel(quicksync) should fail")
	}
}

func TestValidate(t *testing.T) {
	s := valid()
	if err := s.Validate(); err != nil {
		t.Fatalf("valid settings rejected: %v", err)
	}

	bad := []func(*Settings){
		func(s *Settings) { s.FPS = 0 },
		func(s *Settings) { s.Speed = -1 },
		func(s *Settings) { s.TickRate = 0 },
		func(s *Settings) { s.Width = 1920 }, // height missing
		func(s *Settings) { s.Width = -1; s.Height = -1 },
		func(s *Settings) { s.PausePollInterval = 10 * time.Millisecond },
	}
	for i, mutate := range bad {
		s := valid()
		mutate(&s)
		if err := s.Validate(); err == nil {
			t.Errorf("case %d: expected validation error for %+v", i, s)
		}
	}
}

func TestResolutionPresetAndOverride(t *testing.T) {
	s := valid()
	s.Quality = QualityUltra
	if w, h := s.Resolution(0); w != 3840 || h != 2160 {
		t.Errorf("ultra preset = %dx%d", w, h)
	}

	s.Width, s.Height = 800, 600
	if w, h := s.Resolution(0); w != 800 || h != 600 {
		t.Errorf("override should win, got %dx%d", w, h)
	}
}

func TestResolutionClampPreservesAspect(t *testing.T) {
	s := valid()
	s.Quality = QualityUltra
	w, h := s.Resolution(1920)
	if w != 1920 || h != 1080 {
		t.Errorf("clamped ultra = %dx%d, want 1920x1080", w, h)
	}

	s.Width, s.Height = 1080, 3840 // portrait override taller than the limit
	w, h = s.Resolution(2048)
	if h != 2048 || w != 1080*2048/3840 {
		t.Errorf("portrait clamp = %dx%d", w, h)
	}
	if w > 2048 || h > 2048 {
		t.Errorf("resolution exceeds backend limit: %dx%d", w, h)
	}
}
