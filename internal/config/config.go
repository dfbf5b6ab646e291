// Package config resolves viper settings into the typed engine
// configuration and validates them before the render loop starts.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Quality string

const (
	QualityLow    Quality = "low"    // 1280x720
	QualityMedium Quality = "medium" // 1920x1080
	QualityHigh   Quality = "high"   // 2560x1440
	QualityUltra  Quality = "ultra"  // 3840x2160
)

type HWAccel string

const (
	HWAccelAuto  HWAccel = "auto"
	HWAccelNvdec HWAccel = "nvdec"
	HWAccelVaapi HWAccel = "vaapi"
	HWAccelNone  HWAccel = "none"
)

// Settings is the full engine configuration. It is resolved once at startup;
// only the mapping file contents change at runtime.
type Settings struct {
	Video         string // default video path
	FallbackVideo string // used when a mapped file cannot be opened
	VideoMap      string // inline "OUTPUT:path;OUTPUT:path" entries
	MapFile       string

	FPS     int
	Speed   float64
	Quality Quality
	Width   int // explicit override, wins over Quality when both set
	Height  int
	HWAccel HWAccel
	Shader  bool

	PauseEnabled      bool
	PausePollInterval time.Duration
	PauseDebug        bool

	TickRate  int
	MaxFrames uint64
	Debug     bool
}

var presetSizes = map[Quality][2]int{
	QualityLow:    {1280, 720},
	QualityMedium: {1920, 1080},
	QualityHigh:   {2560, 1440},
	QualityUltra:  {3840, 2160},
}

var qualityAliases = map[string]Quality{
	"low": QualityLow, "720p": QualityLow,
	"medium": QualityMedium, "1080p": QualityMedium,
	"high": QualityHigh, "1440p": QualityHigh,
	"ultra": QualityUltra, "4k": QualityUltra, "2160p": QualityUltra,
}

// ParseQuality maps a preset name or resolution alias to a Quality.
func ParseQuality(raw string) (Quality, error) {
	q, ok := qualityAliases[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return "", fmt.Errorf("unknown quality preset %q (want low/720p, medium/1080p, high/1440p, ultra/4k)", raw)
	}
	return q, nil
}

// ParseHWAccel maps a hardware decode mode name, accepting the cuda alias.
func ParseHWAccel(raw string) (HWAccel, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "auto":
		return HWAccelAuto, nil
	case "nvdec", "cuda":
		return HWAccelNvdec, nil
	case "vaapi":
		return HWAccelVaapi, nil
	case "none":
		return HWAccelNone, nil
	default:
		return "", fmt.Errorf("unknown hwaccel mode %q (want auto, nvdec, vaapi or none)", raw)
	}
}

// FromViper builds Settings from the resolved viper state. Any error here is
// a configuration error; the caller exits before the render loop starts.
func FromViper() (Settings, error) {
	quality, err := ParseQuality(viper.GetString("quality"))
	if err != nil {
		return Settings{}, err
	}
	hwaccel, err := ParseHWAccel(viper.GetString("hwaccel"))
	if err != nil {
		return Settings{}, err
	}

	s := Settings{
		Video:             viper.GetString("video"),
		FallbackVideo:     viper.GetString("fallback_video"),
		VideoMap:          viper.GetString("video_map"),
		MapFile:           viper.GetString("map_file"),
		FPS:               viper.GetInt("fps"),
		Speed:             viper.GetFloat64("speed"),
		Quality:           quality,
		Width:             viper.GetInt("width"),
		Height:            viper.GetInt("height"),
		HWAccel:           hwaccel,
		Shader:            viper.GetBool("shader"),
		PauseEnabled:      viper.GetBool("pause_on_fullscreen_app"),
		PausePollInterval: time.Duration(viper.GetInt("pause_poll_ms")) * time.Millisecond,
		PauseDebug:        viper.GetBool("pause_debug"),
		TickRate:          viper.GetInt("framerate_limit"),
		MaxFrames:         viper.GetUint64("max_frames"),
		Debug:             viper.GetBool("debug"),
	}
	return s, s.Validate()
}

// Validate rejects settings the engine cannot run with.
func (s Settings) Validate() error {
	if s.FPS <= 0 {
		return fmt.Errorf("fps must be > 0, got %d", s.FPS)
	}
	if s.Speed <= 0 {
		return fmt.Errorf("speed must be > 0, got %v", s.Speed)
	}
	if s.TickRate <= 0 {
		return fmt.Errorf("framerate_limit must be > 0, got %d", s.TickRate)
	}
	if (s.Width < 0) || (s.Height < 0) {
		return fmt.Errorf("width/height must not be negative, got %dx%d", s.Width, s.Height)
	}
	if (s.Width == 0) != (s.Height == 0) {
		return fmt.Errorf("width and height must be set together, got %dx%d", s.Width, s.Height)
	}
	if s.PauseEnabled && s.PausePollInterval < 100*time.Millisecond {
		return fmt.Errorf("pause_poll_ms must be >= 100, got %v", s.PausePollInterval)
	}
	return nil
}

// Resolution returns the decode target size: the explicit override when set,
// otherwise the quality preset, clamped to the backend texture limit while
// preserving aspect ratio.
func (s Settings) Resolution(maxTextureSize int) (int, int) {
	w, h := s.Width, s.Height
	if w == 0 || h == 0 {
		size := presetSizes[s.Quality]
		w, h = size[0], size[1]
	}
	return clamp(w, h, maxTextureSize)
}

func clamp(w, h, max int) (int, int) {
	if max <= 0 {
		return w, h
	}
	if w <= max && h <= max {
		return w, h
	}
	if w >= h {
		h = h * max / w
		w = max
	} else {
		w = w * max / h
		h = max
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// SetDefaults registers the viper defaults shared by every subcommand.
func SetDefaults() {
	viper.SetDefault("video", "")
	viper.SetDefault("fallback_video", "")
	viper.SetDefault("video_map", "")
	viper.SetDefault("map_file", "")
	viper.SetDefault("fps", 30)
	viper.SetDefault("speed", 1.0)
	viper.SetDefault("quality", "medium")
	viper.SetDefault("width", 0)
	viper.SetDefault("height", 0)
	viper.SetDefault("hwaccel", "auto")
	viper.SetDefault("shader", true)
	viper.SetDefault("pause_on_fullscreen_app", true)
	viper.SetDefault("pause_poll_ms", 1500)
	viper.SetDefault("pause_debug", false)
	viper.SetDefault("framerate_limit", 60)
	viper.SetDefault("max_frames", 0)
	viper.SetDefault("debug", false)
}
