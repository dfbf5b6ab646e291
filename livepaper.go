package livepaper

// Version is stamped by the release workflow via -ldflags; the default is
// used for source builds.
var Version = "0.3.0-dev"

// DefaultConfig is written by `livepaper --installconfig`.
var DefaultConfig = `# livepaper configuration
#
# Default video played on every output without an explicit mapping.
# video = "~/Videos/live/default.mp4"

# Fallback video used when a mapped file cannot be opened.
# fallback_video = ""

# Inline output mapping, "OUTPUT:path;OUTPUT:path". The map file wins
# over entries given here.
# video_map = ""

# Mapping file, one "OUTPUT=/absolute/path.mp4" per line.
# map_file = "~/.config/livepaper/videomap.conf"

# Decode rate and playback speed.
fps = 30
speed = 1.0

# Target resolution: low (720p), medium (1080p), high (1440p), ultra (4k).
# Explicit width/height override the preset.
quality = "medium"
# width = 0
# height = 0

# Hardware decode: auto, nvdec, vaapi or none.
hwaccel = "auto"

# Animated procedural shader when no video is mapped.
shader = true

# Pause rendering while a fullscreen game is in the foreground.
pause_on_fullscreen_app = true
pause_poll_ms = 1500
pause_debug = false

# Render tick rate.
framerate_limit = 60

# Stop after this many ticks (0 = run forever). Debugging aid.
max_frames = 0

debug = false
`
