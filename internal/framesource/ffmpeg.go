package framesource

import (
	"fmt"
	"io"
	"os/exec"

	"github.com/kitsunet/livepaper/internal/config"
)

// ffmpegWorker wraps the ffmpeg child process decoding one looping video to
// raw RGBA on stdout.
type ffmpegWorker struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
}

func (w *ffmpegWorker) Frames() io.Reader { return w.stdout }
func (w *ffmpegWorker) Kill() {
	if w.cmd.Process != nil {
		_ = w.cmd.Process.Kill()
	}
}
func (w *ffmpegWorker) Wait() error { return w.cmd.Wait() }

// ffmpegArgs builds the decode command line: loop the input forever, strip
// non-video streams, retime by speed, resample to fps, cover-scale and crop
// to the target size, and emit raw RGBA.
func ffmpegArgs(path string, width, height int, opts Options) []string {
	vf := fmt.Sprintf("setpts=PTS/%.4f,fps=%d,scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d",
		opts.Speed, opts.FPS, width, height, width, height)

	args := []string{"-hide_banner", "-loglevel", "error"}
	switch opts.HWAccel {
	case config.HWAccelNvdec:
		args = append(args, "-hwaccel", "cuda")
	case config.HWAccelVaapi:
		args = append(args, "-hwaccel", "vaapi")
	case config.HWAccelNone:
	default:
		args = append(args, "-hwaccel", "auto")
	}
	return append(args,
		"-stream_loop", "-1",
		"-i", path,
		"-an", "-sn", "-dn",
		"-vf", vf,
		"-pix_fmt", "rgba",
		"-f", "rawvideo",
		"-",
	)
}

func spawnFFmpeg(path string, width, height int, opts Options) (worker, error) {
	cmd := exec.Command("ffmpeg", ffmpegArgs(path, width, height, opts)...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("spawning ffmpeg: %w", err)
	}
	return &ffmpegWorker{cmd: cmd, stdout: stdout}, nil
}
