package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"

	"github.com/kitsunet/livepaper/internal/cli/cmd/utils"
	"github.com/kitsunet/livepaper/internal/config"
	"github.com/kitsunet/livepaper/internal/engine"
	"github.com/kitsunet/livepaper/internal/ipc"
	"github.com/kitsunet/livepaper/internal/videomap"
)

func NewStatusCmd() *cobra.Command {
	var (
		asJSON   bool
		asPretty bool
		compact  bool
		file     string
	)

	c := &cobra.Command{
		Use:   "status",
		Short: "Show what each output is playing",
		Long: `Queries the running daemon for per-output state. With no daemon up
it reports the configured mapping instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if asPretty && compact {
				return fmt.Errorf("--pretty and --compact are mutually exclusive")
			}
			if file != "" && !asJSON {
				return fmt.Errorf("--file requires --json")
			}

			report, live, err := fetchReport()
			if err != nil {
				return err
			}

			if !asJSON {
				printHuman(report, live)
				return nil
			}

			var out []byte
			if compact {
				out, err = json.Marshal(report)
			} else {
				out, err = json.MarshalIndent(report, "", "  ")
			}
			if err != nil {
				return err
			}
			out = append(out, '\n')

			if file != "" {
				return os.WriteFile(utils.CanonicalPath(file), out, 0o644)
			}
			if asPretty {
				out = pretty.Color(out, nil)
			}
			_, err = os.Stdout.Write(out)
			return err
		},
	}

	c.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of text")
	c.Flags().BoolVar(&asPretty, "pretty", false, "Colorize JSON output")
	c.Flags().BoolVar(&compact, "compact", false, "Emit JSON on a single line")
	c.Flags().StringVar(&file, "file", "", "Write JSON to a file instead of stdout")
	return c
}

// fetchReport prefers the live daemon. Offline it synthesizes a report
// from the resolved config and mapping file, with outputs in the
// "configured" state since nothing is rendering them.
func fetchReport() (*engine.StatusReport, bool, error) {
	if report, err := ipc.SendStatus(); err == nil {
		return report, true, nil
	}

	cfg, err := config.FromViper()
	if err != nil {
		return nil, false, err
	}
	mapFile := utils.CanonicalPath(cfg.MapFile)
	if mapFile == "" {
		mapFile = videomap.DefaultPath()
	}
	entries := videomap.Merge(videomap.ParseInline(cfg.VideoMap), videomap.Load(mapFile))

	w, h := cfg.Resolution(0)
	report := &engine.StatusReport{
		DefaultVideo: cfg.Video,
		MapFile:      mapFile,
		Quality:      string(cfg.Quality),
		Width:        w,
		Height:       h,
		FPS:          cfg.FPS,
		Speed:        cfg.Speed,
		HWAccel:      string(cfg.HWAccel),
		PauseEnabled: cfg.PauseEnabled,
	}
	for output, video := range entries {
		report.Outputs = append(report.Outputs, engine.OutputStatus{
			ID: output, Video: video, State: "configured",
		})
	}
	sort.Slice(report.Outputs, func(i, j int) bool {
		return report.Outputs[i].ID < report.Outputs[j].ID
	})
	return report, false, nil
}

func printHuman(report *engine.StatusReport, live bool) {
	if !live {
		log.Warn("no running daemon; showing configured mapping")
	}
	log.Infof("quality=%s target=%dx%d fps=%d speed=%v hwaccel=%s",
		report.Quality, report.Width, report.Height, report.FPS, report.Speed, report.HWAccel)
	if report.Paused {
		log.Info("rendering is paused (fullscreen application active)")
	}
	if len(report.Outputs) == 0 {
		log.Info("no outputs")
		return
	}
	for _, out := range report.Outputs {
		video := out.Video
		if video == "" {
			video = "<procedural>"
		}
		suffix := ""
		if out.Degraded {
			suffix = " (degraded)"
		}
		log.Infof("%-12s %s [%s]%s", out.ID, video, out.State, suffix)
	}
}
