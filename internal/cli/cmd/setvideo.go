package cmd

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kitsunet/livepaper/internal/cli/cmd/utils"
	"github.com/kitsunet/livepaper/internal/ipc"
	"github.com/kitsunet/livepaper/internal/monitor"
	"github.com/kitsunet/livepaper/internal/videomap"
)

func NewSetVideoCmd() *cobra.Command {
	var (
		monitorID string
		all       bool
		video     string
		except    []string
		mapFile   string
	)

	c := &cobra.Command{
		Use:   "set-video",
		Short: "Map a video file to one output or to all of them",
		Long: `Writes the output-to-video mapping file and, when a daemon is
running, asks it to reload so the change applies without a restart.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (monitorID != "") {
				return fmt.Errorf("exactly one of --monitor or --all is required")
			}
			if !all && len(except) > 0 {
				return fmt.Errorf("--except requires --all")
			}
			video = utils.CanonicalPath(video)
			path := resolveMapFile(mapFile)

			if all {
				targets, err := knownOutputs()
				if err != nil {
					return err
				}
				applied, err := videomap.SetAll(path, targets, video, except)
				if err != nil {
					return err
				}
				log.Infof("mapped %s to %d outputs: %v", video, len(applied), applied)
			} else {
				if err := videomap.Set(path, monitorID, video); err != nil {
					return err
				}
				log.Infof("mapped %s to %s", video, monitorID)
			}

			notifyDaemon()
			return nil
		},
	}

	c.Flags().StringVarP(&monitorID, "monitor", "m", "", "Output to map")
	c.Flags().BoolVarP(&all, "all", "a", false, "Map every known output")
	c.Flags().StringVar(&video, "video", "", "Video file to play")
	c.Flags().StringSliceVar(&except, "except", nil, "Outputs to leave untouched with --all")
	c.Flags().StringVar(&mapFile, "map-file", "", "Mapping file (default from config)")
	_ = c.MarkFlagRequired("video")
	return c
}

func resolveMapFile(flagValue string) string {
	if flagValue != "" {
		return utils.CanonicalPath(flagValue)
	}
	if p := viper.GetString("map_file"); p != "" {
		return utils.CanonicalPath(p)
	}
	return videomap.DefaultPath()
}

// knownOutputs asks the running daemon for its output list, falling back
// to a direct display query when no daemon is up.
func knownOutputs() ([]string, error) {
	if report, err := ipc.SendStatus(); err == nil {
		ids := make([]string, 0, len(report.Outputs))
		for _, out := range report.Outputs {
			ids = append(ids, out.ID)
		}
		return ids, nil
	}

	registry, err := monitor.NewX11Registry()
	if err != nil {
		return nil, fmt.Errorf("no running daemon and no display connection: %w", err)
	}
	defer registry.Close()

	outputs, err := registry.List()
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(outputs))
	for _, out := range outputs {
		ids = append(ids, out.ID)
	}
	return ids, nil
}

// notifyDaemon nudges a running daemon to re-read the mapping file. No
// daemon is fine; the file is picked up at the next start.
func notifyDaemon() {
	if err := ipc.SendReload(); err != nil {
		log.Debugf("no running daemon to notify: %v", err)
		return
	}
	log.Info("running daemon reloaded")
}
