package cmd

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/kitsunet/livepaper/internal/videomap"
)

func NewUnsetVideoCmd() *cobra.Command {
	var (
		monitorID string
		all       bool
		except    []string
		mapFile   string
	)

	c := &cobra.Command{
		Use:   "unset-video",
		Short: "Remove the video mapping for one output or for all of them",
		Long: `Removes entries from the mapping file. Affected outputs fall back
to the default video, or to the procedural pattern when none is set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (monitorID != "") {
				return fmt.Errorf("exactly one of --monitor or --all is required")
			}
			if !all && len(except) > 0 {
				return fmt.Errorf("--except requires --all")
			}
			path := resolveMapFile(mapFile)

			if all {
				removed, err := videomap.UnsetAll(path, except)
				if err != nil {
					return err
				}
				log.Infof("removed %d mappings", removed)
			} else {
				removed, err := videomap.Unset(path, monitorID)
				if err != nil {
					return err
				}
				if !removed {
					log.Infof("no mapping for %s", monitorID)
					return nil
				}
				log.Infof("removed mapping for %s", monitorID)
			}

			notifyDaemon()
			return nil
		},
	}

	c.Flags().StringVarP(&monitorID, "monitor", "m", "", "Output to unmap")
	c.Flags().BoolVarP(&all, "all", "a", false, "Unmap every output")
	c.Flags().StringSliceVar(&except, "except", nil, "Outputs to keep with --all")
	c.Flags().StringVar(&mapFile, "map-file", "", "Mapping file (default from config)")
	return c
}
