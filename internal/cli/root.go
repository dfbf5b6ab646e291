package cli

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kitsunet/livepaper"
	"github.com/kitsunet/livepaper/internal/cli/cmd"
	"github.com/kitsunet/livepaper/internal/cli/cmd/utils"
	"github.com/kitsunet/livepaper/internal/config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "livepaper",
	Short: "An animated video wallpaper engine",
	Long: `Livepaper plays a looping video on every connected output, decoded
through ffmpeg and presented with a shared OpenGL context. Run without a
subcommand it starts the engine in the foreground; use --background to
daemonize.`,
	Run: func(c *cobra.Command, args []string) {
		if v, err := c.Flags().GetBool("installconfig"); err == nil && v {
			utils.InstallDefaultConfig()
			return
		}

		if v, err := c.Flags().GetBool("show-config"); err == nil && v {
			log.Infof("Using config file: %v", viper.ConfigFileUsed())
			log.Infof("All settings:")
			utils.PrintJSONColored(viper.AllSettings())
			return
		}

		if v, err := c.Flags().GetBool("version"); err == nil && v {
			babyBlue := lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
			green := lipgloss.NewStyle().Foreground(lipgloss.Color("76"))
			log.Infof("%v version %v",
				babyBlue.Render("livepaper"),
				green.Render(strings.Trim(livepaper.Version, "\n\r ")))
			return
		}

		cmd.StartEngine()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var cfgFile string

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/livepaper/livepaper.toml)")
	rootCmd.PersistentFlags().BoolP("installconfig", "i", false, "Install a default config file")
	rootCmd.PersistentFlags().Bool("show-config", false, "Dump resolved config")
	rootCmd.PersistentFlags().BoolP("background", "b", false, "Run as a daemon")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolP("version", "v", false, "Print version")
	rootCmd.PersistentFlags().BoolP("help", "h", false, "Print usage")

	_ = viper.BindPFlag("background", rootCmd.PersistentFlags().Lookup("background"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))

	rootCmd.AddCommand(cmd.NewSetVideoCmd())
	rootCmd.AddCommand(cmd.NewUnsetVideoCmd())
	rootCmd.AddCommand(cmd.NewStatusCmd())
	rootCmd.AddCommand(cmd.NewStopCmd())
	rootCmd.AddCommand(cmd.NewGenManCmd(rootCmd))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("livepaper")
		viper.SetConfigType("toml")
		viper.AddConfigPath("$HOME/.config/livepaper")
		viper.AddConfigPath("/etc/xdg/livepaper")
	}

	config.SetDefaults()
	viper.SetEnvPrefix("LIVEPAPER")
	viper.AutomaticEnv() // read environment variables that match

	if err := viper.ReadInConfig(); err != nil {
		// Running on defaults alone is fine; a file that exists but
		// does not parse is not.
		if _, notFound := err.(viper.ConfigFileNotFoundError); notFound && cfgFile == "" {
			return
		}
		log.Errorf("reading config: %v", err)
		os.Exit(cmd.ExitConfig)
	}
}
