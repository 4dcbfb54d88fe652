package cmd

import (
	"os"

	"github.com/lalibi/rodi-kremastos/config"
	"github.com/lalibi/rodi-kremastos/logging"
	"github.com/lalibi/rodi-kremastos/media"
	"github.com/spf13/cobra"
)

var (
	loader     = config.NewLoader()
	configFile string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "rodi",
	Short: "Ρόδι Κρεμαστός - the farm's website",
	Long: `rodi serves and builds the website of the Ρόδι Κρεμαστός pomegranate farm:
a few static pages plus photo and video galleries discovered from the media directory.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.SetupLogging(verbose)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logging.Error("command failed", "err", err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	flags.StringVar(&configFile, "config", "", "Optional YAML config file")
	flags.StringP("target", "t", "", "Deploy target (prod, gh)")
	flags.String("media-dir", "", "Directory holding the about/ and products/ galleries")

	v := loader.Viper()
	_ = v.BindPFlag("target", flags.Lookup("target"))
	_ = v.BindPFlag("media_dir", flags.Lookup("media-dir"))
}

func loadConfig() (*config.Config, error) {
	cfg, err := loader.Load(configFile)
	if err != nil {
		return nil, err
	}
	logging.Debug("config loaded", "target", cfg.Target, "site", cfg.SiteURL, "base", cfg.BasePath)
	return cfg, nil
}

func newLibrary(cfg *config.Config) *media.Library {
	return media.NewLibrary(cfg.MediaDir, cfg.Href("/media/"))
}
