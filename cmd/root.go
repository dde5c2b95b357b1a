package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/vibelab/vibrascope/configs"
	"github.com/vibelab/vibrascope/internal/app"
)

var (
	configFile string
	verbose    bool
	logLevel   string
	dataDir    string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vibrascope",
	Short: "Tri-axial vibration capture and spectral analysis",
	Long: `vibrascope captures short bursts of tri-axial acceleration, turns
each burst into magnitude spectra and a time-frequency grid, and keeps
a bounded, durable history of captures across restarts.

Key features:
- Self- or external-trigger acquisition runs of exactly N samples
- Per-axis spectra with interpolated peak frequencies
- Spectrogram grids clamped to the top 60 dB of dynamic range
- Fixed-capacity circular record store with evict-on-overflow
- Bulk textual export and live websocket frame streaming`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd, viper.GetViper())
	},
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default is $HOME/.config/vibrascope/vibrascope.yaml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "",
		"data directory (default is $HOME/.local/share/vibrascope)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"verbose output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"log level (debug, info, error)")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			os.Exit(1)
		}

		viper.AddConfigPath(filepath.Join(home, ".config", "vibrascope"))
		viper.AddConfigPath("/etc/vibrascope")
		viper.AddConfigPath("./configs")
		viper.SetConfigName("vibrascope")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("VIBRASCOPE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	configs.SetDefaults()

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
		}
	}
}

// bindFlags binds each cobra flag to its associated viper configuration
func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	var lastErr error

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		envVarSuffix := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))

		if !f.Changed && v.IsSet(f.Name) {
			val := v.Get(f.Name)
			if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", val)); err != nil {
				lastErr = err
			}
		}

		if err := v.BindPFlag(f.Name, f); err != nil {
			lastErr = err
		}

		if err := v.BindEnv(f.Name, "VIBRASCOPE_"+envVarSuffix); err != nil {
			lastErr = err
		}
	})

	return lastErr
}

// newSession loads and validates configuration, then builds the session
// every subcommand operates on
func newSession() (*app.Session, error) {
	cfg, err := configs.LoadConfig()
	if err != nil {
		return nil, err
	}
	if err := configs.ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return app.NewSession(cfg), nil
}
