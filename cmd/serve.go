package cmd

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vibelab/vibrascope/internal/server"
)

var (
	serveListen   string
	serveInterval time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Stream periodic captures to websocket clients",
	Long: `Runs the HTTP surface: /ws streams each completed capture as
transport frames, /metrics exposes prometheus counters, /healthz
reports liveness. A self-triggered capture runs at every interval.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := newSession()
		if err != nil {
			return err
		}
		defer session.Close()

		if serveListen == "" {
			serveListen = session.Config.Server.Listen
		}
		if serveInterval == 0 {
			serveInterval = session.Config.Server.CaptureInterval
		}

		sampler, err := buildSampler(session.Config.Acquisition.MinInterval.Seconds())
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return server.New(session, sampler).Run(ctx, serveListen, serveInterval)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "",
		"listen address (default from config)")
	serveCmd.Flags().DurationVar(&serveInterval, "interval", 0,
		"capture interval (default from config)")
	rootCmd.AddCommand(serveCmd)
}
