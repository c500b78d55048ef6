package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/syuuma-ito/whisper-app/internal/gui"
	"github.com/syuuma-ito/whisper-app/internal/session"
)

var guiCmd = &cobra.Command{
	Use:   "gui",
	Short: "Launch the graphical interface in a browser",
	Long: `Launch the transcription GUI.

A local web server is started and the interface is served to the
browser. Pick a file, start the transcription, and watch progress;
the transcript is saved next to the input file unless an output
directory is configured.

Examples:
  whisper-app gui
  whisper-app gui --addr 127.0.0.1:9000
  whisper-app gui --model small --device cpu`,
	RunE: runGUI,
}

func init() {
	rootCmd.AddCommand(guiCmd)

	addModelFlags(guiCmd)
	guiCmd.Flags().String("addr", "", "Listen address for the GUI server")
}

func runGUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.HTTPAddr = addr
	}

	transcriber, err := newTranscriber(cmd, cfg)
	if err != nil {
		return err
	}

	controller := session.NewController(session.Config{
		Transcriber: transcriber,
		OutputDir:   cfg.OutputDir,
		Logger:      logger,
	})

	server := gui.NewServer(controller, gui.Settings{
		Provider:    cfg.Provider,
		Model:       cfg.Model,
		ComputeType: cfg.ComputeType,
		Device:      cfg.ResolveDevice(),
		Language:    cfg.Language,
		OutputDir:   cfg.OutputDir,
	}, logger)

	ctx, stop := signal.NotifyContext(
		cmd.Context(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	logger.Infow("starting GUI server",
		"addr", cfg.HTTPAddr,
		"provider", cfg.Provider,
		"model", cfg.Model,
	)

	return server.Run(ctx, cfg.HTTPAddr)
}
