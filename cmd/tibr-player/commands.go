package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/skratchdot/open-golang/open"
	"github.com/spf13/cobra"
	"github.com/username/tibr-player/internal/azuracast"
	"github.com/username/tibr-player/internal/config"
	"github.com/username/tibr-player/internal/player"
	"github.com/username/tibr-player/internal/radio"
	"github.com/username/tibr-player/internal/tray"
	"github.com/username/tibr-player/pkg/backoff"
	"go.uber.org/zap"
)

// components holds everything a command may need
type components struct {
	channels radio.ChannelSource
	metadata radio.MetadataSource
}

func initializeComponents(cfg *config.Config) *components {
	retrier := backoff.New(cfg.API.RetryAttempts, cfg.API.GetRetryBaseDelay(), logger)
	client := azuracast.NewClient(
		cfg.API.BaseURL,
		cfg.API.UserAgent,
		cfg.API.GetTimeout(),
		retrier,
		logger,
	)
	api := radio.NewAPISource(client)

	// Static channels still get now-playing info when their shortcode is known to the API
	if cfg.HasStaticChannels() {
		logger.Info("Using configured channels", zap.Int("count", len(cfg.Channels)))
		return &components{channels: radio.NewStaticSource(cfg.Channels), metadata: api}
	}

	logger.Info("Using AzuraCast channel discovery", zap.String("api", cfg.API.BaseURL))
	return &components{channels: api, metadata: api}
}

func newPlayer(cfg *config.Config, metadata radio.MetadataSource) *player.Player {
	pipeline := player.NewMPV(player.MPVOptions{
		Binary:      cfg.Player.Binary,
		ClientName:  cfg.Player.ClientName,
		AudioOutput: cfg.Player.AudioOutput,
		Volume:      cfg.Player.Volume,
	}, logger)

	return player.NewPlayer(pipeline, metadata, cfg.Player.GetMetadataInterval(), logger)
}

func runTray(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	comps := initializeComponents(cfg)
	p := newPlayer(cfg, comps.metadata)
	defer p.Close()

	controller := tray.NewController(p, comps.channels, open.Start, logger)
	p.OnMetadata(func(track radio.Track) {
		controller.UpdateTrackInfo(&track)
	})
	p.OnStopped(controller.PlaybackEnded)

	logger.Info("Starting tray", zap.String("app", config.AppName))

	app, err := tray.NewTrayApp(cfg.Tray, controller, logger)
	if err != nil {
		logger.Warn("System tray unavailable", zap.Error(err))
		return fmt.Errorf("%w (use `tibr-player play <channel>` instead)", err)
	}
	app.Run(ctx)

	logger.Info("Tray stopped")
	return nil
}

func channelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "channels",
		Short: "List available channels",
		RunE: func(cmd *cobra.Command, args []string) error {
			comps := initializeComponents(cfg)

			channels, err := comps.channels.Channels(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load channels: %w", err)
			}

			out := cmd.OutOrStdout()
			for _, ch := range channels {
				fmt.Fprintf(out, "%-24s %-12s %s\n", ch.DisplayName(), ch.Shortcode, ch.ListenURL)
			}
			return nil
		},
	}
}

func nowPlayingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "now-playing <shortcode>",
		Short: "Show the track currently on air",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			comps := initializeComponents(cfg)

			track, err := comps.metadata.NowPlaying(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if track == nil {
				fmt.Fprintln(out, tray.LabelNoTrack)
				return nil
			}
			fmt.Fprintln(out, track.Label())
			if track.HasLink() {
				fmt.Fprintln(out, track.Link)
			}
			return nil
		},
	}
}

func playCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "play <channel>",
		Short: "Play a channel without the tray (shortcode or name)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			comps := initializeComponents(cfg)

			channels, err := comps.channels.Channels(ctx)
			if err != nil {
				return fmt.Errorf("failed to load channels: %w", err)
			}
			ch, ok := radio.Find(channels, args[0])
			if !ok {
				return fmt.Errorf("unknown channel: %s", args[0])
			}

			p := newPlayer(cfg, comps.metadata)
			defer p.Close()

			out := cmd.OutOrStdout()
			p.OnMetadata(func(track radio.Track) {
				fmt.Fprintf(out, "♪ %s\n", track.Label())
			})
			p.OnStopped(cancel)

			if err := p.PlayChannel(ch); err != nil {
				return err
			}
			fmt.Fprintf(out, "Playing %s (Ctrl+C to stop)\n", ch.DisplayName())

			<-ctx.Done()
			return nil
		},
	}
}
