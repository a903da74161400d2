package tray

import (
	"context"
	"errors"
	"sync"

	"github.com/username/tibr-player/internal/radio"
	"go.uber.org/zap"
)

const (
	LabelLoading    = "Loading channels..."
	LabelLoadError  = "Error loading channels"
	LabelNoTrack    = "No track playing"
	LabelArtistLink = "View on Bandwagon"
	LabelStop       = "Stop Playback"
	LabelQuit       = "Quit"
)

// ErrUnsupported is returned by NewTrayApp on builds without a tray backend
var ErrUnsupported = errors.New("system tray is not supported by this build")

// RadioPlayer is the playback side of the menu
type RadioPlayer interface {
	PlayChannel(ch radio.Channel) error
	Stop()
}

// View renders the menu. Implementations must be safe to call from any goroutine.
type View interface {
	ShowChannels(channels []radio.Channel)
	ShowChannelError()
	SetTrackInfo(label string, linkVisible bool)
	SetStopVisible(visible bool)
	Quit()
}

// Opener opens a URL with the desktop's default handler
type Opener func(target string) error

// Controller implements the menu actions independently of the tray toolkit
type Controller struct {
	player RadioPlayer
	source radio.ChannelSource
	open   Opener
	logger *zap.Logger

	mu         sync.Mutex
	view       View
	artistLink string
}

// NewController creates a controller; Attach must be called before use
func NewController(player RadioPlayer, source radio.ChannelSource, open Opener, logger *zap.Logger) *Controller {
	return &Controller{
		player: player,
		source: source,
		open:   open,
		logger: logger,
	}
}

// Attach binds the view the controller drives
func (c *Controller) Attach(view View) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view = view
}

func (c *Controller) getView() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// LoadChannels fetches the channel list and puts it in the menu
func (c *Controller) LoadChannels(ctx context.Context) {
	view := c.getView()

	channels, err := c.source.Channels(ctx)
	if err != nil || len(channels) == 0 {
		c.logger.Error("Channel loading error", zap.Error(err))
		view.ShowChannelError()
		return
	}

	c.logger.Info("Channels loaded", zap.Int("count", len(channels)))
	view.ShowChannels(channels)
}

// SelectChannel plays ch and shows the stop entry.
// On failure the previous channel is already stopped, so the menu goes back to idle.
func (c *Controller) SelectChannel(ch radio.Channel) {
	c.logger.Info("Selected channel", zap.String("channel", ch.DisplayName()))

	if err := c.player.PlayChannel(ch); err != nil {
		c.logger.Error("Error playing channel",
			zap.String("channel", ch.DisplayName()),
			zap.Error(err))
		c.resetTrackInfo()
		return
	}

	c.getView().SetStopVisible(true)
}

// StopPlayback stops the player and resets the track entry
func (c *Controller) StopPlayback() {
	c.player.Stop()
	c.resetTrackInfo()
}

// PlaybackEnded resets the menu after the pipeline stopped on its own
func (c *Controller) PlaybackEnded() {
	c.resetTrackInfo()
}

func (c *Controller) resetTrackInfo() {
	c.mu.Lock()
	c.artistLink = ""
	view := c.view
	c.mu.Unlock()

	view.SetStopVisible(false)
	view.SetTrackInfo(LabelNoTrack, false)
}

// UpdateTrackInfo shows track in the menu; nil means nothing is on air
func (c *Controller) UpdateTrackInfo(track *radio.Track) {
	if track == nil {
		c.mu.Lock()
		c.artistLink = ""
		view := c.view
		c.mu.Unlock()

		view.SetTrackInfo(LabelNoTrack, false)
		return
	}

	c.mu.Lock()
	c.artistLink = track.Link
	view := c.view
	c.mu.Unlock()

	view.SetTrackInfo(track.Label(), track.HasLink())
}

// ArtistLink returns the link of the current track, if any
func (c *Controller) ArtistLink() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.artistLink
}

// OpenArtistLink opens the current artist's page
func (c *Controller) OpenArtistLink() {
	link := c.ArtistLink()
	if link == "" {
		c.logger.Info("No external link available")
		return
	}
	c.OpenLink(link)
}

// OpenLink opens target in the browser
func (c *Controller) OpenLink(target string) {
	if err := c.open(target); err != nil {
		c.logger.Error("Error opening link",
			zap.String("url", target),
			zap.Error(err))
		return
	}
	c.logger.Debug("Link opened", zap.String("url", target))
}

// Quit stops playback and leaves the tray loop
func (c *Controller) Quit() {
	c.logger.Info("Quit requested")
	c.player.Stop()
	c.getView().Quit()
}
