//go:build !darwin || cgo

package tray

import (
	"context"
	_ "embed"
	"sync"

	"fyne.io/systray"
	"github.com/username/tibr-player/internal/config"
	"github.com/username/tibr-player/internal/radio"
	"go.uber.org/zap"
)

//go:embed icon.png
var iconPNG []byte

// TrayApp represents system tray application
type TrayApp struct {
	cfg        config.TrayConfig
	controller *Controller
	logger     *zap.Logger
	ctx        context.Context

	mu          sync.Mutex
	statusItem  *systray.MenuItem // "Loading channels..." until channels arrive
	trackItem   *systray.MenuItem
	artistItem  *systray.MenuItem
	stopItem    *systray.MenuItem
	menuDone    chan struct{} // closed when the menu is rebuilt
	trackLabel  string
	linkVisible bool
	stopVisible bool
	quitOnce    sync.Once
}

// NewTrayApp creates a new system tray application and attaches it to controller
func NewTrayApp(cfg config.TrayConfig, controller *Controller, logger *zap.Logger) (*TrayApp, error) {
	t := &TrayApp{
		cfg:        cfg,
		controller: controller,
		logger:     logger,
		trackLabel: LabelNoTrack,
	}
	controller.Attach(t)
	return t, nil
}

// Run starts the system tray application (blocks until Quit).
// Cancelling ctx quits the tray.
func (t *TrayApp) Run(ctx context.Context) {
	t.ctx = ctx

	stop := context.AfterFunc(ctx, t.controller.Quit)
	defer stop()

	systray.Run(t.onReady, t.onExit)
}

func (t *TrayApp) onReady() {
	systray.SetIcon(iconPNG)
	if t.cfg.Title != "" {
		systray.SetTitle(t.cfg.Title)
	}
	systray.SetTooltip(t.cfg.Tooltip)

	t.mu.Lock()
	t.buildMenuLocked(nil)
	t.mu.Unlock()

	go t.controller.LoadChannels(t.ctx)
}

func (t *TrayApp) onExit() {
	t.logger.Info("System tray exited")
}

// buildMenuLocked lays out the whole menu. Channel entries go on top, so the
// menu is rebuilt once they are known.
func (t *TrayApp) buildMenuLocked(channels []radio.Channel) {
	if t.menuDone != nil {
		close(t.menuDone)
		systray.ResetMenu()
	}
	done := make(chan struct{})
	t.menuDone = done
	t.statusItem = nil

	if len(channels) == 0 {
		t.statusItem = systray.AddMenuItem(LabelLoading, "")
		t.statusItem.Disable()
	}
	for _, ch := range channels {
		item := systray.AddMenuItem(ch.DisplayName(), ch.ListenURL)
		ch := ch
		t.onClick(item, done, func() { t.controller.SelectChannel(ch) })
	}

	t.trackItem = systray.AddMenuItem(t.trackLabel, "Current track")
	t.artistItem = t.trackItem.AddSubMenuItem(LabelArtistLink, "Open the artist page")
	t.stopItem = t.trackItem.AddSubMenuItem(LabelStop, "Stop the stream")
	setVisible(t.artistItem, t.linkVisible)
	setVisible(t.stopItem, t.stopVisible)
	t.onClick(t.artistItem, done, t.controller.OpenArtistLink)
	t.onClick(t.stopItem, done, t.controller.StopPlayback)

	systray.AddSeparator()

	for _, link := range t.cfg.Links {
		item := systray.AddMenuItem(link.Label, link.URL)
		url := link.URL
		t.onClick(item, done, func() { t.controller.OpenLink(url) })
	}

	systray.AddSeparator()

	quitItem := systray.AddMenuItem(LabelQuit, "Exit the application")
	t.onClick(quitItem, done, t.controller.Quit)
}

// onClick runs action for every click until the menu is rebuilt
func (t *TrayApp) onClick(item *systray.MenuItem, done <-chan struct{}, action func()) {
	go func() {
		for {
			select {
			case <-item.ClickedCh:
				action()
			case <-done:
				return
			}
		}
	}()
}

// ShowChannels replaces the loading entry with channel entries
func (t *TrayApp) ShowChannels(channels []radio.Channel) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buildMenuLocked(channels)
}

// ShowChannelError marks channel loading as failed
func (t *TrayApp) ShowChannelError() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.statusItem != nil {
		t.statusItem.SetTitle(LabelLoadError)
	}
}

// SetTrackInfo updates the track entry and artist link visibility
func (t *TrayApp) SetTrackInfo(label string, linkVisible bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.trackLabel = label
	t.linkVisible = linkVisible
	if t.trackItem == nil {
		return
	}
	t.trackItem.SetTitle(label)
	setVisible(t.artistItem, linkVisible)
	systray.SetTooltip(t.cfg.Tooltip + "\n" + label)
}

// SetStopVisible shows or hides the stop entry
func (t *TrayApp) SetStopVisible(visible bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopVisible = visible
	setVisible(t.stopItem, visible)
}

// Quit leaves the tray loop
func (t *TrayApp) Quit() {
	t.quitOnce.Do(systray.Quit)
}

func setVisible(item *systray.MenuItem, visible bool) {
	if item == nil {
		return
	}
	if visible {
		item.Show()
	} else {
		item.Hide()
	}
}
