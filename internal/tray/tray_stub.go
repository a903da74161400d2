//go:build darwin && !cgo

package tray

import (
	"context"

	"github.com/username/tibr-player/internal/config"
	"github.com/username/tibr-player/internal/radio"
	"go.uber.org/zap"
)

// TrayApp represents system tray application (stub, the macOS tray needs cgo)
type TrayApp struct{}

// NewTrayApp creates a new system tray application (not supported by this build)
func NewTrayApp(cfg config.TrayConfig, controller *Controller, logger *zap.Logger) (*TrayApp, error) {
	return nil, ErrUnsupported
}

// Run does nothing without a tray backend
func (t *TrayApp) Run(ctx context.Context) {
}

func (t *TrayApp) ShowChannels(channels []radio.Channel)       {}
func (t *TrayApp) ShowChannelError()                           {}
func (t *TrayApp) SetTrackInfo(label string, linkVisible bool) {}
func (t *TrayApp) SetStopVisible(visible bool)                 {}
func (t *TrayApp) Quit()                                       {}
