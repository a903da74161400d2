//go:build darwin && !cgo

package tray

import (
	"errors"
	"testing"

	"github.com/username/tibr-player/internal/config"
	"go.uber.org/zap"
)

func TestNewTrayApp_Unsupported(t *testing.T) {
	c, _, _, _ := newTestController(&fakeSource{})

	app, err := NewTrayApp(config.TrayConfig{}, c, zap.NewNop())
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("NewTrayApp() error = %v, want ErrUnsupported", err)
	}
	if app != nil {
		t.Error("NewTrayApp() returned an app without a tray backend")
	}
}
