package player

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/username/tibr-player/internal/radio"
	"go.uber.org/zap"
)

const defaultMetadataInterval = 30 * time.Second

// State is a snapshot of the player
type State struct {
	Playing bool
	Channel *radio.Channel
	Track   *radio.Track
}

// Player is either idle or streaming exactly one channel
type Player struct {
	pipeline Pipeline
	metadata radio.MetadataSource
	interval time.Duration
	logger   *zap.Logger

	mu            sync.Mutex // held across pipeline calls so Open and Release never interleave
	current       *radio.Channel
	track         *radio.Track
	playing       bool
	generation    uint64 // bumped on every play/stop, stale metadata is dropped
	session       uint64 // pipeline session of the current stream, stale events are dropped
	cancelUpdates context.CancelFunc
	onMetadata    func(radio.Track)
	onStopped     func()

	done      chan struct{}
	closeOnce sync.Once
}

// NewPlayer creates a player. metadata may be nil (no now-playing updates).
func NewPlayer(pipeline Pipeline, metadata radio.MetadataSource, interval time.Duration, logger *zap.Logger) *Player {
	if interval <= 0 {
		interval = defaultMetadataInterval
	}

	p := &Player{
		pipeline: pipeline,
		metadata: metadata,
		interval: interval,
		logger:   logger,
		done:     make(chan struct{}),
	}

	go p.watchEvents()

	return p
}

// OnMetadata registers the callback for track updates.
// It runs on the metadata goroutine, never with the player lock held.
func (p *Player) OnMetadata(fn func(radio.Track)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onMetadata = fn
}

// OnStopped registers the callback for playback the pipeline ended on its own
func (p *Player) OnStopped(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onStopped = fn
}

// PlayChannel stops current playback and starts ch
func (p *Player) PlayChannel(ch radio.Channel) error {
	if ch.ListenURL == "" {
		return fmt.Errorf("channel %q has no listen url", ch.DisplayName())
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()

	session, err := p.pipeline.Open(ch.ListenURL)
	if err != nil {
		return fmt.Errorf("failed to play %s: %w", ch.DisplayName(), err)
	}

	channel := ch
	p.current = &channel
	p.playing = true
	p.session = session
	p.generation++

	p.logger.Info("Playing channel",
		zap.String("channel", ch.DisplayName()),
		zap.String("url", ch.ListenURL))

	if p.metadata != nil && ch.Shortcode != "" {
		ctx, cancel := context.WithCancel(context.Background())
		p.cancelUpdates = cancel
		go p.metadataLoop(ctx, p.generation, ch.Shortcode)
	}

	return nil
}

// Stop stops current playback (no-op when idle)
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()
}

// stopLocked reports whether anything was playing
func (p *Player) stopLocked() bool {
	if p.cancelUpdates != nil {
		p.cancelUpdates()
		p.cancelUpdates = nil
	}

	if !p.playing {
		return false
	}

	if err := p.pipeline.Release(); err != nil {
		p.logger.Warn("Failed to release media pipeline", zap.Error(err))
	}

	p.playing = false
	p.current = nil
	p.track = nil
	p.generation++

	p.logger.Info("Playback stopped")
	return true
}

// State returns a snapshot of the player
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()

	state := State{Playing: p.playing}
	if p.current != nil {
		ch := *p.current
		state.Channel = &ch
	}
	if p.track != nil {
		tr := *p.track
		state.Track = &tr
	}
	return state
}

// Close stops playback and the event watcher
func (p *Player) Close() {
	p.closeOnce.Do(func() {
		close(p.done)
		p.Stop()
	})
}

func (p *Player) metadataLoop(ctx context.Context, generation uint64, shortcode string) {
	update := func() {
		track, err := p.metadata.NowPlaying(ctx, shortcode)
		if err != nil {
			if ctx.Err() == nil {
				p.logger.Warn("Metadata update error",
					zap.String("channel", shortcode),
					zap.Error(err))
			}
			return
		}
		if track != nil {
			p.handleMetadata(generation, *track)
		}
	}

	update()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			update()
		}
	}
}

func (p *Player) handleMetadata(generation uint64, track radio.Track) {
	p.mu.Lock()
	if !p.playing || generation != p.generation {
		p.mu.Unlock()
		return
	}
	changed := p.track == nil || *p.track != track
	p.track = &track
	callback := p.onMetadata
	p.mu.Unlock()

	if changed {
		p.logger.Info("Now playing",
			zap.String("artist", track.Artist),
			zap.String("title", track.Title))
	}

	if callback != nil {
		callback(track)
	}
}

func (p *Player) watchEvents() {
	for {
		select {
		case <-p.done:
			return
		case ev := <-p.pipeline.Events():
			p.handleEvent(ev)
		}
	}
}

func (p *Player) handleEvent(ev Event) {
	p.mu.Lock()
	if !p.playing || ev.Session != p.session {
		p.mu.Unlock()
		p.logger.Debug("Ignoring pipeline event for a released stream",
			zap.Stringer("type", ev.Type),
			zap.Uint64("session", ev.Session))
		return
	}

	switch ev.Type {
	case EventError:
		p.logger.Error("Playback error", zap.Error(ev.Err))
	case EventEndOfStream:
		p.logger.Info("End of stream")
	}

	stopped := p.stopLocked()
	callback := p.onStopped
	p.mu.Unlock()

	if stopped && callback != nil {
		callback()
	}
}
