package player

import (
	"crypto/rand"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	releaseGracePeriod = 2 * time.Second
	eventBufferSize    = 4
)

// MPVOptions configures the mpv process
type MPVOptions struct {
	Binary      string
	ClientName  string  // shown by the sound server (pulse/pipewire)
	AudioOutput string  // --ao, empty = mpv default
	Volume      float64 // 0.0 - 1.0
}

// MPV implements Pipeline with an audio-only mpv process controlled over JSON-IPC
type MPV struct {
	opts   MPVOptions
	logger *zap.Logger

	mu         sync.Mutex // protects cmd, exited, socketPath, session
	cmd        *exec.Cmd
	exited     chan struct{} // closed when the current process exits
	socketPath string
	session    uint64 // bumped by every Open, stamped on exit events

	ipcMu     sync.Mutex // serializes socket writes
	requestID int64      // guarded by ipcMu
	events    chan Event
}

// NewMPV creates an idle mpv pipeline (no process is started until Open)
func NewMPV(opts MPVOptions, logger *zap.Logger) *MPV {
	if opts.Binary == "" {
		opts.Binary = "mpv"
	}
	return &MPV{
		opts:   opts,
		logger: logger,
		events: make(chan Event, eventBufferSize),
	}
}

// Events returns pipeline events
func (m *MPV) Events() <-chan Event {
	return m.events
}

// Open plays rawURL. A running mpv instance loads the new stream over IPC.
func (m *MPV) Open(rawURL string) (uint64, error) {
	target, err := sanitizeStreamURL(rawURL)
	if err != nil {
		return 0, fmt.Errorf("invalid stream url: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.runningLocked() {
		_, err := m.sendCommand(m.socketPath, []interface{}{"loadfile", target, "replace"})
		if err == nil {
			m.session++
			m.logger.Debug("Stream replaced over IPC",
				zap.String("url", target),
				zap.Uint64("session", m.session))
			return m.session, nil
		}
		m.logger.Warn("IPC loadfile failed, restarting mpv", zap.Error(err))
		m.stopLocked()
	}

	if err := m.startLocked(target); err != nil {
		return 0, err
	}
	return m.session, nil
}

// Release stops mpv and waits for the process to exit
func (m *MPV) Release() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopLocked()
	return nil
}

func (m *MPV) runningLocked() bool {
	if m.cmd == nil {
		return false
	}
	select {
	case <-m.exited:
		return false
	default:
		return true
	}
}

func (m *MPV) startLocked(target string) error {
	socketPath, err := newSocketPath()
	if err != nil {
		return err
	}

	cmd := exec.Command(m.opts.Binary, m.buildArgs(socketPath, target)...)
	cmd.SysProcAttr = sysProcAttr()
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", m.opts.Binary, err)
	}

	exited := make(chan struct{})
	m.cmd = cmd
	m.exited = exited
	m.socketPath = socketPath
	m.session++

	go m.reap(cmd, exited, socketPath)

	m.logger.Info("Media pipeline started",
		zap.String("binary", m.opts.Binary),
		zap.Int("pid", cmd.Process.Pid),
		zap.String("url", target))

	return nil
}

// stopLocked detaches the current process first so reap treats the exit as requested
func (m *MPV) stopLocked() {
	cmd, exited, socketPath := m.cmd, m.exited, m.socketPath
	if cmd == nil {
		return
	}
	m.cmd = nil

	select {
	case <-exited:
		return
	default:
	}

	if _, err := m.sendCommand(socketPath, []interface{}{"quit"}); err != nil {
		m.logger.Debug("IPC quit failed, killing mpv", zap.Error(err))
		m.kill(cmd)
	}

	select {
	case <-exited:
	case <-time.After(releaseGracePeriod):
		m.logger.Warn("mpv did not exit in time, killing", zap.Int("pid", cmd.Process.Pid))
		m.kill(cmd)
		<-exited
	}
}

func (m *MPV) kill(cmd *exec.Cmd) {
	if err := killProcess(cmd); err != nil {
		m.logger.Error("Failed to kill mpv", zap.Error(err))
	}
}

// reap waits for the process and reports exits nobody asked for
func (m *MPV) reap(cmd *exec.Cmd, exited chan struct{}, socketPath string) {
	waitErr := cmd.Wait()
	close(exited)
	_ = os.Remove(socketPath)

	m.mu.Lock()
	unexpected := m.cmd == cmd
	session := m.session
	if unexpected {
		m.cmd = nil
	}
	m.mu.Unlock()

	if !unexpected {
		return
	}

	ev := Event{Type: EventEndOfStream, Session: session}
	if waitErr != nil {
		ev = Event{Type: EventError, Err: fmt.Errorf("mpv exited: %w", waitErr), Session: session}
	}

	select {
	case m.events <- ev:
	default:
		m.logger.Warn("Dropping pipeline event, buffer full", zap.Stringer("type", ev.Type))
	}
}

func (m *MPV) buildArgs(socketPath, target string) []string {
	volume := int(m.opts.Volume*100 + 0.5)

	args := []string{
		"--no-video",
		"--no-terminal",
		"--really-quiet",
		"--idle=no",
		fmt.Sprintf("--input-ipc-server=%s", socketPath),
		fmt.Sprintf("--volume=%d", volume),
	}
	if m.opts.ClientName != "" {
		args = append(args, fmt.Sprintf("--audio-client-name=%s", sanitizeTitle(m.opts.ClientName)))
	}
	if m.opts.AudioOutput != "" {
		args = append(args, fmt.Sprintf("--ao=%s", m.opts.AudioOutput))
	}

	return append(args, "--", target)
}

func newSocketPath() (string, error) {
	randomBytes := make([]byte, 4)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("generate socket name: %w", err)
	}
	return filepath.Join(os.TempDir(), fmt.Sprintf("tibr-%x.sock", randomBytes)), nil
}

// sanitizeStreamURL accepts only http(s) URLs that cannot be read as mpv flags
func sanitizeStreamURL(link string) (string, error) {
	l := strings.TrimSpace(link)
	if l == "" {
		return "", fmt.Errorf("empty URL")
	}
	if strings.ContainsAny(l, "\x00\n\r") {
		return "", fmt.Errorf("invalid control characters in URL")
	}
	if strings.HasPrefix(l, "-") {
		return "", fmt.Errorf("url must not start with '-'")
	}

	u, err := url.Parse(l)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return "", fmt.Errorf("unsupported URL scheme: %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("URL has no host")
	}

	return l, nil
}

func sanitizeTitle(title string) string {
	t := strings.NewReplacer("\n", " ", "\r", " ", "\t", " ", "\x00", "").Replace(title)
	return strings.TrimSpace(t)
}
