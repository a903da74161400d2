package player

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"
)

// ipcCommand is the JSON structure sent to mpv's IPC socket.
type ipcCommand struct {
	Command   []interface{} `json:"command"`
	RequestID int64         `json:"request_id"`
}

// ipcResponse is a line received from mpv's IPC socket: either a reply
// carrying our request_id or an asynchronous event.
type ipcResponse struct {
	Data      interface{} `json:"data"`
	Error     string      `json:"error"`
	RequestID int64       `json:"request_id"`
	Event     string      `json:"event"`
}

const (
	ipcRetries   = 5
	ipcDelay     = 100 * time.Millisecond
	readDeadline = 1 * time.Second
)

// sendCommand sends a JSON-IPC command, retrying while mpv brings its socket up
func (m *MPV) sendCommand(socketPath string, command []interface{}) (interface{}, error) {
	m.ipcMu.Lock()
	defer m.ipcMu.Unlock()

	m.requestID++
	requestID := m.requestID

	var lastErr error
	for attempt := 0; attempt < ipcRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(ipcDelay)
		}

		result, err := doSendCommand(socketPath, requestID, command)
		if err == nil {
			return result, nil
		}
		lastErr = err
	}

	return nil, fmt.Errorf("ipc command failed after %d attempts: %w", ipcRetries, lastErr)
}

func doSendCommand(socketPath string, requestID int64, command []interface{}) (interface{}, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	payload, err := json.Marshal(ipcCommand{Command: command, RequestID: requestID})
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	// mpv expects newline-delimited JSON
	if _, err := conn.Write(append(payload, '\n')); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}

	if err := conn.SetReadDeadline(time.Now().Add(readDeadline)); err != nil {
		return nil, fmt.Errorf("set deadline: %w", err)
	}

	resp, err := readReply(bufio.NewReader(conn), requestID)
	if err != nil {
		return nil, err
	}

	if resp.Error != "" && resp.Error != "success" {
		return nil, fmt.Errorf("mpv error: %s", resp.Error)
	}

	return resp.Data, nil
}

// readReply skips events and replies to other requests until requestID answers
func readReply(r *bufio.Reader, requestID int64) (*ipcResponse, error) {
	for {
		line, err := r.ReadBytes('\n')
		if err != nil && len(line) == 0 {
			return nil, fmt.Errorf("read: %w", err)
		}

		var resp ipcResponse
		if jsonErr := json.Unmarshal(line, &resp); jsonErr != nil {
			return nil, fmt.Errorf("unmarshal: %w", jsonErr)
		}
		if resp.Event == "" && resp.RequestID == requestID {
			return &resp, nil
		}

		if err != nil {
			return nil, fmt.Errorf("read: %w", err)
		}
	}
}
