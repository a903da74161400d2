package azuracast

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/tibr-player/pkg/backoff"
	"go.uber.org/zap"
)

const stationsJSON = `[
  {"id": 1, "name": "The Indie Beat", "shortcode": "tibr", "listen_url": "https://azura.test/listen/tibr/radio.mp3", "is_public": true},
  {"id": 2, "name": "Indie Folk", "shortcode": "folk", "listen_url": "https://azura.test/listen/folk/radio.mp3", "is_public": true}
]`

const nowPlayingJSON = `{
  "station": {"id": 1, "name": "The Indie Beat", "shortcode": "tibr"},
  "listeners": {"total": 12, "unique": 10, "current": 12},
  "now_playing": {
    "elapsed": 42,
    "remaining": 118,
    "song": {
      "id": "abc",
      "text": "Artist A - Song B",
      "artist": "Artist A",
      "title": "Song B",
      "custom_fields": {"ext_links": "https://bandwagon.fm/artist-a", "isrc": null}
    }
  },
  "is_online": true
}`

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	return NewClient(url, "TIBR Simple Player/1.0", 2*time.Second, backoff.New(3, time.Millisecond, logger), logger)
}

func TestClient_GetStations(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/stations", r.URL.Path)
		assert.Equal(t, "TIBR Simple Player/1.0", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(stationsJSON))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL+"/api/")
	stations, err := client.GetStations(context.Background())
	require.NoError(t, err)
	require.Len(t, stations, 2)

	assert.Equal(t, "The Indie Beat", stations[0].Name)
	assert.Equal(t, "tibr", stations[0].Shortcode)
	assert.Equal(t, "https://azura.test/listen/folk/radio.mp3", stations[1].ListenURL)
}

func TestClient_GetNowPlaying(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/nowplaying/tibr", r.URL.Path)
		w.Write([]byte(nowPlayingJSON))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	np, err := client.GetNowPlaying(context.Background(), "tibr")
	require.NoError(t, err)
	require.NotNil(t, np.NowPlaying)

	song := np.NowPlaying.Song
	assert.Equal(t, "Artist A", song.Artist)
	assert.Equal(t, "Song B", song.Title)
	assert.Equal(t, "https://bandwagon.fm/artist-a", song.ExternalLink())
	assert.Equal(t, 12, np.Listeners.Current)
	assert.True(t, np.IsOnline)
}

func TestClient_GetNowPlaying_EmptyShortcode(t *testing.T) {
	client := newTestClient(t, "http://unused.test")
	_, err := client.GetNowPlaying(context.Background(), "")
	assert.Error(t, err)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			http.Error(w, "upstream unavailable", http.StatusBadGateway)
			return
		}
		w.Write([]byte(stationsJSON))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	stations, err := client.GetStations(context.Background())
	require.NoError(t, err)
	assert.Len(t, stations, 2)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_StatusErrorAfterRetries(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "station not found", http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.GetNowPlaying(context.Background(), "missing")
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr), "expected StatusError, got %v", err)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Equal(t, "station not found", statusErr.Body)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.GetStations(context.Background())
	assert.ErrorContains(t, err, "failed to parse response")
}

func TestSong_ExternalLink(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]interface{}
		want   string
	}{
		{"nil fields", nil, ""},
		{"missing key", map[string]interface{}{"isrc": "X"}, ""},
		{"null value", map[string]interface{}{"ext_links": nil}, ""},
		{"link", map[string]interface{}{"ext_links": "https://bandwagon.fm/x"}, "https://bandwagon.fm/x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Song{CustomFields: tt.fields}.ExternalLink())
		})
	}
}
