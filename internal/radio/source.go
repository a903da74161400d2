package radio

import (
	"context"
	"errors"
	"fmt"

	"github.com/username/tibr-player/internal/azuracast"
	"github.com/username/tibr-player/internal/config"
)

// ErrNoChannels is returned when a source has nothing to play
var ErrNoChannels = errors.New("no channels available")

// StaticSource serves channels from configuration
type StaticSource struct {
	channels []Channel
}

// NewStaticSource creates a source from configured channels
func NewStaticSource(configured []config.ChannelConfig) *StaticSource {
	channels := make([]Channel, 0, len(configured))
	for _, c := range configured {
		channels = append(channels, Channel{
			Name:      c.Name,
			Shortcode: c.Shortcode,
			ListenURL: c.ListenURL,
		})
	}
	return &StaticSource{channels: channels}
}

// Channels returns a copy of the configured channels
func (s *StaticSource) Channels(ctx context.Context) ([]Channel, error) {
	if len(s.channels) == 0 {
		return nil, ErrNoChannels
	}
	out := make([]Channel, len(s.channels))
	copy(out, s.channels)
	return out, nil
}

// StationAPI is the subset of the AzuraCast client used here
type StationAPI interface {
	GetStations(ctx context.Context) ([]azuracast.Station, error)
	GetNowPlaying(ctx context.Context, shortcode string) (*azuracast.NowPlaying, error)
}

// APISource discovers channels and metadata from AzuraCast
type APISource struct {
	api StationAPI
}

// NewAPISource wraps an AzuraCast client
func NewAPISource(api StationAPI) *APISource {
	return &APISource{api: api}
}

// Channels fetches stations and converts them to channels.
// Stations without a listen URL are skipped.
func (s *APISource) Channels(ctx context.Context) ([]Channel, error) {
	stations, err := s.api.GetStations(ctx)
	if err != nil {
		return nil, err
	}

	channels := make([]Channel, 0, len(stations))
	for _, st := range stations {
		if st.ListenURL == "" {
			continue
		}
		channels = append(channels, Channel{
			Name:      st.Name,
			Shortcode: st.Shortcode,
			ListenURL: st.ListenURL,
		})
	}

	if len(channels) == 0 {
		return nil, ErrNoChannels
	}
	return channels, nil
}

// NowPlaying fetches the current track for a station
func (s *APISource) NowPlaying(ctx context.Context, shortcode string) (*Track, error) {
	np, err := s.api.GetNowPlaying(ctx, shortcode)
	if err != nil {
		return nil, fmt.Errorf("now playing: %w", err)
	}
	if np == nil || np.NowPlaying == nil {
		return nil, nil
	}

	song := np.NowPlaying.Song
	return &Track{
		Artist: song.Artist,
		Title:  song.Title,
		Link:   song.ExternalLink(),
	}, nil
}
