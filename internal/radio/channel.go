package radio

import (
	"context"
	"strings"
)

const (
	unknownChannel = "Unknown Channel"
	unknownArtist  = "Unknown Artist"
	unknownTrack   = "Unknown Track"
)

// Channel is a playable stream
type Channel struct {
	Name      string
	Shortcode string
	ListenURL string
}

// DisplayName returns the channel name for menus
func (c Channel) DisplayName() string {
	if strings.TrimSpace(c.Name) == "" {
		return unknownChannel
	}
	return c.Name
}

// Matches reports whether key names this channel (shortcode or case-insensitive name)
func (c Channel) Matches(key string) bool {
	if key == "" {
		return false
	}
	return c.Shortcode == key || strings.EqualFold(c.Name, key)
}

// Track is the song currently on air
type Track struct {
	Artist string
	Title  string
	Link   string // artist page, may be empty
}

// Label formats the track as "Artist - Title"
func (t Track) Label() string {
	artist := t.Artist
	if artist == "" {
		artist = unknownArtist
	}
	title := t.Title
	if title == "" {
		title = unknownTrack
	}
	return artist + " - " + title
}

// HasLink reports whether the track has an external artist page
func (t Track) HasLink() bool {
	return t.Link != ""
}

// ChannelSource lists available channels
type ChannelSource interface {
	Channels(ctx context.Context) ([]Channel, error)
}

// MetadataSource returns the current track of a channel.
// A nil track with nil error means nothing is on air.
type MetadataSource interface {
	NowPlaying(ctx context.Context, shortcode string) (*Track, error)
}

// Find returns the channel matching key
func Find(channels []Channel, key string) (Channel, bool) {
	for _, ch := range channels {
		if ch.Matches(key) {
			return ch, true
		}
	}
	return Channel{}, false
}
