package azuracast

import "fmt"

// Station represents an AzuraCast station as returned by /stations
type Station struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Shortcode   string `json:"shortcode"`
	Description string `json:"description"`
	ListenURL   string `json:"listen_url"`
	URL         string `json:"url"`
	IsPublic    bool   `json:"is_public"`
}

// NowPlaying represents the /nowplaying/{station} response
type NowPlaying struct {
	Station    Station       `json:"station"`
	Listeners  Listeners     `json:"listeners"`
	NowPlaying *CurrentTrack `json:"now_playing"`
	IsOnline   bool          `json:"is_online"`
}

// Listeners holds listener counters
type Listeners struct {
	Total   int `json:"total"`
	Unique  int `json:"unique"`
	Current int `json:"current"`
}

// CurrentTrack is the song currently on air
type CurrentTrack struct {
	Elapsed   int  `json:"elapsed"`
	Remaining int  `json:"remaining"`
	Duration  int  `json:"duration"`
	Song      Song `json:"song"`
}

// Song holds track metadata.
// custom_fields values are usually strings but AzuraCast allows nulls.
type Song struct {
	ID           string                 `json:"id"`
	Text         string                 `json:"text"`
	Artist       string                 `json:"artist"`
	Title        string                 `json:"title"`
	Album        string                 `json:"album"`
	Art          string                 `json:"art"`
	CustomFields map[string]interface{} `json:"custom_fields"`
}

// ExternalLink returns the artist page stored in the ext_links custom field
func (s Song) ExternalLink() string {
	if s.CustomFields == nil {
		return ""
	}
	link, ok := s.CustomFields["ext_links"].(string)
	if !ok {
		return ""
	}
	return link
}

// StatusError is returned for non-2xx API responses
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}
