package models

import "fmt"

// Source records which step produced a ResolvedLyrics.
type Source string

const (
	SourceOverride   Source = "override"
	SourceCache      Source = "cache"
	SourceDirect     Source = "api-direct"
	SourceFallback   Source = "api-fallback"
	SourceSearch     Source = "api-search"
	SourceNotFound   Source = "not-found"
	SourceIncomplete Source = "incomplete"
)

type SongRequest struct {
	Song   string
	Artist string
}

func (r SongRequest) String() string {
	return fmt.Sprintf("%s - %s", r.Song, r.Artist)
}

// Incomplete reports whether the request is missing a song or an artist.
func (r SongRequest) Incomplete() bool {
	return r.Song == "" || r.Artist == ""
}

type ResolvedLyrics struct {
	Song   string
	Artist string
	Text   string
	Found  bool
	Source Source
	// Err is set when a remote failure cut the cascade short.
	Err error
}

func (r ResolvedLyrics) Request() SongRequest {
	return SongRequest{Song: r.Song, Artist: r.Artist}
}

// Cacheable reports whether the result should be written back to the cache.
func (r ResolvedLyrics) Cacheable() bool {
	return r.Found && r.Err == nil && r.Source != SourceCache && r.Source != SourceIncomplete
}

func NotFound(req SongRequest) ResolvedLyrics {
	return ResolvedLyrics{Song: req.Song, Artist: req.Artist, Source: SourceNotFound}
}
