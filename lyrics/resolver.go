package lyrics

import (
	"context"
	"fmt"
	"strings"

	sentry "github.com/getsentry/sentry-go"
	log "github.com/sirupsen/logrus"

	"github.com/dmick/jamtools/models"
	"github.com/dmick/jamtools/sentryhelper"
)

const InstrumentalPlaceholder = "<Instrumental>"

// Separator goes between songs in formatted output and between the parts of
// a medley resolved piecewise.
var Separator = "\n" + strings.Repeat("=", 30) + "\n"

func IncompletePlaceholder(song, artist string) string {
	return fmt.Sprintf("<incomplete request song=%q artist=%q>", song, artist)
}

type API interface {
	Get(ctx context.Context, track, artist string, extra Extra) (*Track, error)
	Search(ctx context.Context, track string) ([]Track, error)
}

type OverrideStore interface {
	Lookup(song, artist string) (string, bool, error)
}

type Resolver struct {
	api       API
	overrides OverrideStore
	rules     *Rules
	stages    []stage
}

func NewResolver(api API, overrides OverrideStore, rules *Rules) *Resolver {
	if overrides == nil {
		overrides = NewOverrides(nil)
	}
	if rules == nil {
		rules = DefaultRules()
	}
	return &Resolver{
		api:       api,
		overrides: overrides,
		rules:     rules,
		stages:    defaultStages(),
	}
}

// Attempt is what every stage sees: the names as requested, the names after
// the correction tables, and any extra lookup parameter.
type Attempt struct {
	Song        string
	Artist      string
	CleanSong   string
	CleanArtist string
	Extra       Extra
}

func (r *Resolver) attempt(req models.SongRequest) Attempt {
	return Attempt{
		Song:        req.Song,
		Artist:      req.Artist,
		CleanSong:   r.rules.CleanSong(req.Song),
		CleanArtist: r.rules.CleanArtist(req.Artist),
		Extra:       r.rules.ExtraFor(req.Song, req.Artist),
	}
}

// Resolve runs the stages in order and returns the first hit. Running out of
// stages is a normal not-found result; an error means lrclib failed and the
// cascade was abandoned.
func (r *Resolver) Resolve(ctx context.Context, req models.SongRequest) (models.ResolvedLyrics, error) {
	logger := log.WithFields(log.Fields{
		"module":   "lyrics",
		"function": "Resolve",
		"song":     req.Song,
		"artist":   req.Artist,
	})

	if req.Incomplete() {
		logger.Debug("incomplete request, skipping lookup")
		return models.ResolvedLyrics{
			Song:   req.Song,
			Artist: req.Artist,
			Text:   IncompletePlaceholder(req.Song, req.Artist),
			Found:  true,
			Source: models.SourceIncomplete,
		}, nil
	}

	a := r.attempt(req)
	if !a.Extra.IsZero() {
		logger.Tracef("using extra lookup parameter %+v", a.Extra)
	}

	c := r.newCascade(a.Extra)
	for _, st := range r.stages {
		text, ok, err := st.Run(ctx, c, a)
		crumb := &sentry.Breadcrumb{
			Category: "lyrics.stage",
			Message:  st.Name,
			Level:    sentry.LevelInfo,
			Data:     map[string]interface{}{"song": req.Song, "artist": req.Artist, "found": ok},
		}
		if err != nil {
			crumb.Level = sentry.LevelError
		}
		sentryhelper.AddBreadcrumb(ctx, crumb)
		if err != nil {
			res := models.NotFound(req)
			res.Err = err
			return res, fmt.Errorf("%s stage for %s: %w", st.Name, req, err)
		}
		if ok {
			logger.WithField("stage", st.Name).Info("found lyrics")
			return models.ResolvedLyrics{
				Song:   req.Song,
				Artist: req.Artist,
				Text:   text,
				Found:  true,
				Source: st.Source,
			}, nil
		}
	}

	logger.Info("lyrics not found")
	return models.NotFound(req), nil
}

type hit struct {
	text string
	ok   bool
}

// cascade is the per-request lookup state shared by the stages. Lookups are
// memoized so stages that land on the same names don't repeat the request.
type cascade struct {
	api       API
	overrides OverrideStore
	extra     Extra
	seen      map[[2]string]hit
}

func (r *Resolver) newCascade(extra Extra) *cascade {
	return &cascade{
		api:       r.api,
		overrides: r.overrides,
		extra:     extra,
		seen:      make(map[[2]string]hit),
	}
}

// fetch resolves one exact (song, artist) pair: the override store first,
// then lrclib. Names emptied by a correction or split never match.
func (c *cascade) fetch(ctx context.Context, song, artist string) (string, bool, error) {
	if song == "" || artist == "" {
		return "", false, nil
	}

	key := [2]string{song, artist}
	if h, ok := c.seen[key]; ok {
		return h.text, h.ok, nil
	}

	text, ok, err := c.lookup(ctx, song, artist)
	if err != nil {
		return "", false, err
	}
	c.seen[key] = hit{text: text, ok: ok}
	return text, ok, nil
}

func (c *cascade) lookup(ctx context.Context, song, artist string) (string, bool, error) {
	text, ok, err := c.overrides.Lookup(song, artist)
	if err != nil || ok {
		return text, ok, err
	}

	track, err := c.api.Get(ctx, song, artist, c.extra)
	if err != nil || track == nil {
		return "", false, err
	}
	if track.Instrumental {
		return InstrumentalPlaceholder, true, nil
	}
	lyrics := track.Lyrics()
	return lyrics, lyrics != "", nil
}

// search looks the song up by title and picks the candidate whose artist
// matches exactly, else the first whose artist contains the requested one.
func (c *cascade) search(ctx context.Context, song, artist string) (string, bool, error) {
	if song == "" || artist == "" {
		return "", false, nil
	}

	results, err := c.api.Search(ctx, song)
	if err != nil {
		return "", false, err
	}

	match := -1
	for i := range results {
		if results[i].ArtistName == artist {
			match = i
			break
		}
	}
	if match < 0 {
		for i := range results {
			if strings.Contains(results[i].ArtistName, artist) {
				match = i
				break
			}
		}
	}
	if match < 0 {
		return "", false, nil
	}

	if results[match].Instrumental {
		return InstrumentalPlaceholder, true, nil
	}
	lyrics := results[match].Lyrics()
	return lyrics, lyrics != "", nil
}
