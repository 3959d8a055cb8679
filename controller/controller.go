package controller

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gregjones/httpcache"
	log "github.com/sirupsen/logrus"

	"github.com/dmick/jamtools/clientutil"
	"github.com/dmick/jamtools/config"
	"github.com/dmick/jamtools/database"
	"github.com/dmick/jamtools/fetcher"
	"github.com/dmick/jamtools/lyrics"
	"github.com/dmick/jamtools/setlist"
	"github.com/dmick/jamtools/sheets"
)

// Controller owns the long-lived pieces of the service: the lyrics cache,
// the lrclib client and the sheets reader, wired into a fetcher and a set
// selector.
type Controller struct {
	DB       *database.Database
	Resolver *lyrics.Resolver
	Fetcher  *fetcher.Fetcher
	Sets     *setlist.Selector

	responses *clientutil.MemoryCache
}

// Deps lets callers substitute the remote ends, mostly for tests. Zero
// fields are built from the config.
type Deps struct {
	Sheets     sheets.Getter
	HTTPClient *http.Client
}

func NewController(ctx context.Context, cfg *config.ConfigStruct, deps Deps) (*Controller, error) {
	db, err := database.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("error opening lyrics cache: %w", err)
	}

	getter := deps.Sheets
	if getter == nil {
		svc, err := sheets.NewService(ctx, cfg.Sheets.CredentialsFile)
		if err != nil {
			// Pasted setlists still work without sheet access.
			log.Warnf("Google Sheets unavailable: %v", err)
			getter = unavailable{err: err}
		} else {
			getter = svc
		}
	}
	source := sheets.NewSource(getter, sheets.DefaultBackoff(cfg.Sheets.Backoff()))

	responses := clientutil.NewMemoryCache(time.Minute)
	client := lyrics.New(cfg.Lyrics.BaseURL, LrclibHTTPClient(deps.HTTPClient, responses, cfg.Lyrics))
	resolver := lyrics.NewResolver(client, lyrics.OverridesDir(cfg.Lyrics.OverrideDir), lyrics.DefaultRules())

	selector := setlist.NewSelector(source, setlist.NewExtractor(setlist.DefaultSchemas()), setlist.SelectorConfig{
		IndexSheetID: cfg.Sheets.IndexSheetID,
		HeaderRange:  cfg.Sheets.HeaderRange,
		BodyRange:    cfg.Sheets.BodyRange,
		Location:     cfg.Options.Location(),
	})

	return &Controller{
		DB:       db,
		Resolver: resolver,
		Fetcher:  fetcher.New(resolver, db, cfg.Lyrics.Workers),
		Sets:     selector,

		responses: responses,
	}, nil
}

// LrclibHTTPClient wraps c with the outbound middleware used for lrclib:
// trace logging, response caching in cache, the user agent and throttling.
func LrclibHTTPClient(c *http.Client, cache httpcache.Cache, cfg config.LyricsConfig) *http.Client {
	if c == nil {
		c = &http.Client{Timeout: 10 * time.Second}
	}
	return clientutil.Wrap(c, clientutil.Chain(
		clientutil.WithLogging(),
		clientutil.WithCache(cache),
		clientutil.WithUserAgent(cfg.UserAgent),
		clientutil.WithRateLimit(cfg.RateLimit()),
	))
}

func (c *Controller) Close() error {
	c.responses.Close()
	return c.DB.Close()
}

type unavailable struct {
	err error
}

func (u unavailable) Get(ctx context.Context, sheetID, rng string) ([][]string, error) {
	return nil, fmt.Errorf("google sheets unavailable: %w", u.err)
}
