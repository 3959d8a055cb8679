// Package fetcher resolves a whole setlist at once: cached songs are served
// from the database, the rest are looked up concurrently and written back.
package fetcher

import (
	"context"
	"errors"
	"time"

	sentry "github.com/getsentry/sentry-go"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/dmick/jamtools/models"
	"github.com/dmick/jamtools/sentryhelper"
)

const DefaultWorkers = 20

type Resolver interface {
	Resolve(ctx context.Context, req models.SongRequest) (models.ResolvedLyrics, error)
}

type Cache interface {
	Get(ctx context.Context, song, artist string) (string, bool, error)
	Put(ctx context.Context, song, artist, text string) (bool, error)
}

type Fetcher struct {
	resolver Resolver
	cache    Cache
	workers  int
}

// New returns a Fetcher running at most workers lookups at a time. cache may
// be nil.
func New(resolver Resolver, cache Cache, workers int) *Fetcher {
	if workers < 1 {
		workers = DefaultWorkers
	}
	return &Fetcher{resolver: resolver, cache: cache, workers: workers}
}

// Result holds one entry per requested song, in request order.
type Result struct {
	Songs    []models.ResolvedLyrics
	NotFound []models.SongRequest
	Text     string
}

func newResult(songs []models.ResolvedLyrics, markup bool) *Result {
	res := &Result{Songs: songs, Text: FormatSet(songs, markup)}
	for _, s := range songs {
		if !s.Found {
			res.NotFound = append(res.NotFound, s.Request())
		}
	}
	return res
}

// Fetch resolves reqs concurrently. A remote failure on one song marks only
// that song not found; the failures are returned joined, together with the
// complete result.
func (f *Fetcher) Fetch(ctx context.Context, reqs []models.SongRequest, markup bool) (*Result, error) {
	logger := log.WithFields(log.Fields{"module": "fetcher", "function": "Fetch"})

	ctx, tx := sentryhelper.StartBatchTransaction(ctx, "parallel", len(reqs))
	defer tx.Finish()

	songs := make([]models.ResolvedLyrics, len(reqs))
	errs := make([]error, len(reqs))

	pending := f.fromCache(ctx, reqs, songs)
	logger.Debugf("%d of %d songs need lookup", len(pending), len(reqs))

	var g errgroup.Group
	g.SetLimit(f.workers)
	for _, i := range pending {
		g.Go(func() error {
			songs[i], errs[i] = f.resolve(ctx, reqs[i])
			return nil
		})
	}
	g.Wait()

	f.writeBack(ctx, pending, songs)

	err := errors.Join(errs...)
	if err != nil {
		tx.Status = sentry.SpanStatusInternalError
	}
	return newResult(songs, markup), err
}

// FetchSequential resolves reqs one at a time, logging how long each took.
func (f *Fetcher) FetchSequential(ctx context.Context, reqs []models.SongRequest, markup bool) (*Result, error) {
	logger := log.WithFields(log.Fields{"module": "fetcher", "function": "FetchSequential"})

	ctx, tx := sentryhelper.StartBatchTransaction(ctx, "sequential", len(reqs))
	defer tx.Finish()

	songs := make([]models.ResolvedLyrics, len(reqs))
	errs := make([]error, len(reqs))

	pending := f.fromCache(ctx, reqs, songs)
	for _, i := range pending {
		start := time.Now()
		songs[i], errs[i] = f.resolve(ctx, reqs[i])
		logger.Infof("%s to fetch %s", time.Since(start), reqs[i])
	}

	f.writeBack(ctx, pending, songs)

	err := errors.Join(errs...)
	if err != nil {
		tx.Status = sentry.SpanStatusInternalError
	}
	return newResult(songs, markup), err
}

// fromCache fills songs from the cache and returns the indexes still missing.
func (f *Fetcher) fromCache(ctx context.Context, reqs []models.SongRequest, songs []models.ResolvedLyrics) []int {
	logger := log.WithFields(log.Fields{"module": "fetcher", "function": "fromCache"})

	var pending []int
	for i, req := range reqs {
		if f.cache == nil || req.Incomplete() {
			pending = append(pending, i)
			continue
		}

		text, ok, err := f.cache.Get(ctx, req.Song, req.Artist)
		if err != nil {
			logger.Warnf("cache lookup for %s failed: %v", req, err)
		}
		if !ok {
			pending = append(pending, i)
			continue
		}

		logger.Infof("found cached lyrics for %s", req)
		songs[i] = models.ResolvedLyrics{
			Song:   req.Song,
			Artist: req.Artist,
			Text:   text,
			Found:  true,
			Source: models.SourceCache,
		}
	}
	return pending
}

func (f *Fetcher) resolve(ctx context.Context, req models.SongRequest) (models.ResolvedLyrics, error) {
	res, err := f.resolver.Resolve(ctx, req)
	if err != nil {
		log.WithFields(log.Fields{"module": "fetcher", "function": "resolve"}).Errorf("lookup of %s failed: %v", req, err)
		sentryhelper.CaptureException(ctx, err)
		res = models.NotFound(req)
		res.Err = err
	}
	return res, err
}

func (f *Fetcher) writeBack(ctx context.Context, pending []int, songs []models.ResolvedLyrics) {
	if f.cache == nil {
		return
	}
	logger := log.WithFields(log.Fields{"module": "fetcher", "function": "writeBack"})

	for _, i := range pending {
		s := songs[i]
		if !s.Cacheable() {
			continue
		}
		inserted, err := f.cache.Put(ctx, s.Song, s.Artist, s.Text)
		if err != nil {
			logger.Warnf("caching lyrics for %s failed: %v", s.Request(), err)
			continue
		}
		if inserted {
			logger.Infof("got new lyrics for %s", s.Request())
		}
	}
}
