package handlers

// handlers serve the lyrics and setlist endpoints. They turn query
// parameters into a setlist, hand it to the fetcher and render the result.

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/dmick/jamtools/fetcher"
	"github.com/dmick/jamtools/models"
	"github.com/dmick/jamtools/pages"
	"github.com/dmick/jamtools/setlist"
)

type LyricsFetcher interface {
	Fetch(ctx context.Context, reqs []models.SongRequest, markup bool) (*fetcher.Result, error)
	FetchSequential(ctx context.Context, reqs []models.SongRequest, markup bool) (*fetcher.Result, error)
}

type SetFinder interface {
	Find(ctx context.Context, q setlist.Query) ([]setlist.Row, error)
}

// SongCounter reports how many songs the lyrics cache holds.
type SongCounter interface {
	Count(ctx context.Context) (int, error)
}

var ErrBadSetlist = errors.New("bad setlist")

type Manager struct {
	Fetcher LyricsFetcher
	Sets    SetFinder
	Cache   SongCounter
}

func NewManager(f LyricsFetcher, sets SetFinder, cache SongCounter) *Manager {
	return &Manager{Fetcher: f, Sets: sets, Cache: cache}
}

func (manager *Manager) Register(router gin.IRouter) {
	router.GET("/lyrics", manager.Lyrics)
	router.GET("/setlist", manager.Setlist)
	router.GET("/healthz", manager.Health)
}

// Health serves /healthz with the number of cached songs. A cache that
// can't be read makes the service unhealthy.
func (manager *Manager) Health(c *gin.Context) {
	if manager.Cache == nil {
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}
	n, err := manager.Cache.Count(c.Request.Context())
	if err != nil {
		log.WithFields(log.Fields{"module": "handlers", "function": "Health"}).Errorf("counting cached songs failed: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "lyrics cache unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "cached_songs": n})
}

// flag reports whether a boolean query parameter is set. A bare ?html counts.
func flag(c *gin.Context, name string) bool {
	v, ok := c.GetQuery(name)
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(v)
	return v == "" || (err == nil && b)
}

// Lyrics serves /lyrics. The set comes either from a pasted setlist of
// song,artist lines or from the sheets by date or sheet id.
func (manager *Manager) Lyrics(c *gin.Context) {
	logger := log.WithFields(log.Fields{"module": "handlers", "function": "Lyrics"})

	text := c.Query("setlist")
	date := c.Query("date")
	sheetID := c.Query("sheetid")
	markup := flag(c, "html")

	if text == "" && date == "" && sheetID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "one of setlist, date or sheetid is required"})
		return
	}

	var reqs []models.SongRequest
	if date != "" || sheetID != "" {
		rows, ok := manager.findSet(c, setlist.Query{SheetID: sheetID, Date: date})
		if !ok {
			return
		}
		reqs = setlist.Requests(rows)
	} else {
		var err error
		reqs, err = ParseSetlist(text)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if len(reqs) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "setlist is empty"})
			return
		}
	}

	fetch := manager.Fetcher.Fetch
	if flag(c, "seq") {
		fetch = manager.Fetcher.FetchSequential
	}
	res, err := fetch(c.Request.Context(), reqs, markup)
	if res == nil {
		logger.Errorf("fetching lyrics failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch lyrics"})
		return
	}
	if err != nil {
		logger.Warnf("some lookups failed: %v", err)
	}

	var notFound []string
	for _, req := range res.NotFound {
		notFound = append(notFound, req.String())
	}

	if markup {
		body := res.Text
		if len(notFound) > 0 {
			msg, _ := json.Marshal("NOT_FOUND:\n\n" + strings.Join(notFound, "\n"))
			body = fmt.Sprintf(pages.NotFoundAlert, msg) + body
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(body))
		return
	}

	body := res.Text
	if len(notFound) > 0 {
		body += "\nNOT_FOUND:\n" + strings.Join(notFound, "\n") + "\n"
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(body))
}

// Setlist serves /setlist: the set as song,artist CSV followed by
// "artist - song" lines, or every field with full=true.
func (manager *Manager) Setlist(c *gin.Context) {
	q := setlist.Query{
		SheetID: c.Query("sheetid"),
		Date:    c.Query("date"),
		Start:   c.Query("start"),
	}
	if q.SheetID == "" && q.Date == "" && q.Start == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "one of date, sheetid or start is required"})
		return
	}

	rows, ok := manager.findSet(c, q)
	if !ok {
		return
	}

	var b strings.Builder
	var err error
	if flag(c, "full") {
		err = WriteFullCSV(&b, rows)
	} else {
		err = WriteSetlist(&b, rows)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(b.String()))
}

// findSet writes the error response itself and reports false when there is
// nothing to render.
func (manager *Manager) findSet(c *gin.Context, q setlist.Query) ([]setlist.Row, bool) {
	logger := log.WithFields(log.Fields{"module": "handlers", "function": "findSet"})

	rows, err := manager.Sets.Find(c.Request.Context(), q)
	switch {
	case errors.Is(err, setlist.ErrConflictingQuery), errors.Is(err, setlist.ErrBadDate):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	case err != nil:
		logger.Errorf("reading setlist failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to read setlist"})
		return nil, false
	case len(rows) == 0:
		what := q.Date
		if what == "" {
			what = q.SheetID
		}
		if what == "" {
			what = q.Start
		}
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("no set found for %s", what)})
		return nil, false
	}
	return rows, true
}

// ParseSetlist reads pasted song,artist lines. Blank lines and a leading
// song,artist header are skipped; fields may be quoted.
func ParseSetlist(text string) ([]models.SongRequest, error) {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) > 0 && strings.EqualFold(strings.ReplaceAll(lines[0], " ", ""), "song,artist") {
		lines = lines[1:]
	}

	r := csv.NewReader(strings.NewReader(strings.Join(lines, "\n")))
	r.FieldsPerRecord = 2
	r.TrimLeadingSpace = true
	r.LazyQuotes = true

	var reqs []models.SongRequest
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadSetlist, err)
		}
		reqs = append(reqs, models.SongRequest{
			Song:   strings.TrimSpace(rec[0]),
			Artist: strings.TrimSpace(rec[1]),
		})
	}
	return reqs, nil
}

func WriteSetlist(w io.Writer, rows []setlist.Row) error {
	cw := csv.NewWriter(w)
	for _, r := range rows {
		if err := cw.Write([]string{r.Song, r.Artist}); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}

	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(w, "%s - %s\n", r.Artist, r.Song); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func WriteFullCSV(w io.Writer, rows []setlist.Row) error {
	cw := csv.NewWriter(w)

	header := make([]string, len(setlist.AllFields))
	for i, f := range setlist.AllFields {
		header[i] = setlist.Key(f)
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, r := range rows {
		rec := make([]string, len(setlist.AllFields))
		for i, f := range setlist.AllFields {
			rec[i] = r.Value(f)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
