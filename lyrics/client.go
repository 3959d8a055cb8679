package lyrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	sentry "github.com/getsentry/sentry-go"
	log "github.com/sirupsen/logrus"
)

// ErrRemoteUnavailable wraps every lrclib failure other than "not found".
var ErrRemoteUnavailable = errors.New("lyrics service unavailable")

type StatusError int

func (se StatusError) Error() string {
	return "lrclib returned status " + strconv.Itoa(int(se))
}

type Track struct {
	ID           int    `json:"id"`
	TrackName    string `json:"trackName"`
	ArtistName   string `json:"artistName"`
	AlbumName    string `json:"albumName"`
	Instrumental bool   `json:"instrumental"`
	PlainLyrics  string `json:"plainLyrics"`
	SyncedLyrics string `json:"syncedLyrics"`
}

var syncedTimestamp = regexp.MustCompile(`\[\d+:\d+\.\d+\] ?`)

// Lyrics returns the plain lyrics, or the synced lyrics with their
// timestamps removed when lrclib only has the synced form.
func (t *Track) Lyrics() string {
	if t.PlainLyrics != "" {
		return t.PlainLyrics
	}
	if t.SyncedLyrics != "" {
		return strings.TrimSpace(syncedTimestamp.ReplaceAllString(t.SyncedLyrics, ""))
	}
	return ""
}

type apiError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// Extra narrows a lookup for songs lrclib can't tell apart by name alone.
// A non-zero ID replaces the name query with api/get/<id>; otherwise Field
// and Value are appended to the query string.
type Extra struct {
	ID    int
	Field string
	Value string
}

func (e Extra) IsZero() bool {
	return e.ID == 0 && e.Field == ""
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 10 * time.Second,
		}
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Get looks up a single track. A nil track with a nil error means lrclib has
// no match.
func (c *Client) Get(ctx context.Context, track, artist string, extra Extra) (*Track, error) {
	path := fmt.Sprintf("get?artist_name=%s&track_name=%s", url.QueryEscape(artist), url.QueryEscape(track))
	if extra.ID != 0 {
		path = fmt.Sprintf("get/%d", extra.ID)
	} else if extra.Field != "" {
		path += "&" + url.QueryEscape(extra.Field) + "=" + url.QueryEscape(extra.Value)
	}

	var t Track
	found, err := c.fetch(ctx, "lrclib.get", path, &t)
	if err != nil || !found {
		return nil, err
	}
	return &t, nil
}

// Search runs a full-text search on the track title alone.
func (c *Client) Search(ctx context.Context, track string) ([]Track, error) {
	var results []Track
	if _, err := c.fetch(ctx, "lrclib.search", "search?track_name="+url.QueryEscape(track), &results); err != nil {
		return nil, err
	}
	return results, nil
}

func (c *Client) fetch(ctx context.Context, op, path string, v any) (bool, error) {
	logger := log.WithFields(log.Fields{"module": "lyrics", "function": "fetch", "path": path})

	span := sentry.StartSpan(ctx, op)
	span.Description = "GET /api/" + path
	defer span.Finish()

	u := c.baseURL + "/api/" + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		span.Status = sentry.SpanStatusInvalidArgument
		return false, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.Status = sentry.SpanStatusUnavailable
		return false, fmt.Errorf("%w: %w", ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		span.Status = sentry.SpanStatusInternalError
		return false, fmt.Errorf("%w: read body: %w", ErrRemoteUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		logger.Trace("no match")
		span.Status = sentry.SpanStatusNotFound
		return false, nil
	case resp.StatusCode == http.StatusBadRequest:
		var apiErr apiError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Name != "" {
			logger.Warnf("%s: %s", apiErr.Name, apiErr.Message)
		} else {
			logger.Warnf("bad request: %s", strings.TrimSpace(string(body)))
		}
		span.Status = sentry.SpanStatusInvalidArgument
		return false, nil
	case resp.StatusCode/100 != 2:
		span.Status = sentry.SpanStatusInternalError
		return false, fmt.Errorf("%w: %w", ErrRemoteUnavailable, StatusError(resp.StatusCode))
	}

	if err := json.Unmarshal(body, v); err != nil {
		span.Status = sentry.SpanStatusInternalError
		return false, fmt.Errorf("%w: decode %s: %w", ErrRemoteUnavailable, op, err)
	}

	span.Status = sentry.SpanStatusOK
	return true, nil
}
