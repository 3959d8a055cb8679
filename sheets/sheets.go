// Package sheets reads cell ranges from Google Sheets, riding out the API's
// per-minute quota with exponential backoff.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	sentry "github.com/getsentry/sentry-go"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// Getter performs a single read of a range. Rows may be ragged: trailing
// empty cells are not returned by the API.
type Getter interface {
	Get(ctx context.Context, sheetID, rng string) ([][]string, error)
}

type Service struct {
	values *sheetsapi.SpreadsheetsValuesService
}

// NewService authenticates with a service-account key file, read-only.
func NewService(ctx context.Context, credentialsFile string) (*Service, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}

	conf, err := google.JWTConfigFromJSON(data, sheetsapi.SpreadsheetsReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}

	svc, err := sheetsapi.NewService(ctx, option.WithHTTPClient(conf.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("error creating Sheets client: %w", err)
	}

	return &Service{values: svc.Spreadsheets.Values}, nil
}

func (s *Service) Get(ctx context.Context, sheetID, rng string) ([][]string, error) {
	span := sentry.StartSpan(ctx, "sheets.values.get")
	span.Description = "Read range from Google Sheets"
	span.SetTag("sheet_id", sheetID)
	span.SetTag("range", rng)
	defer span.Finish()

	resp, err := s.values.Get(sheetID, rng).Context(ctx).Do()
	if err != nil {
		if IsRateLimited(err) {
			span.Status = sentry.SpanStatusResourceExhausted
		} else {
			span.Status = sentry.SpanStatusInternalError
		}
		return nil, err
	}

	rows := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		rows[i] = make([]string, len(row))
		for j, cell := range row {
			if str, ok := cell.(string); ok {
				rows[i][j] = str
			} else if cell != nil {
				rows[i][j] = fmt.Sprint(cell)
			}
		}
	}

	span.Status = sentry.SpanStatusOK
	span.SetData("rows", len(rows))
	return rows, nil
}

func IsRateLimited(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusTooManyRequests
}

// Backoff controls the wait between rate-limited reads. The wait starts at
// Initial and doubles on every consecutive 429, with no ceiling.
type Backoff struct {
	Initial time.Duration
	Sleep   func(ctx context.Context, d time.Duration) error
}

func DefaultBackoff(initial time.Duration) Backoff {
	if initial <= 0 {
		initial = time.Second
	}
	return Backoff{Initial: initial, Sleep: sleepContext}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type Source struct {
	getter  Getter
	backoff Backoff
}

func NewSource(getter Getter, backoff Backoff) *Source {
	if backoff.Sleep == nil {
		backoff.Sleep = sleepContext
	}
	if backoff.Initial <= 0 {
		backoff.Initial = time.Second
	}
	return &Source{getter: getter, backoff: backoff}
}

// Read fetches rng from sheetID, retrying for as long as the API answers 429.
// Any other error is returned straight away.
func (s *Source) Read(ctx context.Context, sheetID, rng string) ([][]string, error) {
	logger := log.WithFields(log.Fields{"module": "sheets", "sheet_id": sheetID, "range": rng})

	wait := s.backoff.Initial
	for {
		rows, err := s.getter.Get(ctx, sheetID, rng)
		if err == nil {
			return rows, nil
		}
		if !IsRateLimited(err) {
			return nil, fmt.Errorf("read %s!%s: %w", sheetID, rng, err)
		}

		logger.Infof("rate limited; pausing for %s", wait)
		if err := s.backoff.Sleep(ctx, wait); err != nil {
			return nil, fmt.Errorf("read %s!%s: %w", sheetID, rng, err)
		}
		wait *= 2
	}
}
