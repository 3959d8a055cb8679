package setlist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

var (
	ErrConflictingQuery = errors.New("sheet id or date cannot be combined with start")
	ErrNoIndex          = errors.New("no setlist index sheet configured")
)

// Reader reads a cell range from a spreadsheet.
type Reader interface {
	Read(ctx context.Context, sheetID, rng string) ([][]string, error)
}

// Query selects sets. SheetID reads one sheet directly; Date finds the set
// played on that date through the index; Start collects every set from that
// date through today. An empty query collects every set up to today.
type Query struct {
	SheetID string
	Date    string
	Start   string
}

type SelectorConfig struct {
	IndexSheetID string
	IndexRange   string
	HeaderRange  string
	BodyRange    string
	Location     *time.Location
}

type Selector struct {
	reader    Reader
	extractor *Extractor
	cfg       SelectorConfig
	now       func() time.Time
}

func NewSelector(reader Reader, extractor *Extractor, cfg SelectorConfig) *Selector {
	if cfg.IndexRange == "" {
		cfg.IndexRange = "A:B"
	}
	if cfg.HeaderRange == "" {
		cfg.HeaderRange = "C1:L1"
	}
	if cfg.BodyRange == "" {
		cfg.BodyRange = "C3:L"
	}
	if cfg.Location == nil {
		cfg.Location = time.FixedZone("UTC-6", -6*60*60)
	}
	return &Selector{reader: reader, extractor: extractor, cfg: cfg, now: time.Now}
}

func (s *Selector) Find(ctx context.Context, q Query) ([]Row, error) {
	logger := log.WithFields(log.Fields{"module": "setlist", "function": "Find"})

	if (q.SheetID != "" || q.Date != "") && q.Start != "" {
		return nil, ErrConflictingQuery
	}

	now := s.now()
	if q.SheetID != "" {
		date := q.Date
		if date == "" {
			date = isoDate(now, s.cfg.Location)
		}
		return s.Sheet(ctx, date, q.SheetID)
	}

	if s.cfg.IndexSheetID == "" {
		return nil, ErrNoIndex
	}

	var dateInt, startInt int
	var err error
	if q.Date != "" {
		if dateInt, err = ParseDate(q.Date); err != nil {
			return nil, err
		}
	}
	if q.Start != "" {
		if startInt, err = ParseDate(q.Start); err != nil {
			return nil, err
		}
	}
	today := Today(now, s.cfg.Location)

	index, err := s.reader.Read(ctx, s.cfg.IndexSheetID, s.cfg.IndexRange)
	if err != nil {
		return nil, fmt.Errorf("read setlist index: %w", err)
	}

	var rows []Row
	for _, entry := range index {
		if len(entry) == 0 {
			break
		}
		if len(entry) < 2 {
			logger.Warnf("skipping index row %v: want date and sheet id", entry)
			continue
		}

		sheetDate, sheetID := strings.TrimSpace(entry[0]), strings.TrimSpace(entry[1])
		sheetDateInt, err := ParseDate(sheetDate)
		if err != nil {
			logger.Warnf("skipping index row %v: %v", entry, err)
			continue
		}

		if q.Date != "" {
			if sheetDateInt == dateInt {
				return s.Sheet(ctx, sheetDate, sheetID)
			}
			continue
		}

		if sheetDateInt > today || (q.Start != "" && sheetDateInt < startInt) {
			continue
		}

		set, err := s.Sheet(ctx, sheetDate, sheetID)
		if err != nil {
			return nil, err
		}
		rows = append(rows, set...)
	}

	if q.Date != "" {
		logger.Infof("no set found for %s", q.Date)
	}
	return rows, nil
}

// Sheet extracts the set on one sheet. sheetDate selects the column schema
// and stamps every row.
func (s *Selector) Sheet(ctx context.Context, sheetDate, sheetID string) ([]Row, error) {
	header, err := s.reader.Read(ctx, sheetID, s.cfg.HeaderRange)
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", sheetID, err)
	}
	var names []string
	if len(header) > 0 {
		names = header[0]
	}

	body, err := s.reader.Read(ctx, sheetID, s.cfg.BodyRange)
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w", sheetID, err)
	}

	return s.extractor.Extract(sheetDate, names, body)
}
