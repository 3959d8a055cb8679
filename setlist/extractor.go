package setlist

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/dmick/jamtools/models"
)

// Row is one song of one set. Parts maps an instrument field key (vocal,
// guitar1, ...) to the player assigned to it.
type Row struct {
	Date    int
	SongNum int
	Song    string
	Artist  string
	Parts   map[string]string
}

// Value returns the row's value for a canonical field name.
func (r Row) Value(field string) string {
	switch field {
	case FieldDate:
		return strconv.Itoa(r.Date)
	case FieldSongNum:
		return strconv.Itoa(r.SongNum)
	case FieldSong:
		return r.Song
	case FieldArtist:
		return r.Artist
	}
	return r.Parts[Key(field)]
}

func (r Row) Request() models.SongRequest {
	return models.SongRequest{Song: r.Song, Artist: r.Artist}
}

func Requests(rows []Row) []models.SongRequest {
	reqs := make([]models.SongRequest, len(rows))
	for i, r := range rows {
		reqs[i] = r.Request()
	}
	return reqs
}

var parenthetical = regexp.MustCompile(`\(.*\)`)

// Rows past this index end the set as soon as one is empty.
const minSetLength = 20

type Extractor struct {
	schemas Schemas
}

func NewExtractor(schemas Schemas) *Extractor {
	if schemas == nil {
		schemas = DefaultSchemas()
	}
	return &Extractor{schemas: schemas}
}

type located struct {
	index int
	field string
}

// Extract maps a sheet's header row and body block onto canonical rows.
// Columns the schema names but the header lacks are skipped.
func (e *Extractor) Extract(sheetDate string, header []string, body [][]string) ([]Row, error) {
	logger := log.WithFields(log.Fields{"module": "setlist", "function": "Extract", "sheet_date": sheetDate})

	date, err := ParseDate(sheetDate)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(header))
	for i, h := range header {
		names[i] = strings.TrimSpace(parenthetical.ReplaceAllString(h, ""))
	}

	var columns []located
	for _, col := range e.schemas.For(sheetDate) {
		if col.Rename != "" {
			logger.Infof("renaming %s to %s", col.Name, col.Rename)
		}
		idx := indexOf(names, col.Name)
		if idx < 0 {
			logger.Infof("no %s column", col.Name)
			continue
		}
		columns = append(columns, located{index: idx, field: col.Field()})
	}

	var rows []Row
	for i, cells := range body {
		if endOfSet(i, cells) {
			break
		}

		row := Row{Date: date, SongNum: i + 1, Parts: map[string]string{}}
		for _, c := range columns {
			if c.index >= len(cells) {
				continue
			}
			v := strings.ReplaceAll(strings.TrimSpace(cells[c.index]), "XX", "")
			switch c.field {
			case FieldSong:
				row.Song = v
			case FieldArtist:
				row.Artist = v
			default:
				row.Parts[Key(c.field)] = v
			}
		}
		rows = append(rows, row)
	}

	logger.Debugf("extracted %d rows", len(rows))
	return rows, nil
}

func endOfSet(i int, cells []string) bool {
	if i >= minSetLength && len(cells) == 0 {
		return true
	}
	if len(cells) >= 3 && blank(cells[0]) && blank(cells[1]) && blank(cells[2]) {
		return true
	}
	return len(cells) > 0 && strings.HasPrefix(strings.TrimSpace(cells[0]), "Tune to")
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}

func (r Row) String() string {
	return fmt.Sprintf("%d #%d %s - %s", r.Date, r.SongNum, r.Song, r.Artist)
}
