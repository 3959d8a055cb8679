package setlist

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeReader struct {
	ranges map[string][][]string
	reads  []string
}

func (f *fakeReader) Read(ctx context.Context, sheetID, rng string) ([][]string, error) {
	key := sheetID + "!" + rng
	f.reads = append(f.reads, key)
	rows, ok := f.ranges[key]
	if !ok {
		return nil, errors.New("no such range " + key)
	}
	return rows, nil
}

func sheetRanges(f *fakeReader, id string, songs ...string) {
	f.ranges[id+"!C1:L1"] = [][]string{{"SONG", "ARTIST"}}
	var body [][]string
	for _, s := range songs {
		body = append(body, []string{s, "Artist " + id})
	}
	f.ranges[id+"!C3:L"] = body
}

func newTestSelector() (*Selector, *fakeReader) {
	f := &fakeReader{ranges: map[string][][]string{
		"index!A:B": {
			{"1/1/2024", "jan"},
			{"2/1/2024", "feb"},
			{"bad"},
			{"3/1/2024", "mar"},
			{"4/1/2024", "apr"},
			{},
			{"5/1/2024", "may"},
		},
	}}
	sheetRanges(f, "jan", "J1", "J2")
	sheetRanges(f, "feb", "F1")
	sheetRanges(f, "mar", "M1")
	sheetRanges(f, "apr", "A1")
	sheetRanges(f, "direct", "D1")

	s := NewSelector(f, NewExtractor(nil), SelectorConfig{IndexSheetID: "index"})
	s.now = func() time.Time { return time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC) }
	return s, f
}

func songs(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Song
	}
	return out
}

func TestFind(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  []string
	}{
		{"sheet_id", Query{SheetID: "direct", Date: "3/9/2024"}, []string{"D1"}},
		{"date_exact", Query{Date: "2024-02-01"}, []string{"F1"}},
		{"date_not_found", Query{Date: "2/2/2024"}, []string{}},
		{"start", Query{Start: "2/1/2024"}, []string{"F1", "M1"}},
		{"all_until_today", Query{}, []string{"J1", "J2", "F1", "M1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestSelector()
			rows, err := s.Find(context.Background(), tt.query)
			if err != nil {
				t.Fatalf("Find: %v", err)
			}
			got := songs(rows)
			if len(got) != len(tt.want) {
				t.Fatalf("songs = %v; want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("songs = %v; want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestFindSheetIDDefaultsToToday(t *testing.T) {
	s, _ := newTestSelector()
	rows, err := s.Find(context.Background(), Query{SheetID: "direct"})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(rows) != 1 || rows[0].Date != 20240315 {
		t.Errorf("rows = %+v; want one row dated 20240315", rows)
	}
}

func TestFindStopsAtFirstMatch(t *testing.T) {
	s, f := newTestSelector()
	if _, err := s.Find(context.Background(), Query{Date: "1/1/2024"}); err != nil {
		t.Fatalf("Find: %v", err)
	}
	for _, r := range f.reads {
		if r == "feb!C1:L1" {
			t.Errorf("read past the matching sheet: %v", f.reads)
		}
	}
}

func TestFindErrors(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  error
	}{
		{"sheet_and_start", Query{SheetID: "direct", Start: "1/1/2024"}, ErrConflictingQuery},
		{"date_and_start", Query{Date: "1/1/2024", Start: "1/1/2024"}, ErrConflictingQuery},
		{"bad_start", Query{Start: "soon"}, ErrBadDate},
		{"bad_date", Query{Date: "1/1"}, ErrBadDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestSelector()
			if _, err := s.Find(context.Background(), tt.query); !errors.Is(err, tt.want) {
				t.Errorf("err = %v; want %v", err, tt.want)
			}
		})
	}
}

func TestFindWithoutIndex(t *testing.T) {
	s := NewSelector(&fakeReader{}, NewExtractor(nil), SelectorConfig{})
	if _, err := s.Find(context.Background(), Query{}); !errors.Is(err, ErrNoIndex) {
		t.Errorf("err = %v; want ErrNoIndex", err)
	}
}

func TestRequests(t *testing.T) {
	reqs := Requests([]Row{{Song: "One", Artist: "U2"}, {Song: "Two", Artist: "U2"}})
	if len(reqs) != 2 || reqs[1].Song != "Two" || reqs[1].Artist != "U2" {
		t.Errorf("Requests() = %+v", reqs)
	}
}
