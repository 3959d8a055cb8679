// Package setlist turns the band's setlist spreadsheets into ordered rows of
// song, artist and instrument assignments.
package setlist

import "strings"

// Canonical field names. Date and SongNum are synthesized; the rest come
// from sheet columns.
const (
	FieldDate    = "DATE"
	FieldSongNum = "SONGNUM"
	FieldSong    = "SONG"
	FieldArtist  = "ARTIST"
	FieldVocal   = "VOCAL"
	FieldGuitar1 = "GUITAR 1"
	FieldGuitar2 = "GUITAR 2"
	FieldBass    = "BASS"
	FieldDrums   = "DRUMS"
	FieldKeys    = "KEYS"
	FieldKeys2   = "KEYS 2"
)

// AllFields lists every canonical field in output order.
var AllFields = []string{
	FieldDate, FieldSongNum, FieldSong, FieldArtist, FieldVocal,
	FieldGuitar1, FieldGuitar2, FieldBass, FieldDrums, FieldKeys, FieldKeys2,
}

// Key renders a canonical field name the way it appears in output:
// lowercased with spaces removed.
func Key(field string) string {
	return strings.ReplaceAll(strings.ToLower(field), " ", "")
}

// Column names a header cell to look for. When Rename is set the values are
// reported under Rename instead of Name.
type Column struct {
	Name   string
	Rename string
}

func (c Column) Field() string {
	if c.Rename != "" {
		return c.Rename
	}
	return c.Name
}

type Schema []Column

const DefaultSchemaKey = "Default"

// Schemas maps a sheet date, exactly as written in the index, to the column
// layout used on that date.
type Schemas map[string]Schema

func (s Schemas) For(sheetDate string) Schema {
	if schema, ok := s[sheetDate]; ok {
		return schema
	}
	return s[DefaultSchemaKey]
}

func cols(names ...string) Schema {
	schema := make(Schema, len(names))
	for i, n := range names {
		schema[i] = Column{Name: n}
	}
	return schema
}

func DefaultSchemas() Schemas {
	return Schemas{
		DefaultSchemaKey: cols(FieldSong, FieldArtist, FieldVocal, FieldGuitar1, FieldGuitar2, FieldBass, FieldDrums, FieldKeys),
		"11/21/2022": {
			{Name: FieldSong},
			{Name: FieldArtist},
			{Name: FieldVocal},
			{Name: FieldKeys},
			{Name: FieldKeys2},
			{Name: "GUITAR", Rename: FieldGuitar1},
			{Name: FieldBass},
			{Name: FieldDrums},
		},
		"1/16/2023": {
			{Name: FieldSong},
			{Name: FieldArtist},
			{Name: FieldVocal},
			{Name: "GUITAR 1a", Rename: FieldGuitar1},
			{Name: "GUITAR 1b", Rename: FieldGuitar2},
			{Name: FieldBass},
			{Name: FieldDrums},
			{Name: FieldKeys},
		},
	}
}
