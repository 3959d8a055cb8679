package lyrics

import (
	"context"
	"regexp"
	"strings"

	"github.com/dmick/jamtools/models"
)

type stageFunc func(ctx context.Context, c *cascade, a Attempt) (string, bool, error)

// stage is one fallback strategy. Source is what a hit from this stage is
// reported as.
type stage struct {
	Name   string
	Source models.Source
	Run    stageFunc
}

// defaultStages returns the cascade in the order it is tried.
func defaultStages() []stage {
	return []stage{
		{"override", models.SourceOverride, overrideStage},
		{"direct", models.SourceDirect, directStage},
		{"clean-song", models.SourceFallback, cleanSongStage},
		{"clean-artist", models.SourceFallback, cleanArtistStage},
		{"prefix-the", models.SourceFallback, prefixTheStage},
		{"strip-the", models.SourceFallback, stripTheStage},
		{"split-song", models.SourceFallback, splitSongStage},
		{"split-artist", models.SourceFallback, splitArtistStage},
		{"truncate-and", models.SourceFallback, truncateAndStage},
		{"split-both", models.SourceFallback, splitBothStage},
		{"search", models.SourceSearch, searchStage},
	}
}

func overrideStage(ctx context.Context, c *cascade, a Attempt) (string, bool, error) {
	return c.overrides.Lookup(a.Song, a.Artist)
}

func directStage(ctx context.Context, c *cascade, a Attempt) (string, bool, error) {
	return c.fetch(ctx, a.Song, a.Artist)
}

func cleanSongStage(ctx context.Context, c *cascade, a Attempt) (string, bool, error) {
	return c.fetch(ctx, a.CleanSong, a.Artist)
}

func cleanArtistStage(ctx context.Context, c *cascade, a Attempt) (string, bool, error) {
	return c.fetch(ctx, a.CleanSong, a.CleanArtist)
}

func prefixTheStage(ctx context.Context, c *cascade, a Attempt) (string, bool, error) {
	return c.fetch(ctx, a.CleanSong, "The "+a.CleanArtist)
}

func stripTheStage(ctx context.Context, c *cascade, a Attempt) (string, bool, error) {
	return c.fetch(ctx, strings.TrimPrefix(a.CleanSong, "The "), a.CleanArtist)
}

func splitNames(s string) []string {
	parts := strings.Split(s, "/")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// splitSongStage handles medleys like "One/Two Hearts Beat As One": every
// part has to resolve or the stage fails.
func splitSongStage(ctx context.Context, c *cascade, a Attempt) (string, bool, error) {
	if !strings.Contains(a.CleanSong, "/") {
		return "", false, nil
	}
	songs := splitNames(a.CleanSong)
	found := make([]string, 0, len(songs))
	for _, s := range songs {
		text, ok, err := c.fetch(ctx, s, a.CleanArtist)
		if err != nil {
			return "", false, err
		}
		if !ok {
			return "", false, nil
		}
		found = append(found, text)
	}
	return strings.Join(found, Separator), true, nil
}

func splitArtistStage(ctx context.Context, c *cascade, a Attempt) (string, bool, error) {
	if !strings.Contains(a.CleanArtist, "/") {
		return "", false, nil
	}
	for _, artist := range splitNames(a.CleanArtist) {
		text, ok, err := c.fetch(ctx, a.CleanSong, artist)
		if err != nil || ok {
			return text, ok, err
		}
	}
	return "", false, nil
}

var (
	andWord     = regexp.MustCompile(`\band\b`)
	andTruncate = regexp.MustCompile(`^(.*) and.*$`)
)

// truncateAndStage drops guest credits: "Artist and Guest" becomes "Artist".
// Bands named "X and Y" are usually found by an earlier stage.
func truncateAndStage(ctx context.Context, c *cascade, a Attempt) (string, bool, error) {
	if !andWord.MatchString(a.CleanArtist) {
		return "", false, nil
	}
	artist := andTruncate.ReplaceAllString(a.CleanArtist, "$1")
	if artist == a.CleanArtist {
		return "", false, nil
	}
	return c.fetch(ctx, a.CleanSong, artist)
}

func splitBothStage(ctx context.Context, c *cascade, a Attempt) (string, bool, error) {
	if !strings.Contains(a.CleanSong, "/") || !strings.Contains(a.CleanArtist, "/") {
		return "", false, nil
	}
	songs := splitNames(a.CleanSong)
	artists := splitNames(a.CleanArtist)
	if len(songs) != len(artists) {
		return "", false, nil
	}
	found := make([]string, 0, len(songs))
	for i := range songs {
		text, ok, err := c.fetch(ctx, songs[i], artists[i])
		if err != nil {
			return "", false, err
		}
		if !ok {
			return "", false, nil
		}
		found = append(found, text)
	}
	return strings.Join(found, Separator), true, nil
}

// searchStage catches titles with a parenthetical prefix, like
// "(The Angels Wanna Wear My) Red Shoes", which the correction table has
// already cut down to "Red Shoes".
func searchStage(ctx context.Context, c *cascade, a Attempt) (string, bool, error) {
	return c.search(ctx, a.CleanSong, a.CleanArtist)
}
