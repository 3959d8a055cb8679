package lyrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", srv.Client())
}

func TestClientGet(t *testing.T) {
	var gotPath, gotArtist, gotTrack, gotAlbum string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotArtist = r.URL.Query().Get("artist_name")
		gotTrack = r.URL.Query().Get("track_name")
		gotAlbum = r.URL.Query().Get("album_name")
		w.Write([]byte(`{"id":1,"trackName":"Hold On","artistName":"Alabama Shakes","instrumental":false,"plainLyrics":"bless my heart"}`))
	})

	track, err := c.Get(context.Background(), "Hold On", "Alabama Shakes", Extra{Field: "album_name", Value: "Boys & Girls"})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if track == nil || track.Lyrics() != "bless my heart" {
		t.Fatalf("track = %+v", track)
	}
	if gotPath != "/api/get" {
		t.Errorf("path = %q; want /api/get", gotPath)
	}
	if gotArtist != "Alabama Shakes" || gotTrack != "Hold On" || gotAlbum != "Boys & Girls" {
		t.Errorf("query = artist %q track %q album %q", gotArtist, gotTrack, gotAlbum)
	}
}

func TestClientGetByID(t *testing.T) {
	var gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"id":15855138,"plainLyrics":"baby here I am"}`))
	})

	if _, err := c.Get(context.Background(), "Hard to Handle", "Black Crowes", Extra{ID: 15855138}); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if gotPath != "/api/get/15855138" {
		t.Errorf("path = %q; want /api/get/15855138", gotPath)
	}
}

func TestClientGetStatuses(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantTrack bool
		wantErr   error
	}{
		{"ok", http.StatusOK, `{"plainLyrics":"la"}`, true, nil},
		{"not_found", http.StatusNotFound, `{"code":404,"name":"TrackNotFound","message":"Failed to find specified track"}`, false, nil},
		{"bad_request", http.StatusBadRequest, `{"name":"ValidationError","message":"track_name is required"}`, false, nil},
		{"server_error", http.StatusInternalServerError, `oops`, false, ErrRemoteUnavailable},
		{"rate_limited", http.StatusTooManyRequests, ``, false, ErrRemoteUnavailable},
		{"garbage", http.StatusOK, `not json`, false, ErrRemoteUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			track, err := c.Get(context.Background(), "song", "artist", Extra{})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v; want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if (track != nil) != tt.wantTrack {
				t.Errorf("track = %+v; want present=%v", track, tt.wantTrack)
			}
		})
	}
}

func TestClientStatusErrorCode(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err := c.Get(context.Background(), "song", "artist", Extra{})
	var se StatusError
	if !errors.As(err, &se) || int(se) != http.StatusBadGateway {
		t.Errorf("err = %v; want StatusError(502)", err)
	}
}

func TestClientSearch(t *testing.T) {
	var gotTrack string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/search" {
			t.Errorf("path = %q; want /api/search", r.URL.Path)
		}
		gotTrack = r.URL.Query().Get("track_name")
		w.Write([]byte(`[{"artistName":"Elvis Costello","plainLyrics":"red shoes"},{"artistName":"Other"}]`))
	})

	results, err := c.Search(context.Background(), "Red Shoes")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if gotTrack != "Red Shoes" {
		t.Errorf("track_name = %q", gotTrack)
	}
	if len(results) != 2 || results[0].ArtistName != "Elvis Costello" {
		t.Errorf("results = %+v", results)
	}
}

func TestTrackLyrics(t *testing.T) {
	tests := []struct {
		name  string
		track Track
		want  string
	}{
		{"plain", Track{PlainLyrics: "plain", SyncedLyrics: "[00:01.00] synced"}, "plain"},
		{"synced_only", Track{SyncedLyrics: "[00:01.00] first\n[00:02.50] second"}, "first\nsecond"},
		{"synced_no_space", Track{SyncedLyrics: "[00:01.00]first\n[00:02.50]  indented\n[00:03.00]"}, "first\n indented"},
		{"empty", Track{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.track.Lyrics(); got != tt.want {
				t.Errorf("Lyrics() = %q; want %q", got, tt.want)
			}
		})
	}
}
