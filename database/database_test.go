package database

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
)

func newTestDB(t *testing.T) *Database {
	t.Helper()
	d, err := New(filepath.Join(t.TempDir(), "nested", "lyrics.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func TestGetMiss(t *testing.T) {
	d := newTestDB(t)
	text, ok, err := d.Get(context.Background(), "One", "U2")
	if err != nil || ok || text != "" {
		t.Errorf("Get() = %q, %v, %v; want miss", text, ok, err)
	}
}

func TestPutThenGet(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	inserted, err := d.Put(ctx, "One", "U2", "is it getting better")
	if err != nil || !inserted {
		t.Fatalf("Put() = %v, %v", inserted, err)
	}

	text, ok, err := d.Get(ctx, "One", "U2")
	if err != nil || !ok || text != "is it getting better" {
		t.Errorf("Get() = %q, %v, %v", text, ok, err)
	}

	// keys are exact
	if _, ok, _ := d.Get(ctx, "one", "U2"); ok {
		t.Errorf("lookup should be case sensitive")
	}
}

func TestPutIsIdempotent(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	if _, err := d.Put(ctx, "One", "U2", "first"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	inserted, err := d.Put(ctx, "One", "U2", "second")
	if err != nil {
		t.Fatalf("second Put should not fail: %v", err)
	}
	if inserted {
		t.Errorf("second Put reported an insert")
	}

	text, _, _ := d.Get(ctx, "One", "U2")
	if text != "first" {
		t.Errorf("Get() = %q; want first writer to win", text)
	}
	if n, err := d.Count(ctx); err != nil || n != 1 {
		t.Errorf("Count() = %d, %v; want 1", n, err)
	}
}

func TestConcurrentPut(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := d.Put(ctx, "Two", "U2", "lyrics"); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent Put: %v", err)
	}

	if n, _ := d.Count(ctx); n != 1 {
		t.Errorf("Count() = %d; want 1", n)
	}
}

func TestReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lyrics.db")
	ctx := context.Background()

	d, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := d.Put(ctx, "One", "U2", "kept"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	d.Close()

	d, err = New(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer d.Close()
	if text, ok, _ := d.Get(ctx, "One", "U2"); !ok || text != "kept" {
		t.Errorf("Get() after reopen = %q, %v", text, ok)
	}
}
