package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"geoview/internal/geom"
	"geoview/internal/proj"
)

const squareFeature = `{"type":"Feature","properties":{"name":"sq"},"geometry":{"type":"Polygon","coordinates":[[[0,0],[10,0],[10,10],[0,10],[0,0]]]}}`

func waitOutcome(t *testing.T, l *Loader) Outcome {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if got := l.Drain(); len(got) > 0 {
			return got[0]
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("timed out waiting for outcome")
	return Outcome{}
}

func TestSourceFor(t *testing.T) {
	tests := []struct {
		arg  string
		want Source
	}{
		{"data/lyon.geojson", FileSource{Path: "data/lyon.geojson"}},
		{"https://example.com/a/b.geojson", HTTPSource{URL: "https://example.com/a/b.geojson"}},
		{"HTTP://example.com/x", HTTPSource{URL: "HTTP://example.com/x"}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, SourceFor(tt.arg)); diff != "" {
			t.Errorf("SourceFor(%q) mismatch (-want +got):\n%s", tt.arg, diff)
		}
	}
}

func TestSourceNames(t *testing.T) {
	tests := []struct {
		src  Source
		want string
	}{
		{FileSource{Path: "/tmp/x/roads.geojson"}, "roads.geojson"},
		{HTTPSource{URL: "https://example.com/data/rivers.json"}, "rivers.json"},
		{HTTPSource{URL: "https://example.com/data/"}, "data"},
		{TextSource{Label: "pasted"}, "pasted"},
	}
	for _, tt := range tests {
		if got := tt.src.Name(); got != tt.want {
			t.Errorf("%#v.Name() = %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestLoadFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "square.geojson")
	if err := os.WriteFile(p, []byte(squareFeature), 0o644); err != nil {
		t.Fatal(err)
	}
	l := New(4)
	defer l.Close()
	id := l.Start(context.Background(), Request{Source: FileSource{Path: p}, SourceCRS: "EPSG:4326", TargetCRS: "EPSG:4326"})

	o := waitOutcome(t, l)
	if o.Err != nil {
		t.Fatalf("outcome error: %v", o.Err)
	}
	if o.ID != id || o.Name != "square.geojson" {
		t.Errorf("outcome id/name = %d %q, want %d %q", o.ID, o.Name, id, "square.geojson")
	}
	want := geom.Collection{geom.Polygon{Exterior: geom.Ring{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}, {X: 0, Y: 0}}}}
	if diff := cmp.Diff(want, o.Document.Collection); diff != "" {
		t.Errorf("collection mismatch (-want +got):\n%s", diff)
	}
	if got := o.Document.Properties[0]["name"]; got != "sq" {
		t.Errorf("properties[0][name] = %v, want sq", got)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.geojson")
	if err := os.WriteFile(bad, []byte(`{"type":`), 0o644); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name    string
		req     Request
		wantErr error
	}{
		{"missing file", Request{Source: FileSource{Path: filepath.Join(dir, "nope.geojson")}, SourceCRS: "EPSG:4326", TargetCRS: "EPSG:4326"}, fs.ErrNotExist},
		{"unknown crs", Request{Source: TextSource{Label: "t", Text: squareFeature}, SourceCRS: "EPSG:4326", TargetCRS: "EPSG:12"}, proj.ErrUnknownCRS},
		{"bad json", Request{Source: FileSource{Path: bad}, SourceCRS: "EPSG:4326", TargetCRS: "EPSG:4326"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := Load(context.Background(), tt.req)
			if o.Err == nil {
				t.Fatal("Load() succeeded, want error")
			}
			if tt.wantErr != nil && !errors.Is(o.Err, tt.wantErr) {
				t.Errorf("Load() error = %v, want %v", o.Err, tt.wantErr)
			}
			if len(o.Document.Collection) != 0 {
				t.Error("failed load published geometry")
			}
		})
	}
}

func TestLoadHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/layers/square.geojson" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/geo+json")
		w.Write([]byte(squareFeature))
	}))
	defer srv.Close()

	o := Load(context.Background(), Request{
		Source:    HTTPSource{URL: srv.URL + "/layers/square.geojson", Client: srv.Client()},
		SourceCRS: "EPSG:4326",
		TargetCRS: "EPSG:4326",
	})
	if o.Err != nil {
		t.Fatalf("Load() error = %v", o.Err)
	}
	if o.Name != "square.geojson" || len(o.Document.Collection) != 1 {
		t.Errorf("outcome = %q with %d geometries", o.Name, len(o.Document.Collection))
	}

	o = Load(context.Background(), Request{
		Source:    HTTPSource{URL: srv.URL + "/missing", Client: srv.Client()},
		SourceCRS: "EPSG:4326",
		TargetCRS: "EPSG:4326",
	})
	if o.Err == nil {
		t.Error("Load() of a 404 succeeded")
	}
}

func TestCancelDiscardsOutcome(t *testing.T) {
	started := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	}))
	defer srv.Close()

	l := New(1)
	id := l.Start(context.Background(), Request{
		Source:    HTTPSource{URL: srv.URL + "/slow.geojson", Client: srv.Client()},
		SourceCRS: "EPSG:4326",
		TargetCRS: "EPSG:4326",
	})
	<-started
	if l.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1", l.Pending())
	}
	if !l.Cancel(id) {
		t.Fatal("Cancel() = false for a running load")
	}
	if l.Cancel(id) {
		t.Error("second Cancel() = true")
	}
	l.Close()
	if got := l.Drain(); len(got) != 0 {
		t.Errorf("Drain() after cancel = %+v, want nothing", got)
	}
	if l.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", l.Pending())
	}
}

func TestCancelAfterQueued(t *testing.T) {
	l := New(4)
	// Two jobs that have queued their outcomes but not yet finished.
	for _, id := range []uint64{1, 2} {
		_, cancel := context.WithCancel(context.Background())
		l.cancels[id] = cancel
		l.out <- Outcome{ID: id, Name: fmt.Sprint(id)}
	}
	if !l.Cancel(1) {
		t.Fatal("Cancel() = false for an unfinished load")
	}
	l.finish(1, true)
	l.finish(2, true)
	got := l.Drain()
	if len(got) != 1 || got[0].ID != 2 {
		t.Errorf("Drain() = %+v, want only outcome 2", got)
	}
	if len(l.dropped) != 0 {
		t.Errorf("dropped = %v, want empty", l.dropped)
	}
}

func TestDrainOrder(t *testing.T) {
	l := New(8)
	defer l.Close()
	for _, name := range []string{"a", "b", "c"} {
		l.Start(context.Background(), Request{Source: TextSource{Label: name, Text: squareFeature}, SourceCRS: "EPSG:4326", TargetCRS: "EPSG:4326"})
	}
	deadline := time.Now().Add(5 * time.Second)
	for l.Pending() > 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	got := l.Drain()
	if len(got) != 3 {
		t.Fatalf("Drain() returned %d outcomes, want 3", len(got))
	}
	if more := l.Drain(); len(more) != 0 {
		t.Errorf("second Drain() = %d outcomes, want 0", len(more))
	}
}
