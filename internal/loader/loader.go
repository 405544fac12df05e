// Package loader runs GeoJSON loads off the frame loop. Each request is
// parsed and reprojected in its own goroutine; completed results are
// queued on a channel that the frame loop drains without blocking.
package loader

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"geoview/internal/debug"
	"geoview/internal/geom"
	"geoview/internal/proj"
)

var ErrCancelled = errors.New("load cancelled")

// Request describes one load.
type Request struct {
	Source    Source
	SourceCRS string
	TargetCRS string
}

// Outcome is the immutable result of a finished load. Exactly one of
// Document and Err is meaningful.
type Outcome struct {
	ID        uint64
	Name      string
	Document  geom.Document
	SourceCRS string
	TargetCRS string
	Elapsed   time.Duration
	Err       error
}

// Loader owns the background jobs and the outcome queue.
type Loader struct {
	out chan Outcome

	mu      sync.Mutex
	next    uint64
	cancels map[uint64]context.CancelFunc
	// ids cancelled after their job may already have queued an outcome
	dropped map[uint64]bool
	wg      sync.WaitGroup
}

// New returns a Loader whose queue holds up to buffer outcomes before
// finished jobs wait for the consumer.
func New(buffer int) *Loader {
	return &Loader{
		out:     make(chan Outcome, max(buffer, 1)),
		cancels: make(map[uint64]context.CancelFunc),
		dropped: make(map[uint64]bool),
	}
}

// Start launches req in the background and returns its id.
func (l *Loader) Start(ctx context.Context, req Request) uint64 {
	ctx, cancel := context.WithCancel(ctx)
	l.mu.Lock()
	l.next++
	id := l.next
	l.cancels[id] = cancel
	l.mu.Unlock()

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		queued := false
		defer func() { l.finish(id, queued) }()
		o := run(ctx, req)
		o.ID = id
		if ctx.Err() != nil {
			debug.Logger().Debug("load discarded", "id", id, "name", o.Name)
			return
		}
		select {
		case l.out <- o:
			queued = true
		case <-ctx.Done():
		}
	}()
	return id
}

// finish releases the job's context. A cancel mark is only kept while an
// outcome sits in the queue for Drain to drop.
func (l *Loader) finish(id uint64, queued bool) {
	l.mu.Lock()
	if cancel, ok := l.cancels[id]; ok {
		cancel()
		delete(l.cancels, id)
	}
	if !queued {
		delete(l.dropped, id)
	}
	l.mu.Unlock()
}

// Cancel abandons an in-flight load. Its outcome is never delivered, even
// when the job had already queued it. It reports whether the load was
// still running.
func (l *Loader) Cancel(id uint64) bool {
	l.mu.Lock()
	cancel, ok := l.cancels[id]
	if ok {
		delete(l.cancels, id)
		l.dropped[id] = true
	}
	l.mu.Unlock()
	if ok {
		cancel()
	}
	return ok
}

// Pending returns the number of loads that have not delivered yet.
func (l *Loader) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.cancels)
}

// Drain returns every queued outcome in completion order without
// blocking.
func (l *Loader) Drain() []Outcome {
	var out []Outcome
	for {
		select {
		case o := <-l.out:
			if l.wasDropped(o.ID) {
				debug.Logger().Debug("load discarded", "id", o.ID, "name", o.Name)
				continue
			}
			out = append(out, o)
		default:
			return out
		}
	}
}

func (l *Loader) wasDropped(id uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.dropped[id] {
		delete(l.dropped, id)
		return true
	}
	return false
}

// Close cancels all in-flight loads and waits for their goroutines.
func (l *Loader) Close() {
	l.mu.Lock()
	for id, cancel := range l.cancels {
		cancel()
		delete(l.cancels, id)
	}
	l.mu.Unlock()
	l.wg.Wait()
}

// Load runs req synchronously. It is what Start runs in the background.
func Load(ctx context.Context, req Request) Outcome { return run(ctx, req) }

func run(ctx context.Context, req Request) (o Outcome) {
	o = Outcome{Name: req.Source.Name(), SourceCRS: req.SourceCRS, TargetCRS: req.TargetCRS}
	start := time.Now()
	defer func() { o.Elapsed = time.Since(start) }()

	doc, err := fetch(ctx, req.Source)
	if err != nil {
		o.Err = fmt.Errorf("load %s: %w", o.Name, err)
		return o
	}
	if err := ctx.Err(); err != nil {
		o.Err = ErrCancelled
		return o
	}
	doc.Collection, err = reproject(doc.Collection, req.SourceCRS, req.TargetCRS)
	if err != nil {
		o.Err = fmt.Errorf("load %s: %w", o.Name, err)
		return o
	}
	o.Document = doc
	return o
}

func fetch(ctx context.Context, src Source) (geom.Document, error) {
	t := debug.Start("parse %s", src.Name())
	defer t.Finish()
	rc, err := src.Open(ctx)
	if err != nil {
		return geom.Document{}, err
	}
	defer rc.Close()
	return geom.DecodeGeoJSON(rc)
}

func reproject(c geom.Collection, src, dst string) (geom.Collection, error) {
	tr, err := proj.NewTransformer(src, dst)
	if err != nil {
		return nil, err
	}
	t := debug.Start("reproject %s -> %s", src, dst)
	defer t.Finish()
	g, err := proj.Reproject(c, tr)
	if err != nil {
		return nil, err
	}
	return g.(geom.Collection), nil
}
