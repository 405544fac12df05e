package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"geoview/internal/debug"
	"geoview/internal/loader"
	"geoview/internal/snapshot"
	"geoview/internal/tui"
	"geoview/internal/viewer"
)

func main() {
	cfg := viewer.DefaultConfig()
	flag.StringVar(&cfg.SourceCRS, "source-crs", cfg.SourceCRS, "CRS of the input coordinates (EPSG code or URN)")
	flag.StringVar(&cfg.TargetCRS, "target-crs", cfg.TargetCRS, "CRS to project into")
	flag.Float64Var(&cfg.StrokeWidth, "stroke", cfg.StrokeWidth, "line width in target CRS units (0 derives it from each layer)")
	logFile := flag.String("d", "", "write debug logs to this file")
	pngOut := flag.String("png", "", "render the layers to this PNG file instead of starting the viewer")
	width := flag.Int("width", 1000, "snapshot width in pixels")
	height := flag.Int("height", 800, "snapshot height in pixels")
	timeout := flag.Duration("timeout", time.Minute, "snapshot load timeout")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] [file.geojson | https://...]...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *logFile != "" {
		f, err := tea.LogToFile(*logFile, "geoview")
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		debug.SetOutput(f)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *pngOut != "" {
		cfg.Camera.ReferenceWidth = float64(*width)
		if err := renderPNG(ctx, cfg, flag.Args(), *pngOut, *width, *height, *timeout); err != nil {
			log.Fatal(err)
		}
		return
	}

	m, err := tui.New(ctx, cfg, flag.Args())
	if err != nil {
		log.Fatal(err)
	}
	defer m.Close()
	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion()).Run(); err != nil {
		log.Fatal(err)
	}
}

// renderPNG loads every source, runs frames until the loads settle, fits
// the camera to all layers and writes one image.
func renderPNG(ctx context.Context, cfg viewer.Config, sources []string, out string, w, h int, timeout time.Duration) error {
	if len(sources) == 0 {
		return errors.New("-png needs at least one source")
	}
	r := snapshot.New(w, h)
	v, err := viewer.New(cfg, r)
	if err != nil {
		return err
	}
	defer v.Close()
	for _, s := range sources {
		v.Open(ctx, loader.SourceFor(s))
	}

	deadline := time.Now().Add(timeout)
	var errs []error
	for {
		for _, ev := range v.Frame() {
			if ev.Kind == viewer.EventLoadFailed {
				errs = append(errs, ev.Err)
			}
			debug.Logger().Info("event", "event", ev.String())
		}
		if v.PendingLoads() == 0 && r.Len()+len(errs) >= len(sources) {
			break
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("timed out with %d load(s) pending", v.PendingLoads())
		}
		time.Sleep(10 * time.Millisecond)
	}
	if r.Len() == 0 {
		return errors.Join(errs...)
	}
	for _, err := range errs {
		log.Print(err)
	}
	if all, ok := v.Layers().BoundingRect(); ok {
		v.Camera().Fit(all)
	}
	return r.SavePNG(out, v.Camera())
}
