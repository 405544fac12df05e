package debug

import (
	"fmt"
	"time"
)

// Timer logs how long a stage of the load pipeline took.
type Timer struct {
	title string
	start time.Time
}

// Start logs "<title>: started" and returns a Timer for the stage.
func Start(format string, args ...any) Timer {
	t := Timer{title: fmt.Sprintf(format, args...), start: time.Now()}
	Logger().Debug(t.title + ": started")
	return t
}

// Finish logs "<title>: done" with the elapsed duration and returns it.
func (t Timer) Finish() time.Duration {
	d := time.Since(t.start)
	Logger().Debug(t.title+": done", "dur", d)
	return d
}
