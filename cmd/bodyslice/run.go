package main

import (
	"context"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/banshee-data/bodyslice/internal/body/l1frames"
	"github.com/banshee-data/bodyslice/internal/body/l3measure"
	"github.com/banshee-data/bodyslice/internal/body/monitor"
	"github.com/banshee-data/bodyslice/internal/body/overlay"
	"github.com/banshee-data/bodyslice/internal/timeutil"
	"github.com/banshee-data/bodyslice/internal/units"
)

// frameAdvancer moves a recorded source to its next frame.
type frameAdvancer interface {
	Advance() (bool, error)
}

// passRecorder persists updated passes. *sqlite.Store implements it.
type passRecorder interface {
	RecordPass(sessionID string, timestampNanos int64, set *l3measure.Set) error
}

// runner drives one subject's estimator against a recording.
type runner struct {
	source    frameAdvancer
	estimator *l3measure.Estimator
	subject   l1frames.SubjectID
	history   *monitor.History

	// recorder and sessionID are optional.
	recorder  passRecorder
	sessionID string

	// overlayDir receives one PNG per updated pass when set.
	overlayDir string
	units      string

	logf func(format string, v ...interface{})
}

// run advances the recording and measures the subject once per tick until
// the recording ends, maxTicks ticks have run (when positive) or ctx is
// cancelled. It returns the number of ticks run.
func (r *runner) run(ctx context.Context, clock timeutil.Clock, interval time.Duration, maxTicks int) (int, error) {
	ticker := clock.NewTicker(interval)
	defer ticker.Stop()

	ticks := 0
	for maxTicks <= 0 || ticks < maxTicks {
		select {
		case <-ctx.Done():
			return ticks, nil
		case <-ticker.C():
		}

		more, err := r.source.Advance()
		if err != nil {
			return ticks, fmt.Errorf("advance recording: %w", err)
		}
		if !more {
			return ticks, nil
		}
		ticks++
		if err := r.pass(); err != nil {
			return ticks, err
		}
	}
	return ticks, nil
}

// pass runs one estimator tick and publishes an updated set.
func (r *runner) pass() error {
	status := r.estimator.Tick(r.subject)
	r.history.SetStats(uint64(r.subject), r.estimator.Stats())
	if status != l3measure.StatusUpdated {
		return nil
	}

	set := r.estimator.Set()
	r.history.Push(set)

	if r.recorder != nil {
		if err := r.recorder.RecordPass(r.sessionID, set.TimestampNanos, set); err != nil {
			return fmt.Errorf("record pass: %w", err)
		}
	}

	if r.overlayDir != "" {
		if img := r.estimator.Overlay(); img != nil {
			overlay.Caption(img, captionText(set, r.units), image.Pt(4, 14), overlay.CaptionColor)
			if _, err := overlay.SaveFrame(r.overlayDir, set.TimestampNanos, img); err != nil {
				return err
			}
		}
	}
	return nil
}

// captionText lists the valid diameters of set, for example
// "height 172.4cm torso_2 31.0cm".
func captionText(set *l3measure.Set, unit string) string {
	var parts []string
	for _, k := range set.Kinds() {
		if d, ok := set.Diameter(k); ok {
			parts = append(parts, fmt.Sprintf("%s %.*f%s", k, units.Precision(unit), units.ConvertLength(d, unit), unit))
		}
	}
	if len(parts) == 0 {
		return "no valid slices"
	}
	return strings.Join(parts, " ")
}

// logSummary writes one line per kind summarising the history.
func (r *runner) logSummary() {
	prec := units.Precision(r.units)
	stats := r.estimator.Stats()
	r.logf("ticks: updated=%d stale=%d no_subject=%d no_frame=%d",
		stats.Updated, stats.Stale, stats.NoSubject, stats.NoFrame)
	for _, s := range monitor.Summarize(r.history.Sets(), r.units) {
		if s.Valid == 0 {
			r.logf("%-8s valid=0/%d", s.Kind, s.Passes)
			continue
		}
		r.logf("%-8s valid=%d/%d mean=%.*f%s sd=%.*f median=%.*f min=%.*f max=%.*f",
			s.Kind, s.Valid, s.Passes,
			prec, s.Mean, r.units, prec, s.StdDev, prec, s.Median, prec, s.Min, prec, s.Max)
	}
}
