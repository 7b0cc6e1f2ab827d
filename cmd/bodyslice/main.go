package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/banshee-data/bodyslice/internal/body/l1frames"
	"github.com/banshee-data/bodyslice/internal/body/l3measure"
	"github.com/banshee-data/bodyslice/internal/body/monitor"
	"github.com/banshee-data/bodyslice/internal/body/overlay"
	"github.com/banshee-data/bodyslice/internal/body/replay"
	"github.com/banshee-data/bodyslice/internal/body/space"
	sqlite "github.com/banshee-data/bodyslice/internal/body/storage/sqlite"
	"github.com/banshee-data/bodyslice/internal/config"
	"github.com/banshee-data/bodyslice/internal/timeutil"
	"github.com/banshee-data/bodyslice/internal/version"
)

var (
	sessionDir  = flag.String("session", "", "Recorded session directory (required)")
	configPath  = flag.String("config", "", "Settings file (.json, .yaml or .yml)")
	subjectFlag = flag.Uint64("subject", 0, "Subject to measure (0 = first subject in the recording)")
	dbPath      = flag.String("db", "", "SQLite database for measurements (overrides db_path)")
	listen      = flag.String("listen", "", "Monitor listen address, e.g. :8080 (overrides listen)")
	plotDir     = flag.String("plots", "", "Directory for diameter plots (overrides plot_dir)")
	overlayDir  = flag.String("overlay", "", "Directory for per-pass overlay PNGs")
	maxTicks    = flag.Int("ticks", 0, "Stop after this many ticks (0 = whole recording)")
	debug       = flag.Bool("debug", false, "Log every estimation pass")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if *showVersion {
		fmt.Println(version.String())
		return
	}
	if *sessionDir == "" {
		log.Fatal("-session is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatalf("bodyslice: %v", err)
	}
}

func loadSettings() (*config.Settings, error) {
	if *configPath == "" {
		return config.EmptySettings(), nil
	}
	return config.LoadSettings(*configPath)
}

// override returns flagValue when set, else the settings value.
func override(flagValue, settingsValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return settingsValue
}

// pickSubject returns want when non-zero, else the first recorded subject.
func pickSubject(want uint64, recorded []l1frames.SubjectID) (l1frames.SubjectID, error) {
	if want != 0 {
		return l1frames.SubjectID(want), nil
	}
	if len(recorded) == 0 {
		return 0, errors.New("recording has no tracked subjects")
	}
	return recorded[0], nil
}

func run(ctx context.Context) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	unit := settings.GetLengthUnits()

	src, err := replay.Open(*sessionDir)
	if err != nil {
		return err
	}
	subject, err := pickSubject(*subjectFlag, src.Subjects())
	if err != nil {
		return err
	}
	log.Printf("%s: %d frames, %dx%d, subject %d", *sessionDir, src.Len(), src.Session().Width, src.Session().Height, subject)

	if *debug {
		l1frames.SetDebugLogger(os.Stderr)
		l3measure.SetDebugLogger(os.Stderr)
	}

	deps := l3measure.Deps{
		Frames: src,
		Mapper: space.NewPinhole(settings.PinholeConfig()),
		Joints: src,
	}
	if settings.GetOverlay() || *overlayDir != "" {
		deps.Overlay = overlay.NewLineSink(settings.GetOverlayLineWidth())
	}
	est, err := l3measure.NewEstimator(deps, settings.EstimatorConfig())
	if err != nil {
		return err
	}
	if *overlayDir != "" {
		if err := os.MkdirAll(*overlayDir, 0755); err != nil {
			return fmt.Errorf("create overlay dir: %w", err)
		}
	}

	history := monitor.NewHistory(settings.GetHistorySize())
	r := &runner{
		source:     src,
		estimator:  est,
		subject:    subject,
		history:    history,
		overlayDir: *overlayDir,
		units:      unit,
		logf:       log.Printf,
	}

	var store *sqlite.Store
	if path := override(*dbPath, settings.GetDBPath()); path != "" {
		store, err = sqlite.Open(path)
		if err != nil {
			return err
		}
		defer store.Close()

		settingsJSON, err := settings.JSON()
		if err != nil {
			return fmt.Errorf("encode settings: %w", err)
		}
		sess, err := store.StartSession(subject, settingsJSON)
		if err != nil {
			return err
		}
		defer func() {
			if err := store.EndSession(sess.SessionID); err != nil {
				log.Printf("failed to end session: %v", err)
			}
		}()
		r.recorder = store
		r.sessionID = sess.SessionID
		log.Printf("recording passes to %s (session %s)", path, sess.SessionID)
	}

	var wg sync.WaitGroup
	serveCtx, stopServing := context.WithCancel(ctx)
	defer func() {
		stopServing()
		wg.Wait()
	}()

	addr := override(*listen, settings.GetListen())
	if addr != "" {
		cfg := monitor.WebServerConfig{
			Address: addr,
			History: history,
			Units:   unit,
		}
		if store != nil {
			cfg.Store = store
			cfg.SessionID = r.sessionID
		}
		ws := monitor.NewWebServer(cfg)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := ws.Start(serveCtx); err != nil {
				log.Printf("monitor: %v", err)
			}
		}()
	}

	clock := timeutil.RealClock{}
	started := clock.Now()
	ticks, err := r.run(ctx, clock, settings.GetTickInterval(), *maxTicks)
	if err != nil {
		return err
	}
	log.Printf("ran %d ticks in %v", ticks, clock.Since(started))
	r.logSummary()

	if dir := override(*plotDir, settings.GetPlotDir()); dir != "" {
		n, err := monitor.NewSeriesPlotter(dir, unit).GeneratePlots(history.Sets())
		if err != nil {
			return fmt.Errorf("generate plots: %w", err)
		}
		log.Printf("wrote %d plots to %s", n, dir)
	}

	if addr != "" && ctx.Err() == nil {
		log.Printf("recording finished; serving %s until interrupted", addr)
		<-ctx.Done()
	}
	return nil
}
