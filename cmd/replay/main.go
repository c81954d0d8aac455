package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/remeh/sizedwaitgroup"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"rlreplay.dev/internal/network"
	"rlreplay.dev/internal/persistence/indexdb"
	"rlreplay.dev/internal/tuning"
)

func main() {
	var (
		outDir     = flag.String("out", "./out", "output directory")
		tuningPath = flag.String("tuning", "", "tuning.yaml (optional)")
		indexPath  = flag.String("index", "", "sqlite event index path (optional)")
		workers    = flag.Int("workers", runtime.NumCPU(), "bundles decoded in parallel")
		compress   = flag.Bool("zstd", false, "zstd-compress data.json")
		ticks      = flag.Bool("ticks", false, "write the per-tick JSONL log")
		events     = flag.Bool("events", false, "write the event JSONL log")
		timeline   = flag.Bool("timeline", false, "write a reloadable timeline snapshot")
		archiveOut = flag.Bool("archive", false, "archive the timeline and logs under <out>/archives")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] bundle.yaml|dir ...\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()
	setupLogging(*verbose)

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}
	paths, err := expand(flag.Args())
	if err != nil {
		log.Fatal().Err(err).Msg("list bundles")
	}
	if len(paths) == 0 {
		log.Fatal().Msg("no bundles found")
	}

	tune, err := tuning.LoadOrDefaults(*tuningPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load tuning")
	}

	opt := options{
		OutDir:   *outDir,
		Zstd:     *compress,
		Ticks:    *ticks,
		Events:   *events,
		Timeline: *timeline,
		Archive:  *archiveOut,
		Tuning:   tune,
	}
	if *indexPath != "" {
		idx, err := indexdb.OpenSQLite(*indexPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", *indexPath).Msg("open index")
		}
		defer idx.Close()
		opt.Index = idx
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	failed := run(ctx, opt, paths, *workers)
	if failed > 0 {
		log.Error().Int("failed", failed).Int("total", len(paths)).Msg("some bundles failed")
		stop()
		if opt.Index != nil {
			_ = opt.Index.Close()
		}
		os.Exit(1)
	}
}

// run decodes paths with at most workers passes in flight and returns the
// number of failures.
func run(ctx context.Context, opt options, paths []string, workers int) int {
	if workers < 1 {
		workers = 1
	}
	var (
		mu     sync.Mutex
		failed int
	)
	swg := sizedwaitgroup.New(workers)
	for _, p := range paths {
		if ctx.Err() != nil {
			break
		}
		swg.Add()
		go func(p string) {
			defer swg.Done()
			res, err := process(ctx, opt, p)
			if err != nil {
				logFailure(p, err)
				mu.Lock()
				failed++
				mu.Unlock()
				return
			}
			log.Info().Strs("outputs", res.Outputs).Msg(summaryLine(res))
		}(p)
	}
	swg.Wait()
	return failed
}

func logFailure(path string, err error) {
	ev := log.Error().Err(err).Str("bundle", path)
	var de *network.DecodeError
	if errors.As(err, &de) {
		ev = ev.Int("frame", de.Frame)
		if de.Context != nil {
			// Lists every live actor.
			log.Debug().Str("bundle", path).Msg("decode context:\n" + de.Context.Summary())
		}
	}
	ev.Msg("decode failed")
}

// expand turns directory arguments into the bundle manifests they hold.
func expand(args []string) ([]string, error) {
	var out []string
	for _, a := range args {
		fi, err := os.Stat(a)
		if err != nil {
			return nil, err
		}
		if !fi.IsDir() {
			out = append(out, a)
			continue
		}
		ents, err := os.ReadDir(a)
		if err != nil {
			return nil, err
		}
		var names []string
		for _, e := range ents {
			if e.IsDir() {
				continue
			}
			if n := e.Name(); strings.HasSuffix(n, ".yaml") || strings.HasSuffix(n, ".yml") {
				names = append(names, n)
			}
		}
		sort.Strings(names)
		for _, n := range names {
			out = append(out, filepath.Join(a, n))
		}
	}
	return out, nil
}

func setupLogging(verbose bool) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}
