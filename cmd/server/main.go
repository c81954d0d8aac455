package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"rlreplay.dev/internal/persistence/indexdb"
	"rlreplay.dev/internal/tuning"
)

func main() {
	var (
		addr         = flag.String("addr", ":8080", "listen address")
		bundlePath   = flag.String("bundle", "", "session bundle to decode at startup")
		timelinePath = flag.String("timeline", "", "timeline snapshot to serve instead of decoding")
		tuningPath   = flag.String("tuning", "", "tuning.yaml (optional)")
		indexPath    = flag.String("index", "", "sqlite event index to expose (optional)")
		verbose      = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Str("component", "server").Logger()

	if (*bundlePath == "") == (*timelinePath == "") {
		log.Fatal().Msg("exactly one of -bundle or -timeline is required")
	}
	tune, err := tuning.LoadOrDefaults(*tuningPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load tuning")
	}

	src, err := loadSource(*bundlePath, *timelinePath, tune)
	if err != nil {
		log.Fatal().Err(err).Msg("load replay")
	}
	log.Info().Str("replay", src.ID).Int("frames", src.Data.Len()).Int("players", len(src.Data.Players)).Msg("replay loaded")

	var idx *indexdb.SQLiteIndex
	if *indexPath != "" {
		idx, err = indexdb.OpenSQLite(*indexPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", *indexPath).Msg("open index")
		}
		defer idx.Close()
	}

	ctx, cancel := signalContext()
	defer cancel()

	srv := &http.Server{
		Addr:              *addr,
		Handler:           newMux(src, idx, log.Logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	log.Info().Str("addr", *addr).Msg("listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("ListenAndServe")
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}
