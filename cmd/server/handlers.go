package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"rlreplay.dev/internal/persistence/indexdb"
	"rlreplay.dev/internal/protocol"
	"rlreplay.dev/internal/transport/ws"
)

func newMux(src *source, idx *indexdb.SQLiteIndex, logger zerolog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
		s := src.Summary

		// Minimal Prometheus exposition format.
		gauge := func(name, help string, v int) {
			fmt.Fprintf(rw, "# HELP %s %s\n", name, help)
			fmt.Fprintf(rw, "# TYPE %s gauge\n", name)
			fmt.Fprintf(rw, "%s{replay=%q} %d\n", name, src.ID, v)
		}
		gauge("rlreplay_frames", "Decoded ticks.", s.Frames)
		gauge("rlreplay_players", "Players seen.", len(s.Players))
		gauge("rlreplay_demolitions", "Demolitions.", s.Demolitions)
		gauge("rlreplay_boost_pickups", "Boost pad pickups.", s.BoostPickups)
	})
	mux.HandleFunc("GET /v1/timeline", func(rw http.ResponseWriter, r *http.Request) {
		writeJSON(rw, http.StatusOK, struct {
			ReplayID string `json:"replay_id"`
			Summary  any    `json:"summary"`
		}{src.ID, src.Summary})
	})
	mux.HandleFunc("GET /v1/tick/{frame}", func(rw http.ResponseWriter, r *http.Request) {
		f, err := strconv.Atoi(r.PathValue("frame"))
		if err != nil {
			writeJSON(rw, http.StatusBadRequest, protocol.NewError(protocol.ErrBadRequest, "frame must be an integer"))
			return
		}
		if f < 0 || f >= src.Data.Len() {
			writeJSON(rw, http.StatusNotFound, protocol.NewError(protocol.ErrOutOfRange, fmt.Sprintf("frame %d outside [0, %d)", f, src.Data.Len())))
			return
		}
		writeJSON(rw, http.StatusOK, src.Data.Tick(f))
	})
	mux.HandleFunc("/v1/ws", ws.NewServer(src.ID, src.Data, logger).Handler())

	if idx != nil {
		mux.HandleFunc("GET /v1/replays", func(rw http.ResponseWriter, r *http.Request) {
			rows, err := idx.Replays(r.Context())
			if err != nil {
				logger.Error().Err(err).Msg("list replays")
				writeJSON(rw, http.StatusInternalServerError, protocol.NewError(protocol.ErrInternal, "index unavailable"))
				return
			}
			writeJSON(rw, http.StatusOK, rows)
		})
		mux.HandleFunc("GET /v1/replays/{id}/demolitions", func(rw http.ResponseWriter, r *http.Request) {
			id := r.PathValue("id")
			if _, err := idx.Replay(r.Context(), id); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					writeJSON(rw, http.StatusNotFound, protocol.NewError(protocol.ErrNotFound, "unknown replay "+id))
					return
				}
				logger.Error().Err(err).Str("replay", id).Msg("lookup replay")
				writeJSON(rw, http.StatusInternalServerError, protocol.NewError(protocol.ErrInternal, "index unavailable"))
				return
			}
			rows, err := idx.Demolitions(r.Context(), id)
			if err != nil {
				logger.Error().Err(err).Str("replay", id).Msg("list demolitions")
				writeJSON(rw, http.StatusInternalServerError, protocol.NewError(protocol.ErrInternal, "index unavailable"))
				return
			}
			writeJSON(rw, http.StatusOK, rows)
		})
	}
	return mux
}

func writeJSON(rw http.ResponseWriter, status int, v any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	_ = json.NewEncoder(rw).Encode(v)
}
