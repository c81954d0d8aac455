package indexdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"rlreplay.dev/internal/frames"
)

// SQLiteIndex is a queryable secondary index of decoded replays. Timelines
// on disk remain the source of truth.
type SQLiteIndex struct {
	db *sql.DB

	mu     sync.Mutex
	closed bool
}

// ReplayRow is one indexed replay.
type ReplayRow struct {
	ID        string `json:"id"`
	Path      string `json:"path"`
	Frames    int    `json:"frames"`
	GameClass string `json:"game_class,omitempty"`
	MatchGUID string `json:"match_guid,omitempty"`
	IndexedAt string `json:"indexed_at"`
}

type DemolitionRow struct {
	Frame    int    `json:"frame"`
	Attacker string `json:"attacker"`
	Victim   string `json:"victim"`
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteIndex{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS replays (
			id TEXT PRIMARY KEY,
			path TEXT NOT NULL,
			frames INTEGER NOT NULL,
			game_class TEXT NOT NULL,
			match_guid TEXT NOT NULL,
			indexed_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS players (
			replay_id TEXT NOT NULL REFERENCES replays(id) ON DELETE CASCADE,
			actor INTEGER NOT NULL,
			name TEXT NOT NULL,
			remote_id TEXT NOT NULL,
			party_leader TEXT NOT NULL,
			orange INTEGER,
			boost_pickups INTEGER NOT NULL,
			PRIMARY KEY (replay_id, actor)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_players_remote ON players(remote_id);`,
		`CREATE TABLE IF NOT EXISTS demolitions (
			replay_id TEXT NOT NULL REFERENCES replays(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			frame INTEGER NOT NULL,
			attacker INTEGER NOT NULL,
			victim INTEGER NOT NULL,
			PRIMARY KEY (replay_id, seq)
		);`,
		`CREATE TABLE IF NOT EXISTS boost_pickups (
			replay_id TEXT NOT NULL REFERENCES replays(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			frame INTEGER NOT NULL,
			player INTEGER NOT NULL,
			pad INTEGER NOT NULL,
			previous REAL NOT NULL,
			amount REAL NOT NULL,
			PRIMARY KEY (replay_id, seq)
		);`,
		`CREATE TABLE IF NOT EXISTS rumble_items (
			replay_id TEXT NOT NULL REFERENCES replays(id) ON DELETE CASCADE,
			player INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			item TEXT NOT NULL,
			frame_get INTEGER NOT NULL,
			frame_use INTEGER,
			PRIMARY KEY (replay_id, player, seq)
		);`,
		`CREATE TABLE IF NOT EXISTS dropshot_damage (
			replay_id TEXT NOT NULL REFERENCES replays(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			frame INTEGER NOT NULL,
			offender INTEGER NOT NULL,
			player INTEGER NOT NULL,
			tiles INTEGER NOT NULL,
			PRIMARY KEY (replay_id, seq)
		);`,
		`CREATE TABLE IF NOT EXISTS markers (
			replay_id TEXT NOT NULL REFERENCES replays(id) ON DELETE CASCADE,
			kind TEXT NOT NULL,
			frame INTEGER NOT NULL,
			PRIMARY KEY (replay_id, kind, frame)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	_, err := db.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1')`)
	return err
}

func (s *SQLiteIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

var ErrClosed = errors.New("index closed")

// IndexReplay replaces everything stored for id with the contents of d in
// one transaction.
func (s *SQLiteIndex) IndexReplay(ctx context.Context, id, path string, d *frames.Data) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"players", "demolitions", "boost_pickups", "rumble_items", "dropshot_damage", "markers"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE replay_id=?`, id); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM replays WHERE id=?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO replays(id,path,frames,game_class,match_guid,indexed_at) VALUES(?,?,?,?,?,?)`,
		id, path, d.Len(), d.GameInfo.GameClass, d.GameInfo.MatchGUID,
		time.Now().UTC().Format(time.RFC3339Nano),
	); err != nil {
		return err
	}

	insert := func(query string, rows [][]any) error {
		if len(rows) == 0 {
			return nil
		}
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, r := range rows {
			if _, err := stmt.ExecContext(ctx, r...); err != nil {
				return err
			}
		}
		return nil
	}

	var players, rumble [][]any
	for _, pid := range d.PlayerIDs() {
		p := d.Players[pid]
		var orange any
		if tm, ok := d.Teams[p.TeamActor]; ok {
			orange = tm.IsOrange
		}
		players = append(players, []any{id, pid, p.Name, p.RemoteID, p.PartyLeader, orange, p.BoostPickups})
		for i, it := range p.RumbleItems {
			var used any
			if it.UseFrame != nil {
				used = *it.UseFrame
			}
			rumble = append(rumble, []any{id, pid, i, it.Item, it.GetFrame, used})
		}
	}
	if err := insert(`INSERT INTO players(replay_id,actor,name,remote_id,party_leader,orange,boost_pickups) VALUES(?,?,?,?,?,?,?)`, players); err != nil {
		return fmt.Errorf("players: %w", err)
	}
	if err := insert(`INSERT INTO rumble_items(replay_id,player,seq,item,frame_get,frame_use) VALUES(?,?,?,?,?,?)`, rumble); err != nil {
		return fmt.Errorf("rumble_items: %w", err)
	}

	var demos [][]any
	for i, dm := range d.Demolitions {
		demos = append(demos, []any{id, i, dm.Frame, dm.Attacker, dm.Victim})
	}
	if err := insert(`INSERT INTO demolitions(replay_id,seq,frame,attacker,victim) VALUES(?,?,?,?,?)`, demos); err != nil {
		return fmt.Errorf("demolitions: %w", err)
	}

	var pickups [][]any
	for i, bp := range d.BoostPickups {
		pickups = append(pickups, []any{id, i, bp.Frame, bp.Player, bp.Pad, bp.Previous, bp.Amount})
	}
	if err := insert(`INSERT INTO boost_pickups(replay_id,seq,frame,player,pad,previous,amount) VALUES(?,?,?,?,?,?,?)`, pickups); err != nil {
		return fmt.Errorf("boost_pickups: %w", err)
	}

	var damage [][]any
	for i, ev := range d.Dropshot.DamageEvents {
		damage = append(damage, []any{id, i, ev.Frame, ev.Offender, ev.Player, len(ev.Tiles)})
	}
	if err := insert(`INSERT INTO dropshot_damage(replay_id,seq,frame,offender,player,tiles) VALUES(?,?,?,?,?,?)`, damage); err != nil {
		return fmt.Errorf("dropshot_damage: %w", err)
	}

	var markers [][]any
	for kind, fs := range map[string][]int{"goal": d.Goals, "kickoff": d.Kickoffs, "first_touch": d.FirstTouches} {
		for _, f := range fs {
			markers = append(markers, []any{id, kind, f})
		}
	}
	if err := insert(`INSERT OR IGNORE INTO markers(replay_id,kind,frame) VALUES(?,?,?)`, markers); err != nil {
		return fmt.Errorf("markers: %w", err)
	}

	return tx.Commit()
}

// Replays lists the indexed replays by id.
func (s *SQLiteIndex) Replays(ctx context.Context) ([]ReplayRow, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,path,frames,game_class,match_guid,indexed_at FROM replays ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []ReplayRow{}
	for rows.Next() {
		var r ReplayRow
		if err := rows.Scan(&r.ID, &r.Path, &r.Frames, &r.GameClass, &r.MatchGUID, &r.IndexedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Replay returns one indexed replay, or sql.ErrNoRows.
func (s *SQLiteIndex) Replay(ctx context.Context, id string) (ReplayRow, error) {
	var r ReplayRow
	err := s.db.QueryRowContext(ctx,
		`SELECT id,path,frames,game_class,match_guid,indexed_at FROM replays WHERE id=?`, id,
	).Scan(&r.ID, &r.Path, &r.Frames, &r.GameClass, &r.MatchGUID, &r.IndexedAt)
	return r, err
}

// Demolitions returns the demolitions of a replay with player names
// resolved where known.
func (s *SQLiteIndex) Demolitions(ctx context.Context, replayID string) ([]DemolitionRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT d.frame, COALESCE(a.name, ''), COALESCE(v.name, '')
		FROM demolitions d
		LEFT JOIN players a ON a.replay_id = d.replay_id AND a.actor = d.attacker
		LEFT JOIN players v ON v.replay_id = d.replay_id AND v.actor = d.victim
		WHERE d.replay_id = ?
		ORDER BY d.seq`, replayID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []DemolitionRow{}
	for rows.Next() {
		var r DemolitionRow
		if err := rows.Scan(&r.Frame, &r.Attacker, &r.Victim); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// PickupsByPlayer totals boost pickups per remote id across all replays.
func (s *SQLiteIndex) PickupsByPlayer(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT remote_id, SUM(boost_pickups) FROM players
		WHERE remote_id != ''
		GROUP BY remote_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]int{}
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		out[id] = n
	}
	return out, rows.Err()
}
