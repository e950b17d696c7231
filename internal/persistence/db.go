// Package persistence provides SQL-backed session storage. The
// default backend is a local SQLite file; a postgres:// DSN switches
// to Postgres via the pgx stdlib driver.
package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/jzheng/societygame/internal/engine"
	"github.com/jzheng/societygame/internal/game"
	"github.com/jzheng/societygame/internal/society"
)

// DB wraps a database connection for session persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens the store at the given DSN. Anything that is not a
// postgres URL is treated as a SQLite file path.
func Open(dsn string) (*DB, error) {
	var conn *sqlx.DB
	var err error
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		conn, err = sqlx.Open("pgx", dsn)
	} else {
		if !strings.Contains(dsn, "?") {
			dsn += "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
		}
		conn, err = sqlx.Open("sqlite", dsn)
	}
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS players (
		idx INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		role INTEGER,
		gold INTEGER NOT NULL,
		personal_score REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS messages (
		seq INTEGER PRIMARY KEY,
		from_idx INTEGER NOT NULL,
		to_idx INTEGER,
		text TEXT NOT NULL,
		is_rally INTEGER NOT NULL,
		round INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS promises (
		id TEXT PRIMARY KEY,
		proposer INTEGER NOT NULL,
		recipient INTEGER NOT NULL,
		gold_amount INTEGER NOT NULL,
		delay_rounds INTEGER NOT NULL,
		desired_role INTEGER NOT NULL,
		status INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS payments (
		seq INTEGER PRIMARY KEY,
		from_idx INTEGER NOT NULL,
		to_idx INTEGER NOT NULL,
		amount INTEGER NOT NULL,
		turns_remaining INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		seq INTEGER PRIMARY KEY,
		round INTEGER NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS society (
		id INTEGER PRIMARY KEY,
		raw_materials INTEGER NOT NULL,
		small_buildings INTEGER NOT NULL,
		big_buildings INTEGER NOT NULL,
		machinery INTEGER NOT NULL,
		population_json TEXT NOT NULL,
		food_json TEXT NOT NULL,
		projects_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS session_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_round ON events(round);
	CREATE INDEX IF NOT EXISTS idx_messages_round ON messages(round);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveSession performs a full-replace save of all session state.
func (db *DB) SaveSession(s *engine.Session) error {
	slog.Info("saving session",
		"stage", s.Stage.String(),
		"players", len(s.Players),
		"messages", len(s.Messages),
		"events", len(s.Events),
	)

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"players", "messages", "promises", "payments", "events", "society"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if err := db.savePlayers(tx, s.Players); err != nil {
		return fmt.Errorf("save players: %w", err)
	}
	if err := db.saveMessages(tx, s.Messages); err != nil {
		return fmt.Errorf("save messages: %w", err)
	}
	if err := db.savePromises(tx, s.Promises); err != nil {
		return fmt.Errorf("save promises: %w", err)
	}
	if err := db.savePayments(tx, s.ScheduledPayments); err != nil {
		return fmt.Errorf("save payments: %w", err)
	}
	if err := db.saveEvents(tx, s.Events); err != nil {
		return fmt.Errorf("save events: %w", err)
	}
	if err := db.saveSociety(tx, s.Society); err != nil {
		return fmt.Errorf("save society: %w", err)
	}
	if err := db.saveMeta(tx, s); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}

	return tx.Commit()
}

func (db *DB) savePlayers(tx *sqlx.Tx, players []game.Player) error {
	q := tx.Rebind("INSERT INTO players (idx, name, role, gold, personal_score) VALUES (?, ?, ?, ?, ?)")
	for _, p := range players {
		var role *int
		if p.Role != nil {
			r := int(*p.Role)
			role = &r
		}
		if _, err := tx.Exec(q, p.Index, p.Name, role, p.Gold, p.PersonalScore); err != nil {
			return fmt.Errorf("insert player %d: %w", p.Index, err)
		}
	}
	return nil
}

func (db *DB) saveMessages(tx *sqlx.Tx, messages []game.ChatMessage) error {
	q := tx.Rebind("INSERT INTO messages (seq, from_idx, to_idx, text, is_rally, round) VALUES (?, ?, ?, ?, ?, ?)")
	for i, m := range messages {
		if _, err := tx.Exec(q, i, m.From, m.To, m.Text, boolToInt(m.IsRally), m.Round); err != nil {
			return err
		}
	}
	return nil
}

func (db *DB) savePromises(tx *sqlx.Tx, promises []game.Promise) error {
	q := tx.Rebind(`INSERT INTO promises
		(id, proposer, recipient, gold_amount, delay_rounds, desired_role, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	for _, p := range promises {
		if _, err := tx.Exec(q, p.ID.String(), p.Proposer, p.Recipient,
			p.GoldAmount, p.DelayRounds, int(p.DesiredRole), int(p.Status)); err != nil {
			return err
		}
	}
	return nil
}

func (db *DB) savePayments(tx *sqlx.Tx, payments []game.ScheduledPayment) error {
	q := tx.Rebind("INSERT INTO payments (seq, from_idx, to_idx, amount, turns_remaining) VALUES (?, ?, ?, ?, ?)")
	for i, sp := range payments {
		if _, err := tx.Exec(q, i, sp.From, sp.To, sp.Amount, sp.TurnsRemaining); err != nil {
			return err
		}
	}
	return nil
}

func (db *DB) saveEvents(tx *sqlx.Tx, events []engine.Event) error {
	q := tx.Rebind("INSERT INTO events (seq, round, description, category) VALUES (?, ?, ?, ?)")
	for i, e := range events {
		if _, err := tx.Exec(q, i, e.Round, e.Description, e.Category); err != nil {
			return err
		}
	}
	return nil
}

func (db *DB) saveSociety(tx *sqlx.Tx, soc *society.State) error {
	popJSON, err := json.Marshal(soc.Population)
	if err != nil {
		return err
	}
	foodJSON, err := json.Marshal(soc.FoodStock)
	if err != nil {
		return err
	}
	projJSON, err := json.Marshal(soc.Projects)
	if err != nil {
		return err
	}
	q := tx.Rebind(`INSERT INTO society
		(id, raw_materials, small_buildings, big_buildings, machinery,
		 population_json, food_json, projects_json)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?)`)
	_, err = tx.Exec(q, soc.RawMaterials, soc.SmallBuildings, soc.BigBuildings,
		soc.Machinery, string(popJSON), string(foodJSON), string(projJSON))
	return err
}

// saveMeta stores scalar counters and the remaining JSON-encoded
// state (ballots, locked votes, audit records) as key/value pairs.
func (db *DB) saveMeta(tx *sqlx.Tx, s *engine.Session) error {
	meta := map[string]string{
		"stage":          strconv.Itoa(int(s.Stage)),
		"voting_phase":   strconv.Itoa(int(s.VotingPhase)),
		"revote_role":    strconv.Itoa(int(s.RevoteRole)),
		"current_index":  strconv.Itoa(s.CurrentIndex),
		"turn_number":    strconv.Itoa(s.TurnNumber),
		"campaign_round": strconv.Itoa(s.CampaignRound),
		"turn_pos":       strconv.Itoa(s.TurnPos),
		"seed":           strconv.FormatInt(s.Config.Seed, 10),
	}
	for key, v := range map[string]any{
		"turn_order":          s.TurnOrder,
		"declarations":        s.Declarations,
		"votes":               s.Votes,
		"revote_queue":        s.RevoteQueue,
		"revote_pools":        s.RevotePools,
		"locked_votes":        s.LockedVotes,
		"executive_orders":    s.ExecutiveOrders,
		"veto_records":        s.VetoRecords,
		"government_projects": s.GovernmentProjects,
		"pending_approval":    s.PendingApproval,
	} {
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		meta[key] = string(raw)
	}

	q := tx.Rebind("INSERT INTO session_meta (key, value) VALUES (?, ?) ON CONFLICT (key) DO UPDATE SET value = excluded.value")
	for k, v := range meta {
		if _, err := tx.Exec(q, k, v); err != nil {
			return fmt.Errorf("meta %s: %w", k, err)
		}
	}
	return nil
}

// HasSession reports whether a saved session exists.
func (db *DB) HasSession() bool {
	var n int
	if err := db.conn.Get(&n, "SELECT COUNT(*) FROM players"); err != nil {
		return false
	}
	return n > 0
}

// LoadSession restores a saved session. The base session is built
// from cfg first, then overwritten field by field from storage.
func (db *DB) LoadSession(cfg engine.Config) (*engine.Session, error) {
	s := engine.NewSession(cfg)

	if err := db.loadPlayers(s); err != nil {
		return nil, fmt.Errorf("load players: %w", err)
	}
	if err := db.loadMessages(s); err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}
	if err := db.loadPromises(s); err != nil {
		return nil, fmt.Errorf("load promises: %w", err)
	}
	if err := db.loadPayments(s); err != nil {
		return nil, fmt.Errorf("load payments: %w", err)
	}
	if err := db.loadEvents(s); err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	if err := db.loadSociety(s); err != nil {
		return nil, fmt.Errorf("load society: %w", err)
	}
	if err := db.loadMeta(s); err != nil {
		return nil, fmt.Errorf("load meta: %w", err)
	}

	slog.Info("session restored",
		"stage", s.Stage.String(),
		"players", len(s.Players),
		"turn", s.TurnNumber,
	)
	return s, nil
}

func (db *DB) loadPlayers(s *engine.Session) error {
	rows, err := db.conn.Queryx("SELECT idx, name, role, gold, personal_score FROM players ORDER BY idx")
	if err != nil {
		return err
	}
	defer rows.Close()

	var players []game.Player
	for rows.Next() {
		var (
			p    game.Player
			role *int
		)
		if err := rows.Scan(&p.Index, &p.Name, &role, &p.Gold, &p.PersonalScore); err != nil {
			return err
		}
		if role != nil {
			r := game.Role(*role)
			p.Role = &r
		}
		players = append(players, p)
	}
	if len(players) > 0 {
		s.Players = players
	}
	return rows.Err()
}

func (db *DB) loadMessages(s *engine.Session) error {
	rows, err := db.conn.Queryx("SELECT from_idx, to_idx, text, is_rally, round FROM messages ORDER BY seq")
	if err != nil {
		return err
	}
	defer rows.Close()

	s.Messages = nil
	for rows.Next() {
		var (
			m     game.ChatMessage
			rally int
		)
		if err := rows.Scan(&m.From, &m.To, &m.Text, &rally, &m.Round); err != nil {
			return err
		}
		m.IsRally = rally != 0
		s.Messages = append(s.Messages, m)
	}
	return rows.Err()
}

func (db *DB) loadPromises(s *engine.Session) error {
	rows, err := db.conn.Queryx("SELECT id, proposer, recipient, gold_amount, delay_rounds, desired_role, status FROM promises")
	if err != nil {
		return err
	}
	defer rows.Close()

	s.Promises = nil
	for rows.Next() {
		var (
			p            game.Promise
			id           string
			role, status int
		)
		if err := rows.Scan(&id, &p.Proposer, &p.Recipient, &p.GoldAmount, &p.DelayRounds, &role, &status); err != nil {
			return err
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			return err
		}
		p.ID = parsed
		p.DesiredRole = game.Role(role)
		p.Status = game.PromiseStatus(status)
		s.Promises = append(s.Promises, p)
	}
	return rows.Err()
}

func (db *DB) loadPayments(s *engine.Session) error {
	rows, err := db.conn.Queryx("SELECT from_idx, to_idx, amount, turns_remaining FROM payments ORDER BY seq")
	if err != nil {
		return err
	}
	defer rows.Close()

	s.ScheduledPayments = nil
	for rows.Next() {
		var sp game.ScheduledPayment
		if err := rows.Scan(&sp.From, &sp.To, &sp.Amount, &sp.TurnsRemaining); err != nil {
			return err
		}
		s.ScheduledPayments = append(s.ScheduledPayments, sp)
	}
	return rows.Err()
}

func (db *DB) loadEvents(s *engine.Session) error {
	var events []engine.Event
	err := db.conn.Select(&events, "SELECT round, description, category FROM events ORDER BY seq")
	if err != nil {
		return err
	}
	s.Events = events
	return nil
}

func (db *DB) loadSociety(s *engine.Session) error {
	row := db.conn.QueryRowx("SELECT raw_materials, small_buildings, big_buildings, machinery, population_json, food_json, projects_json FROM society WHERE id = 1")

	var (
		soc                          society.State
		popJSON, foodJSON, projJSON string
	)
	err := row.Scan(&soc.RawMaterials, &soc.SmallBuildings, &soc.BigBuildings,
		&soc.Machinery, &popJSON, &foodJSON, &projJSON)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(popJSON), &soc.Population); err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(foodJSON), &soc.FoodStock); err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(projJSON), &soc.Projects); err != nil {
		return err
	}
	s.Society = &soc
	return nil
}

func (db *DB) loadMeta(s *engine.Session) error {
	rows, err := db.conn.Queryx("SELECT key, value FROM session_meta")
	if err != nil {
		return err
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return err
		}
		meta[k] = v
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for key, dst := range map[string]*int{
		"current_index":  &s.CurrentIndex,
		"turn_number":    &s.TurnNumber,
		"campaign_round": &s.CampaignRound,
		"turn_pos":       &s.TurnPos,
	} {
		if v, ok := meta[key]; ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("meta %s: %w", key, err)
			}
			*dst = n
		}
	}
	if v, ok := meta["seed"]; ok {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("meta seed: %w", err)
		}
		s.Reseed(seed)
	}
	if v, ok := meta["stage"]; ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		s.Stage = game.Stage(n)
	}
	if v, ok := meta["voting_phase"]; ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		s.VotingPhase = engine.VotingPhase(n)
	}
	if v, ok := meta["revote_role"]; ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		s.RevoteRole = game.Role(n)
	}

	for key, dst := range map[string]any{
		"turn_order":          &s.TurnOrder,
		"declarations":        &s.Declarations,
		"votes":               &s.Votes,
		"revote_queue":        &s.RevoteQueue,
		"revote_pools":        &s.RevotePools,
		"locked_votes":        &s.LockedVotes,
		"executive_orders":    &s.ExecutiveOrders,
		"veto_records":        &s.VetoRecords,
		"government_projects": &s.GovernmentProjects,
		"pending_approval":    &s.PendingApproval,
	} {
		v, ok := meta[key]
		if !ok || v == "" {
			continue
		}
		if err := json.Unmarshal([]byte(v), dst); err != nil {
			return fmt.Errorf("meta %s: %w", key, err)
		}
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
