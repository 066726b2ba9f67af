package main

import (
	"database/sql"
	"log"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database connection
type DB struct {
	conn *sql.DB
}

// LeaderboardEntry is one persisted game result. Rank is set only when the
// entry is appended below the top-5 window to show the current game's
// standing; inside the window it is omitted from the JSON.
type LeaderboardEntry struct {
	GameID       int64  `json:"game_id"`
	Player1Score int    `json:"player_1_score"`
	Player2Score int    `json:"player_2_score"`
	Timestamp    string `json:"timestamp"`
	Rank         int    `json:"rank,omitempty"`
}

// GameInfoRow is one entry in the game catalog served over the TCP lookup
// channel.
type GameInfoRow struct {
	GameID  int64  `json:"game_id"`
	Name    string `json:"name"`
	Players int    `json:"players"`
	Genre   string `json:"genre"`
}

// OpenDB opens (or creates) the SQLite database
func OpenDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates tables if they don't exist
func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS game_results (
		game_id INTEGER PRIMARY KEY,
		player_1_score INTEGER NOT NULL DEFAULT 0,
		player_2_score INTEGER NOT NULL DEFAULT 0,
		timestamp TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS game_info (
		game_id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		players INTEGER NOT NULL DEFAULT 1,
		genre TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS analytics_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		event_type TEXT NOT NULL,
		player_id INTEGER,
		data TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_analytics_type ON analytics_events(event_type);
	`
	_, err := db.conn.Exec(schema)
	if err != nil {
		log.Printf("DB migration error: %v", err)
	}
	return err
}

// SaveResult persists one concluded game keyed by coarse wall-clock
// seconds. A same-second collision overwrites, so a double save of the
// same game is harmless.
func (db *DB) SaveResult(player1Score, player2Score int) (int64, error) {
	gameID := time.Now().Unix()
	timestamp := time.Now().Format(time.RFC3339)
	_, err := db.conn.Exec(
		`INSERT OR REPLACE INTO game_results (game_id, player_1_score, player_2_score, timestamp)
		 VALUES (?, ?, ?, ?)`,
		gameID, player1Score, player2Score, timestamp,
	)
	if err != nil {
		return 0, err
	}
	return gameID, nil
}

// HighScores returns the top 5 results ordered by the better of the two
// player scores. When the game identified by latestGameID ranks below the
// top 5, it is appended once more with its 1-based rank so clients can show
// the current game's standing.
func (db *DB) HighScores(latestGameID int64) ([]LeaderboardEntry, error) {
	rows, err := db.conn.Query(`
		SELECT game_id, player_1_score, player_2_score, timestamp
		FROM game_results
		ORDER BY MAX(player_1_score, player_2_score) DESC, game_id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var all []LeaderboardEntry
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.GameID, &e.Player1Score, &e.Player2Score, &e.Timestamp); err != nil {
			return nil, err
		}
		all = append(all, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	top := all
	if len(top) > 5 {
		top = top[:5]
	}
	out := make([]LeaderboardEntry, len(top))
	copy(out, top)

	for i, e := range all {
		if e.GameID == latestGameID {
			if i >= 5 {
				e.Rank = i + 1
				out = append(out, e)
			}
			break
		}
	}
	return out, nil
}

// ResultCount returns the number of persisted games.
func (db *DB) ResultCount() (int, error) {
	var n int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM game_results").Scan(&n)
	return n, err
}

// GameInfo looks up a catalog entry by id. Returns nil when absent.
func (db *DB) GameInfo(gameID int64) (*GameInfoRow, error) {
	row := db.conn.QueryRow(
		"SELECT game_id, name, players, genre FROM game_info WHERE game_id = ?",
		gameID,
	)
	g := &GameInfoRow{}
	err := row.Scan(&g.GameID, &g.Name, &g.Players, &g.Genre)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

// SeedGameInfo inserts the sample catalog on first run.
func (db *DB) SeedGameInfo() error {
	seed := []GameInfoRow{
		{GameID: 1, Name: "Block Blast", Players: 1, Genre: "Puzzle"},
		{GameID: 2, Name: "Dragon Quest", Players: 1, Genre: "RPG"},
		{GameID: 3, Name: "CSGO", Players: 10, Genre: "FPS"},
	}
	for _, g := range seed {
		_, err := db.conn.Exec(
			"INSERT OR IGNORE INTO game_info (game_id, name, players, genre) VALUES (?, ?, ?, ?)",
			g.GameID, g.Name, g.Players, g.Genre,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// GetSetting returns a settings value, or "" when unset.
func (db *DB) GetSetting(key string) string {
	var value string
	err := db.conn.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err != nil {
		return ""
	}
	return value
}

// SetSetting stores a settings value.
func (db *DB) SetSetting(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}
