package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/meur/cardforge/internal/models"
)

// ErrNoRuns is returned when a lookup needs the latest run and none is stored.
var ErrNoRuns = errors.New("no curation runs stored")

// Store handles all database operations
type Store struct {
	db *sql.DB
}

// New creates a new Store with SQLite
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate runs database migrations
func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			title_count INTEGER NOT NULL,
			character_count INTEGER NOT NULL,
			config TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS titles (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			id INTEGER NOT NULL,
			position INTEGER NOT NULL,
			name TEXT,
			rating_score REAL NOT NULL,
			rating_total INTEGER NOT NULL,
			rating_rank INTEGER,
			rarity TEXT NOT NULL,
			cost INTEGER NOT NULL,
			points INTEGER NOT NULL,
			source TEXT,
			PRIMARY KEY (run_id, id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_titles_rarity ON titles(run_id, rarity)`,
		`CREATE INDEX IF NOT EXISTS idx_titles_cost ON titles(run_id, cost)`,
		`CREATE TABLE IF NOT EXISTS characters (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			id INTEGER NOT NULL,
			position INTEGER NOT NULL,
			name TEXT,
			anime_ids TEXT NOT NULL,
			collects INTEGER NOT NULL,
			comments INTEGER NOT NULL,
			popularity INTEGER NOT NULL,
			comprehensive_popularity INTEGER NOT NULL,
			rarity TEXT NOT NULL,
			source TEXT,
			PRIMARY KEY (run_id, id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_characters_position ON characters(run_id, position)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

// --- Runs ---

// SaveRun stores a curated collection as a new run in one transaction.
// config is stored verbatim for later inspection.
func (s *Store) SaveRun(titles []models.Title, chars []models.Character, config any) (*models.Run, error) {
	cfg, err := json.Marshal(config)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}

	run := &models.Run{
		ID:             uuid.New().String(),
		TitleCount:     len(titles),
		CharacterCount: len(chars),
		Config:         cfg,
		CreatedAt:      time.Now().UTC(),
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs (id, title_count, character_count, config, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, run.ID, run.TitleCount, run.CharacterCount, string(cfg), run.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert run: %w", err)
	}

	titleStmt, err := tx.Prepare(`
		INSERT INTO titles (run_id, id, position, name, rating_score, rating_total, rating_rank, rarity, cost, points, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, err
	}
	defer titleStmt.Close()

	for i, t := range titles {
		_, err := titleStmt.Exec(run.ID, t.ID, i, t.Name, t.RatingScore, t.RatingTotal,
			t.RatingRank, t.Rarity.String(), t.Cost, t.Points, string(t.Source))
		if err != nil {
			return nil, fmt.Errorf("failed to insert title %d: %w", t.ID, err)
		}
	}

	charStmt, err := tx.Prepare(`
		INSERT INTO characters (run_id, id, position, name, anime_ids, collects, comments, popularity, comprehensive_popularity, rarity, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, err
	}
	defer charStmt.Close()

	for i, c := range chars {
		animeIDs, _ := json.Marshal(nonNil(c.AnimeIDs))
		_, err := charStmt.Exec(run.ID, c.ID, i, c.Name, string(animeIDs), c.Collects, c.Comments,
			c.Popularity, c.ComprehensivePopularity, c.Rarity.String(), string(c.Source))
		if err != nil {
			return nil, fmt.Errorf("failed to insert character %d: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns all runs, newest first
func (s *Store) ListRuns() ([]models.Run, error) {
	rows, err := s.db.Query(`
		SELECT id, title_count, character_count, config, created_at
		FROM runs ORDER BY created_at DESC, rowid DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []models.Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

// GetRun returns a run by ID
func (s *Store) GetRun(id string) (*models.Run, error) {
	row := s.db.QueryRow(`
		SELECT id, title_count, character_count, config, created_at
		FROM runs WHERE id = ?
	`, id)
	r, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return r, err
}

// LatestRun returns the most recent run, or ErrNoRuns
func (s *Store) LatestRun() (*models.Run, error) {
	row := s.db.QueryRow(`
		SELECT id, title_count, character_count, config, created_at
		FROM runs ORDER BY created_at DESC, rowid DESC LIMIT 1
	`)
	r, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, ErrNoRuns
	}
	return r, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*models.Run, error) {
	var r models.Run
	var cfg sql.NullString
	if err := row.Scan(&r.ID, &r.TitleCount, &r.CharacterCount, &cfg, &r.CreatedAt); err != nil {
		return nil, err
	}
	if cfg.Valid && cfg.String != "" {
		r.Config = json.RawMessage(cfg.String)
	}
	return &r, nil
}

// --- Titles ---

// TitleFilter narrows a title listing. Zero values mean "any".
type TitleFilter struct {
	Rarity *models.Rarity
	Cost   int
	Limit  int
	Offset int
}

const titleColumns = `id, name, rating_score, rating_total, rating_rank, rarity, cost, points, source`

// GetTitles returns a run's titles in curated order and the unpaged total
func (s *Store) GetTitles(runID string, f TitleFilter) ([]models.Title, int, error) {
	where := []string{"run_id = ?"}
	args := []any{runID}
	if f.Rarity != nil {
		where = append(where, "rarity = ?")
		args = append(args, f.Rarity.String())
	}
	if f.Cost > 0 {
		where = append(where, "cost = ?")
		args = append(args, f.Cost)
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM titles WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + titleColumns + " FROM titles WHERE " + cond + " ORDER BY position"
	query, args = paginate(query, args, f.Limit, f.Offset)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	titles := []models.Title{}
	for rows.Next() {
		t, err := scanTitle(rows)
		if err != nil {
			return nil, 0, err
		}
		titles = append(titles, *t)
	}
	return titles, total, rows.Err()
}

// GetTitle returns a title of a run by ID
func (s *Store) GetTitle(runID string, id int) (*models.Title, error) {
	row := s.db.QueryRow("SELECT "+titleColumns+" FROM titles WHERE run_id = ? AND id = ?", runID, id)
	t, err := scanTitle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return t, err
}

func scanTitle(row scanner) (*models.Title, error) {
	var t models.Title
	var name, source sql.NullString
	var rank sql.NullInt64
	var rarity string
	err := row.Scan(&t.ID, &name, &t.RatingScore, &t.RatingTotal, &rank,
		&rarity, &t.Cost, &t.Points, &source)
	if err != nil {
		return nil, err
	}
	t.Name = name.String
	t.RatingRank = int(rank.Int64)
	if t.Rarity, err = models.ParseRarity(rarity); err != nil {
		return nil, err
	}
	if source.String != "" {
		t.Source = json.RawMessage(source.String)
	}
	return &t, nil
}

// --- Characters ---

const characterColumns = `id, name, anime_ids, collects, comments, popularity, comprehensive_popularity, rarity, source`

// GetCharacters returns a page of a run's characters in curated order
func (s *Store) GetCharacters(runID string, limit, offset int) ([]models.Character, error) {
	query, args := paginate("SELECT "+characterColumns+" FROM characters WHERE run_id = ? ORDER BY position",
		[]any{runID}, limit, offset)
	return s.queryCharacters(query, args...)
}

// CountCharacters returns how many characters a run holds
func (s *Store) CountCharacters(runID string) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM characters WHERE run_id = ?`, runID).Scan(&n)
	return n, err
}

// GetCharacter returns a character of a run by ID
func (s *Store) GetCharacter(runID string, id int) (*models.Character, error) {
	chars, err := s.queryCharacters("SELECT "+characterColumns+" FROM characters WHERE run_id = ? AND id = ?", runID, id)
	if err != nil {
		return nil, err
	}
	if len(chars) == 0 {
		return nil, nil
	}
	return &chars[0], nil
}

// GetCharactersByIDs returns the characters of a run among ids, in curated
// order. Unknown IDs are ignored.
func (s *Store) GetCharactersByIDs(runID string, ids []int) ([]models.Character, error) {
	if len(ids) == 0 {
		return []models.Character{}, nil
	}
	args := make([]any, 0, len(ids)+1)
	args = append(args, runID)
	for _, id := range ids {
		args = append(args, id)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	return s.queryCharacters("SELECT "+characterColumns+" FROM characters WHERE run_id = ? AND id IN ("+
		placeholders+") ORDER BY position", args...)
}

func (s *Store) queryCharacters(query string, args ...any) ([]models.Character, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	chars := []models.Character{}
	for rows.Next() {
		var c models.Character
		var name, source sql.NullString
		var animeIDs, rarity string
		err := rows.Scan(&c.ID, &name, &animeIDs, &c.Collects, &c.Comments,
			&c.Popularity, &c.ComprehensivePopularity, &rarity, &source)
		if err != nil {
			return nil, err
		}
		c.Name = name.String
		if err := json.Unmarshal([]byte(animeIDs), &c.AnimeIDs); err != nil {
			return nil, fmt.Errorf("character %d anime_ids: %w", c.ID, err)
		}
		if c.Rarity, err = models.ParseRarity(rarity); err != nil {
			return nil, err
		}
		if source.String != "" {
			c.Source = json.RawMessage(source.String)
		}
		chars = append(chars, c)
	}
	return chars, rows.Err()
}

// --- Distributions ---

// RarityCounts returns per-tier counts of a run's titles or characters in
// canonical tier order. table is "titles" or "characters".
func (s *Store) RarityCounts(runID, table string) ([]models.TierCount, error) {
	if table != "titles" && table != "characters" {
		return nil, fmt.Errorf("unknown table %q", table)
	}
	rows, err := s.db.Query("SELECT rarity, COUNT(*) FROM "+table+" WHERE run_id = ? GROUP BY rarity", runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.Rarity]int)
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, err
		}
		r, err := models.ParseRarity(name)
		if err != nil {
			return nil, err
		}
		counts[r] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := []models.TierCount{}
	for r := models.RarityUR; r <= models.RarityN; r++ {
		if n, ok := counts[r]; ok {
			out = append(out, models.TierCount{Rarity: r, Count: n})
		}
	}
	return out, nil
}

// CostCounts returns per-cost title counts of a run in ascending cost order
func (s *Store) CostCounts(runID string) ([]models.CostCount, error) {
	rows, err := s.db.Query(`
		SELECT cost, COUNT(*) FROM titles WHERE run_id = ? GROUP BY cost ORDER BY cost
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.CostCount{}
	for rows.Next() {
		var c models.CostCount
		if err := rows.Scan(&c.Cost, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func paginate(query string, args []any, limit, offset int) (string, []any) {
	if limit <= 0 && offset <= 0 {
		return query, args
	}
	if limit <= 0 {
		limit = -1
	}
	return query + " LIMIT ? OFFSET ?", append(args, limit, max(offset, 0))
}

func nonNil(ids []int) []int {
	if ids == nil {
		return []int{}
	}
	return ids
}
