package storage

import (
	"database/sql"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
	_ "modernc.org/sqlite"

	"github.com/matsen/nbib/internal/csl"
)

// DB wraps a SQLite database connection. The database is a query cache;
// items.jsonl stays the source of truth.
type DB struct {
	db *sql.DB
}

const selectItemFields = `item_json`

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS items (
			id TEXT PRIMARY KEY,
			title TEXT,
			container TEXT,
			doi TEXT,
			pmid TEXT,
			issued_raw TEXT,
			authors_text TEXT,
			item_json TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_items_doi ON items(doi) WHERE doi IS NOT NULL AND doi != '';
		CREATE INDEX IF NOT EXISTS idx_items_pmid ON items(pmid) WHERE pmid IS NOT NULL;

		-- Standalone FTS table, text is NFC-normalized before insert
		CREATE VIRTUAL TABLE IF NOT EXISTS items_fts USING fts5(
			id,
			title,
			abstract,
			authors_text,
			container
		);
	`

	_, err := db.Exec(schema)
	return err
}

// RebuildFromJSONL clears the database and rebuilds it from a JSONL file.
func (d *DB) RebuildFromJSONL(jsonlPath string) (int, error) {
	items, err := ReadAll(jsonlPath)
	if err != nil {
		return 0, fmt.Errorf("reading JSONL: %w", err)
	}

	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning rebuild: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM items"); err != nil {
		return 0, fmt.Errorf("clearing items table: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM items_fts"); err != nil {
		return 0, fmt.Errorf("clearing items_fts table: %w", err)
	}

	itemsStmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO items (id, title, container, doi, pmid, issued_raw, authors_text, item_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing items insert: %w", err)
	}
	defer itemsStmt.Close()

	ftsStmt, err := tx.Prepare(`
		INSERT INTO items_fts (id, title, abstract, authors_text, container)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing fts insert: %w", err)
	}
	defer ftsStmt.Close()

	for _, item := range items {
		data, err := item.MarshalJSON()
		if err != nil {
			return 0, fmt.Errorf("encoding item %s: %w", item.ID, err)
		}

		title := norm.NFC.String(item.Title())
		container, _ := item.Value("container-title")
		container = norm.NFC.String(container)
		abstract, _ := item.Value("abstract")
		doi, _ := item.Value("DOI")
		issued, _ := item.Date("issued")
		authorsText := norm.NFC.String(formatAuthorsText(item.NamesFor("author")))

		_, err = itemsStmt.Exec(
			item.ID, title, nullableStringValue(container), nullableStringValue(doi),
			nullableStringValue(PMID(item)), nullableStringValue(issued.RawString()),
			authorsText, string(data),
		)
		if err != nil {
			return 0, fmt.Errorf("inserting item %s: %w", item.ID, err)
		}

		_, err = ftsStmt.Exec(item.ID, title, norm.NFC.String(abstract), authorsText, container)
		if err != nil {
			return 0, fmt.Errorf("inserting fts for %s: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing rebuild: %w", err)
	}
	return len(items), nil
}

// PMID returns the PubMed identifier recorded in an item's notes, or "".
// Notes read back from JSON arrive joined by newlines.
func PMID(item csl.Item) string {
	for _, note := range item.Values(csl.NoteKey) {
		for line := range strings.SplitSeq(note, "\n") {
			if id, ok := strings.CutPrefix(line, "PMID: "); ok {
				return strings.TrimSpace(id)
			}
		}
	}
	return ""
}

// formatAuthorsText creates a searchable text representation of authors.
func formatAuthorsText(names []csl.NameParts) string {
	var out []string
	for _, n := range names {
		switch {
		case n.Literal != nil:
			out = append(out, *n.Literal)
		case n.Given != nil:
			out = append(out, *n.Given+" "+n.FamilyString())
		default:
			out = append(out, n.FamilyString())
		}
	}
	return strings.Join(out, ", ")
}

// GetByID retrieves an item by its ID. Returns nil if not found.
func (d *DB) GetByID(id string) (*csl.Item, error) {
	row := d.db.QueryRow(`SELECT `+selectItemFields+` FROM items WHERE id = ?`, id)
	return scanItem(row)
}

// GetByPMID retrieves an item by its PubMed identifier. Returns nil if not found.
func (d *DB) GetByPMID(pmid string) (*csl.Item, error) {
	row := d.db.QueryRow(`SELECT `+selectItemFields+` FROM items WHERE pmid = ? LIMIT 1`, pmid)
	return scanItem(row)
}

// Search performs a full-text search and returns matching items.
func (d *DB) Search(query string, limit int) ([]csl.Item, error) {
	ftsQuery := prepareFTSQuery(query)
	if ftsQuery == "" {
		return nil, nil
	}

	rows, err := d.db.Query(`
		SELECT `+selectItemFields+`
		FROM items
		WHERE id IN (SELECT id FROM items_fts WHERE items_fts MATCH ?)
		ORDER BY id
		LIMIT ?`, ftsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// SearchField performs a search on a specific field.
func (d *DB) SearchField(field, value string, limit int) ([]csl.Item, error) {
	var column string
	switch field {
	case "author":
		column = "authors_text"
	case "title":
		column = "title"
	case "journal":
		column = "container"
	default:
		return nil, fmt.Errorf("unknown search field: %s", field)
	}

	ftsQuery := prepareColumnQuery(column, value)
	if ftsQuery == "" {
		return nil, nil
	}

	rows, err := d.db.Query(`
		SELECT `+selectItemFields+`
		FROM items
		WHERE id IN (SELECT id FROM items_fts WHERE items_fts MATCH ?)
		ORDER BY id
		LIMIT ?
	`, ftsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", field, err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// ListAll returns all items ordered by ID. A limit <= 0 means no limit.
func (d *DB) ListAll(limit int) ([]csl.Item, error) {
	query := `SELECT ` + selectItemFields + ` FROM items ORDER BY id`
	var args []any

	if limit > 0 {
		query += " LIMIT ?"
		args = []any{limit}
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// Count returns the total number of items.
func (d *DB) Count() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM items").Scan(&count)
	return count, err
}

// scanner interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (*csl.Item, error) {
	var data string
	if err := s.Scan(&data); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	var item csl.Item
	if err := item.UnmarshalJSON([]byte(data)); err != nil {
		return nil, fmt.Errorf("parsing item JSON: %w", err)
	}
	return &item, nil
}

func scanItems(rows *sql.Rows) ([]csl.Item, error) {
	var items []csl.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		if item != nil {
			items = append(items, *item)
		}
	}
	return items, rows.Err()
}

// nullableStringValue converts a string to sql.NullString, treating empty as NULL.
func nullableStringValue(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// prepareFTSQuery normalizes a query and escapes FTS5 syntax.
func prepareFTSQuery(query string) string {
	query = strings.TrimSpace(norm.NFC.String(query))
	if query == "" {
		return query
	}

	// FTS5 uses double quotes for phrase matching
	if strings.ContainsAny(query, "\"*+-:(){}[]^~.,/") {
		query = strings.ReplaceAll(query, "\"", "\"\"")
		return "\"" + query + "\""
	}

	return query
}

// prepareColumnQuery restricts every word of value to one FTS column.
func prepareColumnQuery(column, value string) string {
	var terms []string
	for _, word := range strings.Fields(norm.NFC.String(value)) {
		escaped := strings.ReplaceAll(word, "\"", "\"\"")
		terms = append(terms, column+":\""+escaped+"\"")
	}
	return strings.Join(terms, " AND ")
}
