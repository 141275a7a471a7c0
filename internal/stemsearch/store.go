package stemsearch

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

const insertBatchSize = 1000

// Store persists the exact term-frequency index to a SQLite file so repeated
// searcher runs over the same corpus can be inspected with plain SQL.
type Store struct {
	dbPath string
}

func NewStore(dbPath string) *Store {
	return &Store{dbPath: dbPath}
}

func (s *Store) connect() (*sql.DB, error) {
	db, err := sql.Open("sqlite3", s.dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening term cache %s: %w", s.dbPath, err)
	}
	return db, nil
}

// Save writes the exact TF index with per-term document frequency and IDF.
// Inserts are batched; existing (term, doc) rows are overwritten.
func (s *Store) Save(ci *CorpusIndex) error {
	db, err := s.connect()
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS termFrequencies (
			term        TEXT    NOT NULL,
			doc         INTEGER NOT NULL,
			tf          INTEGER,
			df          INTEGER,
			totalDocs   INTEGER,
			idf         REAL
		);
		CREATE UNIQUE INDEX IF NOT EXISTS ux_term_doc ON termFrequencies(term, doc);
	`)
	if err != nil {
		return fmt.Errorf("creating term cache schema: %w", err)
	}

	var valueStrings []string
	var valueArgs []any
	flush := func() error {
		if len(valueStrings) == 0 {
			return nil
		}
		stmt := fmt.Sprintf(`
			INSERT INTO termFrequencies (term, doc, tf) VALUES %s
			ON CONFLICT(term, doc) DO UPDATE SET
				tf = excluded.tf
			`,
			strings.Join(valueStrings, ","),
		)
		if _, err := db.Exec(stmt, valueArgs...); err != nil {
			return fmt.Errorf("inserting term frequencies: %w", err)
		}
		valueStrings = nil
		valueArgs = nil
		return nil
	}

	for term, postings := range ci.exactIndex {
		for doc, tf := range postings {
			valueStrings = append(valueStrings, "(?, ?, ?)")
			valueArgs = append(valueArgs, term, doc, tf)
			if len(valueStrings) == insertBatchSize {
				if err := flush(); err != nil {
					return err
				}
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}

	_, err = db.Exec(`
		WITH dfByTerm AS (
			SELECT term, COUNT(DISTINCT doc) df
			FROM termFrequencies
			GROUP BY term
		)
		UPDATE termFrequencies
		SET
			df = (SELECT df FROM dfByTerm WHERE term = termFrequencies.term),
			totalDocs = (SELECT COUNT(DISTINCT doc) FROM termFrequencies)
		;
	`)
	if err != nil {
		return fmt.Errorf("updating document frequencies: %w", err)
	}
	_, err = db.Exec(`
		UPDATE termFrequencies
		SET idf = LN((totalDocs + 1.0) / (df + 1.0)) + 1.0
		;
	`)
	if err != nil {
		return fmt.Errorf("updating idf column: %w", err)
	}
	return nil
}
