package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"ballotmap/internal"
	"ballotmap/internal/catalog"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS builds (
  id TEXT PRIMARY KEY,
  records INTEGER NOT NULL,
  indexed INTEGER NOT NULL,
  dropped INTEGER NOT NULL,
  positions INTEGER NOT NULL,
  counties INTEGER NOT NULL,
  feedsJson TEXT NOT NULL,
  duplicatesJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS candidates (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  buildId TEXT NOT NULL,
  positionKey TEXT NOT NULL,
  officeTitle TEXT NOT NULL,
  scope TEXT NOT NULL,
  county TEXT,
  bucket TEXT NOT NULL,
  ordinal INTEGER NOT NULL,
  name TEXT NOT NULL,
  party TEXT NOT NULL,
  year TEXT NOT NULL,
  electionType TEXT NOT NULL,
  electionName TEXT,
  contactUrl TEXT NOT NULL,
  financeUrl TEXT NOT NULL,
  photoUrl TEXT NOT NULL,
  UNIQUE(buildId, positionKey, bucket, ordinal),
  FOREIGN KEY(buildId) REFERENCES builds(id)
);
CREATE INDEX IF NOT EXISTS idx_candidates_position ON candidates(buildId, positionKey);
CREATE INDEX IF NOT EXISTS idx_candidates_county ON candidates(buildId, county);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

// WriteIndex stores one build and all of its candidate rows in a single
// transaction.
func (d *DB) WriteIndex(report catalog.BuildReport, rows []internal.CandidateExportRow) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	feedsJSON, _ := json.Marshal(report.Feeds)
	duplicatesJSON, _ := json.Marshal(report.Duplicates)
	if _, err := tx.Exec(`
INSERT INTO builds (id, records, indexed, dropped, positions, counties, feedsJson, duplicatesJson)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`, report.ID, report.Records, report.Indexed, report.Dropped, report.Positions, report.Counties, string(feedsJSON), string(duplicatesJSON)); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
INSERT INTO candidates (
  buildId, positionKey, officeTitle, scope, county, bucket, ordinal,
  name, party, year, electionType, electionName, contactUrl, financeUrl, photoUrl
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.Exec(
			report.ID, r.PositionKey, r.OfficeTitle, r.Scope, nullable(r.County), r.Bucket, r.Ordinal,
			r.Name, r.Party, r.Year, r.ElectionType, nullable(r.ElectionName), r.ContactURL, r.FinanceURL, r.PhotoURL,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) GetBuild(id string) (*catalog.BuildReport, error) {
	var report catalog.BuildReport
	var feedsJSON, duplicatesJSON string
	err := d.conn.QueryRow(`
SELECT id, records, indexed, dropped, positions, counties, feedsJson, duplicatesJson
FROM builds WHERE id = ?
`, id).Scan(&report.ID, &report.Records, &report.Indexed, &report.Dropped, &report.Positions, &report.Counties, &feedsJSON, &duplicatesJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	_ = json.Unmarshal([]byte(feedsJSON), &report.Feeds)
	_ = json.Unmarshal([]byte(duplicatesJSON), &report.Duplicates)
	return &report, nil
}

// ListCandidates returns the rows of one build in export order.
func (d *DB) ListCandidates(buildID string) ([]internal.CandidateExportRow, error) {
	rows, err := d.conn.Query(`
SELECT positionKey, officeTitle, scope, county, bucket, ordinal,
       name, party, year, electionType, electionName, contactUrl, financeUrl, photoUrl
FROM candidates WHERE buildId = ?
ORDER BY id ASC
`, buildID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.CandidateExportRow
	for rows.Next() {
		var r internal.CandidateExportRow
		var county, electionName sql.NullString
		if err := rows.Scan(
			&r.PositionKey, &r.OfficeTitle, &r.Scope, &county, &r.Bucket, &r.Ordinal,
			&r.Name, &r.Party, &r.Year, &r.ElectionType, &electionName, &r.ContactURL, &r.FinanceURL, &r.PhotoURL,
		); err != nil {
			return nil, err
		}
		r.County = county.String
		r.ElectionName = electionName.String
		out = append(out, r)
	}
	return out, rows.Err()
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
