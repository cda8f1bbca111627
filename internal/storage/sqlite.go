package storage

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/semindex/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db   *sql.DB
	path string
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dbPath != ":memory:" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// each pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db, path: dbPath}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS indices (
		name TEXT PRIMARY KEY,
		dimension INTEGER NOT NULL,
		metric TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS embeddings (
		index_name TEXT NOT NULL,
		id TEXT NOT NULL,
		vector BLOB NOT NULL,
		content TEXT NOT NULL,
		content_type TEXT NOT NULL,
		metadata TEXT,
		timestamp TIMESTAMP NOT NULL,
		PRIMARY KEY (index_name, id),
		FOREIGN KEY (index_name) REFERENCES indices(name) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_embeddings_timestamp ON embeddings(index_name, timestamp);
	`
	_, err := db.Exec(schema)
	return err
}

// SaveIndex replaces the stored snapshot of info.Name in a single transaction.
func (s *SQLiteStorage) SaveIndex(ctx context.Context, info models.IndexInfo, embeddings []*models.Embedding) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM indices WHERE name = ?`, info.Name); err != nil {
		return fmt.Errorf("failed to clear index %s: %w", info.Name, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO indices (name, dimension, metric, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		info.Name, info.Dimension, string(info.Metric), info.CreatedAt.UTC(), info.UpdatedAt.UTC(),
	); err != nil {
		return fmt.Errorf("failed to save index %s: %w", info.Name, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO embeddings (index_name, id, vector, content, content_type, metadata, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, emb := range embeddings {
		metadataJSON, err := json.Marshal(emb.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata for %s: %w", emb.ID, err)
		}
		if _, err := stmt.ExecContext(ctx,
			info.Name, emb.ID, float32SliceToBytes(emb.Vector), emb.Content,
			string(emb.ContentType), string(metadataJSON), emb.Timestamp.UTC(),
		); err != nil {
			return fmt.Errorf("failed to save embedding %s: %w", emb.ID, err)
		}
	}
	return tx.Commit()
}

// LoadIndices returns every stored snapshot ordered by index name, embeddings by id.
func (s *SQLiteStorage) LoadIndices(ctx context.Context) ([]*Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, dimension, metric, created_at, updated_at FROM indices ORDER BY name`)
	if err != nil {
		return nil, err
	}
	var snapshots []*Snapshot
	for rows.Next() {
		var (
			info   models.IndexInfo
			metric string
		)
		if err := rows.Scan(&info.Name, &info.Dimension, &metric, &info.CreatedAt, &info.UpdatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		info.Metric = models.Metric(metric)
		snapshots = append(snapshots, &Snapshot{Info: info})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, snap := range snapshots {
		embs, err := s.loadEmbeddings(ctx, snap.Info.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to load index %s: %w", snap.Info.Name, err)
		}
		snap.Embeddings = embs
		snap.Info.TotalVectors = len(embs)
	}
	return snapshots, nil
}

func (s *SQLiteStorage) loadEmbeddings(ctx context.Context, indexName string) ([]*models.Embedding, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, vector, content, content_type, metadata, timestamp
		 FROM embeddings WHERE index_name = ? ORDER BY id`, indexName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var embs []*models.Embedding
	for rows.Next() {
		var (
			emb          models.Embedding
			blob         []byte
			contentType  string
			metadataJSON sql.NullString
		)
		if err := rows.Scan(&emb.ID, &blob, &emb.Content, &contentType, &metadataJSON, &emb.Timestamp); err != nil {
			return nil, err
		}
		emb.Vector = bytesToFloat32Slice(blob)
		emb.ContentType = models.ContentType(contentType)
		if metadataJSON.Valid && metadataJSON.String != "" && metadataJSON.String != "null" {
			if err := json.Unmarshal([]byte(metadataJSON.String), &emb.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal metadata for %s: %w", emb.ID, err)
			}
		}
		embs = append(embs, &emb)
	}
	return embs, rows.Err()
}

// DeleteIndex removes a stored snapshot. Missing indices are not an error.
func (s *SQLiteStorage) DeleteIndex(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM indices WHERE name = ?`, name)
	return err
}

// SizeBytes returns the on-disk size of the database including WAL sidecar files.
func (s *SQLiteStorage) SizeBytes() (int64, error) {
	if s.path == ":memory:" {
		return 0, nil
	}
	return DiskUsageBytes(sqliteFiles(s.path)...)
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func float32SliceToBytes(s []float32) []byte {
	const size = 4
	out := make([]byte, len(s)*size)
	for i, v := range s {
		binary.LittleEndian.PutUint32(out[i*size:(i+1)*size], math.Float32bits(v))
	}
	return out
}

func bytesToFloat32Slice(b []byte) []float32 {
	const size = 4
	out := make([]float32, len(b)/size)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*size : (i+1)*size]))
	}
	return out
}
