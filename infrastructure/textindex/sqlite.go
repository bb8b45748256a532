// Package textindex implements the full-text index port on an SQLite
// FTS5 virtual table with BM25 ranking.
package textindex

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/newswaters/newswaters/domain/search"
	"github.com/newswaters/newswaters/internal/database"
)

// Index is a BM25 text index stored in its own SQLite file.
type Index struct {
	db database.Database

	mu          sync.Mutex
	initialized bool
}

var _ search.TextIndex = (*Index)(nil)

// Open creates or opens the index file under dir.
func Open(ctx context.Context, dir string) (*Index, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create text storage dir: %w", err)
	}

	path := filepath.Join(dir, "texts.db")
	db, err := database.NewDatabase(ctx, "sqlite:///"+path)
	if err != nil {
		return nil, fmt.Errorf("open text index: %w", err)
	}
	return &Index{db: db}, nil
}

// NewIndex wraps an already-open SQLite database; used by tests.
func NewIndex(db database.Database) *Index {
	return &Index{db: db}
}

// Close releases the underlying database.
func (i *Index) Close() error {
	return i.db.Close()
}

func (i *Index) ensureSchema(ctx context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.initialized {
		return nil
	}

	createSQL := `CREATE VIRTUAL TABLE IF NOT EXISTS sentences USING fts5(
		item_id UNINDEXED,
		sentence,
		tokenize='porter ascii'
	)`
	if err := i.db.Session(ctx).Exec(createSQL).Error; err != nil {
		return fmt.Errorf("create fts5 table: %w", err)
	}

	i.initialized = true
	return nil
}

// Add appends one document. Re-adding an id replaces its previous
// sentence so the index never holds two documents for the same item.
func (i *Index) Add(ctx context.Context, id int32, sentence string) error {
	if err := i.ensureSchema(ctx); err != nil {
		return err
	}

	session := i.db.Session(ctx)
	if err := session.Exec("DELETE FROM sentences WHERE item_id = ?", id).Error; err != nil {
		return fmt.Errorf("delete stale document %d: %w", id, err)
	}
	if err := session.Exec("INSERT INTO sentences (item_id, sentence) VALUES (?, ?)", id, sentence).Error; err != nil {
		return fmt.Errorf("insert document %d: %w", id, err)
	}
	return nil
}

// Search returns the top-k documents matching the sentence by descending
// BM25 score.
func (i *Index) Search(ctx context.Context, sentence string, k int) ([]search.ScoredItem, error) {
	if err := i.ensureSchema(ctx); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, nil
	}

	querySQL := `SELECT item_id, bm25(sentences) as score
		FROM sentences
		WHERE sentences MATCH ?
		ORDER BY score
		LIMIT ?`

	sqlRows, err := i.db.Session(ctx).Raw(querySQL, escapeFTS5Query(sentence), k).Rows()
	if err != nil {
		return nil, fmt.Errorf("query text index: %w", err)
	}
	defer func() { _ = sqlRows.Close() }()

	var results []search.ScoredItem
	for sqlRows.Next() {
		var (
			id    int32
			score float64
		)
		if err := sqlRows.Scan(&id, &score); err != nil {
			return nil, fmt.Errorf("scan text index row: %w", err)
		}
		// bm25() reports better matches as more negative values.
		if score < 0 {
			score = -score
		}
		results = append(results, search.ScoredItem{ID: id, Score: float32(score)})
	}
	if err := sqlRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate text index rows: %w", err)
	}
	return results, nil
}

// escapeFTS5Query quotes the query so FTS5 treats it as a bag of terms
// instead of match syntax.
func escapeFTS5Query(query string) string {
	return `"` + strings.ReplaceAll(query, `"`, `""`) + `"`
}
