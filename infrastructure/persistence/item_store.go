package persistence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/newswaters/newswaters/domain/item"
	"github.com/newswaters/newswaters/internal/database"
)

// Dialect-specific series expansion for the gap query. The rest of the
// store is expressed through the GORM query builder and is portable.
const (
	pgMissingItemsQuery = `
SELECT s.i AS id
FROM generate_series(?, ?) AS s(i)
WHERE NOT EXISTS (SELECT 1 FROM items WHERE id = s.i)
ORDER BY id ASC`

	sqliteMissingItemsQuery = `
WITH RECURSIVE series(i) AS (
    SELECT ?
    UNION ALL
    SELECT i + 1 FROM series WHERE i < ?
)
SELECT i AS id
FROM series
WHERE NOT EXISTS (SELECT 1 FROM items WHERE id = series.i)
ORDER BY id ASC`
)

// ItemStore implements item.Store against the relational database.
type ItemStore struct {
	db     database.Database
	logger *slog.Logger
}

// NewItemStore creates an ItemStore.
func NewItemStore(db database.Database, logger *slog.Logger) *ItemStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &ItemStore{db: db, logger: logger}
}

var _ item.Store = (*ItemStore)(nil)

// MinItemID returns the lowest stored item id.
func (s *ItemStore) MinItemID(ctx context.Context) (int32, error) {
	return s.itemIDBound(ctx, "min(id)")
}

// MaxItemID returns the highest stored item id.
func (s *ItemStore) MaxItemID(ctx context.Context) (int32, error) {
	return s.itemIDBound(ctx, "max(id)")
}

func (s *ItemStore) itemIDBound(ctx context.Context, agg string) (int32, error) {
	var id *int32
	err := s.db.Session(ctx).
		Table("items").
		Select(agg).
		Scan(&id).Error
	if err != nil {
		return 0, fmt.Errorf("query %s: %w", agg, err)
	}
	if id == nil {
		return 0, item.ErrEmptyTable
	}
	return *id, nil
}

// MissingItems returns the ids in [minID, maxID] with no items row,
// ascending.
func (s *ItemStore) MissingItems(ctx context.Context, minID, maxID int32) ([]int32, error) {
	query := sqliteMissingItemsQuery
	if s.db.IsPostgres() {
		query = pgMissingItemsQuery
	}

	var ids []int32
	if err := s.db.Session(ctx).Raw(query, minID, maxID).Scan(&ids).Error; err != nil {
		return nil, fmt.Errorf("find missing items: %w", err)
	}
	return ids, nil
}

// MissingItemURLs returns (id, url) pairs in [minID, maxID] whose url has
// not been fetched yet, ascending by id.
func (s *ItemStore) MissingItemURLs(ctx context.Context, minID, maxID int32) ([]item.MissingItemURL, error) {
	var rows []struct {
		ID  int32
		URL string
	}
	err := s.db.Session(ctx).
		Table("items").
		Select("id, url").
		Where("id >= ? AND id <= ?", minID, maxID).
		Where("url IS NOT NULL").
		Where("NOT EXISTS (SELECT 1 FROM item_urls WHERE item_id = items.id)").
		Order("id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("find missing item urls: %w", err)
	}

	out := make([]item.MissingItemURL, len(rows))
	for i, r := range rows {
		out[i] = item.MissingItemURL{ID: r.ID, URL: r.URL}
	}
	return out, nil
}

// FindSummaryMissingItems returns summarization candidates among ids, in
// input id order. No LIMIT is applied; the caller truncates after the
// priority order has been preserved.
func (s *ItemStore) FindSummaryMissingItems(ctx context.Context, ids []int32) ([]item.SummaryCandidate, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var rows []summaryCandidateRow
	err := s.db.Session(ctx).
		Table("items").
		Select("items.id, items.title, item_urls.text").
		Joins("JOIN item_urls ON items.id = item_urls.item_id").
		Where("items.id IN ?", ids).
		Where("items.title IS NOT NULL").
		Where("item_urls.text IS NOT NULL").
		Where("item_urls.summary IS NULL").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("find summary missing items: %w", err)
	}

	sortRowsByInputOrder(rows, ids, func(r summaryCandidateRow) int32 { return r.ID })
	return summaryCandidates(rows), nil
}

// FindSummaryMissingItemsExcluding returns newest-first summarization
// candidates disjoint from ids, capped at limit.
func (s *ItemStore) FindSummaryMissingItemsExcluding(ctx context.Context, ids []int32, limit int) ([]item.SummaryCandidate, error) {
	tx := s.db.Session(ctx).
		Table("items").
		Select("items.id, items.title, item_urls.text").
		Joins("JOIN item_urls ON items.id = item_urls.item_id").
		Where("items.title IS NOT NULL").
		Where("item_urls.text IS NOT NULL").
		Where("item_urls.summary IS NULL")
	if len(ids) > 0 {
		tx = tx.Where("items.id NOT IN ?", ids)
	}

	var rows []summaryCandidateRow
	if err := tx.Order("items.id DESC").Limit(limit).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("find summary missing items excluding: %w", err)
	}
	return summaryCandidates(rows), nil
}

// FindSummaryExistingItems returns the newest item ids that have an
// embeddable sentence (own text or a stored summary), capped at limit.
func (s *ItemStore) FindSummaryExistingItems(ctx context.Context, limit int) ([]int32, error) {
	var ids []int32
	err := s.db.Session(ctx).
		Table("items").
		Select("items.id").
		Joins("JOIN item_urls ON items.id = item_urls.item_id").
		Where("items.text IS NOT NULL OR item_urls.summary IS NOT NULL").
		Order("items.id DESC").
		Limit(limit).
		Scan(&ids).Error
	if err != nil {
		return nil, fmt.Errorf("find summary existing items: %w", err)
	}
	return ids, nil
}

// FindItemSummaries returns the embedding sources for ids, in input order.
func (s *ItemStore) FindItemSummaries(ctx context.Context, ids []int32) ([]item.ItemSummary, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var rows []struct {
		ID      int32
		Text    *string
		Summary *string
	}
	err := s.db.Session(ctx).
		Table("items").
		Select("items.id, items.text, item_urls.summary").
		Joins("JOIN item_urls ON items.id = item_urls.item_id").
		Where("items.id IN ?", ids).
		Where("items.text IS NOT NULL OR item_urls.summary IS NOT NULL").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("find item summaries: %w", err)
	}

	sortRowsByInputOrder(rows, ids, func(r struct {
		ID      int32
		Text    *string
		Summary *string
	}) int32 {
		return r.ID
	})

	out := make([]item.ItemSummary, len(rows))
	for i, r := range rows {
		out[i] = item.ItemSummary{ID: r.ID, Text: r.Text, Summary: r.Summary}
	}
	return out, nil
}

// FindKeywordMissingAnalyses returns keyword-extraction candidates among
// ids, in input id order, without a SQL cap.
func (s *ItemStore) FindKeywordMissingAnalyses(ctx context.Context, ids []int32) ([]item.KeywordCandidate, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var rows []keywordCandidateRow
	err := s.db.Session(ctx).
		Table("items").
		Select("items.id, items.title, items.text, item_urls.text AS url_text").
		Joins("JOIN item_urls ON items.id = item_urls.item_id").
		Joins("LEFT JOIN analyses ON items.id = analyses.item_id").
		Where("items.id IN ?", ids).
		Where("items.title IS NOT NULL").
		Where("items.text IS NOT NULL OR item_urls.text IS NOT NULL").
		Where("analyses.keyword IS NULL").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("find keyword missing analyses: %w", err)
	}

	sortRowsByInputOrder(rows, ids, func(r keywordCandidateRow) int32 { return r.ID })
	return keywordCandidates(rows), nil
}

// FindKeywordMissingAnalysesExcluding returns newest-first keyword
// candidates disjoint from ids. With followSummaries the fetched page must
// also carry a summary to qualify through the item_urls side.
func (s *ItemStore) FindKeywordMissingAnalysesExcluding(ctx context.Context, ids []int32, limit int, followSummaries bool) ([]item.KeywordCandidate, error) {
	urlCondition := "item_urls.text IS NOT NULL"
	if followSummaries {
		urlCondition = "(item_urls.text IS NOT NULL AND item_urls.summary IS NOT NULL)"
	}

	tx := s.db.Session(ctx).
		Table("items").
		Select("items.id, items.title, items.text, item_urls.text AS url_text").
		Joins("JOIN item_urls ON items.id = item_urls.item_id").
		Joins("LEFT JOIN analyses ON items.id = analyses.item_id").
		Where("items.title IS NOT NULL").
		Where("items.text IS NOT NULL OR " + urlCondition).
		Where("analyses.keyword IS NULL")
	if len(ids) > 0 {
		tx = tx.Where("items.id NOT IN ?", ids)
	}

	var rows []keywordCandidateRow
	if err := tx.Order("items.id DESC").Limit(limit).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("find keyword missing analyses excluding: %w", err)
	}
	return keywordCandidates(rows), nil
}

// FindKeywordExistingAnalyses returns the newest item ids with a stored
// keyword, capped at limit.
func (s *ItemStore) FindKeywordExistingAnalyses(ctx context.Context, limit int) ([]int32, error) {
	var ids []int32
	err := s.db.Session(ctx).
		Table("analyses").
		Select("item_id").
		Where("keyword IS NOT NULL").
		Order("item_id DESC").
		Limit(limit).
		Scan(&ids).Error
	if err != nil {
		return nil, fmt.Errorf("find keyword existing analyses: %w", err)
	}
	return ids, nil
}

// FindAnalysisKeywords returns the stored keywords for ids, in input order.
func (s *ItemStore) FindAnalysisKeywords(ctx context.Context, ids []int32) ([]item.AnalysisKeyword, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var rows []struct {
		ItemID  int32
		Keyword string
	}
	err := s.db.Session(ctx).
		Table("analyses").
		Select("item_id, keyword").
		Where("item_id IN ?", ids).
		Where("keyword IS NOT NULL").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("find analysis keywords: %w", err)
	}

	sortRowsByInputOrder(rows, ids, func(r struct {
		ItemID  int32
		Keyword string
	}) int32 {
		return r.ItemID
	})

	out := make([]item.AnalysisKeyword, len(rows))
	for i, r := range rows {
		out[i] = item.AnalysisKeyword{ItemID: r.ItemID, Keyword: r.Keyword}
	}
	return out, nil
}

// FindTextPassageMissingAnalyses returns newest-first comments of at least
// minLen characters without a text passage, capped at limit.
func (s *ItemStore) FindTextPassageMissingAnalyses(ctx context.Context, minLen, limit int) ([]item.PassageCandidate, error) {
	var rows []passageCandidateRow
	err := s.db.Session(ctx).
		Table("items").
		Select("items.id, items.text").
		Joins("LEFT JOIN analyses ON items.id = analyses.item_id").
		Where("items.type = ?", "comment").
		Where("items.text IS NOT NULL").
		Where("length(items.text) >= ?", minLen).
		Where("analyses.text_passage IS NULL").
		Order("items.id DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("find text passage missing analyses: %w", err)
	}
	return passageCandidates(rows), nil
}

// FindSummaryPassageMissingAnalyses returns summary-passage candidates
// among ids, in input id order, without a SQL cap.
func (s *ItemStore) FindSummaryPassageMissingAnalyses(ctx context.Context, ids []int32) ([]item.PassageCandidate, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var rows []passageCandidateRow
	err := s.db.Session(ctx).
		Table("item_urls").
		Select("item_urls.item_id AS id, item_urls.summary AS text").
		Joins("LEFT JOIN analyses ON item_urls.item_id = analyses.item_id").
		Where("item_urls.item_id IN ?", ids).
		Where("item_urls.summary IS NOT NULL").
		Where("analyses.summary_passage IS NULL").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("find summary passage missing analyses: %w", err)
	}

	sortRowsByInputOrder(rows, ids, func(r passageCandidateRow) int32 { return r.ID })
	return passageCandidates(rows), nil
}

// FindSummaryPassageMissingAnalysesExcluding returns newest-first
// summary-passage candidates disjoint from ids, capped at limit.
func (s *ItemStore) FindSummaryPassageMissingAnalysesExcluding(ctx context.Context, ids []int32, limit int) ([]item.PassageCandidate, error) {
	tx := s.db.Session(ctx).
		Table("item_urls").
		Select("item_urls.item_id AS id, item_urls.summary AS text").
		Joins("LEFT JOIN analyses ON item_urls.item_id = analyses.item_id").
		Where("item_urls.summary IS NOT NULL").
		Where("analyses.summary_passage IS NULL")
	if len(ids) > 0 {
		tx = tx.Where("item_urls.item_id NOT IN ?", ids)
	}

	var rows []passageCandidateRow
	if err := tx.Order("item_urls.item_id DESC").Limit(limit).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("find summary passage missing analyses excluding: %w", err)
	}
	return passageCandidates(rows), nil
}

// InsertItem stores one upstream item. Duplicate ids surface as
// item.ErrAlreadyPresent.
func (s *ItemStore) InsertItem(ctx context.Context, it item.Item) error {
	model := itemToModel(it)
	if err := s.db.Session(ctx).Create(&model).Error; err != nil {
		return translateInsertError("insert item", err)
	}
	return nil
}

// InsertItemURL stores one fetch outcome keyed by item id.
func (s *ItemStore) InsertItemURL(ctx context.Context, itemID int32, u item.ItemURL) error {
	model := itemURLToModel(itemID, u)
	if err := s.db.Session(ctx).Create(&model).Error; err != nil {
		return translateInsertError("insert item url", err)
	}
	return nil
}

// InsertAnalysis stores one analysis row keyed by item id.
func (s *ItemStore) InsertAnalysis(ctx context.Context, a item.Analysis) error {
	model := analysisToModel(a)
	if err := s.db.Session(ctx).Create(&model).Error; err != nil {
		return translateInsertError("insert analysis", err)
	}
	return nil
}

// UpdateItemURLSummary sets the LLM summary on an existing item_urls row.
func (s *ItemStore) UpdateItemURLSummary(ctx context.Context, itemID int32, summary string) error {
	err := s.db.Session(ctx).
		Model(&ItemURLModel{}).
		Where("item_id = ?", itemID).
		Updates(map[string]any{
			"summary":    summary,
			"updated_at": time.Now(),
		}).Error
	if err != nil {
		return fmt.Errorf("update item url summary: %w", err)
	}
	return nil
}

// UpdateAnalysisSummaryPassage sets the summary passage on an existing
// analyses row.
func (s *ItemStore) UpdateAnalysisSummaryPassage(ctx context.Context, itemID int32, summaryPassage string) error {
	err := s.db.Session(ctx).
		Model(&AnalysisModel{}).
		Where("item_id = ?", itemID).
		Updates(map[string]any{
			"summary_passage": summaryPassage,
			"updated_at":      time.Now(),
		}).Error
	if err != nil {
		return fmt.Errorf("update analysis summary passage: %w", err)
	}
	return nil
}

// FindItems hydrates (title, url, time) headers for ids. Absent ids are
// simply missing from the map.
func (s *ItemStore) FindItems(ctx context.Context, ids []int32) (map[int32]item.ItemHeader, error) {
	if len(ids) == 0 {
		return map[int32]item.ItemHeader{}, nil
	}

	var rows []struct {
		ID    int32
		Title *string
		URL   *string
		Time  *int64
	}
	err := s.db.Session(ctx).
		Table("items").
		Select("id, title, url, time").
		Where("id IN ?", ids).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("find items: %w", err)
	}

	out := make(map[int32]item.ItemHeader, len(rows))
	for _, r := range rows {
		out[r.ID] = item.ItemHeader{Title: r.Title, URL: r.URL, Time: r.Time}
	}
	return out, nil
}

type summaryCandidateRow struct {
	ID    int32
	Title string
	Text  string
}

func summaryCandidates(rows []summaryCandidateRow) []item.SummaryCandidate {
	out := make([]item.SummaryCandidate, len(rows))
	for i, r := range rows {
		out[i] = item.SummaryCandidate{ID: r.ID, Title: r.Title, Text: r.Text}
	}
	return out
}

type keywordCandidateRow struct {
	ID      int32
	Title   string
	Text    *string
	URLText *string
}

func keywordCandidates(rows []keywordCandidateRow) []item.KeywordCandidate {
	out := make([]item.KeywordCandidate, len(rows))
	for i, r := range rows {
		out[i] = item.KeywordCandidate{ID: r.ID, Title: r.Title, Text: r.Text, URLText: r.URLText}
	}
	return out
}

type passageCandidateRow struct {
	ID   int32
	Text string
}

func passageCandidates(rows []passageCandidateRow) []item.PassageCandidate {
	out := make([]item.PassageCandidate, len(rows))
	for i, r := range rows {
		out[i] = item.PassageCandidate{ID: r.ID, Text: r.Text}
	}
	return out
}

// sortRowsByInputOrder reorders rows so they follow the position of their
// id in ids. The SQL layer cannot be trusted to preserve the caller's
// priority order through a join, so it is restored here.
func sortRowsByInputOrder[T any](rows []T, ids []int32, idOf func(T) int32) {
	position := make(map[int32]int, len(ids))
	for i, id := range ids {
		if _, seen := position[id]; !seen {
			position[id] = i
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return position[idOf(rows[i])] < position[idOf(rows[j])]
	})
}

func translateInsertError(op string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%s: %w", op, item.ErrAlreadyPresent)
	}
	return fmt.Errorf("%s: %w", op, err)
}
