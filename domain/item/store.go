package item

import (
	"context"
	"errors"
)

// ErrAlreadyPresent signals a duplicate-key conflict on an idempotent
// insert; callers skip the record and move on.
var ErrAlreadyPresent = errors.New("record already present")

// ErrEmptyTable signals that an aggregate query ran against an empty table.
var ErrEmptyTable = errors.New("items table is empty")

// SummaryCandidate is an item eligible for summarization.
type SummaryCandidate struct {
	ID    int32
	Title string
	Text  string
}

// KeywordCandidate is an item eligible for keyword extraction. Text is the
// item's own body, URLText the fetched article text; at least one is set.
type KeywordCandidate struct {
	ID      int32
	Title   string
	Text    *string
	URLText *string
}

// PassageCandidate is a (id, source sentence) pair for passage generation.
type PassageCandidate struct {
	ID   int32
	Text string
}

// AnalysisKeyword is a stored keyword list keyed by item id.
type AnalysisKeyword struct {
	ItemID  int32
	Keyword string
}

// ItemSummary carries the two possible embedding sources for an item.
type ItemSummary struct {
	ID      int32
	Text    *string
	Summary *string
}

// MissingItemURL is an item whose external URL has not been fetched yet.
type MissingItemURL struct {
	ID  int32
	URL string
}

// ItemHeader is the hydration record for search responses.
type ItemHeader struct {
	Title *string
	URL   *string
	Time  *int64
}

// Store is the relational persistence port of the pipeline.
//
// The Find*Missing* methods taking an id list preserve the input id order
// for matching rows and never apply a result cap in SQL; the caller
// truncates after the priority order has been applied.
type Store interface {
	MinItemID(ctx context.Context) (int32, error)
	MaxItemID(ctx context.Context) (int32, error)

	// MissingItems returns the ids in [min, max] absent from the items
	// table, ascending.
	MissingItems(ctx context.Context, minID, maxID int32) ([]int32, error)

	// MissingItemURLs returns (id, url) for items in [min, max] with a
	// non-null url but no item_urls row, ascending by id.
	MissingItemURLs(ctx context.Context, minID, maxID int32) ([]MissingItemURL, error)

	FindSummaryMissingItems(ctx context.Context, ids []int32) ([]SummaryCandidate, error)
	FindSummaryMissingItemsExcluding(ctx context.Context, ids []int32, limit int) ([]SummaryCandidate, error)
	FindSummaryExistingItems(ctx context.Context, limit int) ([]int32, error)
	FindItemSummaries(ctx context.Context, ids []int32) ([]ItemSummary, error)

	FindKeywordMissingAnalyses(ctx context.Context, ids []int32) ([]KeywordCandidate, error)
	// FindKeywordMissingAnalysesExcluding tops the priority batch up with
	// newest-first candidates disjoint from ids. followSummaries narrows
	// the article condition to fetched pages that also carry a summary.
	FindKeywordMissingAnalysesExcluding(ctx context.Context, ids []int32, limit int, followSummaries bool) ([]KeywordCandidate, error)
	FindKeywordExistingAnalyses(ctx context.Context, limit int) ([]int32, error)
	FindAnalysisKeywords(ctx context.Context, ids []int32) ([]AnalysisKeyword, error)

	FindTextPassageMissingAnalyses(ctx context.Context, minLen, limit int) ([]PassageCandidate, error)
	FindSummaryPassageMissingAnalyses(ctx context.Context, ids []int32) ([]PassageCandidate, error)
	FindSummaryPassageMissingAnalysesExcluding(ctx context.Context, ids []int32, limit int) ([]PassageCandidate, error)

	// InsertItem refuses a payload that carried a kind upstream but lost
	// it on the way in; a payload without any kind is stored as-is.
	InsertItem(ctx context.Context, it Item) error
	InsertItemURL(ctx context.Context, itemID int32, url ItemURL) error
	InsertAnalysis(ctx context.Context, a Analysis) error
	UpdateItemURLSummary(ctx context.Context, itemID int32, summary string) error
	UpdateAnalysisSummaryPassage(ctx context.Context, itemID int32, summaryPassage string) error

	// FindItems hydrates search results; absent ids are simply missing
	// from the map.
	FindItems(ctx context.Context, ids []int32) (map[int32]ItemHeader, error)
}
