package job

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/newswaters/newswaters/domain/item"
)

// fakeStore is an in-memory item.Store scripted per test. Insert paths
// are guarded; the collect sweeps write from many goroutines.
type fakeStore struct {
	mu sync.Mutex

	minID        int32
	maxID        int32
	emptyTable   bool
	missingItems map[[2]int32][]int32
	missingURLs  []item.MissingItemURL

	summaryCandidates           []item.SummaryCandidate
	summaryCandidatesExcluding  []item.SummaryCandidate
	keywordCandidates           []item.KeywordCandidate
	keywordCandidatesExcluding  []item.KeywordCandidate
	passageCandidates           []item.PassageCandidate
	summaryPassageCandidates    []item.PassageCandidate
	summaryPassageExcluding     []item.PassageCandidate
	summaryExistingIDs          []int32
	keywordExistingIDs          []int32
	itemSummaries               []item.ItemSummary
	analysisKeywords            []item.AnalysisKeyword
	followSummariesSeen         *bool
	excludingLimitSeen          int
	summaryExcludingLimitSeen   int
	findItemSummariesChunksSeen [][]int32

	insertedItems    []item.Item
	insertedURLs     map[int32]item.ItemURL
	insertedAnalyses []item.Analysis
	updatedSummaries map[int32]string
	updatedPassages  map[int32]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		missingItems:     map[[2]int32][]int32{},
		insertedURLs:     map[int32]item.ItemURL{},
		updatedSummaries: map[int32]string{},
		updatedPassages:  map[int32]string{},
	}
}

func (s *fakeStore) MinItemID(ctx context.Context) (int32, error) {
	if s.emptyTable {
		return 0, item.ErrEmptyTable
	}
	return s.minID, nil
}

func (s *fakeStore) MaxItemID(ctx context.Context) (int32, error) {
	if s.emptyTable {
		return 0, item.ErrEmptyTable
	}
	return s.maxID, nil
}

func (s *fakeStore) MissingItems(ctx context.Context, minID, maxID int32) ([]int32, error) {
	return s.missingItems[[2]int32{minID, maxID}], nil
}

func (s *fakeStore) MissingItemURLs(ctx context.Context, minID, maxID int32) ([]item.MissingItemURL, error) {
	var rows []item.MissingItemURL
	for _, r := range s.missingURLs {
		if r.ID >= minID && r.ID <= maxID {
			rows = append(rows, r)
		}
	}
	return rows, nil
}

func (s *fakeStore) FindSummaryMissingItems(ctx context.Context, ids []int32) ([]item.SummaryCandidate, error) {
	return s.summaryCandidates, nil
}

func (s *fakeStore) FindSummaryMissingItemsExcluding(ctx context.Context, ids []int32, limit int) ([]item.SummaryCandidate, error) {
	s.excludingLimitSeen = limit
	if limit < len(s.summaryCandidatesExcluding) {
		return s.summaryCandidatesExcluding[:limit], nil
	}
	return s.summaryCandidatesExcluding, nil
}

func (s *fakeStore) FindSummaryExistingItems(ctx context.Context, limit int) ([]int32, error) {
	return s.summaryExistingIDs, nil
}

func (s *fakeStore) FindItemSummaries(ctx context.Context, ids []int32) ([]item.ItemSummary, error) {
	s.findItemSummariesChunksSeen = append(s.findItemSummariesChunksSeen, ids)
	var out []item.ItemSummary
	for _, summary := range s.itemSummaries {
		for _, id := range ids {
			if summary.ID == id {
				out = append(out, summary)
			}
		}
	}
	return out, nil
}

func (s *fakeStore) FindKeywordMissingAnalyses(ctx context.Context, ids []int32) ([]item.KeywordCandidate, error) {
	return s.keywordCandidates, nil
}

func (s *fakeStore) FindKeywordMissingAnalysesExcluding(ctx context.Context, ids []int32, limit int, followSummaries bool) ([]item.KeywordCandidate, error) {
	s.followSummariesSeen = &followSummaries
	if limit < len(s.keywordCandidatesExcluding) {
		return s.keywordCandidatesExcluding[:limit], nil
	}
	return s.keywordCandidatesExcluding, nil
}

func (s *fakeStore) FindKeywordExistingAnalyses(ctx context.Context, limit int) ([]int32, error) {
	return s.keywordExistingIDs, nil
}

func (s *fakeStore) FindAnalysisKeywords(ctx context.Context, ids []int32) ([]item.AnalysisKeyword, error) {
	var out []item.AnalysisKeyword
	for _, k := range s.analysisKeywords {
		for _, id := range ids {
			if k.ItemID == id {
				out = append(out, k)
			}
		}
	}
	return out, nil
}

func (s *fakeStore) FindTextPassageMissingAnalyses(ctx context.Context, minLen, limit int) ([]item.PassageCandidate, error) {
	if limit < len(s.passageCandidates) {
		return s.passageCandidates[:limit], nil
	}
	return s.passageCandidates, nil
}

func (s *fakeStore) FindSummaryPassageMissingAnalyses(ctx context.Context, ids []int32) ([]item.PassageCandidate, error) {
	return s.summaryPassageCandidates, nil
}

func (s *fakeStore) FindSummaryPassageMissingAnalysesExcluding(ctx context.Context, ids []int32, limit int) ([]item.PassageCandidate, error) {
	s.summaryExcludingLimitSeen = limit
	if limit < len(s.summaryPassageExcluding) {
		return s.summaryPassageExcluding[:limit], nil
	}
	return s.summaryPassageExcluding, nil
}

func (s *fakeStore) InsertItem(ctx context.Context, it item.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.insertedItems {
		if existing.ID == it.ID {
			return item.ErrAlreadyPresent
		}
	}
	s.insertedItems = append(s.insertedItems, it)
	return nil
}

func (s *fakeStore) InsertItemURL(ctx context.Context, itemID int32, u item.ItemURL) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.insertedURLs[itemID]; ok {
		return item.ErrAlreadyPresent
	}
	s.insertedURLs[itemID] = u
	return nil
}

func (s *fakeStore) InsertAnalysis(ctx context.Context, a item.Analysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertedAnalyses = append(s.insertedAnalyses, a)
	return nil
}

func (s *fakeStore) UpdateItemURLSummary(ctx context.Context, itemID int32, summary string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updatedSummaries[itemID] = summary
	return nil
}

func (s *fakeStore) UpdateAnalysisSummaryPassage(ctx context.Context, itemID int32, summaryPassage string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updatedPassages[itemID] = summaryPassage
	return nil
}

func (s *fakeStore) FindItems(ctx context.Context, ids []int32) (map[int32]item.ItemHeader, error) {
	return nil, nil
}

var _ item.Store = (*fakeStore)(nil)

// fakeFeed scripts the upstream item API.
type fakeFeed struct {
	mu sync.Mutex

	maxID    int32
	topIDs   []int32
	items    map[int32]item.Item
	failures map[int32]int
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{items: map[int32]item.Item{}, failures: map[int32]int{}}
}

func (f *fakeFeed) MaxItemID(ctx context.Context) (int32, error) {
	return f.maxID, nil
}

func (f *fakeFeed) Item(ctx context.Context, id int32) (item.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures[id] > 0 {
		f.failures[id]--
		return item.Item{}, errors.New("upstream flaked")
	}
	it, ok := f.items[id]
	if !ok {
		return item.Item{}, fmt.Errorf("item %d: not published upstream", id)
	}
	return it, nil
}

func (f *fakeFeed) TopStoryIDs(ctx context.Context) ([]int32, error) {
	return f.topIDs, nil
}

// fakeFetcher records fetched URLs and returns a canned outcome.
type fakeFetcher struct {
	mu      sync.Mutex
	fetched []string
	outcome func(url string) item.ItemURL
}

func (f *fakeFetcher) FetchURL(ctx context.Context, url string) item.ItemURL {
	f.mu.Lock()
	f.fetched = append(f.fetched, url)
	f.mu.Unlock()
	if f.outcome != nil {
		return f.outcome(url)
	}
	return item.FinishedItemURL("<html/>", "text of "+url)
}

// fakeInference echoes instructions back with a prefix, or fails for
// instructions containing a trigger substring.
type fakeInference struct {
	mu           sync.Mutex
	instructions []string
	embeds       []string
	failOn       string
	subjects     string
	embedding    []float32
}

func (f *fakeInference) Instruct(ctx context.Context, instruction string) (string, error) {
	f.mu.Lock()
	f.instructions = append(f.instructions, instruction)
	f.mu.Unlock()
	if f.failOn != "" && strings.Contains(instruction, f.failOn) {
		return "", errors.New("model refused")
	}
	if f.subjects != "" && strings.Contains(instruction, "different subjects") {
		return f.subjects, nil
	}
	return "completion " + fmt.Sprint(len(instruction)), nil
}

func (f *fakeInference) Embed(ctx context.Context, sentence string) ([]float32, error) {
	f.mu.Lock()
	f.embeds = append(f.embeds, sentence)
	f.mu.Unlock()
	if f.embedding != nil {
		return f.embedding, nil
	}
	return []float32{float32(len(sentence))}, nil
}

// fakeEngine records upserts and scripts the missing-id probe.
type fakeEngine struct {
	missing map[string][]int32
	upserts []engineUpsert
}

type engineUpsert struct {
	collection string
	id         int32
	embedding  []float32
	sentence   *string
}

func (e *fakeEngine) FindMissing(ctx context.Context, collection string, ids []int32) ([]int32, error) {
	return e.missing[collection], nil
}

func (e *fakeEngine) Upsert(ctx context.Context, collection string, id int32, embedding []float32, sentence *string) error {
	e.upserts = append(e.upserts, engineUpsert{collection: collection, id: id, embedding: embedding, sentence: sentence})
	return nil
}
