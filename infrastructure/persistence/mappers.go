package persistence

import (
	"time"

	"github.com/newswaters/newswaters/domain/item"
)

func itemToModel(it item.Item) ItemModel {
	var kind *string
	if it.Kind != nil {
		k := string(*it.Kind)
		kind = &k
	}
	now := time.Now()
	return ItemModel{
		ID:          it.ID,
		Deleted:     it.Deleted,
		Kind:        kind,
		By:          it.By,
		Time:        it.Time,
		Text:        it.Text,
		Dead:        it.Dead,
		Parent:      it.Parent,
		Poll:        it.Poll,
		URL:         it.URL,
		Score:       it.Score,
		Title:       it.Title,
		Descendants: it.Descendants,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func itemURLToModel(itemID int32, u item.ItemURL) ItemURLModel {
	now := time.Now()
	code := int32(u.Status)
	model := ItemURLModel{
		ItemID:     itemID,
		StatusCode: &code,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	switch u.Status {
	case item.URLStatusFinished:
		html, text := u.HTML, u.Text
		model.HTML = &html
		model.Text = &text
	default:
		note := u.Note
		model.StatusNote = &note
	}
	return model
}

func analysisToModel(a item.Analysis) AnalysisModel {
	now := time.Now()
	return AnalysisModel{
		ItemID:         a.ItemID,
		Keyword:        a.Keyword,
		TextPassage:    a.TextPassage,
		SummaryPassage: a.SummaryPassage,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
