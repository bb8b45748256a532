// Package item holds the core entities of the ingestion pipeline: upstream
// items, fetched article pages and LLM-derived analyses, together with the
// store interface the workers run against.
package item

// Kind is the upstream item type.
type Kind string

// Upstream item kinds.
const (
	KindJob     Kind = "job"
	KindStory   Kind = "story"
	KindComment Kind = "comment"
	KindPoll    Kind = "poll"
	KindPollOpt Kind = "pollopt"
)

// Item is one record of the upstream firehose. Ids are dense and
// monotonically increasing upstream; every field except the id is optional
// in the upstream payload.
type Item struct {
	ID          int32   `json:"id"`
	Deleted     *bool   `json:"deleted,omitempty"`
	Kind        *Kind   `json:"type,omitempty"`
	By          *string `json:"by,omitempty"`
	Time        *int64  `json:"time,omitempty"`
	Text        *string `json:"text,omitempty"`
	Dead        *bool   `json:"dead,omitempty"`
	Parent      *int32  `json:"parent,omitempty"`
	Poll        *int32  `json:"poll,omitempty"`
	Kids        []int32 `json:"kids,omitempty"`
	URL         *string `json:"url,omitempty"`
	Score       *int32  `json:"score,omitempty"`
	Title       *string `json:"title,omitempty"`
	Parts       []int32 `json:"parts,omitempty"`
	Descendants *int32  `json:"descendants,omitempty"`
}

// IsComment reports whether the item is a comment.
func (i Item) IsComment() bool {
	return i.Kind != nil && *i.Kind == KindComment
}
