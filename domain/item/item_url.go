package item

import (
	"encoding/json"
	"fmt"
)

// URLStatus is the outcome of a page-fetch attempt.
type URLStatus int

// Fetch outcomes, stored as small integers.
const (
	URLStatusFinished URLStatus = 0
	URLStatusSkipped  URLStatus = 1
	URLStatusCanceled URLStatus = 2
)

// String renders the status discriminator used on the wire.
func (s URLStatus) String() string {
	switch s {
	case URLStatusFinished:
		return "finished"
	case URLStatusSkipped:
		return "skipped"
	case URLStatusCanceled:
		return "canceled"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// ItemURL is the outcome of fetching an item's external URL. It is a
// three-way variant: Finished carries the rendered page, Skipped and
// Canceled carry a note explaining why there is no page.
//
// Invariant: Status == Finished iff HTML and Text are set.
type ItemURL struct {
	Status URLStatus
	HTML   string
	Text   string
	Note   string

	// Summary is filled in later by the summarize worker; it is never
	// part of the fetch outcome itself.
	Summary *string
}

// FinishedItemURL builds the successful fetch outcome.
func FinishedItemURL(html, text string) ItemURL {
	return ItemURL{Status: URLStatusFinished, HTML: html, Text: text}
}

// SkippedItemURL builds the outcome for content that is deliberately not
// rendered (e.g. PDFs).
func SkippedItemURL(note string) ItemURL {
	return ItemURL{Status: URLStatusSkipped, Note: note}
}

// CanceledItemURL builds the outcome for failed or timed-out renders.
func CanceledItemURL(note string) ItemURL {
	return ItemURL{Status: URLStatusCanceled, Note: note}
}

// itemURLWire is the JSON shape: a discriminator plus the fields of the
// active variant only.
type itemURLWire struct {
	Status string  `json:"status"`
	HTML   *string `json:"html,omitempty"`
	Text   *string `json:"text,omitempty"`
	Note   *string `json:"note,omitempty"`
}

// MarshalJSON encodes the variant as a discriminated object.
func (u ItemURL) MarshalJSON() ([]byte, error) {
	w := itemURLWire{Status: u.Status.String()}
	switch u.Status {
	case URLStatusFinished:
		w.HTML = &u.HTML
		w.Text = &u.Text
	case URLStatusSkipped, URLStatusCanceled:
		w.Note = &u.Note
	default:
		return nil, fmt.Errorf("marshal item url: %s", u.Status)
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes the discriminated object back into the variant.
func (u *ItemURL) UnmarshalJSON(data []byte) error {
	var w itemURLWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch w.Status {
	case "finished":
		if w.HTML == nil || w.Text == nil {
			return fmt.Errorf("unmarshal item url: finished without html/text")
		}
		*u = FinishedItemURL(*w.HTML, *w.Text)
	case "skipped":
		if w.Note == nil {
			return fmt.Errorf("unmarshal item url: skipped without note")
		}
		*u = SkippedItemURL(*w.Note)
	case "canceled":
		if w.Note == nil {
			return fmt.Errorf("unmarshal item url: canceled without note")
		}
		*u = CanceledItemURL(*w.Note)
	default:
		return fmt.Errorf("unmarshal item url: unknown status %q", w.Status)
	}
	return nil
}
