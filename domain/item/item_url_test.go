package item

import (
	"encoding/json"
	"testing"
)

func TestItemURL_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   ItemURL
	}{
		{"finished", FinishedItemURL("<html></html>", "hello")},
		{"skipped", SkippedItemURL("Skipped: application/pdf")},
		{"canceled", CanceledItemURL("deadline exceeded")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := json.Marshal(tt.in)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			var out ItemURL
			if err := json.Unmarshal(raw, &out); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if out != tt.in {
				t.Errorf("round trip: got %+v, want %+v", out, tt.in)
			}
		})
	}
}

func TestItemURL_WireShapesAreDisjoint(t *testing.T) {
	raw, err := json.Marshal(SkippedItemURL("nope"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := fields["html"]; ok {
		t.Error("skipped variant must not carry html")
	}
	if _, ok := fields["text"]; ok {
		t.Error("skipped variant must not carry text")
	}
	if fields["status"] != "skipped" {
		t.Errorf("discriminator = %v, want skipped", fields["status"])
	}
}

func TestItemURL_UnmarshalRejectsUnknownStatus(t *testing.T) {
	var u ItemURL
	if err := json.Unmarshal([]byte(`{"status":"pending"}`), &u); err == nil {
		t.Error("expected error for unknown status")
	}
}

func TestItemURL_UnmarshalRejectsIncompleteFinished(t *testing.T) {
	var u ItemURL
	if err := json.Unmarshal([]byte(`{"status":"finished","html":"x"}`), &u); err == nil {
		t.Error("expected error for finished without text")
	}
}

func TestItemURL_FinishedInvariant(t *testing.T) {
	u := FinishedItemURL("<p>x</p>", "x")
	if u.Status != URLStatusFinished || u.HTML == "" || u.Text == "" {
		t.Errorf("finished must carry html and text: %+v", u)
	}

	for _, u := range []ItemURL{SkippedItemURL("n"), CanceledItemURL("n")} {
		if u.HTML != "" || u.Text != "" {
			t.Errorf("non-finished must not carry html/text: %+v", u)
		}
	}
}

func TestPassage_RoundTrip(t *testing.T) {
	p := Passage{
		Anchor:        []string{"the anchor sentence"},
		Entailment:    []string{"a rewording"},
		Contradiction: []string{"the opposite"},
		Irrelevance:   []string{"random words shuffled"},
		Subject:       []string{"databases", "search"},
	}

	raw, err := p.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	out, err := DecodePassage(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if len(out.Anchor) != 1 || out.Anchor[0] != p.Anchor[0] {
		t.Errorf("anchor mismatch: %+v", out.Anchor)
	}
	if len(out.Subject) != 2 || out.Subject[1] != "search" {
		t.Errorf("subject mismatch: %+v", out.Subject)
	}
}
