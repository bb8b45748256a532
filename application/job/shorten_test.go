package job

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShortenText(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		minLineLen  int
		maxTotalLen int
		want        string
	}{
		{
			name:        "bullets and trims lines",
			text:        "  hello world  \nsecond line here",
			minLineLen:  5,
			maxTotalLen: 100,
			want:        "- hello world\n- second line here",
		},
		{
			name:        "drops short lines",
			text:        "a\nthis line is long enough\nok",
			minLineLen:  10,
			maxTotalLen: 100,
			want:        "- this line is long enough",
		},
		{
			name: "skips an oversized line but keeps a later one that fits",
			// "- hello world" is 13, the long line would overflow the
			// 20-byte budget, "- abc" still fits.
			text:        "hello world\nlonglonglonglonglong\nabc",
			minLineLen:  5,
			maxTotalLen: 20,
			want:        "- hello world\n- abc",
		},
		{
			name:        "empty input",
			text:        "",
			minLineLen:  5,
			maxTotalLen: 100,
			want:        "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShortenText(tt.text, tt.minLineLen, tt.maxTotalLen))
		})
	}
}
