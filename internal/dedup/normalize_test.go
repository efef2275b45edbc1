package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeProductName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "punctuation stripped",
			input: "iPhone 15 Pro!!",
			want:  "iphone 15 pro",
		},
		{
			name:  "whitespace collapsed",
			input: "  Sony   WH-1000XM5    Headphones ",
			want:  "sony wh1000xm5 headphones",
		},
		{
			name:  "already normalized",
			input: "kindle paperwhite",
			want:  "kindle paperwhite",
		},
		{
			name:  "digits preserved",
			input: "PS5 (Disc Edition)",
			want:  "ps5 disc edition",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "only punctuation",
			input: "***!!!",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeProductName(tt.input))
		})
	}
}

func TestNormalizeRetailer(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "amazon alias", input: "AMZN", want: "amazon"},
		{name: "amazon dot com", input: "Amazon.com", want: "amazon"},
		{name: "best buy spacing", input: "Best Buy", want: "bestbuy"},
		{name: "walmart hyphen", input: "Wal-Mart", want: "walmart"},
		{name: "unknown passes through", input: "  Some Corner Shop  ", want: "some corner shop"},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeRetailer(tt.input))
		})
	}
}
