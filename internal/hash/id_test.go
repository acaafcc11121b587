package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSum(t *testing.T) {
	tests := []struct {
		name string
		data string
		id   uint64
	}{
		{"empty string", "", 0xef46db3751d8e999},
		{"short string", "test", 0x4fdcca5ddb678139},
		{"long string", "this is a longer test string to hash", 0x69275f7f7ee59dbd},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.id, Sum([]byte(tt.data)))
		})
	}
}

func TestQualified(t *testing.T) {
	assert.Equal(t, Sum([]byte("test")), Qualified("test"))
	assert.Equal(t, Sum([]byte("a\x00b")), Qualified("a", "b"))
	assert.NotEqual(t, Qualified("ab", "c"), Qualified("a", "bc"))
	assert.NotEqual(t, Qualified("global", "", "price"), Qualified("template", "", "price"))
}

func BenchmarkQualified(b *testing.B) {
	for b.Loop() {
		Qualified("template", "quotes", "Quote", "price")
	}
}
