package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeuristicTokenCounter(t *testing.T) {
	tests := map[string]int{
		"":                        0,
		"a":                       1,
		"abcd":                    1,
		"abcde":                   2,
		"äöüß":                    1,
		"public static void main": 6,
	}
	for text, want := range tests {
		assert.Equal(t, want, HeuristicTokenCounter.CountTokens("any", text), text)
	}
	assert.Equal(t, 3, EstimateTokenCount("twelve chars"))
}

func TestTiktokenCounter_CachesFailedLookups(t *testing.T) {
	c := NewTiktokenCounter()
	// A cached nil encoder means "use the heuristic" without another load attempt.
	c.encoders["offline-model"] = nil

	assert.Equal(t, 2, c.CountTokens("offline-model", "12345678"))
	assert.Equal(t, 0, c.CountTokens("offline-model", ""))
}
