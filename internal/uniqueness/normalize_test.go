package uniqueness

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "ABC123", Normalize("  abc123 "))
	assert.Equal(t, "MSKU 123", Normalize("msku   123"))
	assert.Equal(t, "", Normalize("   "))
	assert.Equal(t, "", Normalize(""))
	assert.Equal(t, "", Normalize("*"))
	assert.Equal(t, "", Normalize(" ** "))
	assert.Equal(t, "A*B", Normalize("a*b"))
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{" abc ", "A/B", "msku  7", "*", ""}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestSplitMulti(t *testing.T) {
	assert.Equal(t, []string{"T-1", "T-2"}, SplitMulti("t-1/t-2"))
	assert.Equal(t, []string{"T-1"}, SplitMulti("t-1/*"))
	assert.Empty(t, SplitMulti("*/ * "))
	assert.Empty(t, SplitMulti(""))
}

func TestJoinMulti(t *testing.T) {
	assert.Equal(t, "T-1/T-2", JoinMulti([]string{" t-1", "t-2 "}))
	assert.Equal(t, "T-1", JoinMulti([]string{"t-1", "*"}))
	assert.Equal(t, "", JoinMulti(nil))
}
