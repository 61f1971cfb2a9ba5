package mrn

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	assert.Equal(t, "MRN-000001", Format(1))
	assert.Equal(t, "MRN-000042", Format(42))
	assert.Equal(t, "MRN-123456", Format(123456))
	// Sequences beyond six digits are not truncated
	assert.Equal(t, "MRN-1234567", Format(1234567))
}

func TestSequence(t *testing.T) {
	t.Run("round trips formatted numbers", func(t *testing.T) {
		for _, seq := range []int64{1, 25, 999999, 1000000} {
			got, err := Sequence(Format(seq))
			assert.NoError(t, err)
			assert.Equal(t, seq, got)
		}
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		for _, s := range []string{"", "MRN-", "MRN-abc", "mrn-000001", "000001", "MRN-000000", "MRN--00001"} {
			_, err := Sequence(s)
			assert.ErrorIs(t, err, ErrInvalidFormat, "input %q", s)
		}
	})
}
