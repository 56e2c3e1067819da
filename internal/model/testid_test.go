package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRawID(t *testing.T) {
	t.Run("parses module, suite and case", func(t *testing.T) {
		id, err := ParseRawID("mod!!!Suite!!!Case")
		require.NoError(t, err)
		assert.Equal(t, TestID{Suite: "Suite", Case: "Case"}, id)
		assert.Equal(t, "Suite.Case", id.String())
	})

	t.Run("keeps extra separators in the case name", func(t *testing.T) {
		id, err := ParseRawID("mod!!!Suite!!!Case!!!extra")
		require.NoError(t, err)
		assert.Equal(t, "Case!!!extra", id.Case)
	})

	t.Run("rejects lines missing a separator", func(t *testing.T) {
		for _, line := range []string{"", "SuiteOnly", "mod!!!SuiteCase"} {
			_, err := ParseRawID(line)
			assert.ErrorIs(t, err, ErrMalformedTestID, "line %q", line)
		}
	})
}
