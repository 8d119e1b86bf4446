package dice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/rpg-party/internal/engine/dice"
	"github.com/KirkDiggler/rpg-party/internal/errors"
)

func TestParseNotation(t *testing.T) {
	testCases := []struct {
		input    string
		expected dice.Notation
	}{
		{"1d20", dice.Notation{Count: 1, Faces: 20}},
		{"d20", dice.Notation{Count: 1, Faces: 20}},
		{"2D6+3", dice.Notation{Count: 2, Faces: 6, Modifier: 3}},
		{" 1 d 8 - 1 ", dice.Notation{Count: 1, Faces: 8, Modifier: -1}},
		{"4d6", dice.Notation{Count: 4, Faces: 6}},
		{"1d2+0", dice.Notation{Count: 1, Faces: 2}},
		{"1d20+1000", dice.Notation{Count: 1, Faces: 20, Modifier: 1000}},
		{"1d20-1000", dice.Notation{Count: 1, Faces: 20, Modifier: -1000}},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			n, err := dice.ParseNotation(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, n)
		})
	}
}

func TestParseNotationRejectsOutOfRange(t *testing.T) {
	for _, input := range []string{
		"",
		"d",
		"1d1",
		"1d1001",
		"0d6",
		"101d6",
		"1d20+1001",
		"1d20-1001",
		"1d20+9223372036854775807",
		"1d20+99999999999999999999",
	} {
		t.Run(input, func(t *testing.T) {
			_, err := dice.ParseNotation(input)
			require.Error(t, err)
			assert.True(t, errors.IsInvalidNotation(err))
		})
	}
}

func TestNotationString(t *testing.T) {
	assert.Equal(t, "1d20+5", dice.Notation{Count: 1, Faces: 20, Modifier: 5}.String())
	assert.Equal(t, "2d6-1", dice.Notation{Count: 2, Faces: 6, Modifier: -1}.String())
	assert.Equal(t, "3d8", dice.Notation{Count: 3, Faces: 8}.String())
}
