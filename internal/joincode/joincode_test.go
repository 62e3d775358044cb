package joincode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		code, err := Generate()
		require.NoError(t, err)
		assert.Len(t, code, Length)
		assert.True(t, Valid(code), "code %q has unexpected characters", code)
		seen[code] = struct{}{}
	}
	// 36^6 possibilities; 200 draws colliding down to a handful means a broken source.
	assert.Greater(t, len(seen), 190)
}

func TestMatch(t *testing.T) {
	cases := []struct {
		name      string
		submitted string
		want      bool
	}{
		{name: "exact", submitted: "ab12cd", want: true},
		{name: "upper case", submitted: "AB12CD", want: true},
		{name: "mixed case with spaces", submitted: "  Ab12Cd ", want: true},
		{name: "wrong", submitted: "ab12ce", want: false},
		{name: "prefix", submitted: "ab12c", want: false},
		{name: "empty", submitted: "", want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Match("ab12cd", tc.submitted))
		})
	}
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("000zzz"))
	assert.False(t, Valid("ABC123"))
	assert.False(t, Valid("abc-12"))
	assert.False(t, Valid("abc1234"))
}
