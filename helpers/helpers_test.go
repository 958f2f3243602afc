package helpers

import (
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShortenAddr(t *testing.T) {
	assert.Equal(t, "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"[:6]+"…"+"GKutQY", ShortenAddr("5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"))
	assert.Equal(t, "short", ShortenAddr("short"))
}

func TestFormatTokens(t *testing.T) {
	assert.Equal(t, "1.5000 JOY", FormatTokens(big.NewInt(15_000_000_000), 10, "JOY"))
	assert.Equal(t, "0.0000 JOY", FormatTokens(big.NewInt(0), 10, "JOY"))
	assert.Equal(t, "– JOY", FormatTokens(nil, 10, "JOY"))
}

func TestParseTokens(t *testing.T) {
	v, err := ParseTokens("12.5", 10)
	require.NoError(t, err)
	assert.Equal(t, "125000000000", v.String())

	v, err = ParseTokens(" 3 ", 0)
	require.NoError(t, err)
	assert.Equal(t, "3", v.String())

	for _, bad := range []string{"", "abc", "-1", "0.123", "1e3", "1E999999999", strings.Repeat("9", 65)} {
		_, err := ParseTokens(bad, 2)
		assert.Error(t, err, bad)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", Truncate("hello", 10))
	assert.Equal(t, "hel…", Truncate("hello", 4))
	assert.Equal(t, "hello", Truncate("hello", 0))
}

func TestShortDate(t *testing.T) {
	assert.Equal(t, "02 Jan 2023", ShortDate("2023-01-02T10:00:00Z"))
	assert.Equal(t, "2023-01-02", ShortDate("2023-01-02 garbage"))
	assert.Equal(t, "x", ShortDate("x"))
}
