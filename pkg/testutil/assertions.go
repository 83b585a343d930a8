package testutil

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// AssertErrorContains checks that err contains the expected substring.
func AssertErrorContains(t *testing.T, err error, expected string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), expected)
	}
}

// AssertDecimal compares a decimal against its string form, ignoring
// trailing zeros ("300" equals "300.00").
func AssertDecimal(t *testing.T, expected string, actual decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	want := decimal.RequireFromString(expected)
	assert.Truef(t, want.Equal(actual), "expected %s, got %s %v", want.String(), actual.String(), msgAndArgs)
}

// AssertDecimals compares a slice of decimals element by element.
func AssertDecimals(t *testing.T, expected []string, actual []decimal.Decimal) {
	t.Helper()
	if !assert.Len(t, actual, len(expected)) {
		return
	}
	for i := range expected {
		AssertDecimal(t, expected[i], actual[i], "index", i)
	}
}
