package money

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromFloat_RoundsToNearestCent(t *testing.T) {
	assert.Equal(t, Amount(1050), FromFloat(10.50))
	assert.Equal(t, Amount(-1050), FromFloat(-10.50))
}

func TestParseString_RoundTripsWithString(t *testing.T) {
	cases := []string{"12.50", "-3.00", "0.01", "100.00"}
	for _, c := range cases {
		a, err := ParseString(c)
		require.NoError(t, err)
		assert.Equal(t, c, a.String())
	}
}

func TestParseString_PadsShortFraction(t *testing.T) {
	a, err := ParseString("5.1")
	require.NoError(t, err)
	assert.Equal(t, Amount(510), a)
}

func TestMulRat_RoundsHalfAwayFromZero(t *testing.T) {
	// 1.00 * 1/20 = 0.05 exactly, the base paytable scaling case.
	assert.Equal(t, FromFloat(0.05), FromFloat(1).MulRat(1, 20))
	// 3 cents * 1/2 = 1.5, rounds away from zero to 2 (and -2 when negative).
	assert.Equal(t, Amount(2), FromCents(3).MulRat(1, 2))
	assert.Equal(t, Amount(-2), FromCents(-3).MulRat(1, 2))
}

func TestMarshalJSON_RendersAsString(t *testing.T) {
	b, err := json.Marshal(FromFloat(12.5))
	require.NoError(t, err)
	assert.Equal(t, `"12.50"`, string(b))
}

func TestUnmarshalJSON_ParsesStringAmount(t *testing.T) {
	var a Amount
	require.NoError(t, json.Unmarshal([]byte(`"42.00"`), &a))
	assert.Equal(t, FromFloat(42), a)
}

func TestAddSub_StayInIntegerCentSpace(t *testing.T) {
	a := FromFloat(0.10)
	b := FromFloat(0.20)
	assert.Equal(t, FromFloat(0.30), a.Add(b))
	assert.Equal(t, FromFloat(-0.10), a.Sub(b))
}
