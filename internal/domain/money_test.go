package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		in   string
		want Money
	}{
		{"10", 1000},
		{"10.00", 1000},
		{"12.5", 1250},
		{"12,50", 1250},
		{" 0.005 ", 1},
		{"19.994", 1999},
		{"0", 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMoney(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMoney_Invalid(t *testing.T) {
	for _, in := range []string{"", "abc", "R$ 10"} {
		_, err := ParseMoney(in)
		assert.Error(t, err, in)
	}
}

func TestMoney_String(t *testing.T) {
	assert.Equal(t, "0.00", Money(0).String())
	assert.Equal(t, "5.00", Money(500).String())
	assert.Equal(t, "32.00", Money(3200).String())
	assert.Equal(t, "0.07", Money(7).String())
}

func TestMoney_JSON(t *testing.T) {
	data, err := json.Marshal(Money(1250))
	require.NoError(t, err)
	assert.Equal(t, `"12.50"`, string(data))

	var m Money
	require.NoError(t, json.Unmarshal([]byte(`"12.50"`), &m))
	assert.Equal(t, Money(1250), m)

	require.NoError(t, json.Unmarshal([]byte(`7.5`), &m))
	assert.Equal(t, Money(750), m)

	require.NoError(t, json.Unmarshal([]byte(`null`), &m))
	assert.Equal(t, Money(0), m)

	assert.Error(t, json.Unmarshal([]byte(`"x"`), &m))
}

func TestMoney_CheckedArithmetic(t *testing.T) {
	p, ok := Money(1000).MulChecked(3)
	assert.True(t, ok)
	assert.Equal(t, Money(3000), p)

	_, ok = Money(1000).MulChecked(math.MaxInt / 100)
	assert.False(t, ok)

	_, ok = Money(math.MaxInt64).AddChecked(1)
	assert.False(t, ok)

	sum, ok := Money(3200).AddChecked(500)
	assert.True(t, ok)
	assert.Equal(t, Money(3700), sum)
}
