package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoneyMarshalsAsQuotedTwoDecimalString(t *testing.T) {
	raw, err := json.Marshal(MustMoney("149.99"))
	require.NoError(t, err)
	assert.Equal(t, `"149.99"`, string(raw))

	raw, err = json.Marshal(MustMoney("200"))
	require.NoError(t, err)
	assert.Equal(t, `"200.00"`, string(raw))
}

func TestMoneyUnmarshal(t *testing.T) {
	var m Money
	require.NoError(t, json.Unmarshal([]byte(`"219.00"`), &m))
	assert.Equal(t, "219.00", m.String())

	require.NoError(t, json.Unmarshal([]byte(`219`), &m))
	assert.Equal(t, "219.00", m.String())

	require.NoError(t, json.Unmarshal([]byte(`null`), &m))
	assert.Equal(t, "0.00", m.String())

	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &m))
}

func TestMoneyArithmeticStaysExact(t *testing.T) {
	// 0.1 three times is exactly 0.3 in decimal, unlike float64.
	sum := ZeroMoney()
	for i := 0; i < 3; i++ {
		sum = sum.Add(MustMoney("0.10"))
	}
	assert.Equal(t, "0.30", sum.String())

	assert.Equal(t, "299.98", MustMoney("149.99").MulQty(2).String())
	assert.Equal(t, "40.00", MustMoney("219.00").Sub(MustMoney("179.00")).String())
}

func TestMoneyFromString(t *testing.T) {
	_, err := MoneyFromString("12,50")
	assert.Error(t, err)

	m, err := MoneyFromString("12.50")
	require.NoError(t, err)
	assert.True(t, m.Equal(MustMoney("12.5")))
}
