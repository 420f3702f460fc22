package databases

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecimal128Conversion(t *testing.T) {
	for _, s := range []string{"0", "10", "10.50", "0.0001", "123456789.99"} {
		d := decimal.RequireFromString(s)
		v, err := toDecimal128(d)
		require.NoError(t, err)
		back, err := fromDecimal128(v)
		require.NoError(t, err)
		assert.True(t, d.Equal(back), s)
	}
}
