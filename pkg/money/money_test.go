package money

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDollars(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"50.25", 5025},
		{"0.01", 1},
		{"100", 10000},
		{"10.5", 1050},
		{" 3.00 ", 300},
		{"-5", -500}, // 正负的语义校验归调用方
	}
	for _, tt := range tests {
		got, err := ParseDollars(tt.in)
		require.NoError(t, err, "in=%q", tt.in)
		assert.Equal(t, tt.want, got, "in=%q", tt.in)
	}
}

func TestParseDollarsInvalid(t *testing.T) {
	for _, in := range []string{"", "abc", "10.555", "1.2.3", "$5"} {
		_, err := ParseDollars(in)
		assert.ErrorIs(t, err, ErrInvalidAmount, "in=%q", in)
	}
}

// 美分超出 int64 的金额必须整体拒绝，IntPart 只取低位会变成任意数字
func TestParseDollarsOverflow(t *testing.T) {
	for _, in := range []string{
		"92233720368547758.08", // 恰好越过 int64 美分
		"99999999999999999999999",
		"-99999999999999999999999",
	} {
		_, err := ParseDollars(in)
		assert.ErrorIs(t, err, ErrInvalidAmount, "in=%q", in)
	}

	// 边界值本身是合法的
	got, err := ParseDollars("92233720368547758.07")
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), got)
}

func TestMulCents(t *testing.T) {
	total, err := MulCents(10, 5000)
	require.NoError(t, err)
	assert.Equal(t, int64(50000), total)

	total, err = MulCents(0, 5000)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)

	_, err = MulCents(1_000_000_000, 10_000_000_000)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = MulCents(math.MaxInt64, 2)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestFromFloat(t *testing.T) {
	assert.Equal(t, int64(15025), FromFloat(150.25))
	assert.Equal(t, int64(5000), FromFloat(50.0))
	// 浮点表示误差要被正确舍入
	assert.Equal(t, int64(2910), FromFloat(29.1))
	assert.Equal(t, int64(0), FromFloat(0))
	// 超出 int64 表示范围的价格归零，调用方按非法价格处理
	assert.Equal(t, int64(0), FromFloat(1e30))
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "50.25", FormatCents(5025))
	assert.Equal(t, "0.01", FormatCents(1))
	assert.Equal(t, "100.00", FormatCents(10000))
	assert.Equal(t, "-5.00", FormatCents(-500))
}
