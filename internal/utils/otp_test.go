package utils

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOTP(t *testing.T) {
	for i := 0; i < 20; i++ {
		code, err := GenerateOTP()
		require.NoError(t, err)
		require.Len(t, code, 6)
		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}

func TestHashAndCompareOTP(t *testing.T) {
	hash, err := HashOTP("123456", 4)
	require.NoError(t, err)
	assert.NotEqual(t, "123456", hash)

	assert.True(t, CompareOTP(hash, "123456"))
	assert.False(t, CompareOTP(hash, "654321"))
	assert.False(t, CompareOTP("not-a-hash", "123456"))
}
