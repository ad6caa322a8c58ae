package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testParams = argonParams{memory: 8 * 1024, time: 1, threads: 1, keyLen: 32}

func TestHashAndVerifyPassword(t *testing.T) {
	encoded, err := hashPassword("correct-horse", testParams)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$m=8192,t=1,p=1$"))

	assert.True(t, verifyPassword("correct-horse", encoded))
	assert.False(t, verifyPassword("wrong-horse", encoded))
}

func TestHashIsSalted(t *testing.T) {
	a, err := hashPassword("correct-horse", testParams)
	require.NoError(t, err)
	b, err := hashPassword("correct-horse", testParams)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestVerifyPasswordRejectsMalformed(t *testing.T) {
	assert.False(t, verifyPassword("anything", ""))
	assert.False(t, verifyPassword("anything", "$argon2id$v=19$m=8192,t=1$short"))
	assert.False(t, verifyPassword("anything", "$bcrypt$v=19$m=8192,t=1,p=1$c2FsdA$aGFzaA"))
}

func TestGenerateOTPShape(t *testing.T) {
	for i := 0; i < 20; i++ {
		code, err := generateOTP()
		require.NoError(t, err)
		assert.Regexp(t, `^\d{6}$`, code)
	}
}

func TestOTPMatches(t *testing.T) {
	h := hashOTP("123456")
	assert.True(t, otpMatches("123456", h))
	assert.False(t, otpMatches("123457", h))
}
