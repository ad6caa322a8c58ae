package service

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"math/big"
	"regexp"
)

var otpPattern = regexp.MustCompile(`^\d{6}$`)

// generateOTP returns a 6-digit zero-padded code from a CSPRNG.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// hashOTP produces the storage form of a code. Codes are short-lived and
// low-entropy, so a plain digest plus the attempt cap is the protection.
func hashOTP(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

func otpMatches(code, storedHash string) bool {
	return subtle.ConstantTimeCompare([]byte(hashOTP(code)), []byte(storedHash)) == 1
}
