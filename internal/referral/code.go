// Package referral generates the short human-facing codes used for
// referral-discount tracking. Codes are random over an alphabet without
// ambiguous characters; uniqueness across projects is enforced by the
// lifecycle service's store lookup and collision retry, not here.
package referral

import (
	"crypto/rand"
	"fmt"
	"regexp"
)

const (
	prefix     = "WS-"
	codeLength = 6
	// No 0/O, 1/I/L to keep codes readable over the phone.
	alphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
)

var codePattern = regexp.MustCompile(`^WS-[A-Z2-9]{6}$`)

// NewCode generates a random referral code like "WS-7KQM2X".
func NewCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating referral code: %w", err)
	}
	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}
	return prefix + string(buf), nil
}

// IsValid reports whether s has the shape of a referral code.
func IsValid(s string) bool {
	return codePattern.MatchString(s)
}
