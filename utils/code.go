package utils

import (
	"crypto/rand"
	"fmt"
	"regexp"
	"strings"
)

// Alphabet for generated codes. Ambiguous characters (I, O, 0, 1) are excluded
// so codes survive being read over the phone or typed from a printed card.
const giftCardCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

var giftCardCodeRegex = regexp.MustCompile(`^GC-[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{4}$`)

// GenerateGiftCardCode returns a new code in the canonical
// GC-XXXX-XXXX-XXXX-XXXX format using a cryptographic random source
func GenerateGiftCardCode() (string, error) {
	buf := make([]byte, GiftCardCodeGroups*GiftCardCodeGroupLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %v", err)
	}

	var sb strings.Builder
	sb.WriteString(GiftCardCodePrefix)
	for i, b := range buf {
		if i%GiftCardCodeGroupLen == 0 {
			sb.WriteByte('-')
		}
		// Alphabet length divides 256 evenly, so the modulo is unbiased
		sb.WriteByte(giftCardCodeAlphabet[int(b)%len(giftCardCodeAlphabet)])
	}
	return sb.String(), nil
}

// IsValidGiftCardCode reports whether code matches the canonical format.
// Matching is exact and case-sensitive; codes are never normalized.
func IsValidGiftCardCode(code string) bool {
	return giftCardCodeRegex.MatchString(code)
}
