// Package token generates cryptographically random string identifiers.
// The web layer uses it for session IDs.
package token

import "crypto/rand"

// alphabet is the character set tokens draw from: URL- and cookie-safe
// alphanumerics.
var alphabet = []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789")

// New returns a random string of the given length over the token alphabet.
// Random bytes above the rejection threshold are discarded so every
// character is drawn uniformly, without modulo bias.
func New(length int) string {
	if length <= 0 {
		return ""
	}

	// highest byte value that maps onto the alphabet an exact number of times
	threshold := byte(255 - (256 % len(alphabet)))

	out := make([]byte, 0, length)
	buf := make([]byte, length*2)

	for {
		if _, err := rand.Read(buf); err != nil {
			panic("token: reading random bytes: " + err.Error())
		}

		for _, b := range buf {
			if b > threshold {
				continue
			}

			out = append(out, alphabet[int(b)%len(alphabet)])
			if len(out) == length {
				return string(out)
			}
		}
	}
}
