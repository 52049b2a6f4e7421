// Package entropy provides the session's random source. A fixed seed gives a
// reproducible session; seed 0 draws a seed from crypto/rand.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	"log/slog"
	mathrand "math/rand"
	"time"
)

// NewRand returns a seeded generator and the seed actually used.
func NewRand(seed int64) (*mathrand.Rand, int64) {
	if seed == 0 {
		seed = CryptoSeed()
	}
	return mathrand.New(mathrand.NewSource(seed)), seed
}

// CryptoSeed returns a non-zero seed from crypto/rand, falling back to the clock.
func CryptoSeed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		slog.Debug("crypto/rand unavailable, seeding from clock", "error", err)
		return time.Now().UnixNano() | 1
	}
	// Clear the sign bit so seeds print as positive numbers.
	s := int64(binary.LittleEndian.Uint64(buf[:]) >> 1)
	if s == 0 {
		s = 1
	}
	return s
}
