// Package ulid generates ULID-shaped identifiers: a 48-bit millisecond
// timestamp followed by 80 bits of randomness, Crockford base32 encoded to a
// 26-character string that sorts the same way the 128-bit value does.
//
// Grounded on original_source/src/node/src/lib.rs, which generates unique
// ids via the Rust `ulid` crate (`Ulid::new().to_string()`); no equivalent
// Go library appears anywhere in the retrieval pack, so the encoder is
// reimplemented here rather than left unwired (see DESIGN.md).
package ulid

import (
	"time"

	"github.com/google/uuid"
)

const crockford = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// New returns a fresh ULID-shaped identifier using the current wall-clock
// time and a CSPRNG-backed randomness source (google/uuid's generator,
// already a dependency of this repo for process run identity).
func New() string {
	id := uuid.New()
	var entropy [10]byte
	// Skip bytes 6 and 8, which carry the UUIDv4 version and variant bits.
	copy(entropy[:6], id[:6])
	copy(entropy[6:], id[9:13])
	return Encode(time.Now(), entropy)
}

// Encode builds the 26-character ULID string from an explicit timestamp and
// entropy source, kept separate from New so the encoding itself is testable
// without depending on wall-clock time or randomness.
func Encode(t time.Time, entropy [10]byte) string {
	var b [16]byte
	ms := uint64(t.UnixMilli()) & 0xFFFFFFFFFFFF // 48 bits
	b[0] = byte(ms >> 40)
	b[1] = byte(ms >> 32)
	b[2] = byte(ms >> 24)
	b[3] = byte(ms >> 16)
	b[4] = byte(ms >> 8)
	b[5] = byte(ms)
	copy(b[6:], entropy[:])

	out := make([]byte, 26)
	for i := range out {
		out[i] = crockford[fiveBitsAt(b, i*5)]
	}
	return string(out)
}

// fiveBitsAt reads 5 bits starting at bit position p (0-indexed from the
// most-significant bit) out of a virtual 130-bit buffer formed by prefixing
// b's 128 bits with two zero bits, and returns them as a value in [0, 32).
func fiveBitsAt(b [16]byte, p int) byte {
	var v byte
	for i := 0; i < 5; i++ {
		v = (v << 1) | bitAt(b, p+i)
	}
	return v
}

func bitAt(b [16]byte, p int) byte {
	if p < 2 {
		return 0
	}
	q := p - 2
	byteIdx := q / 8
	bitIdx := q % 8
	return (b[byteIdx] >> (7 - bitIdx)) & 1
}
