package parity

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/digilab/internal/bits"
)

// ByteWidth is the width of a checksum byte.
const ByteWidth = 8

// Checksum is an 8-bit one's-complement additive checksum.
//
// Checksum is the bitwise inverse of the low byte of Sum, so
// (Sum + Checksum) & 0xFF is always 0xFF for an intact message.
type Checksum struct {
	Bytes         []string `json:"bytes"`
	Values        []int    `json:"values"`
	Sum           int      `json:"sum"`
	Checksum      string   `json:"checksum"`
	ChecksumValue int      `json:"checksum_value"`
	Verification  int      `json:"verification"`
	Valid         bool     `json:"valid"`
}

// ParseBytes splits s on whitespace.
func ParseBytes(s string) []string {
	return strings.Fields(s)
}

// Checksum8 sums the byte values and complements the low byte of the sum.
// Bytes shorter than eight bits are zero-padded.
func Checksum8(data []string) (Checksum, error) {
	if len(data) == 0 {
		return Checksum{}, bits.NewEmptyInput("checksum bytes")
	}

	c := Checksum{
		Bytes:  make([]string, len(data)),
		Values: make([]int, len(data)),
	}
	for i, raw := range data {
		b, err := bits.Normalize(raw, bits.Binary, ByteWidth, ByteWidth)
		if err != nil {
			return Checksum{}, err
		}
		v, _ := strconv.ParseUint(b, 2, ByteWidth)
		c.Bytes[i] = b
		c.Values[i] = int(v)
		c.Sum += int(v)
	}

	c.ChecksumValue = ^c.Sum & 0xFF
	c.Checksum = fmt.Sprintf("%08b", c.ChecksumValue)
	c.Verification = (c.Sum + c.ChecksumValue) & 0xFF
	c.Valid = c.Verification == 0xFF
	return c, nil
}

// VerifyChecksum recomputes the checksum of data and compares it with
// checksum.
func VerifyChecksum(data []string, checksum string) (bool, error) {
	want, err := bits.Normalize(checksum, bits.Binary, ByteWidth, ByteWidth)
	if err != nil {
		return false, err
	}
	c, err := Checksum8(data)
	if err != nil {
		return false, err
	}
	return c.Checksum == want, nil
}
