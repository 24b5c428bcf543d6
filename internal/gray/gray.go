// Package gray converts between plain binary and reflected Gray code.
package gray

import (
	"fmt"
	"strconv"

	"github.com/roach88/digilab/internal/bits"
)

// MaxTableWidth bounds Table.
const MaxTableWidth = 8

// Row is one line of a Gray code table.
type Row struct {
	Decimal int    `json:"decimal"`
	Binary  string `json:"binary"`
	Gray    string `json:"gray"`
}

// Encode returns the Gray code of a binary string: the first bit is kept and
// every following bit is the XOR of itself and its left neighbour.
func Encode(binary string) (string, error) {
	b, err := bits.Normalize(binary, bits.Binary, 0, 0)
	if err != nil {
		return "", err
	}
	out := []byte(b)
	for i := 1; i < len(b); i++ {
		out[i] = xor(b[i-1], b[i])
	}
	return string(out), nil
}

// Decode is the inverse of Encode: each binary bit is the XOR of the previous
// binary bit and the current Gray bit.
func Decode(gray string) (string, error) {
	g, err := bits.Normalize(gray, bits.Binary, 0, 0)
	if err != nil {
		return "", err
	}
	out := []byte(g)
	for i := 1; i < len(g); i++ {
		out[i] = xor(out[i-1], g[i])
	}
	return string(out), nil
}

// Table lists every width-bit value with its Gray code, in counting order.
func Table(width int) ([]Row, error) {
	if width < 1 || width > MaxTableWidth {
		return nil, &bits.Error{
			Code:     bits.CodeWidthExceeded,
			Message:  fmt.Sprintf("table width %d outside 1..%d", width, MaxTableWidth),
			Position: -1,
		}
	}
	rows := make([]Row, 0, 1<<width)
	for v := range 1 << width {
		b := bits.PadLeft(strconv.FormatInt(int64(v), 2), width)
		g, _ := Encode(b)
		rows = append(rows, Row{Decimal: v, Binary: b, Gray: g})
	}
	return rows, nil
}

func xor(a, b byte) byte {
	if a == b {
		return '0'
	}
	return '1'
}
