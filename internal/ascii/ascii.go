// Package ascii describes 7-bit ASCII codes in decimal, binary and hex.
package ascii

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/digilab/internal/bits"
)

// Max is the largest ASCII code.
const Max = 127

// Category classifies a code.
type Category string

const (
	Control   Category = "Control Character"
	Space     Category = "Space"
	Digit     Category = "Digit"
	Upper     Category = "Uppercase Letter"
	Lower     Category = "Lowercase Letter"
	Delete    Category = "Delete Character"
	Printable Category = "Printable Character"
)

var controlNames = [32]string{
	"NUL", "SOH", "STX", "ETX", "EOT", "ENQ", "ACK", "BEL",
	"BS", "TAB", "LF", "VT", "FF", "CR", "SO", "SI",
	"DLE", "DC1", "DC2", "DC3", "DC4", "NAK", "SYN", "ETB",
	"CAN", "EM", "SUB", "ESC", "FS", "GS", "RS", "US",
}

// Code is one ASCII code in every representation.
type Code struct {
	Char        string   `json:"char"`
	Decimal     int      `json:"decimal"`
	Binary      string   `json:"binary"`
	Hex         string   `json:"hex"`
	Category    Category `json:"category"`
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description"`
}

// FromCode describes code n.
func FromCode(n int) (Code, error) {
	if n < 0 || n > Max {
		return Code{}, &bits.Error{
			Code:     bits.CodeInvalidSymbol,
			Message:  fmt.Sprintf("code %d outside ASCII range 0..%d", n, Max),
			Position: -1,
		}
	}
	c := Code{
		Char:     string(rune(n)),
		Decimal:  n,
		Binary:   fmt.Sprintf("%08b", n),
		Hex:      fmt.Sprintf("%02X", n),
		Category: CategoryOf(n),
		Name:     ControlName(n),
	}
	switch {
	case c.Name != "":
		c.Description = c.Name
	case n == ' ':
		c.Description = "Space"
	default:
		c.Description = c.Char
	}
	return c, nil
}

// FromChar describes the single character s.
func FromChar(s string) (Code, error) {
	if s == "" {
		return Code{}, bits.NewEmptyInput("character")
	}
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) {
		return Code{}, &bits.Error{
			Code:     bits.CodeWidthExceeded,
			Message:  "expected a single character",
			Input:    s,
			Position: -1,
		}
	}
	if r > Max {
		return Code{}, bits.NewInvalidSymbol(s, 0, bits.Binary)
	}
	return FromCode(int(r))
}

// EncodeText describes every character of text after NFC normalization.
// The first non-ASCII character fails with InvalidSymbol at its rune index.
func EncodeText(text string) ([]Code, error) {
	if text == "" {
		return nil, bits.NewEmptyInput("text")
	}
	text = norm.NFC.String(text)

	codes := make([]Code, 0, len(text))
	i := 0
	for _, r := range text {
		if r > Max {
			return nil, &bits.Error{
				Code:     bits.CodeInvalidSymbol,
				Message:  fmt.Sprintf("character %q is not ASCII", r),
				Input:    text,
				Position: i,
			}
		}
		c, _ := FromCode(int(r))
		codes = append(codes, c)
		i++
	}
	return codes, nil
}

// CategoryOf classifies code n.
func CategoryOf(n int) Category {
	switch {
	case n < 32:
		return Control
	case n == ' ':
		return Space
	case n >= '0' && n <= '9':
		return Digit
	case n >= 'A' && n <= 'Z':
		return Upper
	case n >= 'a' && n <= 'z':
		return Lower
	case n == Max:
		return Delete
	}
	return Printable
}

// ControlName returns the mnemonic of a control code, "DEL" for 127 and ""
// for everything else.
func ControlName(n int) string {
	if n >= 0 && n < len(controlNames) {
		return controlNames[n]
	}
	if n == Max {
		return "DEL"
	}
	return ""
}

// Range lists the codes of a named range: "control" (0..31), "printable"
// (32..126) or "all" (0..127).
func Range(name string) ([]Code, error) {
	var lo, hi int
	switch name {
	case "control":
		lo, hi = 0, 31
	case "printable":
		lo, hi = 32, 126
	case "all":
		lo, hi = 0, Max
	default:
		return nil, fmt.Errorf("unknown ASCII range %q", name)
	}
	codes := make([]Code, 0, hi-lo+1)
	for n := lo; n <= hi; n++ {
		c, _ := FromCode(n)
		codes = append(codes, c)
	}
	return codes, nil
}
