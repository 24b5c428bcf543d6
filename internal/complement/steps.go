package complement

import (
	"fmt"
	"iter"
)

// Stage names one phase of a two's-complement subtraction walkthrough.
type Stage string

const (
	StagePad      Stage = "pad"
	StageOnes     Stage = "ones"
	StageTwos     Stage = "twos"
	StageColumn   Stage = "column"
	StageOverflow Stage = "overflow"
	StageResult   Stage = "result"
)

// Step is one line of a subtraction walkthrough.
type Step struct {
	Stage  Stage  `json:"stage"`
	Detail string `json:"detail"`
}

// Steps yields the walkthrough of s in presentation order. Column steps run
// from the least significant bit.
func (s Subtraction) Steps() iter.Seq[Step] {
	return func(yield func(Step) bool) {
		if !yield(Step{StagePad, fmt.Sprintf("%s - %s at %d bits", s.Minuend, s.Subtrahend, s.Width)}) {
			return
		}
		if !yield(Step{StageOnes, fmt.Sprintf("invert %s -> %s", s.Subtrahend, s.OnesComplement)}) {
			return
		}
		if !yield(Step{StageTwos, fmt.Sprintf("%s + 1 -> %s", s.OnesComplement, s.TwosComplement)}) {
			return
		}
		for _, c := range s.Columns {
			detail := fmt.Sprintf("bit %d: %d + %d + carry %d = %d carry %d",
				c.Position, c.A, c.B, c.CarryIn, c.Sum, c.CarryOut)
			if !yield(Step{StageColumn, detail}) {
				return
			}
		}
		overflow := "no carry out of the top bit"
		if s.OverflowCarry {
			overflow = "carry out of the top bit discarded"
		}
		if !yield(Step{StageOverflow, overflow}) {
			return
		}
		yield(Step{StageResult, s.Result})
	}
}
