package score

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/robmorgan/notate/faults"
)

// TimeSignature describes one bar's meter. Time-signature lists are consumed
// in order by the quantizers: when there are more bars than entries, the
// last signature repeats.
type TimeSignature struct {
	Numerator   int
	Denominator int
}

// Duration returns the bar length in whole notes.
func (ts TimeSignature) Duration() *big.Rat {
	return big.NewRat(int64(ts.Numerator), int64(ts.Denominator))
}

func (ts TimeSignature) String() string {
	return fmt.Sprintf("%d/%d", ts.Numerator, ts.Denominator)
}

// ParseTimeSignature parses strings like "4/4" or "3/8".
func ParseTimeSignature(s string) (TimeSignature, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 2 {
		return TimeSignature{}, faults.Configf("malformed time signature %q", s)
	}
	num, err := strconv.Atoi(parts[0])
	if err != nil || num <= 0 {
		return TimeSignature{}, faults.Configf("malformed time signature %q", s)
	}
	den, err := strconv.Atoi(parts[1])
	if err != nil || den <= 0 || den&(den-1) != 0 {
		return TimeSignature{}, faults.Configf("malformed time signature %q", s)
	}
	return TimeSignature{Numerator: num, Denominator: den}, nil
}
