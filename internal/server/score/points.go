// Package score holds the reputation arithmetic: the fixed-point Points
// type, the per-vote weights and the pure functions computing how a vote
// moves author and voter scores. Persistence lives in services.ScoreService.
package score

import (
	"database/sql/driver"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Points is a reputation amount in hundredths of a point. Integer arithmetic
// keeps scores exact across any number of vote toggles.
type Points int64

// Scale is the number of Points in one whole reputation point.
const Scale = 100

// Whole converts a whole number of reputation points.
func Whole(n int64) Points { return Points(n * Scale) }

// Mul scales p by an integer factor, e.g. a net vote count.
func (p Points) Mul(n int64) Points { return p * Points(n) }

// String renders p with exactly two decimals: 2.50, -1.50, 0.00.
func (p Points) String() string {
	sign := ""
	v := int64(p)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/Scale, v%Scale)
}

// Float64 is for display only; never feed it back into arithmetic.
func (p Points) Float64() float64 { return float64(p) / Scale }

func (p Points) MarshalJSON() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Points) UnmarshalJSON(b []byte) error {
	v, err := ParsePoints(strings.Trim(string(b), `"`))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// ParsePoints reads a decimal such as "2.5", "-1.50" or "4". More than two
// fractional digits is an error rather than a silent rounding.
func ParsePoints(s string) (Points, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("invalid points %q", s)
	}
	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")
	if len(frac) > 2 || (whole == "" && frac == "") {
		return 0, fmt.Errorf("invalid points %q", s)
	}
	for len(frac) < 2 {
		frac += "0"
	}
	if whole == "" {
		whole = "0"
	}
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || w < 0 {
		return 0, fmt.Errorf("invalid points %q", s)
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil || f < 0 {
		return 0, fmt.Errorf("invalid points %q", s)
	}
	if w > (math.MaxInt64-f)/Scale {
		return 0, fmt.Errorf("points %q out of range", s)
	}
	v := Points(w*Scale + f)
	if neg {
		v = -v
	}
	return v, nil
}

// Value stores Points as a BIGINT of hundredths.
func (p Points) Value() (driver.Value, error) {
	return int64(p), nil
}

func (p *Points) Scan(src any) error {
	switch v := src.(type) {
	case int64:
		*p = Points(v)
	case int32:
		*p = Points(v)
	case nil:
		*p = 0
	default:
		return fmt.Errorf("cannot scan %T into Points", src)
	}
	return nil
}
