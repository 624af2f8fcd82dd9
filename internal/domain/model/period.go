package model

// Period is a match-time segment statistics are reported for.
type Period string

// Periods in selector order.
const (
	PeriodAll Period = "ALL"
	Period1st Period = "1ST"
	Period2nd Period = "2ND"
)

// Valid reports whether p is one of the known periods.
func (p Period) Valid() bool {
	switch p {
	case PeriodAll, Period1st, Period2nd:
		return true
	}
	return false
}

func (p Period) String() string { return string(p) }
