// Package audit measures library state against steady-state thresholds.
package audit

import (
	"fmt"
	"time"

	"librarysim/internal/catalog"
)

// Snapshot is the state a check measures.
type Snapshot struct {
	Entries []catalog.Entry
	Patrons []*catalog.Patron
}

// Threshold compares a measured value against a bound.
type Threshold struct {
	Operator string // >, <, >=, <=, ==
	Value    float64
}

// Check is a single measurable property of a snapshot.
type Check struct {
	Name      string
	Measure   func(Snapshot) float64
	Threshold Threshold
}

// Violation is a check whose measured value broke its threshold.
type Violation struct {
	Check     string    `json:"check"`
	Expected  string    `json:"expected"`
	Actual    float64   `json:"actual"`
	Timestamp time.Time `json:"timestamp"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: expected %s, got %.0f", v.Check, v.Expected, v.Actual)
}

// Checks are the invariants every library state must satisfy.
var Checks = []Check{
	{
		Name: "copies_out_of_range",
		Measure: func(s Snapshot) float64 {
			var n int
			for _, e := range s.Entries {
				if e.Available < 0 || e.Available > e.Total || e.Total < 1 {
					n++
				}
			}
			return float64(n)
		},
		Threshold: Threshold{Operator: "==", Value: 0},
	},
	{
		Name: "patrons_over_limit",
		Measure: func(s Snapshot) float64 {
			var n int
			for _, p := range s.Patrons {
				if len(p.Held) > p.Limit {
					n++
				}
			}
			return float64(n)
		},
		Threshold: Threshold{Operator: "==", Value: 0},
	},
	{
		Name: "duplicate_holds",
		Measure: func(s Snapshot) float64 {
			var n int
			for _, p := range s.Patrons {
				seen := make(map[int]bool, len(p.Held))
				for _, h := range p.Held {
					if seen[h.Book.ID] {
						n++
					}
					seen[h.Book.ID] = true
				}
			}
			return float64(n)
		},
		Threshold: Threshold{Operator: "==", Value: 0},
	},
	{
		Name: "copies_held_exceed_catalog",
		Measure: func(s Snapshot) float64 {
			out := make(map[int]int)
			for _, p := range s.Patrons {
				for _, h := range p.Held {
					out[h.Book.ID]++
				}
			}
			var n int
			for _, e := range s.Entries {
				if out[e.Book.ID] > e.Total-e.Available {
					n++
				}
				delete(out, e.Book.ID)
			}
			return float64(n)
		},
		Threshold: Threshold{Operator: "==", Value: 0},
	},
}

// Run evaluates checks against s. With no checks given it runs Checks.
func Run(s Snapshot, checks ...Check) []Violation {
	if len(checks) == 0 {
		checks = Checks
	}

	var violations []Violation
	for _, c := range checks {
		value := c.Measure(s)
		if !evaluate(value, c.Threshold) {
			violations = append(violations, Violation{
				Check:     c.Name,
				Expected:  fmt.Sprintf("%s %g", c.Threshold.Operator, c.Threshold.Value),
				Actual:    value,
				Timestamp: time.Now(),
			})
		}
	}
	return violations
}

func evaluate(value float64, threshold Threshold) bool {
	switch threshold.Operator {
	case ">":
		return value > threshold.Value
	case "<":
		return value < threshold.Value
	case ">=":
		return value >= threshold.Value
	case "<=":
		return value <= threshold.Value
	case "==":
		return value == threshold.Value
	default:
		return false
	}
}
