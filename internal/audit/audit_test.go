package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"librarysim/internal/catalog"
)

func TestRunCleanState(t *testing.T) {
	c := catalog.New()
	c.Add(catalog.Book{Name: "A", ID: 0, Year: 1999})
	p := &catalog.Patron{Name: "p", Limit: 2}
	require.Equal(t, catalog.BorrowOK, c.Borrow(p, 0, nopNotifier{}))

	assert.Empty(t, Run(Snapshot{Entries: c.Entries(), Patrons: []*catalog.Patron{p}}))
}

func TestRunReportsViolations(t *testing.T) {
	book := catalog.Book{Name: "A", ID: 0, Year: 1999}
	s := Snapshot{
		Entries: []catalog.Entry{{Book: book, Available: 2, Total: 1}},
		Patrons: []*catalog.Patron{{
			Name:  "p",
			Limit: 1,
			Held:  []catalog.Hold{{Book: book}, {Book: book}},
		}},
	}

	var names []string
	for _, v := range Run(s) {
		names = append(names, v.Check)
	}
	assert.ElementsMatch(t, []string{
		"copies_out_of_range",
		"patrons_over_limit",
		"duplicate_holds",
		"copies_held_exceed_catalog",
	}, names)
}

func TestRunCustomCheck(t *testing.T) {
	rows := Check{
		Name:      "rows",
		Measure:   func(s Snapshot) float64 { return float64(len(s.Entries)) },
		Threshold: Threshold{Operator: ">=", Value: 1},
	}

	v := Run(Snapshot{}, rows)
	require.Len(t, v, 1)
	assert.Equal(t, "rows: expected >= 1, got 0", v[0].String())
}

func TestEvaluate(t *testing.T) {
	assert.True(t, evaluate(2, Threshold{">", 1}))
	assert.True(t, evaluate(0, Threshold{"<", 1}))
	assert.True(t, evaluate(1, Threshold{"<=", 1}))
	assert.False(t, evaluate(1, Threshold{"!=", 1}))
}

type nopNotifier struct{}

func (nopNotifier) Attach(*catalog.Patron, catalog.Book) catalog.AttachResult {
	return catalog.AttachCreated
}

func (nopNotifier) Detach(*catalog.Patron, catalog.Book) catalog.DetachResult {
	return catalog.DetachNoEntry
}

func (nopNotifier) Notify(catalog.Book) {}
