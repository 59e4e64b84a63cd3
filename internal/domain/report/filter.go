package report

import (
	"fmt"
	"strings"
)

// Filter narrows surveillance aggregation to a slice of the record store.
// Zero-valued fields are inactive; active fields combine with AND.
type Filter struct {
	// BulletinNumber matches as a case-insensitive substring.
	BulletinNumber string
	// Year matches the calendar year of the record's period start.
	Year int
	// Service matches exactly.
	Service string
}

// IsZero reports whether no criterion is active.
func (f Filter) IsZero() bool {
	return f.BulletinNumber == "" && f.Year == 0 && f.Service == ""
}

// Clause renders the filter as a SQL conjunction over the given table alias,
// with placeholders numbered from startIdx. Values travel as parameters,
// never as text spliced into the statement. An inactive filter renders as
// TRUE so the clause can always be embedded.
func (f Filter) Clause(alias string, startIdx int) (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)
	next := func() int { return startIdx + len(args) }

	if f.BulletinNumber != "" {
		conds = append(conds, fmt.Sprintf("%s.bulletin_number ILIKE $%d", alias, next()))
		args = append(args, "%"+f.BulletinNumber+"%")
	}
	if f.Year != 0 {
		conds = append(conds, fmt.Sprintf("EXTRACT(YEAR FROM %s.period_start) = $%d", alias, next()))
		args = append(args, f.Year)
	}
	if f.Service != "" {
		conds = append(conds, fmt.Sprintf("%s.service = $%d", alias, next()))
		args = append(args, f.Service)
	}

	if len(conds) == 0 {
		return "TRUE", nil
	}
	return strings.Join(conds, " AND "), args
}
