package ledger

import (
	"salesledger/internal/core"
)

// DateRange is an inclusive [Start, End] pair of calendar dates.
type DateRange struct {
	Start core.Date `json:"start"`
	End   core.Date `json:"end"`
}

// Contains reports whether d falls inside the range. Unknown dates are
// never inside any range.
func (r DateRange) Contains(d core.Date) bool {
	if !d.Valid() {
		return false
	}
	if r.Start.Valid() && d.Before(r.Start.Time) {
		return false
	}
	if r.End.Valid() && d.After(r.End.Time) {
		return false
	}
	return true
}

// Query is a conjunction of optional filters. A nil range and empty sets
// mean "no restriction": a filter control the user never touched must
// yield the unfiltered superset, not an empty result.
type Query struct {
	Range         *DateRange
	Executives    []string
	CustomerTypes []string
	Zones         []string
}

// Filter returns a new table holding the records matching every active
// predicate. Application order cannot change the result: the predicates
// compose as a set intersection.
func Filter(t *core.Table, q Query) *core.Table {
	execs := asSet(q.Executives)
	types := asSet(q.CustomerTypes)
	zones := asSet(q.Zones)

	out := &core.Table{Source: t.Source}
	for _, rec := range t.Records {
		if q.Range != nil && !q.Range.Contains(rec.Date) {
			continue
		}
		if !matches(execs, rec.SalesExecutive) {
			continue
		}
		if !matches(types, rec.CustomerType) {
			continue
		}
		if !matches(zones, rec.AreaZone) {
			continue
		}
		out.Records = append(out.Records, rec)
	}
	return out
}

func asSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// matches applies exact string equality; a nil set is no restriction.
func matches(set map[string]struct{}, value string) bool {
	if set == nil {
		return true
	}
	_, ok := set[value]
	return ok
}
