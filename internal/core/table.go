package core

// ColumnSet tracks which source columns were actually present in the input.
// The aggregator consults it for the stored-commission fallback.
type ColumnSet map[string]struct{}

func NewColumnSet(names ...string) ColumnSet {
	s := make(ColumnSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

func (s ColumnSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

func (s ColumnSet) Add(name string) {
	s[name] = struct{}{}
}

// Table is an immutable snapshot of normalized transaction records. It is
// owned by the pipeline invocation that created it; aggregator operations
// return fresh tables and never alias the input.
type Table struct {
	Records []Record
	Source  ColumnSet
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// Clone returns a table with a copied record slice. Record is a value type
// and decimals are immutable, so an element copy is a deep enough copy.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	out := &Table{
		Records: make([]Record, len(t.Records)),
		Source:  t.Source,
	}
	copy(out.Records, t.Records)
	return out
}
