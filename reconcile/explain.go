package reconcile

import "fmt"

// Explanation is the audit view for one record: its canonical assignment
// and every decision it took part in.
type Explanation struct {
	Record    EntityRecord `json:"record"`
	Canonical string       `json:"canonical"`
	Merged    bool         `json:"merged"`
	Decisions []Decision   `json:"decisions"`
}

// Explain returns the explanation for a record id. Unknown ids return
// ErrNotFound; this is a reportable condition, not a crash.
func (r *Result) Explain(id string) (*Explanation, error) {
	record, ok := r.Records[id]
	if !ok {
		return nil, fmt.Errorf("explain %q: %w", id, ErrNotFound)
	}

	canonical := r.Canonical[id]
	exp := &Explanation{
		Record:    record,
		Canonical: canonical,
		Merged:    canonical != id,
	}
	for _, d := range r.Decisions {
		if d.Left == id || d.Right == id {
			exp.Decisions = append(exp.Decisions, d)
		}
	}
	return exp, nil
}
