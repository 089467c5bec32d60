package expand

import "context"

// QueryExpandBySection is the only query the expander issues. The
// gateway resolves it to whatever query language the backing store
// speaks; the expander never embeds one.
const QueryExpandBySection = "kg_expand_by_section_id"

// Row is one result row from the gateway, keyed by column name. Values
// are plain scalars; NormalizeRow unwraps the tagged form at the
// ingestion boundary.
type Row map[string]any

// Gateway is the narrow graph-store capability the expander depends on.
// Implementations are swappable without touching the traversal.
type Gateway interface {
	Select(ctx context.Context, queryID string, params map[string]any) ([]Row, error)
}

// NormalizeValue unwraps the gateway's scalar-or-wrapped-scalar value
// shape to a plain scalar. A map carrying a "value" key collapses to
// that value; everything else passes through.
func NormalizeValue(v any) any {
	if m, ok := v.(map[string]any); ok {
		if inner, ok := m["value"]; ok {
			return inner
		}
	}
	return v
}

// NormalizeRow normalizes every value in a row in place and returns it.
func NormalizeRow(row Row) Row {
	for k, v := range row {
		row[k] = NormalizeValue(v)
	}
	return row
}
