package expand

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/c360studio/regkg/config"
	"github.com/c360studio/regkg/vocabulary/reg"
)

const (
	// maxSnippetLen bounds the snippet text.
	maxSnippetLen = 320

	// maxSnippetHints bounds the distinct label hints used in a snippet.
	maxSnippetHints = 2

	// survivorFactor scales the per-round frontier cap relative to the
	// per-section path budget. Without it frontier growth is
	// combinatorial in a dense graph.
	survivorFactor = 4
)

// Snippet is the expansion result for one queried section: a short text
// summary, the retained paths, and the related sections they reach.
type Snippet struct {
	SectionID  string `json:"section_id"`
	SectionIRI string `json:"section_iri"`

	// Text is a summary of at most 320 characters built from edge label
	// hints, suitable for direct inclusion in retrieval context.
	Text string `json:"text"`

	// Source tags where the snippet content came from.
	Source string `json:"source"`

	Paths []Path `json:"paths"`

	// RelatedSections lists every section reached by a retained path,
	// excluding the start itself, sorted.
	RelatedSections []string `json:"related_sections"`
}

// Expander runs bounded multi-hop graph expansion for section ids.
type Expander struct {
	gateway      Gateway
	logger       *slog.Logger
	maxHops      int
	maxPaths     int
	workers      int
	retryBudget  int
	retryBackoff time.Duration
}

// ExpanderOption customizes an Expander.
type ExpanderOption func(*Expander)

// WithLogger sets the expander logger.
func WithLogger(logger *slog.Logger) ExpanderOption {
	return func(e *Expander) { e.logger = logger }
}

// NewExpander builds an expander over the given gateway using the
// expansion and gateway retry settings from cfg.
func NewExpander(gateway Gateway, cfg *config.Config, opts ...ExpanderOption) (*Expander, error) {
	if gateway == nil {
		return nil, fmt.Errorf("gateway is required")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	e := &Expander{
		gateway:      gateway,
		logger:       slog.Default(),
		maxHops:      cfg.Expansion.MaxHops,
		maxPaths:     cfg.Expansion.MaxPathsPerSection,
		workers:      cfg.Expansion.Workers,
		retryBudget:  cfg.Gateway.RetryBudget,
		retryBackoff: cfg.Gateway.RetryBackoff,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.workers < 1 {
		e.workers = 1
	}
	return e, nil
}

// Expand discovers paths for each requested section. Section ids are
// canonicalized and de-duplicated first; snippets come back sorted by
// section id. A terminal gateway failure is scoped to its own section
// and reported in the joined error; other sections are preserved. On
// cancellation the snippets accumulated so far are returned together
// with the context error.
func (e *Expander) Expand(ctx context.Context, sectionIDs []string) ([]Snippet, error) {
	ids, errs := e.canonicalIDs(sectionIDs)

	results := make([]*Snippet, len(ids))
	sectionErrs := make([]error, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return nil
			}
			snippet, err := e.expandSection(gctx, id)
			if err != nil {
				sectionFailuresTotal.Inc()
				sectionErrs[i] = fmt.Errorf("expand %s: %w", id, err)
				e.logger.Warn("Section expansion failed",
					slog.String("section_id", id),
					slog.String("error", err.Error()))
				return nil
			}
			results[i] = snippet
			return nil
		})
	}
	// Workers never return errors; Wait only reaps them.
	_ = g.Wait()

	snippets := make([]Snippet, 0, len(ids))
	for _, s := range results {
		if s != nil {
			snippets = append(snippets, *s)
		}
	}
	for _, err := range sectionErrs {
		if err != nil {
			errs = append(errs, err)
		}
	}
	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}
	return snippets, errors.Join(errs...)
}

// canonicalIDs canonicalizes, de-duplicates, and sorts the requested
// section ids. Invalid ids become per-call errors rather than aborting
// the batch.
func (e *Expander) canonicalIDs(sectionIDs []string) ([]string, []error) {
	seen := make(map[string]bool, len(sectionIDs))
	ids := make([]string, 0, len(sectionIDs))
	var errs []error
	for _, raw := range sectionIDs {
		id, err := reg.NormalizeSectionID(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("section id %q: %w", raw, err))
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, errs
}

// candidate is one in-flight traversal path with its path-local visited
// set. The cycle guard is scoped to the path: the same node may
// reappear via a different path. A done candidate has no admissible
// outgoing edges and is carried to the final selection without further
// frontier queries.
type candidate struct {
	path    Path
	visited map[string]bool
	done    bool
}

// tip returns the node the candidate would be extended from.
func (c candidate) tip() string {
	if len(c.path.Edges) == 0 {
		return c.path.Start
	}
	return c.path.Edges[len(c.path.Edges)-1].Target
}

// expandSection runs the bounded BFS for one canonical section id.
func (e *Expander) expandSection(ctx context.Context, sectionID string) (*Snippet, error) {
	iri, err := reg.SectionIRI(sectionID)
	if err != nil {
		return nil, err
	}

	snippet := &Snippet{
		SectionID:       sectionID,
		SectionIRI:      iri,
		Source:          QueryExpandBySection,
		Paths:           []Path{},
		RelatedSections: []string{},
	}
	if e.maxHops <= 0 || e.maxPaths <= 0 {
		return snippet, nil
	}

	survivors := []candidate{{
		path:    Path{Start: iri},
		visited: map[string]bool{iri: true},
	}}

	for hop := 0; hop < e.maxHops; hop++ {
		frontier := make([]candidate, 0, len(survivors))
		for _, c := range survivors {
			if !c.done {
				frontier = append(frontier, c)
			}
		}
		if len(frontier) == 0 {
			break
		}

		edgesByTip, err := e.queryFrontier(ctx, sectionID, frontier)
		if err != nil {
			return nil, err
		}

		next := make([]candidate, 0, len(survivors))
		extended := false
		for _, c := range survivors {
			if c.done {
				next = append(next, c)
				continue
			}
			grew := false
			for _, edge := range edgesByTip[c.tip()] {
				if c.visited[edge.Target] {
					continue
				}
				edges := make([]Edge, len(c.path.Edges)+1)
				copy(edges, c.path.Edges)
				edges[len(c.path.Edges)] = edge

				visited := make(map[string]bool, len(c.visited)+1)
				for k := range c.visited {
					visited[k] = true
				}
				visited[edge.Target] = true

				next = append(next, candidate{
					path: Path{
						Start:      iri,
						Edges:      edges,
						Confidence: minConfidence(edges),
					},
					visited: visited,
				})
				grew = true
				extended = true
			}
			// A path with no admissible outgoing edges is complete; carry
			// it to the final selection without re-querying its tip.
			if !grew && len(c.path.Edges) > 0 {
				c.done = true
				next = append(next, c)
			}
		}
		if !extended {
			survivors = next
			break
		}

		sort.Slice(next, func(i, j int) bool { return lessPath(next[i].path, next[j].path) })
		if limit := e.maxPaths * survivorFactor; len(next) > limit {
			next = next[:limit]
		}
		survivors = next
	}

	paths := make([]Path, 0, len(survivors))
	for _, c := range survivors {
		if len(c.path.Edges) > 0 {
			paths = append(paths, c.path)
		}
	}
	sort.Slice(paths, func(i, j int) bool { return lessPath(paths[i], paths[j]) })
	if len(paths) > e.maxPaths {
		paths = paths[:e.maxPaths]
	}

	for i := range paths {
		paths[i].Graph = sharedGraph(paths[i].Edges)
		id, err := PathID(paths[i].Start, paths[i].Edges, paths[i].Graph)
		if err != nil {
			return nil, err
		}
		paths[i].ID = id
	}

	snippet.Paths = paths
	snippet.Text = buildSnippetText(paths)
	snippet.RelatedSections = relatedSections(sectionID, paths)
	return snippet, nil
}

// queryFrontier queries the gateway once per unique frontier node and
// returns the parsed, sorted candidate edges keyed by node.
func (e *Expander) queryFrontier(ctx context.Context, sectionID string, survivors []candidate) (map[string][]Edge, error) {
	tips := make([]string, 0, len(survivors))
	seen := make(map[string]bool, len(survivors))
	for _, c := range survivors {
		tip := c.tip()
		if !seen[tip] {
			seen[tip] = true
			tips = append(tips, tip)
		}
	}
	sort.Strings(tips)

	edgesByTip := make(map[string][]Edge, len(tips))
	for _, tip := range tips {
		rows, err := e.selectWithRetry(ctx, map[string]any{
			"section_iri":      tip,
			"start_section_id": sectionID,
			"max_hops":         e.maxHops,
		})
		if err != nil {
			return nil, err
		}

		edges := parseEdges(rows)
		sort.Slice(edges, func(i, j int) bool { return edges[i].sortKey() < edges[j].sortKey() })
		edgesByTip[tip] = edges
	}
	return edgesByTip, nil
}

// selectWithRetry issues the expansion query with a bounded number of
// fixed-backoff retries for transient failures. A budget of 0 means
// exactly one attempt.
func (e *Expander) selectWithRetry(ctx context.Context, params map[string]any) ([]Row, error) {
	attempts := e.retryBudget + 1
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			gatewayRetriesTotal.Inc()
			select {
			case <-time.After(e.retryBackoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		gatewayQueriesTotal.Inc()
		rows, err := e.gateway.Select(ctx, QueryExpandBySection, params)
		if err == nil {
			return rows, nil
		}
		lastErr = err
		if !IsTransient(err) {
			return nil, err
		}
		e.logger.Debug("Transient gateway failure",
			slog.Int("attempt", attempt+1),
			slog.String("error", err.Error()))
	}
	return nil, fmt.Errorf("gateway failed after %d attempts: %w", attempts, lastErr)
}

// parseEdges converts gateway rows to edges, dropping rows that lack
// source, predicate, or target.
func parseEdges(rows []Row) []Edge {
	edges := make([]Edge, 0, len(rows))
	for _, row := range rows {
		source := stringColumn(row, "source")
		predicate := stringColumn(row, "predicate")
		target := stringColumn(row, "target")
		if source == "" || predicate == "" || target == "" {
			continue
		}

		edge := Edge{
			Source:    reg.CanonicalizeIRI(source),
			Predicate: predicate,
			Target:    reg.CanonicalizeIRI(target),
			Graph:     stringColumn(row, "graph"),
			Related:   stringColumn(row, "related_section"),
		}
		if label := stringColumn(row, "label"); label != "" {
			edge.Label = label
		} else {
			edge.Label = stringColumn(row, "comment")
		}
		if conf, ok := floatColumn(row, "confidence"); ok {
			edge.Confidence = &conf
		}
		edges = append(edges, edge)
	}
	return edges
}

// stringColumn extracts a string column from a normalized row.
func stringColumn(row Row, key string) string {
	if v, ok := row[key].(string); ok {
		return v
	}
	return ""
}

// floatColumn extracts a numeric column from a normalized row.
func floatColumn(row Row, key string) (float64, bool) {
	switch v := row[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// buildSnippetText renders the snippet summary: up to two distinct edge
// label hints when any exist, else the first path's first two edges as
// "source predicate target".
func buildSnippetText(paths []Path) string {
	hints := make([]string, 0, maxSnippetHints)
	seen := make(map[string]bool)
	for _, p := range paths {
		for _, e := range p.Edges {
			if e.Label == "" || seen[e.Label] {
				continue
			}
			seen[e.Label] = true
			hints = append(hints, e.Label)
			if len(hints) == maxSnippetHints {
				break
			}
		}
		if len(hints) == maxSnippetHints {
			break
		}
	}

	if len(hints) == 0 && len(paths) > 0 {
		edges := paths[0].Edges
		if len(edges) > maxSnippetHints {
			edges = edges[:maxSnippetHints]
		}
		for _, e := range edges {
			hints = append(hints, e.Source+" "+e.Predicate+" "+e.Target)
		}
	}

	return truncate(strings.Join(hints, "; "), maxSnippetLen)
}

// truncate bounds s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// relatedSections collects every section reached by a retained path,
// excluding the start itself, sorted and de-duplicated.
func relatedSections(startID string, paths []Path) []string {
	seen := make(map[string]bool)
	for _, p := range paths {
		for _, e := range p.Edges {
			if id, ok := reg.SectionIDFromIRI(e.Target); ok && id != startID {
				seen[id] = true
			}
			if e.Related != "" {
				if id, err := reg.NormalizeSectionID(e.Related); err == nil && id != startID {
					seen[id] = true
				}
			}
		}
	}

	related := make([]string, 0, len(seen))
	for id := range seen {
		related = append(related, id)
	}
	sort.Strings(related)
	return related
}
