package provenance

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/c360studio/regkg/export"
	"github.com/c360studio/regkg/vocabulary/reg"
)

// Entry is the latest provenance record for one subject IRI. History is
// not kept; a new retrieval of changed content replaces the entry.
type Entry struct {
	Subject        string    `json:"subject"`
	SourceURL      string    `json:"source_url"`
	ProviderDomain string    `json:"provider_domain"`
	RetrievedAt    time.Time `json:"retrieved_at"`
	ContentHash    string    `json:"content_hash"`
	RequestURL     string    `json:"request_url,omitempty"`
}

// ProvenanceGraph is the named graph holding provenance quads.
const ProvenanceGraph = reg.ResourceNamespace + "graph/provenance"

// Ledger tracks per-subject provenance with content-hash gated change
// detection. Not safe for concurrent use; a run owns its ledger.
type Ledger struct {
	path    string
	logger  *slog.Logger
	entries map[string]Entry
	dirty   map[string]bool
	quads   []export.Quad
}

// RecordOption customizes a single Record call.
type RecordOption func(*recordOptions)

type recordOptions struct {
	retrievedAt   time.Time
	requestURL    string
	requestParams map[string]string
}

// WithRetrievedAt sets the retrieval timestamp (defaults to now).
func WithRetrievedAt(t time.Time) RecordOption {
	return func(o *recordOptions) { o.retrievedAt = t }
}

// WithRequest sets the upstream request URL and parameters used to mint
// the deterministic activity and request IRIs.
func WithRequest(url string, params map[string]string) RecordOption {
	return func(o *recordOptions) {
		o.requestURL = url
		o.requestParams = params
	}
}

// Open loads the ledger manifest at path, creating an empty ledger when
// the file does not exist yet.
func Open(path string, logger *slog.Logger) (*Ledger, error) {
	if path == "" {
		return nil, fmt.Errorf("manifest path is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	l := &Ledger{
		path:    path,
		logger:  logger,
		entries: make(map[string]Entry),
		dirty:   make(map[string]bool),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return l, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &l.entries); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}

	logger.Debug("Loaded provenance manifest",
		slog.String("path", path),
		slog.Int("subjects", len(l.entries)))
	return l, nil
}

// Record compares the content hash for subject against the stored entry
// and returns whether the subject changed. On change (or on a new
// subject) the entry is replaced, deterministic activity/request IRIs
// are minted, and provenance quads are appended to the in-memory graph.
func (l *Ledger) Record(subject, sourceURL, providerDomain, contentHash string, opts ...RecordOption) (bool, error) {
	if strings.TrimSpace(subject) == "" {
		return false, fmt.Errorf("%w: empty subject", reg.ErrInvalidIdentifier)
	}
	if contentHash == "" {
		return false, fmt.Errorf("empty content hash for %s", subject)
	}

	subject = reg.CanonicalizeIRI(subject)

	options := recordOptions{requestURL: sourceURL}
	for _, opt := range opts {
		opt(&options)
	}
	if options.retrievedAt.IsZero() {
		options.retrievedAt = time.Now().UTC()
	}

	if prev, ok := l.entries[subject]; ok && prev.ContentHash == contentHash {
		recordsUnchangedTotal.Inc()
		return false, nil
	}

	entry := Entry{
		Subject:        subject,
		SourceURL:      sourceURL,
		ProviderDomain: providerDomain,
		RetrievedAt:    options.retrievedAt.UTC(),
		ContentHash:    contentHash,
	}
	if options.requestURL != sourceURL {
		entry.RequestURL = options.requestURL
	}
	l.entries[subject] = entry
	l.dirty[subject] = true

	if err := l.appendQuads(entry, options); err != nil {
		return false, err
	}
	recordsChangedTotal.Inc()
	return true, nil
}

// appendQuads mints the activity/request IRIs for one changed subject
// and adds its provenance statements to the pending graph.
func (l *Ledger) appendQuads(entry Entry, options recordOptions) error {
	key := requestKey(options.requestURL, options.requestParams)
	activity, err := reg.ActivityIRI(key)
	if err != nil {
		return fmt.Errorf("mint activity IRI: %w", err)
	}
	request, err := reg.RequestIRI(key)
	if err != nil {
		return fmt.Errorf("mint request IRI: %w", err)
	}

	add := func(subject, predicate string, object any) {
		l.quads = append(l.quads, export.Quad{
			Triple: export.Triple{Subject: subject, Predicate: predicate, Object: object},
			Graph:  ProvenanceGraph,
		})
	}

	add(entry.Subject, reg.ProvWasDerivedFrom, entry.SourceURL)
	add(entry.Subject, reg.ProvWasGeneratedBy, activity)
	add(entry.Subject, reg.PropContentHash, entry.ContentHash)
	add(entry.Subject, reg.PropProvider, entry.ProviderDomain)
	add(activity, reg.RdfType, reg.ProvActivity)
	add(activity, reg.ProvUsed, request)
	add(activity, reg.ProvEndedAtTime, entry.RetrievedAt.Format(time.RFC3339))
	add(request, reg.RdfType, reg.ProvEntity)
	add(request, reg.ProvAtLocation, options.requestURL)
	return nil
}

// Changed returns how many subjects changed this run.
func (l *Ledger) Changed() int {
	return len(l.dirty)
}

// Entry returns the current entry for a subject IRI.
func (l *Ledger) Entry(subject string) (Entry, bool) {
	e, ok := l.entries[reg.CanonicalizeIRI(subject)]
	return e, ok
}

// Entries returns a copy of all current entries keyed by subject IRI.
func (l *Ledger) Entries() map[string]Entry {
	out := make(map[string]Entry, len(l.entries))
	for k, v := range l.entries {
		out[k] = v
	}
	return out
}

// Flush writes the manifest (always, keys sorted) and, only when at
// least one subject changed this run, the provenance graph in two
// serializations next to the manifest (.nq and .ttl). The dirty set is
// cleared on success.
func (l *Ledger) Flush() error {
	// encoding/json sorts map keys, which keeps the manifest byte-stable.
	data, err := json.MarshalIndent(l.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := writeFileAtomic(l.path, append(data, '\n')); err != nil {
		return fmt.Errorf("write manifest %s: %w", l.path, err)
	}

	if len(l.dirty) == 0 {
		l.logger.Debug("No provenance changes, skipping graph write")
		return nil
	}

	base := strings.TrimSuffix(l.path, filepath.Ext(l.path))
	for _, format := range []export.Format{export.FormatNQuads, export.FormatTurtle} {
		info, _ := export.GetFormatInfo(format)
		out, err := export.SerializeQuads(l.quads, format)
		if err != nil {
			return fmt.Errorf("serialize provenance graph: %w", err)
		}
		if err := writeFileAtomic(base+info.Extension, []byte(out)); err != nil {
			return fmt.Errorf("write provenance graph: %w", err)
		}
	}

	l.logger.Info("Flushed provenance",
		slog.Int("subjects", len(l.entries)),
		slog.Int("changed", len(l.dirty)))

	l.dirty = make(map[string]bool)
	l.quads = nil
	return nil
}

// Quads returns the pending provenance statements for this run.
func (l *Ledger) Quads() []export.Quad {
	return l.quads
}

// writeFileAtomic writes via a temp file and rename so a crash mid-write
// never leaves a truncated manifest.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
