// Package records loads entity records and pre-fetched corpus documents
// from JSON and NDJSON files selected by glob patterns.
package records

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/c360studio/regkg/reconcile"
)

// ErrNoFiles is returned when a glob pattern matches nothing.
var ErrNoFiles = errors.New("no matching record files")

// FetchRecord is one pre-fetched upstream document destined for the
// provenance ledger. Structured fetches carry their JSON inline in
// Content; raw fetches (HTML, PDF) reference the document on disk via
// ContentPath instead. Hashing happens downstream.
type FetchRecord struct {
	Subject        string            `json:"subject"`
	SourceURL      string            `json:"source_url"`
	ProviderDomain string            `json:"provider_domain"`
	RetrievedAt    time.Time         `json:"retrieved_at,omitempty"`
	Content        json.RawMessage   `json:"content,omitempty"`
	ContentPath    string            `json:"content_path,omitempty"`
	RequestURL     string            `json:"request_url,omitempty"`
	RequestParams  map[string]string `json:"request_params,omitempty"`
}

// Validate reports whether the fetch record is usable.
func (r FetchRecord) Validate() error {
	if strings.TrimSpace(r.Subject) == "" {
		return fmt.Errorf("fetch record has empty subject")
	}
	if strings.TrimSpace(r.SourceURL) == "" {
		return fmt.Errorf("fetch record %s has empty source_url", r.Subject)
	}
	if len(r.Content) == 0 && strings.TrimSpace(r.ContentPath) == "" {
		return fmt.Errorf("fetch record %s has neither content nor content_path", r.Subject)
	}
	return nil
}

// LoadEntityRecords loads entity records from every file matched by the
// glob patterns. Record validation is left to the reconciliation engine,
// which skips invalid records individually.
func LoadEntityRecords(globs []string) ([]reconcile.EntityRecord, error) {
	return loadFiles[reconcile.EntityRecord](globs)
}

// LoadFetchRecords loads pre-fetched corpus documents from every file
// matched by the glob patterns.
func LoadFetchRecords(globs []string) ([]FetchRecord, error) {
	return loadFiles[FetchRecord](globs)
}

func loadFiles[T any](globs []string) ([]T, error) {
	paths, err := expandGlobs(globs)
	if err != nil {
		return nil, err
	}

	var out []T
	for _, path := range paths {
		items, err := decodeFile[T](path)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		out = append(out, items...)
	}
	return out, nil
}

// expandGlobs resolves the patterns to a sorted, de-duplicated file
// list. A pattern matching nothing is an error; a silent empty batch is
// almost always a misconfigured path.
func expandGlobs(globs []string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string
	for _, pattern := range globs {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad glob %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("%w: %q", ErrNoFiles, pattern)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// decodeFile reads one file as either a JSON array or line-delimited
// JSON objects, detected by the first non-space byte.
func decodeFile[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("parse JSON array: %w", err)
		}
		return items, nil
	}

	var items []T
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	for {
		var item T
		if err := dec.Decode(&item); err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("parse NDJSON: %w", err)
		}
		items = append(items, item)
	}
	return items, nil
}
