package reconcile

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func gunzip(t *testing.T, b []byte) []byte {
	zr, err := gzip.NewReader(bytes.NewReader(b))
	if err != nil {
		t.Fatal(err)
	}
	out, err := io.ReadAll(zr)
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func TestDebugWriteDecisions(t *testing.T) {
	records := []EntityRecord{
		{ID: "s1", Name: "ACME Corp.", Country: "US", Source: "gleif"},
		{ID: "s2", Name: "Acme Corporation", Country: "US"},
		{ID: "s3", Name: "Other Inc", Country: "FR"},
	}
	reversed := []EntityRecord{records[2], records[0], records[1]}
	dir := t.TempDir()
	for i := 0; i < 50; i++ {
		engineA, _ := NewEngine(nameRules(), WithWorkers(1))
		resultA, _ := engineA.Run(context.Background(), records)
		engineB, _ := NewEngine(nameRules(), WithWorkers(4))
		resultB, _ := engineB.Run(context.Background(), reversed)
		pA := filepath.Join(dir, "a.gz")
		pB := filepath.Join(dir, "b.gz")
		writeDecisions(pA, resultA.Decisions)
		writeDecisions(pB, resultB.Decisions)
		a, _ := os.ReadFile(pA)
		b, _ := os.ReadFile(pB)
		if !bytes.Equal(a, b) {
			ua, ub := gunzip(t, a), gunzip(t, b)
			t.Logf("iter %d: compressed differ (len %d vs %d); uncompressed equal: %v", i, len(a), len(b), bytes.Equal(ua, ub))
			if !bytes.Equal(ua, ub) {
				os.WriteFile("/tmp/ua.txt", ua, 0o644)
				os.WriteFile("/tmp/ub.txt", ub, 0o644)
			}
			t.FailNow()
		}
	}
	t.Log("all 50 iters equal")
}
