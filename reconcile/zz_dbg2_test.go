package reconcile

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/gzip"
)

func TestDebugGzipDeterminism(t *testing.T) {
	data := bytes.Repeat([]byte("hello world, some json-like content 1234567890\n"), 50)
	out := make([][]byte, 3)
	for i := range out {
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		zw.Write(data)
		zw.Close()
		out[i] = buf.Bytes()
	}
	for i := 1; i < len(out); i++ {
		if !bytes.Equal(out[0], out[i]) {
			t.Errorf("run %d differs from run 0", i)
		}
	}
}
