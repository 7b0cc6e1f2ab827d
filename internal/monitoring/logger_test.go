package monitoring

import (
	"bytes"
	"strings"
	"testing"
)

func TestSetLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	var got []string
	SetLogger(func(format string, v ...interface{}) {
		got = append(got, format)
	})
	Logf("first")
	if len(got) != 1 || got[0] != "first" {
		t.Fatalf("custom logger got %v", got)
	}

	SetLogger(nil)
	Logf("second")
	if len(got) != 1 {
		t.Errorf("no-op logger forwarded a message: %v", got)
	}
}

func TestWriterLogger(t *testing.T) {
	var buf bytes.Buffer
	logf := WriterLogger(&buf, "[body] ")
	logf("pass %d ok", 3)

	line := buf.String()
	if !strings.HasPrefix(line, "[body] ") {
		t.Errorf("missing prefix: %q", line)
	}
	if !strings.HasSuffix(line, "pass 3 ok\n") {
		t.Errorf("unexpected line: %q", line)
	}
}
