package cmd

import (
	"os"
	"testing"
)

func pipeWith(t *testing.T, data string) *os.File {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Pipe failed: %v", err)
	}
	t.Cleanup(func() { r.Close() })

	if _, err := w.WriteString(data); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	w.Close()
	return r
}

func TestPipedInput(t *testing.T) {
	content, ok, err := pipedInput(pipeWith(t, "new body\n"))
	if err != nil {
		t.Fatalf("pipedInput failed: %v", err)
	}
	if !ok {
		t.Fatal("Expected piped content to be used")
	}
	if content != "new body\n" {
		t.Errorf("Expected %q, got %q", "new body\n", content)
	}
}

func TestPipedInputEmptyKeepsContent(t *testing.T) {
	content, ok, err := pipedInput(pipeWith(t, ""))
	if err != nil {
		t.Fatalf("pipedInput failed: %v", err)
	}
	if ok || content != "" {
		t.Errorf("Expected no content from an empty pipe, got %q (ok=%v)", content, ok)
	}
}

func TestPipedInputRejectsBinary(t *testing.T) {
	if _, _, err := pipedInput(pipeWith(t, "a\x00b")); err == nil {
		t.Error("Expected error for binary input")
	}
}
