package core

import (
	"strings"
	"testing"
)

func TestIsText(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		want    bool
	}{
		{"plain ASCII text", []byte("Hello, World!\nThis is a test."), true},
		{"UTF-8 with special chars", []byte("Hello 世界! Ñoño café"), true},
		{"empty note", []byte(""), true},
		{"newlines and spaces", []byte("\n\n  \t  \n"), true},
		{"content with null bytes", []byte("Hello\x00World"), false},
		{"non-UTF-8 sequences", []byte{0x80, 0x81, 0x82, 0x83, 0x84}, false},
		{"lots of non-printable", []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0A}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsText(tt.content); got != tt.want {
				t.Errorf("IsText() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsText_RuneAcrossSampleBoundary(t *testing.T) {
	// "世" is three bytes; place it so the sample cuts it in half
	content := strings.Repeat("a", TextSampleSize-1) + "世" + "tail"
	if !IsText([]byte(content)) {
		t.Error("Rune split by the sample boundary should still count as text")
	}
}

func TestSameContent(t *testing.T) {
	if !SameContent([]byte("same"), []byte("same")) {
		t.Error("Identical content should compare equal")
	}
	if SameContent([]byte("one"), []byte("two")) {
		t.Error("Different content should not compare equal")
	}
	if !SameContent(nil, []byte{}) {
		t.Error("nil and empty should compare equal")
	}
}

func TestGenerateUnifiedDiff_Identical(t *testing.T) {
	out, err := GenerateUnifiedDiff("note", []byte("a\nb\n"), []byte("a\nb\n"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if out != "" {
		t.Errorf("Expected empty diff, got %q", out)
	}
}

func TestGenerateUnifiedDiff_LineChange(t *testing.T) {
	stored := []byte("milk\neggs\nbread\n")
	local := []byte("milk\ncheese\nbread\n")

	out, err := GenerateUnifiedDiff("groceries", stored, local)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	for _, want := range []string{"--- a/groceries\n", "+++ b/groceries\n", "@@", "-eggs", "+cheese"} {
		if !strings.Contains(out, want) {
			t.Errorf("Diff missing %q:\n%s", want, out)
		}
	}
}

func TestGenerateUnifiedDiff_Binary(t *testing.T) {
	out, err := GenerateUnifiedDiff("blob", []byte("text"), []byte("bin\x00ary"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if out != "Binary content blob has changed\n" {
		t.Errorf("Unexpected binary diff output: %q", out)
	}
}
