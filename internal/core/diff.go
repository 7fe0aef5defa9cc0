package core

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

const (
	TextSampleSize   = 8192 // Bytes to sample for text/binary detection
	TextThresholdPct = 10   // Max % non-printable chars for text content
)

// IsText reports whether data looks like text a note can hold.
//
// Detection heuristic (in order):
//  1. Null bytes present → binary
//  2. Invalid UTF-8 → binary
//  3. >10% non-printable control chars → binary
func IsText(data []byte) bool {
	if len(data) == 0 {
		return true
	}

	if bytes.IndexByte(data, 0) != -1 {
		return false
	}

	sampleSize := min(len(data), TextSampleSize)
	sample := data[:sampleSize]

	// A multi-byte rune may be cut at the sample boundary
	if !utf8.Valid(sample) && (sampleSize == len(data) || !utf8.Valid(sample[:sampleSize-utf8.UTFMax])) {
		return false
	}

	nonPrintable := 0
	for _, b := range sample {
		if b < 32 && b != '\t' && b != '\n' && b != '\r' {
			nonPrintable++
		}
		if b == 127 {
			nonPrintable++
		}
	}

	threshold := len(sample) * TextThresholdPct / 100
	return nonPrintable <= threshold
}

// SameContent checks if two contents are identical by SHA-256
func SameContent(a, b []byte) bool {
	ha := sha256.Sum256(a)
	hb := sha256.Sum256(b)
	return bytes.Equal(ha[:], hb[:])
}

// GenerateUnifiedDiff generates a unified diff of stored against local.
// Returns an empty string if the contents are identical.
func GenerateUnifiedDiff(name string, stored, local []byte) (string, error) {
	if SameContent(stored, local) {
		return "", nil
	}

	if !IsText(stored) || !IsText(local) {
		return fmt.Sprintf("Binary content %s has changed\n", name), nil
	}

	dmp := diffmatchpatch.New()

	storedStr, localStr := string(stored), string(local)
	a, b, lineArray := dmp.DiffLinesToChars(storedStr, localStr)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	patches := dmp.PatchMake(storedStr, diffs)
	if len(patches) == 0 {
		return "", nil
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("--- a/%s\n", name))
	result.WriteString(fmt.Sprintf("+++ b/%s\n", name))
	result.WriteString(dmp.PatchToText(patches))

	return result.String(), nil
}

// Diff compares a stored note with local content
func (n *Notebook) Diff(ctx context.Context, password []byte, id string, local []byte) (string, error) {
	content, err := n.Read(ctx, password, id)
	if err != nil {
		return "", err
	}
	return GenerateUnifiedDiff(id, []byte(content), local)
}
