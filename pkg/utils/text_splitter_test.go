package utils

import (
	"strings"
	"testing"
)

func TestSplitTextEmpty(t *testing.T) {
	if got := SplitText("", 1000, 200); got != nil {
		t.Errorf("empty input should produce no chunks, got %d", len(got))
	}
}

func TestSplitTextShort(t *testing.T) {
	chunks := SplitText("hola mundo", 1000, 200)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != "hola mundo" || chunks[0].Ordinal != 0 {
		t.Errorf("unexpected chunk: %+v", chunks[0])
	}
}

func TestSplitTextOverlapPreserved(t *testing.T) {
	text := strings.Repeat("abcdefghij", 50) // 500 chars
	chunkSize, overlap := 200, 50

	chunks := SplitText(text, chunkSize, overlap)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1].Text)
		curr := []rune(chunks[i].Text)
		suffix := string(prev[len(prev)-overlap:])
		prefixLen := overlap
		if len(curr) < prefixLen {
			prefixLen = len(curr)
		}
		if string(curr[:prefixLen]) != suffix[:prefixLen] {
			t.Errorf("chunk %d does not start with the %d-char suffix of chunk %d", i, overlap, i-1)
		}
		if chunks[i].Ordinal != i {
			t.Errorf("chunk %d has ordinal %d", i, chunks[i].Ordinal)
		}
	}
}

func TestSplitTextCoversWholeInput(t *testing.T) {
	text := strings.Repeat("x", 2500)
	chunks := SplitText(text, 1000, 200)

	var rebuilt strings.Builder
	for i, c := range chunks {
		if i == 0 {
			rebuilt.WriteString(c.Text)
			continue
		}
		// every chunk after the first contributes its non-overlap tail
		runes := []rune(c.Text)
		if len(runes) > 200 {
			rebuilt.WriteString(string(runes[200:]))
		}
	}
	if rebuilt.Len() != len(text) {
		t.Errorf("rebuilt length %d, want %d", rebuilt.Len(), len(text))
	}
}

func TestSplitTextOverlapLargerThanSize(t *testing.T) {
	chunks := SplitText(strings.Repeat("y", 30), 10, 20)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 non-overlapping chunks, got %d", len(chunks))
	}
}
