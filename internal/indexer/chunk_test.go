package indexer

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/seta/internal/walker"
)

func TestSplitText_ShortParagraphs(t *testing.T) {
	text := "First paragraph here.\n\nSecond one.\n\nThird and last."
	chunks := SplitText(text, 40, 0)
	assert.Equal(t, []string{"First paragraph here.", "Second one.", "Third and last."}, chunks)
}

func TestSplitText_CRLFParagraphs(t *testing.T) {
	chunks := SplitText("one\r\n\r\ntwo\n\n\n\nthree", 100, 0)
	assert.Equal(t, []string{"one", "two", "three"}, chunks)
}

func TestSplitText_Overlap(t *testing.T) {
	chunks := SplitText("ABCDE\n\nFGHIJ", 5, 5)
	assert.Equal(t, []string{"ABCDE", "ABCDEFGHIJ"}, chunks)
}

func TestSplitText_OverlapNotCompounded(t *testing.T) {
	chunks := SplitText("AAAA\n\nBBBB\n\nCCCC", 4, 2)
	assert.Equal(t, []string{"AAAA", "AABBBB", "BBCCCC"}, chunks)
}

func TestSplitText_OverlapLargerThanSize(t *testing.T) {
	chunks := SplitText("abc\n\ndef", 3, 10)
	assert.Equal(t, []string{"abc", "abcdef"}, chunks)
}

func TestSplitText_Empty(t *testing.T) {
	assert.Empty(t, SplitText("", 100, 10))
	assert.Empty(t, SplitText("\n\n   \n\n\t", 100, 10))
}

func TestSplitText_SkipsBlankParagraphs(t *testing.T) {
	chunks := SplitText("\n\nalpha\n\n  \n\nbeta\n\n", 100, 0)
	assert.Equal(t, []string{"alpha", "beta"}, chunks)
}

func TestSplitText_SentencePacking(t *testing.T) {
	para := "One two. Three four! Five six? Seven."
	chunks := SplitText(para, 20, 0)
	assert.Equal(t, []string{"One two. Three four!", " Five six? Seven."}, chunks)
	assert.Equal(t, para, strings.Join(chunks, ""))
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 20)
	}
}

func TestSplitText_OversizedSentenceKept(t *testing.T) {
	long := strings.Repeat("x", 50) + "."
	para := "Short. " + long + " Tail"
	chunks := SplitText(para, 10, 0)
	require.Len(t, chunks, 3)
	assert.Equal(t, "Short.", chunks[0])
	assert.Equal(t, " "+long, chunks[1])
	assert.Equal(t, " Tail", chunks[2])
}

func TestSplitText_TrailingTextWithoutTerminator(t *testing.T) {
	chunks := SplitText("Ends cleanly. But this part has no end", 15, 0)
	assert.Equal(t, "Ends cleanly. But this part has no end", strings.Join(chunks, ""))
	assert.Equal(t, "Ends cleanly.", chunks[0])
}

func TestSplitText_RunesNotBytes(t *testing.T) {
	para := strings.Repeat("é", 10)
	chunks := SplitText(para, 10, 0)
	assert.Equal(t, []string{para}, chunks)

	chunks = SplitText("ééé\n\nààà", 3, 2)
	assert.Equal(t, []string{"ééé", "ééààà"}, chunks)
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"A. B", []string{"A.", " B"}},
		{"Wait... what?! Yes", []string{"Wait...", " what?!", " Yes"}},
		{"line one\nline two\n", []string{"line one\n", "line two\n"}},
		{"no terminator", []string{"no terminator"}},
		{"..lead", []string{"..", "lead"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := splitSentences(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, strings.Join(got, ""))
		})
	}
}

func TestChunkDocument(t *testing.T) {
	file := walker.DocumentFile{
		Path:      "/docs/react/hooks/state.md",
		RelPath:   "react/hooks/state.md",
		LibraryID: "react",
		TopicName: "hooks",
	}
	chunks := ChunkDocument(file, "useState basics.\n\nuseEffect basics.", 100, 0)
	require.Len(t, chunks, 2)

	for i, c := range chunks {
		assert.Equal(t, i, c.Order)
		assert.Equal(t, "react", c.LibraryID)
		assert.Equal(t, "hooks", c.TopicName)
		assert.Equal(t, "react/hooks/state.md", c.OriginalFilePath)
	}
	assert.Equal(t, "react/hooks/state.md::0", chunks[0].ID)
	assert.Equal(t, "react/hooks/state.md::1", chunks[1].ID)
	assert.Equal(t, "useEffect basics.", chunks[1].Text)

	assert.Empty(t, ChunkDocument(file, "   ", 100, 0))
}
