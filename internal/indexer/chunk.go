package indexer

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ziadkadry99/seta/internal/vectordb"
	"github.com/ziadkadry99/seta/internal/walker"
)

// paragraphBreak matches a blank-line boundary in LF or CRLF text.
var paragraphBreak = regexp.MustCompile(`(?:\r?\n){2,}`)

// SplitText splits text into chunks of at most chunkSize runes (before
// overlap is applied), preferring paragraph and then sentence boundaries.
// A single sentence longer than chunkSize becomes its own chunk rather than
// being dropped. When chunkOverlap > 0, every chunk after the first is
// prefixed with the last chunkOverlap runes of the preceding chunk as it was
// before its own prefix was added.
func SplitText(text string, chunkSize, chunkOverlap int) []string {
	var chunks []string
	for _, para := range paragraphBreak.Split(text, -1) {
		if strings.TrimSpace(para) == "" {
			continue
		}
		if utf8.RuneCountInString(para) <= chunkSize {
			chunks = append(chunks, para)
			continue
		}
		chunks = append(chunks, packSentences(splitSentences(para), chunkSize)...)
	}

	if chunkOverlap <= 0 || len(chunks) < 2 {
		return chunks
	}

	overlapped := make([]string, len(chunks))
	overlapped[0] = chunks[0]
	for i := 1; i < len(chunks); i++ {
		overlapped[i] = lastRunes(chunks[i-1], chunkOverlap) + chunks[i]
	}
	return overlapped
}

// packSentences greedily accumulates sentences, flushing whenever the next
// sentence would push the buffer past chunkSize.
func packSentences(sentences []string, chunkSize int) []string {
	var (
		chunks []string
		buf    strings.Builder
		bufLen int
	)
	for _, s := range sentences {
		n := utf8.RuneCountInString(s)
		if bufLen+n > chunkSize && bufLen > 0 {
			chunks = append(chunks, buf.String())
			buf.Reset()
			bufLen = 0
		}
		buf.WriteString(s)
		bufLen += n
	}
	if bufLen > 0 {
		chunks = append(chunks, buf.String())
	}
	return chunks
}

// splitSentences cuts a paragraph after each run of '.', '!', '?' or line
// breaks. Text after the last terminator is kept as a final sentence, so
// the sentences always concatenate back to the paragraph.
func splitSentences(para string) []string {
	var sentences []string
	start := 0
	inTerminators := false
	for i, r := range para {
		term := isSentenceEnd(r)
		if inTerminators && !term {
			sentences = append(sentences, para[start:i])
			start = i
		}
		inTerminators = term
	}
	if start < len(para) {
		sentences = append(sentences, para[start:])
	}
	return sentences
}

func isSentenceEnd(r rune) bool {
	switch r {
	case '.', '!', '?', '\n', '\r':
		return true
	}
	return false
}

func lastRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[len(runes)-n:])
}

// ChunkDocument splits extracted text into store chunks for file. Chunk IDs
// are "<relative path>::<order>".
func ChunkDocument(file walker.DocumentFile, text string, chunkSize, chunkOverlap int) []vectordb.Chunk {
	parts := SplitText(text, chunkSize, chunkOverlap)
	chunks := make([]vectordb.Chunk, len(parts))
	for i, part := range parts {
		chunks[i] = vectordb.Chunk{
			ID:               vectordb.ChunkID(file.RelPath, i),
			LibraryID:        file.LibraryID,
			TopicName:        file.TopicName,
			OriginalFilePath: file.RelPath,
			Text:             part,
			Order:            i,
		}
	}
	return chunks
}
