package splitter

import (
	"strings"
	"unicode/utf8"
)

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 150
)

// DefaultSeparators is the priority list used for ingestion: paragraph break
// first, then line break, then sentence-terminating period.
var DefaultSeparators = []string{"\n\n", "\n", "."}

// Chunk is one bounded window of a source document, keyed by its ordinal
// position. The ordinal doubles as the vector store point identifier.
type Chunk struct {
	Index int
	Text  string
}

type Splitter struct {
	chunkSize  int
	overlap    int
	separators []string
}

func New(chunkSize, overlap int, separators []string) *Splitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = DefaultChunkOverlap
	}
	if len(separators) == 0 {
		separators = DefaultSeparators
	}
	return &Splitter{
		chunkSize:  chunkSize,
		overlap:    overlap,
		separators: separators,
	}
}

// Split breaks a document into ordered chunks of at most chunkSize characters,
// preferring the earliest separator that keeps pieces under the limit and
// falling back to later separators, then to hard character boundaries.
// Consecutive chunks share roughly overlap characters.
func (s *Splitter) Split(document string) []Chunk {
	clean := strings.ReplaceAll(document, "\r\n", "\n")
	if strings.TrimSpace(clean) == "" {
		return nil
	}

	pieces := s.split(clean, s.separators)

	chunks := make([]Chunk, 0, len(pieces))
	for _, text := range pieces {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		chunks = append(chunks, Chunk{Index: len(chunks), Text: text})
	}
	return chunks
}

func (s *Splitter) split(text string, separators []string) []string {
	separator := ""
	remaining := separators
	for i, candidate := range separators {
		if strings.Contains(text, candidate) {
			separator = candidate
			remaining = separators[i+1:]
			break
		}
		remaining = separators[i+1:]
	}

	if separator == "" {
		return s.hardSplit(text)
	}

	parts := strings.Split(text, separator)

	out := make([]string, 0, len(parts))
	pending := make([]string, 0, len(parts))
	for _, part := range parts {
		if utf8.RuneCountInString(part) < s.chunkSize {
			pending = append(pending, part)
			continue
		}
		if len(pending) > 0 {
			out = append(out, s.merge(pending, separator)...)
			pending = pending[:0]
		}
		if len(remaining) == 0 {
			out = append(out, s.hardSplit(part)...)
		} else {
			out = append(out, s.split(part, remaining)...)
		}
	}
	if len(pending) > 0 {
		out = append(out, s.merge(pending, separator)...)
	}
	return out
}

// merge joins separator-delimited pieces back into chunks no longer than
// chunkSize characters, carrying a tail of at least overlap characters into
// the next chunk. Lengths are counted in runes so multi-byte text gets the
// same chunk capacity as ASCII.
func (s *Splitter) merge(parts []string, separator string) []string {
	sepLen := utf8.RuneCountInString(separator)

	chunks := make([]string, 0)
	window := make([]string, 0, len(parts))
	total := 0

	flush := func() {
		if len(window) == 0 {
			return
		}
		chunks = append(chunks, strings.Join(window, separator))
	}

	joinLen := func() int {
		if len(window) > 0 {
			return sepLen
		}
		return 0
	}

	for _, part := range parts {
		partLen := utf8.RuneCountInString(part)
		if total+joinLen()+partLen > s.chunkSize && len(window) > 0 {
			flush()
			// Drop leading pieces until the carried tail fits the overlap
			// budget and leaves room for the incoming piece.
			for len(window) > 0 && (total > s.overlap || total+joinLen()+partLen > s.chunkSize) {
				total -= utf8.RuneCountInString(window[0])
				window = window[1:]
				if len(window) > 0 {
					total -= sepLen
				}
			}
		}
		total += joinLen() + partLen
		window = append(window, part)
	}
	flush()

	return chunks
}

// hardSplit cuts text at fixed character boundaries, stepping by
// chunkSize-overlap so consecutive windows still share the overlap region.
// Boundaries fall between runes, never inside one.
func (s *Splitter) hardSplit(text string) []string {
	runes := []rune(text)
	if len(runes) <= s.chunkSize {
		return []string{text}
	}

	step := s.chunkSize - s.overlap
	if step <= 0 {
		step = s.chunkSize
	}

	out := make([]string, 0, len(runes)/step+1)
	for start := 0; start < len(runes); start += step {
		end := start + s.chunkSize
		if end >= len(runes) {
			out = append(out, string(runes[start:]))
			break
		}
		out = append(out, string(runes[start:end]))
	}
	return out
}
