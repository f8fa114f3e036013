package domain

import (
	"regexp"
	"strings"
)

const (
	// DefaultChunkSize is the target window size in characters.
	DefaultChunkSize = 1000
	// DefaultChunkOverlap is how many characters adjacent windows share.
	DefaultChunkOverlap = 150
)

// defaultSeparators order the boundary preference: paragraph, then line,
// then sentence, then word, then single characters.
var defaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// Splitter splits cleaned article text into an ordered sequence of
// overlapping windows.
type Splitter interface {
	Split(text string) []string
}

type recursiveSplitter struct {
	chunkSize    int
	chunkOverlap int
	separators   []string
}

// NewSplitter creates a boundary-aware splitter with the given window size
// and overlap. Out-of-range values fall back to the defaults.
func NewSplitter(chunkSize, chunkOverlap int) Splitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = DefaultChunkOverlap
		if chunkOverlap >= chunkSize {
			chunkOverlap = chunkSize / 4
		}
	}
	return &recursiveSplitter{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		separators:   defaultSeparators,
	}
}

func (s *recursiveSplitter) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return s.split(text, s.separators)
}

// split picks the coarsest separator present in the text, splits on it, and
// recurses with finer separators for any piece still over the window size.
func (s *recursiveSplitter) split(text string, separators []string) []string {
	separator := ""
	var remaining []string
	for i, candidate := range separators {
		if candidate == "" {
			break
		}
		if strings.Contains(text, candidate) {
			separator = candidate
			remaining = separators[i+1:]
			break
		}
	}

	if separator == "" {
		return s.hardSplit(text)
	}

	parts := strings.Split(text, separator)

	var chunks []string
	var pending []string
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		if len(part) <= s.chunkSize {
			pending = append(pending, part)
			continue
		}
		if len(pending) > 0 {
			chunks = append(chunks, s.merge(pending, separator)...)
			pending = nil
		}
		chunks = append(chunks, s.split(part, remaining)...)
	}
	if len(pending) > 0 {
		chunks = append(chunks, s.merge(pending, separator)...)
	}
	return chunks
}

// merge greedily packs pieces into windows of at most chunkSize characters,
// carrying chunkOverlap characters of trailing pieces into the next window.
func (s *recursiveSplitter) merge(parts []string, separator string) []string {
	sepLen := len(separator)

	var docs []string
	var window []string
	total := 0

	joinLen := func() int {
		if len(window) == 0 {
			return 0
		}
		return sepLen
	}

	for _, part := range parts {
		l := len(part)
		if total+l+joinLen() > s.chunkSize && len(window) > 0 {
			if doc := strings.TrimSpace(strings.Join(window, separator)); doc != "" {
				docs = append(docs, doc)
			}
			for len(window) > 0 && (total > s.chunkOverlap || (total+l+joinLen() > s.chunkSize && total > 0)) {
				drop := len(window[0])
				if len(window) > 1 {
					drop += sepLen
				}
				total -= drop
				window = window[1:]
			}
		}
		window = append(window, part)
		total += l
		if len(window) > 1 {
			total += sepLen
		}
	}

	if doc := strings.TrimSpace(strings.Join(window, separator)); doc != "" {
		docs = append(docs, doc)
	}
	return docs
}

// hardSplit is the character-level fallback for text with no usable
// boundaries: fixed windows advanced by chunkSize minus overlap.
func (s *recursiveSplitter) hardSplit(text string) []string {
	runes := []rune(text)
	step := s.chunkSize - s.chunkOverlap
	if step <= 0 {
		step = s.chunkSize
	}

	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + s.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		if piece := strings.TrimSpace(string(runes[start:end])); piece != "" {
			chunks = append(chunks, piece)
		}
		if end == len(runes) {
			break
		}
	}
	return chunks
}

var (
	spaceRuns   = regexp.MustCompile(`[ \t]+`)
	newlineRuns = regexp.MustCompile(`\n{3,}`)
)

// CleanText normalizes article text before chunking: whitespace runs become
// single spaces, three or more newlines collapse to a paragraph break, and
// the result is trimmed.
func CleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = spaceRuns.ReplaceAllString(text, " ")
	text = newlineRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
