package usecase

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/rs/zerolog"
)

const maxQueryLength = 100

// QueryPreprocessor cleans free-text search input before it is sent to the backend
type QueryPreprocessor struct {
	logger zerolog.Logger
}

var (
	// Lone punctuation left between words after stripping
	orphanedPunctuationPattern = regexp.MustCompile(`\s+[,\-;:.]+\s+`)
	edgePunctuationPattern     = regexp.MustCompile(`^[,\-;:.\s]+|[,\-;:.\s]+$`)

	multiSpacePattern = regexp.MustCompile(`\s+`)
)

// NewQueryPreprocessor creates a new query preprocessor
func NewQueryPreprocessor(logger zerolog.Logger) *QueryPreprocessor {
	return &QueryPreprocessor{logger: logger}
}

// PreprocessQuery lowercases the query, strips characters the backend search
// rejects, collapses whitespace and caps the length at a word boundary.
func (p *QueryPreprocessor) PreprocessQuery(query string) string {
	if query == "" {
		return ""
	}

	original := query

	// Step 1: Keep letters, digits, whitespace and in-word joiners
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			return unicode.ToLower(r)
		case unicode.IsSpace(r):
			return ' '
		case r == '-', r == '\'', r == '.', r == ',':
			return r
		case r == '&':
			return ' '
		default:
			return -1
		}
	}, query)

	// Step 2: Clean up punctuation that's now orphaned
	cleaned = orphanedPunctuationPattern.ReplaceAllString(cleaned, " ")
	cleaned = multiSpacePattern.ReplaceAllString(cleaned, " ")
	cleaned = edgePunctuationPattern.ReplaceAllString(cleaned, "")

	// Step 3: Limit query length
	if len(cleaned) > maxQueryLength {
		cleaned = truncateAtWord(cleaned, maxQueryLength)
	}

	p.logger.Debug().Str("input", original).Str("output", cleaned).Msg("preprocessed search query")

	return cleaned
}

// truncateAtWord cuts s to at most n bytes, preferring the last word boundary
// in the second half and never splitting a UTF-8 sequence.
func truncateAtWord(s string, n int) string {
	cut := n
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	s = s[:cut]
	if lastSpace := strings.LastIndex(s, " "); lastSpace > n/2 {
		s = s[:lastSpace]
	}
	return strings.TrimSpace(s)
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
