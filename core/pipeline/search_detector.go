package pipeline

import (
	"fmt"
	"strings"

	"github.com/yasinhessnawi1/Hideme-sub004/model"
)

// SearchDetector creates a detector that finds every occurrence of a
// term in the page text, returning SEARCH annotations with character
// offsets. Matching is case-insensitive unless caseSensitive is set;
// overlapping occurrences are not produced, the scan resumes after
// each match.
func SearchDetector(term string, caseSensitive bool) DetectFunc {
	return func(text string) ([]*model.Annotation, error) {
		if term == "" {
			return nil, fmt.Errorf("search term is empty")
		}

		haystack := text
		needle := term
		if !caseSensitive {
			haystack = strings.ToLower(text)
			needle = strings.ToLower(term)
		}

		var annotations []*model.Annotation
		offset := 0
		for {
			i := strings.Index(haystack[offset:], needle)
			if i < 0 {
				break
			}
			start := offset + i
			end := start + len(needle)
			annotations = append(annotations, &model.Annotation{
				Kind:  model.KindSearch,
				Text:  text[start:end],
				Start: start,
				End:   end,
			})
			offset = end
		}

		return annotations, nil
	}
}
