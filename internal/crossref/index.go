// Package crossref maps verses to their curated cross-references. The
// index is read-only after decode; a verse with no entry simply has no
// cross-references.
package crossref

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Ref is one cross-reference target: a verse in a possibly different book,
// with a snippet of its text for preview.
type Ref struct {
	Book    string `json:"book"`
	Chapter int    `json:"chapter"`
	Verse   int    `json:"verse"`
	Text    string `json:"text"`
}

// Index maps a verse key (see Key) to its cross-references in display order.
type Index map[string][]Ref

// Key builds the lookup key for a verse, e.g. "gn-1-1".
func Key(book string, chapter, verse int) string {
	return book + "-" + strconv.Itoa(chapter) + "-" + strconv.Itoa(verse)
}

// Decode parses and validates a cross-reference file. Every entry must
// name a target book and carry positive chapter/verse numbers; a shape
// mismatch fails the whole decode.
func Decode(data []byte) (Index, error) {
	var ix Index
	if err := json.Unmarshal(data, &ix); err != nil {
		return nil, fmt.Errorf("parse cross-references: %w", err)
	}
	for key, refs := range ix {
		for i, ref := range refs {
			if ref.Book == "" {
				return nil, fmt.Errorf("cross-references %s[%d]: missing book", key, i)
			}
			if ref.Chapter < 1 || ref.Verse < 1 {
				return nil, fmt.Errorf("cross-references %s[%d]: bad target %d:%d", key, i, ref.Chapter, ref.Verse)
			}
		}
	}
	if ix == nil {
		ix = Index{}
	}
	return ix, nil
}

// Lookup returns the cross-references for a verse in display order. A
// verse without entries yields an empty slice, never an error.
func (ix Index) Lookup(book string, chapter, verse int) []Ref {
	if ix == nil {
		return nil
	}
	return ix[Key(book, chapter, verse)]
}

// Has reports whether a verse has at least one cross-reference.
func (ix Index) Has(book string, chapter, verse int) bool {
	return len(ix.Lookup(book, chapter, verse)) > 0
}
