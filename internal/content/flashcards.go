package content

import (
	"context"
	"errors"
	"io/fs"
	"strings"
)

type Flashcard struct {
	Front    string `json:"front"`
	Back     string `json:"back"`
	Category string `json:"category"`
}

// Flashcards reads flashcards/<track>.csv. The first row is a header and
// is discarded; each remaining row must split on commas into exactly
// three fields. Delimiters inside fields are not escaped; that is the
// authored contract. An absent file yields an empty slice, not an error.
func (r *Resolver) Flashcards(ctx context.Context, track string) ([]Flashcard, error) {
	raw, err := r.store.Read(ctx, joinPath("flashcards", track+".csv"))
	if errors.Is(err, fs.ErrNotExist) {
		return []Flashcard{}, nil
	}
	if err != nil {
		return nil, err
	}

	lines := strings.Split(strings.ReplaceAll(string(raw), "\r\n", "\n"), "\n")
	cards := []Flashcard{}
	for i, line := range lines {
		if i == 0 || strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) != 3 {
			continue
		}
		cards = append(cards, Flashcard{
			Front:    strings.TrimSpace(fields[0]),
			Back:     strings.TrimSpace(fields[1]),
			Category: strings.TrimSpace(fields[2]),
		})
	}
	return cards, nil
}
