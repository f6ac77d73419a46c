package content

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/synaptiq/synapse-backend/internal/logger"
	apperrors "github.com/synaptiq/synapse-backend/internal/pkg/errors"
)

func writeFile(t *testing.T, root string, parts ...string) {
	t.Helper()
	content := parts[len(parts)-1]
	rel := filepath.Join(parts[:len(parts)-1]...)
	full := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func lessonFile(id, title string) string {
	return fmt.Sprintf("---\nid: %s\ntitle: %s\nduration: 5\n---\n\nBody of %s.\n", id, title, id)
}

func newTestResolver(t *testing.T, root string) *Resolver {
	t.Helper()
	return NewResolver(NewDirStore(root), logger.NewNop())
}

func TestResolveByIDAcrossTracks(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "tracks", "ml-basics", "01-intro", "a.md", lessonFile("a", "Lesson A"))
	writeFile(t, root, "tracks", "ml-basics", "01-intro", "b.md", lessonFile("b", "Lesson B"))
	writeFile(t, root, "tracks", "deep-learning", "01-nets", "c.md", lessonFile("c", "Lesson C"))

	r := newTestResolver(t, root)

	doc, err := r.ResolveByID(context.Background(), "b")
	if err != nil {
		t.Fatalf("ResolveByID(b) error = %v", err)
	}
	if doc.Frontmatter.ID != "b" {
		t.Fatalf("expected id b, got %q", doc.Frontmatter.ID)
	}
	if doc.Track != "ml-basics" {
		t.Fatalf("expected track ml-basics, got %q", doc.Track)
	}

	doc, err = r.ResolveByID(context.Background(), "c")
	if err != nil {
		t.Fatalf("ResolveByID(c) error = %v", err)
	}
	if doc.Track != "deep-learning" {
		t.Fatalf("expected track deep-learning, got %q", doc.Track)
	}

	if _, err := r.ResolveByID(context.Background(), "zzz"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResolveSkipsMalformed(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "tracks", "ml-basics", "01-intro", "broken.md", "no frontmatter at all\n")
	writeFile(t, root, "tracks", "ml-basics", "01-intro", "good.md", lessonFile("good-one", "Good"))

	r := newTestResolver(t, root)

	doc, err := r.ResolveByID(context.Background(), "good-one")
	if err != nil {
		t.Fatalf("ResolveByID() error = %v", err)
	}
	if doc.Frontmatter.ID != "good-one" {
		t.Fatalf("expected good-one, got %q", doc.Frontmatter.ID)
	}

	docs, err := r.ResolveAll(context.Background())
	if err != nil {
		t.Fatalf("ResolveAll() error = %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 well-formed document, got %d", len(docs))
	}
}

func TestResolveByIDIgnoresFilenameSlug(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "tracks", "ml-basics", "01-intro", "cool-lesson.md", lessonFile("x1", "Cool"))

	r := newTestResolver(t, root)

	// The filename slug is not an id; only the frontmatter id matches.
	if _, err := r.ResolveByID(context.Background(), "cool-lesson"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for filename slug, got %v", err)
	}
	doc, err := r.ResolveByID(context.Background(), "x1")
	if err != nil {
		t.Fatalf("ResolveByID(x1) error = %v", err)
	}
	if doc.Slug != "cool-lesson" {
		t.Fatalf("expected slug cool-lesson, got %q", doc.Slug)
	}
}

func TestResolveAllMissingRoot(t *testing.T) {
	t.Parallel()

	r := newTestResolver(t, t.TempDir())

	docs, err := r.ResolveAll(context.Background())
	if err != nil {
		t.Fatalf("ResolveAll() error = %v", err)
	}
	if len(docs) != 0 {
		t.Fatalf("expected empty listing, got %d docs", len(docs))
	}
}

func TestResolveByIDInLegacyTrack(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "awakening", "01-foundations", "intro.md", lessonFile("awk-1", "Awakening Intro"))

	r := newTestResolver(t, root)

	doc, err := r.ResolveByIDInTrack(context.Background(), "awakening", "awk-1")
	if err != nil {
		t.Fatalf("ResolveByIDInTrack() error = %v", err)
	}
	if doc.Chapter != "01-foundations" {
		t.Fatalf("unexpected chapter %q", doc.Chapter)
	}

	if _, err := r.ResolveByIDInTrack(context.Background(), "nonexistent", "awk-1"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown track, got %v", err)
	}
}

func TestFlashcards(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "flashcards", "ml-basics.csv",
		"front,back,category\nWhat is overfitting?,Memorizing noise instead of signal,concepts\nWhat does SGD stand for?,Stochastic Gradient Descent,optimization\n")

	r := newTestResolver(t, root)

	cards, err := r.Flashcards(context.Background(), "ml-basics")
	if err != nil {
		t.Fatalf("Flashcards() error = %v", err)
	}
	if len(cards) != 2 {
		t.Fatalf("expected 2 cards, got %d", len(cards))
	}
	if cards[0].Front != "What is overfitting?" || cards[0].Category != "concepts" {
		t.Fatalf("unexpected first card %+v", cards[0])
	}
}

func TestFlashcardsAbsenceIsEmpty(t *testing.T) {
	t.Parallel()

	r := newTestResolver(t, t.TempDir())

	cards, err := r.Flashcards(context.Background(), "nonexistent-track")
	if err != nil {
		t.Fatalf("Flashcards() error = %v", err)
	}
	if len(cards) != 0 {
		t.Fatalf("expected empty slice, got %d cards", len(cards))
	}
}
