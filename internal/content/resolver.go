package content

import (
	"context"
	"errors"
	"io/fs"
	"strings"

	"github.com/synaptiq/synapse-backend/internal/logger"
	apperrors "github.com/synaptiq/synapse-backend/internal/pkg/errors"
)

// Legacy tracks keep a fixed chapter layout at the store root instead of
// living under tracks/.
var legacyChapters = map[string][]string{
	"awakening": {"01-foundations", "02-neural-networks", "03-training"},
	"builder":   {"01-projects", "02-deployment"},
}

// IsLegacyTrack reports whether name is one of the fixed legacy tracks.
func IsLegacyTrack(name string) bool {
	_, ok := legacyChapters[name]
	return ok
}

// Resolver walks the document store and parses lesson documents. It holds
// no cache: every call re-reads the store.
type Resolver struct {
	store Store
	log   *logger.Logger
}

func NewResolver(store Store, baseLog *logger.Logger) *Resolver {
	return &Resolver{store: store, log: baseLog.With("component", "ContentResolver")}
}

// ResolveByID scans every track/chapter under tracks/ and returns the
// first document whose frontmatter id matches. Filename slugs never
// match; only the declared id does. Malformed candidates are skipped.
func (r *Resolver) ResolveByID(ctx context.Context, id string) (*Document, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.ErrNotFound
	}

	tracks, err := r.store.List(ctx, "tracks")
	if err != nil {
		return nil, err
	}
	for _, track := range tracks {
		if !track.IsDir {
			continue
		}
		doc, err := r.scanTrack(ctx, "tracks/"+track.Name, track.Name, id)
		if err != nil {
			return nil, err
		}
		if doc != nil {
			return doc, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

// ResolveByIDInTrack scans a single legacy track with its fixed chapter
// set.
func (r *Resolver) ResolveByIDInTrack(ctx context.Context, track, id string) (*Document, error) {
	chapters, ok := legacyChapters[track]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.ErrNotFound
	}

	for _, chapter := range chapters {
		doc, err := r.scanChapter(ctx, joinPath(track, chapter), track, chapter, id)
		if err != nil {
			return nil, err
		}
		if doc != nil {
			return doc, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

// ResolveAll parses every well-formed document across every track and
// chapter, in store traversal order. Malformed documents are dropped
// silently.
func (r *Resolver) ResolveAll(ctx context.Context) ([]*Document, error) {
	var docs []*Document

	tracks, err := r.store.List(ctx, "tracks")
	if err != nil {
		return nil, err
	}
	for _, track := range tracks {
		if !track.IsDir {
			continue
		}
		chapters, err := r.store.List(ctx, "tracks/"+track.Name)
		if err != nil {
			return nil, err
		}
		for _, chapter := range chapters {
			if !chapter.IsDir {
				continue
			}
			chapterDir := joinPath("tracks", track.Name, chapter.Name)
			chapterDocs, err := r.parseChapter(ctx, chapterDir, track.Name, chapter.Name)
			if err != nil {
				return nil, err
			}
			docs = append(docs, chapterDocs...)
		}
	}
	if docs == nil {
		docs = []*Document{}
	}
	return docs, nil
}

func (r *Resolver) scanTrack(ctx context.Context, trackDir, trackName, id string) (*Document, error) {
	chapters, err := r.store.List(ctx, trackDir)
	if err != nil {
		return nil, err
	}
	for _, chapter := range chapters {
		if !chapter.IsDir {
			continue
		}
		doc, err := r.scanChapter(ctx, joinPath(trackDir, chapter.Name), trackName, chapter.Name, id)
		if err != nil {
			return nil, err
		}
		if doc != nil {
			return doc, nil
		}
	}
	return nil, nil
}

func (r *Resolver) scanChapter(ctx context.Context, chapterDir, trackName, chapterName, id string) (*Document, error) {
	files, err := r.store.List(ctx, chapterDir)
	if err != nil {
		return nil, err
	}
	for _, file := range files {
		if file.IsDir || !strings.HasSuffix(file.Name, ".md") {
			continue
		}
		doc, err := r.parseFile(ctx, joinPath(chapterDir, file.Name), trackName, chapterName, file.Name)
		if err != nil {
			return nil, err
		}
		if doc != nil && doc.Frontmatter.ID == id {
			return doc, nil
		}
	}
	return nil, nil
}

func (r *Resolver) parseChapter(ctx context.Context, chapterDir, trackName, chapterName string) ([]*Document, error) {
	files, err := r.store.List(ctx, chapterDir)
	if err != nil {
		return nil, err
	}

	var docs []*Document
	for _, file := range files {
		if file.IsDir || !strings.HasSuffix(file.Name, ".md") {
			continue
		}
		doc, err := r.parseFile(ctx, joinPath(chapterDir, file.Name), trackName, chapterName, file.Name)
		if err != nil {
			return nil, err
		}
		if doc != nil {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

// parseFile returns (nil, nil) for malformed or vanished candidates so
// callers keep scanning; only storage failures propagate.
func (r *Resolver) parseFile(ctx context.Context, filePath, trackName, chapterName, fileName string) (*Document, error) {
	raw, err := r.store.Read(ctx, filePath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	fm, body, err := ParseDocument(raw)
	if errors.Is(err, ErrMalformed) {
		r.log.Debug("skipping malformed document", "path", filePath)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &Document{
		Frontmatter: fm,
		Content:     body,
		Slug:        strings.TrimSuffix(fileName, ".md"),
		Track:       trackName,
		Chapter:     chapterName,
	}, nil
}
