package nextcloud

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Tagged describes a completed TagFile call.
type Tagged struct {
	Path   string `json:"path"`
	FileID FileID `json:"file_id"`
	TagID  int    `json:"tag_id"`
	Tag    string `json:"tag"`
}

// Tagger composes the directory and the tag registry into file tagging.
type Tagger struct {
	dir      *Directory
	registry *Registry
}

// TagFile assigns the tag named tagName to the file at path, creating the
// tag first if needed. The tag and file lookups run concurrently and the
// association runs only when both succeed. A tag created before a later
// failure is kept.
func (tg *Tagger) TagFile(ctx context.Context, path, tagName string) (Tagged, error) {
	path, err := tg.dir.resolver.Resolve(path)
	if err != nil {
		return Tagged{}, fmt.Errorf("tag file: %w", err)
	}

	var (
		g      errgroup.Group
		tagID  int
		fileID FileID
	)
	g.Go(func() error {
		var err error
		tagID, err = tg.registry.ResolveOrCreateTagID(ctx, tagName)
		return err
	})
	g.Go(func() error {
		var err error
		fileID, err = tg.dir.ResolveFileID(ctx, path)
		return err
	})
	if err := g.Wait(); err != nil {
		return Tagged{}, err
	}

	if err := tg.registry.Associate(ctx, fileID, tagID); err != nil {
		return Tagged{}, err
	}
	return Tagged{Path: path, FileID: fileID, TagID: tagID, Tag: tagName}, nil
}

// ListTagsForFile returns the names of the tags assigned to the file at path.
// Names come from the relation listing; relations without a display name are
// resolved through one scan of the full tag listing.
func (tg *Tagger) ListTagsForFile(ctx context.Context, path string) ([]string, error) {
	fileID, err := tg.dir.ResolveFileID(ctx, path)
	if err != nil {
		return nil, err
	}
	related, err := tg.registry.ListForFile(ctx, fileID)
	if err != nil {
		return nil, err
	}

	var byID map[int]string
	names := make([]string, 0, len(related))
	for _, t := range related {
		if t.Name != "" {
			names = append(names, t.Name)
			continue
		}
		if byID == nil {
			all, err := tg.registry.List(ctx)
			if err != nil {
				return nil, err
			}
			byID = make(map[int]string, len(all))
			for _, a := range all {
				byID[a.ID] = a.Name
			}
		}
		if name, ok := byID[t.ID]; ok {
			names = append(names, name)
		}
	}
	return names, nil
}

// ListAllTags returns the names of every tag.
func (tg *Tagger) ListAllTags(ctx context.Context) ([]string, error) {
	tags, err := tg.registry.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	return names, nil
}
