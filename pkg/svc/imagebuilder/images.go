package imagebuilder

import (
	"context"
	"fmt"

	cerrdefs "github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
)

// Image lifecycle operations for built scoring images.

// ListImages returns the daemon's scoring images, identified by the scoring
// image label.
func (b *Builder) ListImages(ctx context.Context) ([]image.Summary, error) {
	summaries, err := b.client.ImageList(ctx, image.ListOptions{
		Filters: filters.NewArgs(filters.Arg("label", ImageLabelKey)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}

	return summaries, nil
}

// RemoveImage removes the image with the given reference from the daemon.
// Child layers shared with other images are pruned.
func (b *Builder) RemoveImage(ctx context.Context, reference string) error {
	_, err := b.client.ImageRemove(ctx, reference, image.RemoveOptions{
		PruneChildren: true,
	})
	if err != nil {
		if cerrdefs.IsNotFound(err) {
			return fmt.Errorf("%w: %s", ErrImageNotFound, reference)
		}

		return fmt.Errorf("failed to remove image %s: %w", reference, err)
	}

	return nil
}

// ImageExists reports whether the image with the given reference is present
// in the daemon.
func (b *Builder) ImageExists(ctx context.Context, reference string) (bool, error) {
	_, err := b.client.ImageInspect(ctx, reference)
	if err != nil {
		if cerrdefs.IsNotFound(err) {
			return false, nil
		}

		return false, fmt.Errorf("failed to inspect image %s: %w", reference, err)
	}

	return true, nil
}
