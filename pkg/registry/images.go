package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	bolt "go.etcd.io/bbolt"
)

// PutImage stores an image record, replacing any record with the same reference.
func (r *Registry) PutImage(ctx context.Context, image Image) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("failed to store image: %w", err)
	}

	payload, err := json.Marshal(image)
	if err != nil {
		return fmt.Errorf("failed to encode image record: %w", err)
	}

	err = r.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketImages).Put([]byte(image.Reference()), payload)
	})
	if err != nil {
		return fmt.Errorf("failed to store image: %w", err)
	}

	return nil
}

// GetImage returns the image record for a name:tag reference.
func (r *Registry) GetImage(ctx context.Context, reference string) (Image, error) {
	if err := ctx.Err(); err != nil {
		return Image{}, fmt.Errorf("failed to get image: %w", err)
	}

	var image Image

	err := r.db.View(func(tx *bolt.Tx) error {
		payload := tx.Bucket(bucketImages).Get([]byte(reference))
		if payload == nil {
			return fmt.Errorf("%w: %s", ErrImageNotFound, reference)
		}

		err := json.Unmarshal(payload, &image)
		if err != nil {
			return fmt.Errorf("failed to decode image record: %w", err)
		}

		return nil
	})
	if err != nil {
		return Image{}, err
	}

	return image, nil
}

// ListImages returns every image record, ordered by reference.
func (r *Registry) ListImages(ctx context.Context) ([]Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}

	var images []Image

	err := r.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketImages).ForEach(func(_, payload []byte) error {
			var image Image

			err := json.Unmarshal(payload, &image)
			if err != nil {
				return fmt.Errorf("failed to decode image record: %w", err)
			}

			images = append(images, image)

			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}

	slices.SortFunc(images, func(a, b Image) int {
		return strings.Compare(a.Reference(), b.Reference())
	})

	return images, nil
}

// RemoveImage deletes the image record for a name:tag reference.
func (r *Registry) RemoveImage(ctx context.Context, reference string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("failed to remove image: %w", err)
	}

	err := r.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketImages)

		if bucket.Get([]byte(reference)) == nil {
			return fmt.Errorf("%w: %s", ErrImageNotFound, reference)
		}

		return bucket.Delete([]byte(reference))
	})
	if err != nil {
		return err
	}

	return nil
}
