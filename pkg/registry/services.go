package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	bolt "go.etcd.io/bbolt"
)

// PutService stores a service record, replacing any record with the same name.
func (r *Registry) PutService(ctx context.Context, service Service) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("failed to store service: %w", err)
	}

	payload, err := json.Marshal(service)
	if err != nil {
		return fmt.Errorf("failed to encode service record: %w", err)
	}

	err = r.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketServices).Put([]byte(service.Name), payload)
	})
	if err != nil {
		return fmt.Errorf("failed to store service: %w", err)
	}

	return nil
}

// GetService returns the service record for a name.
func (r *Registry) GetService(ctx context.Context, name string) (Service, error) {
	if err := ctx.Err(); err != nil {
		return Service{}, fmt.Errorf("failed to get service: %w", err)
	}

	var service Service

	err := r.db.View(func(tx *bolt.Tx) error {
		payload := tx.Bucket(bucketServices).Get([]byte(name))
		if payload == nil {
			return fmt.Errorf("%w: %s", ErrServiceNotFound, name)
		}

		err := json.Unmarshal(payload, &service)
		if err != nil {
			return fmt.Errorf("failed to decode service record: %w", err)
		}

		return nil
	})
	if err != nil {
		return Service{}, err
	}

	return service, nil
}

// ListServices returns every service record, ordered by name.
func (r *Registry) ListServices(ctx context.Context) ([]Service, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}

	var services []Service

	err := r.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketServices).ForEach(func(_, payload []byte) error {
			var service Service

			err := json.Unmarshal(payload, &service)
			if err != nil {
				return fmt.Errorf("failed to decode service record: %w", err)
			}

			services = append(services, service)

			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}

	slices.SortFunc(services, func(a, b Service) int {
		return strings.Compare(a.Name, b.Name)
	})

	return services, nil
}

// RemoveService deletes the service record for a name.
func (r *Registry) RemoveService(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("failed to remove service: %w", err)
	}

	err := r.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketServices)

		if bucket.Get([]byte(name)) == nil {
			return fmt.Errorf("%w: %s", ErrServiceNotFound, name)
		}

		return bucket.Delete([]byte(name))
	})
	if err != nil {
		return err
	}

	return nil
}
