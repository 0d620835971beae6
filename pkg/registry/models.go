package registry

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/devantler-tech/msail/pkg/apis/workspace/v1alpha1"
	bolt "go.etcd.io/bbolt"
)

// RegisterModelOptions describes a model artifact to register.
type RegisterModelOptions struct {
	// Path is the artifact file to copy into the registry.
	Path string

	// Name identifies the model.
	Name string

	// Description is free-form text stored with the version.
	Description string

	// Tags are arbitrary key/value labels stored with the version.
	Tags map[string]string
}

// RegisterModel copies the artifact into the registry and records it under the
// next version of the model name. The first version of a name is 1.
func (r *Registry) RegisterModel(ctx context.Context, opts RegisterModelOptions) (Model, error) {
	if err := ctx.Err(); err != nil {
		return Model{}, fmt.Errorf("failed to register model: %w", err)
	}

	if opts.Name == "" {
		return Model{}, ErrEmptyModelName
	}

	err := v1alpha1.ValidateName(opts.Name)
	if err != nil {
		return Model{}, fmt.Errorf("failed to register model: %w", err)
	}

	digest, size, err := r.storeArtifact(opts.Path)
	if err != nil {
		return Model{}, err
	}

	model := Model{
		Name:        opts.Name,
		Description: opts.Description,
		Tags:        opts.Tags,
		Digest:      digest,
		Size:        size,
		Path:        r.ArtifactPath(digest),
		CreatedAt:   time.Now().UTC(),
	}

	err = r.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketModels)

		model.Version = latestVersion(bucket, opts.Name) + 1

		payload, err := json.Marshal(model)
		if err != nil {
			return fmt.Errorf("failed to encode model record: %w", err)
		}

		err = bucket.Put(modelKey(model.Name, model.Version), payload)
		if err != nil {
			return fmt.Errorf("failed to store model record: %w", err)
		}

		return nil
	})
	if err != nil {
		return Model{}, fmt.Errorf("failed to register model: %w", err)
	}

	return model, nil
}

// GetModel returns one version of a model. Version 0 resolves to the latest
// registered version of the name.
func (r *Registry) GetModel(ctx context.Context, name string, version int) (Model, error) {
	if err := ctx.Err(); err != nil {
		return Model{}, fmt.Errorf("failed to get model: %w", err)
	}

	var model Model

	err := r.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketModels)

		lookup := version
		if lookup == 0 {
			lookup = latestVersion(bucket, name)
		}

		payload := bucket.Get(modelKey(name, lookup))
		if payload == nil {
			return fmt.Errorf("%w: %s version %d", ErrModelNotFound, name, version)
		}

		err := json.Unmarshal(payload, &model)
		if err != nil {
			return fmt.Errorf("failed to decode model record: %w", err)
		}

		return nil
	})
	if err != nil {
		return Model{}, err
	}

	return model, nil
}

// ListModels returns every registered model version, ordered by name and version.
func (r *Registry) ListModels(ctx context.Context) ([]Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}

	var models []Model

	err := r.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketModels).ForEach(func(_, payload []byte) error {
			var model Model

			err := json.Unmarshal(payload, &model)
			if err != nil {
				return fmt.Errorf("failed to decode model record: %w", err)
			}

			models = append(models, model)

			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}

	slices.SortFunc(models, func(a, b Model) int {
		if a.Name != b.Name {
			return strings.Compare(a.Name, b.Name)
		}

		return a.Version - b.Version
	})

	return models, nil
}

// RemoveModel deletes one version of a model, or every version when the
// version is 0. Artifact files are removed once no record references them.
func (r *Registry) RemoveModel(ctx context.Context, name string, version int) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("failed to remove model: %w", err)
	}

	orphaned := make(map[string]struct{})

	err := r.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketModels)

		removed, err := deleteModelRecords(bucket, name, version)
		if err != nil {
			return err
		}

		if len(removed) == 0 {
			return fmt.Errorf("%w: %s version %d", ErrModelNotFound, name, version)
		}

		for _, digest := range removed {
			if !digestReferenced(bucket, digest) {
				orphaned[digest] = struct{}{}
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	for digest := range orphaned {
		err := os.Remove(r.ArtifactPath(digest))
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove model artifact: %w", err)
		}
	}

	return nil
}

// ArtifactPath returns the on-disk location of an artifact digest.
func (r *Registry) ArtifactPath(digest string) string {
	return filepath.Join(r.root, artifactDir, digest)
}

// storeArtifact copies the source file into the artifact directory under its
// SHA-256 digest. Identical contents are stored once.
func (r *Registry) storeArtifact(source string) (string, int64, error) {
	input, err := os.Open(filepath.Clean(source))
	if err != nil {
		return "", 0, fmt.Errorf("failed to open model artifact: %w", err)
	}
	defer func() { _ = input.Close() }()

	tmp, err := os.CreateTemp(filepath.Join(r.root, artifactDir), ".upload-*")
	if err != nil {
		return "", 0, fmt.Errorf("failed to stage model artifact: %w", err)
	}

	hasher := sha256.New()

	size, err := io.Copy(io.MultiWriter(tmp, hasher), input)
	if err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())

		return "", 0, fmt.Errorf("failed to copy model artifact: %w", err)
	}

	err = tmp.Close()
	if err != nil {
		_ = os.Remove(tmp.Name())

		return "", 0, fmt.Errorf("failed to stage model artifact: %w", err)
	}

	digest := hex.EncodeToString(hasher.Sum(nil))

	err = os.Rename(tmp.Name(), r.ArtifactPath(digest))
	if err != nil {
		_ = os.Remove(tmp.Name())

		return "", 0, fmt.Errorf("failed to store model artifact: %w", err)
	}

	return digest, size, nil
}

func modelKey(name string, version int) []byte {
	return []byte(name + "/" + strconv.Itoa(version))
}

func modelKeyPrefix(name string) []byte {
	return []byte(name + "/")
}

// latestVersion returns the highest version recorded for a name, or 0 when the
// name has no versions.
func latestVersion(bucket *bolt.Bucket, name string) int {
	latest := 0
	prefix := modelKeyPrefix(name)
	cursor := bucket.Cursor()

	for key, _ := cursor.Seek(prefix); key != nil && bytes.HasPrefix(key, prefix); key, _ = cursor.Next() {
		version, err := strconv.Atoi(string(key[len(prefix):]))
		if err != nil {
			continue
		}

		if version > latest {
			latest = version
		}
	}

	return latest
}

// deleteModelRecords removes matching records and returns the digests they
// referenced. Version 0 matches every version of the name.
func deleteModelRecords(bucket *bolt.Bucket, name string, version int) ([]string, error) {
	var (
		keys    [][]byte
		digests []string
	)

	prefix := modelKeyPrefix(name)
	cursor := bucket.Cursor()

	for key, payload := cursor.Seek(prefix); key != nil && bytes.HasPrefix(key, prefix); key, payload = cursor.Next() {
		recorded, err := strconv.Atoi(string(key[len(prefix):]))
		if err != nil {
			continue
		}

		if version != 0 && recorded != version {
			continue
		}

		var model Model

		err = json.Unmarshal(payload, &model)
		if err != nil {
			return nil, fmt.Errorf("failed to decode model record: %w", err)
		}

		keys = append(keys, slices.Clone(key))
		digests = append(digests, model.Digest)
	}

	for _, key := range keys {
		err := bucket.Delete(key)
		if err != nil {
			return nil, fmt.Errorf("failed to delete model record: %w", err)
		}
	}

	return digests, nil
}

// digestReferenced reports whether any remaining record references the digest.
func digestReferenced(bucket *bolt.Bucket, digest string) bool {
	referenced := false

	_ = bucket.ForEach(func(_, payload []byte) error {
		var model Model

		if json.Unmarshal(payload, &model) == nil && model.Digest == digest {
			referenced = true
		}

		return nil
	})

	return referenced
}
