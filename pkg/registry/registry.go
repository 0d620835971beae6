package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

// DatabaseFile is the name of the index database inside the registry root.
const DatabaseFile = "msail.db"

// artifactDir is the directory under the registry root holding model artifacts.
const artifactDir = "models"

var (
	bucketModels   = []byte("models")
	bucketServices = []byte("services")
	bucketImages   = []byte("images")
)

// Registry is a workspace-local store of models, services, and images.
type Registry struct {
	db   *bolt.DB
	root string
}

// Open opens the registry rooted at the given directory, creating the
// directory and index database when they do not exist yet.
func Open(root string) (*Registry, error) {
	cleanRoot := filepath.Clean(root)

	err := os.MkdirAll(filepath.Join(cleanRoot, artifactDir), 0o750)
	if err != nil {
		return nil, fmt.Errorf("failed to create registry root: %w", err)
	}

	db, err := bolt.Open(filepath.Join(cleanRoot, DatabaseFile), 0o600, &bolt.Options{
		Timeout: time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open registry database: %w", err)
	}

	err = ensureBuckets(db)
	if err != nil {
		_ = db.Close()

		return nil, err
	}

	return &Registry{db: db, root: cleanRoot}, nil
}

// Root returns the registry root directory.
func (r *Registry) Root() string {
	return r.root
}

// Close releases the underlying database. It is safe to call on a nil registry.
func (r *Registry) Close() error {
	if r == nil || r.db == nil {
		return nil
	}

	err := r.db.Close()
	if err != nil {
		return fmt.Errorf("failed to close registry database: %w", err)
	}

	return nil
}

func ensureBuckets(db *bolt.DB) error {
	err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketModels, bucketServices, bucketImages} {
			_, err := tx.CreateBucketIfNotExists(name)
			if err != nil {
				return fmt.Errorf("failed to create bucket %q: %w", name, err)
			}
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to prepare registry database: %w", err)
	}

	return nil
}
