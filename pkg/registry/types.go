package registry

import (
	"time"

	"github.com/devantler-tech/msail/pkg/apis/workspace/v1alpha1"
)

// Model is a registered model artifact version.
type Model struct {
	// Name identifies the model. Versions of the same model share a name.
	Name string `json:"name"`

	// Version is assigned by the registry, starting at 1 per name.
	Version int `json:"version"`

	// Description is free-form text supplied at registration.
	Description string `json:"description,omitempty"`

	// Tags are arbitrary key/value labels supplied at registration.
	Tags map[string]string `json:"tags,omitempty"`

	// Digest is the hex-encoded SHA-256 of the artifact contents.
	Digest string `json:"digest"`

	// Size is the artifact size in bytes.
	Size int64 `json:"size"`

	// Path is the location of the stored artifact on disk.
	Path string `json:"path"`

	// CreatedAt is the registration time in UTC.
	CreatedAt time.Time `json:"createdAt"`
}

// Keys holds the credentials a scoring service accepts.
type Keys struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
}

// Service is a record of a deployed scoring service.
type Service struct {
	// Name is the service name, unique per workspace.
	Name string `json:"name"`

	// Target is the platform the service runs on.
	Target v1alpha1.Target `json:"target"`

	// Image is the image reference the service runs.
	Image string `json:"image"`

	// Endpoint is the scoring URI of the running service.
	Endpoint string `json:"endpoint,omitempty"`

	// AuthEnabled reports whether the service requires a key.
	AuthEnabled bool `json:"authEnabled"`

	// Keys are the service credentials. Empty when auth is disabled.
	Keys Keys `json:"keys"`

	// CreatedAt is when the service was first deployed, in UTC.
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is when the service was last deployed, in UTC.
	UpdatedAt time.Time `json:"updatedAt"`
}

// Image is a record of a built scoring image.
type Image struct {
	// Name is the image repository name.
	Name string `json:"name"`

	// Tag is the image tag.
	Tag string `json:"tag"`

	// ModelName is the name of the model baked into the image.
	ModelName string `json:"modelName"`

	// ModelVersion is the version of the model baked into the image.
	ModelVersion int `json:"modelVersion"`

	// CreatedAt is the build time in UTC.
	CreatedAt time.Time `json:"createdAt"`
}

// Reference returns the image reference in name:tag form.
func (i Image) Reference() string {
	return i.Name + ":" + i.Tag
}
