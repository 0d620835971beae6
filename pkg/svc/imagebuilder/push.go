package imagebuilder

import (
	"context"
	"fmt"

	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/name"
	"github.com/google/go-containerregistry/pkg/v1/daemon"
	"github.com/google/go-containerregistry/pkg/v1/remote"
)

// PushOptions configures publishing a built image to a remote registry.
type PushOptions struct {
	// LocalReference is the image reference in the local daemon.
	LocalReference string
	// RemoteReference is the target reference in the remote registry.
	RemoteReference string
	// Username and Password are optional basic-auth registry credentials.
	Username string
	Password string
}

// Push publishes a built scoring image from the local daemon to a remote
// registry so the Kubernetes hosting target can pull it.
func (b *Builder) Push(ctx context.Context, opts PushOptions) error {
	source, err := name.ParseReference(opts.LocalReference, name.WeakValidation)
	if err != nil {
		return fmt.Errorf("parse local reference: %w", err)
	}

	target, err := name.ParseReference(
		opts.RemoteReference,
		name.WeakValidation,
		name.Insecure,
	)
	if err != nil {
		return fmt.Errorf("parse remote reference: %w", err)
	}

	img, err := daemon.Image(source, daemon.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("read image %s from daemon: %w", opts.LocalReference, err)
	}

	err = remote.Write(target, img, remoteOptions(ctx, opts.Username, opts.Password)...)
	if err != nil {
		return fmt.Errorf("push image: %w", err)
	}

	return nil
}

// remoteOptions assembles registry options with optional basic authentication.
func remoteOptions(ctx context.Context, username, password string) []remote.Option {
	opts := []remote.Option{remote.WithContext(ctx)}

	if username != "" || password != "" {
		auth := &authn.Basic{
			Username: username,
			Password: password,
		}
		opts = append(opts, remote.WithAuth(auth))
	}

	return opts
}
