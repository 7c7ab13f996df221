// Package preflight checks, before a plan is handed to the provisioning
// engine, that the container image it references can actually be pulled.
// It is the only part of the tool that talks to the network and it is never
// invoked by the synthesizer itself.
package preflight

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"

	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/name"
	"github.com/google/go-containerregistry/pkg/v1/remote"
	"github.com/vk/webstack/internal/ctxlog"
)

// Options tune how the registry is contacted.
type Options struct {
	// Insecure allows plain HTTP registries and skips TLS certificate
	// verification for HTTPS ones.
	Insecure bool
	// Keychain resolves registry credentials; nil means the local docker
	// configuration.
	Keychain authn.Keychain
}

// Result describes the manifest the reference resolved to.
type Result struct {
	Reference string
	Digest    string
	MediaType string
	Size      int64
}

// CheckImage parses ref and resolves it against its registry with a HEAD
// request. It does not download any layer.
func CheckImage(ctx context.Context, ref string, opts Options) (*Result, error) {
	logger := ctxlog.FromContext(ctx)

	var nameOpts []name.Option
	if opts.Insecure {
		nameOpts = append(nameOpts, name.Insecure)
	}
	parsed, err := name.ParseReference(ref, nameOpts...)
	if err != nil {
		return nil, fmt.Errorf("invalid image reference %q: %w", ref, err)
	}

	keychain := opts.Keychain
	if keychain == nil {
		keychain = authn.DefaultKeychain
	}

	logger.Debug("Resolving image reference.", "reference", parsed.Name(), "registry", parsed.Context().RegistryStr())
	desc, err := remote.Head(parsed,
		remote.WithContext(ctx),
		remote.WithAuthFromKeychain(keychain),
		remote.WithTransport(transportFor(opts)),
	)
	if err != nil {
		return nil, fmt.Errorf("image %s could not be resolved: %w", parsed.Name(), err)
	}

	res := &Result{
		Reference: parsed.Name(),
		Digest:    desc.Digest.String(),
		MediaType: string(desc.MediaType),
		Size:      desc.Size,
	}
	logger.Info("Image reference resolved.", "reference", res.Reference, "digest", res.Digest)
	return res, nil
}

func transportFor(opts Options) http.RoundTripper {
	if !opts.Insecure {
		return remote.DefaultTransport
	}
	base, ok := remote.DefaultTransport.(*http.Transport)
	if !ok {
		base = http.DefaultTransport.(*http.Transport)
	}
	tr := base.Clone()
	tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opted into with -insecure-registry
	return tr
}
