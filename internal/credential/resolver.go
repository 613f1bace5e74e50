// Package credential resolves credential references from configuration into usable values.
//
// A reference is one of:
//   - a literal value ("sk-live-123")
//   - an environment indirection ("env:INSTAGRAM_TOKEN")
//   - a keeper ciphertext ("enc:<base64>"), only when a keeper is configured
//
// The direct resolver handles the first two forms; the keeper resolver adds decryption
// through a gocloud.dev secrets keeper and delegates everything else to the direct one.
package credential

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"gocloud.dev/secrets"

	apperrors "github.com/allisson/reelcast/internal/errors"

	// Register the keeper drivers used by deployments.
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

const (
	envPrefix       = "env:"
	encryptedPrefix = "enc:"
)

// ErrCredentialNotFound indicates a reference resolved to an empty value.
var ErrCredentialNotFound = apperrors.Wrap(apperrors.ErrNotFound, "credential not found")

// Resolver turns a credential reference into its value.
type Resolver interface {
	Resolve(ctx context.Context, ref string) (string, error)
	Close() error
}

// Keeper is the subset of *secrets.Keeper the resolver needs.
type Keeper interface {
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}

// NewResolver selects the resolver implementation from configuration. An empty keeperURI
// yields the direct resolver.
func NewResolver(ctx context.Context, keeperURI string) (Resolver, error) {
	if keeperURI == "" {
		return NewDirectResolver(), nil
	}

	keeper, err := secrets.OpenKeeper(ctx, keeperURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open credential keeper: %w", err)
	}
	return NewKeeperResolver(keeper), nil
}

type directResolver struct {
	lookup func(string) (string, bool)
}

// NewDirectResolver returns a resolver for literal and env: references.
func NewDirectResolver() Resolver {
	return &directResolver{lookup: os.LookupEnv}
}

func (d *directResolver) Resolve(ctx context.Context, ref string) (string, error) {
	ref = strings.TrimSpace(ref)

	switch {
	case ref == "":
		return "", ErrCredentialNotFound
	case strings.HasPrefix(ref, envPrefix):
		name := strings.TrimPrefix(ref, envPrefix)
		value, ok := d.lookup(name)
		if !ok || value == "" {
			return "", apperrors.Wrap(ErrCredentialNotFound, name)
		}
		return value, nil
	case strings.HasPrefix(ref, encryptedPrefix):
		return "", apperrors.Wrap(apperrors.ErrInvalidInput, "encrypted credential requires CREDENTIAL_KEEPER_URI")
	default:
		return ref, nil
	}
}

func (d *directResolver) Close() error { return nil }

type keeperResolver struct {
	keeper Keeper
	direct Resolver
}

// NewKeeperResolver returns a resolver that decrypts enc: references with keeper.
func NewKeeperResolver(keeper Keeper) Resolver {
	return &keeperResolver{keeper: keeper, direct: NewDirectResolver()}
}

func (k *keeperResolver) Resolve(ctx context.Context, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if !strings.HasPrefix(ref, encryptedPrefix) {
		return k.direct.Resolve(ctx, ref)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(ref, encryptedPrefix))
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrInvalidInput, "credential ciphertext is not base64")
	}

	plaintext, err := k.keeper.Decrypt(ctx, ciphertext)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt credential: %w", err)
	}
	if len(plaintext) == 0 {
		return "", ErrCredentialNotFound
	}
	return string(plaintext), nil
}

func (k *keeperResolver) Close() error {
	return k.keeper.Close()
}

// ResolveAll resolves every reference in refs, returning the first failure annotated with its key.
func ResolveAll(ctx context.Context, r Resolver, refs map[string]string) (map[string]string, error) {
	values := make(map[string]string, len(refs))
	for key, ref := range refs {
		value, err := r.Resolve(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("credential %q: %w", key, err)
		}
		values[key] = value
	}
	return values, nil
}
