package docker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"

	cliconfig "github.com/docker/cli/cli/config"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/registry"
	"github.com/docker/docker/pkg/jsonmessage"
	"github.com/opencontainers/go-digest"

	"github.com/gh-core-team/tunaforge/internal/logger"
)

// pushResult is the aux payload the engine emits when a push completes.
type pushResult struct {
	Tag    string `json:"tag"`
	Digest string `json:"digest"`
	Size   int    `json:"size"`
}

// PushImage uploads a local image to the registry identified by ref.
// Registry credentials come from the Docker CLI config. Returns the pushed
// manifest digest when the engine reports one.
func (c *Client) PushImage(ctx context.Context, ref string, out io.Writer) (digest.Digest, error) {
	authStr, err := c.registryAuth(ctx, ref)
	if err != nil {
		host, hostErr := RegistryHost(ref)
		if hostErr != nil {
			host = ref
		}
		return "", ErrRegistryAuth(host, err)
	}

	rc, err := c.api.ImagePush(ctx, ref, image.PushOptions{
		RegistryAuth: authStr,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return "", ErrPushFailed(ref, err)
		}
		return "", c.classifyPushError(ref, err)
	}
	defer rc.Close()

	var result pushResult
	dec := json.NewDecoder(rc)
	for {
		var msg jsonmessage.JSONMessage
		if err := dec.Decode(&msg); err != nil {
			if err == io.EOF {
				break
			}
			return "", ErrPushFailed(ref, err)
		}

		if msg.Error != nil {
			return "", c.classifyPushError(ref, errors.New(msg.Error.Message))
		}

		if msg.Aux != nil {
			if err := json.Unmarshal(*msg.Aux, &result); err != nil {
				logger.Warn().Err(err).Msg("failed to parse push aux message")
			}
		}

		if out != nil && msg.Status != "" {
			if msg.ID != "" {
				io.WriteString(out, msg.ID+": "+msg.Status+"\n")
			} else {
				io.WriteString(out, msg.Status+"\n")
			}
		}
	}

	if result.Digest == "" {
		logger.Debug().Str("ref", ref).Msg("push completed without a digest in the stream")
		return "", nil
	}

	d, err := digest.Parse(result.Digest)
	if err != nil {
		return "", ErrPushFailed(ref, err)
	}
	return d, nil
}

// registryAuth resolves the base64-encoded auth payload for ref.
func (c *Client) registryAuth(ctx context.Context, ref string) (string, error) {
	if c.AuthResolver != nil {
		return c.AuthResolver(ctx, ref)
	}
	return resolveRegistryAuth(ref)
}

// resolveRegistryAuth loads credentials for ref's registry from the Docker
// CLI config (including configured credential helpers).
func resolveRegistryAuth(ref string) (string, error) {
	host, err := RegistryHost(ref)
	if err != nil {
		return "", err
	}

	cfgFile := cliconfig.LoadDefaultConfigFile(io.Discard)
	auth, err := cfgFile.GetAuthConfig(host)
	if err != nil {
		return "", err
	}

	return registry.EncodeAuthConfig(registry.AuthConfig{
		Username:      auth.Username,
		Password:      auth.Password,
		Auth:          auth.Auth,
		ServerAddress: auth.ServerAddress,
		IdentityToken: auth.IdentityToken,
		RegistryToken: auth.RegistryToken,
	})
}

// classifyPushError maps raw engine errors to the publish taxonomy.
func (c *Client) classifyPushError(ref string, err error) *PublishError {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "unauthorized") || strings.Contains(msg, "authentication required") || strings.Contains(msg, "denied") {
		host, hostErr := RegistryHost(ref)
		if hostErr != nil {
			host = ref
		}
		return ErrRegistryAuth(host, err)
	}
	if strings.Contains(msg, "not found") || strings.Contains(msg, "no such image") {
		return ErrImageMissing(ref)
	}
	return ErrPushFailed(ref, err)
}
