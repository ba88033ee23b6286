// Package msk connects the bridge to AWS MSK over SASL_SSL with
// short-lived IAM auth tokens.
//
// It provides the token provider, the TLS context, and the franz-go
// consumer and producer used by the dispatch loop.
package msk

import (
	"context"
	"fmt"

	"github.com/aws/aws-msk-iam-sasl-signer-go/signer"
	"github.com/twmb/franz-go/pkg/sasl"
	"github.com/twmb/franz-go/pkg/sasl/oauth"

	"github.com/fairyhunter13/msk-agent-bridge/internal/domain"
)

// IAMTokenProvider generates short-lived MSK IAM auth tokens by
// delegating to the regional signer. Tokens are never cached: every
// authentication handshake requests a fresh one and the token is
// discarded after use.
type IAMTokenProvider struct {
	Region string
}

var _ domain.TokenProvider = IAMTokenProvider{}

// Token returns a token valid for one handshake. A signer failure is
// fatal to the connection attempt that requested it; retrying the
// connection is the caller's concern.
func (p IAMTokenProvider) Token(ctx domain.Context) (string, error) {
	token, _, err := signer.GenerateAuthToken(ctx, p.Region)
	if err != nil {
		return "", fmt.Errorf("%w: generate MSK auth token for region %s: %v", domain.ErrAuthProvider, p.Region, err)
	}
	return token, nil
}

// SASLMechanism adapts a TokenProvider into the OAUTHBEARER mechanism
// franz-go performs its handshakes with. The provider is invoked once
// per handshake, including re-authentications after reconnect.
func SASLMechanism(tp domain.TokenProvider) sasl.Mechanism {
	return oauth.Oauth(func(ctx context.Context) (oauth.Auth, error) {
		token, err := tp.Token(ctx)
		if err != nil {
			return oauth.Auth{}, err
		}
		return oauth.Auth{Token: token}, nil
	})
}
