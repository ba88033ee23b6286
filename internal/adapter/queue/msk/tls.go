package msk

import (
	"crypto/tls"

	"github.com/fairyhunter13/msk-agent-bridge/internal/config"
)

// BuildTLSConfig constructs the TLS client configuration used once per
// broker connection: TLS 1.2 minimum, system trust anchors (a nil root
// pool defers to the host's default certificates).
//
// InsecureSkipVerify follows KAFKA_TLS_INSECURE_SKIP_VERIFY. The target
// deployment reaches the broker through a public endpoint whose
// certificate identity does not match the connection hostname, so the
// flag defaults to on there; it remains an explicit operator choice.
func BuildTLSConfig(cfg config.Config) *tls.Config {
	return &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: cfg.KafkaTLSInsecureSkipVerify, //nolint:gosec // deliberate, see config flag
	}
}
