// Package jwt implements RS256 JSON Web Token signing and validation
// without external dependencies. Keys are PEM encoded RSA; services that
// only validate tokens can be configured with just the public key.
package jwt
