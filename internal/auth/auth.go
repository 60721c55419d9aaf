// Package auth resolves an optional identity for each request. Token
// verification is advisory: any failure downgrades the request to
// anonymous instead of rejecting it. Handlers that need a user id take it
// from the request payload and never require a verified identity.
package auth

import (
	"context"
	"strings"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

const identityKey = "auth.identity"

// Identity is a verified user identity attached to the request context
type Identity struct {
	UID   string
	Email string
}

// Verifier checks a bearer token against the identity provider
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// firebaseVerifier verifies Firebase ID tokens
type firebaseVerifier struct {
	client *fbauth.Client
}

// NewFirebaseVerifier builds a verifier from a service account file
func NewFirebaseVerifier(ctx context.Context, credentialsFile string) (Verifier, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, err
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, err
	}
	return &firebaseVerifier{client: client}, nil
}

func (v *firebaseVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	decoded, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, err
	}

	identity := &Identity{UID: decoded.UID}
	if email, ok := decoded.Claims["email"].(string); ok {
		identity.Email = email
	}
	return identity, nil
}

// Middleware verifies the request's token, if any, and attaches the
// identity to the gin context. A nil verifier means verification is not
// configured and every request runs anonymous.
func Middleware(verifier Verifier, log zerolog.Logger) gin.HandlerFunc {
	log = log.With().Str("middleware", "auth").Logger()

	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		if token == "" || verifier == nil {
			c.Next()
			return
		}

		identity, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			// Invalid or expired token: proceed anonymous
			log.Warn().Err(err).Msg("Token verification failed")
			c.Next()
			return
		}

		log.Debug().Str("uid", identity.UID).Msg("User authenticated")
		c.Set(identityKey, identity)
		c.Next()
	}
}

// FromContext returns the verified identity for the request, if any
func FromContext(c *gin.Context) (*Identity, bool) {
	value, exists := c.Get(identityKey)
	if !exists {
		return nil, false
	}
	identity, ok := value.(*Identity)
	return identity, ok
}

// tokenFromRequest reads the legacy "authtoken" header first, then a
// standard bearer Authorization header.
func tokenFromRequest(c *gin.Context) string {
	if token := c.GetHeader("authtoken"); token != "" {
		return token
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
