// Package authz extracts the caller identity token from API requests.
package authz

import (
	"errors"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/golang-jwt/jwt/v5"
)

// ErrUnauthorized is returned when no caller identity can be established.
var ErrUnauthorized = errors.New("unauthorized")

const devBypassHeader = "x-user-sub"

// headerLookup returns the value of a header key, case-insensitively.
func headerLookup(h map[string]string, key string) string {
	if len(h) == 0 {
		return ""
	}
	lk := strings.ToLower(key)
	for k, v := range h {
		if strings.ToLower(k) == lk {
			return v
		}
	}
	return ""
}

// subFromAuthHeader extracts the "sub" claim from a bearer token. The
// signature is not verified here; the gateway authorizer already did that.
func subFromAuthHeader(headers map[string]string) string {
	auth := headerLookup(headers, "Authorization")
	if auth == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		auth = strings.TrimSpace(auth[len("bearer "):])
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(auth, claims); err != nil {
		return ""
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return ""
	}
	return sub
}

// FromAPIGWv2 extracts the caller identity token from an HTTP API request.
func FromAPIGWv2(req events.APIGatewayV2HTTPRequest, devBypass bool) (string, error) {
	// 0) Dev bypass header
	if devBypass {
		if sub := strings.TrimSpace(headerLookup(req.Headers, devBypassHeader)); sub != "" {
			return sub, nil
		}
	}

	// 1) JWT authorizer claims
	if req.RequestContext.Authorizer != nil && req.RequestContext.Authorizer.JWT != nil {
		if sub := req.RequestContext.Authorizer.JWT.Claims["sub"]; sub != "" {
			return sub, nil
		}
	}

	// 2) Fallback: parse the Authorization header directly
	if sub := subFromAuthHeader(req.Headers); sub != "" {
		return sub, nil
	}

	return "", ErrUnauthorized
}
