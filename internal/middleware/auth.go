package middleware

import (
	"context"
	"strings"

	"github.com/ecopanier/backend/pkg/errorx"
	"github.com/ecopanier/backend/pkg/xcontext"
)

// Authenticate resolves the caller's identity from the Authorization header or
// the access-token cookie and stores the user id into the context.
func Authenticate(ctx context.Context) (context.Context, error) {
	token := accessToken(ctx)
	if token == "" {
		return nil, errorx.New(errorx.Unauthenticated, "You need to sign in first")
	}

	info, err := xcontext.TokenEngine(ctx).Verify(token)
	if err != nil {
		xcontext.Logger(ctx).Debugf("Cannot verify the access token: %v", err)
		return nil, errorx.New(errorx.Unauthenticated, "Invalid access token")
	}

	return xcontext.WithRequestUserID(ctx, info.ID), nil
}

func accessToken(ctx context.Context) string {
	r := xcontext.HTTPRequest(ctx)
	if r == nil {
		return ""
	}

	authorization := r.Header.Get("Authorization")
	auth, token, found := strings.Cut(authorization, " ")
	if found {
		if auth == "Bearer" {
			return token
		}
		return ""
	}

	cookie, err := r.Cookie(xcontext.Configs(ctx).Auth.AccessToken.Name)
	if err != nil {
		return ""
	}

	return cookie.Value
}
