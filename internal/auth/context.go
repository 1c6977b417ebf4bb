package auth

import (
	"context"

	"github.com/examprep/examprep-server/internal/user"
)

type ctxKey struct{}

var ctxKeyUser = ctxKey{}

func WithUser(ctx context.Context, u user.User) context.Context {
	return context.WithValue(ctx, ctxKeyUser, u)
}

func UserFromContext(ctx context.Context) (user.User, bool) {
	u, ok := ctx.Value(ctxKeyUser).(user.User)
	return u, ok
}
