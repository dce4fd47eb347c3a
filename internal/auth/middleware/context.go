package auth

import (
	"context"
	"errors"
	"net/http"
)

type ctxKey string

const ctxKeyUserID ctxKey = "user_id"

var ErrNoSession = errors.New("auth: no session user")

func WithUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, ctxKeyUserID, id)
}

func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(ctxKeyUserID).(int64)
	return id, ok
}

// UserIDFromRequest adapts the context lookup to the hook shape the LTI
// launch server expects.
func UserIDFromRequest(r *http.Request) (int64, error) {
	id, ok := UserIDFromContext(r.Context())
	if !ok {
		return 0, ErrNoSession
	}
	return id, nil
}
