package middleware

import "context"

type contextKey string

const (
	ctxShopperID      contextKey = "shopper_id"
	ctxLoginSessionID contextKey = "login_session_id"
	ctxGuestToken     contextKey = "guest_token"
)

func ShopperIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxShopperID).(string); ok {
		return v
	}
	return ""
}

func LoginSessionIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxLoginSessionID).(string); ok {
		return v
	}
	return ""
}

func GuestTokenFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxGuestToken).(string); ok {
		return v
	}
	return ""
}

// WithShopperID injects the shopper identifier into the context.
func WithShopperID(ctx context.Context, shopperID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxShopperID, shopperID)
}

// WithGuestToken injects the guest cart token into the context for downstream handlers.
func WithGuestToken(ctx context.Context, token string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxGuestToken, token)
}
