package instrument

import "context"

type ctxKeyCorrelationID struct{}

// SetCorrelationID returns a copy of ctx carrying the correlation ID cID.
func SetCorrelationID(ctx context.Context, cID string) context.Context {
	return context.WithValue(ctx, ctxKeyCorrelationID{}, cID)
}

// GetCorrelationID returns the correlation ID stored in ctx, or "" when there is none.
func GetCorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	cID, _ := ctx.Value(ctxKeyCorrelationID{}).(string)
	return cID
}
