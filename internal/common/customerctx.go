package common

import "context"

type ctxKey string

const customerIDKey ctxKey = "session/customer-id"

// WithCustomerID stores the requesting customer identifier on the context.
func WithCustomerID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, customerIDKey, id)
}

// CustomerID extracts the customer identifier from the context if present.
func CustomerID(ctx context.Context) (string, bool) {
	v := ctx.Value(customerIDKey)
	if v == nil {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}
