package adapter

import "context"

// SMSProvider delivers one-time passcodes. Delivery guarantees are the
// provider's problem; the caller only needs a dispatch error.
type SMSProvider interface {
	Name() string
	SendCode(ctx context.Context, phone, code string) error
}
