package wsevent

import "github.com/kowshik-thatinati/privacy-calls/internal/errors"

const (
	ErrClosed         errors.Code = "closed"
	ErrBufferFull     errors.Code = "buffer_full"
	ErrInvalidPayload errors.Code = "invalid_payload"
	ErrUnknownEvent   errors.Code = "unknown_event"
)
