// File: mallocio/errors.go
// Author: momentics <momentics@gmail.com>

package mallocio

import "github.com/momentics/hioload-rawmem/api"

func errClosed(op string) error {
	return api.NewError(api.ErrCodeUseAfterFree, "stream is closed").WithOp(op)
}

func errRange(op string, offset, n int64, capacity int) error {
	return api.NewError(api.ErrCodeOutOfRange, "request exceeds buffer bounds").
		WithOp(op).
		WithContext("offset", offset).
		WithContext("n", n).
		WithContext("capacity", capacity)
}

func errUnsupported(op, why string) error {
	return api.NewError(api.ErrCodeUnsupportedOperation, why).WithOp(op)
}
