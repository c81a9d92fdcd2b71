//go:build !unix && !windows

package memory

import (
	"github.com/wippyai/wasm-store/errors"
)

func osMapAnon(size int) ([]byte, func([]byte) error, error) {
	return nil, nil, errors.Unsupported(errors.PhaseAlloc, "anonymous virtual memory is not available on this platform")
}
