package wallet

import (
	"runtime"
	"sync/atomic"
	"unsafe"
)

// secureEraseNoop prevents the compiler from optimizing away the memory
// clearing operation. By using it in a way that appears to have side
// effects, the compiler must keep the clearing code.
var secureEraseNoop atomic.Uint64

// SecureErase overwrites the contents of a byte slice with zeros.
// It takes pains to prevent the compiler from optimizing away the clearing.
//
// Note: Despite these measures, remnants of the data may remain in memory,
// caches, registers, or swap space. This is a best-effort discipline, not
// a hardware-grade guarantee.
//
// See: http://www.daemonology.net/blog/2014-09-04-how-to-zero-a-buffer.html
func SecureErase(b []byte) {
	if len(b) == 0 {
		return
	}

	// Write zeros through a pointer the compiler cannot prove is not
	// aliased elsewhere.
	p := (*byte)(unsafe.Pointer(&b[0]))
	for i := 0; i < len(b); i++ {
		*(*byte)(unsafe.Pointer(uintptr(unsafe.Pointer(p)) + uintptr(i))) = 0
	}

	runtime.KeepAlive(b)

	// Touch the cleared buffer so the compiler believes its contents
	// matter.
	var sum uint64
	for i := 0; i < len(b); i++ {
		sum += uint64(b[i])
	}
	secureEraseNoop.Add(sum)
}

// Secret wraps seed material and guarantees secure erasure on Close. It
// exists so a seed can be scoped to exactly one signing operation: the
// acquiring action defers Close and the seed is cleared on every exit
// path, success or failure.
//
// A Secret must never appear in logs, error messages, or persisted state.
type Secret struct {
	data   []byte
	closed bool
}

// NewSecret creates a Secret that takes ownership of the given slice and
// clears it on Close.
func NewSecret(data []byte) *Secret {
	return &Secret{data: data}
}

// NewSecretFromString creates a Secret by copying a seed string. The
// original string cannot be erased (Go strings are immutable); callers
// holding seeds long-term should prefer byte slices.
func NewSecretFromString(s string) *Secret {
	return NewSecret([]byte(s))
}

// Data returns the underlying seed bytes, or nil after Close.
func (s *Secret) Data() []byte {
	if s == nil || s.closed {
		return nil
	}
	return s.data
}

// IsClosed reports whether the secret has been erased.
func (s *Secret) IsClosed() bool {
	return s == nil || s.closed
}

// Close securely erases the seed and marks the secret closed. Safe to
// call multiple times.
func (s *Secret) Close() {
	if s == nil || s.closed {
		return
	}
	SecureErase(s.data)
	s.data = nil
	s.closed = true
}
