// Package unsafehelpers centralises the module's one unavoidable use of the
// `unsafe` standard-library package so the rest of the tree stays clean and
// easy to audit.
//
// ⚠️  DISCLAIMER  This helper deliberately breaks the Go memory-safety model
// for the sake of a zero-allocation conversion. Use ONLY inside this
// repository; it is not part of the public API and may change without
// notice. Misuse will lead to subtle data races or garbage-collector
// corruption.
//
// go:linkname-free, cgo-free, pure Go 1.24.
package unsafehelpers

import "unsafe"

// ByteSliceFrom returns a []byte view of raw memory starting at ptr with the
// given length. Caller must ensure the memory block is at least length bytes
// and outlives the returned slice. Used by pkg/typed to view a generic
// value's own memory as a byte buffer for the table's fixed-width API.
func ByteSliceFrom(ptr unsafe.Pointer, length uintptr) []byte {
	return unsafe.Slice((*byte)(ptr), length)
}
