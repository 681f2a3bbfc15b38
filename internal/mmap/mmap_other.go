//go:build !linux && !darwin

package mmap

import "github.com/cockroachdb/errors"

var ErrNotSupported = errors.New("mmap: not supported on this platform")

const Supported = false

var PageSize = 4096

func Map(fd uintptr, size int) ([]byte, error) {
	return nil, ErrNotSupported
}

func Reserve(size int) ([]byte, error) {
	return nil, ErrNotSupported
}

func Commit(b []byte) error {
	return ErrNotSupported
}

func Sync(data []byte) error {
	return ErrNotSupported
}

func Unmap(data []byte) error {
	return nil
}
