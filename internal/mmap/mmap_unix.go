//go:build linux || darwin

package mmap

import (
	"github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"
)

// Supported 当前平台能否使用 mmap 后端。
const Supported = true

// PageSize 系统页大小。
var PageSize = unix.Getpagesize()

// Map 将文件 fd 的 [0, size) 映射为可读写共享内存。文件可以比 size 短，
// 越过文件末尾的页在 Truncate 之前不可访问。
func Map(fd uintptr, size int) ([]byte, error) {
	data, err := unix.Mmap(int(fd), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, errors.Wrapf(err, "mmap: map %d bytes", size)
	}
	return data, nil
}

// Reserve 保留 size 字节的匿名地址空间，PROT_NONE，不占物理内存。
func Reserve(size int) ([]byte, error) {
	data, err := unix.Mmap(-1, 0, size, unix.PROT_NONE, unix.MAP_PRIVATE|unix.MAP_ANON|unix.MAP_NORESERVE)
	if err != nil {
		return nil, errors.Wrapf(err, "mmap: reserve %d bytes", size)
	}
	return data, nil
}

// Commit 把保留区里的一段（页对齐）改为可读写。
func Commit(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	return unix.Mprotect(b, unix.PROT_READ|unix.PROT_WRITE)
}

// Sync 将映射区刷回磁盘。
func Sync(data []byte) error {
	return unix.Msync(data, unix.MS_SYNC)
}

// Unmap 解除映射。
func Unmap(data []byte) error {
	return unix.Munmap(data)
}
