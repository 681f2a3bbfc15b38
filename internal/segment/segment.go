package segment

import (
	"os"

	"brk_heap/internal/errs"
	"brk_heap/internal/mmap"

	"github.com/cockroachdb/errors"
)

// Backing 堆区从 OS 拿内存的方式。
type Backing int

const (
	// BackingAnon 匿名映射：先保留整段地址空间，break 前移时逐页提交。
	BackingAnon Backing = iota
	// BackingFile 共享文件映射：break 前移时 ftruncate 文件。
	BackingFile
	// BackingSlice 普通 Go 切片，容量一次分配好，不依赖 mmap。
	BackingSlice
)

func (b Backing) String() string {
	switch b {
	case BackingAnon:
		return "anon"
	case BackingFile:
		return "file"
	case BackingSlice:
		return "slice"
	}
	return "unknown"
}

// Segment 单段堆区：保留的地址空间 + 只会前移的 break。
type Segment struct {
	backing   Backing
	path      string
	f         *os.File
	data      []byte
	brk       uint64
	committed uint64
}

// Backing 返回后端类型。
func (s *Segment) Backing() Backing { return s.backing }

// Path 返回文件后端的路径，其他后端为空。
func (s *Segment) Path() string { return s.path }

// Brk 返回当前 break，相当于 sbrk(0)。
func (s *Segment) Brk() uint64 { return s.brk }

// Cap 返回保留区大小，break 的上限。
func (s *Segment) Cap() uint64 { return uint64(len(s.data)) }

// Committed 返回已经可以访问的字节数（页对齐）。
func (s *Segment) Committed() uint64 { return s.committed }

// Bytes 返回 [0, brk) 的视图，Close 后勿用。
func (s *Segment) Bytes() []byte {
	if s.data == nil {
		return nil
	}
	return s.data[:s.brk:s.brk]
}

// OpenAnon 保留 size 字节的匿名地址空间。
func OpenAnon(size int) (*Segment, error) {
	if size <= 0 {
		return nil, errs.ErrBadArgument
	}
	data, err := mmap.Reserve(size)
	if err != nil {
		return nil, err
	}
	return &Segment{backing: BackingAnon, data: data}, nil
}

// OpenFile 创建（或截断）path 并映射 size 字节。文件从 0 字节开始，
// 上一次运行留下的内容不会被复用。
func OpenFile(path string, size int) (*Segment, error) {
	if path == "" || size <= 0 {
		return nil, errs.ErrBadArgument
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, err
	}
	data, err := mmap.Map(f.Fd(), size)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &Segment{backing: BackingFile, path: path, f: f, data: data}, nil
}

// OpenSlice 用 Go 切片做堆区，容量 size 一次分配，地址不会再变。
func OpenSlice(size int) *Segment {
	return &Segment{backing: BackingSlice, data: make([]byte, size), committed: uint64(size)}
}

// Sbrk 把 break 上移 incr 字节，返回移动前的 break。超出保留区或 OS 拒绝
// 提交页面时返回 ErrOutOfMemory，break 不变。Sbrk(0) 只查询。
func (s *Segment) Sbrk(incr uint64) (uint64, error) {
	old := s.brk
	if s.data == nil {
		return old, errs.ErrClosed
	}
	if incr == 0 {
		return old, nil
	}
	end := old + incr
	if end < old || end > uint64(len(s.data)) {
		return old, errs.OutOfMemory(nil, incr)
	}
	if err := s.commit(end); err != nil {
		return old, errs.OutOfMemory(err, incr)
	}
	s.brk = end
	return old, nil
}

// commit 保证 [0, end) 可访问，按页推进。
func (s *Segment) commit(end uint64) error {
	if end <= s.committed {
		return nil
	}
	next := roundUp(end, uint64(mmap.PageSize))
	if next > uint64(len(s.data)) {
		next = uint64(len(s.data))
	}
	switch s.backing {
	case BackingAnon:
		if err := mmap.Commit(s.data[s.committed:next]); err != nil {
			return err
		}
	case BackingFile:
		if err := s.f.Truncate(int64(next)); err != nil {
			return err
		}
	default:
		return errors.AssertionFailedf("segment: %s backing has no uncommitted pages", s.backing)
	}
	s.committed = next
	return nil
}

// Close 刷盘、解除映射、关闭文件。堆区里所有块随之失效。
func (s *Segment) Close() error {
	if s.data != nil {
		switch s.backing {
		case BackingFile:
			if s.committed > 0 {
				if err := mmap.Sync(s.data[:s.committed]); err != nil {
					return err
				}
			}
			fallthrough
		case BackingAnon:
			if err := mmap.Unmap(s.data); err != nil {
				return err
			}
		}
		s.data = nil
	}
	if s.f != nil {
		if err := s.f.Close(); err != nil {
			return err
		}
		s.f = nil
	}
	return nil
}

func roundUp(n, align uint64) uint64 {
	return (n + align - 1) / align * align
}
