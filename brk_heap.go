// Package brk_heap 是一个单线程的 sbrk 风格内存分配器：堆区只向上增长，
// 所有分配过的块按创建顺序串成单链表，释放的块按 first fit 复用，不拆分、
// 不合并、不归还 OS。
package brk_heap

import (
	"io"

	"brk_heap/internal/consts"
	"brk_heap/internal/engine"
	"brk_heap/internal/errs"
	"brk_heap/internal/index"
	"brk_heap/internal/metrics"
	"brk_heap/internal/mmap"
	"brk_heap/internal/segment"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/exp/slog"
)

// 对外暴露的 sentinel errors，标准库和 cockroachdb 的 errors.Is 都可用。
var (
	ErrOutOfMemory = errs.ErrOutOfMemory
	ErrBadArgument = errs.ErrBadArgument
	ErrClosed      = errs.ErrClosed
	ErrCorrupt     = errs.ErrCorrupt

	// ErrInvalidUsage 标记所有致命错误，以下四个是具体原因。
	ErrInvalidUsage   = errs.ErrInvalidUsage
	ErrDoubleFree     = errs.ErrDoubleFree
	ErrForeignPointer = errs.ErrForeignPointer
	ErrUseAfterFree   = errs.ErrUseAfterFree
	ErrBreakMoved     = errs.ErrBreakMoved
)

// IsFatal 判断 err（通常是 recover 得到的值）是否是契约违反。
func IsFatal(err error) bool { return errs.IsFatal(err) }

// Ptr 堆内地址：相对堆区起点的字节偏移。Null 为空指针。
type Ptr uint64

// Null 空指针，任何块的用户地址都不会是 0。
const Null Ptr = 0

// HeaderSize 每个块前面的块头大小。
const HeaderSize = consts.HeaderSize

type (
	Backing = segment.Backing
	Break   = engine.Break
	Stats   = engine.Stats
	Block   = engine.Block
)

const (
	BackingAnon  = segment.BackingAnon
	BackingFile  = segment.BackingFile
	BackingSlice = segment.BackingSlice
)

// Options 打开堆的配置，零值可用：匿名映射（不支持 mmap 的平台用切片）、
// 1 GiB 上限、不开启指针索引、不输出日志。
type Options struct {
	Backing Backing
	// Path 文件后端的路径，打开时截断。
	Path string
	// MaxSize break 的上限（字节）。
	MaxSize int
	// Checked 开启带外指针索引，Free/Realloc 只接受本堆发出的指针。
	Checked bool
	Logger  *slog.Logger
	// Break 自定义 OS 原语；设置后忽略 Backing/Path/MaxSize，Close 不会释放它。
	Break Break
}

func (o *Options) validate() error {
	if o.Break != nil {
		return nil
	}
	if o.Backing != BackingSlice && !mmap.Supported {
		if o.Backing == BackingFile {
			return errors.Wrap(errs.ErrBadArgument, "file backing needs mmap")
		}
		o.Backing = BackingSlice
	}
	if o.MaxSize == 0 {
		o.MaxSize = consts.DefaultMaxSize
		if o.Backing == BackingSlice {
			o.MaxSize = consts.DefaultSliceMaxSize
		}
	}
	if o.MaxSize <= consts.HeaderSize {
		return errors.Wrapf(errs.ErrBadArgument, "max size %d leaves no room for a block", o.MaxSize)
	}
	switch o.Backing {
	case BackingAnon, BackingSlice:
	case BackingFile:
		if o.Path == "" {
			return errors.Wrap(errs.ErrBadArgument, "file backing needs a path")
		}
	default:
		return errors.Wrapf(errs.ErrBadArgument, "unknown backing %d", int(o.Backing))
	}
	return nil
}

// Heap 一个独立的分配器实例。不是并发安全的。
type Heap struct {
	e   *engine.Heap
	seg *segment.Segment
}

// Open 按 opts 准备堆区并返回一个空堆。
func Open(opts Options) (*Heap, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	var idx index.Index
	if opts.Checked {
		idx = index.NewSwiss(64)
	}
	if opts.Break != nil {
		return &Heap{e: engine.New(opts.Break, idx, opts.Logger)}, nil
	}

	var (
		seg *segment.Segment
		err error
	)
	switch opts.Backing {
	case BackingFile:
		seg, err = segment.OpenFile(opts.Path, opts.MaxSize)
	case BackingSlice:
		seg = segment.OpenSlice(opts.MaxSize)
	default:
		seg, err = segment.OpenAnon(opts.MaxSize)
	}
	if err != nil {
		return nil, err
	}
	return &Heap{e: engine.New(seg, idx, opts.Logger), seg: seg}, nil
}

// MustOpen 同 Open，出错时 panic。
func MustOpen(opts Options) *Heap {
	h, err := Open(opts)
	if err != nil {
		panic(err)
	}
	return h
}

// Close 释放堆区，之前发出的所有指针随之失效。重复 Close 返回 nil。
// 关闭之后，有 error 返回值的方法（Malloc/Realloc/Calloc/Validate/VisitBlocks/
// WriteJSON 以及 fixed 系列）返回 ErrClosed；没有 error 返回值的 Free/Bytes/
// UsableSize 视为契约违反，以原因为 ErrClosed 的 ErrInvalidUsage panic。
func (h *Heap) Close() error {
	if h == nil || h.e == nil {
		return nil
	}
	h.e = nil
	if h.seg == nil {
		return nil
	}
	return h.seg.Close()
}

// live 返回底层分配器；Close 之后调用视为契约违反。
func (h *Heap) live(op string) *engine.Heap {
	if h == nil || h.e == nil {
		panic(errs.Usage(errs.ErrClosed, "%s on closed heap", op))
	}
	return h.e
}

// Malloc 分配至少 size 字节。size 为 0 返回 (Null, nil)；堆无法增长时返回 ErrOutOfMemory。
func (h *Heap) Malloc(size uint64) (Ptr, error) {
	if h == nil || h.e == nil {
		return Null, ErrClosed
	}
	p, err := h.e.Malloc(size)
	return Ptr(p), err
}

// Free 释放 p。Null 不做任何事；重复释放或非本堆指针会以 ErrInvalidUsage panic。
func (h *Heap) Free(p Ptr) {
	if p == Null {
		return
	}
	h.live("free").Free(uint64(p))
}

// Realloc 见 engine.(*Heap).Realloc：容量够就原样返回，失败时原块不动。
func (h *Heap) Realloc(p Ptr, size uint64) (Ptr, error) {
	if h == nil || h.e == nil {
		return Null, ErrClosed
	}
	np, err := h.e.Realloc(uint64(p), size)
	return Ptr(np), err
}

// Calloc 分配 count*size 字节并清零。乘积溢出不检查。
func (h *Heap) Calloc(count, size uint64) (Ptr, error) {
	if h == nil || h.e == nil {
		return Null, ErrClosed
	}
	p, err := h.e.Calloc(count, size)
	return Ptr(p), err
}

// Bytes 返回 p 所在块的全部可用容量，长度可能大于当初请求的大小。
func (h *Heap) Bytes(p Ptr) []byte {
	return h.live("bytes").Bytes(uint64(p))
}

// UsableSize 返回 p 所在块的容量。
func (h *Heap) UsableSize(p Ptr) uint64 {
	return h.live("usable_size").UsableSize(uint64(p))
}

// Stats 遍历链表汇总统计；已关闭的堆返回零值。
func (h *Heap) Stats() Stats {
	if h == nil || h.e == nil {
		return Stats{}
	}
	return h.e.Stats()
}

// Validate 检查链表结构和指针索引，发现问题返回 ErrCorrupt。
func (h *Heap) Validate() error {
	if h == nil || h.e == nil {
		return ErrClosed
	}
	return h.e.Validate()
}

// VisitBlocks 按创建顺序遍历所有块，fn 返回错误时停止。
func (h *Heap) VisitBlocks(fn func(b Block) error) error {
	if h == nil || h.e == nil {
		return ErrClosed
	}
	return h.e.VisitBlocks(fn)
}

// WriteJSON 输出堆的详细布局。
func (h *Heap) WriteJSON(w io.Writer) error {
	if h == nil || h.e == nil {
		return ErrClosed
	}
	return h.e.WriteJSON(w)
}

// Collector 返回导出本堆统计的 prometheus collector。
func (h *Heap) Collector(constLabels prometheus.Labels) prometheus.Collector {
	return metrics.NewCollector(h, constLabels)
}
