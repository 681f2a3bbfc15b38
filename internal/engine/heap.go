package engine

import (
	"io"

	"brk_heap/internal/consts"
	"brk_heap/internal/errs"
	"brk_heap/internal/index"
	"brk_heap/internal/record"

	"golang.org/x/exp/slog"
)

// Break 堆区边界的 OS 原语：查询、上移、访问 [0, brk)。
type Break interface {
	Brk() uint64
	Sbrk(incr uint64) (old uint64, err error)
	Bytes() []byte
}

// Heap 分配器上下文：持有链表头与 break。没有任何锁，只能在一个 goroutine 里用。
type Heap struct {
	brk    Break
	head   uint64
	idx    index.Index
	logger *slog.Logger

	grows  uint64
	reuses uint64
}

// New 在 brk 上创建一个空堆。idx 非 nil 时开启带外指针校验：每个块创建时
// 登记，Free/Realloc 只接受登记过的指针。
func New(brk Break, idx index.Index, logger *slog.Logger) *Heap {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard))
	}
	return &Heap{
		brk:    brk,
		head:   consts.NoBlock,
		idx:    idx,
		logger: logger,
	}
}

// Head 返回链表头偏移，空堆为 consts.NoBlock。
func (h *Heap) Head() uint64 { return h.head }

// Checked 是否开启了带外指针校验。
func (h *Heap) Checked() bool { return h.idx != nil }

func (h *Heap) raw(off uint64) []byte {
	return h.brk.Bytes()[off : off+consts.HeaderSize]
}

func (h *Heap) header(off uint64) record.Header {
	return record.Decode(h.raw(off))
}

// fatal 记录并 panic，不返回。
func (h *Heap) fatal(err error) {
	h.logger.Error("heap contract violation", slog.Any("error", err))
	panic(err)
}

// blockOf 由用户指针反推块头偏移，并校验指针确实出自本堆。
func (h *Heap) blockOf(op string, p uint64) (uint64, record.Header) {
	end := uint64(len(h.brk.Bytes()))
	if p < consts.HeaderSize || p > end {
		h.fatal(errs.Usage(errs.ErrForeignPointer, "%s(%#x): outside heap [0, %#x)", op, p, end))
	}
	blk := p - consts.HeaderSize
	hd := h.header(blk)
	if hd.Magic != consts.Magic || hd.Size > end-p {
		h.fatal(errs.Usage(errs.ErrForeignPointer, "%s(%#x): no block header", op, p))
	}
	if h.idx != nil {
		if _, ok := h.idx.Get(p); !ok {
			h.fatal(errs.Usage(errs.ErrForeignPointer, "%s(%#x): not issued", op, p))
		}
	}
	return blk, hd
}
