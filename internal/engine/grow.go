package engine

import (
	"math"

	"brk_heap/internal/consts"
	"brk_heap/internal/errs"
	"brk_heap/internal/index"
	"brk_heap/internal/record"

	"golang.org/x/exp/slog"
)

// requestSpace 把 break 上移 HeaderSize+size，在移动前的 break 处写新块头，
// 并接到 last 之后。OS 拒绝时返回 ErrOutOfMemory，不留下任何状态。
func (h *Heap) requestSpace(last, size uint64) (uint64, error) {
	if size > math.MaxUint64-consts.HeaderSize {
		return consts.NoBlock, errs.OutOfMemory(nil, size)
	}
	blk := h.brk.Brk()
	old, err := h.brk.Sbrk(consts.HeaderSize + size)
	if err != nil {
		h.logger.Debug("heap growth refused", slog.Uint64("size", size), slog.Any("error", err))
		return consts.NoBlock, err
	}
	if old != blk {
		h.fatal(errs.Usage(errs.ErrBreakMoved, "break was %#x when queried, %#x when extended", blk, old))
	}

	record.Encode(h.raw(blk), record.Header{
		Size:  size,
		Next:  consts.NoBlock,
		Free:  false,
		Magic: consts.Magic,
	})
	if last != consts.NoBlock {
		record.SetNext(h.raw(last), blk)
	}
	if h.idx != nil {
		h.idx.Set(blk+consts.HeaderSize, index.Entry{Block: blk, Size: size})
	}
	h.grows++
	h.logger.Debug("heap grown",
		slog.Uint64("block", blk),
		slog.Uint64("size", size),
		slog.Uint64("brk", blk+consts.HeaderSize+size))
	return blk, nil
}
