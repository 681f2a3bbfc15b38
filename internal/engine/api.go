package engine

import (
	"brk_heap/internal/consts"
	"brk_heap/internal/errs"
	"brk_heap/internal/record"

	"golang.org/x/exp/slog"
)

// Malloc 分配 size 字节，返回块头之后的地址。size 为 0 返回 0 且无副作用。
// 复用的块保留原容量，可能大于 size。
func (h *Heap) Malloc(size uint64) (uint64, error) {
	if size == 0 {
		return 0, nil
	}
	var blk uint64
	if h.head == consts.NoBlock {
		b, err := h.requestSpace(consts.NoBlock, size)
		if err != nil {
			return 0, err
		}
		blk = b
		h.head = blk
	} else {
		found, last := h.findFreeBlock(size)
		if found == consts.NoBlock {
			b, err := h.requestSpace(last, size)
			if err != nil {
				return 0, err
			}
			blk = b
		} else {
			blk = found
			record.SetFree(h.raw(blk), false)
			h.reuses++
			h.logger.Debug("free block reused", slog.Uint64("block", blk), slog.Uint64("size", size))
		}
	}
	return blk + consts.HeaderSize, nil
}

// Free 释放 p。p 为 0 时什么也不做；重复释放或 p 不是本堆发出的指针都是致命错误。
// 块不合并、不归还 OS，只把 free 置位。
func (h *Heap) Free(p uint64) {
	if p == 0 {
		return
	}
	blk, hd := h.blockOf("free", p)
	if hd.Free {
		h.fatal(errs.Usage(errs.ErrDoubleFree, "free(%#x)", p))
	}
	record.SetFree(h.raw(blk), true)
}

// Realloc 把 p 调整到至少 size 字节。容量已够则原样返回 p；否则分配新块、
// 拷贝原块全部容量、释放原块。分配失败时返回错误，原块保持不变。
func (h *Heap) Realloc(p, size uint64) (uint64, error) {
	if p == 0 {
		return h.Malloc(size)
	}
	_, hd := h.blockOf("realloc", p)
	if hd.Free {
		h.fatal(errs.Usage(errs.ErrUseAfterFree, "realloc(%#x)", p))
	}
	if hd.Size >= size {
		return p, nil
	}
	np, err := h.Malloc(size)
	if err != nil {
		return 0, err
	}
	data := h.brk.Bytes()
	copy(data[np:np+hd.Size], data[p:p+hd.Size])
	h.Free(p)
	return np, nil
}

// Calloc 分配 count*size 字节并清零。乘积溢出不做检查，按回绕后的值分配。
func (h *Heap) Calloc(count, size uint64) (uint64, error) {
	total := count * size
	p, err := h.Malloc(total)
	if err != nil || p == 0 {
		return p, err
	}
	clear(h.brk.Bytes()[p : p+total])
	return p, nil
}

// Bytes 返回 p 所在块的全部可用容量，块必须处于已分配状态。
func (h *Heap) Bytes(p uint64) []byte {
	_, hd := h.blockOf("bytes", p)
	if hd.Free {
		h.fatal(errs.Usage(errs.ErrUseAfterFree, "bytes(%#x)", p))
	}
	return h.brk.Bytes()[p : p+hd.Size : p+hd.Size]
}

// UsableSize 返回 p 所在块记录的容量（创建时的请求大小）。
func (h *Heap) UsableSize(p uint64) uint64 {
	_, hd := h.blockOf("usable_size", p)
	return hd.Size
}
