package engine

import (
	"brk_heap/internal/consts"
	"brk_heap/internal/errs"

	"github.com/cockroachdb/errors"
)

// Validate 逐块检查链表的一致性：块头在 break 之内、magic 完整、块首尾相接、
// 地址严格递增、最后一块正好结束在 break。正常使用下不会返回错误。
func (h *Heap) Validate() error {
	end := uint64(len(h.brk.Bytes()))
	if h.head == consts.NoBlock {
		return nil
	}
	var (
		count  int
		expect = h.head
	)
	for cur := h.head; cur != consts.NoBlock; {
		if cur != expect {
			return errs.Kind(errs.ErrCorrupt, errors.Newf("block %d at %#x: expected to start at %#x", count, cur, expect))
		}
		if cur > end || end-cur < consts.HeaderSize {
			return errs.Kind(errs.ErrCorrupt, errors.Newf("block %d at %#x: header past break %#x", count, cur, end))
		}
		hd := h.header(cur)
		if hd.Magic != consts.Magic {
			return errs.Kind(errs.ErrCorrupt, errors.Newf("block %d at %#x: bad magic %#x", count, cur, hd.Magic))
		}
		if hd.Size > end-cur-consts.HeaderSize {
			return errs.Kind(errs.ErrCorrupt, errors.Newf("block %d at %#x: size %d runs past break %#x", count, cur, hd.Size, end))
		}
		expect = cur + consts.HeaderSize + hd.Size
		if hd.Next != consts.NoBlock && hd.Next <= cur {
			return errs.Kind(errs.ErrCorrupt, errors.Newf("block %d at %#x: next %#x does not move forward", count, cur, hd.Next))
		}
		count++
		cur = hd.Next
	}
	if expect != end {
		return errs.Kind(errs.ErrCorrupt, errors.Newf("last block ends at %#x, break is %#x", expect, end))
	}
	if h.idx != nil {
		return h.validateIndex()
	}
	return nil
}

func (h *Heap) validateIndex() error {
	var count int
	err := h.VisitBlocks(func(b Block) error {
		count++
		e, ok := h.idx.Get(b.Ptr)
		if !ok {
			return errs.Kind(errs.ErrCorrupt, errors.Newf("block at %#x missing from pointer index", b.Offset))
		}
		if e.Block != b.Offset || e.Size != b.Size {
			return errs.Kind(errs.ErrCorrupt, errors.Newf("block at %#x: index says %#x/%d, header says %#x/%d", b.Offset, e.Block, e.Size, b.Offset, b.Size))
		}
		return nil
	})
	if err != nil {
		return err
	}
	if count != h.idx.Len() {
		return errs.Kind(errs.ErrCorrupt, errors.Newf("pointer index holds %d entries, list holds %d blocks", h.idx.Len(), count))
	}
	return nil
}
