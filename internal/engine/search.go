package engine

import "brk_heap/internal/consts"

// findFreeBlock 从链表头顺序找第一个 free 且容量 >= size 的块（first fit）。
// 未命中时 found 为 consts.NoBlock，last 是最后访问的块，供 requestSpace 接在其后。
func (h *Heap) findFreeBlock(size uint64) (found, last uint64) {
	last = consts.NoBlock
	cur := h.head
	for cur != consts.NoBlock {
		hd := h.header(cur)
		if hd.Free && hd.Size >= size {
			return cur, last
		}
		last = cur
		cur = hd.Next
	}
	return consts.NoBlock, last
}
