package engine

import "brk_heap/internal/consts"

// Block 链表上一个块的快照。
type Block struct {
	Offset uint64 // 块头偏移
	Ptr    uint64 // 用户地址，Offset + HeaderSize
	Size   uint64
	Free   bool
}

// Stats 堆的统计信息。
type Stats struct {
	Blocks         int
	FreeBlocks     int
	AllocatedBytes uint64 // 已分配块的容量之和
	FreeBytes      uint64 // 空闲块的容量之和
	HeaderBytes    uint64
	Brk            uint64
	Grows          uint64 // requestSpace 成功次数
	Reuses         uint64 // 命中空闲块次数
}

// VisitBlocks 按链表顺序对每个块调用 fn，fn 返回错误时停止并返回该错误。
func (h *Heap) VisitBlocks(fn func(b Block) error) error {
	for cur := h.head; cur != consts.NoBlock; {
		hd := h.header(cur)
		if err := fn(Block{Offset: cur, Ptr: cur + consts.HeaderSize, Size: hd.Size, Free: hd.Free}); err != nil {
			return err
		}
		cur = hd.Next
	}
	return nil
}

// Stats 遍历链表汇总统计，O(n)。
func (h *Heap) Stats() Stats {
	s := Stats{
		Brk:    h.brk.Brk(),
		Grows:  h.grows,
		Reuses: h.reuses,
	}
	_ = h.VisitBlocks(func(b Block) error {
		s.Blocks++
		s.HeaderBytes += consts.HeaderSize
		if b.Free {
			s.FreeBlocks++
			s.FreeBytes += b.Size
		} else {
			s.AllocatedBytes += b.Size
		}
		return nil
	})
	return s
}
