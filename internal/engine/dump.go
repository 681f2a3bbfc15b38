package engine

import (
	"io"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// PrintDetailedMap 写出堆的汇总信息和每个块的偏移/容量/状态。
func (h *Heap) PrintDetailedMap(writer *jwriter.Writer) {
	s := h.Stats()

	obj := writer.Object()
	defer obj.End()

	obj.Name("TotalBytes").Int(int(s.Brk))
	obj.Name("AllocatedBytes").Int(int(s.AllocatedBytes))
	obj.Name("UnusedBytes").Int(int(s.FreeBytes))
	obj.Name("Allocations").Int(s.Blocks - s.FreeBlocks)
	obj.Name("UnusedRanges").Int(s.FreeBlocks)
	obj.Name("Checked").Bool(h.Checked())

	blocks := obj.Name("Blocks").Array()
	defer blocks.End()

	_ = h.VisitBlocks(func(b Block) error {
		o := blocks.Object()
		defer o.End()

		o.Name("Offset").Int(int(b.Offset))
		o.Name("Size").Int(int(b.Size))
		if b.Free {
			o.Name("Type").String("FREE")
		} else {
			o.Name("Type").String("ALLOCATED")
		}
		return nil
	})
}

// WriteJSON 把 PrintDetailedMap 的结果写到 w。
func (h *Heap) WriteJSON(w io.Writer) error {
	writer := jwriter.NewWriter()
	h.PrintDetailedMap(&writer)
	if err := writer.Error(); err != nil {
		return err
	}
	_, err := w.Write(writer.Bytes())
	return err
}
