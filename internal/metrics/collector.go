package metrics

import (
	"brk_heap/internal/engine"

	"github.com/prometheus/client_golang/prometheus"
)

// StatsSource 提供堆统计，*engine.Heap 满足它。
type StatsSource interface {
	Stats() engine.Stats
}

// Collector 把堆统计导出为 prometheus 指标。每次 Collect 都会遍历一次链表，
// 且和分配器本身一样不能与其他 goroutine 的分配并发执行。
type Collector struct {
	src StatsSource

	blocks         *prometheus.Desc
	freeBlocks     *prometheus.Desc
	allocatedBytes *prometheus.Desc
	freeBytes      *prometheus.Desc
	headerBytes    *prometheus.Desc
	breakBytes     *prometheus.Desc
	grows          *prometheus.Desc
	reuses         *prometheus.Desc
}

// NewCollector 创建 collector，constLabels 会加到每个指标上（例如区分多个堆）。
func NewCollector(src StatsSource, constLabels prometheus.Labels) *Collector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName("brk", "heap", name), help, nil, constLabels)
	}
	return &Collector{
		src:            src,
		blocks:         desc("blocks", "Number of blocks ever created on the heap."),
		freeBlocks:     desc("free_blocks", "Number of blocks currently released and reusable."),
		allocatedBytes: desc("allocated_bytes", "Usable capacity of blocks currently allocated."),
		freeBytes:      desc("free_bytes", "Usable capacity of blocks currently released."),
		headerBytes:    desc("header_bytes", "Bytes spent on block headers."),
		breakBytes:     desc("break_bytes", "Current heap break offset."),
		grows:          desc("grow_total", "Number of times the heap break was extended."),
		reuses:         desc("reuse_total", "Number of allocations served from a released block."),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.blocks
	ch <- c.freeBlocks
	ch <- c.allocatedBytes
	ch <- c.freeBytes
	ch <- c.headerBytes
	ch <- c.breakBytes
	ch <- c.grows
	ch <- c.reuses
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.src.Stats()
	ch <- prometheus.MustNewConstMetric(c.blocks, prometheus.GaugeValue, float64(s.Blocks))
	ch <- prometheus.MustNewConstMetric(c.freeBlocks, prometheus.GaugeValue, float64(s.FreeBlocks))
	ch <- prometheus.MustNewConstMetric(c.allocatedBytes, prometheus.GaugeValue, float64(s.AllocatedBytes))
	ch <- prometheus.MustNewConstMetric(c.freeBytes, prometheus.GaugeValue, float64(s.FreeBytes))
	ch <- prometheus.MustNewConstMetric(c.headerBytes, prometheus.GaugeValue, float64(s.HeaderBytes))
	ch <- prometheus.MustNewConstMetric(c.breakBytes, prometheus.GaugeValue, float64(s.Brk))
	ch <- prometheus.MustNewConstMetric(c.grows, prometheus.CounterValue, float64(s.Grows))
	ch <- prometheus.MustNewConstMetric(c.reuses, prometheus.CounterValue, float64(s.Reuses))
}
