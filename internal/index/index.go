package index

// Entry 索引项：已发出的指针对应的块头偏移与容量。
type Entry struct {
	Block uint64
	Size  uint64
}

// Index 已发出指针的带外索引。块永不回收，所以分配器只 Set 不删。
type Index interface {
	Get(ptr uint64) (Entry, bool)
	Set(ptr uint64, e Entry)
	// Del 分配器本身不调用，测试用它模拟索引与链表不一致。
	Del(ptr uint64)
	Len() int
}
