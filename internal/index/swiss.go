package index

import "github.com/dolthub/swiss"

// Swiss swiss map 实现的 Index，不加锁，只能单 goroutine 使用。
type Swiss struct {
	m *swiss.Map[uint64, Entry]
}

// NewSwiss 创建索引，hint 为预估条目数。
func NewSwiss(hint uint32) *Swiss {
	return &Swiss{m: swiss.NewMap[uint64, Entry](hint)}
}

func (s *Swiss) Get(ptr uint64) (Entry, bool) {
	return s.m.Get(ptr)
}

func (s *Swiss) Set(ptr uint64, e Entry) {
	s.m.Put(ptr, e)
}

func (s *Swiss) Del(ptr uint64) {
	s.m.Delete(ptr)
}

func (s *Swiss) Len() int {
	return s.m.Count()
}
