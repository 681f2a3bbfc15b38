package brk_heap

import "brk_heap/internal/fixed"

// NewFixed 把无指针类型 T 的实例拷进一个新块，返回块地址。
func NewFixed[T any](h *Heap, v *T) (Ptr, error) {
	if h == nil || h.e == nil {
		return Null, ErrClosed
	}
	p, err := fixed.New(h.e, v)
	return Ptr(p), err
}

// StoreFixed 用 *v 覆盖 p 处的值。
func StoreFixed[T any](h *Heap, p Ptr, v *T) error {
	if h == nil || h.e == nil {
		return ErrClosed
	}
	return fixed.Store(h.e, uint64(p), v)
}

// LoadFixed 从 p 处读出 *T 的拷贝。
func LoadFixed[T any](h *Heap, p Ptr) (*T, error) {
	if h == nil || h.e == nil {
		return nil, ErrClosed
	}
	return fixed.Load[T](h.e, uint64(p))
}
