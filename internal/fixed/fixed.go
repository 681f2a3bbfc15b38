package fixed

import (
	"reflect"
	"unsafe"

	"brk_heap/internal/errs"

	"github.com/cockroachdb/errors"
)

// Allocator New/Load/Store 需要的堆接口。
type Allocator interface {
	Malloc(size uint64) (uint64, error)
	Bytes(p uint64) []byte
}

func assertNoPointers[T any]() error {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		return errs.Kind(errs.ErrBadArgument, errors.New("interface type has no fixed layout"))
	}
	if err := typeNoPointers(t); err != nil {
		return errs.Kind(errs.ErrBadArgument, err)
	}
	return nil
}

func typeNoPointers(t reflect.Type) error {
	switch t.Kind() {
	case reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return nil
	case reflect.Array:
		return typeNoPointers(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if err := typeNoPointers(t.Field(i).Type); err != nil {
				return errors.Wrapf(err, "field %s", t.Field(i).Name)
			}
		}
		return nil
	case reflect.String, reflect.Slice, reflect.Map, reflect.Pointer,
		reflect.Interface, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return errors.Newf("type %s contains pointer-like data", t.String())
	default:
		return errors.Newf("unsupported kind %s (%s)", t.Kind(), t.String())
	}
}

func bytesViewOf[T any](p *T) []byte {
	n := int(unsafe.Sizeof(*p))
	return unsafe.Slice((*byte)(unsafe.Pointer(p)), n)
}

// New 分配 sizeof(T) 字节并把 *v 拷进去。零大小的 T 返回 0。
func New[T any](a Allocator, v *T) (uint64, error) {
	if err := assertNoPointers[T](); err != nil {
		return 0, err
	}
	src := bytesViewOf(v)
	p, err := a.Malloc(uint64(len(src)))
	if err != nil || p == 0 {
		return p, err
	}
	copy(a.Bytes(p), src)
	return p, nil
}

// Store 用 *v 覆盖 p 处的值，块容量必须放得下 T。
func Store[T any](a Allocator, p uint64, v *T) error {
	if err := assertNoPointers[T](); err != nil {
		return err
	}
	src := bytesViewOf(v)
	dst := a.Bytes(p)
	if len(dst) < len(src) {
		return errs.Kind(errs.ErrBadArgument, errors.Newf("size mismatch: block=%d want=%d", len(dst), len(src)))
	}
	copy(dst, src)
	return nil
}

// Load 从 p 处读出一个 T 的拷贝。
func Load[T any](a Allocator, p uint64) (*T, error) {
	if err := assertNoPointers[T](); err != nil {
		return nil, err
	}
	out := new(T)
	dst := bytesViewOf(out)
	src := a.Bytes(p)
	if len(src) < len(dst) {
		return nil, errs.Kind(errs.ErrBadArgument, errors.Newf("size mismatch: block=%d want=%d", len(src), len(dst)))
	}
	copy(dst, src)
	return out, nil
}
