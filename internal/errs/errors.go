package errs

import "github.com/cockroachdb/errors"

var (
	ErrOutOfMemory = errors.New("heap: out of memory")
	ErrBadArgument = errors.New("heap: bad argument")
	ErrClosed      = errors.New("heap: closed")
	ErrCorrupt     = errors.New("heap: corrupt")

	// ErrInvalidUsage 致命错误的类别：调用方违反了契约，堆状态已不可信。
	ErrInvalidUsage = errors.New("heap: invalid usage")

	// 以下是 ErrInvalidUsage 的具体原因。
	ErrDoubleFree     = errors.New("double release")
	ErrForeignPointer = errors.New("pointer not issued by this heap")
	ErrUseAfterFree   = errors.New("use of released block")
	ErrBreakMoved     = errors.New("heap break moved outside the allocator")
)

// kindError 给 cause 挂一个类别。Unwrap 走向 cause，Is 额外匹配类别，
// 标准库和 cockroachdb 的 errors.Is 都能同时看到类别和原因。
type kindError struct {
	cause error
	kind  error
}

func (e *kindError) Error() string { return e.cause.Error() }

func (e *kindError) Unwrap() error { return e.cause }

func (e *kindError) Is(target error) bool { return target == e.kind }

// Kind 把 err 归入 kind 类别，err 原有的链保持不变。
func Kind(kind, err error) error {
	if err == nil {
		return nil
	}
	return &kindError{cause: err, kind: kind}
}

// Usage 构造一个致命的契约违反错误：保留具体原因，并归入 ErrInvalidUsage。
func Usage(reason error, format string, args ...interface{}) error {
	return Kind(ErrInvalidUsage, errors.Wrapf(reason, format, args...))
}

// IsFatal 判断 err 是否属于 ErrInvalidUsage 类别。
func IsFatal(err error) bool {
	return errors.Is(err, ErrInvalidUsage)
}

// OutOfMemory 包装 OS 拒绝扩展堆的原因。
func OutOfMemory(cause error, incr uint64) error {
	if cause == nil {
		return errors.Wrapf(ErrOutOfMemory, "sbrk(%d)", incr)
	}
	return Kind(ErrOutOfMemory, errors.Wrapf(cause, "sbrk(%d): %s", incr, ErrOutOfMemory))
}
