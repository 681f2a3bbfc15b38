package consts

// Header Const
const (
	Magic      = uint32(0x4B524248) // 'HBRK'
	HeaderSize = 8 + 8 + 4 + 4      // 24 bytes（size/next/free/magic）
	FlagInUse  = uint32(0)
	FlagFree   = uint32(1)
)

// NoBlock 表示链表上“没有下一个块”，也用作空链表头。
const NoBlock = ^uint64(0)

const (
	// DefaultMaxSize 默认保留的地址空间上限（1 GiB），break 不能越过它。
	DefaultMaxSize = 1 << 30
	// DefaultSliceMaxSize 切片后端一次就要分配全部容量，默认值小一些。
	DefaultSliceMaxSize = 64 << 20
)
