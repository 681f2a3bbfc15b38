package record

import (
	"encoding/binary"

	"brk_heap/internal/consts"
)

// Header 块头：写在每个块的最前面，用户拿到的地址紧跟其后。
type Header struct {
	Size  uint64 // 创建时请求的可用字节数，之后不再变
	Next  uint64 // 下一个块头的偏移，consts.NoBlock 表示末尾
	Free  bool
	Magic uint32
}

// Decode 从 data 解码一个块头。
func Decode(data []byte) Header {
	return Header{
		Size:  binary.LittleEndian.Uint64(data[0:8]),
		Next:  binary.LittleEndian.Uint64(data[8:16]),
		Free:  binary.LittleEndian.Uint32(data[16:20]) == consts.FlagFree,
		Magic: binary.LittleEndian.Uint32(data[20:24]),
	}
}

// Encode 将 h 编码到 b（至少 HeaderSize 字节）。
func Encode(b []byte, h Header) {
	binary.LittleEndian.PutUint64(b[0:8], h.Size)
	binary.LittleEndian.PutUint64(b[8:16], h.Next)
	SetFree(b, h.Free)
	binary.LittleEndian.PutUint32(b[20:24], h.Magic)
}

// SetFree 只改 free 字段，块创建后唯一会变的状态。
func SetFree(b []byte, free bool) {
	flag := consts.FlagInUse
	if free {
		flag = consts.FlagFree
	}
	binary.LittleEndian.PutUint32(b[16:20], flag)
}

// SetNext 把 b 处的块链接到 next。
func SetNext(b []byte, next uint64) {
	binary.LittleEndian.PutUint64(b[8:16], next)
}
