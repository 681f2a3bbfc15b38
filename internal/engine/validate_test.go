package engine

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"math/rand"
	"testing"

	"brk_heap/internal/consts"
	"brk_heap/internal/errs"

	"github.com/stretchr/testify/require"
)

func TestValidateAfterRandomWorkload(t *testing.T) {
	// filled 记录每个块写过 tag 的前缀长度，realloc 只拷贝旧容量，之后的字节未初始化
	type live struct {
		tag    byte
		filled uint64
	}
	for _, checked := range []bool{false, true} {
		h, _ := newTestHeap(t, 4<<20, checked)
		r := rand.New(rand.NewSource(42))
		blocks := map[uint64]live{}

		for i := 0; i < 2000; i++ {
			switch op := r.Intn(4); {
			case op < 2 || len(blocks) == 0:
				n := uint64(r.Intn(256) + 1)
				p, err := h.Malloc(n)
				require.NoError(t, err)
				tag := byte(r.Intn(255) + 1)
				b := h.Bytes(p)
				for j := range b {
					b[j] = tag
				}
				blocks[p] = live{tag: tag, filled: uint64(len(b))}
			case op == 2:
				for p := range blocks {
					h.Free(p)
					delete(blocks, p)
					break
				}
			default:
				for p, l := range blocks {
					n := h.UsableSize(p)
					q, err := h.Realloc(p, n+uint64(r.Intn(64)))
					require.NoError(t, err)
					require.Equal(t, l.tag, h.Bytes(q)[l.filled-1])
					delete(blocks, p)
					blocks[q] = l
					break
				}
			}
		}
		require.NoError(t, h.Validate())
		for p, l := range blocks {
			b := h.Bytes(p)
			require.Equal(t, l.tag, b[0])
			require.Equal(t, l.tag, b[l.filled-1])
		}
	}
}

func TestValidateDetectsCorruption(t *testing.T) {
	h, seg := newTestHeap(t, testHeapSize, false)
	a, _ := h.Malloc(32)
	b, _ := h.Malloc(32)
	require.NoError(t, h.Validate())

	// 踩坏第二个块的 magic
	hdr := seg.Bytes()[b-consts.HeaderSize:]
	binary.LittleEndian.PutUint32(hdr[20:24], 0xdeadbeef)
	err := h.Validate()
	require.ErrorIs(t, err, errs.ErrCorrupt)
	require.Contains(t, err.Error(), "bad magic")
	binary.LittleEndian.PutUint32(hdr[20:24], consts.Magic)
	require.NoError(t, h.Validate())

	// 第一个块的 size 被越界写改大
	binary.LittleEndian.PutUint64(seg.Bytes()[a-consts.HeaderSize:], 40)
	require.ErrorIs(t, h.Validate(), errs.ErrCorrupt)
	binary.LittleEndian.PutUint64(seg.Bytes()[a-consts.HeaderSize:], 32)

	// next 指回自己
	binary.LittleEndian.PutUint64(hdr[8:16], b-consts.HeaderSize)
	require.ErrorIs(t, h.Validate(), errs.ErrCorrupt)
}

func TestValidateDetectsIndexMismatch(t *testing.T) {
	h, _ := newTestHeap(t, testHeapSize, true)
	p, _ := h.Malloc(32)
	require.NoError(t, h.Validate())

	h.idx.Del(p)
	require.ErrorIs(t, h.Validate(), errs.ErrCorrupt)
}

func TestVisitBlocksInListOrder(t *testing.T) {
	h, _ := newTestHeap(t, testHeapSize, false)
	a, _ := h.Malloc(10)
	b, _ := h.Malloc(20)
	c, _ := h.Malloc(30)
	h.Free(b)

	var got []Block
	require.NoError(t, h.VisitBlocks(func(blk Block) error {
		got = append(got, blk)
		return nil
	}))
	require.Equal(t, []Block{
		{Offset: a - consts.HeaderSize, Ptr: a, Size: 10},
		{Offset: b - consts.HeaderSize, Ptr: b, Size: 20, Free: true},
		{Offset: c - consts.HeaderSize, Ptr: c, Size: 30},
	}, got)

	stop := errs.ErrCorrupt
	n := 0
	err := h.VisitBlocks(func(Block) error {
		n++
		return stop
	})
	require.ErrorIs(t, err, stop)
	require.Equal(t, 1, n)
}

func TestWriteJSON(t *testing.T) {
	h, _ := newTestHeap(t, testHeapSize, true)
	a, _ := h.Malloc(400)
	_, _ = h.Malloc(4)
	h.Free(a)

	var buf bytes.Buffer
	require.NoError(t, h.WriteJSON(&buf))

	var doc struct {
		TotalBytes     int
		AllocatedBytes int
		UnusedBytes    int
		Allocations    int
		UnusedRanges   int
		Checked        bool
		Blocks         []struct {
			Offset int
			Size   int
			Type   string
		}
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	require.Equal(t, 2*consts.HeaderSize+404, doc.TotalBytes)
	require.Equal(t, 4, doc.AllocatedBytes)
	require.Equal(t, 400, doc.UnusedBytes)
	require.Equal(t, 1, doc.Allocations)
	require.Equal(t, 1, doc.UnusedRanges)
	require.True(t, doc.Checked)
	require.Len(t, doc.Blocks, 2)
	require.Equal(t, "FREE", doc.Blocks[0].Type)
	require.Equal(t, 0, doc.Blocks[0].Offset)
	require.Equal(t, "ALLOCATED", doc.Blocks[1].Type)
	require.Equal(t, consts.HeaderSize+400, doc.Blocks[1].Offset)
}
