package oram

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
)

// Bucket is the fixed-capacity container stored at one tree node. On disk it
// always holds exactly Z blocks, dummies padding out any unused slots.
type Bucket struct {
	Blocks []Block
}

// emptyBucket returns a bucket of z dummy blocks, each carrying blockSize
// bytes of zeroed payload.
func emptyBucket(z, blockSize int) Bucket {
	blocks := make([]Block, z)
	for i := range blocks {
		blocks[i] = dummyBlock(blockSize)
	}
	return Bucket{Blocks: blocks}
}

// encodeBucket serializes a bucket to a self-describing byte representation:
// for each of the z blocks, a little-endian int64 index followed by a
// uint32 length-prefixed data payload. Order is fixed (slot order), but
// decoding never depends on it — blocks self-identify by index.
func encodeBucket(b Bucket) []byte {
	size := 0
	for _, blk := range b.Blocks {
		size += 8 + 4 + len(blk.Data)
	}
	out := make([]byte, 0, size)
	for _, blk := range b.Blocks {
		var idBuf [8]byte
		binary.LittleEndian.PutUint64(idBuf[:], uint64(int64(blk.ID)))
		out = append(out, idBuf[:]...)

		var lenBuf [4]byte
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(blk.Data)))
		out = append(out, lenBuf[:]...)

		out = append(out, blk.Data...)
	}
	return out
}

// decodeBucket deserializes bytes produced by encodeBucket. Any input that
// doesn't round-trip cleanly — including an empty slice, which is what a
// never-written node reads back as — decodes to z dummy blocks rather than
// failing. This is essential for obliviousness: the backend cannot
// distinguish "fresh" from "cleared" nodes (spec.md §4.B).
func decodeBucket(data []byte, z, blockSize int) Bucket {
	blocks := make([]Block, 0, z)
	off := 0
	for len(blocks) < z {
		if off+12 > len(data) {
			break
		}
		id := int64(binary.LittleEndian.Uint64(data[off : off+8]))
		off += 8
		dataLen := int(binary.LittleEndian.Uint32(data[off : off+4]))
		off += 4
		if dataLen < 0 || off+dataLen > len(data) {
			break
		}
		payload := make([]byte, dataLen)
		copy(payload, data[off:off+dataLen])
		off += dataLen

		blocks = append(blocks, Block{ID: int(id), Data: payload})
	}
	if len(blocks) < z || off != len(data) {
		return emptyBucket(z, blockSize)
	}
	return Bucket{Blocks: blocks}
}

// jsonBlock is the base64-encoded-payload shape used by bucket's debug JSON
// encoding, mirroring the reference implementation's
// DataclassWithBytesEncoder (dataclass + base64 JSON).
type jsonBlock struct {
	Index int    `json:"index"`
	Data  string `json:"data"`
}

// MarshalJSON renders a bucket in the human-inspectable form used by the
// `oram inspect` CLI subcommand. It is never used as the on-disk ABI.
func (b Bucket) MarshalJSON() ([]byte, error) {
	out := make([]jsonBlock, len(b.Blocks))
	for i, blk := range b.Blocks {
		out[i] = jsonBlock{Index: blk.ID, Data: base64.StdEncoding.EncodeToString(blk.Data)}
	}
	return json.Marshal(out)
}

// DecodeBucketForInspection exposes decodeBucket to the CLI's `inspect`
// subcommand, the one place outside the package that needs to turn a raw
// backend payload back into a Bucket for display.
func DecodeBucketForInspection(data []byte, z, blockSize int) Bucket {
	return decodeBucket(data, z, blockSize)
}
