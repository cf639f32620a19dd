package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/pierrec/lz4/v4"
)

// lz4Codec frames the block format with a little-endian uncompressed-size
// prefix plus a raw/compressed flag byte, so decompression allocates exactly
// once and incompressible payloads can be stored verbatim.
type lz4Codec struct{}

const (
	lz4HeaderSize = 5
	lz4FlagRaw    = 0x0
	lz4FlagBlock  = 0x1
)

func (lz4Codec) Compress(data []byte) ([]byte, error) {
	dst := make([]byte, lz4HeaderSize+lz4.CompressBlockBound(len(data)))
	binary.LittleEndian.PutUint32(dst, uint32(len(data)))
	dst[4] = lz4FlagBlock

	var compressor lz4.Compressor
	n, err := compressor.CompressBlock(data, dst[lz4HeaderSize:])
	if err != nil {
		return nil, err
	}
	if n == 0 || n >= len(data) {
		dst[4] = lz4FlagRaw
		copy(dst[lz4HeaderSize:], data)
		n = len(data)
	}

	return dst[:lz4HeaderSize+n], nil
}

func (lz4Codec) Decompress(data []byte) ([]byte, error) {
	if len(data) < lz4HeaderSize {
		return nil, fmt.Errorf("lz4 payload too short: %d bytes", len(data))
	}
	size := binary.LittleEndian.Uint32(data)
	body := data[lz4HeaderSize:]
	out := make([]byte, size)

	switch data[4] {
	case lz4FlagRaw:
		if len(body) != int(size) {
			return nil, fmt.Errorf("lz4 raw payload has %d bytes, header claims %d", len(body), size)
		}
		copy(out, body)

		return out, nil
	case lz4FlagBlock:
		n, err := lz4.UncompressBlock(body, out)
		if err != nil {
			return nil, err
		}

		return out[:n], nil
	default:
		return nil, fmt.Errorf("unknown lz4 frame flag 0x%x", data[4])
	}
}
