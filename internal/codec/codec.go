// Package codec provides the compression codecs used by session snapshots.
// Payloads are small (a dataset plus parameters), so every codec works on
// whole byte slices; there is no streaming mode.
package codec

import "fmt"

// Compression identifies a snapshot codec on the wire.
type Compression uint8

const (
	CompressionNone Compression = 0x1
	CompressionZstd Compression = 0x2
	CompressionS2   Compression = 0x3
	CompressionLZ4  Compression = 0x4
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// Codec compresses and decompresses whole payloads. The returned slices are
// freshly allocated; inputs are never modified.
type Codec interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

// For returns the codec for a compression tag.
func For(c Compression) (Codec, error) {
	switch c {
	case CompressionNone:
		return noopCodec{}, nil
	case CompressionZstd:
		return zstdCodec{}, nil
	case CompressionS2:
		return s2Codec{}, nil
	case CompressionLZ4:
		return lz4Codec{}, nil
	default:
		return nil, fmt.Errorf("unknown compression tag 0x%x", uint8(c))
	}
}

type noopCodec struct{}

func (noopCodec) Compress(data []byte) ([]byte, error) {
	out := make([]byte, len(data))
	copy(out, data)

	return out, nil
}

func (noopCodec) Decompress(data []byte) ([]byte, error) {
	out := make([]byte, len(data))
	copy(out, data)

	return out, nil
}
