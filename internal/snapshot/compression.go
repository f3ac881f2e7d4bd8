package snapshot

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression defines the algorithm used for the snapshot payload.
type Compression uint8

const (
	// CompressionNone stores the payload as is.
	CompressionNone Compression = 0
	// CompressionLZ4 uses LZ4 block compression (fast).
	CompressionLZ4 Compression = 1
	// CompressionZSTD uses ZSTD (better ratio). This is the default.
	CompressionZSTD Compression = 2
)

// String returns the name accepted by ParseCompression.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

func (c Compression) valid() bool {
	return c <= CompressionZSTD
}

// ParseCompression maps a name such as "zstd" to its Compression.
func ParseCompression(name string) (Compression, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZSTD, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownCompression, name)
	}
}

// ZSTD encoder/decoder pools
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

// compress returns data compressed with c and the compression actually used.
// Data LZ4 cannot shrink is stored uncompressed.
func compress(data []byte, c Compression) ([]byte, Compression, error) {
	if len(data) == 0 {
		return data, CompressionNone, nil
	}

	switch c {
	case CompressionNone:
		return data, CompressionNone, nil
	case CompressionLZ4:
		compressed := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, compressed, nil)
		if err != nil {
			return nil, c, fmt.Errorf("lz4 compress: %w", err)
		}
		if n == 0 {
			return data, CompressionNone, nil // incompressible
		}
		return compressed[:n], CompressionLZ4, nil
	case CompressionZSTD:
		enc := getZstdEncoder()
		defer putZstdEncoder(enc)
		return enc.EncodeAll(data, nil), CompressionZSTD, nil
	default:
		return nil, c, fmt.Errorf("%w: %d", ErrUnknownCompression, uint8(c))
	}
}

// decompress reverses compress; size is the expected uncompressed length.
func decompress(data []byte, c Compression, size uint64) ([]byte, error) {
	switch c {
	case CompressionNone:
		if uint64(len(data)) != size {
			return nil, errors.New("stored payload size mismatch")
		}
		return data, nil
	case CompressionLZ4:
		result := make([]byte, size)
		n, err := lz4.UncompressBlock(data, result)
		if err != nil {
			return nil, fmt.Errorf("lz4 decompress: %w", err)
		}
		if uint64(n) != size {
			return nil, errors.New("decompressed size mismatch")
		}
		return result, nil
	case CompressionZSTD:
		dec := getZstdDecoder()
		defer putZstdDecoder(dec)

		decoded, err := dec.DecodeAll(data, make([]byte, 0, size))
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		if uint64(len(decoded)) != size {
			return nil, errors.New("decompressed size mismatch")
		}
		return decoded, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompression, uint8(c))
	}
}
