package peakcodec

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/ZimmerD/MzLite/internal/model"
)

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

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// Frame: [uncompressed uint32][stored uint32][bytes]. stored == 0 means the
// bytes are kept raw.
const frameHeaderSize = 8

func compressBody(body []byte, ct model.CompressionType) ([]byte, error) {
	if ct == model.CompressionNone {
		return body, nil
	}

	var packed []byte
	switch ct {
	case model.CompressionLZ4:
		if len(body) > 0 {
			buf := make([]byte, lz4.CompressBlockBound(len(body)))
			n, err := lz4.CompressBlock(body, buf, nil)
			if err != nil {
				return nil, fmt.Errorf("lz4: %w", err)
			}
			packed = buf[:n]
		}
	case model.CompressionZstd:
		if len(body) > 0 {
			enc := getZstdEncoder()
			packed = enc.EncodeAll(body, nil)
			zstdEncoderPool.Put(enc)
		}
	default:
		return nil, fmt.Errorf("unsupported compression %s", ct)
	}

	out := make([]byte, frameHeaderSize, frameHeaderSize+len(body))
	binary.LittleEndian.PutUint32(out[0:], uint32(len(body)))
	if len(packed) == 0 || len(packed) >= len(body) {
		binary.LittleEndian.PutUint32(out[4:], 0)
		return append(out, body...), nil
	}
	binary.LittleEndian.PutUint32(out[4:], uint32(len(packed)))
	return append(out, packed...), nil
}

// decompressBody unpacks a frame whose body must be exactly want bytes.
func decompressBody(data []byte, ct model.CompressionType, want int) ([]byte, error) {
	if ct == model.CompressionNone {
		return data, nil
	}
	if len(data) < frameHeaderSize {
		return nil, fmt.Errorf("%w: compressed frame too small", ErrCorrupt)
	}
	size := binary.LittleEndian.Uint32(data[0:])
	stored := binary.LittleEndian.Uint32(data[4:])
	rest := data[frameHeaderSize:]
	if uint64(size) != uint64(want) {
		return nil, fmt.Errorf("%w: frame declares %d bytes, want %d", ErrCorrupt, size, want)
	}

	if stored == 0 {
		if uint32(len(rest)) != size {
			return nil, fmt.Errorf("%w: raw frame holds %d bytes, want %d", ErrCorrupt, len(rest), size)
		}
		return rest, nil
	}
	if uint32(len(rest)) != stored {
		return nil, fmt.Errorf("%w: frame holds %d bytes, want %d", ErrCorrupt, len(rest), stored)
	}

	out := make([]byte, size)
	switch ct {
	case model.CompressionLZ4:
		n, err := lz4.UncompressBlock(rest, out)
		if err != nil {
			return nil, fmt.Errorf("%w: lz4: %v", ErrCorrupt, err)
		}
		if uint32(n) != size {
			return nil, fmt.Errorf("%w: lz4 produced %d bytes, want %d", ErrCorrupt, n, size)
		}
		return out, nil
	case model.CompressionZstd:
		dec := getZstdDecoder()
		defer zstdDecoderPool.Put(dec)
		decoded, err := dec.DecodeAll(rest, out[:0])
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %v", ErrCorrupt, err)
		}
		if uint32(len(decoded)) != size {
			return nil, fmt.Errorf("%w: zstd produced %d bytes, want %d", ErrCorrupt, len(decoded), size)
		}
		return decoded, nil
	default:
		return nil, fmt.Errorf("%w: unsupported compression %s", ErrCorrupt, ct)
	}
}
