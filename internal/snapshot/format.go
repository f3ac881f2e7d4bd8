package snapshot

import (
	"encoding/binary"
	"errors"
	"hash/crc32"
	"io"

	"github.com/google/uuid"
)

const (
	// FormatVersion is the current snapshot format version.
	FormatVersion uint16 = 1

	// HeaderSize is the size of the file header in bytes.
	HeaderSize = 64
)

// FormatMagic identifies snapshot files.
var FormatMagic = [8]byte{'A', 'D', 'S', 'N', 'A', 'P', '0', '1'}

var (
	// ErrInvalidMagic is returned when a file is not a snapshot.
	ErrInvalidMagic = errors.New("snapshot: invalid magic number")

	// ErrInvalidVersion is returned when a snapshot has an unsupported version.
	ErrInvalidVersion = errors.New("snapshot: unsupported format version")

	// ErrCorrupted is returned when a header or payload fails checksum validation.
	ErrCorrupted = errors.New("snapshot: file corrupted (checksum mismatch)")

	// ErrUnknownCompression is returned for a compression byte or name this build does not know.
	ErrUnknownCompression = errors.New("snapshot: unknown compression")
)

// FileHeader is the 64-byte header at the start of snapshot files.
//
// All multi-byte fields are little-endian.
type FileHeader struct {
	Magic            [8]byte
	Version          uint16
	Compression      Compression
	ID               uuid.UUID
	Count            uint64 // Number of author records
	UncompressedSize uint64 // Size of the encoded records before compression
	PayloadSize      uint64 // Size of the payload as stored
	PayloadChecksum  uint32 // CRC32 of the uncompressed payload
	Checksum         uint32 // CRC32 of header bytes 0-55
}

// Validate checks that the header is valid.
func (h *FileHeader) Validate() error {
	if h.Magic != FormatMagic {
		return ErrInvalidMagic
	}
	if h.Version == 0 || h.Version > FormatVersion {
		return ErrInvalidVersion
	}
	if !h.Compression.valid() {
		return ErrUnknownCompression
	}
	return nil
}

// WriteTo writes the header to w.
func (h *FileHeader) WriteTo(w io.Writer) (int64, error) {
	buf := make([]byte, HeaderSize)
	copy(buf[0:8], h.Magic[:])
	binary.LittleEndian.PutUint16(buf[8:10], h.Version)
	buf[10] = byte(h.Compression)
	// buf[11] reserved
	copy(buf[12:28], h.ID[:])
	binary.LittleEndian.PutUint64(buf[28:36], h.Count)
	binary.LittleEndian.PutUint64(buf[36:44], h.UncompressedSize)
	binary.LittleEndian.PutUint64(buf[44:52], h.PayloadSize)
	binary.LittleEndian.PutUint32(buf[52:56], h.PayloadChecksum)

	h.Checksum = crc32.ChecksumIEEE(buf[:56])
	binary.LittleEndian.PutUint32(buf[56:60], h.Checksum)
	// buf[60:64] reserved

	n, err := w.Write(buf)
	return int64(n), err
}

// ReadFrom reads and validates the header from r.
func (h *FileHeader) ReadFrom(r io.Reader) (int64, error) {
	buf := make([]byte, HeaderSize)
	n, err := io.ReadFull(r, buf)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return int64(n), ErrInvalidMagic
		}
		return int64(n), err
	}

	copy(h.Magic[:], buf[0:8])
	if h.Magic != FormatMagic {
		return int64(n), ErrInvalidMagic
	}
	h.Version = binary.LittleEndian.Uint16(buf[8:10])
	h.Compression = Compression(buf[10])
	copy(h.ID[:], buf[12:28])
	h.Count = binary.LittleEndian.Uint64(buf[28:36])
	h.UncompressedSize = binary.LittleEndian.Uint64(buf[36:44])
	h.PayloadSize = binary.LittleEndian.Uint64(buf[44:52])
	h.PayloadChecksum = binary.LittleEndian.Uint32(buf[52:56])
	h.Checksum = binary.LittleEndian.Uint32(buf[56:60])

	if h.Checksum != crc32.ChecksumIEEE(buf[:56]) {
		return int64(n), ErrCorrupted
	}

	return int64(n), h.Validate()
}
