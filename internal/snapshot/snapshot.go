// Package snapshot persists a prepared author record set so the comparison
// stage can run without the source database.
//
// A snapshot file is a 64-byte FileHeader followed by the payload: a gob
// stream of wire records, optionally compressed with LZ4 or ZSTD. Every
// attribute field is stored under its name, so a record written without
// one of them is detected on load.
package snapshot

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"hash/crc32"
	"io"
	"os"

	"github.com/google/uuid"

	"authordedup.kddcup.org/internal/models"
	"authordedup.kddcup.org/internal/utils"
)

// maxPayloadSize bounds allocations driven by header values.
const maxPayloadSize = 1 << 36

// Info describes a snapshot without its records.
type Info struct {
	ID          uuid.UUID
	Version     uint16
	Compression Compression
	Records     int
	PayloadSize uint64
	RawSize     uint64
}

type wireRecord struct {
	ID       int64
	PaperIDs []byte
	Fields   map[string][]string
}

var tokenFields = []models.Field{
	models.Names,
	models.NameTokens,
	models.Titles,
	models.TitleTokens,
	models.Affiliations,
	models.Keywords,
}

func toWire(r *models.Record) (wireRecord, error) {
	if err := r.Validate(); err != nil {
		return wireRecord{}, err
	}
	papers, err := r.PaperIDs.ToBytes()
	if err != nil {
		return wireRecord{}, fmt.Errorf("encoding paper ids of author %d: %w", r.ID, err)
	}

	w := wireRecord{
		ID:       r.ID,
		PaperIDs: papers,
		Fields:   make(map[string][]string, len(tokenFields)),
	}
	for _, f := range tokenFields {
		tokens := r.Tokens(f)
		if tokens == nil {
			tokens = models.TokenSet{}
		}
		w.Fields[f.String()] = []string(tokens)
	}
	return w, nil
}

func fromWire(w wireRecord) (*models.Record, error) {
	if len(w.PaperIDs) == 0 {
		return nil, fmt.Errorf("%w: author %d has no %s field", models.ErrMalformedRecord, w.ID, models.PaperIDs)
	}

	r := models.NewRecord(w.ID)
	if err := r.PaperIDs.UnmarshalBinary(w.PaperIDs); err != nil {
		return nil, fmt.Errorf("%w: author %d has unreadable %s: %v", models.ErrMalformedRecord, w.ID, models.PaperIDs, err)
	}

	for _, f := range tokenFields {
		tokens, ok := w.Fields[f.String()]
		if !ok {
			return nil, fmt.Errorf("%w: author %d has no %s field", models.ErrMalformedRecord, w.ID, f)
		}
		r.SetTokens(f, models.NewTokenSet(tokens...))
	}
	return r, nil
}

// Encode writes set to w as a snapshot compressed with c.
func Encode(w io.Writer, set *models.RecordSet, c Compression) (Info, error) {
	if !c.valid() {
		return Info{}, fmt.Errorf("%w: %d", ErrUnknownCompression, uint8(c))
	}

	wire := make([]wireRecord, 0, set.Len())
	for i := 0; i < set.Len(); i++ {
		rec, err := toWire(set.At(i))
		if err != nil {
			return Info{}, err
		}
		wire = append(wire, rec)
	}
	return writeWire(w, wire, c)
}

func writeWire(w io.Writer, wire []wireRecord, c Compression) (Info, error) {
	var raw bytes.Buffer
	if err := gob.NewEncoder(&raw).Encode(wire); err != nil {
		return Info{}, fmt.Errorf("failed to encode records: %w", err)
	}

	payload, used, err := compress(raw.Bytes(), c)
	if err != nil {
		return Info{}, err
	}

	h := FileHeader{
		Magic:            FormatMagic,
		Version:          FormatVersion,
		Compression:      used,
		ID:               uuid.New(),
		Count:            uint64(len(wire)),
		UncompressedSize: uint64(raw.Len()),
		PayloadSize:      uint64(len(payload)),
		PayloadChecksum:  crc32.ChecksumIEEE(raw.Bytes()),
	}
	if _, err := h.WriteTo(w); err != nil {
		return Info{}, fmt.Errorf("failed to write snapshot header: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return Info{}, fmt.Errorf("failed to write snapshot payload: %w", err)
	}

	return infoFrom(h), nil
}

// Decode reads a snapshot from r and rebuilds its record set.
func Decode(r io.Reader) (*models.RecordSet, Info, error) {
	var h FileHeader
	if _, err := h.ReadFrom(r); err != nil {
		return nil, Info{}, err
	}
	info := infoFrom(h)
	if h.PayloadSize > maxPayloadSize || h.UncompressedSize > maxPayloadSize {
		return nil, info, fmt.Errorf("%w: payload of %d bytes exceeds limit", ErrCorrupted, h.PayloadSize)
	}

	payload := make([]byte, h.PayloadSize)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, info, fmt.Errorf("%w: truncated payload: %v", ErrCorrupted, err)
	}

	raw, err := decompress(payload, h.Compression, h.UncompressedSize)
	if err != nil {
		return nil, info, fmt.Errorf("%w: %v", ErrCorrupted, err)
	}
	if crc32.ChecksumIEEE(raw) != h.PayloadChecksum {
		return nil, info, ErrCorrupted
	}

	var wire []wireRecord
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&wire); err != nil {
		return nil, info, fmt.Errorf("failed to decode records: %w", err)
	}
	if uint64(len(wire)) != h.Count {
		return nil, info, fmt.Errorf("%w: header lists %d records, payload has %d", ErrCorrupted, h.Count, len(wire))
	}

	records := make([]*models.Record, 0, len(wire))
	for _, w := range wire {
		rec, err := fromWire(w)
		if err != nil {
			return nil, info, err
		}
		records = append(records, rec)
	}

	set, err := models.NewRecordSet(records)
	if err != nil {
		return nil, info, err
	}
	return set, info, nil
}

// Save writes set to path. The file is written to a temporary sibling and
// renamed into place, so a failed save never leaves a partial snapshot.
func Save(path string, set *models.RecordSet, c Compression) (Info, error) {
	var info Info
	err := utils.WriteFileAtomic(path, func(w io.Writer) error {
		var err error
		info, err = Encode(w, set, c)
		return err
	})
	if err != nil {
		return Info{}, err
	}
	return info, nil
}

// Load reads the snapshot at path.
func Load(path string) (*models.RecordSet, Info, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path is an operator-supplied argument
	if err != nil {
		return nil, Info{}, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Decode(f)
}

func infoFrom(h FileHeader) Info {
	return Info{
		ID:          h.ID,
		Version:     h.Version,
		Compression: h.Compression,
		Records:     int(h.Count),
		PayloadSize: h.PayloadSize,
		RawSize:     h.UncompressedSize,
	}
}
