package woff2

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"

	"github.com/jonwraymond/fontops/truetype"
)

// ContentType is the media type served for WOFF2 artifacts.
const ContentType = "application/font-woff2"

const (
	signature  = 0x774F4632 // 'wOF2'
	headerSize = 48

	transformNone     = 0 // null transform for every table except glyf/loca
	transformNullGlyf = 3 // null transform for glyf and loca
	arbitraryTag      = 63
)

var (
	// ErrInvalidInput indicates the input is not an sfnt font.
	ErrInvalidInput = errors.New("woff2: invalid input font")

	// ErrInvalidWOFF2 indicates malformed WOFF2 data.
	ErrInvalidWOFF2 = errors.New("woff2: invalid data")

	// ErrUnsupportedTransform indicates WOFF2 data using a table transform
	// this package does not decode.
	ErrUnsupportedTransform = errors.New("woff2: unsupported table transform")
)

var knownTags = [...]string{
	"cmap", "head", "hhea", "hmtx", "maxp", "name", "OS/2", "post",
	"cvt ", "fpgm", "glyf", "loca", "prep", "CFF ", "VORG", "EBDT",
	"EBLC", "gasp", "hdmx", "kern", "LTSH", "PCLT", "VDMX", "vhea",
	"vmtx", "BASE", "GDEF", "GPOS", "GSUB", "EBSC", "JSTF", "MATH",
	"CBDT", "CBLC", "COLR", "CPAL", "SVG ", "sbix", "acnt", "avar",
	"bdat", "bloc", "bsln", "cvar", "fdsc", "feat", "fmtx", "fvar",
	"gvar", "hsty", "just", "lcar", "mort", "morx", "opbd", "prop",
	"trak", "Zapf", "Silf", "Glat", "Gloc", "Feat", "Sill",
}

var knownIndex = func() map[truetype.Tag]byte {
	m := make(map[truetype.Tag]byte, len(knownTags))
	for i, s := range knownTags {
		m[truetype.MakeTag(s)] = byte(i)
	}
	return m
}()

// Options configures an Encoder.
type Options struct {
	// Quality is the brotli quality, 0-11. Default: 11.
	Quality int
}

// Encoder converts sfnt fonts to WOFF2. It is safe for concurrent use.
type Encoder struct {
	quality int
}

// NewEncoder creates an Encoder.
func NewEncoder(opts Options) *Encoder {
	q := opts.Quality
	if q <= 0 || q > brotli.BestCompression {
		q = brotli.BestCompression
	}
	return &Encoder{quality: q}
}

// Encode wraps an sfnt font.
func (e *Encoder) Encode(font []byte) ([]byte, error) {
	flavor, tables, err := truetype.ReadTables(font)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if len(tables) == 0 {
		return nil, fmt.Errorf("%w: no tables", ErrInvalidInput)
	}

	var dir bytes.Buffer
	var stream bytes.Buffer
	sfntSize := 12 + 16*len(tables)
	for _, t := range tables {
		version := byte(transformNone)
		if t.Tag == truetype.TagGlyf || t.Tag == truetype.TagLoca {
			version = transformNullGlyf
		}
		if idx, ok := knownIndex[t.Tag]; ok {
			dir.WriteByte(version<<6 | idx)
		} else {
			dir.WriteByte(version<<6 | arbitraryTag)
			_ = binary.Write(&dir, binary.BigEndian, uint32(t.Tag))
		}
		dir.Write(appendBase128(nil, uint32(len(t.Data))))
		stream.Write(t.Data)
		sfntSize += (len(t.Data) + 3) &^ 3
	}

	var compressed bytes.Buffer
	w := brotli.NewWriterLevel(&compressed, e.quality)
	if _, err := w.Write(stream.Bytes()); err != nil {
		return nil, fmt.Errorf("woff2: compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("woff2: compress: %w", err)
	}

	total := headerSize + dir.Len() + compressed.Len()
	total = (total + 3) &^ 3

	out := make([]byte, headerSize, total)
	binary.BigEndian.PutUint32(out[0:], signature)
	binary.BigEndian.PutUint32(out[4:], flavor)
	binary.BigEndian.PutUint32(out[8:], uint32(total))
	binary.BigEndian.PutUint16(out[12:], uint16(len(tables)))
	binary.BigEndian.PutUint32(out[16:], uint32(sfntSize))
	binary.BigEndian.PutUint32(out[20:], uint32(compressed.Len()))
	binary.BigEndian.PutUint16(out[24:], 1) // majorVersion
	out = append(out, dir.Bytes()...)
	out = append(out, compressed.Bytes()...)
	for len(out) < total {
		out = append(out, 0)
	}
	return out, nil
}

var defaultEncoder = NewEncoder(Options{})

// Encode wraps an sfnt font with the default options.
func Encode(font []byte) ([]byte, error) {
	return defaultEncoder.Encode(font)
}

// appendBase128 appends v in the UIntBase128 encoding: big-endian groups of
// seven bits, high bit set on all but the last byte.
func appendBase128(b []byte, v uint32) []byte {
	var tmp [5]byte
	i := len(tmp) - 1
	tmp[i] = byte(v & 0x7F)
	for v >>= 7; v > 0; v >>= 7 {
		i--
		tmp[i] = byte(v&0x7F) | 0x80
	}
	return append(b, tmp[i:]...)
}

func readBase128(r *bytes.Reader) (uint32, error) {
	var v uint32
	for i := 0; i < 5; i++ {
		c, err := r.ReadByte()
		if err != nil {
			return 0, ErrInvalidWOFF2
		}
		if i == 0 && c == 0x80 {
			return 0, fmt.Errorf("%w: leading zero in UIntBase128", ErrInvalidWOFF2)
		}
		if v&0xFE000000 != 0 {
			return 0, fmt.Errorf("%w: UIntBase128 overflow", ErrInvalidWOFF2)
		}
		v = v<<7 | uint32(c&0x7F)
		if c&0x80 == 0 {
			return v, nil
		}
	}
	return 0, fmt.Errorf("%w: UIntBase128 too long", ErrInvalidWOFF2)
}

// Decode unwraps WOFF2 data that uses only null transforms, as produced by
// Encode, back into an sfnt font.
func Decode(data []byte) ([]byte, error) {
	if len(data) < headerSize || binary.BigEndian.Uint32(data) != signature {
		return nil, ErrInvalidWOFF2
	}
	numTables := int(binary.BigEndian.Uint16(data[12:]))
	compressedLen := int(binary.BigEndian.Uint32(data[20:]))

	r := bytes.NewReader(data[headerSize:])
	type entry struct {
		tag    truetype.Tag
		length uint32
	}
	entries := make([]entry, numTables)
	for i := range entries {
		flags, err := r.ReadByte()
		if err != nil {
			return nil, ErrInvalidWOFF2
		}
		idx, version := flags&0x3F, flags>>6
		var tag truetype.Tag
		if idx == arbitraryTag {
			var raw uint32
			if err := binary.Read(r, binary.BigEndian, &raw); err != nil {
				return nil, ErrInvalidWOFF2
			}
			tag = truetype.Tag(raw)
		} else if int(idx) < len(knownTags) {
			tag = truetype.MakeTag(knownTags[idx])
		} else {
			return nil, ErrInvalidWOFF2
		}
		isGlyf := tag == truetype.TagGlyf || tag == truetype.TagLoca
		if (isGlyf && version != transformNullGlyf) || (!isGlyf && version != transformNone) {
			return nil, fmt.Errorf("%w: %s version %d", ErrUnsupportedTransform, tag, version)
		}
		length, err := readBase128(r)
		if err != nil {
			return nil, err
		}
		entries[i] = entry{tag: tag, length: length}
	}

	start := len(data) - r.Len()
	if start+compressedLen > len(data) {
		return nil, ErrInvalidWOFF2
	}
	stream, err := io.ReadAll(brotli.NewReader(bytes.NewReader(data[start : start+compressedLen])))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWOFF2, err)
	}

	tables := make([]truetype.Table, len(entries))
	off := 0
	for i, e := range entries {
		end := off + int(e.length)
		if end > len(stream) {
			return nil, fmt.Errorf("%w: table %s exceeds stream", ErrInvalidWOFF2, e.tag)
		}
		tables[i] = truetype.Table{Tag: e.tag, Data: stream[off:end]}
		off = end
	}
	return truetype.Assemble(tables), nil
}
