package woff2

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"

	"github.com/jonwraymond/fontops/truetype"
	"github.com/jonwraymond/fontops/truetype/truetypetest"
)

func TestBase128(t *testing.T) {
	tests := []struct {
		v    uint32
		want []byte
	}{
		{0, []byte{0x00}},
		{0x7F, []byte{0x7F}},
		{0x80, []byte{0x81, 0x00}},
		{0x3FFF, []byte{0xFF, 0x7F}},
		{0xFFFFFFFF, []byte{0x8F, 0xFF, 0xFF, 0xFF, 0x7F}},
	}
	for _, tt := range tests {
		got := appendBase128(nil, tt.v)
		assert.Equal(t, tt.want, got, "encode %#x", tt.v)

		back, err := readBase128(bytes.NewReader(got))
		require.NoError(t, err)
		assert.Equal(t, tt.v, back)
	}

	_, err := readBase128(bytes.NewReader([]byte{0x80, 0x01}))
	assert.ErrorIs(t, err, ErrInvalidWOFF2, "leading zero")
	_, err = readBase128(bytes.NewReader([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x7F}))
	assert.ErrorIs(t, err, ErrInvalidWOFF2, "overlong")
}

func TestEncode_Header(t *testing.T) {
	src := truetypetest.Build(truetypetest.Options{}, truetypetest.Simple('A'), truetypetest.Simple('B'))
	_, tables, err := truetype.ReadTables(src)
	require.NoError(t, err)

	out, err := Encode(src)
	require.NoError(t, err)

	assert.Equal(t, uint32(signature), binary.BigEndian.Uint32(out))
	assert.Equal(t, uint32(0x00010000), binary.BigEndian.Uint32(out[4:]), "flavor")
	assert.Equal(t, uint32(len(out)), binary.BigEndian.Uint32(out[8:]), "length")
	assert.Equal(t, uint16(len(tables)), binary.BigEndian.Uint16(out[12:]))
	assert.Equal(t, uint32(len(src)), binary.BigEndian.Uint32(out[16:]), "totalSfntSize")
	assert.Zero(t, len(out)%4)

	// First directory entry is cmap, a known tag with the null transform.
	assert.Equal(t, byte(0), out[headerSize])
}

func TestEncode_GlyfUsesNullTransformVersion(t *testing.T) {
	src := truetypetest.Build(truetypetest.Options{}, truetypetest.Simple('A'))
	out, err := Encode(src)
	require.NoError(t, err)

	r := bytes.NewReader(out[headerSize:])
	n := int(binary.BigEndian.Uint16(out[12:]))
	for i := 0; i < n; i++ {
		flags, err := r.ReadByte()
		require.NoError(t, err)
		tag := truetype.MakeTag(knownTags[flags&0x3F])
		if tag == truetype.TagGlyf || tag == truetype.TagLoca {
			assert.Equal(t, byte(transformNullGlyf), flags>>6, tag.String())
		} else {
			assert.Equal(t, byte(transformNone), flags>>6, tag.String())
		}
		_, err = readBase128(r)
		require.NoError(t, err)
	}
}

func TestRoundTrip_GoRegular(t *testing.T) {
	out, err := Encode(goregular.TTF)
	require.NoError(t, err)
	assert.Less(t, len(out), len(goregular.TTF))

	back, err := Decode(out)
	require.NoError(t, err)

	_, want, err := truetype.ReadTables(goregular.TTF)
	require.NoError(t, err)
	_, got, err := truetype.ReadTables(back)
	require.NoError(t, err)
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Tag, got[i].Tag)
		if want[i].Tag == truetype.TagHead {
			continue // checkSumAdjustment is recomputed
		}
		assert.True(t, bytes.Equal(want[i].Data, got[i].Data), "table %s", want[i].Tag)
	}

	f, err := sfnt.Parse(back)
	require.NoError(t, err)
	var buf sfnt.Buffer
	gid, err := f.GlyphIndex(&buf, 'g')
	require.NoError(t, err)
	assert.NotZero(t, gid)
}

func TestRoundTrip_ArbitraryTag(t *testing.T) {
	src := truetype.Assemble([]truetype.Table{
		{Tag: truetype.MakeTag("zzzz"), Data: []byte("custom table")},
		{Tag: truetype.TagCmap, Data: truetype.BuildCmap(map[rune]uint16{'a': 1})},
	})
	out, err := Encode(src)
	require.NoError(t, err)

	back, err := Decode(out)
	require.NoError(t, err)
	_, tables, err := truetype.ReadTables(back)
	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.Equal(t, "zzzz", tables[1].Tag.String())
	assert.Equal(t, []byte("custom table"), tables[1].Data)
}

func TestEncode_InvalidInput(t *testing.T) {
	_, err := Encode([]byte("nope"))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = Encode(truetype.Assemble(nil))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDecode_Invalid(t *testing.T) {
	_, err := Decode([]byte("wOF2"))
	assert.ErrorIs(t, err, ErrInvalidWOFF2)

	out, err := Encode(truetypetest.Build(truetypetest.Options{}, truetypetest.Simple('A')))
	require.NoError(t, err)
	bad := bytes.Clone(out)
	bad[headerSize] |= 1 << 6 // cmap with transform version 1
	_, err = Decode(bad)
	assert.ErrorIs(t, err, ErrUnsupportedTransform)
}

func TestNewEncoder_QualityDefaults(t *testing.T) {
	assert.Equal(t, 11, NewEncoder(Options{}).quality)
	assert.Equal(t, 11, NewEncoder(Options{Quality: 40}).quality)
	assert.Equal(t, 5, NewEncoder(Options{Quality: 5}).quality)

	src := truetypetest.Build(truetypetest.Options{}, truetypetest.Simple('A'))
	fast, err := NewEncoder(Options{Quality: 1}).Encode(src)
	require.NoError(t, err)
	back, err := Decode(fast)
	require.NoError(t, err)
	_, err = truetype.Parse(back)
	assert.NoError(t, err)
}
