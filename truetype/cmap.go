package truetype

import (
	"encoding/binary"
	"sort"
)

// cmapEntry pairs a code point with its glyph index.
type cmapEntry struct {
	cp  rune
	gid uint16
}

// BuildCmap serializes a cmap table with a Windows BMP format 4 subtable
// (when the BMP entries fit its 16-bit length) and a Windows full-repertoire
// format 12 subtable.
func BuildCmap(m map[rune]uint16) []byte {
	entries := make([]cmapEntry, 0, len(m))
	for cp, gid := range m {
		entries = append(entries, cmapEntry{cp: cp, gid: gid})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].cp < entries[j].cp })

	f4 := buildFormat4(entries)
	f12 := buildFormat12(entries)

	type record struct {
		platform, encoding uint16
		data               []byte
	}
	var records []record
	if f4 != nil {
		records = append(records, record{3, 1, f4})
	}
	records = append(records, record{3, 10, f12})

	headerLen := 4 + 8*len(records)
	out := make([]byte, headerLen)
	binary.BigEndian.PutUint16(out[2:], uint16(len(records)))
	off := headerLen
	for i, r := range records {
		rec := out[4+8*i:]
		binary.BigEndian.PutUint16(rec, r.platform)
		binary.BigEndian.PutUint16(rec[2:], r.encoding)
		binary.BigEndian.PutUint32(rec[4:], uint32(off))
		off += len(r.data)
	}
	for _, r := range records {
		out = append(out, r.data...)
	}
	return out
}

type segment struct {
	start, end uint16
	delta      uint16
}

// buildFormat4 returns nil when the subtable would overflow its length field.
func buildFormat4(entries []cmapEntry) []byte {
	var segs []segment
	for _, e := range entries {
		if e.cp >= 0xFFFF {
			break
		}
		cp := uint16(e.cp)
		delta := e.gid - cp
		if n := len(segs); n > 0 && segs[n-1].end+1 == cp && segs[n-1].delta == delta {
			segs[n-1].end = cp
			continue
		}
		segs = append(segs, segment{start: cp, end: cp, delta: delta})
	}
	segs = append(segs, segment{start: 0xFFFF, end: 0xFFFF, delta: 1})

	segCount := len(segs)
	length := 16 + 8*segCount
	if length > 0xFFFF {
		return nil
	}

	searchRange, entrySelector := 2, 0
	for searchRange*2 <= 2*segCount {
		searchRange *= 2
		entrySelector++
	}

	out := make([]byte, length)
	binary.BigEndian.PutUint16(out, 4)
	binary.BigEndian.PutUint16(out[2:], uint16(length))
	binary.BigEndian.PutUint16(out[6:], uint16(2*segCount))
	binary.BigEndian.PutUint16(out[8:], uint16(searchRange))
	binary.BigEndian.PutUint16(out[10:], uint16(entrySelector))
	binary.BigEndian.PutUint16(out[12:], uint16(2*segCount-searchRange))

	endCodes := 14
	startCodes := endCodes + 2*segCount + 2
	deltas := startCodes + 2*segCount
	// idRangeOffset array stays zero.
	for i, s := range segs {
		binary.BigEndian.PutUint16(out[endCodes+2*i:], s.end)
		binary.BigEndian.PutUint16(out[startCodes+2*i:], s.start)
		binary.BigEndian.PutUint16(out[deltas+2*i:], s.delta)
	}
	return out
}

type group struct {
	start, end rune
	gid        uint16
}

func buildFormat12(entries []cmapEntry) []byte {
	var groups []group
	for _, e := range entries {
		if n := len(groups); n > 0 {
			g := &groups[n-1]
			if g.end+1 == e.cp && rune(g.gid)+(e.cp-g.start) == rune(e.gid) {
				g.end = e.cp
				continue
			}
		}
		groups = append(groups, group{start: e.cp, end: e.cp, gid: e.gid})
	}

	length := 16 + 12*len(groups)
	out := make([]byte, length)
	binary.BigEndian.PutUint16(out, 12)
	binary.BigEndian.PutUint32(out[4:], uint32(length))
	binary.BigEndian.PutUint32(out[12:], uint32(len(groups)))
	for i, g := range groups {
		rec := out[16+12*i:]
		binary.BigEndian.PutUint32(rec, uint32(g.start))
		binary.BigEndian.PutUint32(rec[4:], uint32(g.end))
		binary.BigEndian.PutUint32(rec[8:], uint32(g.gid))
	}
	return out
}
