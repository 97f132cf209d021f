package ot

import (
	"fmt"
	"sort"

	"golang.org/x/text/encoding/charmap"
)

// The cmap table maps character codes to glyph indices. A font carries one or
// more encoding sub-tables, each tagged with a platform/encoding pair and one
// of nine wire formats. All nine are decoded here; the per-font preferred
// sub-table is selected by platform/encoding ranking.
//
// Some of the decoding logic derives from golang.org/x/image/font/sfnt/cmap.go
// (see package documentation for license information).

// CMapTable represents the character-to-glyph mapping of a font.
type CMapTable struct {
	tableBase
	numGlyphs     int
	Encodings     []EncodingRecord
	GlyphIndexMap CMapSubtable // the preferred sub-table, never nil on a decoded cmap
}

// EncodingRecord is one platform/encoding entry of the cmap table. Subtable
// is nil if decoding the entry failed; Err then carries the condition.
type EncodingRecord struct {
	PlatformID uint16
	EncodingID uint16
	Offset     uint32
	Format     uint16
	Subtable   CMapSubtable
	Err        error
}

// CMapSubtable is a decoded cmap encoding sub-table. Lookup returns glyph 0
// (.notdef) for unmapped code points. ReverseLookup returns the lowest code
// point mapping to a glyph, or 0 if there is none.
type CMapSubtable interface {
	Format() uint16
	Lookup(r rune) GlyphIndex
	ReverseLookup(g GlyphIndex) rune
}

func newCMapTable(tag Tag, b binarySegm, offset, size uint32) *CMapTable {
	t := &CMapTable{tableBase: makeTableBase(tag, b, offset, size)}
	t.self = t
	return t
}

// Lookup maps a code point through the preferred sub-table, clamping glyph
// indices beyond the font's glyph count to .notdef.
func (t *CMapTable) Lookup(r rune) GlyphIndex {
	if t == nil || t.GlyphIndexMap == nil {
		return 0
	}
	g := t.GlyphIndexMap.Lookup(r)
	if t.numGlyphs > 0 && int(g) >= t.numGlyphs {
		return 0
	}
	return g
}

// ReverseLookup returns the lowest code point mapping to a glyph through the
// preferred sub-table, or 0 if there is none. This walks the mapping and is
// considerably more expensive than Lookup.
func (t *CMapTable) ReverseLookup(g GlyphIndex) rune {
	if t == nil || t.GlyphIndexMap == nil {
		return 0
	}
	return t.GlyphIndexMap.ReverseLookup(g)
}

// VariationGlyph resolves a variation-selector sequence through a format 14
// sub-table, if the font has one. The boolean reports whether the sequence is
// covered at all; a covered sequence with default handling resolves through
// the regular Lookup.
func (t *CMapTable) VariationGlyph(base, selector rune) (GlyphIndex, bool) {
	if t == nil {
		return 0, false
	}
	for _, enc := range t.Encodings {
		uvs, ok := enc.Subtable.(*cmapFormat14)
		if !ok {
			continue
		}
		g, res := uvs.variationGlyph(base, selector)
		switch res {
		case uvsDefault:
			return t.Lookup(base), true
		case uvsNonDefault:
			return g, true
		}
	}
	return 0, false
}

// --- Table decoding --------------------------------------------------------

// parseCMap decodes the cmap table header and every encoding record. A
// failing record is contained: its Err field is set and a warning recorded,
// the remaining records still decode. The cmap as a whole fails only if no
// record yields a usable sub-table.
//
// | Type   | Name                   |
// |--------|------------------------|
// | uint16 | version                |
// | uint16 | numTables              |
// | Record | encodingRecords[numTables] |
//
// with each record being platformID, encodingID and a uint32 offset from the
// beginning of the cmap table.
func parseCMap(ctx *parseContext, entry DirectoryEntry, b binarySegm) (Table, error) {
	t := newCMapTable(entry.Tag, b, entry.Offset, entry.Length)
	t.numGlyphs = ctx.otf.MaxP.NumGlyphs
	c := cursorOn(b)
	if _, err := c.U16(); err != nil { // version, always 0 in practice; ignored
		return nil, err
	}
	numTables, err := c.U16()
	if err != nil {
		return nil, err
	}
	tracer().Debugf("cmap has %d encoding records", numTables)
	cache := make(map[uint32]CMapSubtable) // encodings may share one sub-table
	for i := 0; i < int(numTables); i++ {
		var rec EncodingRecord
		rec.PlatformID, _ = c.U16()
		rec.EncodingID, _ = c.U16()
		rec.Offset, err = c.U32()
		if err != nil {
			return nil, err
		}
		if sub, ok := cache[rec.Offset]; ok {
			rec.Subtable = sub
			rec.Format = sub.Format()
		} else if rec.Subtable, err = parseCMapSubtable(b, rec.Offset); err != nil {
			rec.Err = err
			ctx.ec.addWarning(entry.Tag,
				fmt.Sprintf("encoding record %d (platform %d, encoding %d): %v",
					i, rec.PlatformID, rec.EncodingID, err),
				entry.Offset+rec.Offset)
		} else {
			rec.Format = rec.Subtable.Format()
			cache[rec.Offset] = rec.Subtable
		}
		t.Encodings = append(t.Encodings, rec)
	}
	if t.GlyphIndexMap = selectPreferred(t.Encodings); t.GlyphIndexMap == nil {
		return nil, fmt.Errorf("cmap: no usable encoding sub-table among %d records", numTables)
	}
	return t, nil
}

// selectPreferred ranks the decoded encoding records and returns the winner.
// Full-repertoire Unicode encodings beat BMP-only ones, which beat symbol and
// Macintosh encodings. Among equals the first record wins.
func selectPreferred(encodings []EncodingRecord) CMapSubtable {
	best, bestRank := CMapSubtable(nil), -1
	for _, rec := range encodings {
		if rec.Subtable == nil {
			continue
		}
		rank := -1
		switch {
		case rec.PlatformID == 0 && (rec.EncodingID == 4 || rec.EncodingID == 6):
			rank = 5
		case rec.PlatformID == 3 && rec.EncodingID == 10:
			rank = 5
		case rec.PlatformID == 0 && rec.EncodingID == 3:
			rank = 4
		case rec.PlatformID == 3 && rec.EncodingID == 1:
			rank = 4
		case rec.PlatformID == 0:
			rank = 3
		case rec.PlatformID == 3 && rec.EncodingID == 0:
			rank = 2
		case rec.PlatformID == 1 && rec.EncodingID == 0:
			rank = 1
		}
		if rec.Format == 14 {
			rank = -1 // a UVS table is a supplement, never the base map
		}
		if rank > bestRank {
			best, bestRank = rec.Subtable, rank
		}
	}
	return best
}

// parseCMapSubtable dispatches on the sub-table's leading format word.
func parseCMapSubtable(b binarySegm, offset uint32) (CMapSubtable, error) {
	if offset > uint32(len(b)) {
		return nil, boundsError(int(offset), 0, len(b))
	}
	sub := b[offset:]
	format, err := sub.u16(0)
	if err != nil {
		return nil, err
	}
	length, err := cmapSubtableLength(sub, format)
	if err != nil {
		return nil, err
	}
	if length > len(sub) {
		return nil, boundsError(int(offset), length, len(b))
	}
	c := cursorOn(sub[:length])
	switch format {
	case 0:
		return parseCMapFormat0(c)
	case 2:
		return parseCMapFormat2(c)
	case 4:
		return parseCMapFormat4(c)
	case 6:
		return parseCMapFormat6(c)
	case 8:
		return parseCMapFormat8(c)
	case 10:
		return parseCMapFormat10(c)
	case 12, 13:
		return parseCMapFormat12(c, format)
	case 14:
		return parseCMapFormat14(c)
	}
	return nil, &UnsupportedDiscriminator{Structure: "cmap sub-table format", Value: uint32(format)}
}

// cmapSubtableLength reads the format-specific length field. Formats 0, 2, 4
// and 6 carry a uint16 length at offset 2; formats 8, 10, 12 and 13 a uint32
// at offset 4; format 14 a uint32 at offset 2.
func cmapSubtableLength(sub binarySegm, format uint16) (int, error) {
	switch format {
	case 0, 2, 4, 6:
		n, err := sub.u16(2)
		return int(n), err
	case 8, 10, 12, 13:
		n, err := sub.u32(4)
		return int(n), err
	case 14:
		n, err := sub.u32(2)
		return int(n), err
	}
	return 0, &UnsupportedDiscriminator{Structure: "cmap sub-table format", Value: uint32(format)}
}

// --- Format 0: byte encoding -----------------------------------------------

// cmapFormat0 is a plain 256-entry byte mapping, used by legacy Macintosh
// encodings.
type cmapFormat0 struct {
	language uint16
	glyphs   [256]uint8
}

func parseCMapFormat0(c *Cursor) (CMapSubtable, error) {
	t := &cmapFormat0{}
	c.Skip(4) // format, length
	t.language, _ = c.U16()
	b, err := c.Bytes(256)
	if err != nil {
		return nil, err
	}
	copy(t.glyphs[:], b)
	return t, nil
}

func (t *cmapFormat0) Format() uint16 { return 0 }

func (t *cmapFormat0) Lookup(r rune) GlyphIndex {
	if b, ok := charmap.Macintosh.EncodeRune(r); ok {
		return GlyphIndex(t.glyphs[b])
	}
	return 0
}

func (t *cmapFormat0) ReverseLookup(g GlyphIndex) rune {
	if g == 0 || g > 255 {
		return 0
	}
	for code, gid := range t.glyphs {
		if GlyphIndex(gid) == g {
			return charmap.Macintosh.DecodeByte(byte(code))
		}
	}
	return 0
}

// --- Format 2: high-byte mapping through sub-headers -----------------------

// cmapFormat2 serves mixed 8/16-bit CJK encodings: the high byte of a
// two-byte code selects a sub-header, which maps the low byte through its own
// glyph run. Sub-header 0 handles single-byte codes. The idRangeOffset
// indirection is resolved at parse time into explicit glyph runs.
type cmapFormat2 struct {
	language      uint16
	subHeaderKeys [256]uint16 // values are subHeader indices × 8
	subHeaders    []cmap2SubHeader
}

type cmap2SubHeader struct {
	firstCode  uint16
	entryCount uint16
	idDelta    int16
	glyphs     []uint16 // resolved glyph run of length entryCount
}

func parseCMapFormat2(c *Cursor) (CMapSubtable, error) {
	t := &cmapFormat2{}
	c.Skip(4)
	t.language, _ = c.U16()
	keys, err := c.U16s(256)
	if err != nil {
		return nil, err
	}
	maxKey := uint16(0)
	for i, k := range keys {
		t.subHeaderKeys[i] = k
		if k%8 != 0 {
			return nil, fmt.Errorf("cmap format 2: subHeaderKey %d is not a multiple of 8", i)
		}
		if k > maxKey {
			maxKey = k
		}
	}
	numSubHeaders := int(maxKey)/8 + 1
	t.subHeaders = make([]cmap2SubHeader, numSubHeaders)
	for i := range t.subHeaders {
		sh := &t.subHeaders[i]
		sh.firstCode, _ = c.U16()
		sh.entryCount, _ = c.U16()
		sh.idDelta, _ = c.I16()
		// idRangeOffset counts from its own field position
		rangeOffsetPos := c.Pos()
		idRangeOffset, err := c.U16()
		if err != nil {
			return nil, err
		}
		if sh.entryCount == 0 {
			continue
		}
		run, err := c.Sub(rangeOffsetPos+int(idRangeOffset), int(sh.entryCount)*2)
		if err != nil {
			return nil, fmt.Errorf("cmap format 2: sub-header %d glyph run out of bounds", i)
		}
		if sh.glyphs, err = run.U16s(int(sh.entryCount)); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *cmapFormat2) Format() uint16 { return 2 }

func (t *cmapFormat2) lookupCode(hi, lo int) GlyphIndex {
	k := int(t.subHeaderKeys[hi]) / 8
	if k >= len(t.subHeaders) {
		return 0
	}
	sh := &t.subHeaders[k]
	idx := lo - int(sh.firstCode)
	if idx < 0 || idx >= int(sh.entryCount) {
		return 0
	}
	g := sh.glyphs[idx]
	if g == 0 {
		return 0
	}
	return GlyphIndex(uint16(int(g) + int(sh.idDelta)))
}

func (t *cmapFormat2) Lookup(r rune) GlyphIndex {
	if r < 0 || r > 0xFFFF {
		return 0
	}
	hi, lo := int(r>>8), int(r&0xFF)
	if hi == 0 {
		// single-byte code through sub-header 0
		return t.lookupCode(lo, lo)
	}
	if t.subHeaderKeys[hi] == 0 {
		return 0 // hi is marked single-byte, two-byte code invalid
	}
	return t.lookupCode(hi, lo)
}

func (t *cmapFormat2) ReverseLookup(g GlyphIndex) rune {
	if g == 0 {
		return 0
	}
	for hi := 0; hi < 256; hi++ {
		if hi > 0 && t.subHeaderKeys[hi] == 0 {
			continue
		}
		for lo := 0; lo < 256; lo++ {
			code := hi
			if hi > 0 {
				code = hi<<8 | lo
			} else {
				code = lo
			}
			if t.Lookup(rune(code)) == g {
				return rune(code)
			}
		}
	}
	return 0
}

// --- Format 4: segment mapping to delta values -----------------------------

// cmapFormat4 is the standard BMP mapping: sorted segments of
// [startCode, endCode], each resolving either arithmetically through idDelta
// or through a glyph array indexed via idRangeOffset.
type cmapFormat4 struct {
	language  uint16
	segments  []cmap4Segment
	glyphdata []uint16 // shared glyphIdArray, indexed by resolved positions
}

type cmap4Segment struct {
	start, end    uint16
	idDelta       int16
	idRangeOffset uint16
	index         int // segment index, needed for idRangeOffset resolution
}

func parseCMapFormat4(c *Cursor) (CMapSubtable, error) {
	t := &cmapFormat4{}
	c.Skip(4)
	t.language, _ = c.U16()
	segCountX2, err := c.U16()
	if err != nil {
		return nil, err
	}
	if segCountX2%2 != 0 {
		return nil, fmt.Errorf("cmap format 4: segCountX2 %d is odd", segCountX2)
	}
	segCount := int(segCountX2 / 2)
	if segCount == 0 || segCount > MaxCMapSegments {
		return nil, fmt.Errorf("cmap format 4: implausible segment count %d", segCount)
	}
	c.Skip(6) // searchRange, entrySelector, rangeShift
	endCodes, err := c.U16s(segCount)
	if err != nil {
		return nil, err
	}
	if endCodes[segCount-1] != 0xFFFF {
		return nil, fmt.Errorf("cmap format 4: last segment does not end at 0xFFFF")
	}
	if _, err := c.U16(); err != nil { // reservedPad
		return nil, err
	}
	startCodes, err := c.U16s(segCount)
	if err != nil {
		return nil, err
	}
	deltas := make([]int16, segCount)
	for i := range deltas {
		deltas[i], _ = c.I16()
	}
	rangeOffsets, err := c.U16s(segCount)
	if err != nil {
		return nil, err
	}
	remaining := (c.Size() - c.Pos()) / 2
	if t.glyphdataLoad(c, remaining) != nil {
		return nil, boundsError(c.Pos(), remaining*2, c.Size())
	}
	t.segments = make([]cmap4Segment, segCount)
	for i := range t.segments {
		seg := cmap4Segment{
			start:         startCodes[i],
			end:           endCodes[i],
			idDelta:       deltas[i],
			idRangeOffset: rangeOffsets[i],
			index:         i,
		}
		if seg.idRangeOffset != 0 {
			if seg.idRangeOffset%2 != 0 {
				return nil, fmt.Errorf("cmap format 4: segment %d idRangeOffset is odd", i)
			}
			// validate the whole segment resolves inside glyphIdArray
			lastIdx := t.glyphArrayIndex(&seg, seg.end, segCount)
			firstIdx := t.glyphArrayIndex(&seg, seg.start, segCount)
			if firstIdx < 0 || lastIdx >= len(t.glyphdata) {
				return nil, fmt.Errorf("cmap format 4: segment %d indexes outside glyphIdArray", i)
			}
		}
		t.segments[i] = seg
	}
	return t, nil
}

// glyphdata is the glyphIdArray trailing the parallel segment arrays.
func (t *cmapFormat4) glyphdataLoad(c *Cursor, n int) error {
	vals, err := c.U16s(n)
	if err != nil {
		return err
	}
	t.glyphdata = vals
	return nil
}

// glyphArrayIndex resolves the idRangeOffset indirection: the offset counts
// in uint16 units from the segment's own idRangeOffset slot, which sits
// (segCount - index) slots before the glyphIdArray.
func (t *cmapFormat4) glyphArrayIndex(seg *cmap4Segment, code uint16, segCount int) int {
	return int(seg.idRangeOffset)/2 + int(code-seg.start) - (segCount - seg.index)
}

func (t *cmapFormat4) Format() uint16 { return 4 }

func (t *cmapFormat4) Lookup(r rune) GlyphIndex {
	if r < 0 || r > 0xFFFF {
		return 0
	}
	code := uint16(r)
	lo, hi := 0, len(t.segments)
	for lo < hi {
		mid := (lo + hi) / 2
		if code > t.segments[mid].end {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo == len(t.segments) || code < t.segments[lo].start {
		return 0
	}
	seg := &t.segments[lo]
	if seg.idRangeOffset == 0 {
		return GlyphIndex(uint16(int(code) + int(seg.idDelta)))
	}
	idx := t.glyphArrayIndex(seg, code, len(t.segments))
	if idx < 0 || idx >= len(t.glyphdata) {
		return 0
	}
	g := t.glyphdata[idx]
	if g == 0 {
		return 0
	}
	return GlyphIndex(uint16(int(g) + int(seg.idDelta)))
}

func (t *cmapFormat4) ReverseLookup(g GlyphIndex) rune {
	if g == 0 {
		return 0
	}
	for i := range t.segments {
		seg := &t.segments[i]
		for code := int(seg.start); code <= int(seg.end) && code <= 0xFFFF; code++ {
			if t.Lookup(rune(code)) == g {
				return rune(code)
			}
		}
	}
	return 0
}

// --- Format 6: trimmed table mapping ---------------------------------------

type cmapFormat6 struct {
	language  uint16
	firstCode uint16
	glyphs    []uint16
}

func parseCMapFormat6(c *Cursor) (CMapSubtable, error) {
	t := &cmapFormat6{}
	c.Skip(4)
	t.language, _ = c.U16()
	t.firstCode, _ = c.U16()
	entryCount, err := c.U16()
	if err != nil {
		return nil, err
	}
	if t.glyphs, err = c.U16s(int(entryCount)); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *cmapFormat6) Format() uint16 { return 6 }

func (t *cmapFormat6) Lookup(r rune) GlyphIndex {
	idx := int(r) - int(t.firstCode)
	if idx < 0 || idx >= len(t.glyphs) {
		return 0
	}
	return GlyphIndex(t.glyphs[idx])
}

func (t *cmapFormat6) ReverseLookup(g GlyphIndex) rune {
	if g == 0 {
		return 0
	}
	for i, gid := range t.glyphs {
		if GlyphIndex(gid) == g {
			return rune(int(t.firstCode) + i)
		}
	}
	return 0
}

// --- Sequential/constant groups (formats 8, 12, 13) ------------------------

type cmapGroup struct {
	startChar  uint32
	endChar    uint32
	startGlyph uint32
}

func parseGroups(c *Cursor, structure string) ([]cmapGroup, error) {
	nGroups, err := c.U32()
	if err != nil {
		return nil, err
	}
	if int(nGroups) > MaxCMapSegments {
		return nil, fmt.Errorf("%s: implausible group count %d", structure, nGroups)
	}
	groups := make([]cmapGroup, nGroups)
	var prevEnd uint32
	for i := range groups {
		g := &groups[i]
		g.startChar, _ = c.U32()
		g.endChar, _ = c.U32()
		g.startGlyph, err = c.U32()
		if err != nil {
			return nil, err
		}
		if g.endChar < g.startChar || (i > 0 && g.startChar <= prevEnd) {
			return nil, fmt.Errorf("%s: group %d not ascending", structure, i)
		}
		prevEnd = g.endChar
	}
	return groups, nil
}

func lookupGroups(groups []cmapGroup, r rune, constant bool) GlyphIndex {
	c := uint32(r)
	lo, hi := 0, len(groups)
	for lo < hi {
		mid := (lo + hi) / 2
		if c > groups[mid].endChar {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo == len(groups) || c < groups[lo].startChar {
		return 0
	}
	if constant {
		return GlyphIndex(groups[lo].startGlyph)
	}
	return GlyphIndex(groups[lo].startGlyph + (c - groups[lo].startChar))
}

func reverseGroups(groups []cmapGroup, g GlyphIndex, constant bool) rune {
	if g == 0 {
		return 0
	}
	for _, grp := range groups {
		if constant {
			if GlyphIndex(grp.startGlyph) == g {
				return rune(grp.startChar)
			}
			continue
		}
		span := grp.endChar - grp.startChar
		if uint32(g) >= grp.startGlyph && uint32(g) <= grp.startGlyph+span {
			return rune(grp.startChar + (uint32(g) - grp.startGlyph))
		}
	}
	return 0
}

// cmapFormat8 mixes 16- and 32-bit codes: an is32 bitmap marks which high
// words open a 32-bit code, the groups then map like format 12.
type cmapFormat8 struct {
	is32   []byte // 8192-byte bitmap over the 16-bit high words
	groups []cmapGroup
}

func parseCMapFormat8(c *Cursor) (CMapSubtable, error) {
	t := &cmapFormat8{}
	c.Skip(8) // format, reserved, length
	c.Skip(4) // language
	var err error
	if t.is32, err = c.Bytes(8192); err != nil {
		return nil, err
	}
	if t.groups, err = parseGroups(c, "cmap format 8"); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *cmapFormat8) Format() uint16 { return 8 }

func (t *cmapFormat8) Lookup(r rune) GlyphIndex {
	return lookupGroups(t.groups, r, false)
}

func (t *cmapFormat8) ReverseLookup(g GlyphIndex) rune {
	return reverseGroups(t.groups, g, false)
}

// --- Format 10: trimmed array for 32-bit codes -----------------------------

type cmapFormat10 struct {
	startChar uint32
	glyphs    []uint16
}

func parseCMapFormat10(c *Cursor) (CMapSubtable, error) {
	t := &cmapFormat10{}
	c.Skip(8) // format, reserved, length
	c.Skip(4) // language
	var err error
	t.startChar, _ = c.U32()
	numChars, err := c.U32()
	if err != nil {
		return nil, err
	}
	if int(numChars) > MaxGlyphCount {
		return nil, fmt.Errorf("cmap format 10: implausible char count %d", numChars)
	}
	if t.glyphs, err = c.U16s(int(numChars)); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *cmapFormat10) Format() uint16 { return 10 }

func (t *cmapFormat10) Lookup(r rune) GlyphIndex {
	idx := int64(r) - int64(t.startChar)
	if idx < 0 || idx >= int64(len(t.glyphs)) {
		return 0
	}
	return GlyphIndex(t.glyphs[idx])
}

func (t *cmapFormat10) ReverseLookup(g GlyphIndex) rune {
	if g == 0 {
		return 0
	}
	for i, gid := range t.glyphs {
		if GlyphIndex(gid) == g {
			return rune(int64(t.startChar) + int64(i))
		}
	}
	return 0
}

// cmapFormat12 covers formats 12 (sequential groups) and 13 (constant
// groups); the two differ only in how startGlyph extends across a group.
type cmapFormat12 struct {
	format uint16
	groups []cmapGroup
}

func parseCMapFormat12(c *Cursor, format uint16) (CMapSubtable, error) {
	t := &cmapFormat12{format: format}
	c.Skip(8) // format, reserved, length
	c.Skip(4) // language
	var err error
	if t.groups, err = parseGroups(c, fmt.Sprintf("cmap format %d", format)); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *cmapFormat12) Format() uint16 { return t.format }

func (t *cmapFormat12) Lookup(r rune) GlyphIndex {
	return lookupGroups(t.groups, r, t.format == 13)
}

func (t *cmapFormat12) ReverseLookup(g GlyphIndex) rune {
	return reverseGroups(t.groups, g, t.format == 13)
}

// --- Format 14: Unicode variation sequences --------------------------------

type uvsResult int

const (
	uvsNone       uvsResult = iota // sequence not covered
	uvsDefault                     // resolve through the regular cmap
	uvsNonDefault                  // mapped to a specific glyph
)

// cmapFormat14 maps (base character, variation selector) pairs. It is a
// supplement to the base character map and never selected as GlyphIndexMap;
// Lookup on it always yields .notdef.
type cmapFormat14 struct {
	selectors []uvsSelector
}

type uvsSelector struct {
	selector uint32 // the variation selector code point
	dfltRuns []uvsRange
	mappings []uvsMapping // sorted by unicodeValue
}

type uvsRange struct {
	start uint32
	count uint8 // additionalCount: range covers start .. start+count
}

type uvsMapping struct {
	unicodeValue uint32
	glyph        uint16
}

func parseCMapFormat14(c *Cursor) (CMapSubtable, error) {
	t := &cmapFormat14{}
	c.Skip(6) // format, length
	numRecords, err := c.U32()
	if err != nil {
		return nil, err
	}
	if int(numRecords) > MaxCMapSegments {
		return nil, fmt.Errorf("cmap format 14: implausible selector count %d", numRecords)
	}
	type rawRecord struct {
		selector   uint32
		dfltOffset uint32
		nonOffset  uint32
	}
	raw := make([]rawRecord, numRecords)
	for i := range raw {
		raw[i].selector, _ = c.U24()
		raw[i].dfltOffset, _ = c.U32()
		raw[i].nonOffset, err = c.U32()
		if err != nil {
			return nil, err
		}
	}
	t.selectors = make([]uvsSelector, 0, numRecords)
	for _, rec := range raw {
		sel := uvsSelector{selector: rec.selector}
		if rec.dfltOffset != 0 {
			sub, err := c.SubFrom(int(rec.dfltOffset))
			if err != nil {
				return nil, err
			}
			numRanges, err := sub.U32()
			if err != nil {
				return nil, err
			}
			sel.dfltRuns = make([]uvsRange, numRanges)
			for i := range sel.dfltRuns {
				sel.dfltRuns[i].start, _ = sub.U24()
				sel.dfltRuns[i].count, err = sub.U8()
				if err != nil {
					return nil, err
				}
			}
		}
		if rec.nonOffset != 0 {
			sub, err := c.SubFrom(int(rec.nonOffset))
			if err != nil {
				return nil, err
			}
			numMappings, err := sub.U32()
			if err != nil {
				return nil, err
			}
			sel.mappings = make([]uvsMapping, numMappings)
			for i := range sel.mappings {
				sel.mappings[i].unicodeValue, _ = sub.U24()
				g, err := sub.U16()
				if err != nil {
					return nil, err
				}
				sel.mappings[i].glyph = g
			}
		}
		t.selectors = append(t.selectors, sel)
	}
	return t, nil
}

func (t *cmapFormat14) Format() uint16 { return 14 }

func (t *cmapFormat14) Lookup(r rune) GlyphIndex { return 0 }

func (t *cmapFormat14) ReverseLookup(g GlyphIndex) rune { return 0 }

func (t *cmapFormat14) variationGlyph(base, selector rune) (GlyphIndex, uvsResult) {
	i := sort.Search(len(t.selectors), func(i int) bool {
		return t.selectors[i].selector >= uint32(selector)
	})
	if i == len(t.selectors) || t.selectors[i].selector != uint32(selector) {
		return 0, uvsNone
	}
	sel := &t.selectors[i]
	for _, m := range sel.mappings {
		if m.unicodeValue == uint32(base) {
			return GlyphIndex(m.glyph), uvsNonDefault
		}
	}
	for _, run := range sel.dfltRuns {
		if uint32(base) >= run.start && uint32(base) <= run.start+uint32(run.count) {
			return 0, uvsDefault
		}
	}
	return 0, uvsNone
}
