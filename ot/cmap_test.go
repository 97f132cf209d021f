package ot

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"golang.org/x/image/font/gofont/goregular"
)

// cmapFont wraps a cmap sub-table buffer into a complete font with one
// encoding record (platform 3, encoding 1) and a maxp table.
func cmapFont(t *testing.T, numGlyphs uint16, subtable []byte) *Font {
	cmap := make([]byte, 12+len(subtable))
	putU16(cmap, 0, 0)  // version
	putU16(cmap, 2, 1)  // one encoding record
	putU16(cmap, 4, 3)  // platformID
	putU16(cmap, 6, 1)  // encodingID
	putU32(cmap, 8, 12) // sub-table offset
	copy(cmap[12:], subtable)
	tables := []synthTable{
		{"maxp", maxpData(numGlyphs)},
		{"cmap", cmap},
	}
	otf, err := Parse(buildFont(tables, true))
	if err != nil {
		t.Fatal(err)
	}
	return otf
}

// format4Subtable builds a format 4 sub-table with one mapped segment
// [65, 90] plus the terminating 0xFFFF segment. With rangeOffset zero the
// segment resolves through delta arithmetic, otherwise through glyphs as the
// trailing glyphIdArray.
func format4Subtable(delta int16, rangeOffset uint16, glyphs []uint16) []byte {
	length := 32 + 2*len(glyphs)
	b := make([]byte, length)
	putU16(b, 0, 4) // format
	putU16(b, 2, uint16(length))
	putU16(b, 4, 0) // language
	putU16(b, 6, 4) // segCountX2
	// searchRange, entrySelector, rangeShift left zero; nothing reads them
	putU16(b, 14, 90) // endCode[0]
	putU16(b, 16, 0xFFFF)
	putU16(b, 18, 0)  // reservedPad
	putU16(b, 20, 65) // startCode[0]
	putU16(b, 22, 0xFFFF)
	putU16(b, 24, uint16(delta)) // idDelta[0]
	putU16(b, 26, 1)             // idDelta[1], maps 0xFFFF to 0
	putU16(b, 28, rangeOffset)   // idRangeOffset[0]
	putU16(b, 30, 0)
	for i, g := range glyphs {
		putU16(b, 32+2*i, g)
	}
	return b
}

func TestCMapFormat4DeltaPath(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.sfnt")
	defer teardown()
	//
	otf := cmapFont(t, 1000, format4Subtable(0, 0, nil))
	cmap := otf.CMap
	if cmap == nil {
		t.Fatal("expected a decoded cmap table")
	}
	if cmap.GlyphIndexMap.Format() != 4 {
		t.Fatalf("expected a format 4 sub-table, got %d", cmap.GlyphIndexMap.Format())
	}
	if g := cmap.Lookup(65); g != 65 {
		t.Errorf("expected glyph 65 for char 65 with idDelta 0, got %d", g)
	}
	if g := cmap.Lookup(90); g != 90 {
		t.Errorf("expected glyph 90 for char 90, got %d", g)
	}
	if g := cmap.Lookup(91); g != 0 {
		t.Errorf("expected .notdef for unmapped char 91, got %d", g)
	}
	if g := cmap.Lookup(64); g != 0 {
		t.Errorf("expected .notdef for unmapped char 64, got %d", g)
	}
}

func TestCMapFormat4DeltaArithmetic(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.sfnt")
	defer teardown()
	//
	otf := cmapFont(t, 1000, format4Subtable(10, 0, nil))
	if g := otf.CMap.Lookup(65); g != 75 {
		t.Errorf("expected glyph 75 for char 65 with idDelta 10, got %d", g)
	}
}

func TestCMapFormat4RangeOffsetPath(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.sfnt")
	defer teardown()
	//
	// a nonzero idRangeOffset must switch to glyph-array indexing: offset 4
	// counts in bytes from the segment's own rangeOffset slot, skipping the
	// final segment's slot, and lands at glyphIdArray[0]
	glyphs := make([]uint16, 26)
	for i := range glyphs {
		glyphs[i] = uint16(100 + i)
	}
	otf := cmapFont(t, 1000, format4Subtable(0, 4, glyphs))
	cmap := otf.CMap
	if g := cmap.Lookup(65); g != 100 {
		t.Errorf("expected glyph 100 from the glyph array, got %d", g)
	}
	if g := cmap.Lookup(90); g != 125 {
		t.Errorf("expected glyph 125 from the glyph array, got %d", g)
	}
	if r := cmap.ReverseLookup(100); r != 65 {
		t.Errorf("expected reverse lookup of glyph 100 to yield 65, got %d", r)
	}
}

func TestCMapFormat4SegmentOutsideGlyphArray(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.sfnt")
	defer teardown()
	//
	// segment of 26 codes but only 4 glyph-array entries
	sub := format4Subtable(0, 4, []uint16{1, 2, 3, 4})
	cmap := make([]byte, 12+len(sub))
	putU16(cmap, 2, 1)
	putU16(cmap, 4, 3)
	putU16(cmap, 6, 1)
	putU32(cmap, 8, 12)
	copy(cmap[12:], sub)
	tables := []synthTable{
		{"maxp", maxpData(1000)},
		{"cmap", cmap},
	}
	otf, err := Parse(buildFont(tables, true))
	if err != nil {
		t.Fatal(err)
	}
	// the only sub-table is unusable, so the whole cmap goes opaque
	if !getTable(otf, "cmap", t).Self().IsOpaque() {
		t.Error("expected cmap with an out-of-range segment to be opaque")
	}
}

func TestCMapBadRecordContained(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.sfnt")
	defer teardown()
	//
	// two encoding records: the first one points past the cmap table, the
	// second one is valid and must still decode
	sub := format4Subtable(0, 0, nil)
	cmap := make([]byte, 20+len(sub))
	putU16(cmap, 0, 0)
	putU16(cmap, 2, 2)       // two records
	putU16(cmap, 4, 0)       // record 0: platform 0
	putU16(cmap, 6, 3)       //   encoding 3
	putU32(cmap, 8, 0xFFFF0) //   offset far outside the table
	putU16(cmap, 12, 3)      // record 1: platform 3
	putU16(cmap, 14, 1)      //   encoding 1
	putU32(cmap, 16, 20)     //   valid offset
	copy(cmap[20:], sub)
	tables := []synthTable{
		{"maxp", maxpData(1000)},
		{"cmap", cmap},
	}
	otf, err := Parse(buildFont(tables, true))
	if err != nil {
		t.Fatal(err)
	}
	cm := otf.CMap
	if cm == nil {
		t.Fatal("expected the cmap to survive one broken encoding record")
	}
	if len(cm.Encodings) != 2 {
		t.Fatalf("expected both encoding records listed, got %d", len(cm.Encodings))
	}
	if cm.Encodings[0].Err == nil {
		t.Error("expected the broken record to carry its error")
	}
	if cm.Encodings[1].Err != nil {
		t.Errorf("expected the valid record to decode, got %v", cm.Encodings[1].Err)
	}
	if g := cm.Lookup(65); g != 65 {
		t.Errorf("expected lookup through the surviving record, got glyph %d", g)
	}
	warned := false
	for _, w := range otf.Warnings() {
		if w.Table == T("cmap") {
			warned = true
		}
	}
	if !warned {
		t.Error("expected a warning for the broken encoding record")
	}
}

func TestCMapFormat12(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.sfnt")
	defer teardown()
	//
	// one group mapping [0x1F600, 0x1F602] to glyphs starting at 7
	b := make([]byte, 16+12)
	putU16(b, 0, 12)
	putU32(b, 4, uint32(len(b))) // length
	putU32(b, 12, 1)             // numGroups
	putU32(b, 16, 0x1F600)
	putU32(b, 20, 0x1F602)
	putU32(b, 24, 7)
	otf := cmapFont(t, 1000, b)
	cmap := otf.CMap
	if cmap.GlyphIndexMap.Format() != 12 {
		t.Fatalf("expected a format 12 sub-table, got %d", cmap.GlyphIndexMap.Format())
	}
	if g := cmap.Lookup(0x1F601); g != 8 {
		t.Errorf("expected glyph 8 for U+1F601, got %d", g)
	}
	if g := cmap.Lookup(0x1F603); g != 0 {
		t.Errorf("expected .notdef outside the group, got %d", g)
	}
	if r := cmap.ReverseLookup(7); r != 0x1F600 {
		t.Errorf("expected reverse lookup to yield U+1F600, got %#x", r)
	}
}

func TestCMapGlyphCountClamp(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.sfnt")
	defer teardown()
	//
	// a mapping yielding glyph 75 in a font of only 20 glyphs must clamp
	otf := cmapFont(t, 20, format4Subtable(10, 0, nil))
	if g := otf.CMap.Lookup(65); g != 0 {
		t.Errorf("expected glyph indices beyond the glyph count to clamp to 0, got %d", g)
	}
}

func TestCMapGoRegular(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.sfnt")
	defer teardown()
	//
	otf, err := Parse(goregular.TTF)
	if err != nil {
		t.Fatal(err)
	}
	table := getTable(otf, "cmap", t)
	cmap := table.Self().AsCMap()
	if cmap == nil {
		t.Fatal("cannot convert cmap table")
	}
	glyph := cmap.Lookup('A')
	if glyph == 0 {
		t.Error("expected glyph position for 'A', got 0")
	}
	t.Logf("glyph ID = %d | 0x%x", glyph, glyph)
	if r := cmap.ReverseLookup(glyph); r != 'A' {
		t.Errorf("expected reverse lookup to return 'A', got %#U", r)
	}
}
