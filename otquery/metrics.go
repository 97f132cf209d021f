package otquery

import (
	"github.com/npillmayer/sfnt/ot"
	"golang.org/x/image/font/sfnt"
)

// --- Font metrics ----------------------------------------------------------

// FontMetrics retrieves selected metrics of a font. Values from table 'hhea'
// take precedence; if hhea is unavailable, the typographic metrics from
// 'OS/2' are used instead.
func FontMetrics(otf *ot.Font) FontMetricsInfo {
	metrics := FontMetricsInfo{}
	if otf == nil {
		return metrics
	}
	if hhea := otf.HHea; hhea != nil {
		metrics.Ascent = sfnt.Units(hhea.Ascender)
		metrics.Descent = sfnt.Units(hhea.Descender)
		metrics.LineGap = sfnt.Units(hhea.LineGap)
		metrics.MaxAdvance = sfnt.Units(hhea.AdvanceWidthMax)
	}
	if metrics.Ascent == 0 && metrics.Descent == 0 {
		if os2 := otf.OS2; os2 != nil {
			tracer().Debugf("falling back to OS/2 typographic metrics")
			metrics.Ascent = sfnt.Units(os2.TypoAscender)
			metrics.Descent = sfnt.Units(os2.TypoDescender)
			metrics.LineGap = sfnt.Units(os2.TypoLineGap)
		}
	}
	if head := otf.Head; head != nil {
		metrics.UnitsPerEm = sfnt.Units(head.UnitsPerEm)
	}
	return metrics
}

// --- Glyph routines --------------------------------------------------------

// GlyphIndex returns the glyph index for a given code-point.
// If the code-point cannot be found, 0 is returned.
//
// From the OpenType specification: character codes that do not correspond to any glyph in
// the font should be mapped to glyph index 0. The glyph at this location must be a special
// glyph representing a missing character, commonly known as '.notdef'.
func GlyphIndex(otf *ot.Font, codepoint rune) ot.GlyphIndex {
	if otf == nil {
		return 0
	}
	return otf.CMap.Lookup(codepoint)
}

// CodePointForGlyph returns the code-point for a given glyph index.
//
// This is an inefficient operation: the code-points contained in the font's CMap
// are checked sequentially if they produce the given glyph.
// If the glyph index does not correspond to a code-point, 0 is returned.
func CodePointForGlyph(otf *ot.Font, gid ot.GlyphIndex) rune {
	if otf == nil || gid == 0 {
		return 0
	}
	return otf.CMap.ReverseLookup(gid)
}

// GlyphMetrics retrieves metrics for a given glyph.
func GlyphMetrics(otf *ot.Font, gid ot.GlyphIndex) GlyphMetricsInfo {
	metrics := GlyphMetricsInfo{}
	if otf == nil {
		return metrics
	}
	//
	// table hmtx: advance width and left side bearing
	if hmtx := otf.HMtx; hmtx != nil {
		if aw, lsb, ok := hmtx.HMetrics(gid); ok {
			metrics.Advance = sfnt.Units(aw)
			metrics.LSB = sfnt.Units(lsb)
		}
	}
	//
	// table glyf: bounding box. glyf has no registered decoder and is kept as
	// a raw byte range, which is fine here; only a table downgraded by a
	// decoding failure is skipped.
	if glyf := otf.Table(ot.T("glyf")); glyf != nil && !downgraded(glyf) {
		metrics.BBox = glyphBBox(otf, glyf, gid)
	}
	// RSB calculation: rsb = aw - (lsb + xMax - xMin)
	// From the OpenType documentation:
	// If a glyph has no contours, xMax/xMin are not defined. The left side bearing indicated
	// in the 'hmtx' table for such glyphs should be zero.
	if !metrics.BBox.IsEmpty() { // leave RSB zero for empty bboxes
		metrics.RSB = metrics.Advance - (metrics.LSB + metrics.BBox.Dx())
	}
	return metrics
}

// glyphBBox reads xMin/yMin/xMax/yMax from a glyph's header in table glyf.
// Glyphs without an outline have a zero-length glyf entry and an empty box.
func glyphBBox(otf *ot.Font, glyf ot.Table, gid ot.GlyphIndex) BoundingBox {
	lo := otf.Table(ot.T("loca"))
	if lo == nil {
		return BoundingBox{}
	}
	loca := lo.Self().AsLoca()
	if loca == nil {
		return BoundingBox{}
	}
	loc, next := loca.IndexToLocation(gid), loca.IndexToLocation(gid+1)
	b := glyf.Binary()
	if loc >= next || int(loc)+10 > len(b) {
		return BoundingBox{} // empty glyph
	}
	b = b[loc:]
	return BoundingBox{
		MinX: sfnt.Units(i16(b[2:])),
		MinY: sfnt.Units(i16(b[4:])),
		MaxX: sfnt.Units(i16(b[6:])),
		MaxY: sfnt.Units(i16(b[8:])),
	}
}

// GlyphVerticalMetrics returns advance height and top side bearing for a
// glyph from tables vhea/vmtx. ok is false if the font carries no usable
// vertical metrics.
func GlyphVerticalMetrics(otf *ot.Font, gid ot.GlyphIndex) (advance sfnt.Units, tsb sfnt.Units, ok bool) {
	if otf == nil || otf.VMtx == nil {
		return 0, 0, false
	}
	ah, t, ok := otf.VMtx.VMetrics(gid)
	return sfnt.Units(ah), sfnt.Units(t), ok
}

// --- Monospace detection and measurement -----------------------------------

// IsFixedPitch reports whether all glyphs of a font share a single advance
// width. The 'post' table flag is trusted when set; otherwise the advance
// widths in 'hmtx' are inspected.
func IsFixedPitch(otf *ot.Font) bool {
	if otf == nil {
		return false
	}
	if post := otf.Post; post != nil && post.IsFixedPitch {
		return true
	}
	hmtx := otf.HMtx
	if hmtx == nil || hmtx.GlyphCount() == 0 {
		return false
	}
	// hmtx omits trailing entries sharing the last advance, so a single long
	// metric means a monospaced font
	if hmtx.NumberOfHMetrics == 1 {
		return true
	}
	first, _, _ := hmtx.HMetrics(0)
	for gid := 1; gid < hmtx.GlyphCount(); gid++ {
		aw, _, ok := hmtx.HMetrics(ot.GlyphIndex(gid))
		if !ok || aw != first {
			return false
		}
	}
	return true
}

// TextWidth measures a string in font units: the sum of the glyph advances
// plus kerning adjustments from a legacy 'kern' table, if present. GPOS pair
// positioning is not applied.
func TextWidth(otf *ot.Font, text string) sfnt.Units {
	if otf == nil || otf.HMtx == nil {
		return 0
	}
	var width sfnt.Units
	var prev ot.GlyphIndex
	first := true
	for _, r := range text {
		gid := GlyphIndex(otf, r)
		if aw, _, ok := otf.HMtx.HMetrics(gid); ok {
			width += sfnt.Units(aw)
		}
		if !first && otf.Kern != nil {
			width += sfnt.Units(otf.Kern.Kerning(prev, gid))
		}
		prev, first = gid, false
	}
	return width
}

// --- Helpers ----------------------------------------------------------

// downgraded reports whether a table is opaque because its decoder failed,
// as opposed to being kept as a raw byte range by design.
func downgraded(t ot.Table) bool {
	op := t.Self().AsOpaque()
	return op != nil && op.Reason != nil
}

func i16(b []byte) int16 {
	return int16(b[0])<<8 | int16(b[1])<<0
}
