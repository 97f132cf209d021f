package ot

/*
From https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2:

OpenType Layout consists of five tables: the Glyph Substitution table (GSUB),
the Glyph Positioning table (GPOS), the Baseline table (BASE),
the Justification table (JSTF), and the Glyph Definition table (GDEF).
These tables use some of the same data formats.

This file holds the formats shared between GPOS and GSUB: the header with its
script/feature/lookup lists, coverage and class-definition tables, anchors,
value records, and the (chained) sequence context formats.
*/

import "fmt"

// --- Layout table chassis --------------------------------------------------

// LayoutTable is a base type for the layout tables GPOS and GSUB, which share
// their outer structure.
type LayoutTable struct {
	header   LayoutHeader
	Scripts  []ScriptRecord
	Features []FeatureRecord
	Lookups  []*Lookup
}

// LayoutHeader represents header information common to the layout tables.
type LayoutHeader struct {
	Major, Minor            uint16
	scriptListOffset        uint16
	featureListOffset       uint16
	lookupListOffset        uint16
	featureVariationsOffset uint32 // version 1.1 only
}

// Header returns the layout table header.
func (t *LayoutTable) Header() LayoutHeader {
	return t.header
}

// Version returns major and minor version numbers for this layout table.
func (h LayoutHeader) Version() (int, int) {
	return int(h.Major), int(h.Minor)
}

// Script returns the script record for a tag, or nil.
func (t *LayoutTable) Script(tag Tag) *ScriptRecord {
	for i := range t.Scripts {
		if t.Scripts[i].Tag == tag {
			return &t.Scripts[i]
		}
	}
	return nil
}

// Feature returns the feature record at a lookup list index, or nil.
func (t *LayoutTable) Feature(i int) *FeatureRecord {
	if i < 0 || i >= len(t.Features) {
		return nil
	}
	return &t.Features[i]
}

// ScriptRecord ties a script tag to its language systems.
type ScriptRecord struct {
	Tag            Tag
	DefaultLangSys *LangSys
	LangSys        []LangSysRecord
}

// Lang returns the language system for a language tag, falling back to the
// script's default language system.
func (r *ScriptRecord) Lang(tag Tag) *LangSys {
	if r == nil {
		return nil
	}
	for i := range r.LangSys {
		if r.LangSys[i].Tag == tag {
			return r.LangSys[i].LangSys
		}
	}
	return r.DefaultLangSys
}

// LangSysRecord ties a language tag to its language system table.
type LangSysRecord struct {
	Tag     Tag
	LangSys *LangSys
}

// LangSys lists the features of one script/language combination.
// RequiredFeature is 0xFFFF if no feature is required.
type LangSys struct {
	RequiredFeature uint16
	FeatureIndices  []uint16
}

// FeatureRecord ties a feature tag to the lookups implementing it.
type FeatureRecord struct {
	Tag           Tag
	LookupIndices []uint16
}

// LayoutLookupFlag carries the lookup qualifiers of a Lookup table.
type LayoutLookupFlag uint16

// Lookup flags, see
// https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2#lookup-table
const (
	LOOKUP_FLAG_RIGHT_TO_LEFT             LayoutLookupFlag = 0x0001
	LOOKUP_FLAG_IGNORE_BASE_GLYPHS        LayoutLookupFlag = 0x0002
	LOOKUP_FLAG_IGNORE_LIGATURES          LayoutLookupFlag = 0x0004
	LOOKUP_FLAG_IGNORE_MARKS              LayoutLookupFlag = 0x0008
	LOOKUP_FLAG_USE_MARK_FILTERING_SET    LayoutLookupFlag = 0x0010
	LOOKUP_FLAG_MARK_ATTACHMENT_TYPE_MASK LayoutLookupFlag = 0xFF00
)

// Lookup is one entry of a layout table's lookup list. Its sub-tables are
// the concrete variant types of the owning table (GPOS or GSUB); a sub-table
// that failed to decode is dropped from Subtables, its siblings kept.
type Lookup struct {
	Type             uint16 // lookup type in the owning table's numbering
	Flag             LayoutLookupFlag
	MarkFilteringSet uint16 // meaningful if LOOKUP_FLAG_USE_MARK_FILTERING_SET is set
	Subtables        []LookupSubtable
}

// LookupSubtable is a decoded lookup sub-table of a layout table. The
// concrete types are the Pos* variants for GPOS and the Subst* variants for
// GSUB, discriminated by lookup type and sub-table format.
type LookupSubtable interface {
	LookupType() uint16
	SubFormat() uint16
}

// subtableParser decodes one lookup sub-table of a concrete layout table.
// depth guards extension recursion.
type subtableParser func(lookupType uint16, c *Cursor, depth int) (LookupSubtable, error)

// parseLayoutTable decodes the shared chassis of GPOS/GSUB: the header and
// the three lists. Sub-table decoding is delegated to parse.
func parseLayoutTable(tag Tag, b binarySegm, ec *errorCollector, parse subtableParser) (LayoutTable, error) {
	var t LayoutTable
	c := cursorOn(b)
	h := &t.header
	h.Major, _ = c.U16()
	h.Minor, _ = c.U16()
	if h.Major != 1 || h.Minor > 1 {
		return t, &UnsupportedDiscriminator{
			Structure: tag.String() + " version",
			Value:     uint32(h.Major)<<16 | uint32(h.Minor),
		}
	}
	h.scriptListOffset, _ = c.U16()
	h.featureListOffset, _ = c.U16()
	var err error
	h.lookupListOffset, err = c.U16()
	if err != nil {
		return t, err
	}
	if h.Minor >= 1 {
		h.featureVariationsOffset, _ = c.U32()
	}
	if t.Scripts, err = parseScriptList(c, int(h.scriptListOffset)); err != nil {
		return t, err
	}
	if t.Features, err = parseFeatureList(c, int(h.featureListOffset)); err != nil {
		return t, err
	}
	if t.Lookups, err = parseLookupList(tag, c, int(h.lookupListOffset), ec, parse); err != nil {
		return t, err
	}
	return t, nil
}

// parseScriptList decodes the ScriptList with its nested Script and LangSys
// tables.
//
// | Type         | Name                      |
// |--------------|---------------------------|
// | uint16       | scriptCount               |
// | ScriptRecord | scriptRecords[scriptCount]|
//
// each record being a tag plus an offset to a Script table, which in turn
// holds a defaultLangSys offset and langSysRecords.
func parseScriptList(c *Cursor, offset int) ([]ScriptRecord, error) {
	list, err := c.SubFrom(offset)
	if err != nil {
		return nil, err
	}
	count, err := list.U16()
	if err != nil {
		return nil, err
	}
	if int(count) > MaxScriptCount {
		return nil, fmt.Errorf("script list: implausible script count %d", count)
	}
	records := make([]ScriptRecord, 0, count)
	for i := 0; i < int(count); i++ {
		tag, _ := list.ReadTag()
		scriptOffset, err := list.U16()
		if err != nil {
			return nil, err
		}
		script, err := list.SubFrom(int(scriptOffset))
		if err != nil {
			return nil, err
		}
		rec := ScriptRecord{Tag: tag}
		dfltOffset, _ := script.U16()
		langSysCount, err := script.U16()
		if err != nil {
			return nil, err
		}
		if dfltOffset != 0 {
			if rec.DefaultLangSys, err = parseLangSys(script, int(dfltOffset)); err != nil {
				return nil, err
			}
		}
		for j := 0; j < int(langSysCount); j++ {
			lsTag, _ := script.ReadTag()
			lsOffset, err := script.U16()
			if err != nil {
				return nil, err
			}
			ls, err := parseLangSys(script, int(lsOffset))
			if err != nil {
				return nil, err
			}
			rec.LangSys = append(rec.LangSys, LangSysRecord{Tag: lsTag, LangSys: ls})
		}
		records = append(records, rec)
	}
	return records, nil
}

// parseLangSys decodes a LangSys table relative to its parent Script table.
func parseLangSys(script *Cursor, offset int) (*LangSys, error) {
	c, err := script.SubFrom(offset)
	if err != nil {
		return nil, err
	}
	if _, err := c.U16(); err != nil { // lookupOrderOffset, reserved as NULL
		return nil, err
	}
	ls := &LangSys{}
	ls.RequiredFeature, _ = c.U16()
	featureCount, err := c.U16()
	if err != nil {
		return nil, err
	}
	if ls.FeatureIndices, err = c.U16s(int(featureCount)); err != nil {
		return nil, err
	}
	return ls, nil
}

// parseFeatureList decodes the FeatureList and each Feature table's lookup
// indices. FeatureParams offsets are ignored.
func parseFeatureList(c *Cursor, offset int) ([]FeatureRecord, error) {
	list, err := c.SubFrom(offset)
	if err != nil {
		return nil, err
	}
	count, err := list.U16()
	if err != nil {
		return nil, err
	}
	if int(count) > MaxFeatureCount {
		return nil, fmt.Errorf("feature list: implausible feature count %d", count)
	}
	records := make([]FeatureRecord, 0, count)
	for i := 0; i < int(count); i++ {
		tag, _ := list.ReadTag()
		featureOffset, err := list.U16()
		if err != nil {
			return nil, err
		}
		feature, err := list.SubFrom(int(featureOffset))
		if err != nil {
			return nil, err
		}
		if _, err := feature.U16(); err != nil { // featureParamsOffset
			return nil, err
		}
		lookupCount, err := feature.U16()
		if err != nil {
			return nil, err
		}
		rec := FeatureRecord{Tag: tag}
		if rec.LookupIndices, err = feature.U16s(int(lookupCount)); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// parseLookupList decodes the LookupList and every Lookup table. A failing
// sub-table is dropped and reported through ec; a failing Lookup keeps its
// slot with no sub-tables so that lookup indices stay stable.
func parseLookupList(tag Tag, c *Cursor, offset int, ec *errorCollector,
	parse subtableParser) ([]*Lookup, error) {
	//
	list, err := c.SubFrom(offset)
	if err != nil {
		return nil, err
	}
	count, err := list.U16()
	if err != nil {
		return nil, err
	}
	if int(count) > MaxLookupCount {
		return nil, fmt.Errorf("lookup list: implausible lookup count %d", count)
	}
	lookups := make([]*Lookup, 0, count)
	for i := 0; i < int(count); i++ {
		lookupOffset, err := list.U16()
		if err != nil {
			return nil, err
		}
		lookup, err := parseLookup(list, int(lookupOffset), parse)
		if err != nil {
			ec.addError(tag, fmt.Sprintf("Lookup[%d]", i), err.Error(), SeverityMinor, 0)
			lookup = &Lookup{}
		}
		lookups = append(lookups, lookup)
	}
	return lookups, nil
}

func parseLookup(list *Cursor, offset int, parse subtableParser) (*Lookup, error) {
	c, err := list.SubFrom(offset)
	if err != nil {
		return nil, err
	}
	l := &Lookup{}
	l.Type, _ = c.U16()
	flag, _ := c.U16()
	l.Flag = LayoutLookupFlag(flag)
	subTableCount, err := c.U16()
	if err != nil {
		return nil, err
	}
	offsets, err := c.U16s(int(subTableCount))
	if err != nil {
		return nil, err
	}
	if l.Flag&LOOKUP_FLAG_USE_MARK_FILTERING_SET != 0 {
		if l.MarkFilteringSet, err = c.U16(); err != nil {
			return nil, err
		}
	}
	for i, subOffset := range offsets {
		sub, err := c.SubFrom(int(subOffset))
		if err == nil {
			var st LookupSubtable
			if st, err = parse(l.Type, sub, 0); err == nil {
				l.Subtables = append(l.Subtables, st)
				continue
			}
		}
		tracer().Debugf("lookup type %d sub-table %d dropped: %v", l.Type, i, err)
	}
	return l, nil
}

// --- Coverage --------------------------------------------------------------

// Coverage lists the glyphs a lookup sub-table applies to and assigns each a
// coverage index. Format 1 lists glyph IDs, format 2 ranges of them.
type Coverage struct {
	CoverageFormat uint16
	glyphs         []GlyphIndex
	ranges         []coverageRange
}

type coverageRange struct {
	start, end GlyphIndex
	startIndex uint16
}

// parseCoverage decodes a Coverage table at the cursor's origin.
func parseCoverage(c *Cursor) (Coverage, error) {
	var cov Coverage
	format, err := c.U16()
	if err != nil {
		return cov, err
	}
	cov.CoverageFormat = format
	count, err := c.U16()
	if err != nil {
		return cov, err
	}
	if int(count) > MaxCoverageCount {
		return cov, fmt.Errorf("coverage: implausible count %d", count)
	}
	switch format {
	case 1:
		if cov.glyphs, err = c.GlyphIDs(int(count)); err != nil {
			return cov, err
		}
	case 2:
		cov.ranges = make([]coverageRange, count)
		for i := range cov.ranges {
			r := &cov.ranges[i]
			r.start, _ = c.GlyphID()
			r.end, _ = c.GlyphID()
			if r.startIndex, err = c.U16(); err != nil {
				return cov, err
			}
			if r.end < r.start {
				return cov, fmt.Errorf("coverage: range %d runs backwards", i)
			}
		}
	default:
		return cov, &UnsupportedDiscriminator{Structure: "coverage format", Value: uint32(format)}
	}
	return cov, nil
}

// parseCoverageAt decodes a Coverage table at offset within parent's segment.
func parseCoverageAt(parent *Cursor, offset int) (Coverage, error) {
	c, err := parent.SubFrom(offset)
	if err != nil {
		return Coverage{}, err
	}
	return parseCoverage(c)
}

// Index returns the coverage index of glyph g, and whether g is covered.
func (cov Coverage) Index(g GlyphIndex) (int, bool) {
	if cov.CoverageFormat == 1 {
		lo, hi := 0, len(cov.glyphs)
		for lo < hi {
			mid := (lo + hi) / 2
			if cov.glyphs[mid] < g {
				lo = mid + 1
			} else {
				hi = mid
			}
		}
		if lo < len(cov.glyphs) && cov.glyphs[lo] == g {
			return lo, true
		}
		return 0, false
	}
	for _, r := range cov.ranges {
		if g >= r.start && g <= r.end {
			return int(r.startIndex) + int(g-r.start), true
		}
	}
	return 0, false
}

// Count returns the number of covered glyphs.
func (cov Coverage) Count() int {
	if cov.CoverageFormat == 1 {
		return len(cov.glyphs)
	}
	n := 0
	for _, r := range cov.ranges {
		n += int(r.end-r.start) + 1
	}
	return n
}

// --- Class definitions -----------------------------------------------------

// ClassDef partitions glyphs into classes. Glyphs not mentioned are class 0.
type ClassDef struct {
	ClassDefFormat uint16
	startGlyph     GlyphIndex
	classes        []uint16
	ranges         []classRange
	maxClass       uint16
}

type classRange struct {
	start, end GlyphIndex
	class      uint16
}

// parseClassDef decodes a ClassDef table at the cursor's origin.
func parseClassDef(c *Cursor) (ClassDef, error) {
	var cd ClassDef
	format, err := c.U16()
	if err != nil {
		return cd, err
	}
	cd.ClassDefFormat = format
	switch format {
	case 1:
		cd.startGlyph, _ = c.GlyphID()
		count, err := c.U16()
		if err != nil {
			return cd, err
		}
		if int(count) > MaxClassDefCount {
			return cd, fmt.Errorf("class definitions: implausible count %d", count)
		}
		if cd.classes, err = c.U16s(int(count)); err != nil {
			return cd, err
		}
		for _, cl := range cd.classes {
			if cl > cd.maxClass {
				cd.maxClass = cl
			}
		}
	case 2:
		count, err := c.U16()
		if err != nil {
			return cd, err
		}
		if int(count) > MaxClassDefCount {
			return cd, fmt.Errorf("class definitions: implausible count %d", count)
		}
		cd.ranges = make([]classRange, count)
		for i := range cd.ranges {
			r := &cd.ranges[i]
			r.start, _ = c.GlyphID()
			r.end, _ = c.GlyphID()
			if r.class, err = c.U16(); err != nil {
				return cd, err
			}
			if r.end < r.start {
				return cd, fmt.Errorf("class definitions: range %d runs backwards", i)
			}
			if r.class > cd.maxClass {
				cd.maxClass = r.class
			}
		}
	default:
		return cd, &UnsupportedDiscriminator{Structure: "class definition format", Value: uint32(format)}
	}
	return cd, nil
}

func parseClassDefAt(parent *Cursor, offset int) (ClassDef, error) {
	c, err := parent.SubFrom(offset)
	if err != nil {
		return ClassDef{}, err
	}
	return parseClassDef(c)
}

// Class returns the class of glyph g, 0 if unassigned.
func (cd ClassDef) Class(g GlyphIndex) uint16 {
	if cd.ClassDefFormat == 1 {
		idx := int(g) - int(cd.startGlyph)
		if idx < 0 || idx >= len(cd.classes) {
			return 0
		}
		return cd.classes[idx]
	}
	for _, r := range cd.ranges {
		if g >= r.start && g <= r.end {
			return r.class
		}
	}
	return 0
}

// ClassCount returns the number of classes, i.e. the highest class + 1.
func (cd ClassDef) ClassCount() int {
	return int(cd.maxClass) + 1
}

// --- Value records ---------------------------------------------------------

// ValueFormat is a bitmask that describes which fields are present in a
// ValueRecord.
// https://docs.microsoft.com/en-us/typography/opentype/spec/gpos#value-record
type ValueFormat uint16

const (
	ValueFormatXPlacement ValueFormat = 0x0001 // Includes horizontal adjustment for placement
	ValueFormatYPlacement ValueFormat = 0x0002 // Includes vertical adjustment for placement
	ValueFormatXAdvance   ValueFormat = 0x0004 // Includes horizontal adjustment for advance
	ValueFormatYAdvance   ValueFormat = 0x0008 // Includes vertical adjustment for advance
	ValueFormatXPlaDevice ValueFormat = 0x0010 // Includes Device table for horizontal placement
	ValueFormatYPlaDevice ValueFormat = 0x0020 // Includes Device table for vertical placement
	ValueFormatXAdvDevice ValueFormat = 0x0040 // Includes Device table for horizontal advance
	ValueFormatYAdvDevice ValueFormat = 0x0080 // Includes Device table for vertical advance
)

// size returns the byte size of a value record with this format.
func (vf ValueFormat) size() int {
	n := 0
	for bits := uint16(vf) & 0x00FF; bits != 0; bits >>= 1 {
		if bits&1 != 0 {
			n += 2
		}
	}
	return n
}

// ValueRecord represents a positioning adjustment for a glyph.
// The fields actually read from the font depend on the ValueFormat bitmask;
// absent fields stay zero. Device entries are offsets relative to the
// enclosing sub-table and are not resolved further.
type ValueRecord struct {
	XPlacement int16  // Horizontal adjustment for placement, in design units
	YPlacement int16  // Vertical adjustment for placement, in design units
	XAdvance   int16  // Horizontal adjustment for advance, in design units
	YAdvance   int16  // Vertical adjustment for advance, in design units
	XPlaDevice uint16 // Offset to Device table for horizontal placement (may be NULL)
	YPlaDevice uint16 // Offset to Device table for vertical placement (may be NULL)
	XAdvDevice uint16 // Offset to Device table for horizontal advance (may be NULL)
	YAdvDevice uint16 // Offset to Device table for vertical advance (may be NULL)
}

// parseValueRecord reads the fields selected by format, in spec order.
func parseValueRecord(c *Cursor, format ValueFormat) (ValueRecord, error) {
	var vr ValueRecord
	var err error
	if format&ValueFormatXPlacement != 0 {
		vr.XPlacement, err = c.I16()
	}
	if format&ValueFormatYPlacement != 0 {
		vr.YPlacement, err = c.I16()
	}
	if format&ValueFormatXAdvance != 0 {
		vr.XAdvance, err = c.I16()
	}
	if format&ValueFormatYAdvance != 0 {
		vr.YAdvance, err = c.I16()
	}
	if format&ValueFormatXPlaDevice != 0 {
		vr.XPlaDevice, err = c.U16()
	}
	if format&ValueFormatYPlaDevice != 0 {
		vr.YPlaDevice, err = c.U16()
	}
	if format&ValueFormatXAdvDevice != 0 {
		vr.XAdvDevice, err = c.U16()
	}
	if format&ValueFormatYAdvDevice != 0 {
		vr.YAdvDevice, err = c.U16()
	}
	return vr, err
}

// --- Anchors ---------------------------------------------------------------

// AnchorFormat represents the format of an Anchor table.
type AnchorFormat uint16

const (
	AnchorFormat1 AnchorFormat = 1 // Design units only
	AnchorFormat2 AnchorFormat = 2 // Design units plus contour point
	AnchorFormat3 AnchorFormat = 3 // Design units plus Device tables
)

// Anchor represents an attachment point on a glyph.
// https://docs.microsoft.com/en-us/typography/opentype/spec/gpos#anchor-tables
type Anchor struct {
	Format        AnchorFormat // Format identifier
	XCoordinate   int16        // Horizontal value, in design units
	YCoordinate   int16        // Vertical value, in design units
	AnchorPoint   uint16       // Index to glyph contour point (Format 2 only)
	XDeviceOffset uint16       // Offset to Device table for X coordinate (Format 3 only)
	YDeviceOffset uint16       // Offset to Device table for Y coordinate (Format 3 only)
}

// parseAnchor decodes an Anchor table at offset within parent's segment.
// Offset 0 is a valid NULL anchor and yields nil.
func parseAnchor(parent *Cursor, offset int) (*Anchor, error) {
	if offset == 0 {
		return nil, nil
	}
	c, err := parent.SubFrom(offset)
	if err != nil {
		return nil, err
	}
	format, err := c.U16()
	if err != nil {
		return nil, err
	}
	a := &Anchor{Format: AnchorFormat(format)}
	a.XCoordinate, _ = c.I16()
	if a.YCoordinate, err = c.I16(); err != nil {
		return nil, err
	}
	switch AnchorFormat(format) {
	case AnchorFormat1:
	case AnchorFormat2:
		if a.AnchorPoint, err = c.U16(); err != nil {
			return nil, err
		}
	case AnchorFormat3:
		a.XDeviceOffset, _ = c.U16()
		if a.YDeviceOffset, err = c.U16(); err != nil {
			return nil, err
		}
	default:
		return nil, &UnsupportedDiscriminator{Structure: "anchor format", Value: uint32(format)}
	}
	return a, nil
}

// --- Sequence contexts (shared by GPOS 7/8 and GSUB 5/6) -------------------

// SequenceLookupRecord tells which nested lookup to apply at which position
// of a matched sequence.
type SequenceLookupRecord struct {
	SequenceIndex   uint16
	LookupListIndex uint16
}

// SequenceRule is one rule of a (chained) sequence context. For format 1 the
// Input/Backtrack/Lookahead entries are glyph IDs, for format 2 class values.
// Input holds the sequence positions 1.., position 0 being implied by the
// rule set's coverage resp. class.
type SequenceRule struct {
	Backtrack []uint16
	Input     []uint16
	Lookahead []uint16
	Lookups   []SequenceLookupRecord
}

// SequenceContext is the decoded common shape of contextual lookups, GPOS
// types 7/8 and GSUB types 5/6. Which fields are populated depends on Format
// and on whether the context is chained:
//
// | Format | populated                                           |
// |--------|-----------------------------------------------------|
// | 1      | Coverage, RuleSets (glyph-keyed)                    |
// | 2      | Coverage, class defs, RuleSets (class-keyed)        |
// | 3      | coverage slices per position, Lookups               |
type SequenceContext struct {
	Format             uint16
	Chained            bool
	Coverage           Coverage
	InputClassDef      ClassDef
	BacktrackClassDef  ClassDef
	LookaheadClassDef  ClassDef
	RuleSets           [][]SequenceRule
	BacktrackCoverages []Coverage
	InputCoverages     []Coverage
	LookaheadCoverages []Coverage
	Lookups            []SequenceLookupRecord
}

func parseSequenceLookupRecords(c *Cursor, count int) ([]SequenceLookupRecord, error) {
	recs := make([]SequenceLookupRecord, count)
	var err error
	for i := range recs {
		recs[i].SequenceIndex, _ = c.U16()
		if recs[i].LookupListIndex, err = c.U16(); err != nil {
			return nil, err
		}
	}
	return recs, nil
}

// parseSequenceContext decodes a SequenceContext or ChainedSequenceContext
// table at the cursor's origin, formats 1 to 3.
func parseSequenceContext(c *Cursor, chained bool) (*SequenceContext, error) {
	format, err := c.U16()
	if err != nil {
		return nil, err
	}
	ctx := &SequenceContext{Format: format, Chained: chained}
	switch format {
	case 1, 2:
		coverageOffset, err := c.U16()
		if err != nil {
			return nil, err
		}
		if ctx.Coverage, err = parseCoverageAt(c, int(coverageOffset)); err != nil {
			return nil, err
		}
		if format == 2 {
			if chained {
				backOffset, _ := c.U16()
				inputOffset, _ := c.U16()
				aheadOffset, err := c.U16()
				if err != nil {
					return nil, err
				}
				if backOffset != 0 {
					if ctx.BacktrackClassDef, err = parseClassDefAt(c, int(backOffset)); err != nil {
						return nil, err
					}
				}
				if ctx.InputClassDef, err = parseClassDefAt(c, int(inputOffset)); err != nil {
					return nil, err
				}
				if aheadOffset != 0 {
					if ctx.LookaheadClassDef, err = parseClassDefAt(c, int(aheadOffset)); err != nil {
						return nil, err
					}
				}
			} else {
				classDefOffset, err := c.U16()
				if err != nil {
					return nil, err
				}
				if ctx.InputClassDef, err = parseClassDefAt(c, int(classDefOffset)); err != nil {
					return nil, err
				}
			}
		}
		ruleSetCount, err := c.U16()
		if err != nil {
			return nil, err
		}
		ruleSetOffsets, err := c.U16s(int(ruleSetCount))
		if err != nil {
			return nil, err
		}
		ctx.RuleSets = make([][]SequenceRule, ruleSetCount)
		for i, rsOffset := range ruleSetOffsets {
			if rsOffset == 0 {
				continue // NULL rule set: no rules for this coverage index/class
			}
			if ctx.RuleSets[i], err = parseSequenceRuleSet(c, int(rsOffset), chained); err != nil {
				return nil, err
			}
		}
	case 3:
		if chained {
			if ctx.BacktrackCoverages, err = parseCoverageSlice(c); err != nil {
				return nil, err
			}
			if ctx.InputCoverages, err = parseCoverageSlice(c); err != nil {
				return nil, err
			}
			if ctx.LookaheadCoverages, err = parseCoverageSlice(c); err != nil {
				return nil, err
			}
			lookupCount, err := c.U16()
			if err != nil {
				return nil, err
			}
			if ctx.Lookups, err = parseSequenceLookupRecords(c, int(lookupCount)); err != nil {
				return nil, err
			}
		} else {
			glyphCount, _ := c.U16()
			lookupCount, err := c.U16()
			if err != nil {
				return nil, err
			}
			offsets, err := c.U16s(int(glyphCount))
			if err != nil {
				return nil, err
			}
			ctx.InputCoverages = make([]Coverage, len(offsets))
			for i, off := range offsets {
				if ctx.InputCoverages[i], err = parseCoverageAt(c, int(off)); err != nil {
					return nil, err
				}
			}
			if ctx.Lookups, err = parseSequenceLookupRecords(c, int(lookupCount)); err != nil {
				return nil, err
			}
		}
	default:
		return nil, &UnsupportedDiscriminator{Structure: "sequence context format", Value: uint32(format)}
	}
	return ctx, nil
}

// parseCoverageSlice reads a count-prefixed array of coverage offsets and
// decodes each coverage table.
func parseCoverageSlice(c *Cursor) ([]Coverage, error) {
	count, err := c.U16()
	if err != nil {
		return nil, err
	}
	offsets, err := c.U16s(int(count))
	if err != nil {
		return nil, err
	}
	covs := make([]Coverage, len(offsets))
	for i, off := range offsets {
		if covs[i], err = parseCoverageAt(c, int(off)); err != nil {
			return nil, err
		}
	}
	return covs, nil
}

// parseSequenceRuleSet decodes one rule set of a format 1/2 context.
func parseSequenceRuleSet(parent *Cursor, offset int, chained bool) ([]SequenceRule, error) {
	set, err := parent.SubFrom(offset)
	if err != nil {
		return nil, err
	}
	ruleCount, err := set.U16()
	if err != nil {
		return nil, err
	}
	ruleOffsets, err := set.U16s(int(ruleCount))
	if err != nil {
		return nil, err
	}
	rules := make([]SequenceRule, 0, ruleCount)
	for _, rOffset := range ruleOffsets {
		c, err := set.SubFrom(int(rOffset))
		if err != nil {
			return nil, err
		}
		var rule SequenceRule
		if chained {
			backCount, err := c.U16()
			if err != nil {
				return nil, err
			}
			if rule.Backtrack, err = c.U16s(int(backCount)); err != nil {
				return nil, err
			}
			inputCount, err := c.U16()
			if err != nil {
				return nil, err
			}
			if inputCount == 0 {
				return nil, fmt.Errorf("sequence rule with empty input sequence")
			}
			if rule.Input, err = c.U16s(int(inputCount) - 1); err != nil {
				return nil, err
			}
			aheadCount, err := c.U16()
			if err != nil {
				return nil, err
			}
			if rule.Lookahead, err = c.U16s(int(aheadCount)); err != nil {
				return nil, err
			}
			lookupCount, err := c.U16()
			if err != nil {
				return nil, err
			}
			if rule.Lookups, err = parseSequenceLookupRecords(c, int(lookupCount)); err != nil {
				return nil, err
			}
		} else {
			glyphCount, err := c.U16()
			if err != nil {
				return nil, err
			}
			if glyphCount == 0 {
				return nil, fmt.Errorf("sequence rule with empty input sequence")
			}
			lookupCount, err := c.U16()
			if err != nil {
				return nil, err
			}
			if rule.Input, err = c.U16s(int(glyphCount) - 1); err != nil {
				return nil, err
			}
			if rule.Lookups, err = parseSequenceLookupRecords(c, int(lookupCount)); err != nil {
				return nil, err
			}
		}
		rules = append(rules, rule)
	}
	return rules, nil
}
