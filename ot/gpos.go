package ot

import (
	"fmt"
	"strconv"
)

// GPosTable is a type representing an OpenType GPOS table
// (see https://docs.microsoft.com/en-us/typography/opentype/spec/gpos).
// Its lookup sub-tables are decoded into the Pos* variant types below,
// discriminated by lookup type and sub-table format.
type GPosTable struct {
	tableBase
	LayoutTable
}

func newGPosTable(tag Tag, b binarySegm, offset, size uint32) *GPosTable {
	t := &GPosTable{}
	t.tableBase = makeTableBase(tag, b, offset, size)
	t.self = t
	return t
}

var _ Table = &GPosTable{}

// GPOS Lookup Type Enumeration
const (
	GPosLookupTypeSingle            uint16 = 1 // Adjust position of a single glyph
	GPosLookupTypePair              uint16 = 2 // Adjust position of a pair of glyphs
	GPosLookupTypeCursive           uint16 = 3 // Attach cursive glyphs
	GPosLookupTypeMarkToBase        uint16 = 4 // Attach a combining mark to a base glyph
	GPosLookupTypeMarkToLigature    uint16 = 5 // Attach a combining mark to a ligature
	GPosLookupTypeMarkToMark        uint16 = 6 // Attach a combining mark to another mark
	GPosLookupTypeContextPos        uint16 = 7 // Position one or more glyphs in context
	GPosLookupTypeChainedContextPos uint16 = 8 // Position one or more glyphs in chained context
	GPosLookupTypeExtensionPos      uint16 = 9 // Extension mechanism for other positionings
)

const gposLookupTypeNames = "Single|Pair|Cursive|MarkToBase|MarkToLigature|MarkToMark|ContextPos|Chained|Ext"

var gposLookupTypeInx = [...]int{0, 7, 12, 20, 31, 46, 57, 68, 76, 80}

// GPosLookupTypeString returns a GPOS lookup type as a string.
func GPosLookupTypeString(lt uint16) string {
	if lt >= 1 && lt <= GPosLookupTypeExtensionPos {
		lt -= 1
		return gposLookupTypeNames[gposLookupTypeInx[lt] : gposLookupTypeInx[lt+1]-1]
	}
	return strconv.Itoa(int(lt))
}

// parseGPos is the table decoder for tag GPOS.
func parseGPos(ctx *parseContext, entry DirectoryEntry, b binarySegm) (Table, error) {
	t := newGPosTable(entry.Tag, b, entry.Offset, entry.Length)
	lyt, err := parseLayoutTable(entry.Tag, b, ctx.ec, parseGPosSubtable)
	if err != nil {
		return nil, err
	}
	t.LayoutTable = lyt
	tracer().Debugf("GPOS has %d lookups", len(t.Lookups))
	return t, nil
}

// parseGPosSubtable dispatches on the GPOS lookup type. Extension sub-tables
// (type 9) are resolved in place: the sub-table stored on the lookup is the
// wrapped one, while Lookup.Type keeps the value 9 from the lookup table.
func parseGPosSubtable(lookupType uint16, c *Cursor, depth int) (LookupSubtable, error) {
	switch lookupType {
	case GPosLookupTypeSingle:
		return parseSinglePos(c)
	case GPosLookupTypePair:
		return parsePairPos(c)
	case GPosLookupTypeCursive:
		return parseCursivePos(c)
	case GPosLookupTypeMarkToBase, GPosLookupTypeMarkToMark:
		return parseMarkAttachPos(c, lookupType)
	case GPosLookupTypeMarkToLigature:
		return parseMarkLigPos(c)
	case GPosLookupTypeContextPos:
		return parseContextPos(c)
	case GPosLookupTypeChainedContextPos:
		return parseChainedContextPos(c)
	case GPosLookupTypeExtensionPos:
		return parseExtensionPos(c, depth)
	}
	return nil, &UnsupportedDiscriminator{Structure: "GPOS lookup type", Value: uint32(lookupType)}
}

// --- Type 1: single adjustment ---------------------------------------------

// SinglePos adjusts the position of single glyphs. Format 1 applies one value
// record to every covered glyph, format 2 one per coverage index; after
// decoding, Value yields the record for a glyph either way.
type SinglePos struct {
	PosFormat uint16
	Coverage  Coverage
	Format    ValueFormat
	Values    []ValueRecord
}

func (p *SinglePos) LookupType() uint16 { return GPosLookupTypeSingle }
func (p *SinglePos) SubFormat() uint16  { return p.PosFormat }

// Value returns the adjustment for glyph g, if g is covered.
func (p *SinglePos) Value(g GlyphIndex) (ValueRecord, bool) {
	inx, ok := p.Coverage.Index(g)
	if !ok {
		return ValueRecord{}, false
	}
	if p.PosFormat == 1 {
		inx = 0
	}
	if inx >= len(p.Values) {
		return ValueRecord{}, false
	}
	return p.Values[inx], true
}

func parseSinglePos(c *Cursor) (LookupSubtable, error) {
	p := &SinglePos{}
	format, err := c.U16()
	if err != nil {
		return nil, err
	}
	p.PosFormat = format
	coverageOffset, _ := c.U16()
	vf, err := c.U16()
	if err != nil {
		return nil, err
	}
	p.Format = ValueFormat(vf)
	switch format {
	case 1:
		vr, err := parseValueRecord(c, p.Format)
		if err != nil {
			return nil, err
		}
		p.Values = []ValueRecord{vr}
	case 2:
		valueCount, err := c.U16()
		if err != nil {
			return nil, err
		}
		p.Values = make([]ValueRecord, valueCount)
		for i := range p.Values {
			if p.Values[i], err = parseValueRecord(c, p.Format); err != nil {
				return nil, err
			}
		}
	default:
		return nil, &UnsupportedDiscriminator{Structure: "SinglePos format", Value: uint32(format)}
	}
	if p.Coverage, err = parseCoverageAt(c, int(coverageOffset)); err != nil {
		return nil, err
	}
	return p, nil
}

// --- Type 2: pair adjustment -----------------------------------------------

// PairValueRecord represents a kerning pair with positioning adjustments.
type PairValueRecord struct {
	SecondGlyph GlyphIndex  // Glyph ID of second glyph in pair
	Value1      ValueRecord // Positioning for first glyph
	Value2      ValueRecord // Positioning for second glyph
}

// PairValue is one cell of the format 2 class matrix.
type PairValue struct {
	Value1 ValueRecord
	Value2 ValueRecord
}

// PairPos adjusts pairs of glyphs. Format 1 enumerates glyph pairs per first
// glyph, format 2 positions by class pair through a matrix.
type PairPos struct {
	PosFormat        uint16
	Coverage         Coverage // covers the first glyph of each pair
	Format1, Format2 ValueFormat
	Sets             [][]PairValueRecord // format 1: per coverage index of first glyph
	ClassDef1        ClassDef            // format 2
	ClassDef2        ClassDef            // format 2
	ClassMatrix      [][]PairValue       // format 2: [class1][class2]
}

func (p *PairPos) LookupType() uint16 { return GPosLookupTypePair }
func (p *PairPos) SubFormat() uint16  { return p.PosFormat }

// Pair returns the adjustments for a glyph pair, if the pair is positioned.
func (p *PairPos) Pair(first, second GlyphIndex) (PairValue, bool) {
	inx, ok := p.Coverage.Index(first)
	if !ok {
		return PairValue{}, false
	}
	if p.PosFormat == 1 {
		if inx >= len(p.Sets) {
			return PairValue{}, false
		}
		for _, rec := range p.Sets[inx] {
			if rec.SecondGlyph == second {
				return PairValue{Value1: rec.Value1, Value2: rec.Value2}, true
			}
		}
		return PairValue{}, false
	}
	c1, c2 := p.ClassDef1.Class(first), p.ClassDef2.Class(second)
	if int(c1) >= len(p.ClassMatrix) || int(c2) >= len(p.ClassMatrix[c1]) {
		return PairValue{}, false
	}
	return p.ClassMatrix[c1][c2], true
}

func parsePairPos(c *Cursor) (LookupSubtable, error) {
	p := &PairPos{}
	format, err := c.U16()
	if err != nil {
		return nil, err
	}
	p.PosFormat = format
	coverageOffset, _ := c.U16()
	vf1, _ := c.U16()
	vf2, err := c.U16()
	if err != nil {
		return nil, err
	}
	p.Format1, p.Format2 = ValueFormat(vf1), ValueFormat(vf2)
	switch format {
	case 1:
		setCount, err := c.U16()
		if err != nil {
			return nil, err
		}
		setOffsets, err := c.U16s(int(setCount))
		if err != nil {
			return nil, err
		}
		p.Sets = make([][]PairValueRecord, setCount)
		for i, off := range setOffsets {
			set, err := c.SubFrom(int(off))
			if err != nil {
				return nil, err
			}
			pairCount, err := set.U16()
			if err != nil {
				return nil, err
			}
			recs := make([]PairValueRecord, pairCount)
			for j := range recs {
				recs[j].SecondGlyph, _ = set.GlyphID()
				if recs[j].Value1, err = parseValueRecord(set, p.Format1); err != nil {
					return nil, err
				}
				if recs[j].Value2, err = parseValueRecord(set, p.Format2); err != nil {
					return nil, err
				}
			}
			p.Sets[i] = recs
		}
	case 2:
		cd1Offset, _ := c.U16()
		cd2Offset, err := c.U16()
		if err != nil {
			return nil, err
		}
		class1Count, _ := c.U16()
		class2Count, err := c.U16()
		if err != nil {
			return nil, err
		}
		matrixCells, ok := checkedMulInt(int(class1Count), int(class2Count))
		if !ok || matrixCells > MaxGlyphCount {
			return nil, fmt.Errorf("PairPos: implausible class matrix %d x %d", class1Count, class2Count)
		}
		p.ClassMatrix = make([][]PairValue, class1Count)
		for i := range p.ClassMatrix {
			row := make([]PairValue, class2Count)
			for j := range row {
				if row[j].Value1, err = parseValueRecord(c, p.Format1); err != nil {
					return nil, err
				}
				if row[j].Value2, err = parseValueRecord(c, p.Format2); err != nil {
					return nil, err
				}
			}
			p.ClassMatrix[i] = row
		}
		if p.ClassDef1, err = parseClassDefAt(c, int(cd1Offset)); err != nil {
			return nil, err
		}
		if p.ClassDef2, err = parseClassDefAt(c, int(cd2Offset)); err != nil {
			return nil, err
		}
	default:
		return nil, &UnsupportedDiscriminator{Structure: "PairPos format", Value: uint32(format)}
	}
	if p.Coverage, err = parseCoverageAt(c, int(coverageOffset)); err != nil {
		return nil, err
	}
	return p, nil
}

// --- Type 3: cursive attachment --------------------------------------------

// EntryExitRecord holds the attachment anchors of one covered glyph. Either
// anchor may be nil (NULL offset in the font).
type EntryExitRecord struct {
	Entry *Anchor
	Exit  *Anchor
}

// CursivePos attaches glyphs along a cursive connection: the exit anchor of
// one glyph meets the entry anchor of the next.
type CursivePos struct {
	PosFormat  uint16
	Coverage   Coverage
	EntryExits []EntryExitRecord // per coverage index
}

func (p *CursivePos) LookupType() uint16 { return GPosLookupTypeCursive }
func (p *CursivePos) SubFormat() uint16  { return p.PosFormat }

func parseCursivePos(c *Cursor) (LookupSubtable, error) {
	p := &CursivePos{}
	format, err := c.U16()
	if err != nil {
		return nil, err
	}
	if format != 1 {
		return nil, &UnsupportedDiscriminator{Structure: "CursivePos format", Value: uint32(format)}
	}
	p.PosFormat = format
	coverageOffset, _ := c.U16()
	count, err := c.U16()
	if err != nil {
		return nil, err
	}
	p.EntryExits = make([]EntryExitRecord, count)
	for i := range p.EntryExits {
		entryOffset, _ := c.U16()
		exitOffset, err := c.U16()
		if err != nil {
			return nil, err
		}
		if p.EntryExits[i].Entry, err = parseAnchor(c, int(entryOffset)); err != nil {
			return nil, err
		}
		if p.EntryExits[i].Exit, err = parseAnchor(c, int(exitOffset)); err != nil {
			return nil, err
		}
	}
	if p.Coverage, err = parseCoverageAt(c, int(coverageOffset)); err != nil {
		return nil, err
	}
	return p, nil
}

// --- Types 4 and 6: mark attachment ----------------------------------------

// MarkAnchor pairs a mark's class with its attachment anchor.
type MarkAnchor struct {
	Class  uint16
	Anchor *Anchor
}

// MarkAttachPos covers both mark-to-base (type 4) and mark-to-mark (type 6)
// positioning: marks attach to an anchor matrix indexed by base (resp. mark2)
// coverage index and mark class. The two types share their wire format.
type MarkAttachPos struct {
	Type           uint16 // 4 or 6
	PosFormat      uint16
	MarkCoverage   Coverage
	BaseCoverage   Coverage // mark2 coverage for type 6
	MarkClassCount uint16
	Marks          []MarkAnchor // per mark coverage index
	Bases          [][]*Anchor  // [base index][mark class]
}

func (p *MarkAttachPos) LookupType() uint16 { return p.Type }
func (p *MarkAttachPos) SubFormat() uint16  { return p.PosFormat }

func parseMarkAttachPos(c *Cursor, lookupType uint16) (LookupSubtable, error) {
	p := &MarkAttachPos{Type: lookupType}
	format, err := c.U16()
	if err != nil {
		return nil, err
	}
	if format != 1 {
		return nil, &UnsupportedDiscriminator{Structure: "MarkBasePos format", Value: uint32(format)}
	}
	p.PosFormat = format
	markCovOffset, _ := c.U16()
	baseCovOffset, _ := c.U16()
	p.MarkClassCount, _ = c.U16()
	markArrayOffset, _ := c.U16()
	baseArrayOffset, err := c.U16()
	if err != nil {
		return nil, err
	}
	if p.MarkCoverage, err = parseCoverageAt(c, int(markCovOffset)); err != nil {
		return nil, err
	}
	if p.BaseCoverage, err = parseCoverageAt(c, int(baseCovOffset)); err != nil {
		return nil, err
	}
	if p.Marks, err = parseMarkArray(c, int(markArrayOffset)); err != nil {
		return nil, err
	}
	if p.Bases, err = parseAnchorMatrix(c, int(baseArrayOffset), int(p.MarkClassCount)); err != nil {
		return nil, err
	}
	return p, nil
}

// parseMarkArray decodes a MarkArray table: count records of mark class plus
// anchor offset, the offsets relative to the MarkArray itself.
func parseMarkArray(parent *Cursor, offset int) ([]MarkAnchor, error) {
	c, err := parent.SubFrom(offset)
	if err != nil {
		return nil, err
	}
	count, err := c.U16()
	if err != nil {
		return nil, err
	}
	marks := make([]MarkAnchor, count)
	for i := range marks {
		marks[i].Class, _ = c.U16()
		anchorOffset, err := c.U16()
		if err != nil {
			return nil, err
		}
		if marks[i].Anchor, err = parseAnchor(c, int(anchorOffset)); err != nil {
			return nil, err
		}
	}
	return marks, nil
}

// parseAnchorMatrix decodes a BaseArray/Mark2Array: count rows of classCount
// anchor offsets, relative to the array table.
func parseAnchorMatrix(parent *Cursor, offset, classCount int) ([][]*Anchor, error) {
	c, err := parent.SubFrom(offset)
	if err != nil {
		return nil, err
	}
	count, err := c.U16()
	if err != nil {
		return nil, err
	}
	matrix := make([][]*Anchor, count)
	for i := range matrix {
		row := make([]*Anchor, classCount)
		for j := range row {
			anchorOffset, err := c.U16()
			if err != nil {
				return nil, err
			}
			if row[j], err = parseAnchor(c, int(anchorOffset)); err != nil {
				return nil, err
			}
		}
		matrix[i] = row
	}
	return matrix, nil
}

// --- Type 5: mark-to-ligature attachment -----------------------------------

// MarkLigPos attaches marks to ligature components: the anchor matrix gains a
// component dimension, [ligature index][component][mark class].
type MarkLigPos struct {
	PosFormat      uint16
	MarkCoverage   Coverage
	LigCoverage    Coverage
	MarkClassCount uint16
	Marks          []MarkAnchor
	Ligatures      [][][]*Anchor
}

func (p *MarkLigPos) LookupType() uint16 { return GPosLookupTypeMarkToLigature }
func (p *MarkLigPos) SubFormat() uint16  { return p.PosFormat }

func parseMarkLigPos(c *Cursor) (LookupSubtable, error) {
	p := &MarkLigPos{}
	format, err := c.U16()
	if err != nil {
		return nil, err
	}
	if format != 1 {
		return nil, &UnsupportedDiscriminator{Structure: "MarkLigPos format", Value: uint32(format)}
	}
	p.PosFormat = format
	markCovOffset, _ := c.U16()
	ligCovOffset, _ := c.U16()
	p.MarkClassCount, _ = c.U16()
	markArrayOffset, _ := c.U16()
	ligArrayOffset, err := c.U16()
	if err != nil {
		return nil, err
	}
	if p.MarkCoverage, err = parseCoverageAt(c, int(markCovOffset)); err != nil {
		return nil, err
	}
	if p.LigCoverage, err = parseCoverageAt(c, int(ligCovOffset)); err != nil {
		return nil, err
	}
	if p.Marks, err = parseMarkArray(c, int(markArrayOffset)); err != nil {
		return nil, err
	}
	ligArray, err := c.SubFrom(int(ligArrayOffset))
	if err != nil {
		return nil, err
	}
	ligCount, err := ligArray.U16()
	if err != nil {
		return nil, err
	}
	attachOffsets, err := ligArray.U16s(int(ligCount))
	if err != nil {
		return nil, err
	}
	p.Ligatures = make([][][]*Anchor, ligCount)
	for i, off := range attachOffsets {
		if p.Ligatures[i], err = parseAnchorMatrix(ligArray, int(off), int(p.MarkClassCount)); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// --- Types 7 and 8: (chained) contextual positioning -----------------------

// ContextPos positions glyphs depending on their sequence context; the
// actual adjustments are nested lookups referenced by the context's rules.
type ContextPos struct {
	Context *SequenceContext
}

func (p *ContextPos) LookupType() uint16 { return GPosLookupTypeContextPos }
func (p *ContextPos) SubFormat() uint16  { return p.Context.Format }

func parseContextPos(c *Cursor) (LookupSubtable, error) {
	ctx, err := parseSequenceContext(c, false)
	if err != nil {
		return nil, err
	}
	return &ContextPos{Context: ctx}, nil
}

// ChainedContextPos extends ContextPos with backtrack and lookahead
// sequences.
type ChainedContextPos struct {
	Context *SequenceContext
}

func (p *ChainedContextPos) LookupType() uint16 { return GPosLookupTypeChainedContextPos }
func (p *ChainedContextPos) SubFormat() uint16  { return p.Context.Format }

func parseChainedContextPos(c *Cursor) (LookupSubtable, error) {
	ctx, err := parseSequenceContext(c, true)
	if err != nil {
		return nil, err
	}
	return &ChainedContextPos{Context: ctx}, nil
}

// --- Type 9: extension positioning -----------------------------------------

// parseExtensionPos resolves an extension sub-table to the one it wraps. The
// wrapped type must not be 9 again; nesting depth is bounded to keep
// malicious fonts from recursing.
func parseExtensionPos(c *Cursor, depth int) (LookupSubtable, error) {
	if depth >= MaxExtensionDepth {
		return nil, fmt.Errorf("ExtensionPos: nesting depth exceeds %d", MaxExtensionDepth)
	}
	format, err := c.U16()
	if err != nil {
		return nil, err
	}
	if format != 1 {
		return nil, &UnsupportedDiscriminator{Structure: "ExtensionPos format", Value: uint32(format)}
	}
	extensionType, err := c.U16()
	if err != nil {
		return nil, err
	}
	if extensionType == GPosLookupTypeExtensionPos {
		return nil, fmt.Errorf("ExtensionPos wraps another extension")
	}
	extensionOffset, err := c.U32()
	if err != nil {
		return nil, err
	}
	sub, err := c.SubFrom(int(extensionOffset))
	if err != nil {
		return nil, err
	}
	return parseGPosSubtable(extensionType, sub, depth+1)
}
