package ot

import (
	"fmt"
	"strconv"
)

// GSubTable is a type representing an OpenType GSUB table
// (see https://docs.microsoft.com/en-us/typography/opentype/spec/gsub).
// It shares the layout chassis with GPOS; its lookup sub-tables are decoded
// into the Subst* variant types below.
type GSubTable struct {
	tableBase
	LayoutTable
}

func newGSubTable(tag Tag, b binarySegm, offset, size uint32) *GSubTable {
	t := &GSubTable{}
	t.tableBase = makeTableBase(tag, b, offset, size)
	t.self = t
	return t
}

var _ Table = &GSubTable{}

// GSUB Lookup Type Enumeration
const (
	GSubLookupTypeSingle             uint16 = 1 // Replace one glyph with one glyph
	GSubLookupTypeMultiple           uint16 = 2 // Replace one glyph with more than one glyph
	GSubLookupTypeAlternate          uint16 = 3 // Replace one glyph with one of many glyphs
	GSubLookupTypeLigature           uint16 = 4 // Replace multiple glyphs with one glyph
	GSubLookupTypeContext            uint16 = 5 // Replace one or more glyphs in context
	GSubLookupTypeChainedContext     uint16 = 6 // Replace one or more glyphs in chained context
	GSubLookupTypeExtensionSubs      uint16 = 7 // Extension mechanism for other substitutions
	GSubLookupTypeReverseChainSingle uint16 = 8 // Applied in reverse order, replace single glyph in chaining context
)

const gsubLookupTypeNames = "Single|Multiple|Alternate|Ligature|Context|Chained|Ext|ReverseChained"

var gsubLookupTypeInx = [...]int{0, 7, 16, 26, 35, 43, 51, 55, 70}

// GSubLookupTypeString returns a GSUB lookup type as a string.
func GSubLookupTypeString(lt uint16) string {
	if lt >= 1 && lt <= GSubLookupTypeReverseChainSingle {
		lt -= 1
		return gsubLookupTypeNames[gsubLookupTypeInx[lt] : gsubLookupTypeInx[lt+1]-1]
	}
	return strconv.Itoa(int(lt))
}

// parseGSub is the table decoder for tag GSUB.
func parseGSub(ctx *parseContext, entry DirectoryEntry, b binarySegm) (Table, error) {
	t := newGSubTable(entry.Tag, b, entry.Offset, entry.Length)
	lyt, err := parseLayoutTable(entry.Tag, b, ctx.ec, parseGSubSubtable)
	if err != nil {
		return nil, err
	}
	t.LayoutTable = lyt
	tracer().Debugf("GSUB has %d lookups", len(t.Lookups))
	return t, nil
}

// parseGSubSubtable dispatches on the GSUB lookup type. Extension sub-tables
// (type 7) are resolved in place, mirroring GPOS type 9.
func parseGSubSubtable(lookupType uint16, c *Cursor, depth int) (LookupSubtable, error) {
	switch lookupType {
	case GSubLookupTypeSingle:
		return parseSingleSubst(c)
	case GSubLookupTypeMultiple, GSubLookupTypeAlternate:
		return parseSequenceSubst(c, lookupType)
	case GSubLookupTypeLigature:
		return parseLigatureSubst(c)
	case GSubLookupTypeContext:
		ctx, err := parseSequenceContext(c, false)
		if err != nil {
			return nil, err
		}
		return &ContextSubst{Context: ctx}, nil
	case GSubLookupTypeChainedContext:
		ctx, err := parseSequenceContext(c, true)
		if err != nil {
			return nil, err
		}
		return &ChainedContextSubst{Context: ctx}, nil
	case GSubLookupTypeExtensionSubs:
		return parseExtensionSubst(c, depth)
	case GSubLookupTypeReverseChainSingle:
		return parseReverseChainSubst(c)
	}
	return nil, &UnsupportedDiscriminator{Structure: "GSUB lookup type", Value: uint32(lookupType)}
}

// --- Type 1: single substitution -------------------------------------------

// SingleSubst replaces one glyph with one glyph: format 1 by adding a
// constant delta to the glyph ID, format 2 through a substitute array
// parallel to the coverage.
type SingleSubst struct {
	SubstFormat  uint16
	Coverage     Coverage
	DeltaGlyphID int16        // format 1
	Substitutes  []GlyphIndex // format 2, per coverage index
}

func (s *SingleSubst) LookupType() uint16 { return GSubLookupTypeSingle }
func (s *SingleSubst) SubFormat() uint16  { return s.SubstFormat }

// Substitute returns the replacement for glyph g, if g is covered.
func (s *SingleSubst) Substitute(g GlyphIndex) (GlyphIndex, bool) {
	inx, ok := s.Coverage.Index(g)
	if !ok {
		return g, false
	}
	if s.SubstFormat == 1 {
		return GlyphIndex(uint16(int(g) + int(s.DeltaGlyphID))), true
	}
	if inx >= len(s.Substitutes) {
		return g, false
	}
	return s.Substitutes[inx], true
}

func parseSingleSubst(c *Cursor) (LookupSubtable, error) {
	s := &SingleSubst{}
	format, err := c.U16()
	if err != nil {
		return nil, err
	}
	s.SubstFormat = format
	coverageOffset, err := c.U16()
	if err != nil {
		return nil, err
	}
	switch format {
	case 1:
		if s.DeltaGlyphID, err = c.I16(); err != nil {
			return nil, err
		}
	case 2:
		count, err := c.U16()
		if err != nil {
			return nil, err
		}
		if s.Substitutes, err = c.GlyphIDs(int(count)); err != nil {
			return nil, err
		}
	default:
		return nil, &UnsupportedDiscriminator{Structure: "SingleSubst format", Value: uint32(format)}
	}
	if s.Coverage, err = parseCoverageAt(c, int(coverageOffset)); err != nil {
		return nil, err
	}
	return s, nil
}

// --- Types 2 and 3: multiple and alternate substitution --------------------

// SequenceSubst covers both multiple substitution (type 2, one glyph to a
// sequence) and alternate substitution (type 3, one glyph to a choice set).
// The two share their wire format: per covered glyph a count-prefixed glyph
// run.
type SequenceSubst struct {
	Type        uint16 // 2 or 3
	SubstFormat uint16
	Coverage    Coverage
	Sequences   [][]GlyphIndex // per coverage index
}

func (s *SequenceSubst) LookupType() uint16 { return s.Type }
func (s *SequenceSubst) SubFormat() uint16  { return s.SubstFormat }

// Sequence returns the glyph run for glyph g, if g is covered.
func (s *SequenceSubst) Sequence(g GlyphIndex) ([]GlyphIndex, bool) {
	inx, ok := s.Coverage.Index(g)
	if !ok || inx >= len(s.Sequences) {
		return nil, false
	}
	return s.Sequences[inx], true
}

func parseSequenceSubst(c *Cursor, lookupType uint16) (LookupSubtable, error) {
	s := &SequenceSubst{Type: lookupType}
	format, err := c.U16()
	if err != nil {
		return nil, err
	}
	if format != 1 {
		return nil, &UnsupportedDiscriminator{Structure: "MultipleSubst format", Value: uint32(format)}
	}
	s.SubstFormat = format
	coverageOffset, _ := c.U16()
	seqCount, err := c.U16()
	if err != nil {
		return nil, err
	}
	seqOffsets, err := c.U16s(int(seqCount))
	if err != nil {
		return nil, err
	}
	s.Sequences = make([][]GlyphIndex, seqCount)
	for i, off := range seqOffsets {
		seq, err := c.SubFrom(int(off))
		if err != nil {
			return nil, err
		}
		glyphCount, err := seq.U16()
		if err != nil {
			return nil, err
		}
		if s.Sequences[i], err = seq.GlyphIDs(int(glyphCount)); err != nil {
			return nil, err
		}
	}
	if s.Coverage, err = parseCoverageAt(c, int(coverageOffset)); err != nil {
		return nil, err
	}
	return s, nil
}

// --- Type 4: ligature substitution -----------------------------------------

// Ligature is one ligature rule: Components lists the glyphs following the
// first (covered) glyph; a full match substitutes Glyph.
type Ligature struct {
	Glyph      GlyphIndex
	Components []GlyphIndex
}

// LigatureSubst replaces runs of glyphs with ligatures. Rules are grouped by
// their first glyph through the coverage.
type LigatureSubst struct {
	SubstFormat uint16
	Coverage    Coverage
	Ligatures   [][]Ligature // per coverage index of the first glyph
}

func (s *LigatureSubst) LookupType() uint16 { return GSubLookupTypeLigature }
func (s *LigatureSubst) SubFormat() uint16  { return s.SubstFormat }

func parseLigatureSubst(c *Cursor) (LookupSubtable, error) {
	s := &LigatureSubst{}
	format, err := c.U16()
	if err != nil {
		return nil, err
	}
	if format != 1 {
		return nil, &UnsupportedDiscriminator{Structure: "LigatureSubst format", Value: uint32(format)}
	}
	s.SubstFormat = format
	coverageOffset, _ := c.U16()
	setCount, err := c.U16()
	if err != nil {
		return nil, err
	}
	setOffsets, err := c.U16s(int(setCount))
	if err != nil {
		return nil, err
	}
	s.Ligatures = make([][]Ligature, setCount)
	for i, off := range setOffsets {
		set, err := c.SubFrom(int(off))
		if err != nil {
			return nil, err
		}
		ligCount, err := set.U16()
		if err != nil {
			return nil, err
		}
		ligOffsets, err := set.U16s(int(ligCount))
		if err != nil {
			return nil, err
		}
		ligs := make([]Ligature, 0, ligCount)
		for _, lOff := range ligOffsets {
			lig, err := set.SubFrom(int(lOff))
			if err != nil {
				return nil, err
			}
			var l Ligature
			l.Glyph, _ = lig.GlyphID()
			compCount, err := lig.U16()
			if err != nil {
				return nil, err
			}
			if compCount == 0 {
				return nil, fmt.Errorf("ligature with component count 0")
			}
			if l.Components, err = lig.GlyphIDs(int(compCount) - 1); err != nil {
				return nil, err
			}
			ligs = append(ligs, l)
		}
		s.Ligatures[i] = ligs
	}
	if s.Coverage, err = parseCoverageAt(c, int(coverageOffset)); err != nil {
		return nil, err
	}
	return s, nil
}

// --- Types 5 and 6: (chained) contextual substitution ----------------------

// ContextSubst substitutes glyphs depending on their sequence context.
type ContextSubst struct {
	Context *SequenceContext
}

func (s *ContextSubst) LookupType() uint16 { return GSubLookupTypeContext }
func (s *ContextSubst) SubFormat() uint16  { return s.Context.Format }

// ChainedContextSubst extends ContextSubst with backtrack and lookahead
// sequences.
type ChainedContextSubst struct {
	Context *SequenceContext
}

func (s *ChainedContextSubst) LookupType() uint16 { return GSubLookupTypeChainedContext }
func (s *ChainedContextSubst) SubFormat() uint16  { return s.Context.Format }

// --- Type 7: extension substitution ----------------------------------------

func parseExtensionSubst(c *Cursor, depth int) (LookupSubtable, error) {
	if depth >= MaxExtensionDepth {
		return nil, fmt.Errorf("ExtensionSubst: nesting depth exceeds %d", MaxExtensionDepth)
	}
	format, err := c.U16()
	if err != nil {
		return nil, err
	}
	if format != 1 {
		return nil, &UnsupportedDiscriminator{Structure: "ExtensionSubst format", Value: uint32(format)}
	}
	extensionType, err := c.U16()
	if err != nil {
		return nil, err
	}
	if extensionType == GSubLookupTypeExtensionSubs {
		return nil, fmt.Errorf("ExtensionSubst wraps another extension")
	}
	extensionOffset, err := c.U32()
	if err != nil {
		return nil, err
	}
	sub, err := c.SubFrom(int(extensionOffset))
	if err != nil {
		return nil, err
	}
	return parseGSubSubtable(extensionType, sub, depth+1)
}

// --- Type 8: reverse chaining single substitution --------------------------

// ReverseChainSubst replaces single glyphs in a chaining context, applied in
// reverse text order (used for Arabic-style final forms).
type ReverseChainSubst struct {
	SubstFormat        uint16
	Coverage           Coverage
	BacktrackCoverages []Coverage
	LookaheadCoverages []Coverage
	Substitutes        []GlyphIndex // per coverage index
}

func (s *ReverseChainSubst) LookupType() uint16 { return GSubLookupTypeReverseChainSingle }
func (s *ReverseChainSubst) SubFormat() uint16  { return s.SubstFormat }

func parseReverseChainSubst(c *Cursor) (LookupSubtable, error) {
	s := &ReverseChainSubst{}
	format, err := c.U16()
	if err != nil {
		return nil, err
	}
	if format != 1 {
		return nil, &UnsupportedDiscriminator{Structure: "ReverseChainSubst format", Value: uint32(format)}
	}
	s.SubstFormat = format
	coverageOffset, err := c.U16()
	if err != nil {
		return nil, err
	}
	if s.BacktrackCoverages, err = parseCoverageSlice(c); err != nil {
		return nil, err
	}
	if s.LookaheadCoverages, err = parseCoverageSlice(c); err != nil {
		return nil, err
	}
	glyphCount, err := c.U16()
	if err != nil {
		return nil, err
	}
	if s.Substitutes, err = c.GlyphIDs(int(glyphCount)); err != nil {
		return nil, err
	}
	if s.Coverage, err = parseCoverageAt(c, int(coverageOffset)); err != nil {
		return nil, err
	}
	return s, nil
}
