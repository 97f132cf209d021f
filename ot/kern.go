package ot

import (
	"fmt"
	"sort"
)

// The legacy kern table predates GPOS pair positioning and is still the only
// kerning source in many TrueType fonts. Two header flavours exist, the
// Microsoft/OpenType one (uint16 version 0) and the Apple one (Fixed version
// 1.0); only sub-table format 0 (sorted kern pairs) is decoded, other formats
// are skipped with a warning.

// KernTable represents the 'kern' table.
type KernTable struct {
	tableBase
	Subtables []KernSubtable
}

// KernSubtable is one decoded format 0 kern sub-table.
type KernSubtable struct {
	Horizontal  bool // kerning values apply to the horizontal direction
	CrossStream bool // kerning is perpendicular to the text flow
	pairs       []kernPair
}

type kernPair struct {
	key   uint32 // left glyph << 16 | right glyph
	value int16
}

func newKernTable(tag Tag, b binarySegm, offset, size uint32) *KernTable {
	t := &KernTable{tableBase: makeTableBase(tag, b, offset, size)}
	t.self = t
	return t
}

// Kerning returns the summed kerning adjustment for a glyph pair over all
// horizontal in-stream sub-tables.
func (t *KernTable) Kerning(left, right GlyphIndex) int16 {
	if t == nil {
		return 0
	}
	var sum int16
	key := uint32(left)<<16 | uint32(right)
	for i := range t.Subtables {
		sub := &t.Subtables[i]
		if !sub.Horizontal || sub.CrossStream {
			continue
		}
		j := sort.Search(len(sub.pairs), func(j int) bool { return sub.pairs[j].key >= key })
		if j < len(sub.pairs) && sub.pairs[j].key == key {
			sum += sub.pairs[j].value
		}
	}
	return sum
}

// parseKern decodes the kern table. The two header flavours differ in the
// width of version and sub-table count.
func parseKern(ctx *parseContext, entry DirectoryEntry, b binarySegm) (Table, error) {
	t := newKernTable(entry.Tag, b, entry.Offset, entry.Length)
	c := cursorOn(b)
	version, err := c.U16()
	if err != nil {
		return nil, err
	}
	var nTables int
	apple := false
	switch version {
	case 0: // Microsoft flavour
		n, err := c.U16()
		if err != nil {
			return nil, err
		}
		nTables = int(n)
	case 1: // Apple flavour: Fixed 1.0, uint32 count
		if minor, _ := c.U16(); minor != 0 {
			return nil, &UnsupportedDiscriminator{Structure: "kern version", Value: uint32(version)<<16 | uint32(minor)}
		}
		n, err := c.U32()
		if err != nil {
			return nil, err
		}
		nTables = int(n)
		apple = true
	default:
		return nil, &UnsupportedDiscriminator{Structure: "kern version", Value: uint32(version)}
	}
	tracer().Debugf("kern table with %d sub-tables", nTables)
	for i := 0; i < nTables; i++ {
		sub, skip, err := parseKernSubtable(c, apple)
		if skip {
			ctx.ec.addWarning(entry.Tag, fmt.Sprintf("sub-table %d: %v", i, err), entry.Offset)
			continue
		}
		if err != nil {
			ctx.ec.addWarning(entry.Tag, fmt.Sprintf("sub-table %d: %v", i, err), entry.Offset)
			break // cannot resync after a broken length field
		}
		t.Subtables = append(t.Subtables, sub)
	}
	return t, nil
}

func parseKernSubtable(c *Cursor, apple bool) (KernSubtable, bool, error) {
	var sub KernSubtable
	start := c.Pos()
	var length int
	var format uint8
	if apple {
		n, err := c.U32()
		if err != nil {
			return sub, false, err
		}
		length = int(n)
		coverage, _ := c.U8()
		format, err = c.U8()
		if err != nil {
			return sub, false, err
		}
		c.Skip(2) // tupleIndex
		sub.Horizontal = coverage&0x80 == 0
		sub.CrossStream = coverage&0x40 != 0
	} else {
		c.Skip(2) // sub-table version
		n, err := c.U16()
		if err != nil {
			return sub, false, err
		}
		length = int(n)
		coverage, err := c.U16()
		if err != nil {
			return sub, false, err
		}
		format = uint8(coverage >> 8)
		sub.Horizontal = coverage&0x0001 != 0
		sub.CrossStream = coverage&0x0004 != 0
	}
	if format != 0 {
		// jump over unsupported formats (2 is the common other one)
		if err := c.Seek(start + length); err != nil {
			return sub, false, err
		}
		return sub, true, &UnsupportedDiscriminator{Structure: "kern sub-table format", Value: uint32(format)}
	}
	nPairs, err := c.U16()
	if err != nil {
		return sub, false, err
	}
	c.Skip(6) // searchRange, entrySelector, rangeShift
	sub.pairs = make([]kernPair, nPairs)
	for i := range sub.pairs {
		left, _ := c.U16()
		right, _ := c.U16()
		value, err := c.I16()
		if err != nil {
			return sub, false, err
		}
		sub.pairs[i] = kernPair{key: uint32(left)<<16 | uint32(right), value: value}
	}
	sort.Slice(sub.pairs, func(i, j int) bool { return sub.pairs[i].key < sub.pairs[j].key })
	// The length field is 16 bit and overflows for large pair counts
	// (Calibri is the famous case). Trust nPairs and resync from there.
	expected := c.Pos()
	if start+length != expected {
		c.Seek(expected)
	}
	return sub, false, nil
}
