package ot

import (
	"fmt"
	"sort"
)

// Table decoding is driven by a registry of per-tag decoders. A decoder may
// declare prerequisite tags; hmtx, for instance, cannot be sliced into
// records without hhea's numberOfHMetrics and maxp's numGlyphs. The scheduler
// orders the tags present in a font's directory so that prerequisites are
// decoded first, instead of wiring cross-table fixups after the fact.

// parseContext is handed to table decoders: read-only access to tables
// decoded earlier plus the shared error collector.
type parseContext struct {
	otf *Font
	ec  *errorCollector
}

// decoded returns the table for tag if it was decoded successfully, nil if
// it is absent or opaque.
func (ctx *parseContext) decoded(tag Tag) Table {
	t, ok := ctx.otf.tables[tag]
	if !ok || t.Self().IsOpaque() {
		return nil
	}
	return t
}

type decoderFunc func(ctx *parseContext, entry DirectoryEntry, b binarySegm) (Table, error)

type tableDecoder struct {
	needs  []Tag // tags that must be decoded before this one
	decode decoderFunc
}

// tableRegistry is fixed after package initialization. Tags without an entry
// are kept as opaque tables.
var tableRegistry map[Tag]tableDecoder

func init() {
	tableRegistry = map[Tag]tableDecoder{
		T("head"): {decode: parseHead},
		T("maxp"): {decode: parseMaxP},
		T("hhea"): {decode: parseHHea},
		T("vhea"): {decode: parseVHea},
		T("OS/2"): {decode: parseOS2},
		T("post"): {decode: parsePost},
		T("name"): {decode: parseName},
		T("hmtx"): {needs: []Tag{T("hhea"), T("maxp")}, decode: parseHMtx},
		T("vmtx"): {needs: []Tag{T("vhea"), T("maxp")}, decode: parseVMtx},
		T("loca"): {needs: []Tag{T("head"), T("maxp")}, decode: parseLoca},
		T("cmap"): {needs: []Tag{T("maxp")}, decode: parseCMap},
		T("kern"): {decode: parseKern},
		T("GPOS"): {decode: parseGPos},
		T("GSUB"): {decode: parseGSub},
	}
	if cycle := registryCycle(); cycle != 0 {
		panic(fmt.Sprintf("table decoder registry has a dependency cycle through %s", cycle))
	}
}

// registryCycle reports a tag participating in a dependency cycle, or 0.
// A cyclic registry is a programming error, not a property of any font.
func registryCycle() Tag {
	const (
		white = iota
		gray
		black
	)
	color := make(map[Tag]int, len(tableRegistry))
	var visit func(tag Tag) bool
	visit = func(tag Tag) bool {
		color[tag] = gray
		for _, need := range tableRegistry[tag].needs {
			switch color[need] {
			case gray:
				return true
			case white:
				if _, ok := tableRegistry[need]; ok && visit(need) {
					return true
				}
			}
		}
		color[tag] = black
		return false
	}
	for tag := range tableRegistry {
		if color[tag] == white && visit(tag) {
			return tag
		}
	}
	return 0
}

// parseOrder topologically sorts the given tags according to the registry's
// prerequisite declarations, restricted to tags actually present. Among tags
// with no ordering constraint the ascending tag order wins, so a font's parse
// order is deterministic. The registry is acyclic (checked at init), hence
// the sort always completes.
func parseOrder(tags []Tag) []Tag {
	present := make(map[Tag]bool, len(tags))
	for _, tag := range tags {
		present[tag] = true
	}
	// dependents[t] = present tags that wait for t
	dependents := make(map[Tag][]Tag)
	degree := make(map[Tag]int, len(tags))
	for _, tag := range tags {
		degree[tag] = 0
	}
	for _, tag := range tags {
		for _, need := range tableRegistry[tag].needs {
			if present[need] {
				dependents[need] = append(dependents[need], tag)
				degree[tag]++
			}
		}
	}
	ready := make([]Tag, 0, len(tags))
	for tag, d := range degree {
		if d == 0 {
			ready = append(ready, tag)
		}
	}
	sort.Slice(ready, func(i, j int) bool { return ready[i] < ready[j] })
	order := make([]Tag, 0, len(tags))
	for len(ready) > 0 {
		tag := ready[0]
		ready = ready[1:]
		order = append(order, tag)
		released := false
		for _, dep := range dependents[tag] {
			degree[dep]--
			if degree[dep] == 0 {
				ready = append(ready, dep)
				released = true
			}
		}
		if released {
			sort.Slice(ready, func(i, j int) bool { return ready[i] < ready[j] })
		}
	}
	return order
}

// scheduleTableParse runs the decoders for all directory entries in
// prerequisite order. Every entry ends up in otf.tables, decoded or opaque.
func scheduleTableParse(otf *Font, src binarySegm, ec *errorCollector) {
	ctx := &parseContext{otf: otf, ec: ec}
	entries := make(map[Tag]DirectoryEntry, len(otf.dir))
	tags := make([]Tag, 0, len(otf.dir))
	for _, entry := range otf.dir {
		if _, dup := entries[entry.Tag]; dup {
			ec.addWarning(entry.Tag, "duplicate table directory entry ignored", entry.Offset)
			continue
		}
		entries[entry.Tag] = entry
		tags = append(tags, entry.Tag)
	}
	for _, tag := range parseOrder(tags) {
		entry := entries[tag]
		otf.tables[tag] = decodeTable(ctx, entry, src)
	}
	for _, req := range RequiredTables {
		if _, ok := entries[T(req)]; !ok {
			ec.addWarning(T(req), "required table missing", 0)
		}
	}
}

// decodeTable produces the Table for one directory entry: the decoder's
// result on success, an opaque table otherwise. Failure of a decoder or of a
// prerequisite never propagates beyond the affected tag.
func decodeTable(ctx *parseContext, entry DirectoryEntry, src binarySegm) Table {
	tag := entry.Tag
	end, ok := checkedAddU32(entry.Offset, entry.Length)
	if !ok || end > uint32(len(src)) {
		cause := boundsError(int(entry.Offset), int(entry.Length), len(src))
		ctx.ec.addCondition(tag, "Directory", cause, SeverityMajor, entry.Offset)
		return newOpaqueTable(tag, binarySegm{}, entry.Offset, 0, cause)
	}
	if entry.Offset&3 != 0 {
		// "all tables must begin on four byte boundaries" -- warn, don't reject
		ctx.ec.addWarning(tag, "table not aligned on four byte boundary", entry.Offset)
	}
	b := src[entry.Offset:end]
	dec, registered := tableRegistry[tag]
	if !registered {
		tracer().Debugf("no decoder for table %s, keeping %d bytes opaque", tag, entry.Length)
		return newOpaqueTable(tag, b, entry.Offset, entry.Length, nil)
	}
	for _, need := range dec.needs {
		if ctx.decoded(need) == nil {
			cause := &UnresolvedPrerequisite{Table: tag, Missing: need}
			ctx.ec.addCondition(tag, "Prerequisite", cause, SeverityMajor, entry.Offset)
			return newOpaqueTable(tag, b, entry.Offset, entry.Length, cause)
		}
	}
	table, err := dec.decode(ctx, entry, b)
	if err != nil {
		ctx.ec.addCondition(tag, "Decode", err, SeverityMajor, entry.Offset)
		return newOpaqueTable(tag, b, entry.Offset, entry.Length, err)
	}
	registerShortcut(ctx.otf, table)
	return table
}

// registerShortcut wires the typed access fields of Font.
func registerShortcut(otf *Font, table Table) {
	switch t := table.(type) {
	case *HeadTable:
		otf.Head = t
	case *MaxPTable:
		otf.MaxP = t
	case *HHeaTable:
		otf.HHea = t
	case *VHeaTable:
		otf.VHea = t
	case *HMtxTable:
		otf.HMtx = t
	case *VMtxTable:
		otf.VMtx = t
	case *OS2Table:
		otf.OS2 = t
	case *NameTable:
		otf.Name = t
	case *PostTable:
		otf.Post = t
	case *CMapTable:
		otf.CMap = t
	case *KernTable:
		otf.Kern = t
	case *GPosTable:
		otf.Layout.GPos = t
	case *GSubTable:
		otf.Layout.GSub = t
	}
}

// --- Fixed-layout table decoders -------------------------------------------

// parseHead decodes the font header table.
//
// | Type   | Name               | Offset |
// |--------|--------------------|--------|
// | Fixed  | version            |  0     |
// | Fixed  | fontRevision       |  4     |
// | uint32 | checkSumAdjustment |  8     |
// | uint32 | magicNumber        | 12     |
// | uint16 | flags              | 16     |
// | uint16 | unitsPerEm         | 18     |
// | ...    |                    |        |
// | int16  | indexToLocFormat   | 50     |
func parseHead(ctx *parseContext, entry DirectoryEntry, b binarySegm) (Table, error) {
	t := newHeadTable(entry.Tag, b, entry.Offset, entry.Length)
	c := cursorOn(b)
	if _, err := c.Fixed(); err != nil { // version
		return nil, err
	}
	t.FontRevision, _ = c.Fixed()
	c.Skip(4) // checkSumAdjustment, handled by verifyChecksums
	magic, err := c.U32()
	if err != nil {
		return nil, err
	}
	if magic != 0x5F0F3CF5 {
		ctx.ec.addWarning(entry.Tag, fmt.Sprintf("magic number is %#x", magic), entry.Offset+12)
	}
	t.Flags, _ = c.U16()
	t.UnitsPerEm, err = c.U16()
	if err != nil {
		return nil, err
	}
	if err := c.Seek(50); err != nil {
		return nil, err
	}
	t.IndexToLocFormat, err = c.U16()
	if err != nil {
		return nil, err
	}
	if t.IndexToLocFormat > 1 {
		return nil, &UnsupportedDiscriminator{Structure: "head indexToLocFormat", Value: uint32(t.IndexToLocFormat)}
	}
	return t, nil
}

func parseMaxP(ctx *parseContext, entry DirectoryEntry, b binarySegm) (Table, error) {
	t := newMaxPTable(entry.Tag, b, entry.Offset, entry.Length)
	c := cursorOn(b)
	var err error
	t.Version, err = c.Fixed()
	if err != nil {
		return nil, err
	}
	n, err := c.U16()
	if err != nil {
		return nil, err
	}
	t.NumGlyphs = int(n)
	return t, nil
}

// parseHHea decodes the horizontal header.
//
// | Type   | Name                | Offset |
// |--------|---------------------|--------|
// | Fixed  | version             |  0     |
// | int16  | ascender            |  4     |
// | int16  | descender           |  6     |
// | int16  | lineGap             |  8     |
// | uint16 | advanceWidthMax     | 10     |
// | int16  | minLeftSideBearing  | 12     |
// | int16  | minRightSideBearing | 14     |
// | int16  | xMaxExtent          | 16     |
// | int16  | caretSlopeRise      | 18     |
// | int16  | caretSlopeRun       | 20     |
// | int16  | caretOffset         | 22     |
// | int16  | reserved ×4         | 24     |
// | int16  | metricDataFormat    | 32     |
// | uint16 | numberOfHMetrics    | 34     |
func parseHHea(ctx *parseContext, entry DirectoryEntry, b binarySegm) (Table, error) {
	t := newHHeaTable(entry.Tag, b, entry.Offset, entry.Length)
	c := cursorOn(b)
	if _, err := c.Fixed(); err != nil {
		return nil, err
	}
	t.Ascender, _ = c.I16()
	t.Descender, _ = c.I16()
	t.LineGap, _ = c.I16()
	t.AdvanceWidthMax, _ = c.U16()
	t.MinLeftSideBearing, _ = c.I16()
	t.MinRightSideBearing, _ = c.I16()
	t.XMaxExtent, _ = c.I16()
	t.CaretSlopeRise, _ = c.I16()
	t.CaretSlopeRun, _ = c.I16()
	t.CaretOffset, _ = c.I16()
	if err := c.Seek(34); err != nil {
		return nil, err
	}
	n, err := c.U16()
	if err != nil {
		return nil, err
	}
	t.NumberOfHMetrics = int(n)
	return t, nil
}

// parseVHea decodes the vertical header; same record layout as hhea with
// rotated axes.
func parseVHea(ctx *parseContext, entry DirectoryEntry, b binarySegm) (Table, error) {
	t := newVHeaTable(entry.Tag, b, entry.Offset, entry.Length)
	c := cursorOn(b)
	if _, err := c.Fixed(); err != nil {
		return nil, err
	}
	t.VertTypoAscender, _ = c.I16()
	t.VertTypoDescender, _ = c.I16()
	t.VertTypoLineGap, _ = c.I16()
	t.AdvanceHeightMax, _ = c.I16()
	t.MinTopSideBearing, _ = c.I16()
	t.MinBottomBearing, _ = c.I16()
	t.YMaxExtent, _ = c.I16()
	if err := c.Seek(34); err != nil {
		return nil, err
	}
	n, err := c.U16()
	if err != nil {
		return nil, err
	}
	t.NumberOfVMetrics = int(n)
	return t, nil
}

// parseOS2 decodes the subset of OS/2 fields used for metric fallbacks.
// sTypoAscender lives at offset 68 in every OS/2 version.
func parseOS2(ctx *parseContext, entry DirectoryEntry, b binarySegm) (Table, error) {
	t := newOS2Table(entry.Tag, b, entry.Offset, entry.Length)
	c := cursorOn(b)
	var err error
	t.Version, err = c.U16()
	if err != nil {
		return nil, err
	}
	t.XAvgCharWidth, _ = c.I16()
	if err := c.Seek(68); err != nil {
		return nil, err
	}
	t.TypoAscender, _ = c.I16()
	t.TypoDescender, _ = c.I16()
	t.TypoLineGap, _ = c.I16()
	t.WinAscent, _ = c.U16()
	t.WinDescent, err = c.U16()
	if err != nil {
		return nil, err
	}
	return t, nil
}

func parsePost(ctx *parseContext, entry DirectoryEntry, b binarySegm) (Table, error) {
	t := newPostTable(entry.Tag, b, entry.Offset, entry.Length)
	c := cursorOn(b)
	var err error
	t.Version, err = c.Fixed()
	if err != nil {
		return nil, err
	}
	t.ItalicAngle, _ = c.Fixed()
	t.UnderlinePosition, _ = c.I16()
	t.UnderlineThickness, _ = c.I16()
	fixedPitch, err := c.U32()
	if err != nil {
		return nil, err
	}
	t.IsFixedPitch = fixedPitch != 0
	return t, nil
}

// parseName decodes the naming table (format 0 and the record part of
// format 1; langTagRecords are skipped).
func parseName(ctx *parseContext, entry DirectoryEntry, b binarySegm) (Table, error) {
	t := newNameTable(entry.Tag, b, entry.Offset, entry.Length)
	c := cursorOn(b)
	format, err := c.U16()
	if err != nil {
		return nil, err
	}
	if format > 1 {
		return nil, &UnsupportedDiscriminator{Structure: "name table format", Value: uint32(format)}
	}
	count, _ := c.U16()
	stringOffset, err := c.U16()
	if err != nil {
		return nil, err
	}
	if int(stringOffset) > len(b) {
		return nil, boundsError(int(stringOffset), 0, len(b))
	}
	t.stringData = b[stringOffset:]
	t.records = make([]nameRecord, 0, count)
	for i := 0; i < int(count); i++ {
		var rec nameRecord
		rec.platformID, _ = c.U16()
		rec.encodingID, _ = c.U16()
		rec.languageID, _ = c.U16()
		rec.nameID, _ = c.U16()
		rec.length, _ = c.U16()
		rec.offset, err = c.U16()
		if err != nil {
			return nil, err
		}
		if int(rec.offset)+int(rec.length) > len(t.stringData) {
			ctx.ec.addWarning(entry.Tag,
				fmt.Sprintf("name record %d points outside string data", i), entry.Offset)
			continue
		}
		t.records = append(t.records, rec)
	}
	return t, nil
}

func parseHMtx(ctx *parseContext, entry DirectoryEntry, b binarySegm) (Table, error) {
	t := newHMtxTable(entry.Tag, b, entry.Offset, entry.Length)
	hhea := ctx.otf.HHea
	maxp := ctx.otf.MaxP
	if err := t.parseAll(maxp.NumGlyphs, hhea.NumberOfHMetrics); err != nil {
		return nil, err
	}
	return t, nil
}

func parseVMtx(ctx *parseContext, entry DirectoryEntry, b binarySegm) (Table, error) {
	t := newVMtxTable(entry.Tag, b, entry.Offset, entry.Length)
	vhea := ctx.otf.VHea
	maxp := ctx.otf.MaxP
	if err := t.parseAll(maxp.NumGlyphs, vhea.NumberOfVMetrics); err != nil {
		return nil, err
	}
	return t, nil
}

func parseLoca(ctx *parseContext, entry DirectoryEntry, b binarySegm) (Table, error) {
	t := newLocaTable(entry.Tag, b, entry.Offset, entry.Length)
	head := ctx.otf.Head
	maxp := ctx.otf.MaxP
	t.locCnt = maxp.NumGlyphs + 1 // n glyphs yield n+1 offsets
	recordSize := 2
	if head.IndexToLocFormat == 1 {
		t.inx2loc = longLocaVersion
		recordSize = 4
	}
	required, ok := checkedMulInt(t.locCnt, recordSize)
	if !ok || required > len(b) {
		return nil, boundsError(0, required, len(b))
	}
	return t, nil
}
