package ot

import (
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Font represents the internal structure of an OpenType font.
// It is used to navigate properties of a font for typesetting tasks.
type Font struct {
	Header        *FontHeader
	tables        map[Tag]Table
	dir           []DirectoryEntry // table directory in file order
	CMap          *CMapTable       // typed access to cmap
	Head          *HeadTable       // typed access to head
	MaxP          *MaxPTable       // typed access to maxp
	HHea          *HHeaTable       // typed access to hhea
	HMtx          *HMtxTable       // typed access to hmtx
	VHea          *VHeaTable       // typed access to vhea
	VMtx          *VMtxTable       // typed access to vmtx
	OS2           *OS2Table        // typed access to OS/2
	Name          *NameTable       // typed access to name
	Post          *PostTable       // typed access to post
	Kern          *KernTable       // typed access to kern
	parseErrors   []FontError      // errors accumulated during parsing
	parseWarnings []FontWarning    // warnings accumulated during parsing
	Layout        struct {         // OpenType core layout tables
		GSub *GSubTable // OpenType layout GSUB
		GPos *GPosTable // OpenType layout GPOS
	}
}

// FontHeader holds the fields preceding the table directory of a font.
//
// OpenType fonts that contain TrueType outlines use the value 0x00010000
// for the FontType. OpenType fonts containing CFF data use 0x4F54544F
// ('OTTO', when re-interpreted as a Tag). The Apple specification for
// TrueType fonts additionally allows 'true'.
type FontHeader struct {
	FontType   uint32
	TableCount uint16
}

// DirectoryEntry is one 16-byte record of the table directory.
type DirectoryEntry struct {
	Tag      Tag
	Checksum uint32
	Offset   uint32
	Length   uint32
}

// Table returns the font table for a given tag. If a table for a tag cannot
// be found in the font, nil is returned.
//
// Not every kind of font table is interpreted, but `Table` will return at
// least an opaque table for each table contained in the font, i.e. no table
// information will be dropped.
//
// For example to receive the `OS/2` and the `loca` table, clients may call
//
//	os2  := otf.Table(ot.T("OS/2"))
//	loca := otf.Table(ot.T("loca")).Self().AsLoca()
//
// Table tag names are case-sensitive, following the names in the OpenType
// specification.
func (otf *Font) Table(tag Tag) Table {
	if t, ok := otf.tables[tag]; ok {
		return t
	}
	return nil
}

// TableTags returns a list of tags, one for each table contained in the font,
// in the order of the font's table directory.
func (otf *Font) TableTags() []Tag {
	var tags = make([]Tag, 0, len(otf.dir))
	for _, entry := range otf.dir {
		tags = append(tags, entry.Tag)
	}
	return tags
}

// Directory returns the decoded table directory in file order.
func (otf *Font) Directory() []DirectoryEntry {
	dir := make([]DirectoryEntry, len(otf.dir))
	copy(dir, otf.dir)
	return dir
}

// Errors returns all errors encountered during font parsing.
// These errors represent issues that were found but did not prevent parsing
// from completing. Clients can inspect these errors to determine if the font
// is suitable for their use case.
func (otf *Font) Errors() []FontError {
	if otf.parseErrors == nil {
		return []FontError{}
	}
	return otf.parseErrors
}

// Warnings returns all warnings encountered during font parsing.
// Warnings indicate potential issues that are generally safe to ignore.
func (otf *Font) Warnings() []FontWarning {
	if otf.parseWarnings == nil {
		return []FontWarning{}
	}
	return otf.parseWarnings
}

// HasCriticalErrors returns true if any critical errors were encountered
// during parsing. Fonts with critical errors may be unreliable or unusable.
func (otf *Font) HasCriticalErrors() bool {
	for _, err := range otf.parseErrors {
		if err.Severity == SeverityCritical {
			return true
		}
	}
	return false
}

// GlyphIndex is a glyph index in a font.
type GlyphIndex uint16

// --- Tag -------------------------------------------------------------------

// Tag is an array of four uint8s (length = 32 bits) used to identify a table,
// script, language system, feature, or baseline.
type Tag uint32

// MakeTag creates a Tag from 4 bytes, e.g.,
//
//	MakeTag([]byte("cmap"))
//
// If b is shorter or longer, it will be silently extended or cut as appropriate.
func MakeTag(b []byte) Tag {
	if b == nil {
		b = []byte{0, 0, 0, 0}
	} else if len(b) > 4 {
		b = b[:4]
	} else if len(b) < 4 {
		b = append([]byte{0, 0, 0, 0}[:4-len(b)], b...)
	}
	return Tag(u32(b))
}

// DFLT is the tag of the default script and the default language system.
var DFLT = T("DFLT")

// T returns a Tag from a (4-letter) string.
// If t is shorter or longer, it will be silently extended or cut as appropriate.
func T(t string) Tag {
	t = (t + "    ")[:4]
	return Tag(u32([]byte(t)))
}

func (t Tag) String() string {
	bytes := []byte{
		byte(t >> 24 & 0xff),
		byte(t >> 16 & 0xff),
		byte(t >> 8 & 0xff),
		byte(t & 0xff),
	}
	return string(bytes)
}

// --- Table -----------------------------------------------------------------

// Table represents one of the various OpenType font tables.
//
// Required Tables, according to the OpenType specification:
// 'cmap' (Character to glyph mapping), 'head' (Font header), 'hhea' (Horizontal header),
// 'hmtx' (Horizontal metrics), 'maxp' (Maximum profile), 'name' (Naming table),
// 'OS/2' (OS/2 and Windows specific metrics), 'post' (PostScript information).
//
// Advanced Typographic Tables: 'BASE', 'GDEF', 'GPOS', 'GSUB', 'JSTF', 'MATH'.
//
// Tables without a registered decoder, and tables whose decoder failed, are
// represented as *OpaqueTable.
type Table interface {
	Extent() (uint32, uint32) // offset and byte size within the font's binary data
	Binary() []byte           // the bytes of this table; should be treated as read-only by clients
	Self() TableSelf          // reference to itself
}

// tableBase is a common parent for all kinds of OpenType tables.
type tableBase struct {
	data   binarySegm // a table is a slice of font data
	name   Tag        // 4-byte name as an integer
	offset uint32     // from offset
	length uint32     // to offset + length
	self   any
}

func makeTableBase(tag Tag, b binarySegm, offset, size uint32) tableBase {
	return tableBase{
		data:   b,
		name:   tag,
		offset: offset,
		length: size,
	}
}

// Extent returns offset and byte size of this table within the OpenType font.
func (tb *tableBase) Extent() (uint32, uint32) {
	return tb.offset, tb.length
}

// Binary returns the bytes of this table. Should be treated as read-only by
// clients, as it is a view into the original data.
func (tb *tableBase) Binary() []byte {
	return tb.data
}

func (tb *tableBase) Self() TableSelf {
	return TableSelf{tableBase: tb}
}

// TableSelf is a reference to a table. Its primary use is for converting
// a generic table to a concrete table flavour, and for reproducing the
// name tag of a table.
type TableSelf struct {
	tableBase *tableBase
}

// NameTag returns the 4-letter name of a table.
func (tself TableSelf) NameTag() Tag {
	return tself.tableBase.name
}

func safeSelf(tself TableSelf) any {
	if tself.tableBase == nil || tself.tableBase.self == nil {
		return TableSelf{}
	}
	return tself.tableBase.self
}

// IsOpaque returns true if the table was kept as an undecoded byte range.
func (tself TableSelf) IsOpaque() bool {
	_, ok := safeSelf(tself).(*OpaqueTable)
	return ok
}

// AsOpaque returns this table as an opaque table, or nil.
func (tself TableSelf) AsOpaque() *OpaqueTable {
	if t, ok := safeSelf(tself).(*OpaqueTable); ok {
		return t
	}
	return nil
}

// AsCMap returns this table as a cmap table, or nil.
func (tself TableSelf) AsCMap() *CMapTable {
	if k, ok := safeSelf(tself).(*CMapTable); ok {
		return k
	}
	return nil
}

// AsGPos returns this table as a GPOS table, or nil.
func (tself TableSelf) AsGPos() *GPosTable {
	if g, ok := safeSelf(tself).(*GPosTable); ok {
		return g
	}
	return nil
}

// AsGSub returns this table as a GSUB table, or nil.
func (tself TableSelf) AsGSub() *GSubTable {
	if g, ok := safeSelf(tself).(*GSubTable); ok {
		return g
	}
	return nil
}

// AsLoca returns this table as a loca table, or nil.
func (tself TableSelf) AsLoca() *LocaTable {
	if k, ok := safeSelf(tself).(*LocaTable); ok {
		return k
	}
	return nil
}

// AsMaxP returns this table as a maxp table, or nil.
func (tself TableSelf) AsMaxP() *MaxPTable {
	if k, ok := safeSelf(tself).(*MaxPTable); ok {
		return k
	}
	return nil
}

// AsHead returns this table as a head table, or nil.
func (tself TableSelf) AsHead() *HeadTable {
	if k, ok := safeSelf(tself).(*HeadTable); ok {
		return k
	}
	return nil
}

// AsHHea returns this table as a hhea table, or nil.
func (tself TableSelf) AsHHea() *HHeaTable {
	if k, ok := safeSelf(tself).(*HHeaTable); ok {
		return k
	}
	return nil
}

// AsVHea returns this table as a vhea table, or nil.
func (tself TableSelf) AsVHea() *VHeaTable {
	if k, ok := safeSelf(tself).(*VHeaTable); ok {
		return k
	}
	return nil
}

// AsOS2 returns this table as an OS/2 table, or nil.
func (tself TableSelf) AsOS2() *OS2Table {
	if k, ok := safeSelf(tself).(*OS2Table); ok {
		return k
	}
	return nil
}

// AsHMtx returns this table as a hmtx table, or nil.
func (tself TableSelf) AsHMtx() *HMtxTable {
	if k, ok := safeSelf(tself).(*HMtxTable); ok {
		return k
	}
	return nil
}

// AsVMtx returns this table as a vmtx table, or nil.
func (tself TableSelf) AsVMtx() *VMtxTable {
	if k, ok := safeSelf(tself).(*VMtxTable); ok {
		return k
	}
	return nil
}

// AsName returns this table as a name table, or nil.
func (tself TableSelf) AsName() *NameTable {
	if k, ok := safeSelf(tself).(*NameTable); ok {
		return k
	}
	return nil
}

// AsPost returns this table as a post table, or nil.
func (tself TableSelf) AsPost() *PostTable {
	if k, ok := safeSelf(tself).(*PostTable); ok {
		return k
	}
	return nil
}

// AsKern returns this table as a kern table, or nil.
func (tself TableSelf) AsKern() *KernTable {
	if k, ok := safeSelf(tself).(*KernTable); ok {
		return k
	}
	return nil
}

// --- Opaque tables ---------------------------------------------------------

// OpaqueTable is a table kept as an undecoded byte range. This is the shape
// of every table without a registered decoder, and the fallback for tables
// whose decoder failed. In the latter case Reason carries the condition that
// caused the downgrade.
type OpaqueTable struct {
	tableBase
	Reason error
}

func newOpaqueTable(tag Tag, b binarySegm, offset, size uint32, reason error) *OpaqueTable {
	t := &OpaqueTable{
		tableBase: makeTableBase(tag, b, offset, size),
		Reason:    reason,
	}
	t.self = t
	return t
}

// --- Concrete table implementations ----------------------------------------

// HeadTable gives global information about the font.
type HeadTable struct {
	tableBase
	FontRevision     Fixed
	Flags            uint16 // see https://docs.microsoft.com/en-us/typography/opentype/spec/head
	UnitsPerEm       uint16 // values 16 … 16384 are valid
	IndexToLocFormat uint16 // needed to interpret loca table
}

func newHeadTable(tag Tag, b binarySegm, offset, size uint32) *HeadTable {
	t := &HeadTable{tableBase: makeTableBase(tag, b, offset, size)}
	t.self = t
	return t
}

// LocaTable stores the offsets to the locations of the glyphs in the font,
// relative to the beginning of the glyph data table.
// By definition, index zero points to the “missing character”, which is the
// character that appears if a character is not found in the font.
type LocaTable struct {
	tableBase
	inx2loc func(t *LocaTable, gid GlyphIndex) uint32 // returns glyph location for glyph gid
	locCnt  int                                       // number of locations
}

// IndexToLocation offsets, indexed by glyph IDs, which provide the location
// of each glyph data block within the 'glyf' table.
func (t *LocaTable) IndexToLocation(gid GlyphIndex) uint32 {
	return t.inx2loc(t, gid)
}

func newLocaTable(tag Tag, b binarySegm, offset, size uint32) *LocaTable {
	t := &LocaTable{tableBase: makeTableBase(tag, b, offset, size)}
	t.inx2loc = shortLocaVersion // switched by the loca decoder from head.IndexToLocFormat
	t.locCnt = 0
	t.self = t
	return t
}

func shortLocaVersion(t *LocaTable, gid GlyphIndex) uint32 {
	// in case of error link to 'missing character' at location 0
	if gid >= GlyphIndex(t.locCnt) {
		return 0
	}
	loc, err := t.data.u16(int(gid) * 2)
	if err != nil {
		return 0
	}
	return uint32(loc) * 2
}

func longLocaVersion(t *LocaTable, gid GlyphIndex) uint32 {
	// in case of error link to 'missing character' at location 0
	if gid >= GlyphIndex(t.locCnt) {
		return 0
	}
	loc, err := t.data.u32(int(gid) * 4)
	if err != nil {
		return 0
	}
	return loc
}

// MaxPTable establishes the memory requirements for this font.
// The 'maxp' table contains a count for the number of glyphs in the font.
type MaxPTable struct {
	tableBase
	Version   Fixed
	NumGlyphs int
}

func newMaxPTable(tag Tag, b binarySegm, offset, size uint32) *MaxPTable {
	t := &MaxPTable{tableBase: makeTableBase(tag, b, offset, size)}
	t.self = t
	return t
}

// HHeaTable contains information for horizontal layout.
type HHeaTable struct {
	tableBase
	Ascender            int16
	Descender           int16
	LineGap             int16
	AdvanceWidthMax     uint16
	MinLeftSideBearing  int16
	MinRightSideBearing int16
	XMaxExtent          int16
	CaretSlopeRise      int16
	CaretSlopeRun       int16
	CaretOffset         int16
	NumberOfHMetrics    int
}

func newHHeaTable(tag Tag, b binarySegm, offset, size uint32) *HHeaTable {
	t := &HHeaTable{tableBase: makeTableBase(tag, b, offset, size)}
	t.self = t
	return t
}

// VHeaTable contains information for vertical layout. It mirrors hhea the way
// the OpenType spec mirrors the two: same record sizes, rotated axes.
type VHeaTable struct {
	tableBase
	VertTypoAscender  int16
	VertTypoDescender int16
	VertTypoLineGap   int16
	AdvanceHeightMax  int16
	MinTopSideBearing int16
	MinBottomBearing  int16
	YMaxExtent        int16
	NumberOfVMetrics  int
}

func newVHeaTable(tag Tag, b binarySegm, offset, size uint32) *VHeaTable {
	t := &VHeaTable{tableBase: makeTableBase(tag, b, offset, size)}
	t.self = t
	return t
}

// OS2Table contains a small, concrete subset of metrics from table 'OS/2'
// required for layout fallback decisions.
type OS2Table struct {
	tableBase
	Version       uint16
	XAvgCharWidth int16
	TypoAscender  int16
	TypoDescender int16
	TypoLineGap   int16
	WinAscent     uint16
	WinDescent    uint16
}

func newOS2Table(tag Tag, b binarySegm, offset, size uint32) *OS2Table {
	t := &OS2Table{tableBase: makeTableBase(tag, b, offset, size)}
	t.self = t
	return t
}

// HMtxTable contains metric information for the horizontal layout each of the
// glyphs in the font. Each element in the contained hMetrics-array has two
// parts: the advance width and left side bearing. The value NumberOfHMetrics
// is taken from the `hhea` table. In a monospaced font, only one entry is
// required but that entry may not be omitted. Optionally, an array of left
// side bearings follows. The corresponding glyphs are assumed to have the
// same advance width as that found in the last entry in the hMetrics array.
// Since there must be a left side bearing and an advance width associated
// with each glyph in the font, the number of entries in this array is derived
// from the total number of glyphs in the font minus the value
// `HHea.NumberOfHMetrics`.
type HMtxTable struct {
	tableBase
	NumberOfHMetrics int
	numGlyphs        int
	longMetrics      []HMetricRecord
	leftSideBearings []int16
}

// HMetricRecord is one long horizontal metric record from table hmtx.
type HMetricRecord struct {
	AdvanceWidth    uint16
	LeftSideBearing int16
}

func newHMtxTable(tag Tag, b binarySegm, offset, size uint32) *HMtxTable {
	t := &HMtxTable{tableBase: makeTableBase(tag, b, offset, size)}
	t.self = t
	return t
}

func (t *HMtxTable) parseAll(numGlyphs, numberOfHMetrics int) error {
	if numGlyphs < 0 || numberOfHMetrics < 0 || numberOfHMetrics > numGlyphs {
		return &UnsupportedDiscriminator{Structure: "hmtx numberOfHMetrics", Value: uint32(numberOfHMetrics)}
	}
	required, ok := checkedMulInt(numberOfHMetrics, 4)
	if !ok {
		return boundsError(0, numberOfHMetrics, len(t.data))
	}
	required += (numGlyphs - numberOfHMetrics) * 2
	if required > len(t.data) {
		return boundsError(0, required, len(t.data))
	}
	c := cursorOn(t.data)
	longMetrics := make([]HMetricRecord, numberOfHMetrics)
	for i := range longMetrics {
		aw, _ := c.U16()
		lsb, err := c.I16()
		if err != nil {
			return err
		}
		longMetrics[i] = HMetricRecord{AdvanceWidth: aw, LeftSideBearing: lsb}
	}
	leftSideBearings := make([]int16, numGlyphs-numberOfHMetrics)
	for i := range leftSideBearings {
		lsb, err := c.I16()
		if err != nil {
			return err
		}
		leftSideBearings[i] = lsb
	}
	t.NumberOfHMetrics = numberOfHMetrics
	t.numGlyphs = numGlyphs
	t.longMetrics = longMetrics
	t.leftSideBearings = leftSideBearings
	return nil
}

// GlyphCount returns the glyph count used when decoding this hmtx table.
func (t *HMtxTable) GlyphCount() int {
	if t == nil {
		return 0
	}
	return t.numGlyphs
}

// HMetrics returns the advance width and left side bearing for a glyph.
func (t *HMtxTable) HMetrics(g GlyphIndex) (uint16, int16, bool) {
	if t == nil || t.numGlyphs == 0 || int(g) >= t.numGlyphs {
		return 0, 0, false
	}
	if int(g) < len(t.longMetrics) {
		m := t.longMetrics[int(g)]
		return m.AdvanceWidth, m.LeftSideBearing, true
	}
	if len(t.longMetrics) == 0 {
		return 0, 0, false
	}
	i := int(g) - len(t.longMetrics)
	if i >= len(t.leftSideBearings) {
		return 0, 0, false
	}
	return t.longMetrics[len(t.longMetrics)-1].AdvanceWidth, t.leftSideBearings[i], true
}

// VMtxTable is the vertical counterpart of hmtx: advance heights and top side
// bearings, with the trailing short-record run inheriting the last long
// record's advance.
type VMtxTable struct {
	tableBase
	NumberOfVMetrics int
	numGlyphs        int
	longMetrics      []VMetricRecord
	topSideBearings  []int16
}

// VMetricRecord is one long vertical metric record from table vmtx.
type VMetricRecord struct {
	AdvanceHeight  uint16
	TopSideBearing int16
}

func newVMtxTable(tag Tag, b binarySegm, offset, size uint32) *VMtxTable {
	t := &VMtxTable{tableBase: makeTableBase(tag, b, offset, size)}
	t.self = t
	return t
}

func (t *VMtxTable) parseAll(numGlyphs, numberOfVMetrics int) error {
	if numGlyphs < 0 || numberOfVMetrics < 0 || numberOfVMetrics > numGlyphs {
		return &UnsupportedDiscriminator{Structure: "vmtx numberOfVMetrics", Value: uint32(numberOfVMetrics)}
	}
	required := numberOfVMetrics*4 + (numGlyphs-numberOfVMetrics)*2
	if required > len(t.data) {
		return boundsError(0, required, len(t.data))
	}
	c := cursorOn(t.data)
	longMetrics := make([]VMetricRecord, numberOfVMetrics)
	for i := range longMetrics {
		ah, _ := c.U16()
		tsb, err := c.I16()
		if err != nil {
			return err
		}
		longMetrics[i] = VMetricRecord{AdvanceHeight: ah, TopSideBearing: tsb}
	}
	topSideBearings := make([]int16, numGlyphs-numberOfVMetrics)
	for i := range topSideBearings {
		tsb, err := c.I16()
		if err != nil {
			return err
		}
		topSideBearings[i] = tsb
	}
	t.NumberOfVMetrics = numberOfVMetrics
	t.numGlyphs = numGlyphs
	t.longMetrics = longMetrics
	t.topSideBearings = topSideBearings
	return nil
}

// VMetrics returns the advance height and top side bearing for a glyph.
func (t *VMtxTable) VMetrics(g GlyphIndex) (uint16, int16, bool) {
	if t == nil || t.numGlyphs == 0 || int(g) >= t.numGlyphs {
		return 0, 0, false
	}
	if int(g) < len(t.longMetrics) {
		m := t.longMetrics[int(g)]
		return m.AdvanceHeight, m.TopSideBearing, true
	}
	if len(t.longMetrics) == 0 {
		return 0, 0, false
	}
	i := int(g) - len(t.longMetrics)
	if i >= len(t.topSideBearings) {
		return 0, 0, false
	}
	return t.longMetrics[len(t.longMetrics)-1].AdvanceHeight, t.topSideBearings[i], true
}

// PostTable carries the PostScript information of a font. Only the header
// fields are decoded; the glyph name sub-tables of version 2.0 are not.
type PostTable struct {
	tableBase
	Version            Fixed
	ItalicAngle        Fixed
	UnderlinePosition  int16
	UnderlineThickness int16
	IsFixedPitch       bool
}

func newPostTable(tag Tag, b binarySegm, offset, size uint32) *PostTable {
	t := &PostTable{tableBase: makeTableBase(tag, b, offset, size)}
	t.self = t
	return t
}

// --- Naming table ----------------------------------------------------------

// Name IDs from the OpenType naming table, the subset clients usually ask for.
const (
	NameCopyright  uint16 = 0
	NameFamily     uint16 = 1
	NameSubfamily  uint16 = 2
	NameUniqueID   uint16 = 3
	NameFull       uint16 = 4
	NameVersion    uint16 = 5
	NamePostscript uint16 = 6
)

// NameTable holds the naming table records. Strings are decoded lazily, as
// most clients ask for one or two name IDs only.
type NameTable struct {
	tableBase
	records    []nameRecord
	stringData binarySegm
}

type nameRecord struct {
	platformID uint16
	encodingID uint16
	languageID uint16
	nameID     uint16
	length     uint16
	offset     uint16
}

func newNameTable(tag Tag, b binarySegm, offset, size uint32) *NameTable {
	t := &NameTable{tableBase: makeTableBase(tag, b, offset, size)}
	t.self = t
	return t
}

// NameIDs returns the set of name IDs present, in record order.
func (t *NameTable) NameIDs() []uint16 {
	ids := make([]uint16, 0, len(t.records))
	seen := make(map[uint16]bool)
	for _, rec := range t.records {
		if !seen[rec.nameID] {
			ids = append(ids, rec.nameID)
			seen[rec.nameID] = true
		}
	}
	return ids
}

// Name returns the string for a name ID, preferring Windows Unicode records
// (platform 3, then 0), falling back to Macintosh Roman. Returns "" if no
// record for the ID exists or decoding fails.
func (t *NameTable) Name(nameID uint16) string {
	if t == nil {
		return ""
	}
	var mac *nameRecord
	for i, rec := range t.records {
		if rec.nameID != nameID {
			continue
		}
		switch rec.platformID {
		case 0, 3:
			if s, ok := t.decodeRecord(&t.records[i]); ok {
				return s
			}
		case 1:
			if mac == nil && rec.encodingID == 0 {
				mac = &t.records[i]
			}
		}
	}
	if mac != nil {
		if s, ok := t.decodeRecord(mac); ok {
			return s
		}
	}
	return ""
}

func (t *NameTable) decodeRecord(rec *nameRecord) (string, bool) {
	raw, err := t.stringData.view(int(rec.offset), int(rec.length))
	if err != nil {
		return "", false
	}
	switch rec.platformID {
	case 0, 3: // UTF-16BE
		dec := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
		s, err := dec.Bytes(raw)
		if err != nil {
			return "", false
		}
		return string(s), true
	case 1: // Mac Roman
		s, err := charmap.Macintosh.NewDecoder().Bytes(raw)
		if err != nil {
			return "", false
		}
		return string(s), true
	}
	return "", false
}
