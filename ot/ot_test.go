package ot

import (
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"golang.org/x/image/font/gofont/goregular"
)

// --- Synthetic font building -----------------------------------------------

func putU16(b []byte, at int, v uint16) {
	b[at] = byte(v >> 8)
	b[at+1] = byte(v)
}

func putU32(b []byte, at int, v uint32) {
	b[at] = byte(v >> 24)
	b[at+1] = byte(v >> 16)
	b[at+2] = byte(v >> 8)
	b[at+3] = byte(v)
}

type synthTable struct {
	tag  string
	data []byte
}

// buildFont assembles a single-font sfnt buffer from the given tables, with
// correct directory checksums. If sortDir is set, directory entries are
// emitted in ascending tag order, as OpenType requires.
func buildFont(tables []synthTable, sortDir bool) []byte {
	if sortDir {
		tables = append([]synthTable{}, tables...)
		sort.Slice(tables, func(i, j int) bool { return T(tables[i].tag) < T(tables[j].tag) })
	}
	headerSize := 12 + 16*len(tables)
	total := headerSize
	offsets := make([]int, len(tables))
	for i, tb := range tables {
		offsets[i] = total
		total += (len(tb.data) + 3) &^ 3 // tables are 4-byte aligned
	}
	buf := make([]byte, total)
	putU32(buf, 0, fontTypeTrueType)
	putU16(buf, 4, uint16(len(tables)))
	for i, tb := range tables {
		at := 12 + 16*i
		copy(buf[at:], []byte((tb.tag + "    ")[:4]))
		putU32(buf, at+4, tableChecksum(tb.data, tb.tag == "head"))
		putU32(buf, at+8, uint32(offsets[i]))
		putU32(buf, at+12, uint32(len(tb.data)))
		copy(buf[offsets[i]:], tb.data)
	}
	return buf
}

func maxpData(numGlyphs uint16) []byte {
	b := make([]byte, 6)
	putU32(b, 0, 0x00005000)
	putU16(b, 4, numGlyphs)
	return b
}

func getTable(otf *Font, name string, t *testing.T) Table {
	table := otf.Table(T(name))
	if table == nil {
		t.Fatalf("expected font to contain table %s", name)
	}
	return table
}

// --- Container tests -------------------------------------------------------

func TestParseHeader(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.sfnt")
	defer teardown()
	//
	otf, err := Parse(goregular.TTF)
	if err != nil {
		t.Fatal(err)
	}
	t.Logf("otf.header.tag = %x", otf.Header.FontType)
	if otf.Header.FontType != 0x00010000 {
		t.Fatalf("expected Go Regular to be OT 0x00010000, is %x", otf.Header.FontType)
	}
}

func TestTableInventory(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.sfnt")
	defer teardown()
	//
	otf, err := Parse(goregular.TTF)
	if err != nil {
		t.Fatal(err)
	}
	if len(otf.TableTags()) != int(otf.Header.TableCount) {
		t.Errorf("expected %d tables, got %d", otf.Header.TableCount, len(otf.TableTags()))
	}
	seen := map[Tag]bool{}
	for _, entry := range otf.Directory() {
		if seen[entry.Tag] {
			t.Errorf("duplicate directory tag %s", entry.Tag)
		}
		seen[entry.Tag] = true
		if otf.Table(entry.Tag) == nil {
			t.Errorf("directory tag %s has no table, not even an opaque one", entry.Tag)
		}
	}
}

func TestParseDeterminism(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.sfnt")
	defer teardown()
	//
	otf1, err := Parse(goregular.TTF)
	if err != nil {
		t.Fatal(err)
	}
	otf2, err := Parse(goregular.TTF)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(otf1.TableTags(), otf2.TableTags()); diff != "" {
		t.Errorf("table tags differ between two parses:\n%s", diff)
	}
	if diff := cmp.Diff(otf1.Directory(), otf2.Directory()); diff != "" {
		t.Errorf("directories differ between two parses:\n%s", diff)
	}
	if diff := cmp.Diff(otf1.Errors(), otf2.Errors(), cmp.Comparer(func(a, b FontError) bool {
		return a.Error() == b.Error()
	})); diff != "" {
		t.Errorf("diagnostics differ between two parses:\n%s", diff)
	}
}

func TestParseGarbage(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.sfnt")
	defer teardown()
	//
	_, err := Parse([]byte{0xde, 0xad, 0xbe, 0xef, 0, 0, 0, 0, 0, 0, 0, 0})
	var mc *MalformedContainer
	if !errors.As(err, &mc) {
		t.Fatalf("expected *MalformedContainer, got %v", err)
	}
	if _, err = Parse([]byte{0x00}); err == nil {
		t.Fatal("expected parsing of a 1-byte buffer to fail")
	}
}

func TestEmptyTableDirectory(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.sfnt")
	defer teardown()
	//
	// a header with zero tables is degenerate but structurally valid
	buf := buildFont([]synthTable{}, true)
	otf, err := Parse(buf)
	if err != nil {
		t.Fatalf("a font with an empty table directory must parse, got %v", err)
	}
	if otf.Header.TableCount != 0 || len(otf.TableTags()) != 0 {
		t.Errorf("expected no tables, got %d", len(otf.TableTags()))
	}
	found := false
	for _, w := range otf.Warnings() {
		if w.Issue == "required table missing" {
			found = true
		}
	}
	if !found {
		t.Error("expected warnings for the missing required tables")
	}
}

func TestUnsortedDirectoryWarning(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.sfnt")
	defer teardown()
	//
	tables := []synthTable{
		{"maxp", maxpData(10)},
		{"head", make([]byte, 54)},
	}
	buf := buildFont(tables, false) // maxp before head violates tag order
	otf, err := Parse(buf)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, w := range otf.Warnings() {
		if strings.Contains(w.Issue, "not sorted") {
			found = true
		}
	}
	if !found {
		t.Error("expected a warning for the unsorted table directory")
	}
	if getTable(otf, "maxp", t).Self().AsMaxP() == nil {
		t.Error("unsorted directory must not prevent table decoding")
	}
}

func TestChecksumMismatchWarning(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.sfnt")
	defer teardown()
	//
	buf := buildFont([]synthTable{{"maxp", maxpData(10)}}, true)
	putU32(buf, 12+4, 0xBADC0FFE) // corrupt the checksum of the first entry
	otf, err := Parse(buf)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, w := range otf.Warnings() {
		if strings.Contains(w.Issue, "checksum mismatch") {
			found = true
		}
	}
	if !found {
		t.Error("expected a checksum mismatch warning")
	}
	if otf.MaxP == nil || otf.MaxP.NumGlyphs != 10 {
		t.Error("checksum mismatch must not prevent table decoding")
	}
}

func TestMissingPrerequisiteYieldsOpaque(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.sfnt")
	defer teardown()
	//
	// hmtx depends on hhea and maxp; leave out both
	hmtx := make([]byte, 8)
	buf := buildFont([]synthTable{{"hmtx", hmtx}}, true)
	otf, err := Parse(buf)
	if err != nil {
		t.Fatalf("a missing prerequisite must not fail the parse, got %v", err)
	}
	table := getTable(otf, "hmtx", t)
	if !table.Self().IsOpaque() {
		t.Fatal("expected hmtx to be downgraded to an opaque table")
	}
	var unres *UnresolvedPrerequisite
	found := false
	for _, e := range otf.Errors() {
		if errors.As(e, &unres) {
			found = true
		}
	}
	if !found {
		t.Fatal("expected an *UnresolvedPrerequisite diagnostic")
	}
	if unres.Table != T("hmtx") {
		t.Errorf("expected the diagnostic to name hmtx, got %s", unres.Table)
	}
}

func TestOpaqueReasonOnBrokenTable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.sfnt")
	defer teardown()
	//
	// a maxp table of 3 bytes cannot hold version and numGlyphs
	buf := buildFont([]synthTable{{"maxp", []byte{0, 0, 80}}}, true)
	otf, err := Parse(buf)
	if err != nil {
		t.Fatal(err)
	}
	table := getTable(otf, "maxp", t)
	opaque := table.Self().AsOpaque()
	if opaque == nil {
		t.Fatal("expected an opaque maxp table")
	}
	var eod *UnexpectedEndOfData
	if !errors.As(opaque.Reason, &eod) {
		t.Errorf("expected *UnexpectedEndOfData as reason, got %v", opaque.Reason)
	}
}

// --- Collections -----------------------------------------------------------

// buildCollection wraps prebuilt single-font buffers into a ttcf container.
// Member directory offsets are rebased to the collection file.
func buildCollection(t *testing.T, members ...[]byte) []byte {
	headerSize := 12 + 4*len(members)
	total := headerSize
	offsets := make([]int, len(members))
	for i, m := range members {
		offsets[i] = total
		total += (len(m) + 3) &^ 3
	}
	buf := make([]byte, total)
	putU32(buf, 0, fontTypeCollection)
	putU16(buf, 4, 1) // majorVersion
	putU16(buf, 6, 0)
	putU32(buf, 8, uint32(len(members)))
	for i, m := range members {
		putU32(buf, 12+4*i, uint32(offsets[i]))
		copy(buf[offsets[i]:], m)
		// rebase the member's table offsets
		numTables := int(u16(buf[offsets[i]+4:]))
		for j := 0; j < numTables; j++ {
			at := offsets[i] + 12 + 16*j + 8
			putU32(buf, at, u32(buf[at:])+uint32(offsets[i]))
		}
	}
	return buf
}

func TestParseCollection(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.sfnt")
	defer teardown()
	//
	m1 := buildFont([]synthTable{{"maxp", maxpData(11)}}, true)
	m2 := buildFont([]synthTable{{"maxp", maxpData(22)}}, true)
	buf := buildCollection(t, m1, m2)
	fonts, err := ParseCollection(buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(fonts) != 2 {
		t.Fatalf("expected 2 member fonts, got %d", len(fonts))
	}
	for i, want := range []int{11, 22} {
		if fonts[i].MaxP == nil {
			t.Fatalf("member %d has no decoded maxp", i)
		}
		if fonts[i].MaxP.NumGlyphs != want {
			t.Errorf("member %d: expected %d glyphs, got %d", i, want, fonts[i].MaxP.NumGlyphs)
		}
		if len(fonts[i].TableTags()) != int(fonts[i].Header.TableCount) {
			t.Errorf("member %d violates the table count invariant", i)
		}
	}
}

func TestCollectionMemberContainment(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.sfnt")
	defer teardown()
	//
	m1 := buildFont([]synthTable{{"maxp", maxpData(11)}}, true)
	m2 := buildFont([]synthTable{{"maxp", maxpData(22)}}, true)
	buf := buildCollection(t, m1, m2)
	putU32(buf, 12+4, uint32(len(buf)+1000)) // second member points past the end
	fonts, err := ParseCollection(buf)
	if err != nil {
		t.Fatalf("one broken member must not fail its siblings, got %v", err)
	}
	if len(fonts) != 1 {
		t.Fatalf("expected 1 surviving member font, got %d", len(fonts))
	}
	if fonts[0].MaxP.NumGlyphs != 11 {
		t.Errorf("surviving member should be the first one")
	}
}

func TestCollectionAllMembersBroken(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.sfnt")
	defer teardown()
	//
	m1 := buildFont([]synthTable{{"maxp", maxpData(11)}}, true)
	buf := buildCollection(t, m1)
	putU32(buf, 12, uint32(len(buf)+1000))
	_, err := ParseCollection(buf)
	if err == nil {
		t.Fatal("expected an error when no collection member parses")
	}
}

// --- Tags ------------------------------------------------------------------

func TestTagConstruction(t *testing.T) {
	if T("cmap").String() != "cmap" {
		t.Errorf("expected tag round-trip for 'cmap', got %s", T("cmap"))
	}
	if T("OS/2") != MakeTag([]byte("OS/2")) {
		t.Error("expected T and MakeTag to agree")
	}
	if T("ab") != T("ab  ") {
		t.Error("expected short tags to be padded with blanks")
	}
}
