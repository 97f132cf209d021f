package ot

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func indexOf(order []Tag, tag Tag) int {
	for i, t := range order {
		if t == tag {
			return i
		}
	}
	return -1
}

func TestParseOrderPrerequisitesFirst(t *testing.T) {
	tags := []Tag{T("hmtx"), T("loca"), T("cmap"), T("hhea"), T("maxp"), T("head")}
	order := parseOrder(tags)
	if len(order) != len(tags) {
		t.Fatalf("expected all %d tags in the order, got %d", len(tags), len(order))
	}
	before := func(a, b string) {
		if indexOf(order, T(a)) > indexOf(order, T(b)) {
			t.Errorf("expected %s to be decoded before %s, order is %v", a, b, order)
		}
	}
	before("hhea", "hmtx")
	before("maxp", "hmtx")
	before("head", "loca")
	before("maxp", "loca")
	before("maxp", "cmap")
}

func TestParseOrderDeterministic(t *testing.T) {
	tags := []Tag{T("GSUB"), T("name"), T("hmtx"), T("maxp"), T("hhea"), T("post"), T("OS/2")}
	first := parseOrder(tags)
	for i := 0; i < 10; i++ {
		if diff := cmp.Diff(first, parseOrder(tags)); diff != "" {
			t.Fatalf("parse order differs between runs:\n%s", diff)
		}
	}
}

func TestParseOrderTieBreak(t *testing.T) {
	// none of these depend on another; ascending tag order must win
	tags := []Tag{T("post"), T("head"), T("name"), T("OS/2")}
	order := parseOrder(tags)
	want := []Tag{T("OS/2"), T("head"), T("name"), T("post")}
	if diff := cmp.Diff(want, order); diff != "" {
		t.Errorf("expected ascending tag order for independent tags:\n%s", diff)
	}
}

func TestParseOrderUnknownNeedIgnored(t *testing.T) {
	// hmtx needs hhea and maxp, but neither is present; hmtx must still be
	// scheduled (it will then fail at decode time with a prerequisite error)
	order := parseOrder([]Tag{T("hmtx"), T("name")})
	if len(order) != 2 {
		t.Fatalf("expected 2 tags in the order, got %v", order)
	}
}

func TestRegistryAcyclic(t *testing.T) {
	if cycle := registryCycle(); cycle != 0 {
		t.Fatalf("decoder registry has a cycle through %s", cycle)
	}
}

func TestDuplicateDirectoryEntry(t *testing.T) {
	tables := []synthTable{
		{"maxp", maxpData(7)},
		{"maxp", maxpData(9)},
	}
	buf := buildFont(tables, false)
	otf, err := Parse(buf)
	if err != nil {
		t.Fatal(err)
	}
	if otf.MaxP == nil {
		t.Fatal("expected a decoded maxp table")
	}
	if otf.MaxP.NumGlyphs != 7 {
		t.Errorf("expected the first duplicate to win, got %d glyphs", otf.MaxP.NumGlyphs)
	}
	found := false
	for _, w := range otf.Warnings() {
		if w.Table == T("maxp") && w.Issue == "duplicate table directory entry ignored" {
			found = true
		}
	}
	if !found {
		t.Error("expected a warning for the duplicate directory entry")
	}
}

func TestOpaquePrerequisiteDowngrades(t *testing.T) {
	// hhea is present but too short to decode, so hmtx must not decode either
	tables := []synthTable{
		{"maxp", maxpData(4)},
		{"hhea", []byte{0, 1}}, // truncated
		{"hmtx", make([]byte, 16)},
	}
	buf := buildFont(tables, true)
	otf, err := Parse(buf)
	if err != nil {
		t.Fatal(err)
	}
	if !getTable(otf, "hhea", t).Self().IsOpaque() {
		t.Error("expected truncated hhea to be opaque")
	}
	if !getTable(otf, "hmtx", t).Self().IsOpaque() {
		t.Error("expected hmtx to be opaque when its prerequisite is opaque")
	}
	if otf.HMtx != nil {
		t.Error("opaque hmtx must not be wired as a typed shortcut")
	}
}

func TestScheduleDecodesVerticalChain(t *testing.T) {
	// vhea -> vmtx mirrors the horizontal chain with rotated axes
	vhea := make([]byte, 36)
	putU32(vhea, 0, 0x00010000)
	putU16(vhea, 34, 1) // numOfLongVerMetrics
	vmtx := make([]byte, 4+2*2) // 1 long record + 2 trailing tsb values
	putU16(vmtx, 0, 800) // advance height
	putU16(vmtx, 2, 90)  // top side bearing
	putU16(vmtx, 4, 95)  // tsb glyph 1
	putU16(vmtx, 6, 99)  // tsb glyph 2
	tables := []synthTable{
		{"maxp", maxpData(3)},
		{"vhea", vhea},
		{"vmtx", vmtx},
	}
	otf, err := Parse(buildFont(tables, true))
	if err != nil {
		t.Fatal(err)
	}
	if otf.VHea == nil || otf.VHea.NumberOfVMetrics != 1 {
		t.Fatalf("expected decoded vhea with 1 metric, got %+v", otf.VHea)
	}
	if otf.VMtx == nil {
		t.Fatal("expected decoded vmtx")
	}
	if ah, tsb, ok := otf.VMtx.VMetrics(0); !ok || ah != 800 || tsb != 90 {
		t.Errorf("expected metrics (800, 90) for glyph 0, got (%d, %d, %v)", ah, tsb, ok)
	}
	if ah, tsb, ok := otf.VMtx.VMetrics(2); !ok || ah != 800 || tsb != 99 {
		t.Errorf("expected metrics (800, 99) for glyph 2, got (%d, %d, %v)", ah, tsb, ok)
	}
}

func TestScheduleDecodesChain(t *testing.T) {
	// a complete hhea -> hmtx chain on a tiny synthetic font
	hhea := make([]byte, 36)
	putU32(hhea, 0, 0x00010000)
	putU16(hhea, 4, 1900)   // ascender
	putU16(hhea, 6, 0xFF00) // descender (negative)
	putU16(hhea, 34, 2)     // numberOfHMetrics
	hmtx := make([]byte, 2*4+2) // 2 long records + 1 trailing lsb
	putU16(hmtx, 0, 500)
	putU16(hmtx, 2, 50)
	putU16(hmtx, 4, 600)
	putU16(hmtx, 6, 60)
	putU16(hmtx, 8, 0xFFEF) // lsb -17 for glyph 2
	tables := []synthTable{
		{"maxp", maxpData(3)},
		{"hhea", hhea},
		{"hmtx", hmtx},
	}
	otf, err := Parse(buildFont(tables, true))
	if err != nil {
		t.Fatal(err)
	}
	if otf.HHea == nil || otf.HHea.NumberOfHMetrics != 2 {
		t.Fatalf("expected decoded hhea with 2 metrics, got %+v", otf.HHea)
	}
	if otf.HMtx == nil {
		t.Fatal("expected decoded hmtx")
	}
	if aw, lsb, ok := otf.HMtx.HMetrics(1); !ok || aw != 600 || lsb != 60 {
		t.Errorf("expected metrics (600, 60) for glyph 1, got (%d, %d, %v)", aw, lsb, ok)
	}
	// glyph 2 shares the last advance width, with its own side bearing
	if aw, lsb, ok := otf.HMtx.HMetrics(2); !ok || aw != 600 || lsb != -17 {
		t.Errorf("expected metrics (600, -17) for glyph 2, got (%d, %d, %v)", aw, lsb, ok)
	}
	if _, _, ok := otf.HMtx.HMetrics(3); ok {
		t.Error("expected no metrics beyond the glyph count")
	}
}
