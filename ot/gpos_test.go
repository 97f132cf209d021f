package ot

import (
	"testing"
)

func TestSinglePosFormat1(t *testing.T) {
	cov := coverage1(40)
	b := make([]byte, 8+len(cov))
	putU16(b, 0, 1)      // format 1
	putU16(b, 2, 8)      // coverage offset
	putU16(b, 4, 0x0004) // value format: XAdvance
	putU16(b, 6, 0xFFCE) // XAdvance -50
	copy(b[8:], cov)
	sub, err := parseGPosSubtable(GPosLookupTypeSingle, NewCursor(b), 0)
	if err != nil {
		t.Fatal(err)
	}
	p, ok := sub.(*SinglePos)
	if !ok {
		t.Fatalf("expected a *SinglePos, got %T", sub)
	}
	vr, ok := p.Value(40)
	if !ok || vr.XAdvance != -50 {
		t.Errorf("expected XAdvance -50 for glyph 40, got %+v (ok=%v)", vr, ok)
	}
	if _, ok := p.Value(41); ok {
		t.Error("glyph 41 is not covered, no adjustment expected")
	}
}

func TestSinglePosFormat2(t *testing.T) {
	cov := coverage1(40, 50)
	b := make([]byte, 16+len(cov))
	putU16(b, 0, 2)      // format 2
	putU16(b, 2, 16)     // coverage offset
	putU16(b, 4, 0x0005) // value format: XPlacement | XAdvance
	putU16(b, 6, 2)      // value count
	putU16(b, 8, 1)      // record 0: XPlacement
	putU16(b, 10, 10)    // record 0: XAdvance
	putU16(b, 12, 2)     // record 1: XPlacement
	putU16(b, 14, 20)    // record 1: XAdvance
	copy(b[16:], cov)
	sub, err := parseGPosSubtable(GPosLookupTypeSingle, NewCursor(b), 0)
	if err != nil {
		t.Fatal(err)
	}
	p := sub.(*SinglePos)
	vr, ok := p.Value(50)
	if !ok || vr.XPlacement != 2 || vr.XAdvance != 20 {
		t.Errorf("expected record (2, 20) for glyph 50, got %+v (ok=%v)", vr, ok)
	}
	if vr.YAdvance != 0 {
		t.Errorf("absent value fields must stay zero, got %+v", vr)
	}
}

func TestPairPosFormat1(t *testing.T) {
	cov := coverage1(40)
	b := make([]byte, 18+len(cov))
	putU16(b, 0, 1)      // format 1
	putU16(b, 2, 18)     // coverage offset
	putU16(b, 4, 0x0004) // value format 1: XAdvance
	putU16(b, 6, 0)      // value format 2: empty
	putU16(b, 8, 1)      // pair set count
	putU16(b, 10, 12)    // pair set offset
	putU16(b, 12, 1)     // pair set: pair count
	putU16(b, 14, 60)    // second glyph
	putU16(b, 16, 0xFFE2) // value 1: XAdvance -30
	copy(b[18:], cov)
	sub, err := parseGPosSubtable(GPosLookupTypePair, NewCursor(b), 0)
	if err != nil {
		t.Fatal(err)
	}
	p, ok := sub.(*PairPos)
	if !ok {
		t.Fatalf("expected a *PairPos, got %T", sub)
	}
	pv, ok := p.Pair(40, 60)
	if !ok || pv.Value1.XAdvance != -30 {
		t.Errorf("expected XAdvance -30 for pair (40, 60), got %+v (ok=%v)", pv, ok)
	}
	if _, ok := p.Pair(40, 61); ok {
		t.Error("pair (40, 61) is not positioned")
	}
	if _, ok := p.Pair(41, 60); ok {
		t.Error("first glyph 41 is not covered")
	}
}

func TestPairPosFormat2(t *testing.T) {
	cov := coverage1(20)
	b := make([]byte, 40+len(cov))
	putU16(b, 0, 2)      // format 2
	putU16(b, 2, 40)     // coverage offset
	putU16(b, 4, 0x0004) // value format 1: XAdvance
	putU16(b, 6, 0)      // value format 2: empty
	putU16(b, 8, 24)     // class def 1 offset
	putU16(b, 10, 32)    // class def 2 offset
	putU16(b, 12, 2)     // class 1 count
	putU16(b, 14, 2)     // class 2 count
	// class matrix rows at 16, cell [1][1] kerns
	putU16(b, 22, 0xFFD8) // XAdvance -40
	putU16(b, 24, 1)      // class def 1: format 1
	putU16(b, 26, 20)     //   start glyph
	putU16(b, 28, 1)      //   glyph count
	putU16(b, 30, 1)      //   class of glyph 20
	putU16(b, 32, 1)      // class def 2: format 1
	putU16(b, 34, 30)     //   start glyph
	putU16(b, 36, 1)      //   glyph count
	putU16(b, 38, 1)      //   class of glyph 30
	copy(b[40:], cov)
	sub, err := parseGPosSubtable(GPosLookupTypePair, NewCursor(b), 0)
	if err != nil {
		t.Fatal(err)
	}
	p := sub.(*PairPos)
	pv, ok := p.Pair(20, 30)
	if !ok || pv.Value1.XAdvance != -40 {
		t.Errorf("expected XAdvance -40 for class pair (1, 1), got %+v (ok=%v)", pv, ok)
	}
	// glyph 31 falls into class 0, which has a zero matrix cell
	pv, ok = p.Pair(20, 31)
	if !ok || pv.Value1.XAdvance != 0 {
		t.Errorf("expected the zero cell for class pair (1, 0), got %+v (ok=%v)", pv, ok)
	}
}

func TestCursivePos(t *testing.T) {
	cov := coverage1(40)
	b := make([]byte, 16+len(cov))
	putU16(b, 0, 1)   // format 1
	putU16(b, 2, 16)  // coverage offset
	putU16(b, 4, 1)   // entry/exit count
	putU16(b, 6, 10)  // entry anchor offset
	putU16(b, 8, 0)   // exit anchor NULL
	putU16(b, 10, 1)  // anchor format 1
	putU16(b, 12, 10) // x
	putU16(b, 14, 20) // y
	copy(b[16:], cov)
	sub, err := parseGPosSubtable(GPosLookupTypeCursive, NewCursor(b), 0)
	if err != nil {
		t.Fatal(err)
	}
	p, ok := sub.(*CursivePos)
	if !ok {
		t.Fatalf("expected a *CursivePos, got %T", sub)
	}
	if len(p.EntryExits) != 1 {
		t.Fatalf("expected one entry/exit record, got %d", len(p.EntryExits))
	}
	entry := p.EntryExits[0].Entry
	if entry == nil || entry.XCoordinate != 10 || entry.YCoordinate != 20 {
		t.Errorf("expected entry anchor (10, 20), got %+v", entry)
	}
	if p.EntryExits[0].Exit != nil {
		t.Error("expected the NULL exit anchor to stay nil")
	}
}

func TestMarkToBasePos(t *testing.T) {
	b := make([]byte, 46)
	putU16(b, 0, 1)   // format 1
	putU16(b, 2, 12)  // mark coverage offset
	putU16(b, 4, 18)  // base coverage offset
	putU16(b, 6, 1)   // mark class count
	putU16(b, 8, 24)  // mark array offset
	putU16(b, 10, 36) // base array offset
	copy(b[12:], coverage1(5)) // mark coverage
	copy(b[18:], coverage1(6)) // base coverage
	putU16(b, 24, 1)  // mark array: count
	putU16(b, 26, 0)  //   mark class
	putU16(b, 28, 6)  //   anchor offset, relative to the mark array
	putU16(b, 30, 1)  //   anchor format 1
	putU16(b, 32, 1)  //   x
	putU16(b, 34, 2)  //   y
	putU16(b, 36, 1)  // base array: count
	putU16(b, 38, 4)  //   anchor offset, relative to the base array
	putU16(b, 40, 1)  //   anchor format 1
	putU16(b, 42, 3)  //   x
	putU16(b, 44, 4)  //   y
	sub, err := parseGPosSubtable(GPosLookupTypeMarkToBase, NewCursor(b), 0)
	if err != nil {
		t.Fatal(err)
	}
	p, ok := sub.(*MarkAttachPos)
	if !ok {
		t.Fatalf("expected a *MarkAttachPos, got %T", sub)
	}
	if p.LookupType() != GPosLookupTypeMarkToBase {
		t.Errorf("expected lookup type 4, got %d", p.LookupType())
	}
	if len(p.Marks) != 1 || p.Marks[0].Class != 0 {
		t.Fatalf("expected one mark record of class 0, got %v", p.Marks)
	}
	if a := p.Marks[0].Anchor; a == nil || a.XCoordinate != 1 || a.YCoordinate != 2 {
		t.Errorf("expected mark anchor (1, 2), got %+v", p.Marks[0].Anchor)
	}
	if len(p.Bases) != 1 || len(p.Bases[0]) != 1 {
		t.Fatalf("expected a 1x1 base anchor matrix, got %v", p.Bases)
	}
	if a := p.Bases[0][0]; a == nil || a.XCoordinate != 3 || a.YCoordinate != 4 {
		t.Errorf("expected base anchor (3, 4), got %+v", p.Bases[0][0])
	}
	// the same wire format decodes as mark-to-mark for type 6
	sub, err = parseGPosSubtable(GPosLookupTypeMarkToMark, NewCursor(b), 0)
	if err != nil {
		t.Fatal(err)
	}
	if lt := sub.(*MarkAttachPos).LookupType(); lt != GPosLookupTypeMarkToMark {
		t.Errorf("expected lookup type 6, got %d", lt)
	}
}

func TestChainedContextPosFormat3(t *testing.T) {
	cov := coverage1(40)
	b := make([]byte, 16+len(cov))
	putU16(b, 0, 3)  // context format 3
	putU16(b, 2, 0)  // backtrack count
	putU16(b, 4, 1)  // input count
	putU16(b, 6, 16) // input coverage offset
	putU16(b, 8, 0)  // lookahead count
	putU16(b, 10, 1) // lookup count
	putU16(b, 12, 0) // lookup record: sequence index
	putU16(b, 14, 5) // lookup record: lookup list index
	copy(b[16:], cov)
	sub, err := parseGPosSubtable(GPosLookupTypeChainedContextPos, NewCursor(b), 0)
	if err != nil {
		t.Fatal(err)
	}
	p, ok := sub.(*ChainedContextPos)
	if !ok {
		t.Fatalf("expected a *ChainedContextPos, got %T", sub)
	}
	ctx := p.Context
	if !ctx.Chained || ctx.Format != 3 {
		t.Fatalf("expected a chained format 3 context, got %+v", ctx)
	}
	if len(ctx.InputCoverages) != 1 {
		t.Fatalf("expected one input coverage, got %d", len(ctx.InputCoverages))
	}
	if _, ok := ctx.InputCoverages[0].Index(40); !ok {
		t.Error("expected glyph 40 covered at position 0")
	}
	if len(ctx.Lookups) != 1 || ctx.Lookups[0].LookupListIndex != 5 {
		t.Errorf("unexpected lookup records %v", ctx.Lookups)
	}
}

func TestExtensionPosResolves(t *testing.T) {
	cov := coverage1(40)
	b := make([]byte, 16+len(cov))
	putU16(b, 0, 1)                    // extension format
	putU16(b, 2, GPosLookupTypeSingle) // wrapped type
	putU32(b, 4, 8)                    // extension offset
	putU16(b, 8, 1)                    // wrapped: format 1
	putU16(b, 10, 8)                   // wrapped: coverage offset
	putU16(b, 12, 0x0004)              // wrapped: value format XAdvance
	putU16(b, 14, 25)                  // wrapped: XAdvance
	copy(b[16:], cov)
	sub, err := parseGPosSubtable(GPosLookupTypeExtensionPos, NewCursor(b), 0)
	if err != nil {
		t.Fatal(err)
	}
	p, ok := sub.(*SinglePos)
	if !ok {
		t.Fatalf("expected the extension to resolve to a *SinglePos, got %T", sub)
	}
	if vr, ok := p.Value(40); !ok || vr.XAdvance != 25 {
		t.Errorf("expected XAdvance 25 through the extension, got %+v (ok=%v)", vr, ok)
	}
}

func TestExtensionPosRejectsNesting(t *testing.T) {
	b := make([]byte, 8)
	putU16(b, 0, 1)
	putU16(b, 2, GPosLookupTypeExtensionPos)
	putU32(b, 4, 8)
	if _, err := parseGPosSubtable(GPosLookupTypeExtensionPos, NewCursor(b), 0); err == nil {
		t.Error("expected a nested extension to be rejected")
	}
}

func TestGPosLookupTypeString(t *testing.T) {
	cases := map[uint16]string{
		1:  "Single",
		4:  "MarkToBase",
		9:  "Ext",
		0:  "0",
		13: "13",
	}
	for lt, want := range cases {
		if s := GPosLookupTypeString(lt); s != want {
			t.Errorf("expected %q for lookup type %d, got %q", want, lt, s)
		}
	}
}
