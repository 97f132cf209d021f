package ot

import (
	"errors"
	"testing"
)

func TestKernMicrosoft(t *testing.T) {
	// three sub-tables: format 0, unsupported format 2, cross-stream format 0
	kern := make([]byte, 64)
	putU16(kern, 0, 0) // version
	putU16(kern, 2, 3) // sub-table count
	putU16(kern, 6, 26)     // sub 0: length
	putU16(kern, 8, 0x0001) //   coverage: horizontal, format 0
	putU16(kern, 10, 2)     //   pair count
	putU16(kern, 18, 36) // pairs stored unsorted
	putU16(kern, 20, 58)
	putU16(kern, 22, 0xFFB0) // -80
	putU16(kern, 24, 36)
	putU16(kern, 26, 57)
	putU16(kern, 28, 0xFF88) // -120
	putU16(kern, 32, 14)     // sub 1: length
	putU16(kern, 34, 0x0201) //   coverage: horizontal, format 2
	putU16(kern, 46, 20)     // sub 2: length
	putU16(kern, 48, 0x0005) //   coverage: horizontal, cross-stream, format 0
	putU16(kern, 50, 1)      //   pair count
	putU16(kern, 58, 36)
	putU16(kern, 60, 57)
	putU16(kern, 62, 100)
	tables := []synthTable{
		{"maxp", maxpData(100)},
		{"kern", kern},
	}
	otf, err := Parse(buildFont(tables, true))
	if err != nil {
		t.Fatal(err)
	}
	if otf.Kern == nil {
		t.Fatal("expected a decoded kern table")
	}
	// the format 2 sub-table is skipped, the cross-stream one is decoded
	if len(otf.Kern.Subtables) != 2 {
		t.Fatalf("expected 2 decoded sub-tables, got %d", len(otf.Kern.Subtables))
	}
	warned := false
	for _, w := range otf.Warnings() {
		if w.Table == T("kern") {
			warned = true
		}
	}
	if !warned {
		t.Error("expected a warning for the skipped format 2 sub-table")
	}
	// pairs are sorted on decoding; cross-stream values do not contribute
	if k := otf.Kern.Kerning(36, 57); k != -120 {
		t.Errorf("expected kern -120 for pair (36, 57), got %d", k)
	}
	if k := otf.Kern.Kerning(36, 58); k != -80 {
		t.Errorf("expected kern -80 for pair (36, 58), got %d", k)
	}
	if k := otf.Kern.Kerning(57, 36); k != 0 {
		t.Errorf("expected no kern for the swapped pair, got %d", k)
	}
}

func TestKernApple(t *testing.T) {
	kern := make([]byte, 30)
	putU16(kern, 0, 1)  // version 1.0 as Fixed
	putU16(kern, 2, 0)
	putU32(kern, 4, 1)  // sub-table count
	putU32(kern, 8, 22) // sub 0: length
	putU16(kern, 12, 0) //   coverage horizontal, format 0
	putU16(kern, 16, 1) //   pair count
	putU16(kern, 24, 10)
	putU16(kern, 26, 20)
	putU16(kern, 28, 0xFFDF) // -33
	tables := []synthTable{
		{"maxp", maxpData(100)},
		{"kern", kern},
	}
	otf, err := Parse(buildFont(tables, true))
	if err != nil {
		t.Fatal(err)
	}
	if otf.Kern == nil || len(otf.Kern.Subtables) != 1 {
		t.Fatalf("expected one decoded sub-table, got %+v", otf.Kern)
	}
	if k := otf.Kern.Kerning(10, 20); k != -33 {
		t.Errorf("expected kern -33 for pair (10, 20), got %d", k)
	}
}

func TestKernUnknownVersion(t *testing.T) {
	kern := make([]byte, 8)
	putU16(kern, 0, 5)
	tables := []synthTable{
		{"maxp", maxpData(100)},
		{"kern", kern},
	}
	otf, err := Parse(buildFont(tables, true))
	if err != nil {
		t.Fatal(err)
	}
	table := getTable(otf, "kern", t)
	if !table.Self().IsOpaque() {
		t.Fatal("expected a kern table with an unknown version to be opaque")
	}
	var ud *UnsupportedDiscriminator
	if !errors.As(table.Self().AsOpaque().Reason, &ud) {
		t.Errorf("expected an unsupported discriminator as the opaque reason")
	}
	if otf.Kern != nil {
		t.Error("an opaque kern table must not be wired as a typed shortcut")
	}
}

func TestKernNilReceiver(t *testing.T) {
	var kern *KernTable
	if k := kern.Kerning(1, 2); k != 0 {
		t.Errorf("expected 0 from a nil kern table, got %d", k)
	}
}
