package ot

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Code comments often cite passages from the OpenType specification
// version 1.8.4; see https://docs.microsoft.com/en-us/typography/opentype/spec/.

// Maximum reasonable counts for OpenType table structures.
// These limits prevent malicious fonts from claiming unreasonably large counts
// that could lead to excessive memory allocation or out-of-bounds reads.
const (
	MaxScriptCount   = 50    // Scripts: typically < 10
	MaxFeatureCount  = 500   // Features: typically < 200
	MaxLookupCount   = 1000  // Lookups: typically < 100
	MaxGlyphCount    = 65536 // Maximum glyph index (uint16)
	MaxCoverageCount = 65535 // Coverage tables
	MaxClassDefCount = 65535 // Class definitions
	MaxCMapSegments  = 20000 // cmap format 4/12 segment count
	MaxCollectionLen = 1024  // members of a TTC collection
)

// MaxExtensionDepth bounds Extension lookup nesting, following ttf-parser's
// approach of bounded recursion.
const MaxExtensionDepth = 16

// sfntVersion values for the leading tag of a font resp. collection.
const (
	fontTypeOpenTypeCFF = 0x4f54544f // 'OTTO'
	fontTypeTrueType    = 0x00010000
	fontTypeAppleTT     = 0x74727565 // 'true'
	fontTypeCollection  = 0x74746366 // 'ttcf'
)

func supportedFontType(t uint32) bool {
	return t == fontTypeOpenTypeCFF || t == fontTypeTrueType || t == fontTypeAppleTT
}

// Parse parses an OpenType font from a byte slice. If the data is a TTC font
// collection, the first member font is returned; use ParseCollection for
// access to all members.
//
// An ot.Font needs ongoing access to the font's byte-data after the Parse
// function returns. Its elements are assumed immutable while the ot.Font
// remains in use.
func Parse(font []byte) (*Font, error) {
	fonts, err := ParseCollection(font)
	if err != nil {
		return nil, err
	}
	return fonts[0], nil
}

// ParseCollection parses a font file which may be either a single sfnt font
// or a TTC font collection ('ttcf'). It returns one Font per member; a single
// font yields a one-element slice.
//
// A malformed member of a collection does not fail its siblings: the member
// is skipped and the failure is reported through the error only if no member
// at all could be parsed.
func ParseCollection(font []byte) ([]*Font, error) {
	src := binarySegm(font)
	leader, err := src.u32(0)
	if err != nil {
		return nil, &MalformedContainer{Reason: "data shorter than a font header"}
	}
	if leader != fontTypeCollection {
		otf, err := parseFontAt(src, 0)
		if err != nil {
			return nil, err
		}
		return []*Font{otf}, nil
	}
	// TTCHeader: tag, majorVersion, minorVersion, numFonts, offsetTable[numFonts]
	c := cursorOn(src)
	c.Skip(4)
	major, _ := c.U16()
	minor, _ := c.U16()
	numFonts, err := c.U32()
	if err != nil {
		return nil, &MalformedContainer{Reason: "truncated collection header"}
	}
	if major != 1 && major != 2 {
		return nil, &MalformedContainer{
			Reason: fmt.Sprintf("collection version %d.%d not supported", major, minor),
		}
	}
	if numFonts == 0 || numFonts > MaxCollectionLen {
		return nil, &MalformedContainer{
			Reason: fmt.Sprintf("implausible collection member count %d", numFonts),
		}
	}
	tracer().Debugf("font collection version %d.%d with %d members", major, minor, numFonts)
	fonts := make([]*Font, 0, numFonts)
	var firstErr error
	for i := 0; i < int(numFonts); i++ {
		off, err := c.U32()
		if err != nil {
			return nil, &MalformedContainer{Reason: "collection offset table truncated"}
		}
		otf, err := parseFontAt(src, off)
		if err != nil {
			tracer().Errorf("collection member %d: %v", i, err)
			if firstErr == nil {
				firstErr = fmt.Errorf("collection member %d: %w", i, err)
			}
			continue
		}
		fonts = append(fonts, otf)
	}
	if len(fonts) == 0 {
		return nil, firstErr
	}
	return fonts, nil
}

// parseFontAt decodes the table directory starting at offset base of src and
// runs the table decoders. Member fonts of a collection share the underlying
// bytes; table offsets in the directory are relative to the start of the
// whole file.
func parseFontAt(src binarySegm, base uint32) (*Font, error) {
	if base >= uint32(len(src)) {
		return nil, &MalformedContainer{
			Reason: fmt.Sprintf("font offset %d outside data of size %d", base, len(src)),
		}
	}
	// https://www.microsoft.com/typography/otspec/otff.htm: Offset Table is 12 bytes.
	r := bytes.NewReader(src[base:])
	h := FontHeader{}
	if err := binary.Read(r, binary.BigEndian, &h); err != nil {
		return nil, &MalformedContainer{Reason: "data shorter than a font header"}
	}
	tracer().Debugf("header = %v, tag = %x|%s", h, h.FontType, Tag(h.FontType).String())
	if !supportedFontType(h.FontType) {
		return nil, &MalformedContainer{
			Reason: fmt.Sprintf("font type not supported: %x", h.FontType),
		}
	}
	ec := &errorCollector{}
	otf := &Font{Header: &h, tables: make(map[Tag]Table)}

	// "The Offset Table is followed immediately by the Table Record entries …
	// sorted in ascending order by tag", 16 bytes each. Fonts in the wild do
	// ship unsorted directories; tolerate them with a warning and index by tag.
	recordsSize, ok := checkedMulInt(16, int(h.TableCount))
	if !ok {
		return nil, &MalformedContainer{Reason: "table count overflows directory size"}
	}
	sorted := true
	otf.dir = make([]DirectoryEntry, 0, h.TableCount)
	if recordsSize > 0 { // a directory of zero tables is degenerate but valid
		buf, err := src.view(int(base)+12, recordsSize)
		if err != nil {
			return nil, &MalformedContainer{
				Reason: fmt.Sprintf("directory of %d tables runs past end of data", h.TableCount),
			}
		}
		for b, prevTag := buf, Tag(0); len(b) > 0; b = b[16:] {
			entry := DirectoryEntry{
				Tag:      MakeTag(b),
				Checksum: u32(b[4:8]),
				Offset:   u32(b[8:12]),
				Length:   u32(b[12:16]),
			}
			if entry.Tag < prevTag {
				sorted = false
			}
			prevTag = entry.Tag
			otf.dir = append(otf.dir, entry)
		}
	}
	if !sorted {
		ec.addWarning(T(""), "table directory not sorted by tag", base+12)
	}

	scheduleTableParse(otf, src, ec)
	verifyChecksums(otf, src, ec)

	otf.parseErrors = ec.errors
	otf.parseWarnings = ec.warnings
	return otf, nil
}

// RequiredTables lists the tables the OpenType spec requires for a font to
// function correctly. Absence is reported as a warning, not an error; this
// parser serves inspection of incomplete fonts too.
var RequiredTables = []string{
	"cmap", "head", "hhea", "hmtx", "maxp", "name", "OS/2", "post",
}

// --- Checksums -------------------------------------------------------------

// verifyChecksums recomputes each directory entry's checksum and records a
// warning per mismatch. Real fonts get this wrong often enough that a
// mismatch must never abort parsing.
func verifyChecksums(otf *Font, src binarySegm, ec *errorCollector) {
	for _, entry := range otf.dir {
		end, ok := checkedAddU32(entry.Offset, entry.Length)
		if !ok || end > uint32(len(src)) {
			continue // already reported by the scheduler
		}
		sum := tableChecksum(src[entry.Offset:end], entry.Tag == T("head"))
		if sum != entry.Checksum {
			ec.addWarning(entry.Tag,
				fmt.Sprintf("checksum mismatch: directory says %#x, computed %#x", entry.Checksum, sum),
				entry.Offset)
		}
	}
}

// tableChecksum sums the table as big-endian uint32 words, the trailing
// partial word padded with zeros. For the head table the checksumAdjustment
// field (bytes 8..12) is treated as zero, per spec.
func tableChecksum(b binarySegm, isHead bool) uint32 {
	var sum uint32
	n := len(b)
	for i := 0; i < n; i += 4 {
		var word uint32
		for j := 0; j < 4; j++ {
			word <<= 8
			if i+j < n {
				word |= uint32(b[i+j])
			}
		}
		if isHead && i == 8 {
			continue
		}
		sum += word
	}
	return sum
}
