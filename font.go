/*
Package sfnt is for typeface and font handling.

There is a certain confusion with the nomenclature of typesetting. We will
stick to the following definitions:

▪︎ A "typeface" is a family of fonts. An example is "Helvetica".
This corresponds to a TrueType "collection" (*.ttc).

▪︎ A "scalable font" is a font, i.e. a variant of a typeface with a
certain weight, slant, etc.  An example is "Helvetica regular".

▪︎ A "typecase" is a scaled font, i.e. a font in a certain size for
a certain script and language. The name is reminiscend on the wooden
boxes of typesetters in the era of metal type.
An example is "Helvetica regular 11pt, Latin, en_US".

Please note that Go (Golang) does use the terms "font" and "face"
differently–actually more or less in an opposite manner.

# Links

OpenType explained:
https://docs.microsoft.com/en-us/typography/opentype/

______________________________________________________________________

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package sfnt

import (
	"os"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/sfnt/ot"
	"github.com/npillmayer/sfnt/otquery"
)

// tracer writes to trace with key 'font.sfnt'
func tracer() tracing.Trace {
	return tracing.Select("font.sfnt")
}

// ScalableFont is an internal representation of an outline-font of type
// TTF or OTF.
type ScalableFont struct {
	Fontname string
	Filepath string   // file path
	Binary   []byte   // raw data
	Font     *ot.Font // the decoded font
}

// LoadOpenTypeFont loads an OpenType font (TTF or OTF) from a file.
func LoadOpenTypeFont(fontfile string) (*ScalableFont, error) {
	bytez, err := os.ReadFile(fontfile)
	if err != nil {
		return nil, err
	}
	f, err := ParseOpenTypeFont(bytez)
	if err != nil {
		return nil, err
	}
	f.Filepath = fontfile
	return f, nil
}

// ParseOpenTypeFont loads an OpenType font (TTF or OTF) from memory.
func ParseOpenTypeFont(fbytes []byte) (f *ScalableFont, err error) {
	f = &ScalableFont{Binary: fbytes}
	if f.Font, err = ot.Parse(fbytes); err != nil {
		return nil, err
	}
	if name := otquery.NameInfo(f.Font); name["fullname"] != "" {
		f.Fontname = name["fullname"]
		tracer().Debugf("loaded and parsed font %s", f.Fontname)
	}
	return
}

// FromBinary parses raw OpenType bytes and returns a decoded font.
//
// The input is expected to contain a complete single-font SFNT stream.
// It must not change after parsing for the font to remain usable.
func FromBinary(data []byte) (*ot.Font, error) {
	return ot.Parse(data)
}

// CollectionFromBinary parses a TrueType/OpenType collection ('ttcf') and
// returns all member fonts. Single-font input yields a one-element slice.
func CollectionFromBinary(data []byte) ([]*ot.Font, error) {
	return ot.ParseCollection(data)
}

// FamilyName extracts family and subfamily names from a font's 'name' table.
//
// Returned values are empty if no matching records exist or if records cannot
// be decoded by the current name-table reader.
func FamilyName(f *ot.Font) (family, subfamily string) {
	if f == nil || f.Name == nil {
		return "", ""
	}
	return f.Name.Name(ot.NameFamily), f.Name.Name(ot.NameSubfamily)
}
