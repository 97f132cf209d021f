// Package fontload reads font files for the development tools of this
// module. Files are parsed with golang.org/x/image/font/sfnt as an
// independent plausibility check before the raw bytes are handed to the
// module's own parser.
package fontload

import (
	"fmt"
	"os"

	"golang.org/x/image/font/sfnt"
)

// FontFile is a font read from disk, with the x/image SFNT view kept as a
// cross-check.
type FontFile struct {
	Fontname string
	Filepath string
	Binary   []byte
	SFNT     *sfnt.Font
}

// Load reads an OpenType font (TTF or OTF) from a file.
func Load(fontfile string) (*FontFile, error) {
	bytez, err := os.ReadFile(fontfile)
	if err != nil {
		return nil, err
	}
	f, err := FromBytes(bytez)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fontfile, err)
	}
	f.Filepath = fontfile
	return f, nil
}

// FromBytes parses an OpenType font (TTF or OTF) from memory.
func FromBytes(fbytes []byte) (f *FontFile, err error) {
	f = &FontFile{Binary: fbytes}
	if f.SFNT, err = sfnt.Parse(fbytes); err != nil {
		return nil, err
	}
	f.Fontname, err = f.SFNT.Name(nil, sfnt.NameIDFull)
	return f, nil
}
