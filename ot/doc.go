/*
Package ot parses the binary container format of OpenType and TrueType fonts
and exposes their tables to clients.

Intended audience for this package are:

▪︎ text shapers, such as HarfBuzz (https://harfbuzz.github.io/what-does-harfbuzz-do.html)

▪︎ glyph rasterizers, such as FreeType (https://github.com/golang/freetype)

▪︎ any application needing to have the internal structure of an OpenType font file
available, and possibly extending the methods of package `ot` by handling
additional font tables

Package `ot` will not interpret the tables of a font beyond decoding their
structure, but rather expose the decoded tables to the client. For example, it
is not possible to ask package `ot` for a kerning distance between two glyphs.
Clients have to check for the availability of kerning information and consult
the appropriate table(s) themselves. From this point of view, `ot` is a
low-level package. Functions for querying metrics and other derived information
from a font are homed in a sister package.

Parsing proceeds in two stages. The container stage decodes the outer framing,
i.e. the table directory of a single font or the members of a TTC font
collection, without touching any table content. The table stage then runs a
registered decoder per table tag, ordered such that a table's prerequisites
(hmtx needs hhea and maxp, loca needs head and maxp, ...) are decoded first.
A table whose decoder fails, or for which no decoder is registered, is kept as
an opaque byte range rather than failing the font as a whole; the condition is
recorded and retrievable from Font.Errors.

# Status

Work in progress. Handling fonts is fiddly and fonts have become complex
software applications in their own right. I often need a break from the vast
desert of bytes (without any sign posts), which is what font data files are at
their core.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>

Some cmap-decoding code has originally been derived from
golang.org/x/image/font/sfnt/cmap.go, as the cmap-routines are not accessible
through the sfnt package's API. I understand this to be legally okay as long
as the Go license information stays intact.

	Copyright 2017 The Go Authors. All rights reserved.
	Use of this source code is governed by a BSD-style
	license that can be found in the LICENSE file.

The license file mentioned can be found in file GO-LICENSE at the root folder
of this module.
*/
package ot

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'font.sfnt'
func tracer() tracing.Trace {
	return tracing.Select("font.sfnt")
}
