package ot

// Reading bytes from a font's binary representation.
//
// All multi-byte values in SFNT fonts are big-endian. Two layers of access
// exist: binarySegm for index-based reads where a structure's layout makes
// offsets self-evident, and Cursor for sequential decoding with positional
// error reporting.

func u16(b []byte) uint16 {
	_ = b[1] // Bounds check hint to compiler
	return uint16(b[0])<<8 | uint16(b[1])<<0
}

func u32(b []byte) uint32 {
	_ = b[3] // Bounds check hint to compiler
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])<<0
}

// --- Byte segments ---------------------------------------------------------

// binarySegm is a segment of byte data. We use it throughout this module to
// navigate the font's binary data.
type binarySegm []byte

func (b binarySegm) Size() int {
	return len(b)
}

func (b binarySegm) Bytes() []byte {
	return b
}

// view returns n bytes at the given offset.
// The byte segment returned is a sub-slice of b.
func (b binarySegm) view(offset, n int) (binarySegm, error) {
	if offset < 0 || n <= 0 || offset+n > len(b) {
		return nil, boundsError(offset, n, len(b))
	}
	return b[offset : offset+n], nil
}

// u16 returns the uint16 in b at the relative offset i.
func (b binarySegm) u16(i int) (uint16, error) {
	buf, err := b.view(i, 2)
	if err != nil {
		return 0, err
	}
	return u16(buf), nil
}

// u32 returns the uint32 in b at the relative offset i.
func (b binarySegm) u32(i int) (uint32, error) {
	buf, err := b.view(i, 4)
	if err != nil {
		return 0, err
	}
	return u32(buf), nil
}

// U16 reads a uint16 at byte index i, returning 0 on out-of-bounds.
// For decoding paths that must report errors, use a Cursor instead.
func (b binarySegm) U16(i int) uint16 {
	n, err := b.u16(i)
	if err != nil {
		return 0
	}
	return n
}

// U32 reads a uint32 at byte index i, returning 0 on out-of-bounds.
func (b binarySegm) U32(i int) uint32 {
	n, err := b.u32(i)
	if err != nil {
		return 0
	}
	return n
}

func boundsError(at, n, size int) *UnexpectedEndOfData {
	return &UnexpectedEndOfData{At: at, Want: n, Bound: size}
}

// --- Cursor ----------------------------------------------------------------

// A Cursor walks a byte segment sequentially, reading fixed-width big-endian
// values. Every read is bounds-checked against the segment the cursor was
// scoped to; a violating read returns *UnexpectedEndOfData carrying the
// attempted position and leaves the position unchanged. No read ever panics,
// whatever the input bytes.
//
// Sub extracts a nested cursor for a sub-segment, the tool of choice when a
// table embeds a sub-table by offset: bounds violations inside the sub-table
// then report positions relative to the sub-table start.
type Cursor struct {
	data binarySegm
	pos  int
}

func cursorOn(b binarySegm) *Cursor {
	return &Cursor{data: b}
}

// NewCursor creates a cursor over b, positioned at 0.
func NewCursor(b []byte) *Cursor {
	return cursorOn(b)
}

// Pos returns the current byte position.
func (c *Cursor) Pos() int {
	return c.pos
}

// Size returns the length of the segment the cursor is scoped to.
func (c *Cursor) Size() int {
	return len(c.data)
}

// Seek positions the cursor at byte offset pos.
func (c *Cursor) Seek(pos int) error {
	if pos < 0 || pos > len(c.data) {
		return boundsError(pos, 0, len(c.data))
	}
	c.pos = pos
	return nil
}

// Skip advances the cursor by n bytes.
func (c *Cursor) Skip(n int) error {
	return c.Seek(c.pos + n)
}

func (c *Cursor) require(n int) (binarySegm, error) {
	if c.pos+n > len(c.data) {
		return nil, boundsError(c.pos, n, len(c.data))
	}
	b := c.data[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// U8 reads an unsigned byte.
func (c *Cursor) U8() (uint8, error) {
	b, err := c.require(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// U16 reads a big-endian uint16.
func (c *Cursor) U16() (uint16, error) {
	b, err := c.require(2)
	if err != nil {
		return 0, err
	}
	return u16(b), nil
}

// U24 reads a big-endian 24-bit unsigned integer (used by cmap format 14).
func (c *Cursor) U24() (uint32, error) {
	b, err := c.require(3)
	if err != nil {
		return 0, err
	}
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2]), nil
}

// U32 reads a big-endian uint32.
func (c *Cursor) U32() (uint32, error) {
	b, err := c.require(4)
	if err != nil {
		return 0, err
	}
	return u32(b), nil
}

// I8 reads a signed byte.
func (c *Cursor) I8() (int8, error) {
	n, err := c.U8()
	return int8(n), err
}

// I16 reads a big-endian int16.
func (c *Cursor) I16() (int16, error) {
	n, err := c.U16()
	return int16(n), err
}

// I32 reads a big-endian int32.
func (c *Cursor) I32() (int32, error) {
	n, err := c.U32()
	return int32(n), err
}

// Fixed reads a 16.16 fixed-point number.
func (c *Cursor) Fixed() (Fixed, error) {
	n, err := c.I32()
	return Fixed(n), err
}

// ReadTag reads a 4-byte tag.
func (c *Cursor) ReadTag() (Tag, error) {
	n, err := c.U32()
	return Tag(n), err
}

// Bytes returns the next n bytes as a sub-slice and advances the cursor.
func (c *Cursor) Bytes(n int) ([]byte, error) {
	b, err := c.require(n)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// GlyphID reads a uint16 glyph index.
func (c *Cursor) GlyphID() (GlyphIndex, error) {
	n, err := c.U16()
	return GlyphIndex(n), err
}

// GlyphIDs reads n consecutive uint16 glyph indices.
func (c *Cursor) GlyphIDs(n int) ([]GlyphIndex, error) {
	b, err := c.require(n * 2)
	if err != nil {
		return nil, err
	}
	glyphs := make([]GlyphIndex, n)
	for i := range glyphs {
		glyphs[i] = GlyphIndex(u16(b[i*2:]))
	}
	return glyphs, nil
}

// U16s reads n consecutive uint16 values.
func (c *Cursor) U16s(n int) ([]uint16, error) {
	b, err := c.require(n * 2)
	if err != nil {
		return nil, err
	}
	vals := make([]uint16, n)
	for i := range vals {
		vals[i] = u16(b[i*2:])
	}
	return vals, nil
}

// Sub returns a new cursor scoped to [offset, offset+length) of this cursor's
// segment, positioned at 0. The parent cursor is unaffected.
func (c *Cursor) Sub(offset, length int) (*Cursor, error) {
	if offset < 0 || length < 0 || offset+length > len(c.data) {
		return nil, boundsError(offset, length, len(c.data))
	}
	return cursorOn(c.data[offset : offset+length]), nil
}

// SubFrom returns a cursor scoped from offset to the end of this cursor's
// segment. Sub-tables frequently declare no explicit length; their extent is
// bounded by the enclosing table instead.
func (c *Cursor) SubFrom(offset int) (*Cursor, error) {
	if offset < 0 || offset > len(c.data) {
		return nil, boundsError(offset, 0, len(c.data))
	}
	return cursorOn(c.data[offset:]), nil
}

// Segm exposes the cursor's whole segment for index-based access.
func (c *Cursor) Segm() binarySegm {
	return c.data
}

// --- Fixed-point -----------------------------------------------------------

// Fixed is a 16.16 fixed-point number, as used for version fields and
// italicAngle.
type Fixed int32

// Float64 converts to floating point.
func (f Fixed) Float64() float64 {
	return float64(f) / 65536.0
}

// --- Checked arithmetic ----------------------------------------------------

// Offset and count fields from untrusted input get multiplied and added
// during size validation. These helpers fail instead of wrapping around.

func checkedAddInt(a, b int) (int, bool) {
	if b > 0 && a > int(^uint(0)>>1)-b {
		return 0, false
	}
	return a + b, true
}

func checkedMulInt(a, b int) (int, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	p := a * b
	if p/a != b {
		return 0, false
	}
	return p, true
}

func checkedAddU32(a, b uint32) (uint32, bool) {
	if a > 0xFFFFFFFF-b {
		return 0, false
	}
	return a + b, true
}
