package otquery

import (
	"testing"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/sfnt/ot"
	"github.com/stretchr/testify/suite"
	"golang.org/x/image/font/gofont/goregular"
)

// --- Test Suite Preparation ------------------------------------------------

type QueryTestEnviron struct {
	suite.Suite
	otf *ot.Font
}

// listen for 'go test' command --> run test methods
func TestQueryFunctions(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.sfnt")
	defer teardown()
	suite.Run(t, new(QueryTestEnviron))
}

// run once, before test suite methods
func (env *QueryTestEnviron) SetupSuite() {
	env.T().Log("Setting up test suite")
	tracing.Select("font.sfnt").SetTraceLevel(tracing.LevelError)
	otf, err := ot.Parse(goregular.TTF)
	env.Require().NoError(err, "expected to parse the Go Regular font")
	env.otf = otf
	tracing.Select("font.sfnt").SetTraceLevel(tracing.LevelInfo)
}

// --- Tests -----------------------------------------------------------------

func (env *QueryTestEnviron) TestFontTypeInfo() {
	fti := FontType(env.otf)
	env.Equal("TrueType", fti, "expected font type of test font to be TrueType")
}

func (env *QueryTestEnviron) TestGeneralInfo() {
	info := NameInfo(env.otf)
	env.T().Logf("info = %v", info)
	fam, ok := info["family"]
	env.Require().True(ok, "font family identifier not found in font info")
	env.Equal("Go", fam, "expected font family name 'Go'")
	full, ok := info["fullname"]
	env.Require().True(ok, "full font name not found in font info")
	env.NotEmpty(full, "expected a non-empty full font name")
}

func (env *QueryTestEnviron) TestFontMetrics() {
	metrics := FontMetrics(env.otf)
	env.T().Logf("metrics = %+v", metrics)
	env.EqualValues(2048, metrics.UnitsPerEm, "expected 2048 units per em")
	env.Greater(int(metrics.Ascent), 0, "expected positive ascent")
	env.Less(int(metrics.Descent), 0, "expected negative descent")
	env.Greater(int(metrics.MaxAdvance), 0, "expected positive max advance")
}

func (env *QueryTestEnviron) TestGlyphIndex() {
	gid := GlyphIndex(env.otf, 'A')
	env.NotZero(gid, "expected 'A' to be mapped to a glyph")
	missing := GlyphIndex(env.otf, rune(0xE9999))
	env.Zero(missing, "expected unmapped code-point to yield glyph 0")
}

func (env *QueryTestEnviron) TestReverseLookup() {
	gid := GlyphIndex(env.otf, 'A')
	env.Require().NotZero(gid)
	r := CodePointForGlyph(env.otf, gid)
	env.Equal('A', r, "expected code-point to be %#U, is %#U", 'A', r)
}

func (env *QueryTestEnviron) TestGlyphMetrics() {
	gid := GlyphIndex(env.otf, 'A')
	env.Require().NotZero(gid)
	metrics := GlyphMetrics(env.otf, gid)
	env.T().Logf("glyph metrics of 'A' = %+v", metrics)
	env.Greater(int(metrics.Advance), 0, "expected positive advance for 'A'")
	env.False(metrics.BBox.IsEmpty(), "expected a non-empty bounding box for 'A'")
	env.Equal(metrics.Advance-(metrics.LSB+metrics.BBox.Dx()), metrics.RSB,
		"right side bearing must balance advance, lsb and bbox width")
}

func (env *QueryTestEnviron) TestFixedPitch() {
	env.False(IsFixedPitch(env.otf), "Go Regular is a proportional font")
}

func (env *QueryTestEnviron) TestTextWidth() {
	w := TextWidth(env.otf, "Hello")
	env.Greater(int(w), 0, "expected positive width for a non-empty string")
	wide := TextWidth(env.otf, "Hello, world")
	env.Greater(int(wide), int(w), "longer text measures wider")
}

func (env *QueryTestEnviron) TestScriptSupport() {
	scr, lang := SupportsScript(env.otf, ot.T("latn"), ot.DFLT)
	env.T().Logf("script support: %s/%s", scr, lang)
	env.Equal(ot.DFLT, lang, "expected default language system")
}
