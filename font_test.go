package sfnt

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"golang.org/x/image/font/gofont/goregular"
)

func TestParseOpenTypeFont(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.sfnt")
	defer teardown()
	//
	f, err := ParseOpenTypeFont(goregular.TTF)
	if err != nil {
		t.Fatal(err)
	}
	if f.Fontname == "" {
		t.Error("expected the font name to be filled in from the name table")
	}
	t.Logf("font name = %s", f.Fontname)
	if f.Font == nil || f.Font.Name == nil {
		t.Fatal("expected a decoded font with a name table")
	}
}

func TestFamilyName(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.sfnt")
	defer teardown()
	//
	otf, err := FromBinary(goregular.TTF)
	if err != nil {
		t.Fatal(err)
	}
	family, subfamily := FamilyName(otf)
	if family != "Go" {
		t.Errorf("expected family 'Go', got %q", family)
	}
	if subfamily == "" {
		t.Error("expected a non-empty subfamily")
	}
	if fam, _ := FamilyName(nil); fam != "" {
		t.Error("expected empty names for a nil font")
	}
}

func TestCollectionFromBinarySingle(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.sfnt")
	defer teardown()
	//
	fonts, err := CollectionFromBinary(goregular.TTF)
	if err != nil {
		t.Fatal(err)
	}
	if len(fonts) != 1 {
		t.Fatalf("expected a single-font stream to yield one font, got %d", len(fonts))
	}
}
