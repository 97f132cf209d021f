package otquery

import (
	"github.com/npillmayer/sfnt/ot"
)

// --- Font information ------------------------------------------------------

// FontType returns the flavour of a font as a string, one of "OpenType",
// "TrueType" or "unknown".
func FontType(otf *ot.Font) string {
	if otf == nil || otf.Header == nil {
		return "unknown"
	}
	switch otf.Header.FontType {
	case 0x4f54544f: // 'OTTO'
		return "OpenType"
	case 0x00010000, 0x74727565: // 'true'
		return "TrueType"
	}
	return "unknown"
}

// NameInfo collects global information about a font, as provided by the
// font's 'name' table. Keys to the returned map are
//
//	family, subfamily, version, fullname
//
// Entries missing from the name table are left out of the map.
func NameInfo(otf *ot.Font) map[string]string {
	info := map[string]string{}
	if otf == nil || otf.Name == nil {
		return info
	}
	names := otf.Name
	for key, nameID := range map[string]uint16{
		"family":    ot.NameFamily,
		"subfamily": ot.NameSubfamily,
		"version":   ot.NameVersion,
		"fullname":  ot.NameFull,
	} {
		if s := names.Name(nameID); s != "" {
			info[key] = s
		}
	}
	return info
}

// LayoutTables returns a list of the OpenType layout tables which have been
// parsed for this font, by name.
func LayoutTables(otf *ot.Font) []string {
	var tables []string
	if otf == nil {
		return tables
	}
	if otf.Layout.GSub != nil {
		tables = append(tables, "GSUB")
	}
	if otf.Layout.GPos != nil {
		tables = append(tables, "GPOS")
	}
	return tables
}

// --- Script and language support -------------------------------------------

// SupportsScript returns a tuple (script-tag, language-tag) for a given input
// of a script tag and a language tag. If the language has no special support
// in the font, DFLT will be returned. If the script has no support in the
// font, DFLT will be returned for the script as well.
func SupportsScript(otf *ot.Font, scr ot.Tag, lang ot.Tag) (ot.Tag, ot.Tag) {
	if otf == nil {
		return 0, 0
	}
	gsub := otf.Layout.GSub
	if gsub == nil {
		return ot.DFLT, ot.DFLT
	}
	script := gsub.Script(scr)
	if script == nil {
		tracer().Infof("cannot find script %s in font", scr)
		return ot.DFLT, ot.DFLT
	}
	tracer().Debugf("script %s is contained in GSUB", scr)
	for i := range script.LangSys {
		if script.LangSys[i].Tag == lang {
			return scr, lang
		}
	}
	return scr, ot.DFLT
}

// FeatureTags lists the feature tags of a font's GSUB and GPOS tables.
func FeatureTags(otf *ot.Font) []ot.Tag {
	var tags []ot.Tag
	if otf == nil {
		return tags
	}
	seen := map[ot.Tag]bool{}
	collect := func(features []ot.FeatureRecord) {
		for i := range features {
			if !seen[features[i].Tag] {
				seen[features[i].Tag] = true
				tags = append(tags, features[i].Tag)
			}
		}
	}
	if otf.Layout.GSub != nil {
		collect(otf.Layout.GSub.Features)
	}
	if otf.Layout.GPos != nil {
		collect(otf.Layout.GPos.Features)
	}
	return tags
}
