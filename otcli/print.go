package main

import (
	"fmt"
	"strings"

	"github.com/npillmayer/sfnt/ot"
	"github.com/pterm/pterm"
)

func printScript(script *ot.ScriptRecord) {
	pterm.Printf("Script %s\n", script.Tag)
	if script.DefaultLangSys != nil {
		pterm.Printf("  default LangSys: %s\n", formatLangSys(script.DefaultLangSys))
	}
	for i := range script.LangSys {
		rec := &script.LangSys[i]
		pterm.Printf("  LangSys %s: %s\n", rec.Tag, formatLangSys(rec.LangSys))
	}
}

func formatLangSys(ls *ot.LangSys) string {
	if ls == nil {
		return "<none>"
	}
	req := "-"
	if ls.RequiredFeature != 0xFFFF {
		req = fmt.Sprintf("%d", ls.RequiredFeature)
	}
	return fmt.Sprintf("required=%s features=%v", req, ls.FeatureIndices)
}

func printLookupList(table *ot.LayoutTable, gpos bool) {
	count := len(table.Lookups)
	pterm.Printf("LookupList has %d entries\n", count)
	if count == 0 {
		return
	}
	data := [][]string{
		{"Index", "Type", "Subtables", "Flags"},
	}
	for i, lookup := range table.Lookups {
		data = append(data, []string{
			fmt.Sprintf("%d", i),
			formatLookupType(lookup.Type, gpos),
			fmt.Sprintf("%d", len(lookup.Subtables)),
			formatLookupFlags(lookup.Flag),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func printLookup(table *ot.LayoutTable, index int, gpos bool) {
	if index < 0 || index >= len(table.Lookups) {
		pterm.Error.Printf("Lookup index out of range: %d\n", index)
		return
	}
	lookup := table.Lookups[index]
	pterm.Printf("Lookup %d: type=%s flags=%s subtables=%d\n",
		index,
		formatLookupType(lookup.Type, gpos),
		formatLookupFlags(lookup.Flag),
		len(lookup.Subtables),
	)
	data := [][]string{
		{"Sub", "Type", "Format", "Detail"},
	}
	for i, sub := range lookup.Subtables {
		data = append(data, []string{
			fmt.Sprintf("%d", i),
			formatLookupType(sub.LookupType(), gpos),
			fmt.Sprintf("%d", sub.SubFormat()),
			formatSubtableSummary(sub),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func formatLookupType(ltype uint16, gpos bool) string {
	if ltype == 0 {
		return "Unknown(0)"
	}
	if gpos {
		return ot.GPosLookupTypeString(ltype)
	}
	return ot.GSubLookupTypeString(ltype)
}

func formatLookupFlags(flag ot.LayoutLookupFlag) string {
	if flag == 0 {
		return "-"
	}
	parts := make([]string, 0, 6)
	if flag&ot.LOOKUP_FLAG_RIGHT_TO_LEFT != 0 {
		parts = append(parts, "RightToLeft")
	}
	if flag&ot.LOOKUP_FLAG_IGNORE_BASE_GLYPHS != 0 {
		parts = append(parts, "IgnoreBase")
	}
	if flag&ot.LOOKUP_FLAG_IGNORE_LIGATURES != 0 {
		parts = append(parts, "IgnoreLigatures")
	}
	if flag&ot.LOOKUP_FLAG_IGNORE_MARKS != 0 {
		parts = append(parts, "IgnoreMarks")
	}
	if flag&ot.LOOKUP_FLAG_USE_MARK_FILTERING_SET != 0 {
		parts = append(parts, "UseMarkFilteringSet")
	}
	if flag&ot.LOOKUP_FLAG_MARK_ATTACHMENT_TYPE_MASK != 0 {
		parts = append(parts, fmt.Sprintf("MarkAttachType=%d", flag>>8))
	}
	return strings.Join(parts, "|")
}

func formatSubtableSummary(sub ot.LookupSubtable) string {
	switch v := sub.(type) {
	case *ot.SinglePos:
		return fmt.Sprintf("coverage %d glyphs", v.Coverage.Count())
	case *ot.PairPos:
		return fmt.Sprintf("coverage %d glyphs", v.Coverage.Count())
	case *ot.SingleSubst:
		return fmt.Sprintf("coverage %d glyphs", v.Coverage.Count())
	case *ot.LigatureSubst:
		return fmt.Sprintf("coverage %d glyphs", v.Coverage.Count())
	default:
		return fmt.Sprintf("%T", sub)
	}
}
