package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/npillmayer/sfnt/ot"
	"github.com/npillmayer/sfnt/otquery"
	"github.com/pterm/pterm"
)

var ERR_NO_TABLE = errors.New("no table set")

func (intp *Intp) checkTable() error {
	if intp.table == nil {
		return ERR_NO_TABLE
	}
	return nil
}

// layoutTable returns the layout structure of the currently selected table,
// which has to be GSUB or GPOS.
func (intp *Intp) layoutTable() (*ot.LayoutTable, error) {
	if err := intp.checkTable(); err != nil {
		return nil, err
	}
	if gsub := intp.table.Self().AsGSub(); gsub != nil {
		return &gsub.LayoutTable, nil
	}
	if gpos := intp.table.Self().AsGPos(); gpos != nil {
		return &gpos.LayoutTable, nil
	}
	return nil, errors.New("selected table is not a layout table (GSUB/GPOS)")
}

func tablesOp(intp *Intp, op *Op) (error, bool) {
	data := [][]string{
		{"Tag", "Offset", "Length", "Status"},
	}
	for _, entry := range intp.font.Directory() {
		status := "ok"
		table := intp.font.Table(entry.Tag)
		if table == nil {
			status = "missing"
		} else if table.Self().IsOpaque() {
			status = "opaque"
		}
		data = append(data, []string{
			entry.Tag.String(),
			fmt.Sprintf("%d", entry.Offset),
			fmt.Sprintf("%d", entry.Length),
			status,
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	return nil, false
}

func tableOp(intp *Intp, op *Op) (error, bool) {
	tag := op.arg
	if intp.table = intp.font.Table(ot.T(tag)); intp.table == nil {
		return errors.New("table not found in font"), false
	}
	tracer().Infof("setting table: %v", tag)
	if intp.table.Self().IsOpaque() {
		pterm.Info.Printf("table %s present but not decoded\n", tag)
	}
	return nil, false
}

func infoOp(intp *Intp, op *Op) (error, bool) {
	pterm.Printf("font type: %s\n", otquery.FontType(intp.font))
	info := otquery.NameInfo(intp.font)
	for _, key := range []string{"family", "subfamily", "fullname", "version"} {
		if v, ok := info[key]; ok {
			pterm.Printf("%-10s %s\n", key, v)
		}
	}
	pterm.Printf("layout tables: %v\n", otquery.LayoutTables(intp.font))
	if otquery.IsFixedPitch(intp.font) {
		pterm.Println("fixed pitch font")
	}
	return nil, false
}

func metricsOp(intp *Intp, op *Op) (error, bool) {
	if arg, ok := op.hasArg(); ok {
		// per-glyph metrics for a code-point argument
		gid := glyphForArg(intp.font, arg)
		metrics := otquery.GlyphMetrics(intp.font, gid)
		pterm.Printf("glyph %d: advance=%d lsb=%d rsb=%d bbox=%v\n",
			gid, metrics.Advance, metrics.LSB, metrics.RSB, metrics.BBox)
		return nil, false
	}
	metrics := otquery.FontMetrics(intp.font)
	pterm.Printf("units/em=%d ascent=%d descent=%d linegap=%d maxadvance=%d\n",
		metrics.UnitsPerEm, metrics.Ascent, metrics.Descent, metrics.LineGap, metrics.MaxAdvance)
	return nil, false
}

func glyphOp(intp *Intp, op *Op) (error, bool) {
	arg, ok := op.hasArg()
	if !ok {
		return errors.New("usage: glyph:<char>"), false
	}
	gid := glyphForArg(intp.font, arg)
	if gid == 0 {
		pterm.Printf("'%s' is not mapped (glyph 0 = .notdef)\n", arg)
		return nil, false
	}
	pterm.Printf("'%s' maps to glyph %d\n", arg, gid)
	if r := otquery.CodePointForGlyph(intp.font, gid); r != 0 {
		pterm.Printf("glyph %d reverse-maps to %#U\n", gid, r)
	}
	return nil, false
}

func measureOp(intp *Intp, op *Op) (error, bool) {
	text, ok := op.hasArg()
	if !ok {
		return errors.New("usage: measure:<text>"), false
	}
	w := otquery.TextWidth(intp.font, text)
	pterm.Printf("width of %q = %d font units\n", text, w)
	return nil, false
}

func scriptsOp(intp *Intp, op *Op) (err error, stop bool) {
	var lyt *ot.LayoutTable
	if lyt, err = intp.layoutTable(); err != nil {
		return
	}
	if tag, ok := op.hasArg(); ok {
		script := lyt.Script(ot.T(tag))
		if script == nil {
			return fmt.Errorf("script %s not in table", tag), false
		}
		printScript(script)
		return
	}
	tags := make([]string, 0, len(lyt.Scripts))
	for i := range lyt.Scripts {
		tags = append(tags, lyt.Scripts[i].Tag.String())
	}
	pterm.Printf("ScriptList keys: %v\n", tags)
	return
}

func featuresOp(intp *Intp, op *Op) (err error, stop bool) {
	var lyt *ot.LayoutTable
	if lyt, err = intp.layoutTable(); err != nil {
		return
	}
	if op.noArg() {
		pterm.Printf("FeatureList has %d entries\n", len(lyt.Features))
		return
	}
	if i, err2 := strconv.Atoi(op.arg); err2 == nil {
		feature := lyt.Feature(i)
		if feature == nil {
			return fmt.Errorf("feature index out of range: %d", i), false
		}
		pterm.Printf("feature %d = %s, lookups %v\n", i, feature.Tag, feature.LookupIndices)
		return
	}
	return fmt.Errorf("feature index not numeric: %v", op.arg), false
}

func lookupsOp(intp *Intp, op *Op) (err error, stop bool) {
	var lyt *ot.LayoutTable
	if lyt, err = intp.layoutTable(); err != nil {
		return
	}
	gpos := intp.table.Self().AsGPos() != nil
	if op.noArg() {
		printLookupList(lyt, gpos)
		return
	}
	if i, err2 := strconv.Atoi(op.arg); err2 == nil {
		printLookup(lyt, i, gpos)
		return
	}
	tracer().Errorf("Lookup index not numeric: %v", op.arg)
	return errors.New("invalid lookup index"), false
}

func errorsOp(intp *Intp, op *Op) (error, bool) {
	errs := intp.font.Errors()
	warns := intp.font.Warnings()
	if len(errs) == 0 && len(warns) == 0 {
		pterm.Info.Println("font parsed without diagnostics")
		return nil, false
	}
	for _, e := range errs {
		pterm.Error.Println(e.Error())
	}
	for _, w := range warns {
		pterm.Printf("warning: table %s: %s\n", w.Table, w.Issue)
	}
	return nil, false
}

// glyphForArg resolves a command argument to a glyph index. A numeric
// argument is taken as a glyph index directly, anything else as a character.
func glyphForArg(otf *ot.Font, arg string) ot.GlyphIndex {
	if n, err := strconv.Atoi(arg); err == nil {
		return ot.GlyphIndex(n)
	}
	for _, r := range arg {
		return otquery.GlyphIndex(otf, r)
	}
	return 0
}
