package main

import (
	"strings"

	"github.com/pterm/pterm"
)

func helpOp(intp *Intp, op *Op) (error, bool) {
	help(op.arg)
	return nil, false
}

func help(topic string) {
	tracer().Infof("help %v", topic)
	t := strings.ToLower(topic)
	switch t {
	case "script", "scripts", "scriptlist":
		pterm.Info.Println("ScriptList / Script")
		pterm.Println(`
	ScriptList is a property of GSUB and GPOS.
	It consists of ScriptRecords:
	+------------+----------------+
	| Script Tag | Link to Script |
	+------------+----------------+

	A Script table links to a default LangSys entry, and contains a list of LangSys records:
	+--------------------------------+
	| Link to default LangSys        |
	+--------------+-----------------+
	| Language Tag | Link to LangSys |
	+--------------+-----------------+

	Select GSUB or GPOS with 'table:GSUB' first, then use 'scripts' or 'scripts:latn'.
	`)
	case "lang", "langsys", "langs", "language":
		pterm.Info.Println("LangSys")
		pterm.Println(`
	LangSys is pointed to from a Script Record.
	It links a language with features to activate. It does so using an index into the feature table.
	+-----------------------------------+
	| Index of required feature or null |
	+-----------------------------------+
	| Index of feature 1                |
	+-----------------------------------+
	| ...                               |
	+-----------------------------------+
	`)
	case "table", "tables":
		pterm.Info.Println("Tables")
		pterm.Println(`
	'tables' lists the table directory of the font, including tables which are
	present but could not be decoded (shown as opaque).
	'table:<tag>' selects a table for subsequent commands, e.g. 'table:GSUB'.
	`)
	default:
		pterm.Info.Println("Commands")
		pterm.Println(`
	tables            list the font's table directory
	table:<tag>       select a table, e.g. table:GPOS
	info              show naming and flavour information
	metrics           show font-wide metrics
	metrics:<char>    show metrics of the glyph for a character
	glyph:<char>      map a character to its glyph index
	measure:<text>    measure a piece of text in font units
	scripts[:<tag>]   list scripts of the selected layout table
	features[:<i>]    list features of the selected layout table
	lookups[:<i>]     list lookups of the selected layout table
	errors            show parse diagnostics
	quit              leave (or <ctrl>D)

	help:<topic>      more on: scripts, lang, tables
	`)
	}
}
