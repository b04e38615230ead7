// Package flowchart is the public entry point for embedding flowchart
// generation. It re-exports the generation pipeline with stable types so
// callers do not reach into internal packages.
package flowchart

import (
	"github.com/standardbeagle/flowgen/internal/lang"
	"github.com/standardbeagle/flowgen/internal/parser"
	"github.com/standardbeagle/flowgen/internal/types"
)

// Language identifies a supported source grammar.
type Language = parser.Language

const (
	LanguageCpp  = parser.LanguageCpp
	LanguageJava = parser.LanguageJava
	LanguageRust = parser.LanguageRust
)

// IR is the generated flowchart: typed nodes, labeled edges, and a source
// location map.
type IR = types.FlowchartIR

// Options selects which callable to chart.
type Options = lang.Options

// Result is the outcome of one generation request.
type Result = lang.Result

// LanguageForPath maps a file path to its language by extension.
func LanguageForPath(path string) (Language, bool) {
	return parser.LanguageForPath(path)
}

// Generate builds the flowchart for one callable in src.
func Generate(language Language, src []byte, opts Options) (Result, error) {
	return lang.Generate(language, src, opts)
}

// ListFunctions returns the display names of every callable in src.
func ListFunctions(language Language, src []byte) ([]string, error) {
	return lang.ListFunctions(language, src)
}

// FindEnclosingCallableName resolves a byte position to the name of the
// innermost callable containing it.
func FindEnclosingCallableName(language Language, src []byte, pos uint) (string, bool, error) {
	return lang.FindEnclosingCallableName(language, src, pos)
}
