// Package parser owns the tree-sitter collaborators: grammar loading for the
// three supported languages and the parse call itself. Everything above this
// package sees only immutable syntax trees.
package parser

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"

	"github.com/standardbeagle/flowgen/internal/debug"
	"github.com/standardbeagle/flowgen/internal/errors"
)

// Language identifies one of the supported source grammars.
type Language string

const (
	LanguageCpp  Language = "cpp"
	LanguageJava Language = "java"
	LanguageRust Language = "rust"
)

// Supported lists the languages a front-end exists for, in display order.
func Supported() []Language {
	return []Language{LanguageCpp, LanguageJava, LanguageRust}
}

// LanguageForPath maps a file extension to its language. The C extensions
// ride on the C++ grammar, which parses C sources fine for our purposes.
func LanguageForPath(path string) (Language, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cpp", ".cc", ".cxx", ".c", ".h", ".hpp", ".hxx":
		return LanguageCpp, true
	case ".java":
		return LanguageJava, true
	case ".rs":
		return LanguageRust, true
	}
	return "", false
}

// parserData holds one language's parser behind a lazy initializer. Grammars
// load on first use; a process that only ever sees Java never pays for the
// C++ grammar.
type parserData struct {
	once   sync.Once
	mu     sync.Mutex
	parser *tree_sitter.Parser
	err    error
}

var parsers = map[Language]*parserData{
	LanguageCpp:  {},
	LanguageJava: {},
	LanguageRust: {},
}

func languagePtr(lang Language) *tree_sitter.Language {
	switch lang {
	case LanguageCpp:
		return tree_sitter.NewLanguage(tree_sitter_cpp.Language())
	case LanguageJava:
		return tree_sitter.NewLanguage(tree_sitter_java.Language())
	case LanguageRust:
		return tree_sitter.NewLanguage(tree_sitter_rust.Language())
	}
	return nil
}

func (d *parserData) init(lang Language) {
	tsLang := languagePtr(lang)
	if tsLang == nil {
		d.err = fmt.Errorf("unsupported language %q", lang)
		return
	}
	p := tree_sitter.NewParser()
	if err := p.SetLanguage(tsLang); err != nil {
		d.err = fmt.Errorf("grammar rejected for %s: %w", lang, err)
		return
	}
	debug.LogParse("initialized %s grammar", lang)
	d.parser = p
}

// Parse parses the buffer with the given language grammar and returns the
// syntax tree. The caller owns the tree and must Close it. The input is
// defensively copied: the tree-sitter C library reaches into the buffer via
// CGo and the copy keeps callers' slices immutable.
func Parse(lang Language, content []byte) (tree *tree_sitter.Tree, err error) {
	data, ok := parsers[lang]
	if !ok {
		return nil, errors.NewParseError("", string(lang), fmt.Errorf("unknown language"))
	}
	data.once.Do(func() { data.init(lang) })
	if data.err != nil {
		return nil, errors.NewParseError("", string(lang), data.err)
	}

	// tree-sitter parsers are not safe for concurrent Parse calls.
	data.mu.Lock()
	defer data.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			debug.LogParse("tree-sitter panic for %s input: %v", lang, r)
			tree = nil
			err = errors.NewParseError("", string(lang), fmt.Errorf("parser panic: %v", r))
		}
	}()

	buffer := make([]byte, len(content))
	copy(buffer, content)

	tree = data.parser.Parse(buffer, nil)
	if tree == nil {
		return nil, errors.NewParseError("", string(lang), fmt.Errorf("parser returned no tree"))
	}
	return tree, nil
}
