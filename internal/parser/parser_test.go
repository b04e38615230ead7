package parser

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// TestMain ensures no goroutines leak; parsers are lazily initialized and
// shared, so a leak here would bleed into every caller.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestSupported(t *testing.T) {
	langs := Supported()
	assert.Contains(t, langs, LanguageCpp)
	assert.Contains(t, langs, LanguageJava)
	assert.Contains(t, langs, LanguageRust)
	assert.Len(t, langs, 3)
}

func TestLanguageForPath(t *testing.T) {
	cases := []struct {
		path string
		want Language
		ok   bool
	}{
		{"main.cpp", LanguageCpp, true},
		{"main.cc", LanguageCpp, true},
		{"main.cxx", LanguageCpp, true},
		{"legacy.c", LanguageCpp, true},
		{"header.h", LanguageCpp, true},
		{"header.hpp", LanguageCpp, true},
		{"App.java", LanguageJava, true},
		{"lib.rs", LanguageRust, true},
		{"script.py", "", false},
		{"Makefile", "", false},
	}
	for _, tc := range cases {
		got, ok := LanguageForPath(tc.path)
		assert.Equal(t, tc.ok, ok, tc.path)
		if tc.ok {
			assert.Equal(t, tc.want, got, tc.path)
		}
	}
}

func TestParse_AllLanguages(t *testing.T) {
	cases := []struct {
		language Language
		src      string
		rootKind string
	}{
		{LanguageCpp, "int main() { return 0; }", "translation_unit"},
		{LanguageJava, "class A { void m() {} }", "program"},
		{LanguageRust, "fn main() {}", "source_file"},
	}
	for _, tc := range cases {
		t.Run(string(tc.language), func(t *testing.T) {
			tree, err := Parse(tc.language, []byte(tc.src))
			require.NoError(t, err)
			defer tree.Close()
			assert.Equal(t, tc.rootKind, tree.RootNode().Kind())
		})
	}
}

func TestParse_UnknownLanguage(t *testing.T) {
	_, err := Parse(Language("go"), []byte("package main"))
	assert.Error(t, err)
}

func TestParse_MalformedSourceStillYieldsTree(t *testing.T) {
	// tree-sitter recovers from syntax errors; a broken file parses into a
	// tree with error nodes rather than failing.
	tree, err := Parse(LanguageCpp, []byte("int main( {{{"))
	require.NoError(t, err)
	defer tree.Close()
	assert.NotNil(t, tree.RootNode())
}

func TestParse_EmptySource(t *testing.T) {
	tree, err := Parse(LanguageRust, []byte(""))
	require.NoError(t, err)
	defer tree.Close()
	assert.Equal(t, uint(0), tree.RootNode().NamedChildCount())
}

func TestParse_ConcurrentSameLanguage(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tree, err := Parse(LanguageJava, []byte("class A { void m() { n(); } }"))
			assert.NoError(t, err)
			if tree != nil {
				tree.Close()
			}
		}()
	}
	wg.Wait()
}
