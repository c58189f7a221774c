// Package lang names the language families the indenter knows about and maps
// file extensions onto them.
package lang

import (
	"path/filepath"
	"sort"
	"strings"
)

// Language tags a piece of source text. The builtin families are listed as
// constants; configuration may introduce additional names.
type Language string

const (
	Markup     Language = "markup"
	Stylesheet Language = "stylesheet"
	Script     Language = "script"
	Python     Language = "python"
	Java       Language = "java"
	Other      Language = "other"
)

// Builtins lists the builtin families in display order.
var Builtins = []Language{Markup, Stylesheet, Script, Python, Java, Other}

var aliases = map[string]Language{
	"markup":     Markup,
	"html":       Markup,
	"htm":        Markup,
	"xhtml":      Markup,
	"xml":        Markup,
	"svg":        Markup,
	"stylesheet": Stylesheet,
	"css":        Stylesheet,
	"script":     Script,
	"javascript": Script,
	"js":         Script,
	"python":     Python,
	"py":         Python,
	"java":       Java,
	"other":      Other,
	"text":       Other,
	"":           Other,
}

// Parse resolves a user supplied name. Known aliases map onto builtin
// families; any other name is returned lowercased so that configured
// languages can be addressed by name.
func Parse(name string) Language {
	key := strings.ToLower(strings.TrimSpace(name))
	if l, ok := aliases[key]; ok {
		return l
	}
	return Language(key)
}

// String returns the language name.
func (l Language) String() string {
	if l == "" {
		return string(Other)
	}
	return string(l)
}

// IsBuiltin reports whether l is one of the builtin families.
func (l Language) IsBuiltin() bool {
	for _, b := range Builtins {
		if l == b {
			return true
		}
	}
	return false
}

// LexerName returns the syntax-highlighting lexer name for l.
func (l Language) LexerName() string {
	switch l {
	case Markup:
		return "html"
	case Stylesheet:
		return "css"
	case Script:
		return "javascript"
	case Python:
		return "python"
	case Java:
		return "java"
	case Other, "":
		return "plaintext"
	default:
		return string(l)
	}
}

// ExtensionMap maps lowercase file extensions (with the leading dot) to languages.
type ExtensionMap map[string]Language

// DefaultExtensions returns the builtin extension table.
func DefaultExtensions() ExtensionMap {
	return ExtensionMap{
		".html":  Markup,
		".htm":   Markup,
		".xhtml": Markup,
		".xml":   Markup,
		".svg":   Markup,
		".css":   Stylesheet,
		".js":    Script,
		".mjs":   Script,
		".cjs":   Script,
		".py":    Python,
		".pyw":   Python,
		".java":  Java,
	}
}

// Set registers ext for l. The extension is normalized to lowercase with a
// leading dot.
func (m ExtensionMap) Set(ext string, l Language) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	m[ext] = l
}

// Detect returns the language registered for the extension of path.
func (m ExtensionMap) Detect(path string) (Language, bool) {
	l, ok := m[strings.ToLower(filepath.Ext(path))]
	return l, ok
}

// For returns the sorted extensions registered for l.
func (m ExtensionMap) For(l Language) []string {
	var exts []string
	for ext, got := range m {
		if got == l {
			exts = append(exts, ext)
		}
	}
	sort.Strings(exts)
	return exts
}
