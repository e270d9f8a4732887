package treesitter

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"unsafe"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_c "github.com/tree-sitter/tree-sitter-c/bindings/go"
)

// ErrUnsupportedLanguage is returned for a language with no compiled grammar.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Language wraps a tree-sitter language.
type Language struct {
	lang *tree_sitter.Language
	name string
}

var (
	languageCache = make(map[string]*Language)
	cacheMu       sync.RWMutex
)

// languageMap contains all statically compiled language parsers.
var languageMap = map[string]func() unsafe.Pointer{
	"c": tree_sitter_c.Language,
}

// extMap maps header and source extensions to language names.
var extMap = map[string]string{
	".h": "c",
	".c": "c",
}

// LoadLanguage loads a tree-sitter language by name.
func LoadLanguage(langName string) (*Language, error) {
	cacheMu.RLock()
	if lang, ok := languageCache[langName]; ok {
		cacheMu.RUnlock()
		return lang, nil
	}
	cacheMu.RUnlock()

	langFunc, ok := languageMap[langName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, langName)
	}

	langPtr := langFunc()
	if langPtr == nil {
		return nil, fmt.Errorf("failed to get language pointer for %s", langName)
	}

	lang := &Language{
		lang: tree_sitter.NewLanguage(langPtr),
		name: langName,
	}

	cacheMu.Lock()
	languageCache[langName] = lang
	cacheMu.Unlock()

	return lang, nil
}

// TSLanguage returns the underlying tree-sitter language.
func (l *Language) TSLanguage() *tree_sitter.Language {
	return l.lang
}

// Name returns the language name.
func (l *Language) Name() string {
	return l.name
}

// CloseAll clears the language cache.
func CloseAll() {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	languageCache = make(map[string]*Language)
}

// VerifyLanguages checks that all required languages are available.
func VerifyLanguages(requiredLangs []string) error {
	var missing []string
	for _, langName := range requiredLangs {
		if _, ok := languageMap[langName]; !ok {
			missing = append(missing, langName)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %v", ErrUnsupportedLanguage, missing)
	}

	return nil
}

// RequiredLanguages returns the language identifiers hdrenum needs.
func RequiredLanguages() []string {
	return []string{"c"}
}

// LanguageForPath returns the language name for a file, falling back to C
// for unknown extensions since any header-like file is read as C.
func LanguageForPath(path string) string {
	if l, ok := extMap[strings.ToLower(filepath.Ext(path))]; ok {
		return l
	}
	return "c"
}
