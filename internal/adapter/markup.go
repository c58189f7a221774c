package adapter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// ErrNoRoot is returned for markup that holds no element.
var ErrNoRoot = errors.New("markup: no root element")

// Markup pretty-prints XML and well-formed XHTML/HTML. Empty elements keep
// an explicit end tag, since HTML has no self-closing <div/> or <script/>.
type Markup struct{}

// TryFormat parses text as a markup document and re-indents every element.
func (Markup) TryFormat(text string, opts Options) (string, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.Permissive = true
	if err := doc.ReadFromString(text); err != nil {
		return "", fmt.Errorf("markup: %w", err)
	}
	if doc.Root() == nil {
		return "", ErrNoRoot
	}

	if opts.UseTabs {
		doc.IndentTabs()
	} else {
		width := opts.IndentWidth
		if width < 1 {
			width = len(opts.Unit())
		}
		doc.Indent(width)
	}

	doc.WriteSettings.CanonicalEndTags = true
	out, err := doc.WriteToString()
	if err != nil {
		return "", fmt.Errorf("markup: %w", err)
	}
	return strings.TrimRight(out, "\n"), nil
}
