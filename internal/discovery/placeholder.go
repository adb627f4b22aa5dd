package discovery

import (
	"strings"

	"al.essio.dev/pkg/shellescape"
)

// Placeholder is a template variable such as {filename} and the path it stands for
type Placeholder struct {
	Name  string
	Value string
}

// ExpandPlaceholders substitutes shell-quoted values into a command template.
// A placeholder wrapped in its own pair of single or double quotes is replaced
// together with those quotes. Placeholders embedded in a longer quoted word
// are quoted again and should not be written that way.
func ExpandPlaceholders(template string, placeholders ...Placeholder) string {
	pairs := make([]string, 0, 6*len(placeholders))
	for _, p := range placeholders {
		quoted := shellescape.Quote(p.Value)
		// the quoted forms come first so the replacer prefers them
		pairs = append(pairs,
			`"`+p.Name+`"`, quoted,
			`'`+p.Name+`'`, quoted,
			p.Name, quoted,
		)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
