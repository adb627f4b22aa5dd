package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandPlaceholders(t *testing.T) {
	tests := []struct {
		name     string
		template string
		want     string
	}{
		{"bare", "cc {filename}", "cc '/t dir/a.c'"},
		{"double quoted", `cc "{filename}"`, "cc '/t dir/a.c'"},
		{"single quoted", "cc '{filename}'", "cc '/t dir/a.c'"},
		{"base with extension", "rm -f {base}.o", "rm -f '/t dir/a'.o"},
		{"several", `cc "{filename}" -o {base}`, "cc '/t dir/a.c' -o '/t dir/a'"},
		{"unbalanced quote", `cc "{filename} -c`, `cc "'/t dir/a.c' -c`},
		{"no placeholder", "true", "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExpandPlaceholders(tt.template,
				Placeholder{Name: "{filename}", Value: "/t dir/a.c"},
				Placeholder{Name: "{base}", Value: "/t dir/a"},
			)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpandPlaceholders_SafePathsStayBare(t *testing.T) {
	got := ExpandPlaceholders(`cc "{filename}"`, Placeholder{Name: "{filename}", Value: "/tests/a.c"})
	assert.Equal(t, "cc /tests/a.c", got)
}
