package discovery

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDirConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    *DirConfig
		wantErr bool
	}{
		{
			name:    "flat with defaults",
			content: `command = "{mcc} {filename}"`,
			want: &DirConfig{
				Kind: Flat,
				Flat: CommandConfig{Command: "{mcc} {filename}"},
			},
		},
		{
			name: "flat with all keys",
			content: `
command = "{mcc} {filename}"
return_code = 1
snapshot_test_stderr = true
`,
			want: &DirConfig{
				Kind: Flat,
				Flat: CommandConfig{Command: "{mcc} {filename}", ReturnCode: 1, SnapshotStderr: true},
			},
		},
		{
			name: "nested variants are sorted",
			content: `
[commands.parse]
command = "{mcc} --parse {filename}"
return_code = 2

[commands.lex]
command = "{mcc} --lex {filename}"
snapshot_test_stderr = true
`,
			want: &DirConfig{
				Kind: Nested,
				Nested: []Variant{
					{Name: "lex", CommandConfig: CommandConfig{Command: "{mcc} --lex {filename}", SnapshotStderr: true}},
					{Name: "parse", CommandConfig: CommandConfig{Command: "{mcc} --parse {filename}", ReturnCode: 2}},
				},
			},
		},
		{
			name:    "empty command string is still flat",
			content: `command = ""`,
			want:    &DirConfig{Kind: Flat},
		},
		{
			name:    "neither shape",
			content: `return_code = 3`,
			wantErr: true,
		},
		{
			name: "nested variant without command",
			content: `
[commands.lex]
return_code = 1
`,
			wantErr: true,
		},
		{
			name:    "invalid toml",
			content: `command = `,
			wantErr: true,
		},
		{
			name:    "wrong type",
			content: `command = 12`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDirConfig([]byte(tt.content))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDirConfig_Variants(t *testing.T) {
	flat := &DirConfig{Kind: Flat, Flat: CommandConfig{Command: "a", ReturnCode: 4}}
	assert.Equal(t, []Variant{{CommandConfig: CommandConfig{Command: "a", ReturnCode: 4}}}, flat.Variants())

	nested := &DirConfig{Kind: Nested}
	assert.Empty(t, nested.Variants())
}

func TestReadDirConfig(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		cfg, err := ReadDirConfig(filepath.Join(dir, "test_config.toml"))
		require.NoError(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("records path", func(t *testing.T) {
		path := filepath.Join(dir, "flat.toml")
		require.NoError(t, os.WriteFile(path, []byte(`command = "true"`), 0644))

		cfg, err := ReadDirConfig(path)
		require.NoError(t, err)
		assert.Equal(t, path, cfg.Path)
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(dir, "broken.toml")
		require.NoError(t, os.WriteFile(path, []byte("[commands"), 0644))

		_, err := ReadDirConfig(path)
		var configErr *ConfigError
		require.True(t, errors.As(err, &configErr))
		assert.Equal(t, path, configErr.Path)
	})

	t.Run("read error other than not found", func(t *testing.T) {
		path := filepath.Join(dir, "is_a_dir.toml")
		require.NoError(t, os.Mkdir(path, 0755))

		_, err := ReadDirConfig(path)
		var configErr *ConfigError
		require.True(t, errors.As(err, &configErr))
	})
}
