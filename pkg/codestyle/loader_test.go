package codestyle

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ideafmt/ideafmt/pkg/errors"
)

func writeStyleFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "codestyle.xml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const bareScheme = `<code_scheme name="TwoSpace" version="173">
  <option name="INDENT_SIZE" value="2"/>
  <option name="CONTINUATION_INDENT_SIZE" value="4"/>
  <option name="RIGHT_MARGIN" value="100"/>
  <codeStyleSettings language="JAVA">
    <indentOptions>
      <option name="INDENT_SIZE" value="3"/>
    </indentOptions>
  </codeStyleSettings>
</code_scheme>`

func TestLoadFileBareScheme(t *testing.T) {
	path := writeStyleFile(t, bareScheme)

	scheme, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "TwoSpace", scheme.Name)
	assert.Equal(t, "173", scheme.Version)
	assert.Equal(t, 2, scheme.IndentSize)
	assert.Equal(t, 4, scheme.ContinuationIndentSize)
	assert.Equal(t, 100, scheme.RightMargin)
	assert.Equal(t, 3, scheme.IndentFor("java"))
	assert.Equal(t, 2, scheme.IndentFor("json"), "unlisted families inherit the scheme indent")
}

func TestLoadFileProjectShape(t *testing.T) {
	path := writeStyleFile(t, `<project version="4">
  <component name="SomethingElse"/>
  <component name="ProjectCodeStyleConfiguration">
    <code_scheme name="ProjectStyle" version="173">
      <option name="INDENT_SIZE" value="8"/>
    </code_scheme>
  </component>
</project>`)

	scheme, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "ProjectStyle", scheme.Name)
	assert.Equal(t, 8, scheme.IndentSize)
}

func TestLoadFileComponentWithStateShape(t *testing.T) {
	path := writeStyleFile(t, `<component name="ProjectCodeStyleConfiguration">
  <state>
    <code_scheme name="StateStyle" version="173">
      <option name="USE_TAB_CHARACTER" value="true"/>
      <option name="TAB_SIZE" value="6"/>
    </code_scheme>
  </state>
</component>`)

	scheme, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "StateStyle", scheme.Name)
	assert.True(t, scheme.UseTabs)
	assert.Equal(t, 6, scheme.TabSize)
}

func TestLoadFileMarkupLanguageAlias(t *testing.T) {
	path := writeStyleFile(t, `<code_scheme name="Markup">
  <codeStyleSettings language="XML">
    <indentOptions>
      <option name="INDENT_SIZE" value="2"/>
    </indentOptions>
  </codeStyleSettings>
</code_scheme>`)

	scheme, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 2, scheme.IndentFor("markup"))
}

func TestLoadFileNotFound(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "no-such-style.xml")

	_, err := LoadFile(missing)

	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigNotFound))
	assert.Contains(t, err.Error(), missing, "message must include the path")
}

func TestLoadFileParseError(t *testing.T) {
	path := writeStyleFile(t, `<code_scheme name="Broken">`)

	_, err := LoadFile(path)

	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigParse))
}

func TestLoadFileShapeError(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unrelated root", `<module version="4"><option name="INDENT_SIZE" value="2"/></module>`},
		{"project without style component", `<project><component name="VcsDirectoryMappings"/></project>`},
		{"component with wrong name", `<component name="Other"><code_scheme name="X"/></component>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeStyleFile(t, tt.content)

			_, err := LoadFile(path)

			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrConfigShape), "got %v", err)
		})
	}
}

func TestLoadFileMalformedNumbersKeepDefaults(t *testing.T) {
	path := writeStyleFile(t, `<code_scheme name="Odd">
  <option name="INDENT_SIZE" value="banana"/>
  <option name="TAB_SIZE" value="-2"/>
</code_scheme>`)

	scheme, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 4, scheme.IndentSize)
	assert.Equal(t, 4, scheme.TabSize)
	assert.Equal(t, "banana", scheme.Options["INDENT_SIZE"], "raw value is still recorded")
}

func TestDefaultScheme(t *testing.T) {
	s := Default()

	assert.Equal(t, 4, s.IndentSize)
	assert.Equal(t, 8, s.ContinuationIndentSize)
	assert.False(t, s.UseTabs)
}

func TestClone(t *testing.T) {
	s := Default()
	s.Language("java").IndentSize = 2
	s.Options["X"] = "1"

	c := s.Clone()
	c.Language("java").IndentSize = 7
	c.Options["X"] = "2"

	assert.Equal(t, 2, s.Languages["java"].IndentSize)
	assert.Equal(t, "1", s.Options["X"])
}
