package formatter

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ideafmt/ideafmt/pkg/codestyle"
	"github.com/ideafmt/ideafmt/pkg/engine"
	"github.com/ideafmt/ideafmt/pkg/errors"
	"github.com/ideafmt/ideafmt/pkg/host"
)

func newFormatter(t *testing.T, opts ...host.Option) *Formatter {
	t.Helper()
	f, err := Initialize(opts...)
	require.NoError(t, err)
	t.Cleanup(f.Shutdown)
	return f
}

func TestFormatBeforeInitialize(t *testing.T) {
	var f Formatter

	_, err := f.FormatAll("Test.java", "class A{}")

	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotInitialized))
}

func TestFormatAfterShutdown(t *testing.T) {
	f, err := Initialize()
	require.NoError(t, err)
	f.Shutdown()

	_, err = f.FormatAll("Test.java", "class A{}")

	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotInitialized))
}

func TestFormatAllJava(t *testing.T) {
	f := newFormatter(t)

	out, err := f.FormatAll("Test.java", "public class Test{void method(){int x=1;}}")
	require.NoError(t, err)

	expected := "public class Test {\n" +
		"    void method() {\n" +
		"        int x = 1;\n" +
		"    }\n" +
		"}"
	assert.Equal(t, expected, out)
}

func TestFormatRangeTouchesOnlySelectedLines(t *testing.T) {
	f := newFormatter(t)
	text := "public class Test {\nvoid method() {}\n}"

	out, err := f.FormatRange("Test.java", text, 2, 2)
	require.NoError(t, err)

	got := strings.Split(out, "\n")
	require.Len(t, got, 3)
	assert.Equal(t, "public class Test {", got[0], "line 1 must be untouched")
	assert.Equal(t, "    void method() {}", got[1])
	assert.Equal(t, "}", got[2], "line 3 must be untouched")
}

func TestFormatAllUnsupportedExtension(t *testing.T) {
	f := newFormatter(t)

	_, err := f.FormatAll("main.go", "package main")

	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrUnsupportedLanguage))
}

func TestFormatRangeValidation(t *testing.T) {
	f := newFormatter(t)
	text := "class A {\n}"

	tests := []struct {
		name       string
		start, end int
	}{
		{"zero start", 0, 1},
		{"negative start", -1, 1},
		{"end before start", 3, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.FormatRange("A.java", text, tt.start, tt.end)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidRange), "got %v", err)
		})
	}
}

func TestFormatRangeBeyondDocumentClamps(t *testing.T) {
	f := newFormatter(t)
	text := "public class Test {\nvoid method() {}\n}"

	out, err := f.FormatRange("Test.java", text, 1, 99)
	require.NoError(t, err, "a range past the last line clamps, it is not a caller error")

	assert.Equal(t, "public class Test {\n    void method() {}\n}", out)
}

func TestFormatAllParseError(t *testing.T) {
	f := newFormatter(t)

	_, err := f.FormatAll("Bad.java", "class A { void m() {")

	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrParse))
}

func TestFormatAllJSONParseError(t *testing.T) {
	f := newFormatter(t)

	_, err := f.FormatAll("bad.json", `{"a":`)

	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrParse))
}

func TestLoadStyleConfigChangesIndent(t *testing.T) {
	f := newFormatter(t)

	path := filepath.Join(t.TempDir(), "codestyle.xml")
	require.NoError(t, os.WriteFile(path, []byte(`<code_scheme name="TwoSpace">
  <option name="INDENT_SIZE" value="2"/>
</code_scheme>`), 0644))

	require.NoError(t, f.LoadStyleConfig(path))

	out, err := f.FormatAll("Test.java", "class A{int x;}")
	require.NoError(t, err)
	assert.Equal(t, "class A {\n  int x;\n}", out)
}

func TestLoadStyleConfigReplacesWholesale(t *testing.T) {
	f := newFormatter(t)
	dir := t.TempDir()

	first := filepath.Join(dir, "first.xml")
	require.NoError(t, os.WriteFile(first, []byte(`<code_scheme name="First">
  <option name="INDENT_SIZE" value="2"/>
  <option name="RIGHT_MARGIN" value="80"/>
</code_scheme>`), 0644))
	second := filepath.Join(dir, "second.xml")
	require.NoError(t, os.WriteFile(second, []byte(`<code_scheme name="Second">
  <option name="INDENT_SIZE" value="3"/>
</code_scheme>`), 0644))

	require.NoError(t, f.LoadStyleConfig(first))
	require.NoError(t, f.LoadStyleConfig(second))

	scheme, err := f.Scheme()
	require.NoError(t, err)
	assert.Equal(t, "Second", scheme.Name)
	assert.Equal(t, 3, scheme.IndentSize)
	assert.Equal(t, 120, scheme.RightMargin, "first document's margin must not linger")

	out, err := f.FormatAll("Test.java", "class A{int x;}")
	require.NoError(t, err)
	assert.Equal(t, "class A {\n   int x;\n}", out)
}

func TestLoadStyleConfigMissingFile(t *testing.T) {
	f := newFormatter(t)

	err := f.LoadStyleConfig(filepath.Join(t.TempDir(), "nope.xml"))

	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigNotFound))
}

func TestKotlinPreProcessorNormalizesLineEndings(t *testing.T) {
	f := newFormatter(t)

	out, err := f.FormatAll("App.kt", "class App{\r\nval x=1\r\n}")
	require.NoError(t, err)

	assert.NotContains(t, out, "\r")
}

func TestMarkupPostProcessorEnsuresFinalNewline(t *testing.T) {
	f := newFormatter(t)

	out, err := f.FormatAll("pom.xml", "<project><m>x</m></project>")
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestStyleProviderDefaultsVisibleAfterInstall(t *testing.T) {
	f := newFormatter(t)

	_, err := f.FormatAll("App.kt", "class App{}")
	require.NoError(t, err)

	scheme, err := f.Scheme()
	require.NoError(t, err)
	assert.Equal(t, "false", scheme.Language("kotlin").Options["ALLOW_TRAILING_COMMA"])
}

// slowEngine wraps reformat calls in a delay and records overlap so the
// write gate's serialization is observable.
type slowEngine struct {
	mu          sync.Mutex
	inFlight    int
	maxInFlight int
}

func (e *slowEngine) Version() string { return "slow-test" }

func (e *slowEngine) Component(name string) (interface{}, error) {
	return nil, engine.NotSupported(name)
}

func (e *slowEngine) TreeBuilder(family string) (engine.TreeBuilder, error) {
	return slowBuilder{e}, nil
}

type slowBuilder struct{ e *slowEngine }

func (b slowBuilder) Build(filename, text string) (engine.Tree, error) {
	return &slowTree{e: b.e, text: text}, nil
}

type slowTree struct {
	e    *slowEngine
	text string
}

func (t *slowTree) Text() string { return t.text }

func (t *slowTree) Reformat(*codestyle.Scheme) error {
	t.e.mu.Lock()
	t.e.inFlight++
	if t.e.inFlight > t.e.maxInFlight {
		t.e.maxInFlight = t.e.inFlight
	}
	t.e.mu.Unlock()

	time.Sleep(2 * time.Millisecond)

	t.e.mu.Lock()
	t.e.inFlight--
	t.e.mu.Unlock()
	return nil
}

func (t *slowTree) ReformatRange(*codestyle.Scheme, int, int) error {
	return t.Reformat(nil)
}

func TestConcurrentFormatRequestsAreSerialized(t *testing.T) {
	eng := &slowEngine{}
	f := newFormatter(t, host.WithEngine(eng))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.FormatAll("Test.java", "class A{}")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	eng.mu.Lock()
	defer eng.mu.Unlock()
	assert.Equal(t, 1, eng.maxInFlight, "mutations must run one at a time")
}
