package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLineRange(t *testing.T) {
	tests := []struct {
		spec       string
		start, end int
		ranged     bool
		wantErr    bool
	}{
		{"", 0, 0, false, false},
		{"1:5", 1, 5, true, false},
		{"12:12", 12, 12, true, false},
		{"5", 0, 0, false, true},
		{"a:b", 0, 0, false, true},
		{"1:x", 0, 0, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			start, end, ranged, err := parseLineRange(tt.spec)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
			assert.Equal(t, tt.ranged, ranged)
		})
	}
}

func TestWriteBackPreservesPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Test.java")
	require.NoError(t, os.WriteFile(path, []byte("class A{}"), 0600))

	require.NoError(t, writeBack(path, "class A {\n}"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "class A {\n}", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestRunFormatRewritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Test.java")
	require.NoError(t, os.WriteFile(path, []byte("public class Test{void method(){int x=1;}}"), 0644))

	rootCmd.SetArgs([]string{path})
	require.NoError(t, rootCmd.Execute())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	expected := "public class Test {\n" +
		"    void method() {\n" +
		"        int x = 1;\n" +
		"    }\n" +
		"}"
	assert.Equal(t, expected, string(data))
}

func TestRunFormatDryRunLeavesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Test.java")
	original := "class A{int x;}"
	require.NoError(t, os.WriteFile(path, []byte(original), 0644))

	dryRun = true
	defer func() { dryRun = false }()
	rootCmd.SetArgs([]string{path})
	require.NoError(t, rootCmd.Execute())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, string(data))
}
