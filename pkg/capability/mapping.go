// Package capability maps files to language families and installs, on
// demand, the per-family engine support each format request needs. Installs
// are lazy, idempotent, and dependency-ordered; optional hooks that an
// engine build lacks are skipped, required ones fail the install.
package capability

import (
	"path/filepath"
	"strings"
)

// Language family tags.
const (
	TagJava       = "java"
	TagKotlin     = "kotlin"
	TagGroovy     = "groovy"
	TagMarkup     = "markup"
	TagHTML       = "html"
	TagJSON       = "json"
	TagYAML       = "yaml"
	TagProperties = "properties"
)

// FamilyFor maps a filename to its language family tag. Matching is by
// lowercased extension; unknown extensions report ok=false.
func FamilyFor(filename string) (string, bool) {
	lower := strings.ToLower(filepath.Base(filename))

	// compound extension checked before the plain .kts switch below
	if strings.HasSuffix(lower, ".gradle.kts") {
		return TagKotlin, true
	}

	ext := strings.TrimPrefix(filepath.Ext(lower), ".")
	switch ext {
	case "java":
		return TagJava, true
	case "kt", "kts":
		return TagKotlin, true
	case "groovy", "gradle":
		return TagGroovy, true
	case "xml", "xsd", "xsl", "xslt", "wsdl", "fxml", "pom":
		return TagMarkup, true
	case "html", "htm", "xhtml":
		return TagHTML, true
	case "json":
		return TagJSON, true
	case "yaml", "yml":
		return TagYAML, true
	case "properties":
		return TagProperties, true
	default:
		return "", false
	}
}
