package native

import (
	"github.com/ideafmt/ideafmt/pkg/codestyle"
)

type wholeFunc func(text string, scheme *codestyle.Scheme) (string, error)
type rangedFunc func(text string, scheme *codestyle.Scheme, start, end int) (string, error)

// tree holds the per-request structural state. The reformat operations
// replace the text in place; Text always reflects the latest mutation.
type tree struct {
	text   string
	whole  wholeFunc
	ranged rangedFunc
}

func (t *tree) Text() string { return t.text }

func (t *tree) Reformat(scheme *codestyle.Scheme) error {
	out, err := t.whole(t.text, scheme)
	if err != nil {
		return err
	}
	t.text = out
	return nil
}

func (t *tree) ReformatRange(scheme *codestyle.Scheme, start, end int) error {
	if start < 0 {
		start = 0
	}
	if end > len(t.text) {
		end = len(t.text)
	}
	if start > end {
		start = end
	}
	out, err := t.ranged(t.text, scheme, start, end)
	if err != nil {
		return err
	}
	t.text = out
	return nil
}
