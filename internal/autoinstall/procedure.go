package autoinstall

import (
	"fmt"
	"strings"
)

// Run applies the validate-and-correct procedure to text:
// header fix, parse, shape check, version injection with re-parse, schema check.
// The returned Result always carries the corrected text.
func (v *Validator) Run(text string) (res Result) {
	res.Text = strings.TrimSpace(text)
	defer func() {
		if r := recover(); r != nil {
			res.Err = &UnexpectedError{Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	if fixed, added := EnsureHeader(res.Text, v.rules.Marker); added {
		res.Text = fixed
		res.Corrections = append(res.Corrections, CorrectionHeader)
	}

	doc, err := Parse(res.Text, v.rules.Marker)
	if err != nil {
		res.Err = classify(err)
		return res
	}

	if doc.InjectVersion(v.rules) {
		encoded, err := doc.Render()
		if err != nil {
			res.Err = classify(err)
			return res
		}
		res.Text = encoded
		res.Corrections = append(res.Corrections, CorrectionVersion)

		doc, err = Parse(res.Text, v.rules.Marker)
		if err != nil {
			res.Err = classify(err)
			return res
		}
	}

	res.Err = classify(v.Check(doc.Value))
	return res
}
