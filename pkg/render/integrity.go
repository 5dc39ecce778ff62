package render

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	bferrors "github.com/matzehuels/blockfall/pkg/errors"
)

// Sentinels are strings that never belong anywhere in a finished document:
// merge markers, fmt verb errors and unrendered template actions.
var Sentinels = []string{"<<<<<<<", "=======", ">>>>>>>", "%!", "{{", "}}"}

// FindSentinel returns the first of the Sentinels contained in text.
func FindSentinel(text string) (string, bool) {
	for _, s := range Sentinels {
		if strings.Contains(text, s) {
			return s, true
		}
	}
	return "", false
}

// nonFinite never belongs in an attribute value. Text nodes may carry user
// strings such as a login, so they are not checked.
var nonFinite = []string{"NaN", "+Inf", "-Inf"}

// CheckIntegrity verifies that doc is a single well-formed <svg> element,
// contains none of the Sentinels and has no non-finite attribute values.
func CheckIntegrity(doc []byte) error {
	for _, s := range Sentinels {
		if i := bytes.Index(doc, []byte(s)); i >= 0 {
			return bferrors.New(bferrors.ErrCodeInternal, "document contains %q at offset %d", s, i)
		}
	}

	dec := xml.NewDecoder(bytes.NewReader(doc))
	depth, roots := 0, 0
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return bferrors.Wrap(bferrors.ErrCodeInternal, err, "malformed document")
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if depth == 0 {
				roots++
				if t.Name.Local != "svg" {
					return bferrors.New(bferrors.ErrCodeInternal, "root element is <%s>, want <svg>", t.Name.Local)
				}
			}
			depth++
			for _, a := range t.Attr {
				for _, bad := range nonFinite {
					if strings.Contains(a.Value, bad) {
						return bferrors.New(bferrors.ErrCodeInternal, "<%s %s=%q> is not finite", t.Name.Local, a.Name.Local, a.Value)
					}
				}
			}
		case xml.EndElement:
			depth--
		case xml.CharData:
			if depth == 0 && strings.TrimSpace(string(t)) != "" {
				return bferrors.New(bferrors.ErrCodeInternal, "text outside the root element")
			}
		}
	}
	if roots != 1 {
		return bferrors.New(bferrors.ErrCodeInternal, "document has %d root elements, want 1", roots)
	}
	return nil
}
