package parser

import (
	"strings"

	"github.com/dgallion1/guides/internal/diag"
	"github.com/dgallion1/guides/internal/doctree"
	"github.com/dgallion1/guides/internal/extension"
	"github.com/dgallion1/guides/internal/inline"
	"github.com/dgallion1/guides/internal/refs"
)

// inline converts the inline markup of text, which starts on source line
// line, into nodes.
func (p *blockParser) inline(text string, line int) []doctree.Node {
	var out []doctree.Node
	l := inline.Lex(text)
	for t := l.Next(); t.Type != inline.EOF; t = l.Next() {
		at := line + strings.Count(text[:t.Pos], "\n")
		n := p.inlineNode(t, at)
		if n == nil {
			continue
		}
		n.SetLocation(p.doc.Loc(at))
		out = append(out, n)
	}
	return out
}

func (p *blockParser) inlineNode(t inline.Token, line int) doctree.Node {
	switch t.Type {
	case inline.Text:
		if t.Value == "" {
			return nil
		}
		return doctree.NewText(t.Value)
	case inline.Emphasis:
		return doctree.NewSpan(doctree.StyleEmphasis, t.Value)
	case inline.Strong:
		return doctree.NewSpan(doctree.StyleStrong, t.Value)
	case inline.Literal:
		return doctree.NewSpan(doctree.StyleLiteral, t.Value)
	case inline.Interpreted:
		return doctree.NewSpan(doctree.StyleInterpreted, t.Value)
	case inline.Role:
		return p.role(t, line)
	case inline.Reference:
		return p.reference(t)
	case inline.FootnoteRef:
		return &doctree.FootnoteReference{Key: t.Value}
	case inline.CitationRef:
		return &doctree.FootnoteReference{Key: t.Value, Citation: true}
	case inline.Link:
		return &doctree.Link{URL: t.Value, Text: t.Value}
	}
	return doctree.NewText(t.Text)
}

func (p *blockParser) role(t inline.Token, line int) doctree.Node {
	name := t.Role
	if t.Domain != "" {
		name = t.Domain + ":" + t.Role
	}
	r, ok := p.reg.Role(t.Domain, t.Role)
	if !ok {
		p.report(diag.Error, line, "unknown role %q", name)
		return doctree.NewError("unknown role "+name, t.Text)
	}
	n, err := r.Process(&directiveContext{p: p, line: line}, &extension.RoleInvocation{
		Domain:  t.Domain,
		Name:    t.Role,
		Content: t.Value,
		Raw:     t.Text,
		Line:    line,
	})
	if err != nil {
		p.report(diag.Error, line, "%s role: %v", name, err)
		return doctree.NewError(err.Error(), t.Text)
	}
	return n
}

// reference converts name_, `phrase`_ and `text <target>`_ references.
func (p *blockParser) reference(t inline.Token) doctree.Node {
	e := refs.ExtractEmbeddedReference(t.Value)
	if e.Reference == t.Value {
		cr := &doctree.CrossReference{
			Ref:       refs.Descriptor{Reference: t.Value, Text: t.Value},
			Raw:       t.Value,
			Anonymous: t.Anonymous,
		}
		// Only references without an embedded target consume an
		// anonymous target.
		if t.Anonymous {
			p.anonRefs++
			cr.Ref.Reference = refs.AnonymousTarget(p.anonRefs)
		}
		return cr
	}

	if name, ok := strings.CutSuffix(e.Reference, "_"); ok {
		return &doctree.CrossReference{
			Ref:       refs.Descriptor{Reference: name, Text: e.Text},
			Raw:       t.Value,
			Anonymous: t.Anonymous,
		}
	}
	text := e.Text
	if text == "" {
		text = e.Reference
	} else if !t.Anonymous {
		p.doc.AddTarget(doctree.Target{Name: refs.NormalizeName(text), URL: e.Reference})
	}
	return &doctree.Link{URL: e.Reference, Text: text}
}
