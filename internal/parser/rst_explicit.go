package parser

import (
	"regexp"
	"strings"

	"github.com/dgallion1/guides/internal/diag"
	"github.com/dgallion1/guides/internal/doctree"
	"github.com/dgallion1/guides/internal/extension"
	"github.com/dgallion1/guides/internal/refs"
)

var (
	targetPattern    = regexp.MustCompile("^\\.\\. _(`[^`]+`|[^:]+|_):(?:\\s+(.*))?$")
	footnotePattern  = regexp.MustCompile(`^\.\. \[([^\]]+)\](?:\s+(.*))?$`)
	directivePattern = regexp.MustCompile(`^\.\. ([A-Za-z0-9][\w:+.-]*?)::(?:\s+(.*))?$`)
)

// inExplicitMarkup handles blocks starting with "..": hyperlink targets,
// footnotes, directives and comments.
func inExplicitMarkup(p *blockParser) stateFn {
	switch {
	case targetPattern.MatchString(p.line):
		p.target()
	case footnotePattern.MatchString(p.line):
		p.footnote()
	case directivePattern.MatchString(p.line):
		return inDirectiveBody
	default:
		// Comment: the first line and any indented block after it.
		p.indentedBlock(1)
	}
	return betweenBlocks
}

func (p *blockParser) target() {
	m := targetPattern.FindStringSubmatch(p.line)
	name := strings.Trim(m[1], "`")
	rest, _ := p.indentedBlock(1)
	url := strings.TrimSpace(m[2])
	for _, l := range rest {
		url += strings.TrimSpace(l)
	}

	if name == "_" {
		p.anonTargets++
		p.doc.AddTarget(doctree.Target{Name: refs.AnonymousTarget(p.anonTargets), URL: url, Line: p.lineNo})
		return
	}
	key := refs.NormalizeName(name)
	if url != "" {
		// `.. _a: b_` aliases another target.
		if strings.HasSuffix(url, "_") && !strings.Contains(url, " ") {
			p.doc.AddTarget(doctree.Target{Name: key, Alias: refs.NormalizeName(strings.TrimSuffix(url, "_")), Line: p.lineNo})
			return
		}
		p.doc.AddTarget(doctree.Target{Name: key, URL: url, Line: p.lineNo})
		return
	}
	id := refs.Anchor(name)
	p.doc.AddTarget(doctree.Target{Name: key, Anchor: id, Line: p.lineNo})
	p.emit(p.lineNo, &doctree.Anchor{Name: key, ID: id})
	p.pending = append(p.pending, len(p.doc.Targets)-1)
}

func (p *blockParser) footnote() {
	m := footnotePattern.FindStringSubmatch(p.line)
	key := m[1]
	gap := p.blankNext()
	rest, _ := p.indentedBlock(1)
	lines := rest
	if body := strings.TrimSpace(m[2]); body != "" {
		lines = []string{body}
		if gap && len(rest) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, rest...)
	}

	f := &doctree.Footnote{Key: key}
	switch n, numbered := refs.FootnoteNumber(key); {
	case numbered:
		f.Number = n
	case refs.IsFootnoteKey(key):
		f.Label, _ = refs.FootnoteName(key)
	default:
		f.Citation = true
		f.Label = key
	}
	f.Append(p.child(lines, p.lineNo)...)
	p.emit(p.lineNo, f)
}

// inDirectiveBody reads a directive's argument, options and content and
// runs it.
func inDirectiveBody(p *blockParser) stateFn {
	m := directivePattern.FindStringSubmatch(p.line)
	name, arg := m[1], strings.TrimSpace(m[2])
	line := p.lineNo
	// Options must follow the directive line directly; after a blank line
	// everything is content.
	gap := p.blankNext()
	block, blockStart := p.indentedBlock(1)

	d, ok := p.reg.Directive(name)
	if !ok {
		source := strings.Join(append([]string{p.line}, block...), "\n")
		p.reportError(line, source, "unknown directive %q", name)
		return betweenBlocks
	}
	spec := d.Spec()

	i := 0
	if arg != "" && !gap {
		for ; i < len(block) && block[i] != "" && !isOptionLine(block[i]); i++ {
			arg += " " + strings.TrimSpace(block[i])
		}
	}
	raw := map[string]string{}
	for !gap && i < len(block) && isOptionLine(block[i]) {
		optName, value, _ := fieldLine(block[i])
		i++
		for i < len(block) && block[i] != "" && indent(block[i]) > 0 {
			value += " " + strings.TrimSpace(block[i])
			i++
		}
		raw[optName] = value
	}
	for i < len(block) && block[i] == "" {
		i++
	}
	content := block[i:]
	contentStart := blockStart + i

	opts, err := extension.ParseOptions(spec.Options, raw)
	if err != nil {
		p.report(diag.Warning, line, "%s directive: %v", name, err)
	}
	inv := &extension.Invocation{
		Name:     name,
		Argument: arg,
		Options:  opts,
		Content:  content,
		Line:     line,
	}
	switch spec.Body {
	case extension.BodyNone:
		if len(content) > 0 {
			p.report(diag.Warning, line, "%s directive takes no content", name)
		}
	case extension.BodyNested:
		inv.Children = p.child(content, contentStart)
	}

	nodes, err := d.Process(&directiveContext{p: p, line: line}, inv)
	if err != nil {
		p.reportError(line, p.line, "%s directive: %v", name, err)
		return betweenBlocks
	}
	p.emit(line, nodes...)
	return betweenBlocks
}

func isOptionLine(line string) bool {
	_, _, ok := fieldLine(line)
	return ok
}

// directiveContext is the extension.Context handed to directives and roles.
type directiveContext struct {
	p    *blockParser
	line int
}

func (c *directiveContext) Document() *doctree.Document { return c.p.doc }

func (c *directiveContext) Location() diag.Location { return c.p.doc.Loc(c.line) }

func (c *directiveContext) Report(sev diag.Severity, format string, args ...any) {
	c.p.report(sev, c.line, format, args...)
}

func (c *directiveContext) ParseInline(text string) []doctree.Node {
	return c.p.inline(text, c.line)
}

func (c *directiveContext) ParseBlocks(lines []string) []doctree.Node {
	return c.p.child(lines, c.line+1)
}
