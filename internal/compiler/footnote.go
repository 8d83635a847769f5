package compiler

import (
	"strconv"

	"github.com/dgallion1/guides/internal/diag"
	"github.com/dgallion1/guides/internal/doctree"
	"github.com/dgallion1/guides/internal/refs"
)

// footnotePass numbers auto-numbered footnotes and links footnote and
// citation references to their definitions.
//
// Manually numbered footnotes keep their number. Footnotes written as "#"
// or "#name" take the smallest number not yet used, in document order.
func (c *Compiler) footnotePass(st *ShadowTree, out *Compiled) {
	var notes []*doctree.Footnote
	var xrefs []*doctree.FootnoteReference
	st.Walk(func(i int) {
		switch n := st.Node(i).(type) {
		case *doctree.Footnote:
			notes = append(notes, n)
		case *doctree.FootnoteReference:
			xrefs = append(xrefs, n)
		}
	})

	// Reset earlier results so the pass can run again over a cached tree.
	for _, f := range notes {
		if isAutoFootnote(f.Key) {
			f.Number = 0
		}
	}
	for _, r := range xrefs {
		r.Number, r.TargetID, r.Resolved = 0, "", false
	}

	used := map[int]bool{}
	for _, f := range notes {
		if !f.Citation && f.Number > 0 {
			used[f.Number] = true
		}
	}
	next := 1
	var anonymous []*doctree.Footnote
	named := map[string]*doctree.Footnote{}
	numbered := map[int]*doctree.Footnote{}
	citations := map[string]*doctree.Footnote{}
	for _, f := range notes {
		switch {
		case f.Citation:
			f.ID = "citation-" + refs.Anchor(f.Label)
			citations[refs.NormalizeName(f.Label)] = f
			continue
		case f.Number == 0:
			for used[next] {
				next++
			}
			f.Number = next
			used[next] = true
			if refs.IsAnonymousFootnote(f.Key) {
				anonymous = append(anonymous, f)
			} else {
				named[f.Label] = f
			}
		}
		if _, dup := numbered[f.Number]; !dup {
			numbered[f.Number] = f
		}
		f.ID = "footnote-" + strconv.Itoa(f.Number)
	}

	anon := 0
	for _, r := range xrefs {
		var target *doctree.Footnote
		switch {
		case r.Citation:
			target = citations[refs.NormalizeName(r.Key)]
		case refs.IsAnonymousFootnote(r.Key):
			if anon < len(anonymous) {
				target = anonymous[anon]
			}
			anon++
		default:
			if name, ok := refs.FootnoteName(r.Key); ok {
				target = named[name]
			} else if n, ok := refs.FootnoteNumber(r.Key); ok {
				target = numbered[n]
			}
		}
		if target == nil {
			kind := "footnote"
			if r.Citation {
				kind = "citation"
			}
			out.Diagnostics.Add(diag.Warning, r.Location(), "unknown %s reference [%s]", kind, r.Key)
			continue
		}
		r.Number = target.Number
		r.TargetID = target.ID
		r.Resolved = true
	}
}

func isAutoFootnote(key string) bool {
	if refs.IsAnonymousFootnote(key) {
		return true
	}
	_, ok := refs.FootnoteName(key)
	return ok
}
