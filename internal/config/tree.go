package config

import (
	"fmt"
)

// Reserved document keys that are not job labels.
const (
	KeyBase       = "base"
	KeyDefaultJob = "default_job"
)

// Tree is the parsed job document: a mapping from label to job spec, plus a
// handful of scalar document keys. Specs are mutated in place as `base`
// inheritance and inline pipeline-step overrides are applied; jobs always
// work on their own deep copies.
type Tree struct {
	doc *Map
	// labels whose base inheritance has already been folded in
	inherited map[string]bool
}

// NewTree wraps a parsed document.
func NewTree(doc *Map) *Tree {
	if doc == nil {
		doc = NewMap()
	}
	return &Tree{doc: doc, inherited: make(map[string]bool)}
}

// Spec returns the job spec for label, if label is defined as a mapping.
func (t *Tree) Spec(label string) (*Map, bool) {
	return t.doc.GetMap(label)
}

// SetSpec replaces the spec stored under label.
func (t *Tree) SetSpec(label string, spec *Map) {
	t.doc.Set(label, spec)
}

// Has reports whether label is defined as a job (mapping-valued entry).
func (t *Tree) Has(label string) bool {
	_, ok := t.Spec(label)
	return ok
}

// Labels returns every job label in document order.
func (t *Tree) Labels() []string {
	var out []string
	for _, k := range t.doc.Keys() {
		if _, ok := t.doc.GetMap(k); ok {
			out = append(out, k)
		}
	}
	return out
}

// DefaultJob returns the document's default_job entry, if any.
func (t *Tree) DefaultJob() string {
	s, _ := t.doc.GetString(KeyDefaultJob)
	return s
}

// ApplyInheritance folds a spec's `base` job underneath its own fields, the
// spec's fields winning on conflict and the base's aliases excluded. Applied
// lazily, at most once per label.
func (t *Tree) ApplyInheritance(label string) error {
	if t.inherited[label] {
		return nil
	}
	spec, ok := t.Spec(label)
	if !ok {
		return nil
	}
	t.inherited[label] = true
	baseLabel, ok := spec.GetString(KeyBase)
	if !ok {
		return nil
	}
	baseSpec, ok := t.Spec(baseLabel)
	if !ok {
		return fmt.Errorf("job %q: base %q needs to be a defined job", label, baseLabel)
	}
	defaults := baseSpec.Clone()
	defaults.Delete("aliases")
	spec.MergeUnder(defaults)
	return nil
}

// Aliases builds the alias index across every job: alias -> canonical label.
func (t *Tree) Aliases() map[string]string {
	index := make(map[string]string)
	for _, label := range t.Labels() {
		spec, _ := t.Spec(label)
		aliases, ok := spec.GetStringSlice("aliases")
		if !ok {
			continue
		}
		for _, alias := range aliases {
			index[alias] = label
		}
	}
	return index
}

// AliasesOf returns the aliases declared by one job, in declaration order.
func (t *Tree) AliasesOf(label string) []string {
	spec, ok := t.Spec(label)
	if !ok {
		return nil
	}
	aliases, _ := spec.GetStringSlice("aliases")
	return aliases
}
