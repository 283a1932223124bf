// Package feed decodes the retailer's bonus export and loads it from disk or
// over HTTP.
package feed

import "github.com/tayloree/bonuscli/internal/bonus"

// Document is the top-level shape of a bonus export. Current exports use
// "actie"; older ones use "bonusnus". Either key may be absent.
type Document struct {
	Actie    []bonus.Fragment `json:"actie"`
	Bonusnus []bonus.Fragment `json:"bonusnus"`
}

// Fragments returns the fragments of both keys, current key first.
func (d Document) Fragments() []bonus.Fragment {
	out := make([]bonus.Fragment, 0, len(d.Actie)+len(d.Bonusnus))
	out = append(out, d.Actie...)
	return append(out, d.Bonusnus...)
}
