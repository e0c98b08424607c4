package filepress

import (
	"fmt"

	"github.com/eringen/filepress/parsers"
	"github.com/eringen/filepress/toc"
)

// Rendered is the output of the rendering pipeline for one entity.
type Rendered struct {
	HTML    string      `json:"content"`
	HasMore bool        `json:"has_more"`
	TOC     []*toc.Node `json:"toc,omitempty"`
	TOCHTML string      `json:"toc_html,omitempty"`
}

func (s *Store) parser(e *Entity) (parsers.Parser, error) {
	p := s.registry.Resolve(e.Format())
	if p == nil {
		return nil, fmt.Errorf("%w: %q", parsers.ErrUnknownFormat, e.Format())
	}
	return p, nil
}

// RenderPreview renders the part of the body before the read-more marker.
func (s *Store) RenderPreview(e *Entity) (Rendered, error) {
	p, err := s.parser(e)
	if err != nil {
		return Rendered{}, err
	}
	html, more, err := p.ParsePreview(e.RawContent)
	if err != nil {
		return Rendered{}, fmt.Errorf("render preview: %w", err)
	}
	return Rendered{HTML: html, HasMore: more}, nil
}

// RenderWhole renders the full body, adds header anchors and extracts the
// table of contents pruned to depth and lowest.
func (s *Store) RenderWhole(e *Entity, depth, lowest int) (Rendered, error) {
	p, err := s.parser(e)
	if err != nil {
		return Rendered{}, err
	}
	html, err := p.ParseWhole(e.RawContent)
	if err != nil {
		return Rendered{}, fmt.Errorf("render: %w", err)
	}

	tp := toc.New()
	tp.Feed(html)
	return Rendered{
		HTML:    tp.HTML(),
		TOC:     tp.TOC(depth, lowest),
		TOCHTML: tp.TOCHTML(depth, lowest),
	}, nil
}
