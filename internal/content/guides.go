package content

import (
	"fmt"
	"html/template"

	"github.com/thaivisachecklist/server/internal/sanitize"
	"github.com/thaivisachecklist/server/internal/validation"
)

// Block is a titled card inside a guide section.
type Block struct {
	Title   string `yaml:"title"`
	RawBody string `yaml:"body"`

	Body template.HTML `yaml:"-"`
}

type GuideSection struct {
	Heading  string   `yaml:"heading"`
	RawBody  string   `yaml:"body"`
	RawItems []string `yaml:"items"`
	Blocks   []Block  `yaml:"blocks"`

	Body  template.HTML   `yaml:"-"`
	Items []template.HTML `yaml:"-"`
}

type Link struct {
	Label string `yaml:"label"`
	URL   string `yaml:"url"`
}

type Guide struct {
	Slug            string         `yaml:"slug"`
	Path            string         `yaml:"path"`
	BackLink        string         `yaml:"back_link"`
	Title           string         `yaml:"title"`
	Heading         string         `yaml:"heading"`
	Summary         string         `yaml:"summary"`
	Accent          string         `yaml:"accent"`
	Calculator      bool           `yaml:"calculator"`
	MetaTitle       string         `yaml:"meta_title"`
	MetaDescription string         `yaml:"meta_description"`
	Callout         string         `yaml:"callout"`
	Sections        []GuideSection `yaml:"sections"`
	RawGoodToKnow   []string       `yaml:"good_to_know"`
	Links           []Link         `yaml:"links"`
	Footnote        string         `yaml:"footnote"`

	GoodToKnow []template.HTML `yaml:"-"`
}

// Guides keeps guides in authored order.
type Guides struct {
	list   []*Guide
	bySlug map[string]*Guide
}

func newGuides(list []*Guide) (*Guides, error) {
	g := &Guides{list: list, bySlug: make(map[string]*Guide, len(list))}
	for _, guide := range list {
		if guide.Slug == "" || guide.Title == "" {
			return nil, fmt.Errorf("guide %q: slug and title are required", guide.Slug)
		}
		if _, dup := g.bySlug[guide.Slug]; dup {
			return nil, fmt.Errorf("guide %q: duplicate slug", guide.Slug)
		}
		if guide.Path == "" {
			guide.Path = "/guides/" + guide.Slug
		}
		if guide.BackLink == "" {
			guide.BackLink = "/guides"
		}
		if err := guide.validateLinks(); err != nil {
			return nil, fmt.Errorf("guide %q: %w", guide.Slug, err)
		}
		guide.render()
		g.bySlug[guide.Slug] = guide
	}
	return g, nil
}

func (g *Guide) validateLinks() error {
	if err := validation.ValidateLink(g.Path, "path"); err != nil {
		return err
	}
	if err := validation.ValidateLink(g.BackLink, "back_link"); err != nil {
		return err
	}
	for _, link := range g.Links {
		if err := validation.ValidateLink(link.URL, "links"); err != nil {
			return err
		}
	}
	return nil
}

// render sanitizes the authored fragments once at load.
func (g *Guide) render() {
	for i := range g.Sections {
		s := &g.Sections[i]
		s.Body = sanitize.Fragment(s.RawBody)
		s.Items = make([]template.HTML, len(s.RawItems))
		for j, item := range s.RawItems {
			s.Items[j] = sanitize.Fragment(item)
		}
		for j := range s.Blocks {
			s.Blocks[j].Body = sanitize.Fragment(s.Blocks[j].RawBody)
		}
	}
	g.GoodToKnow = make([]template.HTML, len(g.RawGoodToKnow))
	for i, tip := range g.RawGoodToKnow {
		g.GoodToKnow[i] = sanitize.Fragment(tip)
	}
}

// All returns guides in authored order.
func (g *Guides) All() []*Guide {
	return g.list
}

// Get returns a guide by slug.
func (g *Guides) Get(slug string) (*Guide, error) {
	guide, ok := g.bySlug[slug]
	if !ok {
		return nil, fmt.Errorf("%w: guide %q", ErrNotFound, slug)
	}
	return guide, nil
}
