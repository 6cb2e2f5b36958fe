// Package content loads the site copy embedded in the binary: the visa
// grid, guides, stage overviews, news and the sitemap route table.
package content

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"

	"github.com/thaivisachecklist/server/internal/sanitize"
	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var dataFS embed.FS

var ErrNotFound = errors.New("content not found")

// Visa is a card in the home page grid.
type Visa struct {
	Slug     string `yaml:"slug"`
	Emoji    string `yaml:"emoji"`
	Title    string `yaml:"title"`
	Subtitle string `yaml:"subtitle"`
	Accent   string `yaml:"accent"`
	Href     string `yaml:"href"`
	Disabled bool   `yaml:"disabled"`
}

// Stage is one step of a visa route.
type Stage struct {
	Number      int    `yaml:"number"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Href        string `yaml:"href"`
}

// Route is the stage overview for one visa.
type Route struct {
	Visa            string  `yaml:"visa"`
	Emoji           string  `yaml:"emoji"`
	Title           string  `yaml:"title"`
	Subtitle        string  `yaml:"subtitle"`
	MetaTitle       string  `yaml:"meta_title"`
	MetaDescription string  `yaml:"meta_description"`
	Stages          []Stage `yaml:"stages"`
	After           []Stage `yaml:"after"`
}

// Page is a free-form page such as About.
type Page struct {
	Slug            string `yaml:"slug"`
	Title           string `yaml:"title"`
	MetaTitle       string `yaml:"meta_title"`
	MetaDescription string `yaml:"meta_description"`
	RawBody         string `yaml:"body"`

	Body template.HTML `yaml:"-"`
}

// Site is everything loaded from the embedded data.
type Site struct {
	Visas   []Visa
	Guides  *Guides
	Routes  map[string]*Route
	Pages   map[string]*Page
	News    *News
	Sitemap *Sitemap
}

// Load parses the embedded content.
func Load() (*Site, error) {
	return load(dataFS, "data")
}

func load(fsys fs.FS, dir string) (*Site, error) {
	site := &Site{
		Routes: make(map[string]*Route),
		Pages:  make(map[string]*Page),
	}

	if err := decode(fsys, dir+"/visas.yaml", &site.Visas); err != nil {
		return nil, err
	}

	var guides []*Guide
	if err := decode(fsys, dir+"/guides.yaml", &guides); err != nil {
		return nil, err
	}
	g, err := newGuides(guides)
	if err != nil {
		return nil, err
	}
	site.Guides = g

	var routes []*Route
	if err := decode(fsys, dir+"/stages.yaml", &routes); err != nil {
		return nil, err
	}
	for _, r := range routes {
		site.Routes[r.Visa] = r
	}

	var pages []*Page
	if err := decode(fsys, dir+"/pages.yaml", &pages); err != nil {
		return nil, err
	}
	for _, p := range pages {
		p.Body = sanitize.Fragment(p.RawBody)
		site.Pages[p.Slug] = p
	}

	var items []NewsItem
	if err := decode(fsys, dir+"/news.yaml", &items); err != nil {
		return nil, err
	}
	news, err := newNews(items)
	if err != nil {
		return nil, err
	}
	site.News = news

	var entries []SitemapEntry
	if err := decode(fsys, dir+"/sitemap.yaml", &entries); err != nil {
		return nil, err
	}
	site.Sitemap = &Sitemap{Entries: entries}

	return site, nil
}

func decode(fsys fs.FS, name string, out any) error {
	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

// Route returns the stage overview for visa.
func (s *Site) Route(visa string) (*Route, error) {
	r, ok := s.Routes[visa]
	if !ok {
		return nil, fmt.Errorf("%w: route %q", ErrNotFound, visa)
	}
	return r, nil
}

// Page returns a free-form page by slug.
func (s *Site) Page(slug string) (*Page, error) {
	p, ok := s.Pages[slug]
	if !ok {
		return nil, fmt.Errorf("%w: page %q", ErrNotFound, slug)
	}
	return p, nil
}

// Visa returns the grid card for slug.
func (s *Site) Visa(slug string) (Visa, bool) {
	for _, v := range s.Visas {
		if v.Slug == slug {
			return v, true
		}
	}
	return Visa{}, false
}
