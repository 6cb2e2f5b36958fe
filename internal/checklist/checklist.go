// Package checklist holds the visa document checklists and tracks which
// items a visitor has ticked off.
package checklist

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strconv"

	"github.com/thaivisachecklist/server/internal/validation"
	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var dataFS embed.FS

// FormsKey is the progress key for the "application forms" row that stage
// checklists show above their sections.
const FormsKey = "__forms__"

var ErrNotFound = errors.New("checklist not found")

type Item struct {
	Text     string `yaml:"text"`
	Required bool   `yaml:"required"`
	NoteLink string `yaml:"note_link"`
	NoteURL  string `yaml:"note_url"`
}

type Section struct {
	Title string `yaml:"title"`
	Items []Item `yaml:"items"`
}

// FormLink points at an official application form.
type FormLink struct {
	Code string `yaml:"code"`
	URL  string `yaml:"url"`
}

type Checklist struct {
	ID              string     `yaml:"id"`
	Visa            string     `yaml:"visa"`
	Stage           int        `yaml:"stage"`
	Namespace       string     `yaml:"namespace"`
	Title           string     `yaml:"title"`
	Subtitle        string     `yaml:"subtitle"`
	LastUpdated     string     `yaml:"last_updated"`
	MetaTitle       string     `yaml:"meta_title"`
	MetaDescription string     `yaml:"meta_description"`
	BackLink        string     `yaml:"back_link"`
	Forms           []FormLink `yaml:"forms"`
	Sections        []Section  `yaml:"sections"`
	Tips            []string   `yaml:"tips"`
}

// ItemKey identifies an item by its section title and position.
func ItemKey(sectionTitle string, index int) string {
	return sectionTitle + ":" + strconv.Itoa(index)
}

// StorageKey is where ticked items for this checklist are kept.
func (c *Checklist) StorageKey() string {
	return "thai-visa-checklist:" + c.Namespace + ":checked:v1"
}

// Keys lists every tickable key, forms row first when present.
func (c *Checklist) Keys() []string {
	var keys []string
	if len(c.Forms) > 0 {
		keys = append(keys, FormsKey)
	}
	for _, s := range c.Sections {
		for i := range s.Items {
			keys = append(keys, ItemKey(s.Title, i))
		}
	}
	return keys
}

// HasKey reports whether key names an item of this checklist.
func (c *Checklist) HasKey(key string) bool {
	for _, k := range c.Keys() {
		if k == key {
			return true
		}
	}
	return false
}

// Total counts tickable rows.
func (c *Checklist) Total() int {
	n := 0
	if len(c.Forms) > 0 {
		n++
	}
	for _, s := range c.Sections {
		n += len(s.Items)
	}
	return n
}

// Path is where the checklist is served.
func (c *Checklist) Path() string {
	if c.Stage >= 3 {
		return "/visa/" + c.Visa
	}
	return "/visa/" + c.Visa + "/stages/stage-" + strconv.Itoa(c.Stage)
}

// IsStage reports whether this is a stage walkthrough rather than the
// full extension checklist.
func (c *Checklist) IsStage() bool {
	return len(c.Forms) > 0 || c.Stage < 3
}

// Catalog indexes checklists by visa and stage.
type Catalog struct {
	byKey map[string]*Checklist
	byID  map[string]*Checklist
	all   []*Checklist
}

func catalogKey(visa string, stage int) string {
	return visa + "/" + strconv.Itoa(stage)
}

// LoadCatalog parses the embedded checklist data.
func LoadCatalog() (*Catalog, error) {
	return loadCatalog(dataFS, "data")
}

func loadCatalog(fsys fs.FS, dir string) (*Catalog, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read checklist data: %w", err)
	}

	cat := &Catalog{byKey: make(map[string]*Checklist), byID: make(map[string]*Checklist)}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		raw, err := fs.ReadFile(fsys, dir+"/"+entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		var c Checklist
		if err := yaml.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("parse %s: %w", entry.Name(), err)
		}
		if c.ID == "" || c.Visa == "" || c.Namespace == "" || len(c.Sections) == 0 {
			return nil, fmt.Errorf("checklist %s: id, visa, namespace and sections are required", entry.Name())
		}
		if err := c.validateLinks(); err != nil {
			return nil, fmt.Errorf("checklist %s: %w", entry.Name(), err)
		}
		if _, dup := cat.byID[c.ID]; dup {
			return nil, fmt.Errorf("checklist %s: duplicate id %s", entry.Name(), c.ID)
		}
		key := catalogKey(c.Visa, c.Stage)
		if _, dup := cat.byKey[key]; dup {
			return nil, fmt.Errorf("checklist %s: duplicate %s", entry.Name(), key)
		}
		cat.byKey[key] = &c
		cat.byID[c.ID] = &c
		cat.all = append(cat.all, &c)
	}

	sort.Slice(cat.all, func(i, j int) bool {
		if cat.all[i].Visa != cat.all[j].Visa {
			return cat.all[i].Visa < cat.all[j].Visa
		}
		return cat.all[i].Stage < cat.all[j].Stage
	})
	return cat, nil
}

func (c *Checklist) validateLinks() error {
	if c.BackLink != "" {
		if err := validation.ValidateLink(c.BackLink, "back_link"); err != nil {
			return err
		}
	}
	for _, form := range c.Forms {
		if err := validation.ValidateURL(form.URL, "forms", false); err != nil {
			return err
		}
	}
	for _, section := range c.Sections {
		for _, item := range section.Items {
			if item.NoteURL == "" {
				continue
			}
			if err := validation.ValidateLink(item.NoteURL, "note_url"); err != nil {
				return err
			}
		}
	}
	return nil
}

// Extension returns the full one-year extension checklist for visa.
func (c *Catalog) Extension(visa string) (*Checklist, error) {
	return c.Stage(visa, 3)
}

// Stage returns a stage checklist.
func (c *Catalog) Stage(visa string, stage int) (*Checklist, error) {
	cl, ok := c.byKey[catalogKey(visa, stage)]
	if !ok {
		return nil, fmt.Errorf("%w: %s stage %d", ErrNotFound, visa, stage)
	}
	return cl, nil
}

// Get returns a checklist by id.
func (c *Catalog) Get(id string) (*Checklist, error) {
	cl, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return cl, nil
}

// All returns checklists ordered by visa then stage.
func (c *Catalog) All() []*Checklist {
	return c.all
}
