package content

import (
	"encoding/xml"
	"io"
	"strconv"
	"strings"
	"time"
)

// SitemapEntry is one route in the sitemap table.
type SitemapEntry struct {
	Path            string  `yaml:"path"`
	ChangeFrequency string  `yaml:"change_frequency"`
	Priority        float64 `yaml:"priority"`
}

type Sitemap struct {
	Entries []SitemapEntry
}

type xmlURLSet struct {
	XMLName xml.Name `xml:"urlset"`
	XMLNS   string   `xml:"xmlns,attr"`
	URLs    []xmlURL `xml:"url"`
}

type xmlURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

// WriteXML renders the sitemap for baseURL with every entry stamped
// lastModified.
func (s *Sitemap) WriteXML(w io.Writer, baseURL string, lastModified time.Time) error {
	base := strings.TrimRight(baseURL, "/")
	set := xmlURLSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, e := range s.Entries {
		set.URLs = append(set.URLs, xmlURL{
			Loc:        base + e.Path,
			LastMod:    lastModified.UTC().Format(time.RFC3339),
			ChangeFreq: e.ChangeFrequency,
			Priority:   formatPriority(e.Priority),
		})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return err
	}
	return enc.Flush()
}

func formatPriority(p float64) string {
	return strconv.FormatFloat(p, 'f', 1, 64)
}
