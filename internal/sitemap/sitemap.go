// Package sitemap renders the XML sitemap of the public site: static pages,
// public agents, payment plans and published blog posts.
package sitemap

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/iacol-backend/internal/blog"
	"github.com/angelmondragon/iacol-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/iacol-backend/pkg/errors"
)

const xmlns = "http://www.sitemaps.org/schemas/sitemap/0.9"

// StaticPaths are the marketing pages always listed.
var StaticPaths = []string{"/", "/about/", "/contact/", "/solutions/", "/resources/", "/blog/"}

type urlEntry struct {
	Loc        string  `xml:"loc"`
	LastMod    string  `xml:"lastmod,omitempty"`
	ChangeFreq string  `xml:"changefreq"`
	Priority   float64 `xml:"priority"`
}

type urlSet struct {
	XMLName xml.Name   `xml:"urlset"`
	Xmlns   string     `xml:"xmlns,attr"`
	URLs    []urlEntry `xml:"url"`
}

type agentSource interface {
	ListSolutions(ctx context.Context) ([]models.Agent, error)
}

type postSource interface {
	Sitemap(ctx context.Context) ([]blog.SitemapEntry, error)
}

type Builder struct {
	baseURL string
	agents  agentSource
	posts   postSource
}

func NewBuilder(baseURL string, agents agentSource, posts postSource) (*Builder, error) {
	if agents == nil || posts == nil {
		return nil, fmt.Errorf("sitemap sources required")
	}
	return &Builder{baseURL: strings.TrimRight(baseURL, "/"), agents: agents, posts: posts}, nil
}

// Build returns the encoded document including the XML header.
func (b *Builder) Build(ctx context.Context) ([]byte, error) {
	set := urlSet{Xmlns: xmlns}
	for _, p := range StaticPaths {
		set.URLs = append(set.URLs, urlEntry{Loc: b.baseURL + p, ChangeFreq: "monthly", Priority: 0.8})
	}

	agents, err := b.agents.ListSolutions(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list sitemap agents")
	}
	for _, a := range agents {
		set.URLs = append(set.URLs, urlEntry{
			Loc:        fmt.Sprintf("%s/agents/%s/", b.baseURL, a.ID),
			LastMod:    lastMod(a.UpdatedAt),
			ChangeFreq: "weekly",
			Priority:   0.6,
		})
	}

	set.URLs = append(set.URLs, urlEntry{Loc: b.baseURL + "/plans/", ChangeFreq: "monthly", Priority: 0.5})

	posts, err := b.posts.Sitemap(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range posts {
		set.URLs = append(set.URLs, urlEntry{
			Loc:        b.baseURL + blog.PostPath(p.Slug),
			LastMod:    lastMod(p.UpdatedDate),
			ChangeFreq: "weekly",
			Priority:   0.7,
		})
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode sitemap")
	}
	return buf.Bytes(), nil
}

func lastMod(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}
