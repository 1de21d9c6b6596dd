package content

import (
	"context"
	"errors"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

// ErrNotFound is returned when no localized page exists for a slug.
var ErrNotFound = errors.New("content: not found")

const defaultCacheTTL = 5 * time.Minute

// Options configures a Source.
type Options struct {
	// Fallback is tried after the requested language.
	Fallback string
	TTL      time.Duration
	Now      func() time.Time
}

// Source reads pages laid out as <kind>/<lang>/<slug>.md.
type Source struct {
	fsys     fs.FS
	fallback string
	ttl      time.Duration
	now      func() time.Time
	md       goldmark.Markdown
	policy   *bluemonday.Policy

	mu    sync.RWMutex
	items map[string]cacheEntry
}

type cacheEntry struct {
	pages   []Page
	expires time.Time
}

// New returns a Source over fsys.
func New(fsys fs.FS, opts Options) *Source {
	if opts.TTL <= 0 {
		opts.TTL = defaultCacheTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Source{
		fsys:     fsys,
		fallback: strings.ToLower(strings.TrimSpace(opts.Fallback)),
		ttl:      opts.TTL,
		now:      opts.Now,
		md:       newMarkdown(),
		policy:   newPolicy(),
		items:    map[string]cacheEntry{},
	}
}

// Page returns kind/slug in lang, falling back to the fallback language.
func (s *Source) Page(ctx context.Context, kind, slug, lang string) (Page, error) {
	kind, slug = sanitize(kind), sanitize(slug)
	if kind == "" || slug == "" {
		return Page{}, ErrNotFound
	}
	key := "page|" + kind + "|" + slug + "|" + lang
	if pages, ok := s.cached(key); ok {
		return pages[0], nil
	}
	for _, candidate := range s.priority(lang) {
		if err := ctx.Err(); err != nil {
			return Page{}, err
		}
		raw, err := fs.ReadFile(s.fsys, path.Join(kind, candidate, slug+".md"))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return Page{}, err
		}
		page, err := parsePage(s.md, s.policy, kind, slug, candidate, raw)
		if err != nil {
			return Page{}, err
		}
		s.store(key, []Page{page})
		return page, nil
	}
	return Page{}, ErrNotFound
}

// List returns every page of kind in the first language that has any,
// ordered by front matter order then slug.
func (s *Source) List(ctx context.Context, kind, lang string) ([]Page, error) {
	kind = sanitize(kind)
	if kind == "" {
		return nil, ErrNotFound
	}
	key := "list|" + kind + "|" + lang
	if pages, ok := s.cached(key); ok {
		return pages, nil
	}
	for _, candidate := range s.priority(lang) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		matches, err := fs.Glob(s.fsys, path.Join(kind, candidate, "*.md"))
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			continue
		}
		pages := make([]Page, 0, len(matches))
		for _, m := range matches {
			raw, err := fs.ReadFile(s.fsys, m)
			if err != nil {
				return nil, err
			}
			slug := strings.TrimSuffix(path.Base(m), ".md")
			page, err := parsePage(s.md, s.policy, kind, slug, candidate, raw)
			if err != nil {
				return nil, err
			}
			pages = append(pages, page)
		}
		sort.SliceStable(pages, func(i, j int) bool {
			if pages[i].Order != pages[j].Order {
				return pages[i].Order < pages[j].Order
			}
			return pages[i].Slug < pages[j].Slug
		})
		s.store(key, pages)
		return clonePages(pages), nil
	}
	return nil, ErrNotFound
}

// Purge drops every cached entry.
func (s *Source) Purge() {
	s.mu.Lock()
	s.items = map[string]cacheEntry{}
	s.mu.Unlock()
}

func (s *Source) priority(lang string) []string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	out := make([]string, 0, 2)
	if lang != "" && sanitize(lang) == lang {
		out = append(out, lang)
	}
	if s.fallback != "" && s.fallback != lang {
		out = append(out, s.fallback)
	}
	return out
}

func (s *Source) cached(key string) ([]Page, bool) {
	s.mu.RLock()
	entry, ok := s.items[key]
	s.mu.RUnlock()
	if !ok || s.now().After(entry.expires) {
		return nil, false
	}
	return clonePages(entry.pages), true
}

func (s *Source) store(key string, pages []Page) {
	s.mu.Lock()
	s.items[key] = cacheEntry{pages: clonePages(pages), expires: s.now().Add(s.ttl)}
	s.mu.Unlock()
}

func clonePages(in []Page) []Page {
	out := make([]Page, len(in))
	copy(out, in)
	return out
}

func sanitize(v string) string {
	v = strings.Trim(strings.TrimSpace(strings.ToLower(v)), "/")
	if v == "" || strings.Contains(v, "..") || strings.ContainsAny(v, `/\`) {
		return ""
	}
	return v
}
