package main

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"finitefield.org/mall-web/internal/format"
	"finitefield.org/mall-web/internal/observability"
	"finitefield.org/mall-web/internal/seo"
)

// views parses the template tree once, or on every request in dev mode.
type views struct {
	dir   string
	dev   bool
	funcs template.FuncMap

	mu    sync.RWMutex
	cache *template.Template
}

func newViews(dir string, dev bool, funcs template.FuncMap) *views {
	return &views{dir: dir, dev: dev, funcs: funcs}
}

func (v *views) load() error {
	t, err := v.parse()
	if err != nil {
		return err
	}
	v.mu.Lock()
	v.cache = t
	v.mu.Unlock()
	return nil
}

func (v *views) parse() (*template.Template, error) {
	// Recursively discover and parse all .tmpl files. Note: ParseGlob doesn't support **.
	var files []string
	if err := filepath.WalkDir(v.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".tmpl") {
			files = append(files, path)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no templates found under %s", v.dir)
	}
	return template.New("_root").Funcs(v.funcs).ParseFiles(files...)
}

func (v *views) get() (*template.Template, error) {
	if v.dev {
		return v.parse()
	}
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.cache == nil {
		return nil, fmt.Errorf("templates not initialized")
	}
	return v.cache, nil
}

// render executes the named template into a buffer so a failure never leaves
// a half-written page behind.
func (v *views) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	t, err := v.get()
	if err != nil {
		observability.FromContext(r.Context()).Error("template parse failed", zap.Error(err))
		http.Error(w, "template parse error", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		observability.FromContext(r.Context()).Error("template exec failed", zap.String("template", name), zap.Error(err))
		http.Error(w, "template exec error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// page renders the base layout.
func (v *views) page(w http.ResponseWriter, r *http.Request, status int, data any) {
	v.render(w, r, status, "base", data)
}

func (a *app) funcs() template.FuncMap {
	return template.FuncMap{
		"now": time.Now,
		"t": func(lang, key string) string {
			return a.bundle.T(lang, key)
		},
		"tf": func(lang, key string, args ...any) string {
			return a.bundle.Tf(lang, key, args...)
		},
		"jsonld": func(raw string) template.JS {
			return template.JS(raw)
		},
		"schema": seo.Script,
		"pct":  format.Percent,
		"date": format.Date,
		"itoa": strconv.Itoa,
	}
}
