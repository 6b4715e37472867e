package main

import (
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/msproteomics/mspp/hey"
)

type Global struct {
	log logger

	Site string

	// UploadDir holds the uploaded report tables for the lifetime of the
	// process. Nothing is persisted beyond it.
	UploadDir string

	m       sync.Mutex
	uploads map[string]string
	load    hey.Loader
}

func NewGlobal(log logger, site, uploadDir string) *Global {
	return &Global{
		log:       log,
		Site:      site,
		UploadDir: uploadDir,
		uploads:   make(map[string]string),
		load:      hey.Memoized(hey.LoadSamples),
	}
}

func (g *Global) AddUpload(name, path string) {
	g.m.Lock()
	defer g.m.Unlock()

	g.uploads[name] = path
}

func (g *Global) UploadNames() []string {
	g.m.Lock()
	defer g.m.Unlock()

	names := make([]string, 0, len(g.uploads))
	for name := range g.uploads {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// UploadPaths returns the uploaded file paths ordered by upload name, so
// the single-slot load cache sees a stable key.
func (g *Global) UploadPaths() []string {
	g.m.Lock()
	defer g.m.Unlock()

	names := make([]string, 0, len(g.uploads))
	for name := range g.uploads {
		names = append(names, name)
	}
	sort.Strings(names)

	paths := make([]string, 0, len(names))
	for _, name := range names {
		paths = append(paths, g.uploads[name])
	}

	return paths
}

// ClearUploads deletes the temp files and drops the load cache.
func (g *Global) ClearUploads() {
	g.m.Lock()
	defer g.m.Unlock()

	for _, path := range g.uploads {
		os.Remove(path)
	}
	g.uploads = make(map[string]string)
	g.load = hey.Memoized(hey.LoadSamples)
}

// Load runs the memoized loader over the current upload set.
func (g *Global) Load() ([]*hey.Sample, error) {
	paths := g.UploadPaths()

	g.m.Lock()
	load := g.load
	g.m.Unlock()

	return load(paths)
}

func (g *Global) UploadPathFor(name string) string {
	return filepath.Join(g.UploadDir, name)
}

type logger interface {
	Print(v ...interface{})
	Printf(format string, v ...interface{})
	Println(v ...interface{})
}
