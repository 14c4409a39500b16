// Package content loads catalog records authored as YAML files and seeds
// them into a store.
package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/okian/pmwiki/internal/adapters/repository"
	"github.com/okian/pmwiki/internal/domain/model"
	"github.com/okian/pmwiki/pkg/logger"
)

// ErrNoContent is returned when a pattern matches no files.
var ErrNoContent = errors.New("no content files matched")

// Document is the shape of one YAML document. A file may hold several
// documents separated by "---".
type Document struct {
	Devices []*model.Device   `yaml:"devices"`
	Posts   []*model.BlogPost `yaml:"posts"`
}

// Bundle is everything loaded from a set of files.
type Bundle struct {
	Files   []string
	Devices []*model.Device
	Posts   []*model.BlogPost
}

// Loader reads content files matching a doublestar pattern from a filesystem.
type Loader struct {
	fsys    fs.FS
	pattern string
	logger  logger.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the loader logger.
func WithLogger(l logger.Logger) Option {
	return func(ld *Loader) {
		ld.logger = l
	}
}

// NewLoader reads files matching pattern (relative to fsys).
func NewLoader(fsys fs.FS, pattern string, opts ...Option) *Loader {
	l := &Loader{fsys: fsys, pattern: pattern, logger: logger.Nop()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// NewGlobLoader splits a filesystem glob such as "content/**/*.yaml" into
// its static base directory and pattern.
func NewGlobLoader(glob string, opts ...Option) *Loader {
	base, pattern := doublestar.SplitPattern(filepath.ToSlash(glob))
	return NewLoader(os.DirFS(base), pattern, opts...)
}

// Load parses every matching file in lexical order. Unknown keys are errors.
func (l *Loader) Load(ctx context.Context) (*Bundle, error) {
	matches, err := doublestar.Glob(l.fsys, l.pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("evaluate pattern %s: %w", l.pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoContent, l.pattern)
	}
	sort.Strings(matches)

	b := &Bundle{}
	for _, name := range matches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := l.loadFile(name, b); err != nil {
			return nil, err
		}
		b.Files = append(b.Files, name)
		l.logger.Debug(ctx, "content file loaded", logger.String("file", name))
	}
	return b, nil
}

func (l *Loader) loadFile(name string, b *Bundle) error {
	f, err := l.fsys.Open(name)
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	for {
		var doc Document
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("decode %s: %w", name, err)
		}
		b.Devices = append(b.Devices, doc.Devices...)
		b.Posts = append(b.Posts, doc.Posts...)
	}
}

// Result counts what Seed wrote.
type Result struct {
	Devices int `json:"devices"`
	Posts   int `json:"posts"`
}

// Seed upserts every record of b into store. Records are validated by the
// store; the first invalid record aborts the seed.
func Seed(ctx context.Context, store repository.Store, b *Bundle) (Result, error) {
	var res Result
	for _, d := range b.Devices {
		if d == nil {
			continue
		}
		if err := store.UpsertDevice(ctx, d); err != nil {
			return res, fmt.Errorf("seed device %q: %w", d.Slug, err)
		}
		res.Devices++
	}
	for _, p := range b.Posts {
		if p == nil {
			continue
		}
		if err := store.UpsertPost(ctx, p); err != nil {
			return res, fmt.Errorf("seed post %q: %w", p.Slug, err)
		}
		res.Posts++
	}
	return res, nil
}
