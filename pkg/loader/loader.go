// Package loader reads forests from YAML or JSON files.
//
// A file holds either a bare list of nodes or a document with a name:
//
//	name: docs
//	nodes:
//	  - id: r
//	    label: Root
//	    children:
//	      - id: a
//
// Decoding errors carry the file path and, where the decoder reports one,
// the line number. Decoded forests are validated: every id must be present,
// printable and unique.
package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/treekit/pkg/logging"
	"github.com/vanderheijden86/treekit/pkg/model"
)

// Document is one decoded forest file.
type Document struct {
	Path  string           `json:"-" yaml:"-"`
	Name  string           `json:"name,omitempty" yaml:"name,omitempty"`
	Nodes []model.TreeNode `json:"nodes" yaml:"nodes" validate:"dive"`
}

// Key names the document for persisted state: the explicit name, or the
// file name without its extension.
func (d *Document) Key() string {
	if d.Name != "" {
		return d.Name
	}
	base := filepath.Base(d.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Format is the encoding of a forest file.
type Format int

const (
	FormatYAML Format = iota
	FormatJSON
)

// FormatFor picks the decoder from the file extension. Unknown extensions
// are treated as YAML, which also accepts most JSON.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Loader decodes and validates forest files.
type Loader struct {
	autoID      bool
	concurrency int
	log         *logging.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithAutoID assigns a random UUID to every node whose id is blank
// instead of rejecting the file.
func WithAutoID() Option {
	return func(l *Loader) { l.autoID = true }
}

// WithConcurrency caps how many files LoadAll reads at once.
func WithConcurrency(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.concurrency = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *logging.Logger) Option {
	return func(l *Loader) { l.log = log }
}

// New creates a Loader.
func New(opts ...Option) *Loader {
	l := &Loader{concurrency: 4}
	for _, opt := range opts {
		opt(l)
	}
	if l.log == nil {
		l.log = logging.Nop()
	}
	l.log = l.log.With("loader")
	return l
}

// LoadFile reads and parses the forest at path.
func (l *Loader) LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return l.Parse(path, data)
}

// Parse decodes data as the format implied by path and validates the result.
func (l *Loader) Parse(path string, data []byte) (*Document, error) {
	var (
		doc *Document
		err error
	)
	switch FormatFor(path) {
	case FormatJSON:
		doc, err = decodeJSON(path, data)
	default:
		doc, err = decodeYAML(path, data)
	}
	if err != nil {
		return nil, err
	}
	doc.Path = path

	if l.autoID {
		if n := assignIDs(doc.Nodes); n > 0 {
			l.log.Debug("assigned generated ids", "path", path, "count", n)
		}
	}
	if err := validateDocument(path, doc); err != nil {
		return nil, err
	}
	l.log.Debug("loaded forest", "path", path, "nodes", model.Count(doc.Nodes))
	return doc, nil
}

// LoadAll loads every path concurrently. The result keeps the order of
// paths; the first failure cancels the remaining loads.
func (l *Loader) LoadAll(ctx context.Context, paths []string) ([]*Document, error) {
	docs := make([]*Document, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			doc, err := l.LoadFile(path)
			if err != nil {
				return err
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

func decodeYAML(path string, data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &ParseError{Path: path, Line: extractLine(err), Err: err}
	}
	doc := &Document{}
	if root.Kind == 0 {
		// Empty file
		return doc, nil
	}
	body := &root
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		body = root.Content[0]
	}

	var err error
	switch body.Kind {
	case yaml.SequenceNode:
		err = body.Decode(&doc.Nodes)
	case yaml.MappingNode:
		err = body.Decode(doc)
	default:
		return nil, &ParseError{Path: path, Line: body.Line, Err: errors.New("expected a list of nodes or a document with nodes")}
	}
	if err != nil {
		line := extractLine(err)
		if line == 0 {
			line = body.Line
		}
		return nil, &ParseError{Path: path, Line: line, Err: err}
	}
	return doc, nil
}

func decodeJSON(path string, data []byte) (*Document, error) {
	trimmed := bytes.TrimSpace(data)
	doc := &Document{}
	if len(trimmed) == 0 {
		return doc, nil
	}

	var err error
	if trimmed[0] == '[' {
		err = json.Unmarshal(data, &doc.Nodes)
	} else {
		err = json.Unmarshal(data, doc)
	}
	if err != nil {
		return nil, &ParseError{Path: path, Line: jsonErrorLine(data, err), Err: err}
	}
	return doc, nil
}

func jsonErrorLine(data []byte, err error) int {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return lineAtOffset(data, syntaxErr.Offset)
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return lineAtOffset(data, typeErr.Offset)
	}
	return 0
}

// assignIDs fills blank ids with random UUIDs and returns how many it set.
func assignIDs(nodes []model.TreeNode) int {
	n := 0
	for i := range nodes {
		if strings.TrimSpace(nodes[i].ID) == "" {
			nodes[i].ID = uuid.NewString()
			n++
		}
		n += assignIDs(nodes[i].Children)
	}
	return n
}

// String implements fmt.Stringer.
func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatJSON:
		return "json"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}
