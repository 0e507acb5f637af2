package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/getsops/sops/v3/decrypt"
	"gopkg.in/yaml.v3"
)

// Directive tags registered by NewLoader.
const (
	TagInclude = "!include"
	TagEnv     = "!env"
)

// Directive expands a tagged scalar into the node that replaces it.
type Directive func(ctx *DirectiveContext, value string) (*yaml.Node, error)

// Decrypter decrypts SOPS-encrypted file contents.
type Decrypter interface {
	Decrypt(data []byte, format string) ([]byte, error)
}

// sopsDecrypter decrypts with the keys available to the sops library
// (age, PGP, cloud KMS) as configured in the environment.
type sopsDecrypter struct{}

func (sopsDecrypter) Decrypt(data []byte, format string) ([]byte, error) {
	return decrypt.Data(data, format)
}

// Loader reads manifest files and expands directives.
// Each Loader owns its directive registry; there is no global parser state.
type Loader struct {
	directives map[string]Directive
	lookupEnv  func(string) (string, bool)
	decrypter  Decrypter
}

// Option configures a Loader.
type Option func(*Loader)

// WithDirective registers a directive handler for a YAML tag such as "!include".
func WithDirective(tag string, fn Directive) Option {
	return func(l *Loader) {
		l.directives[tag] = fn
	}
}

// WithLookupEnv replaces the environment lookup used by !env.
func WithLookupEnv(fn func(string) (string, bool)) Option {
	return func(l *Loader) {
		l.lookupEnv = fn
	}
}

// WithDecrypter replaces the decrypter used for SOPS-encrypted files.
// A nil decrypter makes encrypted files a parse error.
func WithDecrypter(d Decrypter) Option {
	return func(l *Loader) {
		l.decrypter = d
	}
}

// NewLoader creates a Loader with the !include and !env directives registered.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		directives: map[string]Directive{
			TagInclude: includeDirective,
			TagEnv:     envDirective,
		},
		lookupEnv: os.LookupEnv,
		decrypter: sopsDecrypter{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// DirectiveContext carries the location of the file being expanded.
type DirectiveContext struct {
	// Dir is the directory of the file containing the directive.
	Dir string

	loader *Loader
	chain  []string
}

// LookupEnv reads an environment variable through the loader.
func (c *DirectiveContext) LookupEnv(key string) (string, bool) {
	return c.loader.lookupEnv(key)
}

// Load reads another document relative to Dir, expanding its directives
// relative to its own location.
func (c *DirectiveContext) Load(path string) (*yaml.Node, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.Dir, path)
	}
	return c.loader.loadFile(path, c.chain)
}

// Document is a parsed manifest file.
type Document struct {
	// Path is the file the document was loaded from.
	Path string

	// Root is the top-level node of the document.
	Root *yaml.Node
}

// Load parses the manifest at path and expands all directives.
func (l *Loader) Load(path string) (*Document, error) {
	root, err := l.loadFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &Document{Path: path, Root: root}, nil
}

func (l *Loader) loadFile(path string, chain []string) (*yaml.Node, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve path %s: %v", ErrParse, path, err)
	}

	for _, seen := range chain {
		if seen == abs {
			cycle := append(append([]string{}, chain...), abs)
			return nil, fmt.Errorf("%w: include cycle: %s", ErrParse, strings.Join(cycle, " -> "))
		}
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrParse, path, err)
	}

	if isEncrypted(data) {
		if l.decrypter == nil {
			return nil, fmt.Errorf("%w: %s is encrypted and no decrypter is configured", ErrParse, path)
		}
		data, err = l.decrypter.Decrypt(data, formatOf(abs))
		if err != nil {
			return nil, fmt.Errorf("%w: decrypt %s: %v", ErrParse, path, err)
		}
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrParse, path, err)
	}

	// Empty documents include as null.
	if len(doc.Content) == 0 {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	}

	ctx := &DirectiveContext{
		Dir:    filepath.Dir(abs),
		loader: l,
		chain:  append(append([]string{}, chain...), abs),
	}

	root, err := l.expand(ctx, doc.Content[0])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return root, nil
}

// expand replaces directive nodes below n and returns the node to use in place of n.
func (l *Loader) expand(ctx *DirectiveContext, n *yaml.Node) (*yaml.Node, error) {
	if fn, ok := l.directives[n.Tag]; ok {
		if n.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("%w: line %d: %s expects a scalar argument", ErrParse, n.Line, n.Tag)
		}
		expanded, err := fn(ctx, n.Value)
		if err != nil {
			return nil, fmt.Errorf("line %d: %s %s: %w", n.Line, n.Tag, n.Value, err)
		}
		return expanded, nil
	}

	switch n.Kind {
	case yaml.MappingNode:
		for i := 1; i < len(n.Content); i += 2 {
			value, err := l.expand(ctx, n.Content[i])
			if err != nil {
				return nil, err
			}
			n.Content[i] = value
		}
	case yaml.SequenceNode:
		for i, item := range n.Content {
			value, err := l.expand(ctx, item)
			if err != nil {
				return nil, err
			}
			n.Content[i] = value
		}
	}

	return n, nil
}

func includeDirective(ctx *DirectiveContext, value string) (*yaml.Node, error) {
	if strings.TrimSpace(value) == "" {
		return nil, fmt.Errorf("%w: include path is empty", ErrParse)
	}
	return ctx.Load(value)
}

func envDirective(ctx *DirectiveContext, value string) (*yaml.Node, error) {
	key := strings.TrimSpace(value)
	if key == "" {
		return nil, fmt.Errorf("%w: variable name is empty", ErrParse)
	}
	v, _ := ctx.LookupEnv(key)
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}, nil
}

// isEncrypted reports whether data carries SOPS metadata.
func isEncrypted(data []byte) bool {
	var meta struct {
		Sops map[string]any `yaml:"sops"`
	}
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return false
	}
	return meta.Sops != nil
}

// formatOf maps a file extension to a sops input format.
func formatOf(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return "json"
	}
	return "yaml"
}
