package transform

import (
	"fmt"
	"io"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/starford/wikimark/internal/callout"
	"github.com/starford/wikimark/internal/embed"
	"github.com/starford/wikimark/internal/markdown"
	"github.com/starford/wikimark/internal/resolver"
	"github.com/starford/wikimark/internal/wikilink"
)

// ManifestFile is one entry of a pre-built note manifest.
type ManifestFile struct {
	File      string `yaml:"file" json:"file"`
	Permalink string `yaml:"permalink" json:"permalink,omitempty"`
	Content   string `yaml:"content" json:"content,omitempty"`
}

// ReadManifest decodes a YAML (or JSON) list of manifest entries.
func ReadManifest(r io.Reader) ([]ManifestFile, error) {
	var files []ManifestFile
	if err := yaml.NewDecoder(r).Decode(&files); err != nil && err != io.EOF {
		return nil, fmt.Errorf("transform: decode manifest: %w", err)
	}
	return files, nil
}

// LinkContext is what a LinkPathTransform sees.
type LinkContext struct {
	Target      wikilink.Target
	ContentRoot string
	// ResolvedURL is the page URL computed so far, "" when unresolved.
	ResolvedURL string
}

// LinkPathTransform may override a link's page URL by returning (url, true).
// The anchor fragment is appended afterwards.
type LinkPathTransform func(LinkContext) (string, bool)

// NoteLoader returns the Markdown source of a resolved note.
type NoteLoader func(path string) ([]byte, bool)

// Options configures a Transformer. The zero value transforms syntax only:
// links fall back to slug URLs and embeds are never reported missing.
type Options struct {
	// ContentRoot is the directory wiki targets resolve against.
	ContentRoot string
	// ContentRootURLPrefix is prepended to URLs of resolved files.
	ContentRootURLPrefix string
	// BaseURL prefixes slug URLs of unresolved pages.
	BaseURL       string
	MarkdownFiles []ManifestFile
	// Index is used instead of scanning ContentRoot. Callers keep
	// ownership and may update it between transforms.
	Index *resolver.Index

	Callout                callout.Options
	EmbedRendering         embed.Hooks
	EmbeddingPathTransform embed.PathTransform
	WikiLinkPathTransform  LinkPathTransform

	// LoadNote enables inline note embeds when EmbedRendering.Note is nil.
	// Manifest content is used when LoadNote is nil.
	LoadNote NoteLoader
	Parser   *markdown.Parser
	Logger   *slog.Logger
}
