package embed

import (
	"strconv"

	"github.com/starford/wikimark/internal/mdast"
	"github.com/starford/wikimark/internal/wikilink"
)

// RenderContext is passed to render hooks.
type RenderContext struct {
	Kind         Kind
	Target       wikilink.Target
	Alias        string
	ContentRoot  string
	ResolvedPath string
	// ResolvedURL keeps the file extension; PageURL drops it.
	ResolvedURL string
	PageURL     string
	// Width and Height are zero when unknown.
	Width      int
	Height     int
	IsResolved bool
}

// Hook renders one embed. A nil result leaves the wiki link untouched.
type Hook func(RenderContext) mdast.Node

// Hooks overrides default rendering per kind. Nil hooks use the defaults;
// notes have no default and are left alone.
type Hooks struct {
	Note     Hook
	Image    Hook
	Video    Hook
	NotFound Hook
}

// RenderInput describes an embed to render.
type RenderInput struct {
	Target       wikilink.Target
	Alias        string
	ContentRoot  string
	ResolvedPath string
	ResolvedURL  string
	PageURL      string
	// Lookup is set when a content source was available to resolve the
	// target against. Without one every embed counts as resolved.
	Lookup bool
}

// Render builds the replacement node for an embed, or nil.
func Render(in RenderInput, hooks Hooks) mdast.Node {
	kind := Classify(in.Target)
	if kind == KindUnsupported {
		return nil
	}
	if kind == KindNote && in.Target.HasAnchor() {
		return nil
	}

	ctx := RenderContext{
		Kind:         kind,
		Target:       in.Target,
		Alias:        in.Alias,
		ContentRoot:  in.ContentRoot,
		ResolvedPath: in.ResolvedPath,
		ResolvedURL:  in.ResolvedURL,
		PageURL:      in.PageURL,
		IsResolved:   !in.Lookup || in.ResolvedPath != "",
	}

	if !ctx.IsResolved {
		if hooks.NotFound != nil {
			return hooks.NotFound(ctx)
		}
		return NotFoundNode(in.Target)
	}

	switch kind {
	case KindImage:
		if in.ResolvedPath != "" {
			d := ProbeImage(in.ResolvedPath)
			ctx.Width, ctx.Height = d.Width, d.Height
		}
		if hooks.Image != nil {
			return hooks.Image(ctx)
		}
		return ImageNode(ctx)
	case KindVideo:
		if hooks.Video != nil {
			return hooks.Video(ctx)
		}
		return VideoNode(ctx)
	case KindNote:
		if hooks.Note != nil {
			return hooks.Note(ctx)
		}
	}
	return nil
}

// NotFoundNode is the default fragment for embeds that did not resolve.
func NotFoundNode(t wikilink.Target) mdast.Node {
	return &mdast.TextElement{
		Name:       "span",
		Attributes: []mdast.Attribute{{Name: "class", Value: "embed-not-found"}},
		Children:   []mdast.Node{&mdast.Text{Value: "Embed not found: " + t.Page}},
	}
}

// ImageNode is the default image rendering.
func ImageNode(ctx RenderContext) mdast.Node {
	url := ctx.ResolvedURL
	if url == "" {
		url = ctx.Target.Page
	}
	return &mdast.Image{
		URL:    url,
		Alt:    ctx.Alias,
		Width:  ctx.Width,
		Height: ctx.Height,
	}
}

// VideoNode is the default video rendering.
func VideoNode(ctx RenderContext) mdast.Node {
	url := ctx.ResolvedURL
	if url == "" {
		url = ctx.Target.Page
	}
	return &mdast.FlowElement{
		Name: "video",
		Attributes: []mdast.Attribute{
			{Name: "src", Value: url},
			{Name: "controls", Value: strconv.FormatBool(true)},
		},
	}
}
