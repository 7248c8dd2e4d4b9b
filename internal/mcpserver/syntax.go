package mcpserver

// SyntaxGuide describes the Obsidian syntax wikimark renders and how each
// construct maps to HTML.
const SyntaxGuide = `# wikimark Syntax Guide

Notes are Markdown files (.md or .mdx) with optional YAML frontmatter.
wikimark renders the Obsidian extensions below on top of CommonMark and GFM.

## Wiki links

| Syntax | Result |
|---|---|
| ` + "`[[Page]]`" + ` | link to the note named Page |
| ` + "`[[Page|text]]`" + ` | same link, shown as "text" |
| ` + "`[[Page#Heading]]`" + ` | link to a heading, fragment is the heading slug |
| ` + "`[[Page#^block]]`" + ` | link to a block id, fragment is ` + "`#^block`" + ` |
| ` + "`[[#Heading]]`" + ` | heading in the current note |
| ` + "`[[folder/Page]]`" + ` | disambiguates notes that share a name |

Targets resolve by file name, case-insensitively, anywhere in the vault.
When several files share a name the lexicographically smallest path wins
unless the target carries a folder hint. Unresolved links still render,
pointing at the slug of the page name with class ` + "`not-found`" + `.

## Embeds

- ` + "`![[image.png]]`" + `, ` + "`![[image.png|alt text]]`" + `: image (png, jpg, jpeg, gif, webp, svg, avif, apng)
- ` + "`![[clip.mp4]]`" + `: video player (mp4, webm, mov, m4v, ogv)
- ` + "`![[Other Note]]`" + `: the other note inlined in a ` + "`div.embed-note`" + `
- Embeds of files that do not exist render as ` + "`span.embed-not-found`" + `.
- An embed alone in its paragraph replaces the paragraph.

## Highlights

` + "`==marked text==`" + ` renders as ` + "`<mark>marked text</mark>`" + `. Code spans and
code blocks are left alone.

## Callouts

` + "```" + `markdown
> [!warning] Optional title
> Body text with **formatting**.
` + "```" + `

renders as a ` + "`Callout`" + ` element whose ` + "`type`" + ` is the mapped kind
(info, idea, warn, error, success) and whose ` + "`title`" + ` is the text after the
marker. Unknown kinds fall back to ` + "`info`" + `.

## Frontmatter

` + "```" + `markdown
---
title: Human-readable title
tags: [project-x, meeting-notes]
---
` + "```" + `

The title falls back to the first level-one heading. Inline ` + "`#tags`" + ` in
body text are collected as well.
`
