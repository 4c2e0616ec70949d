// Package seo injects and updates SEO metadata in landing page HTML: the
// document title, meta description, canonical link, robots directive, and
// Open Graph / Twitter card tags. Injection is idempotent; existing tags are
// updated in place rather than duplicated.
package seo

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	pkerrors "github.com/conneroisu/pagekit/internal/errors"
)

// Metadata describes the tags written into a page's head.
type Metadata struct {
	Title       string
	Description string
	Canonical   string
	SiteName    string
	Image       string
	TwitterCard string
	Robots      string
}

// Inject parses the HTML document from r, upserts the metadata tags into its
// head, and renders the result to w.
func Inject(r io.Reader, w io.Writer, meta Metadata) error {
	doc, err := html.Parse(r)
	if err != nil {
		return pkerrors.NewIOError(pkerrors.ErrCodeConfigInvalid, "parsing HTML document", err)
	}

	head := findElement(doc, atom.Head)
	if head == nil {
		// html.Parse synthesizes head for any well-formed input; a nil
		// head means the input was not a document at all.
		return pkerrors.NewConfigError(pkerrors.ErrCodeConfigInvalid, "document has no head element")
	}

	apply(head, meta)

	return html.Render(w, doc)
}

// InjectFile rewrites path in place with the metadata applied.
func InjectFile(path string, meta Metadata) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return pkerrors.NewIOError(pkerrors.ErrCodeFileNotFound, "reading page: "+path, err)
	}

	var buf bytes.Buffer
	if err := Inject(bytes.NewReader(data), &buf, meta); err != nil {
		return fmt.Errorf("injecting metadata into %s: %w", path, err)
	}

	return os.WriteFile(path, buf.Bytes(), 0644)
}

func apply(head *html.Node, meta Metadata) {
	if meta.Title != "" {
		setTitle(head, meta.Title)
		upsertMeta(head, "property", "og:title", meta.Title)
		upsertMeta(head, "name", "twitter:title", meta.Title)
	}
	if meta.Description != "" {
		upsertMeta(head, "name", "description", meta.Description)
		upsertMeta(head, "property", "og:description", meta.Description)
		upsertMeta(head, "name", "twitter:description", meta.Description)
	}
	if meta.Canonical != "" {
		upsertLink(head, "canonical", meta.Canonical)
		upsertMeta(head, "property", "og:url", meta.Canonical)
	}
	if meta.SiteName != "" {
		upsertMeta(head, "property", "og:site_name", meta.SiteName)
	}
	if meta.Image != "" {
		upsertMeta(head, "property", "og:image", meta.Image)
		upsertMeta(head, "name", "twitter:image", meta.Image)
	}
	if meta.TwitterCard != "" {
		upsertMeta(head, "name", "twitter:card", meta.TwitterCard)
	}
	if meta.Robots != "" {
		upsertMeta(head, "name", "robots", meta.Robots)
	}
	upsertMeta(head, "property", "og:type", "website")
}

// setTitle replaces the text of the title element, creating it if absent.
func setTitle(head *html.Node, title string) {
	node := findElement(head, atom.Title)
	if node == nil {
		node = &html.Node{
			Type:     html.ElementNode,
			DataAtom: atom.Title,
			Data:     "title",
		}
		head.AppendChild(node)
	}

	for child := node.FirstChild; child != nil; {
		next := child.NextSibling
		node.RemoveChild(child)
		child = next
	}
	node.AppendChild(&html.Node{Type: html.TextNode, Data: title})
}

// upsertMeta sets the content of the meta tag identified by keyAttr=keyValue
// (e.g. name="description"), creating the tag if absent.
func upsertMeta(head *html.Node, keyAttr, keyValue, content string) {
	for node := head.FirstChild; node != nil; node = node.NextSibling {
		if node.Type != html.ElementNode || node.DataAtom != atom.Meta {
			continue
		}
		if getAttr(node, keyAttr) != keyValue {
			continue
		}
		setAttr(node, "content", content)

		return
	}

	head.AppendChild(&html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Meta,
		Data:     "meta",
		Attr: []html.Attribute{
			{Key: keyAttr, Val: keyValue},
			{Key: "content", Val: content},
		},
	})
}

// upsertLink sets the href of the link tag with the given rel, creating the
// tag if absent.
func upsertLink(head *html.Node, rel, href string) {
	for node := head.FirstChild; node != nil; node = node.NextSibling {
		if node.Type != html.ElementNode || node.DataAtom != atom.Link {
			continue
		}
		if !strings.EqualFold(getAttr(node, "rel"), rel) {
			continue
		}
		setAttr(node, "href", href)

		return
	}

	head.AppendChild(&html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Link,
		Data:     "link",
		Attr: []html.Attribute{
			{Key: "rel", Val: rel},
			{Key: "href", Val: href},
		},
	})
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findElement(child, a); found != nil {
			return found
		}
	}

	return nil
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}

	return ""
}

func setAttr(n *html.Node, key, val string) {
	for i, attr := range n.Attr {
		if attr.Key == key {
			n.Attr[i].Val = val

			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}
