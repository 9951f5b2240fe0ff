package web

import (
	"net/url"
	"path"
	"strings"

	"golang.org/x/net/html"
)

// imageExts are the url path extensions treated as image links when
// scanning anchors.
var imageExts = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".bmp":  {},
	".webp": {},
	".svg":  {},
	".ico":  {},
}

// ForEachNode applies a function to the given node and each of its
// descendants.
func ForEachNode(node *html.Node, fn func(n *html.Node) error) error {
	var iter func(n *html.Node) error
	iter = func(n *html.Node) error {
		err := fn(n)
		if err != nil {
			return err
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			err := iter(c)
			if err != nil {
				return err
			}
		}

		return nil
	}

	return iter(node)
}

// attrVal returns the value of the named attribute of n, or the empty
// string if n has no such attribute.
func attrVal(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}

	return ""
}

// looksLikeImage returns true if the given url's path ends with a
// recognized image extension.
func looksLikeImage(u string) bool {
	parsed, err := url.Parse(u)
	if err != nil {
		return false
	}

	_, ok := imageExts[strings.ToLower(path.Ext(parsed.Path))]
	return ok
}

// ImageURLs returns the urls of all images referenced by the given html
// document: <img> sources, plus anchors whose target looks like an image
// file. Relative urls are resolved against base. Document order, first
// occurrence wins.
func ImageURLs(doc *html.Node, base *url.URL) []string {
	seen := map[string]struct{}{}
	var urls []string

	add := func(raw string) {
		if raw == "" {
			return
		}

		ref, err := url.Parse(raw)
		if err != nil {
			return
		}
		if base != nil {
			ref = base.ResolveReference(ref)
		}
		if ref.Scheme != "http" && ref.Scheme != "https" {
			return
		}

		s := ref.String()
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		urls = append(urls, s)
	}

	ForEachNode(doc, func(n *html.Node) error {
		if n.Type != html.ElementNode {
			return nil
		}

		switch n.Data {
		case "img":
			add(attrVal(n, "src"))
		case "a":
			if href := attrVal(n, "href"); looksLikeImage(href) {
				add(href)
			}
		}

		return nil
	})

	return urls
}
