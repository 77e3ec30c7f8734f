package crawler

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Parser extracts anchor links from an HTML document.
// Nothing but <a href> is inspected.
type Parser struct {
	// baseURL is the URL of the page being parsed, used for resolving relative URLs.
	baseURL *url.URL
}

// ParseResult holds the links found on a page.
type ParseResult struct {
	// Links are the absolute URLs in document order, fragments removed.
	// Duplicates are kept; the visited set takes care of them.
	Links []string

	// Invalid holds the hrefs that failed to resolve.
	Invalid []*LinkResolutionError
}

// NewParser creates a new HTML parser with the given base URL.
// The base URL is used to resolve relative links.
func NewParser(baseURL string) (*Parser, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	return &Parser{baseURL: u}, nil
}

// Parse walks the document and collects every anchor href.
func (p *Parser) Parse(content io.Reader) (*ParseResult, error) {
	doc, err := html.Parse(content)
	if err != nil {
		return nil, err
	}

	result := &ParseResult{
		Links: make([]string, 0),
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if href, ok := getAttr(n, "href"); ok {
				p.addLink(href, result)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return result, nil
}

// addLink resolves href and appends it to result.
func (p *Parser) addLink(href string, result *ParseResult) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return
	}

	lower := strings.ToLower(href)
	for _, scheme := range []string{"javascript:", "mailto:", "tel:", "data:"} {
		if strings.HasPrefix(lower, scheme) {
			return
		}
	}

	u, err := url.Parse(href)
	if err != nil {
		result.Invalid = append(result.Invalid, &LinkResolutionError{
			Base: p.baseURL.String(),
			Href: href,
			Err:  err,
		})
		return
	}

	resolved := p.baseURL.ResolveReference(u)
	resolved.Fragment = ""
	resolved.RawFragment = ""
	result.Links = append(result.Links, resolved.String())
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) (string, bool) {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}
