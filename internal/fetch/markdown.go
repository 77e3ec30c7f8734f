package fetch

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	readability "codeberg.org/readeck/go-readability/v2"
	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/nao1215/mdcrawl/internal/textnorm"
)

// minArticleWords is the word count below which the readability article is
// considered a bad extraction and the whole document is converted instead.
const minArticleWords = 50

// renderedHTMLToText converts a full HTML document to normalized text.
func renderedHTMLToText(rawHTML string) (string, error) {
	md, err := htmltomarkdown.ConvertString(rawHTML)
	if err != nil {
		return "", fmt.Errorf("convert html to markdown: %w", err)
	}
	return textnorm.Normalize(md), nil
}

// articleToText extracts the main article from body with go-readability and
// converts it to normalized text. Pages where readability finds too little
// (index pages, link hubs) fall back to converting the whole document.
func articleToText(body []byte, pageURL string) (string, error) {
	parsedURL, _ := url.Parse(pageURL) //nolint:errcheck // readability accepts a nil base URL

	article, err := readability.FromReader(bytes.NewReader(body), parsedURL)
	if err == nil && article.Node != nil {
		md, mdErr := htmltomarkdown.ConvertNode(article.Node)
		if mdErr == nil {
			text := textnorm.Normalize(string(md))
			if len(strings.Fields(text)) >= minArticleWords {
				return text, nil
			}
		}
	}

	return renderedHTMLToText(string(body))
}
