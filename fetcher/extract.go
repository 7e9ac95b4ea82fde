package fetcher

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// strippedTags matches the elements whose content is never visible text.
// Compiled once and reused for every document.
var strippedTags = cascadia.MustCompile("script, style, noscript")

// extractVisibleText parses raw HTML, removes script/style/noscript elements,
// and returns the lowercased visible text of the document body.
func extractVisibleText(body []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", err
	}

	doc.FindMatcher(strippedTags).Remove()

	sel := doc.Find("body")
	var text string
	if sel.Length() > 0 {
		text = sel.Text()
	} else {
		// Fragment without a <body> wrapper; take whatever text remains.
		text = doc.Text()
	}
	return strings.ToLower(strings.TrimSpace(text)), nil
}

// extractTitle finds the first <title> element in raw HTML bytes using the
// streaming tokenizer, avoiding a second full document parse.
func extractTitle(body []byte) string {
	tokenizer := html.NewTokenizer(bytes.NewReader(body))
	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return ""
		case html.StartTagToken:
			tn, _ := tokenizer.TagName()
			if string(tn) == "title" {
				if tokenizer.Next() == html.TextToken {
					return strings.TrimSpace(string(tokenizer.Text()))
				}
				return ""
			}
		}
	}
}
