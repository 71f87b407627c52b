package artifact

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// ConfirmationPrefix starts the confirmation code printed on every receipt.
const ConfirmationPrefix = "RSB-ROBO-ORDER-"

const receiptStyle = `body { font-family: Helvetica, Arial, sans-serif; margin: 2em; }
.badge { font-weight: bold; }`

var (
	receiptPolicyOnce sync.Once
	receiptPolicy     *bluemonday.Policy
)

func receiptSanitizer() *bluemonday.Policy {
	receiptPolicyOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.AllowAttrs("id", "class").Globally()
		receiptPolicy = policy
	})
	return receiptPolicy
}

// ReceiptDocument turns the receipt markup scraped from the page into a standalone
// HTML document ready for printing. Scripts, handlers and styles from the page are dropped.
func ReceiptDocument(fragment string) (string, *html.Node, error) {
	cleaned := strings.TrimSpace(receiptSanitizer().Sanitize(fragment))
	if cleaned == "" {
		return "", nil, errors.New("receipt markup is empty")
	}

	doc, err := html.Parse(strings.NewReader(
		"<!DOCTYPE html><html><head><meta charset=\"utf-8\"><title>Receipt</title></head><body>" +
			cleaned + "</body></html>"))
	if err != nil {
		return "", nil, fmt.Errorf("failed to parse receipt: %w", err)
	}

	head := findElement(doc, "head")
	if head != nil {
		style := &html.Node{Type: html.ElementNode, Data: "style"}
		style.AppendChild(&html.Node{Type: html.TextNode, Data: receiptStyle})
		head.AppendChild(style)
	}

	var b strings.Builder
	if err := html.Render(&b, doc); err != nil {
		return "", nil, fmt.Errorf("failed to render receipt: %w", err)
	}
	return b.String(), doc, nil
}

// ConfirmationCode returns the first text on the receipt carrying the confirmation
// prefix, or "" when there is none.
func ConfirmationCode(doc *html.Node) string {
	if doc == nil {
		return ""
	}
	if doc.Type == html.TextNode {
		if text := strings.TrimSpace(doc.Data); strings.HasPrefix(text, ConfirmationPrefix) {
			return text
		}
	}
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if code := ConfirmationCode(c); code != "" {
			return code
		}
	}
	return ""
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}
