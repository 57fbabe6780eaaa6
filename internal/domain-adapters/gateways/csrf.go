package gateways

import (
	"errors"
	"fmt"
	"io"

	"golang.org/x/net/html"
)

// csrfFieldName is the hidden form field carrying the anti-forgery token
const csrfFieldName = "csrfmiddlewaretoken"

// ExtractCSRFToken returns the value of the first csrfmiddlewaretoken input
func ExtractCSRFToken(r io.Reader) (string, error) {
	z := html.NewTokenizer(r)
	for {
		switch z.Next() {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return "", fmt.Errorf("csrf token not found in login page")
			}
			return "", fmt.Errorf("failed to parse login page: %w", z.Err())
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if tok.Data != "input" {
				continue
			}

			var name, value string
			hasValue := false
			for _, attr := range tok.Attr {
				switch attr.Key {
				case "name":
					name = attr.Val
				case "value":
					value = attr.Val
					hasValue = true
				}
			}
			if name == csrfFieldName && hasValue && value != "" {
				return value, nil
			}
		}
	}
}
