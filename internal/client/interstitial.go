package client

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"
)

// looksLikeHTML spots web pages served where a workbook was expected:
// sign-in walls and the large-file download confirmation page.
func looksLikeHTML(contentType string, body []byte) bool {
	if strings.Contains(strings.ToLower(contentType), "text/html") {
		return true
	}
	head := bytes.ToLower(bytes.TrimSpace(body[:min(len(body), 512)]))
	return bytes.HasPrefix(head, []byte("<!doctype html")) || bytes.HasPrefix(head, []byte("<html"))
}

// extractDownloadLink finds the confirmation link on a download warning page.
// It returns "" when the page offers nothing to follow.
func extractDownloadLink(pageURL string, body []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse page URL: %w", err)
	}

	if form := doc.Find("form#download-form").First(); form.Length() > 0 {
		action, ok := form.Attr("action")
		if ok && strings.TrimSpace(action) != "" {
			target, err := base.Parse(strings.TrimSpace(action))
			if err != nil {
				return "", fmt.Errorf("failed to parse form action: %w", err)
			}

			query := target.Query()
			form.Find("input[type=hidden]").Each(func(i int, s *goquery.Selection) {
				name, _ := s.Attr("name")
				value, _ := s.Attr("value")
				if name != "" {
					query.Set(name, value)
				}
			})
			target.RawQuery = query.Encode()

			log.Debugf("Found download form pointing to %s", target)
			return target.String(), nil
		}
	}

	if href, ok := doc.Find("a#uc-download-link").First().Attr("href"); ok && strings.TrimSpace(href) != "" {
		target, err := base.Parse(strings.TrimSpace(href))
		if err != nil {
			return "", fmt.Errorf("failed to parse download link: %w", err)
		}
		log.Debugf("Found download link pointing to %s", target)
		return target.String(), nil
	}

	return "", nil
}
