// Package extract pulls structured job data out of careers-portal HTML.
// Parsing is permissive: malformed markup degrades to missing fields, it
// never aborts extraction of the remaining ones.
package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jobharvest/avharvest/internal/harvest"
)

var trailingID = regexp.MustCompile(`/(\d+)$`)

// jsonLD is the subset of the schema.org JobPosting block we care about.
type jsonLD struct {
	DatePosted string `json:"datePosted"`
}

// Listings extracts job stubs from a listing page. Result rows are
// article blocks classed "article--result"; each contributes the first
// anchor under its h3 heading. Rows without that anchor are skipped.
func Listings(html []byte) ([]harvest.JobStub, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse listing page: %w", err)
	}

	var stubs []harvest.JobStub
	doc.Find(`article[class*="article--result"]`).Each(func(_ int, article *goquery.Selection) {
		link := article.Find("h3 a").First()
		if link.Length() == 0 {
			return
		}
		href, _ := link.Attr("href")
		stubs = append(stubs, harvest.JobStub{
			JobID: JobIDFromURL(href),
			Title: strings.TrimSpace(link.Text()),
			URL:   href,
		})
	})
	return stubs, nil
}

// JobIDFromURL returns the trailing numeric path segment of a detail URL,
// or "" when there is none.
func JobIDFromURL(url string) string {
	m := trailingID.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	return m[1]
}

// titleStrategy is one step in the ordered title fallback chain.
type titleStrategy func(*goquery.Document) string

// titleStrategies are evaluated in sequence, short-circuiting on the first
// non-empty result. Portal themes vary in which heading carries the title.
var titleStrategies = []titleStrategy{
	func(doc *goquery.Document) string {
		content, _ := doc.Find(`meta[property="og:title"]`).First().Attr("content")
		return strings.TrimSpace(content)
	},
	selectorText(`div[class*="banner--main"] h2[class*="__title"]`),
	selectorText(`h2[class*="banner__text__title"]`),
	selectorText(`section[class*="section--jobdetail"] h2[class*="section__header__text__title"]`),
	selectorText(`h1`),
}

func selectorText(selector string) titleStrategy {
	return func(doc *goquery.Document) string {
		return strings.TrimSpace(doc.Find(selector).First().Text())
	}
}

// JobDetail extracts title, description, and field metadata from a job
// detail page.
func JobDetail(html []byte) (harvest.JobDetail, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return harvest.JobDetail{}, fmt.Errorf("parse detail page: %w", err)
	}

	detail := harvest.JobDetail{Metadata: harvest.NewMetadata()}

	for _, strategy := range titleStrategies {
		if title := strategy(doc); title != "" {
			detail.Title = title
			break
		}
	}

	var htmlParts, textParts []string
	doc.Find(`[class*="article--details"]`).Each(func(_ int, article *goquery.Selection) {
		if isGeneralInformation(article) {
			collectFields(article, detail.Metadata)
			return
		}
		if inner, err := article.Html(); err == nil {
			htmlParts = append(htmlParts, inner)
		}
		textParts = append(textParts, article.Text())
	})
	detail.DescriptionHTML = strings.Join(htmlParts, "\n\n")
	detail.DescriptionText = harvest.CollapseWhitespace(strings.Join(textParts, " "))

	// Some portals only publish the posting date in the JSON-LD block.
	if _, ok := detail.Metadata.Get("date_published"); !ok {
		if date := datePostedFromJSONLD(doc); date != "" {
			detail.Metadata.Set("date_published", date)
		}
	}

	return detail, nil
}

// isGeneralInformation reports whether the details block is the field list
// headed "General information" rather than free-form description copy.
func isGeneralInformation(article *goquery.Selection) bool {
	heading := harvest.CollapseWhitespace(article.Find("h3").First().Text())
	return strings.Contains(strings.ToLower(heading), "general information")
}

func collectFields(article *goquery.Selection, meta *harvest.Metadata) {
	article.Find(`div[class*="article__content__view__field"]`).Each(func(_ int, field *goquery.Selection) {
		label := field.Find(`div[class*="__field__label"]`).First()
		value := field.Find(`div[class*="__field__value"]`).First()
		if label.Length() == 0 || value.Length() == 0 {
			return
		}
		key := harvest.NormalizeKey(label.Text())
		if key == "" {
			return
		}
		meta.Set(key, harvest.CollapseWhitespace(value.Text()))
	})
}

func datePostedFromJSONLD(doc *goquery.Document) string {
	var date string
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, script *goquery.Selection) bool {
		var block jsonLD
		if err := json.Unmarshal([]byte(script.Text()), &block); err != nil {
			return true
		}
		if block.DatePosted != "" {
			date = block.DatePosted
			return false
		}
		return true
	})
	return date
}
