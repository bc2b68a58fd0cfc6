package feed

import (
	"encoding/xml"
	"fmt"
	"time"

	"github.com/umputun/feedadmin/pkg/domain"
)

type opmlOutline struct {
	XMLName xml.Name `xml:"outline"`
	Text    string   `xml:"text,attr"`
	Title   string   `xml:"title,attr"`
	Type    string   `xml:"type,attr"`
	XMLURL  string   `xml:"xmlUrl,attr"`
}

type opmlHead struct {
	XMLName     xml.Name `xml:"head"`
	Title       string   `xml:"title"`
	DateCreated string   `xml:"dateCreated"`
}

type opmlBody struct {
	XMLName  xml.Name      `xml:"body"`
	Outlines []opmlOutline `xml:"outline"`
}

type opmlDoc struct {
	XMLName xml.Name `xml:"opml"`
	Version string   `xml:"version,attr"`
	Head    opmlHead `xml:"head"`
	Body    opmlBody `xml:"body"`
}

// ExportOPML creates an OPML 2.0 subscription list of feeds, feeds without url are skipped
func ExportOPML(feeds []domain.Feed, created time.Time) ([]byte, error) {
	outlines := make([]opmlOutline, 0, len(feeds))
	for _, f := range feeds {
		if f.URL == "" {
			continue
		}
		name := f.Name
		if name == "" {
			name = f.URL
		}
		outlines = append(outlines, opmlOutline{Text: name, Title: name, Type: "rss", XMLURL: f.URL})
	}

	doc := opmlDoc{
		Version: "2.0",
		Head:    opmlHead{Title: "Job Feeds", DateCreated: created.Format(time.RFC1123Z)},
		Body:    opmlBody{Outlines: outlines},
	}

	output, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal OPML: %w", err)
	}
	return append([]byte(xml.Header), output...), nil
}
