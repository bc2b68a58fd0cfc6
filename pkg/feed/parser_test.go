package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jobsRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
	<channel>
		<title>Remote Jobs</title>
		<link>https://jobicy.com</link>
		<description><![CDATA[<p>Latest <b>remote</b> jobs</p>]]></description>
		<item>
			<title>Senior Go Engineer</title>
			<link>https://jobicy.com/jobs/1</link>
			<description><![CDATA[<p>Build <a href="https://x">services</a> &amp; tools</p>]]></description>
			<pubDate>Mon, 02 Jan 2006 15:04:05 -0700</pubDate>
		</item>
		<item>
			<title>Data Analyst</title>
			<link>https://jobicy.com/jobs/2</link>
			<description>Numbers</description>
		</item>
		<item>
			<title>Designer</title>
			<link>https://jobicy.com/jobs/3</link>
		</item>
	</channel>
</rss>`

func TestParser_Preview(t *testing.T) {
	t.Run("rss feed", func(t *testing.T) {
		var gotUA string
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUA = r.Header.Get("User-Agent")
			w.Header().Set("Content-Type", "application/rss+xml")
			_, _ = w.Write([]byte(jobsRSS))
		}))
		defer ts.Close()

		p := NewParser(5*time.Second, "FeedAdmin/1.0", 2)
		preview, err := p.Preview(context.Background(), ts.URL)
		require.NoError(t, err)

		assert.Equal(t, "FeedAdmin/1.0", gotUA)
		assert.Equal(t, "Remote Jobs", preview.Title)
		assert.Equal(t, "Latest remote jobs", preview.Description)
		assert.Equal(t, 3, preview.TotalItems)
		require.Len(t, preview.Items, 2)

		assert.Equal(t, "Senior Go Engineer", preview.Items[0].Title)
		assert.Equal(t, "https://jobicy.com/jobs/1", preview.Items[0].Link)
		assert.Equal(t, "Build services & tools", preview.Items[0].Summary)
		assert.False(t, preview.Items[0].Published.IsZero())

		assert.Equal(t, "Data Analyst", preview.Items[1].Title)
		assert.True(t, preview.Items[1].Published.IsZero())
	})

	t.Run("atom feed", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/atom+xml")
			_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
	<title>Atom Jobs</title>
	<updated>2006-01-02T15:04:05Z</updated>
	<entry>
		<title>Entry 1</title>
		<link href="https://example.com/entry1"/>
		<id>entry1</id>
		<updated>2006-01-02T15:04:05Z</updated>
		<summary>Entry 1 summary</summary>
	</entry>
</feed>`))
		}))
		defer ts.Close()

		preview, err := NewParser(5*time.Second, "", 0).Preview(context.Background(), ts.URL)
		require.NoError(t, err)
		assert.Equal(t, "Atom Jobs", preview.Title)
		require.Len(t, preview.Items, 1)
		assert.Equal(t, "Entry 1 summary", preview.Items[0].Summary)
		assert.False(t, preview.Items[0].Published.IsZero())
	})

	t.Run("long summary is shortened", func(t *testing.T) {
		long := strings.Repeat("word ", 100)
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, `<rss version="2.0"><channel><title>T</title><item><title>I</title><description>%s</description></item></channel></rss>`, long)
		}))
		defer ts.Close()

		preview, err := NewParser(5*time.Second, "", 5).Preview(context.Background(), ts.URL)
		require.NoError(t, err)
		require.Len(t, preview.Items, 1)
		assert.True(t, strings.HasSuffix(preview.Items[0].Summary, "…"))
		assert.LessOrEqual(t, len([]rune(preview.Items[0].Summary)), maxSummaryLen+1)
	})

	t.Run("server error", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer ts.Close()

		preview, err := NewParser(5*time.Second, "", 5).Preview(context.Background(), ts.URL)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected status code: 500")
		assert.Nil(t, preview)
	})

	t.Run("not a feed", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("not xml content"))
		}))
		defer ts.Close()

		_, err := NewParser(5*time.Second, "", 5).Preview(context.Background(), ts.URL)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse feed")
	})

	t.Run("invalid url", func(t *testing.T) {
		_, err := NewParser(5*time.Second, "", 5).Preview(context.Background(), "not-a-valid-url")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid feed URL")
	})

	t.Run("timeout", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
			_, _ = w.Write([]byte(jobsRSS))
		}))
		defer ts.Close()

		_, err := NewParser(10*time.Millisecond, "", 5).Preview(context.Background(), ts.URL)
		require.Error(t, err)
	})
}
