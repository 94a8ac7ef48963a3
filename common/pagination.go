package common

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const DefaultPageSize = 6

// Page holds page-number pagination parameters parsed from the query string.
// The page size can be overridden per request with ?limit=.
type Page struct {
	Number int
	Size   int
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

func PageFromQuery(c *gin.Context) Page {
	page := Page{Number: 1, Size: DefaultPageSize}

	if n, err := strconv.Atoi(c.Query("page")); err == nil && n > 0 {
		page.Number = n
	}
	if n, err := strconv.Atoi(c.Query("limit")); err == nil && n > 0 {
		page.Size = n
	}
	return page
}

// Paginated builds the list envelope with absolute next/previous links.
func Paginated(c *gin.Context, page Page, count int64, results interface{}) gin.H {
	var next, previous interface{}

	if int64(page.Number*page.Size) < count {
		next = pageURL(c, page.Number+1)
	}
	if page.Number > 1 {
		previous = pageURL(c, page.Number-1)
	}

	return gin.H{
		"count":    count,
		"next":     next,
		"previous": previous,
		"results":  results,
	}
}

func pageURL(c *gin.Context, number int) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}

	u := *c.Request.URL
	q := u.Query()
	q.Set("page", strconv.Itoa(number))
	u.RawQuery = q.Encode()

	return scheme + "://" + c.Request.Host + u.RequestURI()
}
