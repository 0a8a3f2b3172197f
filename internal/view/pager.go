package view

import (
	"net/url"
	"strconv"
)

type Pager struct {
	Page     int
	Pages    int
	PrevPage string
	NextPage string
}

// NewPager links neighbouring pages of path, keeping the other query
// parameters in q.
func NewPager(path string, q url.Values, page, pageSize, total int) Pager {
	if page < 1 {
		page = 1
	}
	pages := 1
	if pageSize > 0 && total > 0 {
		pages = (total + pageSize - 1) / pageSize
	}

	p := Pager{Page: page, Pages: pages}
	link := func(n int) string {
		v := url.Values{}
		for k, vals := range q {
			v[k] = append([]string(nil), vals...)
		}
		v.Set("page", strconv.Itoa(n))
		return path + "?" + v.Encode()
	}
	if page > 1 {
		p.PrevPage = link(page - 1)
	}
	if page < pages {
		p.NextPage = link(page + 1)
	}
	return p
}

// PageParam reads ?page=, defaulting to 1.
func PageParam(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}
