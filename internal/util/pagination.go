package util

import (
	"net/url"
	"strconv"
)

// PerPage is the fixed product page size.
const PerPage = 15

func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func Offset(page, size int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * size
}

type PageMeta struct {
	CurrentPage int   `json:"current_page"`
	From        *int  `json:"from"`
	To          *int  `json:"to"`
	LastPage    int   `json:"last_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
}

type PageLinks struct {
	First string  `json:"first"`
	Last  string  `json:"last"`
	Prev  *string `json:"prev"`
	Next  *string `json:"next"`
}

// Paginate builds list metadata and navigation links. extra carries query
// parameters (such as the category filter) that must survive into the links.
func Paginate(path string, extra url.Values, page int, total int64, count int) (PageMeta, PageLinks) {
	if page < 1 {
		page = 1
	}
	lastPage := int((total + PerPage - 1) / PerPage)
	if lastPage < 1 {
		lastPage = 1
	}

	meta := PageMeta{
		CurrentPage: page,
		LastPage:    lastPage,
		PerPage:     PerPage,
		Total:       total,
	}
	if count > 0 {
		from := Offset(page, PerPage) + 1
		to := from + count - 1
		meta.From = &from
		meta.To = &to
	}

	links := PageLinks{
		First: pageURL(path, extra, 1),
		Last:  pageURL(path, extra, lastPage),
	}
	if page > 1 {
		prev := pageURL(path, extra, page-1)
		links.Prev = &prev
	}
	if page < lastPage {
		next := pageURL(path, extra, page+1)
		links.Next = &next
	}

	return meta, links
}

func pageURL(path string, extra url.Values, page int) string {
	q := url.Values{}
	for k, vs := range extra {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	q.Set("page", strconv.Itoa(page))
	return path + "?" + q.Encode()
}
