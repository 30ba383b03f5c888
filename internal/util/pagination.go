package util

import (
	"net/url"
	"strconv"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 10
)

func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

// Normalize clamps page to >= 1 and resets an out of range size to the default.
func Normalize(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > MaxPageSize {
		size = DefaultPageSize
	}
	return page, size
}

func Calculate(page, size int) (offset, limit int) {
	page, size = Normalize(page, size)
	return (page - 1) * size, size
}

type PagedResponse[T any] struct {
	Data         []T     `json:"data"`
	PageNumber   int     `json:"pageNumber"`
	PageSize     int     `json:"pageSize"`
	TotalPages   int     `json:"totalPages"`
	TotalRecords int64   `json:"totalRecords"`
	NextPage     *string `json:"nextPage"`
	PreviousPage *string `json:"previousPage"`
	FirstPage    *string `json:"firstPage"`
	LastPage     *string `json:"lastPage"`
}

// NewPagedResponse builds page links from endpoint, keeping any other query
// parameters (filters) and overriding pageNumber and pageSize.
func NewPagedResponse[T any](data []T, page, size int, total int64, endpoint string, query url.Values) PagedResponse[T] {
	if data == nil {
		data = []T{}
	}
	totalPages := int((total + int64(size) - 1) / int64(size))

	link := func(p int) *string {
		q := url.Values{}
		for k, v := range query {
			q[k] = v
		}
		q.Set("pageNumber", strconv.Itoa(p))
		q.Set("pageSize", strconv.Itoa(size))
		s := endpoint + "?" + q.Encode()
		return &s
	}

	resp := PagedResponse[T]{
		Data:         data,
		PageNumber:   page,
		PageSize:     size,
		TotalPages:   totalPages,
		TotalRecords: total,
		FirstPage:    link(1),
		LastPage:     link(max(totalPages, 1)),
	}
	if page < totalPages {
		resp.NextPage = link(page + 1)
	}
	if page-1 >= 1 && page <= totalPages {
		resp.PreviousPage = link(page - 1)
	}
	return resp
}
