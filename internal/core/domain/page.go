package domain

import (
	"math"
	"slices"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	// MaxPageNumber keeps Number*Size within an int32 row offset.
	MaxPageNumber = math.MaxInt32 / MaxPageSize
)

type PageRequest struct {
	Number int
	Size   int
	Sort   string
	Desc   bool
}

// NewPageRequest clamps number and size into their valid ranges. Sort is
// kept only when it is one of allowed; otherwise the first allowed field
// is used.
func NewPageRequest(number, size int, sort string, desc bool, allowed []string) PageRequest {
	if number < 0 {
		number = 0
	}
	if number > MaxPageNumber {
		number = MaxPageNumber
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	if !slices.Contains(allowed, sort) {
		sort = ""
		if len(allowed) > 0 {
			sort = allowed[0]
		}
	}
	return PageRequest{Number: number, Size: size, Sort: sort, Desc: desc}
}

func (p PageRequest) Offset() int {
	return p.Number * p.Size
}

type Page[T any] struct {
	Content       []T
	Number        int
	Size          int
	TotalElements int64
}

func (p Page[T]) TotalPages() int {
	if p.Size <= 0 {
		return 0
	}
	return int((p.TotalElements + int64(p.Size) - 1) / int64(p.Size))
}

// MapPage converts the content of a page while keeping its position.
func MapPage[T, U any](p Page[T], fn func(T) U) Page[U] {
	out := Page[U]{
		Content:       make([]U, 0, len(p.Content)),
		Number:        p.Number,
		Size:          p.Size,
		TotalElements: p.TotalElements,
	}
	for _, v := range p.Content {
		out.Content = append(out.Content, fn(v))
	}
	return out
}
