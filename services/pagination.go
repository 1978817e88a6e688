package services

import "math"

// Page selects a window of a list, 1-based.
type Page struct {
	Number int `json:"page"`
	Size   int `json:"page_size"`
}

// PageLimits bounds every list endpoint so responses never grow with the table.
type PageLimits struct {
	DefaultSize int
	MaxSize     int
}

func (l PageLimits) Normalize(p Page) Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = l.DefaultSize
	}
	if l.MaxSize > 0 && p.Size > l.MaxSize {
		p.Size = l.MaxSize
	}
	if p.Size < 1 {
		p.Size = 20
	}
	// keeps Offset()+Size inside int32 so store limits never wrap
	p.Number = min(p.Number, math.MaxInt32/p.Size-1)
	return p
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// window cuts the page out of an already sorted slice.
func window[T any](items []T, p Page) []T {
	start := p.Offset()
	if start < 0 || start >= len(items) {
		return []T{}
	}
	end := start + p.Size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
