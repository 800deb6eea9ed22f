package model

import (
	"math"
	"strings"
)

// Category is a staffing category (e.g. "general practice") shown in CRM views and
// picked during onboarding.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Active      bool   `json:"active"`
}

// Service is a bookable service offered under a category.
type Service struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	CategoryID string `json:"categoryId"`
	Price      int64  `json:"price,omitempty"`
	Active     bool   `json:"active"`
}

func (c Category) Matches(q string) bool {
	return containsFold(c.Name, q) || containsFold(c.Description, q)
}

func (s Service) Matches(q string) bool {
	return containsFold(s.Name, q) || strings.EqualFold(s.CategoryID, q)
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// Page is one slice of an already-fetched list.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PerPage    int `json:"perPage"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// Filter keeps the items matching q; an empty query keeps everything.
func Filter[T interface{ Matches(string) bool }](items []T, q string) []T {
	q = strings.TrimSpace(q)
	if q == "" {
		return items
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		if it.Matches(q) {
			out = append(out, it)
		}
	}
	return out
}

// Paginate returns the 1-based page of items. Out-of-range pages yield an empty
// Items slice with the totals still filled in.
// Offset is the index of the first item on page. It saturates at math.MaxInt rather
// than wrapping for absurd page numbers.
func Offset(page, perPage int) int {
	if page <= 1 || perPage <= 0 {
		return 0
	}
	if page-1 > math.MaxInt/perPage {
		return math.MaxInt
	}
	return (page - 1) * perPage
}

func Paginate[T any](items []T, page, perPage int) Page[T] {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	if page <= 0 {
		page = 1
	}
	total := len(items)
	pages := (total + perPage - 1) / perPage
	start := Offset(page, perPage)
	out := Page[T]{Page: page, PerPage: perPage, Total: total, TotalPages: pages, Items: []T{}}
	if start >= total {
		return out
	}
	end := start + perPage
	if end > total {
		end = total
	}
	out.Items = items[start:end]
	return out
}
