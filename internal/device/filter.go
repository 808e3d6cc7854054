package device

import (
	"strconv"
	"strings"
)

// Filter is a parsed search expression.
//
// A query of the form "field:term" restricts matching to that field;
// anything else matches the term against all searchable fields. Matching
// is case-insensitive substring containment, except rack and slot which
// compare numerically.
type Filter struct {
	Field string
	Term  string
}

// searchableFields are the fields a scoped filter may target.
var searchableFields = map[string]bool{
	"id":          true,
	"name":        true,
	"brand":       true,
	"category":    true,
	"rack":        true,
	"slot":        true,
	"ip":          true,
	"application": true,
	"url":         true,
	"description": true,
	"serial":      true,
}

// ParseFilter parses a raw search query into a Filter.
// An unrecognised field prefix is treated as part of the term.
func ParseFilter(query string) Filter {
	query = strings.TrimSpace(query)
	if field, term, ok := strings.Cut(query, ":"); ok {
		field = strings.ToLower(strings.TrimSpace(field))
		if searchableFields[field] {
			return Filter{Field: field, Term: strings.TrimSpace(term)}
		}
	}
	return Filter{Term: query}
}

// Empty reports whether the filter matches everything.
func (f Filter) Empty() bool {
	return f.Term == ""
}

// Matches reports whether the device satisfies the filter.
func (f Filter) Matches(d *Device) bool {
	if f.Empty() {
		return true
	}
	if f.Field != "" {
		return matchField(d, f.Field, f.Term)
	}
	for field := range searchableFields {
		if matchField(d, field, f.Term) {
			return true
		}
	}
	return false
}

func matchField(d *Device, field, term string) bool {
	switch field {
	case "rack":
		n, err := strconv.Atoi(term)
		return err == nil && d.Rack != nil && *d.Rack == n
	case "slot":
		n, err := strconv.Atoi(term)
		return err == nil && d.Slot != nil && *d.Slot == n
	}

	var value string
	switch field {
	case "id":
		value = d.ID
	case "name":
		value = d.Name
	case "brand":
		value = d.Brand
	case "category":
		value = d.Category
	case "ip":
		value = d.IP
	case "application":
		value = d.Application
	case "url":
		value = d.URL
	case "description":
		value = d.Description
	case "serial":
		value = d.Serial
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(term))
}
