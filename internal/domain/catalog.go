package domain

import "sort"

// IssueType is one entry of the static classification catalog.
type IssueType struct {
	ID       string   `yaml:"id" json:"id" validate:"required"`
	Name     string   `yaml:"name" json:"name" validate:"required"`
	SubTypes []string `yaml:"sub_types" json:"sub_types"`
}

// TypeCatalog resolves type and sub type identifiers.
type TypeCatalog struct {
	types map[string]IssueType
}

// NewTypeCatalog indexes the given types by ID.
func NewTypeCatalog(types []IssueType) *TypeCatalog {
	idx := make(map[string]IssueType, len(types))
	for _, t := range types {
		idx[t.ID] = t
	}
	return &TypeCatalog{types: idx}
}

// Resolve reports whether the pair is known. An empty sub type is accepted
// when the type declares none.
func (c *TypeCatalog) Resolve(typeID, subTypeID string) bool {
	if c == nil {
		return false
	}
	t, ok := c.types[typeID]
	if !ok {
		return false
	}
	if len(t.SubTypes) == 0 {
		return subTypeID == ""
	}
	for _, sub := range t.SubTypes {
		if sub == subTypeID {
			return true
		}
	}
	return false
}

// Types returns a copy of the catalog entries.
func (c *TypeCatalog) Types() []IssueType {
	if c == nil {
		return nil
	}
	out := make([]IssueType, 0, len(c.types))
	for _, t := range c.types {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
