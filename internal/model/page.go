// Copyright (c) 2026 Stanza CMS Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Page represents a site page. Pages form a tree through ParentID;
// the parent graph must stay acyclic, which the transfer layer
// enforces before any write.
type Page struct {
	ID              string         `json:"id"`
	Slug            string         `json:"slug"`
	Title           string         `json:"title"`
	ParentID        sql.NullString `json:"parent_id,omitempty"`
	DisplayOrder    int64          `json:"display_order"`
	IsActive        bool           `json:"is_active"`
	ShowInNav       bool           `json:"show_in_nav"`
	Content         string         `json:"content"` // JSON object, stored as text
	Description     string         `json:"description,omitempty"`
	MetaTitle       string         `json:"meta_title,omitempty"`
	MetaDescription string         `json:"meta_description,omitempty"`
	MetaKeywords    string         `json:"meta_keywords,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// PageWithChildren represents a page with its children for tree display.
type PageWithChildren struct {
	Page
	Children []PageWithChildren
}

// BuildPageTree assembles a parent/child tree from a flat page list.
// Pages are kept as flat records everywhere else; the tree is a derived
// read view built once per call, never stored.
func BuildPageTree(pages []Page) []PageWithChildren {
	childrenOf := make(map[string][]Page)
	var roots []Page
	for _, p := range pages {
		if p.ParentID.Valid {
			childrenOf[p.ParentID.String] = append(childrenOf[p.ParentID.String], p)
		} else {
			roots = append(roots, p)
		}
	}

	var build func(list []Page) []PageWithChildren
	build = func(list []Page) []PageWithChildren {
		out := make([]PageWithChildren, 0, len(list))
		for _, p := range list {
			out = append(out, PageWithChildren{
				Page:     p,
				Children: build(childrenOf[p.ID]),
			})
		}
		return out
	}

	return build(roots)
}
