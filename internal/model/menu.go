// Copyright (c) 2026 Stanza CMS Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Default menu locations
const (
	MenuLocationHeader = "header"
	MenuLocationFooter = "footer"
)

// Menu target values
const (
	TargetSelf  = "_self"
	TargetBlank = "_blank"
)

// ValidTargets contains all valid link target values.
var ValidTargets = []string{TargetSelf, TargetBlank}

// MenuItem represents an item in a navigation menu. Items self-reference
// through ParentID, scoped to a single MenuLocation. An item resolves its
// href either from the literal URL or by dereferencing PageID to that
// page's slug at read time.
type MenuItem struct {
	ID           string         `json:"id"`
	MenuLocation string         `json:"menu_location"`
	Label        string         `json:"label"`
	URL          sql.NullString `json:"url,omitempty"`
	PageID       sql.NullString `json:"page_id,omitempty"`
	ParentID     sql.NullString `json:"parent_id,omitempty"`
	DisplayOrder int64          `json:"display_order"`
	Target       string         `json:"target"`
	IsActive     bool           `json:"is_active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// MenuItemWithChildren represents a menu item with its children for tree display.
type MenuItemWithChildren struct {
	MenuItem
	Children []MenuItemWithChildren
}

// IsValidTarget checks if a target value is valid.
func IsValidTarget(target string) bool {
	for _, t := range ValidTargets {
		if t == target {
			return true
		}
	}
	return false
}

// BuildMenuTree assembles a parent/child tree from a flat item list.
// Callers pass items already filtered to one menu location.
func BuildMenuTree(items []MenuItem) []MenuItemWithChildren {
	childrenOf := make(map[string][]MenuItem)
	var roots []MenuItem
	for _, it := range items {
		if it.ParentID.Valid {
			childrenOf[it.ParentID.String] = append(childrenOf[it.ParentID.String], it)
		} else {
			roots = append(roots, it)
		}
	}

	var build func(list []MenuItem) []MenuItemWithChildren
	build = func(list []MenuItem) []MenuItemWithChildren {
		out := make([]MenuItemWithChildren, 0, len(list))
		for _, it := range list {
			out = append(out, MenuItemWithChildren{
				MenuItem: it,
				Children: build(childrenOf[it.ID]),
			})
		}
		return out
	}

	return build(roots)
}
