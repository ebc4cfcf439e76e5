// Copyright (c) 2026 Stanza CMS Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the domain types shared across the store,
// schema and transfer layers.
package model

import "time"

// EntityType identifies a managed content type. The set is closed; each
// type maps to exactly one entity schema in the registry.
type EntityType string

const (
	EntityTypePage        EntityType = "page"
	EntityTypeBlogPost    EntityType = "blog_post"
	EntityTypeService     EntityType = "service"
	EntityTypeProject     EntityType = "project"
	EntityTypeTeamMember  EntityType = "team_member"
	EntityTypeTestimonial EntityType = "testimonial"
	EntityTypeSiteSetting EntityType = "site_setting"
	EntityTypeCategory    EntityType = "category"
	EntityTypeMenuItem    EntityType = "menu_item"
	EntityTypePageSection EntityType = "page_section"
)

// AllEntityTypes lists every known entity type.
var AllEntityTypes = []EntityType{
	EntityTypePage,
	EntityTypeBlogPost,
	EntityTypeService,
	EntityTypeProject,
	EntityTypeTeamMember,
	EntityTypeTestimonial,
	EntityTypeSiteSetting,
	EntityTypeCategory,
	EntityTypeMenuItem,
	EntityTypePageSection,
}

// IsValidEntityType checks whether t names a known entity type.
func IsValidEntityType(t EntityType) bool {
	for _, known := range AllEntityTypes {
		if known == t {
			return true
		}
	}
	return false
}

// Entity is a generic content row for the single-collection entity
// types (services, projects, testimonials, ...). Data carries the full
// record as a JSON object; the store does not interpret it beyond the
// id and type columns.
type Entity struct {
	ID         string     `json:"id"`
	EntityType EntityType `json:"entity_type"`
	Data       string     `json:"data"` // JSON object, stored as text
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
