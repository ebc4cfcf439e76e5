// Copyright (c) 2026 Stanza CMS Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package transfer

// ValidationIssue pinpoints one offending record in an import file:
// the record's index in its source array, a JSON-pointer style path
// and a human message.
type ValidationIssue struct {
	PageIndex     *int   `json:"page_index,omitempty"`
	MenuItemIndex *int   `json:"menu_item_index,omitempty"`
	SectionIndex  *int   `json:"section_index,omitempty"`
	Path          string `json:"path,omitempty"`
	Message       string `json:"message"`
}

// ValidationResult is the outcome of the pre-write validation pass.
// Errors block the import; warnings do not.
type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Errors   []ValidationIssue `json:"errors,omitempty"`
	Warnings []ValidationIssue `json:"warnings,omitempty"`
}

func (v *ValidationResult) addPageError(index int, path, message string) {
	idx := index
	v.Errors = append(v.Errors, ValidationIssue{PageIndex: &idx, Path: path, Message: message})
}

func (v *ValidationResult) addMenuItemError(index int, path, message string) {
	idx := index
	v.Errors = append(v.Errors, ValidationIssue{MenuItemIndex: &idx, Path: path, Message: message})
}

func (v *ValidationResult) addMenuItemWarning(index int, path, message string) {
	idx := index
	v.Warnings = append(v.Warnings, ValidationIssue{MenuItemIndex: &idx, Path: path, Message: message})
}

func (v *ValidationResult) addSectionError(index int, path, message string) {
	idx := index
	v.Errors = append(v.Errors, ValidationIssue{SectionIndex: &idx, Path: path, Message: message})
}

func (v *ValidationResult) addSectionWarning(index int, path, message string) {
	idx := index
	v.Warnings = append(v.Warnings, ValidationIssue{SectionIndex: &idx, Path: path, Message: message})
}

// ImportError is one failed record during the write phase.
type ImportError struct {
	PageIndex     *int   `json:"page_index,omitempty"`
	MenuItemIndex *int   `json:"menu_item_index,omitempty"`
	SectionIndex  *int   `json:"section_index,omitempty"`
	EntityIndex   *int   `json:"entity_index,omitempty"`
	Key           string `json:"key,omitempty"`
	Message       string `json:"message"`
}

// ImportResult summarizes an import run. The four outcome counters
// partition every record of the source file.
type ImportResult struct {
	Success     bool          `json:"success"`
	Total       int           `json:"total"`
	Imported    int           `json:"imported"`
	Skipped     int           `json:"skipped"`
	Overwritten int           `json:"overwritten"`
	Failed      int           `json:"failed"`
	Errors      []ImportError `json:"errors,omitempty"`
}

func (r *ImportResult) addPageError(index int, key, message string) {
	idx := index
	r.Failed++
	r.Errors = append(r.Errors, ImportError{PageIndex: &idx, Key: key, Message: message})
}

func (r *ImportResult) addMenuItemError(index int, key, message string) {
	idx := index
	r.Failed++
	r.Errors = append(r.Errors, ImportError{MenuItemIndex: &idx, Key: key, Message: message})
}

func (r *ImportResult) addSectionError(index int, key, message string) {
	idx := index
	r.Failed++
	r.Errors = append(r.Errors, ImportError{SectionIndex: &idx, Key: key, Message: message})
}

func (r *ImportResult) addEntityError(index int, key, message string) {
	idx := index
	r.Failed++
	r.Errors = append(r.Errors, ImportError{EntityIndex: &idx, Key: key, Message: message})
}

func (r *ImportResult) finish() *ImportResult {
	r.Success = r.Failed == 0
	return r
}
