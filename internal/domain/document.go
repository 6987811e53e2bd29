package domain

import (
	"context"
	"encoding/json"
	"fmt"
)

// Top-level keys of the persisted document
const (
	SectionIncome         = "income"
	SectionMonthly        = "monthly"
	SectionAnnual         = "annual"
	SectionPlannerState   = "plannerState"
	SectionAccounts       = "accounts"
	SectionLinks          = "links"
	SectionLinkCategories = "linkCategories"
)

// Document is the whole persisted budget: one JSON object, one key per domain
type Document struct {
	Income         []*IncomeSource          `json:"income"`
	Monthly        CategoryMap              `json:"monthly"`
	Annual         CategoryMap              `json:"annual"`
	PlannerState   map[string]*PlannerEntry `json:"plannerState"`
	Accounts       Accounts                 `json:"accounts"`
	Links          map[string][]*LinkItem   `json:"links"`
	LinkCategories map[string]*LinkCategory `json:"linkCategories"`
}

// NewDocument returns an empty document with every section initialised
func NewDocument() *Document {
	return &Document{
		Income:         []*IncomeSource{},
		Monthly:        CategoryMap{},
		Annual:         CategoryMap{},
		PlannerState:   map[string]*PlannerEntry{},
		Accounts:       Accounts{},
		Links:          map[string][]*LinkItem{},
		LinkCategories: map[string]*LinkCategory{},
	}
}

// Clone returns a deep copy of the sections this service mutates; links and
// accounts are shared because nothing here edits them.
func (d *Document) Clone() *Document {
	c := &Document{
		Income:         make([]*IncomeSource, 0, len(d.Income)),
		Monthly:        d.Monthly.Clone(),
		Annual:         d.Annual.Clone(),
		PlannerState:   make(map[string]*PlannerEntry, len(d.PlannerState)),
		Accounts:       d.Accounts,
		Links:          d.Links,
		LinkCategories: d.LinkCategories,
	}
	for _, inc := range d.Income {
		c.Income = append(c.Income, inc.Clone())
	}
	for name, entry := range d.PlannerState {
		c.PlannerState[name] = entry.Clone()
	}
	return c
}

// DocumentRepository loads and saves the budget document
type DocumentRepository interface {
	Load(ctx context.Context) (*Document, error)
	Save(ctx context.Context, doc *Document) error
}

// DecodeWarning describes a section or category that could not be decoded and was reset
type DecodeWarning struct {
	Section  string
	Category string
	Err      error
}

func (w DecodeWarning) Error() string {
	if w.Category != "" {
		return fmt.Sprintf("%s.%s: %v", w.Section, w.Category, w.Err)
	}
	return fmt.Sprintf("%s: %v", w.Section, w.Err)
}

// DecodeDocument decodes a persisted document section by section. A malformed
// section or category is replaced with an empty value and reported as a warning;
// only a document that is not a JSON object at all is an error.
func DecodeDocument(data []byte) (*Document, []DecodeWarning, error) {
	doc := NewDocument()
	if len(data) == 0 {
		return doc, nil, nil
	}

	var sections map[string]json.RawMessage
	if err := json.Unmarshal(data, &sections); err != nil {
		return nil, nil, fmt.Errorf("decode document: %w", err)
	}

	var warnings []DecodeWarning
	warn := func(section string, err error) {
		warnings = append(warnings, DecodeWarning{Section: section, Err: err})
	}

	if raw, ok := sections[SectionIncome]; ok {
		if err := decodeSection(raw, &doc.Income); err != nil {
			warn(SectionIncome, err)
			doc.Income = []*IncomeSource{}
		}
		doc.Income = compactIncome(doc.Income)
	}

	if raw, ok := sections[SectionMonthly]; ok {
		m, ws := decodeCategoryMap(SectionMonthly, raw)
		doc.Monthly = m
		warnings = append(warnings, ws...)
	}

	if raw, ok := sections[SectionAnnual]; ok {
		m, ws := decodeCategoryMap(SectionAnnual, raw)
		doc.Annual = m
		warnings = append(warnings, ws...)
	}

	if raw, ok := sections[SectionPlannerState]; ok {
		if err := decodeSection(raw, &doc.PlannerState); err != nil {
			warn(SectionPlannerState, err)
			doc.PlannerState = map[string]*PlannerEntry{}
		}
		for name, entry := range doc.PlannerState {
			if entry == nil {
				delete(doc.PlannerState, name)
			}
		}
	}

	if raw, ok := sections[SectionAccounts]; ok {
		if err := decodeSection(raw, &doc.Accounts); err != nil {
			warn(SectionAccounts, err)
			doc.Accounts = Accounts{}
		}
	}

	if raw, ok := sections[SectionLinks]; ok {
		if err := decodeSection(raw, &doc.Links); err != nil {
			warn(SectionLinks, err)
			doc.Links = map[string][]*LinkItem{}
		}
	}

	if raw, ok := sections[SectionLinkCategories]; ok {
		if err := decodeSection(raw, &doc.LinkCategories); err != nil {
			warn(SectionLinkCategories, err)
			doc.LinkCategories = map[string]*LinkCategory{}
		}
	}

	return doc, warnings, nil
}

func decodeSection(raw json.RawMessage, target interface{}) error {
	if string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, target)
}

func decodeCategoryMap(section string, raw json.RawMessage) (CategoryMap, []DecodeWarning) {
	result := CategoryMap{}
	if string(raw) == "null" {
		return result, nil
	}

	var categories map[string]json.RawMessage
	if err := json.Unmarshal(raw, &categories); err != nil {
		return result, []DecodeWarning{{Section: section, Err: err}}
	}

	var warnings []DecodeWarning
	for key, list := range categories {
		var expenses []*Expense
		if err := decodeSection(list, &expenses); err != nil {
			warnings = append(warnings, DecodeWarning{Section: section, Category: key, Err: err})
			result[key] = []*Expense{}
			continue
		}
		compacted := make([]*Expense, 0, len(expenses))
		for _, e := range expenses {
			if e != nil {
				compacted = append(compacted, e)
			}
		}
		result[key] = compacted
	}
	return result, warnings
}

func compactIncome(list []*IncomeSource) []*IncomeSource {
	out := make([]*IncomeSource, 0, len(list))
	for _, inc := range list {
		if inc != nil {
			out = append(out, inc)
		}
	}
	return out
}
