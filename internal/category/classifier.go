// classifier.go - Keyword-based spend category classification

package category

import "strings"

// Label is one of the fixed Vietnamese spend categories used by the
// expense tracker. The enumeration mirrors the category catalog the
// mobile app persists against.
type Label string

const (
	Coffee        Label = "Cà phê"
	Food          Label = "Ăn uống"
	Groceries     Label = "Đi chợ"
	Transport     Label = "Di chuyển"
	Bills         Label = "Hóa đơn"
	Entertainment Label = "Giải trí"
	Shopping      Label = "Mua sắm"
	Health        Label = "Sức khỏe"
	Education     Label = "Giáo dục"
	Fashion       Label = "Thời trang"
	Gifts         Label = "Quà tặng"
	Family        Label = "Gia đình"
	Holiday       Label = "Du lịch"
	Other         Label = "Khác"
)

// entry is one row of an ordered keyword table. First matching row wins,
// so more specific rows (coffee) must come before broader ones (food).
type entry struct {
	keywords []string
	label    Label
}

// Table is an ordered keyword table. Classify is a pure function of its
// inputs: the same description and flag always yield the same label.
type Table struct {
	name    string
	entries []entry
}

// Name returns the preset name of this table.
func (t *Table) Name() string {
	return t.name
}

// Classify maps a free-text item description to a category label.
// Tax and fee lines short-circuit to the bills category without a keyword
// scan. Descriptions match case-insensitively by substring; when no row
// matches the default category is Other.
func (t *Table) Classify(description string, isTaxOrFee bool) Label {
	if isTaxOrFee {
		return Bills
	}

	desc := strings.ToLower(strings.TrimSpace(description))
	if desc == "" {
		return Other
	}

	for _, e := range t.entries {
		for _, kw := range e.keywords {
			if strings.Contains(desc, kw) {
				return e.label
			}
		}
	}

	return Other
}

// All returns every known category label, in catalog order.
func All() []Label {
	return []Label{
		Coffee, Food, Groceries, Transport, Bills, Entertainment, Shopping,
		Health, Education, Fashion, Gifts, Family, Holiday, Other,
	}
}
