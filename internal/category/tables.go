// tables.go - Keyword table presets
//
// The mobile app grew one keyword table per parser variant. The canonical
// table consolidates them and is what new code should use; the legacy
// presets are kept selectable for behavioral parity with a specific
// variant when comparing outputs against the old app.

package category

// Canonical is the consolidated keyword table used by default everywhere.
func Canonical() *Table {
	return &Table{
		name: "canonical",
		entries: []entry{
			{[]string{"cà phê", "ca phe", "cafe", "coffee", "capuchino", "cappuccino", "latte", "espresso", "trà sữa", "tra sua", "highlands", "phúc long", "phuc long", "starbucks"}, Coffee},
			{[]string{"cơm", "com ", "phở", "pho ", "bún", "bun ", "bánh", "banh", "mì", "my ", "gà", "ga ran", "thịt", "thit", "cá ", "hải sản", "hai san", "lẩu", "lau ", "nướng", "nuong", "ăn", "an uong", "food", "nhà hàng", "nha hang", "quán", "quan an", "trà", "nước ngọt", "nuoc ngot", "sữa", "sua ", "kem", "snack", "pizza", "kfc", "lotteria"}, Food},
			{[]string{"rau", "củ", "cu qua", "trái cây", "trai cay", "gạo", "gao ", "trứng", "trung ga", "gia vị", "gia vi", "nước mắm", "nuoc mam", "dầu ăn", "dau an", "siêu thị", "sieu thi", "chợ", "cho ", "winmart", "vinmart", "coopmart", "bách hóa xanh", "bach hoa xanh", "big c", "mega market"}, Groceries},
			{[]string{"xăng", "xang", "grab", "taxi", "xe ôm", "xe om", "xe buýt", "xe buyt", "gửi xe", "gui xe", "đỗ xe", "do xe", "vé xe", "ve xe", "tàu", "tau ", "máy bay", "may bay", "vé tàu", "be ", "gojek", "vinfast"}, Transport},
			{[]string{"điện", "dien ", "nước", "nuoc may", "internet", "wifi", "viettel", "vinaphone", "mobifone", "thuế", "thue", "vat", "phí", "phi ", "hóa đơn", "hoa don", "lệ phí", "le phi", "tiền nhà", "tien nha", "thuê nhà", "thue nha"}, Bills},
			{[]string{"phim", "cgv", "galaxy", "karaoke", "game", "net ", "bida", "bowling", "concert", "vé xem", "ve xem", "netflix", "spotify"}, Entertainment},
			{[]string{"thuốc", "thuoc", "khám", "kham benh", "bệnh viện", "benh vien", "nha khoa", "pharmacity", "long châu", "long chau", "vitamin", "khẩu trang", "khau trang"}, Health},
			{[]string{"sách", "sach", "vở", "vo ", "bút", "but ", "học phí", "hoc phi", "khóa học", "khoa hoc", "course", "udemy"}, Education},
			{[]string{"áo", "ao ", "quần", "quan jean", "váy", "vay ", "giày", "giay", "dép", "dep ", "túi xách", "tui xach", "uniqlo", "zara", "h&m"}, Fashion},
			{[]string{"quà", "qua tang", "hoa ", "sinh nhật", "sinh nhat", "lì xì", "li xi"}, Gifts},
			{[]string{"khách sạn", "khach san", "homestay", "resort", "tour", "du lịch", "du lich", "vé máy bay", "ve may bay", "booking", "agoda"}, Holiday},
			{[]string{"shopee", "lazada", "tiki", "sendo", "tiktok shop", "mua sắm", "mua sam", "điện máy", "dien may", "thế giới di động", "the gioi di dong"}, Shopping},
			{[]string{"bỉm", "bim sua", "tã", "ta em be", "em bé", "em be", "đồ chơi", "do choi", "học thêm", "hoc them"}, Family},
		},
	}
}

// RuleTable is the legacy table the rule-based parser shipped with. It is
// a trimmed variant of the canonical table with fewer brand keywords.
func RuleTable() *Table {
	return &Table{
		name: "rule",
		entries: []entry{
			{[]string{"cà phê", "cafe", "coffee", "trà sữa"}, Coffee},
			{[]string{"cơm", "phở", "bún", "bánh", "mì", "gà", "thịt", "lẩu", "nướng", "nước ngọt", "sữa", "kem"}, Food},
			{[]string{"rau", "trái cây", "gạo", "trứng", "gia vị", "siêu thị", "chợ"}, Groceries},
			{[]string{"xăng", "grab", "taxi", "gửi xe", "vé xe"}, Transport},
			{[]string{"điện", "nước", "internet", "thuế", "phí", "hóa đơn"}, Bills},
			{[]string{"phim", "karaoke", "game"}, Entertainment},
			{[]string{"thuốc", "khám", "bệnh viện"}, Health},
			{[]string{"sách", "học phí"}, Education},
			{[]string{"áo", "quần", "giày", "dép"}, Fashion},
			{[]string{"quà", "hoa"}, Gifts},
			{[]string{"khách sạn", "tour", "du lịch"}, Holiday},
			{[]string{"shopee", "lazada", "tiki"}, Shopping},
		},
	}
}

// TextTable is the legacy table of the text-prompt model parser.
func TextTable() *Table {
	t := RuleTable()
	t.name = "text"
	// The text variant additionally recognized a few delivery brands that
	// show up in OCR text but rarely in the model's own descriptions.
	t.entries = append([]entry{
		{[]string{"grabfood", "shopeefood", "baemin", "now.vn"}, Food},
	}, t.entries...)
	return t
}

// VisionTable is the legacy table of the vision model parsers.
func VisionTable() *Table {
	t := Canonical()
	t.name = "vision"
	return t
}

// TableByName resolves a preset table by configuration name, falling back
// to the canonical table for unknown names.
func TableByName(name string) *Table {
	switch name {
	case "rule":
		return RuleTable()
	case "text":
		return TextTable()
	case "vision":
		return VisionTable()
	default:
		return Canonical()
	}
}
