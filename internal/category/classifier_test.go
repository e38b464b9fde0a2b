package category

import "testing"

func TestClassifyTaxShortCircuit(t *testing.T) {
	table := Canonical()

	// The flag wins even when the description matches another row.
	got := table.Classify("Cà phê sữa đá", true)
	if got != Bills {
		t.Errorf("Classify with tax flag = %q, want %q", got, Bills)
	}
}

func TestClassifyCanonical(t *testing.T) {
	table := Canonical()

	tests := []struct {
		desc string
		want Label
	}{
		{"Cà phê sữa đá", Coffee},
		{"CAFE ĐEN ĐÁ", Coffee},
		{"Trà sữa trân châu", Coffee},
		{"Phở bò tái", Food},
		{"Bánh mì thịt nướng", Food},
		{"Rau muống", Groceries},
		{"Trái cây tổng hợp", Groceries},
		{"Grab chuyến đi sân bay", Transport},
		{"Tiền điện tháng 8", Bills},
		{"Vé CGV phòng 5", Entertainment},
		{"Thuốc ho Prospan", Health},
		{"Khẩu trang y tế", Health},
		{"Khóa học Udemy", Education},
		{"Giày thể thao", Fashion},
		{"Khách sạn 2 đêm", Holiday},
		{"Đơn hàng Shopee", Shopping},
		{"Đồ chơi xếp hình", Family},
		{"ABC123 XYZ", Other},
		{"", Other},
		{"   ", Other},
	}

	for _, tt := range tests {
		if got := table.Classify(tt.desc, false); got != tt.want {
			t.Errorf("Classify(%q) = %q, want %q", tt.desc, got, tt.want)
		}
	}
}

func TestClassifyCoffeeBeforeFood(t *testing.T) {
	table := Canonical()

	// "sữa" is a food keyword but the coffee row is checked first.
	if got := table.Classify("cà phê sữa", false); got != Coffee {
		t.Errorf("Classify(cà phê sữa) = %q, want %q", got, Coffee)
	}
}

func TestClassifyDeterministic(t *testing.T) {
	table := Canonical()

	for i := 0; i < 3; i++ {
		if got := table.Classify("Bún chả Hà Nội", false); got != Food {
			t.Fatalf("run %d: Classify = %q, want %q", i, got, Food)
		}
	}
}

func TestTableByName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"rule", "rule"},
		{"text", "text"},
		{"vision", "vision"},
		{"canonical", "canonical"},
		{"bogus", "canonical"},
		{"", "canonical"},
	}

	for _, tt := range tests {
		if got := TableByName(tt.name).Name(); got != tt.want {
			t.Errorf("TableByName(%q).Name() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestAllLabels(t *testing.T) {
	labels := All()
	if len(labels) != 14 {
		t.Fatalf("All() returned %d labels, want 14", len(labels))
	}
	if labels[len(labels)-1] != Other {
		t.Errorf("last label = %q, want %q", labels[len(labels)-1], Other)
	}

	seen := make(map[Label]bool)
	for _, l := range labels {
		if seen[l] {
			t.Errorf("duplicate label %q", l)
		}
		seen[l] = true
	}
}
