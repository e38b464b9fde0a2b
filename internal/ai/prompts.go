// prompts.go - Prompt builders for the three parser variants

package ai

import (
	"fmt"
	"strings"

	"github.com/quoc48/receipt-parser/internal/category"
)

func categoryListing() string {
	labels := category.All()
	names := make([]string, len(labels))
	for i, l := range labels {
		names[i] = string(l)
	}
	return strings.Join(names, ", ")
}

// BuildTextParsePrompt asks the model to extract line items from OCR text.
// Freeform policy: the amount field is the final price after discounts.
func BuildTextParsePrompt(rawText string) string {
	return fmt.Sprintf(`Bạn là trợ lý bóc tách hóa đơn cho ứng dụng quản lý chi tiêu cá nhân.

Dưới đây là văn bản OCR của một hóa đơn Việt Nam:
---
%s
---

Hãy trích xuất TẤT CẢ các mặt hàng đã mua và các dòng thuế/phí.

QUY TẮC:
1. amount là số tiền CUỐI CÙNG của mặt hàng (đã trừ giảm giá/khuyến mãi), đơn vị VND, chỉ gồm chữ số.
2. KHÔNG tạo mục riêng cho dòng giảm giá - hãy trừ vào mặt hàng liền trước.
3. Bỏ qua các dòng tổng cộng, tạm tính, tiền khách đưa, tiền thừa.
4. is_tax = true cho dòng thuế VAT, phí dịch vụ, phí ship.
5. confidence từ 0.0 đến 1.0 cho từng mục.
6. Danh mục gợi ý (tham khảo, không bắt buộc): %s

Trả về DUY NHẤT một JSON object theo mẫu:
{"items": [{"description": "Cà phê sữa", "amount": 35000, "is_tax": false, "confidence": 0.9}]}`, rawText, categoryListing())
}

// BuildVisionParsePrompt asks the model to read the receipt image directly.
// Freeform policy, same contract as the text prompt.
func BuildVisionParsePrompt() string {
	return fmt.Sprintf(`Bạn là trợ lý bóc tách hóa đơn cho ứng dụng quản lý chi tiêu cá nhân.
Hãy đọc ảnh hóa đơn Việt Nam này và trích xuất TẤT CẢ các mặt hàng đã mua cùng các dòng thuế/phí.

QUY TẮC:
1. amount là số tiền CUỐI CÙNG của mặt hàng (đã trừ giảm giá/khuyến mãi), đơn vị VND, chỉ gồm chữ số.
2. KHÔNG tạo mục riêng cho dòng giảm giá - hãy trừ vào mặt hàng liền trước.
3. Bỏ qua các dòng tổng cộng, tạm tính, tiền khách đưa, tiền thừa.
4. is_tax = true cho dòng thuế VAT, phí dịch vụ, phí ship.
5. confidence từ 0.0 đến 1.0 cho từng mục.
6. Danh mục gợi ý (tham khảo, không bắt buộc): %s

Trả về DUY NHẤT một JSON object theo mẫu:
{"items": [{"description": "Cà phê sữa", "amount": 35000, "is_tax": false, "confidence": 0.95}]}`, categoryListing())
}

// BuildStrictParsePrompt is the state-machine variant: the model walks the
// receipt line by line and reports base price and discount as two separate
// fields. It must never do the subtraction itself - delegating arithmetic
// to the model proved unreliable, so the adapter computes the final price.
func BuildStrictParsePrompt() string {
	return `Bạn là máy trạng thái đọc hóa đơn Việt Nam, xử lý TUẦN TỰ từng dòng từ trên xuống.

Với mỗi dòng, xác định trạng thái:
- ITEM: dòng mặt hàng → ghi nhận description và base_price (giá gốc in trên dòng đó).
- DISCOUNT: dòng giảm giá/khuyến mãi → ghi số tiền giảm vào trường discount của mặt hàng LIỀN TRƯỚC.
- FEE: dòng thuế VAT/phí dịch vụ/phí ship → ghi nhận như một mục với is_tax = true.
- SKIP: dòng tổng cộng, tạm tính, tiền khách, tiền thừa, ngày giờ, địa chỉ → bỏ qua.

QUY TẮC BẮT BUỘC:
1. base_price là giá GỐC đúng như in trên hóa đơn, đơn vị VND, chỉ gồm chữ số.
2. discount là tổng tiền giảm áp vào mặt hàng đó; 0 nếu không có.
3. TUYỆT ĐỐI KHÔNG tự trừ discount vào base_price. KHÔNG thực hiện bất kỳ phép tính nào.
4. confidence từ 0.0 đến 1.0 cho từng mục.

Trả về DUY NHẤT một JSON object theo mẫu:
{"items": [{"description": "Cà phê sữa", "base_price": 45000, "discount": 10000, "is_tax": false, "confidence": 0.95}]}`
}
