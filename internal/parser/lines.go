// lines.go - Low-level receipt line scanning
//
// Turns raw OCR lines into (description, amount, fee flag) tuples. OCR of
// Vietnamese receipts yields amounts in many shapes ("35.000", "35,000đ",
// "35000 VND"); amounts are normalized by stripping every non-digit
// character, which is safe because VND carries no fractional sub-units.

package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// lineTuple is one candidate item line before category classification.
type lineTuple struct {
	desc   string
	amount float64
	isFee  bool
}

// Lines worth less than this are treated as OCR noise (stray quantities,
// loyalty points). Real VND receipt lines start in the thousands.
const minItemAmount = 1000

type lineScanner struct {
	pricePattern     *regexp.Regexp
	excludePatterns  []*regexp.Regexp
	feePattern       *regexp.Regexp
	discountPattern  *regexp.Regexp
	quantityPattern  *regexp.Regexp
	nonDigitsPattern *regexp.Regexp
}

func newLineScanner() *lineScanner {
	return &lineScanner{
		// DESC ... AMOUNT[đ|₫|d|vnd] at end of line
		pricePattern: regexp.MustCompile(`(?i)^(.+?)\s+(-?\d[\d.,]*)\s*(?:đ|₫|d|vnd|vnđ)?\s*$`),
		excludePatterns: []*regexp.Regexp{
			// Totals, payment and change lines
			regexp.MustCompile(`(?i)^\s*(tổng|tong|thành tiền|thanh tien|tạm tính|tam tinh|cộng|cong|total|subtotal|tiền khách|tien khach|tiền mặt|tien mat|tiền thừa|tien thua|thối lại|thoi lai|chuyển khoản|chuyen khoan|momo|zalopay|vnpay|cash|change|card)\b`),
			// Separators and decoration
			regexp.MustCompile(`^\s*[-=*_.]+\s*$`),
			// Date / time lines
			regexp.MustCompile(`^\s*\d{1,2}[/-]\d{1,2}[/-]\d{2,4}(\s+\d{1,2}:\d{2})?\s*$`),
			regexp.MustCompile(`^\s*\d{1,2}:\d{2}(:\d{2})?\s*$`),
			// Invoice numbers, phone numbers, cashier lines
			regexp.MustCompile(`(?i)^\s*(số hd|so hd|hóa đơn|hoa don|invoice|bill|thu ngân|thu ngan|cashier|quầy|quay|bàn|ban so|tel|sđt|sdt|đt|mst)\b`),
		},
		// \b is ASCII-only in RE2, so words ending in a diacritic must not
		// carry a trailing boundary assertion.
		feePattern:      regexp.MustCompile(`(?i)(thuế|\bthue\b|\bvat\b|gtgt|phí|\bphi\b|phụ thu|phu thu|service charge|\bship\b)`),
		discountPattern: regexp.MustCompile(`(?i)(giảm giá|giam gia|khuyến mãi|khuyen mai|chiết khấu|chiet khau|giảm|giam|discount|voucher|\bkm\b)`),
		// "2 x 17.500" style quantity detail under an item line
		quantityPattern:  regexp.MustCompile(`(?i)^\s*\d+([.,]\d+)?\s*(x|@)\s*[\d.,]+\s*(đ|₫|d|vnd)?\s*$`),
		nonDigitsPattern: regexp.MustCompile(`[^\d]`),
	}
}

// scan extracts candidate item tuples from ordered OCR lines. Discount
// lines are folded into the preceding item's amount and never emitted on
// their own; an item fully consumed by a discount is dropped.
func (s *lineScanner) scan(lines []string) []lineTuple {
	var tuples []lineTuple

	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if s.shouldExclude(line) || s.quantityPattern.MatchString(line) {
			continue
		}

		m := s.pricePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		desc := strings.TrimSpace(m[1])
		amount := s.normalizeAmount(m[2])
		negative := strings.HasPrefix(strings.TrimSpace(m[2]), "-")

		if desc == "" || !hasLetter(desc) || amount <= 0 {
			continue
		}

		if negative || s.discountPattern.MatchString(desc) {
			tuples = s.foldDiscount(tuples, amount)
			continue
		}

		if amount < minItemAmount {
			continue
		}

		tuples = append(tuples, lineTuple{
			desc:   desc,
			amount: amount,
			isFee:  s.feePattern.MatchString(desc),
		})
	}

	return tuples
}

// foldDiscount subtracts a discount amount from the most recent item.
// Standalone discounts with no preceding item are dropped entirely.
func (s *lineScanner) foldDiscount(tuples []lineTuple, discount float64) []lineTuple {
	if len(tuples) == 0 {
		return tuples
	}

	last := len(tuples) - 1
	tuples[last].amount -= discount
	if tuples[last].amount <= 0 {
		return tuples[:last]
	}
	return tuples
}

func (s *lineScanner) shouldExclude(line string) bool {
	for _, re := range s.excludePatterns {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

// normalizeAmount strips separators and currency symbols ("35.000đ" →
// 35000). Returns 0 when nothing numeric remains.
func (s *lineScanner) normalizeAmount(raw string) float64 {
	digits := s.nonDigitsPattern.ReplaceAllString(raw, "")
	if digits == "" {
		return 0
	}
	n, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0
	}
	return n
}

func hasLetter(s string) bool {
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r > 127 {
			return true
		}
	}
	return false
}
