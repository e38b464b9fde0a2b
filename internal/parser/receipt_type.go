// receipt_type.go - Keyword heuristic for receipt layout classification

package parser

import "strings"

// Checked in a fixed order so classification stays deterministic when a
// receipt mentions brands from several groups (a Grab delivery from a
// branded chain is treated as online-delivery).
var receiptTypeKeywords = []struct {
	rtype    ReceiptType
	keywords []string
}{
	{ReceiptOnlineDelivery, []string{
		"grabfood", "grab food", "shopeefood", "shopee food", "baemin",
		"now.vn", "gofood", "be food", "đơn giao hàng", "don giao hang",
		"shipper", "mã đơn hàng", "ma don hang",
	}},
	{ReceiptSupermarket, []string{
		"siêu thị", "sieu thi", "winmart", "vinmart", "co.opmart", "coopmart",
		"big c", "go!", "mega market", "lotte mart", "emart", "aeon",
		"bách hóa xanh", "bach hoa xanh", "mm mega",
	}},
	{ReceiptBrandedChain, []string{
		"highlands", "phúc long", "phuc long", "starbucks", "the coffee house",
		"trung nguyên", "trung nguyen", "circle k", "gs25", "familymart",
		"7-eleven", "kfc", "lotteria", "mcdonald", "jollibee", "pizza hut",
		"domino", "phở 24", "pho 24",
	}},
	{ReceiptRestaurant, []string{
		"nhà hàng", "nha hang", "quán ăn", "quan an", "quán nhậu", "quan nhau",
		"bàn số", "ban so", "phục vụ", "phuc vu", "menu", "order",
	}},
}

// ClassifyReceiptType tags raw receipt text with a coarse layout type.
// The tag only biases arbitration; unknown layouts are generic.
func ClassifyReceiptType(rawText string) ReceiptType {
	text := strings.ToLower(rawText)
	for _, group := range receiptTypeKeywords {
		for _, kw := range group.keywords {
			if strings.Contains(text, kw) {
				return group.rtype
			}
		}
	}
	return ReceiptGeneric
}
