package receipt

import (
	"strings"

	"sheetpos/pos/internal/domain"

	"golang.org/x/text/language"
)

const (
	LanguageEnglish = "en"
	LanguageUrdu    = "ur"
)

const (
	DirectionLTR = "ltr"
	DirectionRTL = "rtl"
)

var supported = []language.Tag{
	language.English,
	language.Urdu,
}

var matcher = language.NewMatcher(supported)

var aliases = map[string]string{
	"english": LanguageEnglish,
	"urdu":    LanguageUrdu,
}

var translations = map[string]domain.ReceiptLabels{
	LanguageEnglish: {
		Title:    "Receipt",
		Date:     "Date",
		Item:     "Item",
		Quantity: "Quantity",
		Price:    "Price",
		Total:    "Total",
		Subtotal: "Subtotal",
		Tax:      "Tax",
		ThankYou: "Thank you for your purchase!",
	},
	LanguageUrdu: {
		Title:    "رسید",
		Date:     "تاریخ",
		Item:     "آئٹم",
		Quantity: "مقدار",
		Price:    "قیمت",
		Total:    "کل",
		Subtotal: "ذیلی کل",
		Tax:      "ٹیکس",
		ThankYou: "آپ کی خریداری کا شکریہ!",
	},
}

// ResolveLanguage maps a requested language ("ur", "urdu", "ur-PK",
// an Accept-Language value) to a supported tag. Anything unrecognized
// resolves to fallback, and an unsupported fallback to English.
func ResolveLanguage(requested, fallback string) string {
	requested = strings.ToLower(strings.TrimSpace(requested))
	if alias, ok := aliases[requested]; ok {
		return alias
	}

	if requested != "" {
		_, index, confidence := matcher.Match(parseTags(requested)...)
		if confidence != language.No {
			return supported[index].String()
		}
	}

	if fallback != "" && fallback != requested {
		return ResolveLanguage(fallback, "")
	}
	return LanguageEnglish
}

func parseTags(requested string) []language.Tag {
	tags, _, err := language.ParseAcceptLanguage(requested)
	if err != nil || len(tags) == 0 {
		return []language.Tag{language.Und}
	}
	return tags
}

// Direction is the text direction receipts in lang are printed in.
func Direction(lang string) string {
	if lang == LanguageUrdu {
		return DirectionRTL
	}
	return DirectionLTR
}
