package detect

// ScamCategory is the closed vocabulary describing a fraud pattern.
type ScamCategory string

const (
	CategoryFinancialFraud ScamCategory = "financial_fraud"
	CategoryPhishing       ScamCategory = "phishing"
	CategoryLotteryPrize   ScamCategory = "lottery_prize"
	CategoryTechSupport    ScamCategory = "tech_support"
	CategoryRomance        ScamCategory = "romance"
	CategoryGeneralScam    ScamCategory = "general_scam"
	CategoryLegitimate     ScamCategory = "legitimate"
	CategoryUnknown        ScamCategory = "unknown"
)

// ClassificationVocabulary is the category list offered to the model
// classifier. general_scam and unknown are engine-internal labels and are
// deliberately absent: the model either names a concrete fraud pattern or
// calls the message legitimate.
var ClassificationVocabulary = []string{
	string(CategoryFinancialFraud),
	string(CategoryPhishing),
	string(CategoryLotteryPrize),
	string(CategoryTechSupport),
	string(CategoryRomance),
	string(CategoryLegitimate),
}

// ParseCategory maps a raw string onto the closed vocabulary,
// defaulting to unknown.
func ParseCategory(s string) ScamCategory {
	switch ScamCategory(s) {
	case CategoryFinancialFraud, CategoryPhishing, CategoryLotteryPrize,
		CategoryTechSupport, CategoryRomance, CategoryGeneralScam,
		CategoryLegitimate, CategoryUnknown:
		return ScamCategory(s)
	default:
		return CategoryUnknown
	}
}

// IsScam reports whether the category labels fraudulent intent.
func (c ScamCategory) IsScam() bool {
	switch c {
	case CategoryLegitimate, CategoryUnknown, "":
		return false
	default:
		return true
	}
}

func (c ScamCategory) String() string { return string(c) }
