package match

import (
	"sort"
	"strings"

	"github.com/finwell-app/finwell/internal/model"
)

// DefaultVendor is one entry in the built-in vendor table.
type DefaultVendor struct {
	Pattern     string
	Category    string
	Subcategory string
}

// VendorMatch is the result of matching against the built-in vendor table.
type VendorMatch struct {
	Vendor     DefaultVendor
	Confidence float64
	Fuzzy      bool
}

// Direction returns the direction implied by the vendor's category: income
// categories imply positive, everything else negative.
func (v DefaultVendor) Direction() model.AmountDirection {
	if model.IsIncomeCategory(v.Category) {
		return model.DirectionPositive
	}
	return model.DirectionNegative
}

// defaultVendors maps well-known merchant strings to categories. Ambiguous
// big-box and marketplace vendors are deliberately absent; their category
// depends on what was bought, so they always go to the AI layer.
var defaultVendors = []DefaultVendor{
	// Fuel and auto
	{"SHELL OIL", model.CategoryCarTruckExpenses, "Fuel/Gas"},
	{"SHELL", model.CategoryCarTruckExpenses, "Fuel/Gas"},
	{"EXXON", model.CategoryCarTruckExpenses, "Fuel/Gas"},
	{"EXXONMOBIL", model.CategoryCarTruckExpenses, "Fuel/Gas"},
	{"MOBIL", model.CategoryCarTruckExpenses, "Fuel/Gas"},
	{"MARATHON PETRO", model.CategoryCarTruckExpenses, "Fuel/Gas"},
	{"SUNOCO", model.CategoryCarTruckExpenses, "Fuel/Gas"},
	{"VALVOLINE", model.CategoryCarTruckExpenses, "Maintenance"},
	{"JIFFY LUBE", model.CategoryCarTruckExpenses, "Maintenance"},
	{"AUTOZONE", model.CategoryCarTruckExpenses, "Parts"},
	{"O'REILLY AUTO", model.CategoryCarTruckExpenses, "Parts"},
	{"DISCOUNT TIRE", model.CategoryCarTruckExpenses, "Maintenance"},

	// Software and office
	{"GOOGLE WORKSPACE", model.CategoryOfficeExpenses, "Software"},
	{"GOOGLE STORAGE", model.CategoryOfficeExpenses, "Software"},
	{"MICROSOFT 365", model.CategoryOfficeExpenses, "Software"},
	{"MICROSOFT", model.CategoryOfficeExpenses, "Software"},
	{"ADOBE", model.CategoryOfficeExpenses, "Software"},
	{"DROPBOX", model.CategoryOfficeExpenses, "Software"},
	{"ZOOM.US", model.CategoryOfficeExpenses, "Software"},
	{"ZOOM", model.CategoryOfficeExpenses, "Software"},
	{"SLACK", model.CategoryOfficeExpenses, "Software"},
	{"GITHUB", model.CategoryOfficeExpenses, "Software"},
	{"OFFICE DEPOT", model.CategoryOfficeExpenses, "Supplies"},
	{"STAPLES", model.CategoryOfficeExpenses, "Supplies"},
	{"FEDEX OFFICE", model.CategoryOfficeExpenses, "Printing/Shipping"},
	{"FEDEX", model.CategoryOfficeExpenses, "Printing/Shipping"},
	{"UPS STORE", model.CategoryOfficeExpenses, "Printing/Shipping"},
	{"USPS", model.CategoryOfficeExpenses, "Printing/Shipping"},

	// Utilities and communications
	{"COMCAST", model.CategoryUtilities, "Internet"},
	{"XFINITY", model.CategoryUtilities, "Internet"},
	{"SPECTRUM", model.CategoryUtilities, "Internet"},
	{"VERIZON WIRELESS", model.CategoryUtilities, "Phone"},
	{"VERIZON", model.CategoryUtilities, "Phone"},
	{"T-MOBILE", model.CategoryUtilities, "Phone"},
	{"AT&T", model.CategoryUtilities, "Phone"},
	{"PACIFIC GAS", model.CategoryUtilities, "Electric/Gas"},
	{"DUKE ENERGY", model.CategoryUtilities, "Electric/Gas"},
	{"CON EDISON", model.CategoryUtilities, "Electric/Gas"},

	// Travel
	{"UNITED AIRLINES", model.CategoryTravel, "Airfare"},
	{"DELTA AIR", model.CategoryTravel, "Airfare"},
	{"AMERICAN AIRLINES", model.CategoryTravel, "Airfare"},
	{"SOUTHWEST AIR", model.CategoryTravel, "Airfare"},
	{"MARRIOTT", model.CategoryTravel, "Lodging"},
	{"HILTON", model.CategoryTravel, "Lodging"},
	{"HYATT", model.CategoryTravel, "Lodging"},
	{"AIRBNB", model.CategoryTravel, "Lodging"},
	{"HERTZ", model.CategoryTravel, "Car Rental"},
	{"ENTERPRISE RENT", model.CategoryTravel, "Car Rental"},
	{"UBER TRIP", model.CategoryTravel, "Ground Transport"},
	{"LYFT", model.CategoryTravel, "Ground Transport"},

	// Meals
	{"STARBUCKS", model.CategoryMealsEntertain, "Coffee"},
	{"DUNKIN", model.CategoryMealsEntertain, "Coffee"},
	{"CHIPOTLE", model.CategoryMealsEntertain, "Restaurants"},
	{"PANERA BREAD", model.CategoryMealsEntertain, "Restaurants"},
	{"MCDONALD'S", model.CategoryMealsEntertain, "Restaurants"},
	{"SUBWAY", model.CategoryMealsEntertain, "Restaurants"},
	{"DOORDASH", model.CategoryMealsEntertain, "Delivery"},
	{"GRUBHUB", model.CategoryMealsEntertain, "Delivery"},

	// Advertising
	{"GOOGLE ADS", model.CategoryAdvertising, "Online Ads"},
	{"FACEBOOK ADS", model.CategoryAdvertising, "Online Ads"},
	{"META PLATFORMS", model.CategoryAdvertising, "Online Ads"},
	{"MAILCHIMP", model.CategoryAdvertising, "Email Marketing"},

	// Insurance and professional
	{"GEICO", model.CategoryInsurance, "Auto"},
	{"STATE FARM", model.CategoryInsurance, ""},
	{"PROGRESSIVE INS", model.CategoryInsurance, ""},
	{"LEGALZOOM", model.CategoryLegalProfessional, ""},
	{"INTUIT", model.CategoryLegalProfessional, "Accounting Software"},

	// Income-side vendors; their categories imply a positive direction.
	{"STRIPE TRANSFER", model.CategoryGrossReceipts, "Payment Processor"},
	{"STRIPE PAYOUT", model.CategoryGrossReceipts, "Payment Processor"},
	{"SQUARE INC", model.CategoryGrossReceipts, "Payment Processor"},
	{"PAYPAL TRANSFER", model.CategoryGrossReceipts, "Payment Processor"},
	{"INTEREST PAYMENT", model.CategoryInterestIncome, ""},
	{"INTEREST EARNED", model.CategoryInterestIncome, ""},
	{"DIVIDEND", model.CategoryOtherIncome, ""},
}

// vendorsByLength is the table sorted longest-pattern-first so more specific
// strings win before shorter substrings.
var vendorsByLength = func() []DefaultVendor {
	sorted := make([]DefaultVendor, len(defaultVendors))
	copy(sorted, defaultVendors)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Pattern) > len(sorted[j].Pattern)
	})
	return sorted
}()

// MatchDefaultVendors runs the two-pass exact/fuzzy algorithm over the
// built-in vendor table. There is no per-entry direction; it is inferred
// from the category and checked against the transaction's sign before a
// match is accepted. Exact matches score 0.9, fuzzy matches
// 0.75 x (1 - score). Returns nil when nothing matches.
func MatchDefaultVendors(cleanedDesc, vendor string, amount float64) *VendorMatch {
	direction := model.DirectionForAmount(amount)

	// First pass: substring containment, longest pattern first.
	for _, dv := range vendorsByLength {
		if dv.Direction() != direction {
			continue
		}
		if strings.Contains(cleanedDesc, dv.Pattern) {
			return &VendorMatch{Vendor: dv, Confidence: 0.9}
		}
	}

	// Second pass: fuzzy lookup over direction-compatible entries.
	keys := make([]indexEntry, 0, len(vendorsByLength))
	for i, dv := range vendorsByLength {
		if dv.Direction() != direction {
			continue
		}
		keys = append(keys, indexEntry{key: dv.Pattern, pos: i})
	}

	pos, score, ok := newFuzzyIndex(keys).lookup(vendor)
	if !ok || score >= FuzzyThreshold {
		return nil
	}

	return &VendorMatch{
		Vendor:     vendorsByLength[pos],
		Confidence: 0.75 * (1 - score),
		Fuzzy:      true,
	}
}

// DefaultVendorTable returns a copy of the built-in vendor table in its
// declaration order.
func DefaultVendorTable() []DefaultVendor {
	out := make([]DefaultVendor, len(defaultVendors))
	copy(out, defaultVendors)
	return out
}
