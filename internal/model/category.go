package model

import "strings"

// CategoryType indicates whether a category represents income, an expense,
// or a neutral money movement such as a transfer.
type CategoryType string

const (
	// CategoryTypeIncome represents categories for income transactions.
	CategoryTypeIncome CategoryType = "income"
	// CategoryTypeExpense represents categories for expense transactions.
	CategoryTypeExpense CategoryType = "expense"
	// CategoryTypeNeutral represents money movements that are neither
	// income nor expense (transfers, card payments, owner draws).
	CategoryTypeNeutral CategoryType = "neutral"
)

// Category is one entry in the canonical accounting taxonomy. AI results are
// validated against this set before they are trusted.
type Category struct {
	Key         string
	DisplayName string
	Type        CategoryType
}

// Canonical category keys.
const (
	CategoryAdvertising       = "ADVERTISING"
	CategoryCarTruckExpenses  = "CAR_TRUCK_EXPENSES"
	CategoryCommissionsFees   = "COMMISSIONS_FEES"
	CategoryContractLabor     = "CONTRACT_LABOR"
	CategoryInsurance         = "INSURANCE"
	CategoryInterestPaid      = "INTEREST_PAID"
	CategoryLegalProfessional = "LEGAL_PROFESSIONAL"
	CategoryMealsEntertain    = "MEALS_ENTERTAINMENT"
	CategoryOfficeExpenses    = "OFFICE_EXPENSES"
	CategoryRentLease         = "RENT_LEASE"
	CategoryRepairsMaint      = "REPAIRS_MAINTENANCE"
	CategorySupplies          = "SUPPLIES"
	CategoryTaxesLicenses     = "TAXES_LICENSES"
	CategoryTravel            = "TRAVEL"
	CategoryUtilities         = "UTILITIES"
	CategoryOtherExpenses     = "OTHER_EXPENSES"

	CategoryGrossReceipts  = "GROSS_RECEIPTS"
	CategoryInterestIncome = "INTEREST_INCOME"
	CategoryRefundsCredits = "REFUNDS_CREDITS"
	CategoryOtherIncome    = "OTHER_INCOME"

	CategoryTransfer          = "TRANSFER"
	CategoryCreditCardPayment = "CREDIT_CARD_PAYMENT"
	CategoryOwnerDraw         = "OWNER_DRAW"
	CategoryLoanPayment       = "LOAN_PAYMENT"
)

// categories is the canonical taxonomy, keyed by Category.Key.
var categories = []Category{
	{CategoryAdvertising, "Advertising", CategoryTypeExpense},
	{CategoryCarTruckExpenses, "Car & Truck Expenses", CategoryTypeExpense},
	{CategoryCommissionsFees, "Commissions & Fees", CategoryTypeExpense},
	{CategoryContractLabor, "Contract Labor", CategoryTypeExpense},
	{CategoryInsurance, "Insurance", CategoryTypeExpense},
	{CategoryInterestPaid, "Interest Paid", CategoryTypeExpense},
	{CategoryLegalProfessional, "Legal & Professional Services", CategoryTypeExpense},
	{CategoryMealsEntertain, "Meals & Entertainment", CategoryTypeExpense},
	{CategoryOfficeExpenses, "Office Expenses", CategoryTypeExpense},
	{CategoryRentLease, "Rent & Lease", CategoryTypeExpense},
	{CategoryRepairsMaint, "Repairs & Maintenance", CategoryTypeExpense},
	{CategorySupplies, "Supplies", CategoryTypeExpense},
	{CategoryTaxesLicenses, "Taxes & Licenses", CategoryTypeExpense},
	{CategoryTravel, "Travel", CategoryTypeExpense},
	{CategoryUtilities, "Utilities", CategoryTypeExpense},
	{CategoryOtherExpenses, "Other Expenses", CategoryTypeExpense},

	{CategoryGrossReceipts, "Gross Receipts", CategoryTypeIncome},
	{CategoryInterestIncome, "Interest Income", CategoryTypeIncome},
	{CategoryRefundsCredits, "Refunds & Credits", CategoryTypeIncome},
	{CategoryOtherIncome, "Other Income", CategoryTypeIncome},

	{CategoryTransfer, "Transfer", CategoryTypeNeutral},
	{CategoryCreditCardPayment, "Credit Card Payment", CategoryTypeNeutral},
	{CategoryOwnerDraw, "Owner Draw", CategoryTypeNeutral},
	{CategoryLoanPayment, "Loan Payment", CategoryTypeNeutral},
}

var categoriesByKey = func() map[string]Category {
	m := make(map[string]Category, len(categories)*2)
	for _, c := range categories {
		m[c.Key] = c
		m[normalizeCategoryName(c.DisplayName)] = c
	}
	return m
}()

// normalizeCategoryName collapses a category name or key to an
// upper-snake form so "Office Expenses", "office expenses" and
// "OFFICE_EXPENSES" all resolve to the same entry.
func normalizeCategoryName(name string) string {
	s := strings.ToUpper(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, "&", "")
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '_' || r == '-' || r == '/'
	})
	return strings.Join(fields, "_")
}

// LookupCategory resolves a category key or display name to its canonical
// entry. The lookup is case- and punctuation-insensitive.
func LookupCategory(name string) (Category, bool) {
	c, ok := categoriesByKey[normalizeCategoryName(name)]
	return c, ok
}

// AllCategories returns the canonical taxonomy.
func AllCategories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// IsIncomeCategory reports whether the named category implies money coming
// in. Used to infer a direction for built-in vendors that have no explicit
// one.
func IsIncomeCategory(name string) bool {
	c, ok := LookupCategory(name)
	return ok && c.Type == CategoryTypeIncome
}

// IsNeutralCategory reports whether the named category is on the neutral
// list and should be tagged as a transfer rather than income or expense.
func IsNeutralCategory(name string) bool {
	c, ok := LookupCategory(name)
	return ok && c.Type == CategoryTypeNeutral
}
