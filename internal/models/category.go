package models

// Category is the semantic label assigned to a transaction by the classifier.
// Rule files may introduce labels beyond the built-in ones.
type Category string

const (
	CategoryRentIncome         Category = "rent_income"
	CategoryDepositIncome      Category = "deposit_income"
	CategoryUtilityExpense     Category = "utility_expense"
	CategoryTaxPayment         Category = "tax_payment"
	CategoryBankFee            Category = "bank_fee"
	CategoryInsurance          Category = "insurance"
	CategoryCommunityFee       Category = "community_fee"
	CategoryMaintenanceExpense Category = "maintenance_expense"
	CategoryPayroll            Category = "payroll"
	CategoryLoanPayment        Category = "loan_payment"
	CategoryTransfer           Category = "transfer"
	CategoryUncategorized      Category = "uncategorized"
)

// IsUncategorized reports whether c requires manual review.
func (c Category) IsUncategorized() bool {
	return c == "" || c == CategoryUncategorized
}

// RuleField selects the transaction field a ClassificationRule is matched against.
type RuleField string

const (
	FieldDescription RuleField = "description"
	FieldReference   RuleField = "reference"
	FieldBankCode    RuleField = "bank_code"
	FieldAny         RuleField = "any"
)

// ClassificationRule maps a pattern to a category. Rules are evaluated by
// ascending Priority, ties broken by declaration order; the first match wins.
type ClassificationRule struct {
	Name     string    `yaml:"name,omitempty" json:"name,omitempty"`
	Pattern  string    `yaml:"pattern" json:"pattern"`
	Category Category  `yaml:"category" json:"category"`
	Priority int       `yaml:"priority,omitempty" json:"priority,omitempty"`
	Regex    bool      `yaml:"regex,omitempty" json:"regex,omitempty"`
	Field    RuleField `yaml:"field,omitempty" json:"field,omitempty"`
	Sign     Sign      `yaml:"sign,omitempty" json:"sign,omitempty"` // Optional: only debits or only credits
}

// RulesConfig represents the structure of the rules YAML file.
type RulesConfig struct {
	Rules []ClassificationRule `yaml:"rules"`
}
