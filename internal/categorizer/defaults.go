package categorizer

import "inmova/bank-import/internal/models"

// DefaultRules returns the built-in rule set for Spanish property management
// accounts. Lower priorities are evaluated first.
func DefaultRules() []models.ClassificationRule {
	return []models.ClassificationRule{
		// Bank charges
		{Name: "commission", Pattern: "COMISION", Category: models.CategoryBankFee, Priority: 10},
		{Name: "bank charges", Pattern: "GASTOS BANCARIOS", Category: models.CategoryBankFee, Priority: 10},
		{Name: "n43 fees and interest", Pattern: "^17$", Regex: true, Field: models.FieldBankCode, Category: models.CategoryBankFee, Priority: 15, Sign: models.SignDebit},
		{Name: "iso charges", Pattern: "/CHRG$", Regex: true, Field: models.FieldBankCode, Category: models.CategoryBankFee, Priority: 15},

		// Taxes
		{Name: "tax agency", Pattern: "AGENCIA TRIBUTARIA", Category: models.CategoryTaxPayment, Priority: 20},
		{Name: "aeat", Pattern: `\bAEAT\b`, Regex: true, Category: models.CategoryTaxPayment, Priority: 20},
		{Name: "property tax", Pattern: `\bI\.?B\.?I\b`, Regex: true, Category: models.CategoryTaxPayment, Priority: 20, Sign: models.SignDebit},
		{Name: "waste tax", Pattern: "TASA BASURA", Category: models.CategoryTaxPayment, Priority: 20},
		{Name: "model 303", Pattern: `MODELO\s*(303|115|111|200)`, Regex: true, Category: models.CategoryTaxPayment, Priority: 20},

		// Deposits before rent so "FIANZA ALQUILER" is a deposit
		{Name: "deposit", Pattern: "FIANZA", Category: models.CategoryDepositIncome, Priority: 25, Sign: models.SignCredit},
		{Name: "security deposit", Pattern: "DEPOSITO GARANTIA", Category: models.CategoryDepositIncome, Priority: 25, Sign: models.SignCredit},

		// Community of owners
		{Name: "community fee", Pattern: "COMUNIDAD DE PROPIETARIOS", Category: models.CategoryCommunityFee, Priority: 30},
		{Name: "community quota", Pattern: "CUOTA COMUNIDAD", Category: models.CategoryCommunityFee, Priority: 30},
		{Name: "community abbreviation", Pattern: `\bC\.?\s?P\.?\s+PROP`, Regex: true, Category: models.CategoryCommunityFee, Priority: 30},

		// Utilities
		{Name: "iberdrola", Pattern: "IBERDROLA", Category: models.CategoryUtilityExpense, Priority: 30},
		{Name: "endesa", Pattern: "ENDESA", Category: models.CategoryUtilityExpense, Priority: 30},
		{Name: "naturgy", Pattern: "NATURGY", Category: models.CategoryUtilityExpense, Priority: 30},
		{Name: "water", Pattern: `CANAL DE ISABEL|AGUAS DE|\bAGUA\b`, Regex: true, Category: models.CategoryUtilityExpense, Priority: 30},
		{Name: "telecom", Pattern: `MOVISTAR|TELEFONICA|VODAFONE|ORANGE`, Regex: true, Category: models.CategoryUtilityExpense, Priority: 30},
		{Name: "electricity", Pattern: "RECIBO LUZ", Category: models.CategoryUtilityExpense, Priority: 30},

		// Insurance
		{Name: "insurance", Pattern: "SEGURO", Category: models.CategoryInsurance, Priority: 35},
		{Name: "insurers", Pattern: `MAPFRE|ALLIANZ|\bAXA\b|MUTUA|GENERALI|LINEA DIRECTA`, Regex: true, Category: models.CategoryInsurance, Priority: 35},

		// Loans
		{Name: "mortgage", Pattern: "HIPOTECA", Category: models.CategoryLoanPayment, Priority: 40},
		{Name: "loan", Pattern: "PRESTAMO", Category: models.CategoryLoanPayment, Priority: 40},
		{Name: "amortization", Pattern: "AMORTIZACION", Category: models.CategoryLoanPayment, Priority: 40},
		{Name: "n43 loans", Pattern: "^05$", Regex: true, Field: models.FieldBankCode, Category: models.CategoryLoanPayment, Priority: 45},

		// Payroll
		{Name: "payroll", Pattern: "NOMINA", Category: models.CategoryPayroll, Priority: 40, Sign: models.SignDebit},
		{Name: "social security", Pattern: `SEGURIDAD SOCIAL|\bTGSS\b`, Regex: true, Category: models.CategoryPayroll, Priority: 40, Sign: models.SignDebit},

		// Maintenance
		{Name: "repairs", Pattern: `REPARACION|FONTANER|ELECTRICISTA|CERRAJER|PINTURA|REFORMA`, Regex: true, Category: models.CategoryMaintenanceExpense, Priority: 45, Sign: models.SignDebit},
		{Name: "maintenance", Pattern: "MANTENIMIENTO", Category: models.CategoryMaintenanceExpense, Priority: 50, Sign: models.SignDebit},

		// Rent
		{Name: "rent", Pattern: `ALQUILER|ARRENDAMIENTO|\bRENTA\b|MENSUALIDAD`, Regex: true, Category: models.CategoryRentIncome, Priority: 50, Sign: models.SignCredit},

		// Transfers last
		{Name: "transfer", Pattern: `TRANSFERENCIA|TRASPASO|\bTRANSF\b`, Regex: true, Category: models.CategoryTransfer, Priority: 90},
	}
}
