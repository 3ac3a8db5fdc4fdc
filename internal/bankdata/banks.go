// Package bankdata holds the static reference data used to enrich parsed
// statements: Spanish bank entity names, ISO 4217 numeric currency codes and
// IBAN/CCC arithmetic.
package bankdata

import "strings"

// spanishBanks maps the 4-digit entity code of a Spanish account (CCC/IBAN
// positions 5-8) to the bank's commercial name.
var spanishBanks = map[string]string{
	"0019": "Deutsche Bank",
	"0030": "Banco Español de Crédito",
	"0049": "Banco Santander",
	"0061": "Banca March",
	"0065": "Barclays Bank",
	"0073": "Openbank",
	"0075": "Banco Popular Español",
	"0081": "Banco de Sabadell",
	"0128": "Bankinter",
	"0131": "Novo Banco",
	"0138": "Bankoa",
	"0182": "Banco Bilbao Vizcaya Argentaria",
	"0186": "Banco Mediolanum",
	"0198": "Banco Cooperativo Español",
	"0216": "Targobank",
	"0234": "Banco Caminos",
	"0237": "Cajasur Banco",
	"0239": "EVO Banco",
	"0487": "Banco Mare Nostrum",
	"1465": "ING Bank",
	"2038": "Bankia",
	"2048": "Liberbank",
	"2080": "Abanca",
	"2085": "Ibercaja Banco",
	"2095": "Kutxabank",
	"2100": "CaixaBank",
	"2103": "Unicaja Banco",
	"3025": "Caixa de Crèdit dels Enginyers",
	"3058": "Cajamar Caja Rural",
	"3081": "Eurocaja Rural",
	"3187": "Caja Rural del Sur",
}

// BankName returns the name registered for a Spanish entity code. ok is false
// for unknown codes.
func BankName(entityCode string) (name string, ok bool) {
	name, ok = spanishBanks[strings.TrimSpace(entityCode)]
	return name, ok
}

// BankNameFromIBAN looks up the bank of a Spanish IBAN. Non-Spanish IBANs
// return ok == false.
func BankNameFromIBAN(iban string) (string, bool) {
	normalized := NormalizeAccount(iban)
	if len(normalized) != spanishIBANLength || !strings.HasPrefix(normalized, "ES") {
		return "", false
	}
	return BankName(normalized[4:8])
}
