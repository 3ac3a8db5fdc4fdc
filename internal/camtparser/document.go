package camtparser

import (
	"encoding/xml"
	"strings"

	"inmova/bank-import/internal/xmlutils"
)

// document is the subset of an ISO 20022 camt.053 message the parser reads.
// Tags carry no namespace so every camt.053.001.xx version matches.
type document struct {
	XMLName       xml.Name `xml:"Document"`
	BkToCstmrStmt struct {
		Stmt []statement `xml:"Stmt"`
	} `xml:"BkToCstmrStmt"`
}

type statement struct {
	ID     string    `xml:"Id"`
	FrToDt *period   `xml:"FrToDt"`
	Acct   *account  `xml:"Acct"`
	Bal    []balance `xml:"Bal"`
	Ntry   []entry   `xml:"Ntry"`
}

type period struct {
	FrDtTm string `xml:"FrDtTm"`
	ToDtTm string `xml:"ToDtTm"`
}

type account struct {
	ID struct {
		IBAN string `xml:"IBAN"`
		Othr struct {
			ID string `xml:"Id"`
		} `xml:"Othr"`
	} `xml:"Id"`
	Ccy  string `xml:"Ccy"`
	Ownr struct {
		Nm string `xml:"Nm"`
	} `xml:"Ownr"`
	Svcr struct {
		FinInstnID struct {
			BIC string `xml:"BIC"`
			Nm  string `xml:"Nm"`
		} `xml:"FinInstnId"`
	} `xml:"Svcr"`
}

func (a *account) identifier() string {
	if iban := strings.TrimSpace(a.ID.IBAN); iban != "" {
		return iban
	}
	return strings.TrimSpace(a.ID.Othr.ID)
}

type balance struct {
	Tp struct {
		CdOrPrtry struct {
			Cd    string `xml:"Cd"`
			Prtry string `xml:"Prtry"`
		} `xml:"CdOrPrtry"`
	} `xml:"Tp"`
	Amt       *amount `xml:"Amt"`
	CdtDbtInd string  `xml:"CdtDbtInd"`
	Dt        date    `xml:"Dt"`
}

func (b balance) code() string {
	return strings.TrimSpace(b.Tp.CdOrPrtry.Cd)
}

type amount struct {
	Value string `xml:",chardata"`
	Ccy   string `xml:"Ccy,attr"`
}

// date is the ISO 20022 DateAndDateTimeChoice.
type date struct {
	Dt   string `xml:"Dt"`
	DtTm string `xml:"DtTm"`
}

func (d date) raw() string {
	if s := strings.TrimSpace(d.Dt); s != "" {
		return s
	}
	return strings.TrimSpace(d.DtTm)
}

type entry struct {
	NtryRef      string     `xml:"NtryRef"`
	Amt          *amount    `xml:"Amt"`
	CdtDbtInd    string     `xml:"CdtDbtInd"`
	BookgDt      *date      `xml:"BookgDt"`
	ValDt        *date      `xml:"ValDt"`
	AcctSvcrRef  string     `xml:"AcctSvcrRef"`
	BkTxCd       bankTxCode `xml:"BkTxCd"`
	NtryDtls     []details  `xml:"NtryDtls"`
	AddtlNtryInf string     `xml:"AddtlNtryInf"`
}

type bankTxCode struct {
	Domn struct {
		Cd   string `xml:"Cd"`
		Fmly struct {
			Cd        string `xml:"Cd"`
			SubFmlyCd string `xml:"SubFmlyCd"`
		} `xml:"Fmly"`
	} `xml:"Domn"`
	Prtry struct {
		Cd string `xml:"Cd"`
	} `xml:"Prtry"`
}

type details struct {
	TxDtls []txDetails `xml:"TxDtls"`
}

type txDetails struct {
	Refs struct {
		AcctSvcrRef string `xml:"AcctSvcrRef"`
		EndToEndID  string `xml:"EndToEndId"`
		TxID        string `xml:"TxId"`
	} `xml:"Refs"`
	RmtInf struct {
		Ustrd []string `xml:"Ustrd"`
		Strd  []struct {
			CdtrRefInf struct {
				Ref string `xml:"Ref"`
			} `xml:"CdtrRefInf"`
		} `xml:"Strd"`
	} `xml:"RmtInf"`
	RltdPties struct {
		Dbtr      party `xml:"Dbtr"`
		UltmtDbtr party `xml:"UltmtDbtr"`
		Cdtr      party `xml:"Cdtr"`
		UltmtCdtr party `xml:"UltmtCdtr"`
	} `xml:"RltdPties"`
	AddtlTxInf string `xml:"AddtlTxInf"`
}

type party struct {
	Nm string `xml:"Nm"`
}

const notProvided = "NOTPROVIDED"

func (e *entry) transactions() []txDetails {
	var all []txDetails
	for _, d := range e.NtryDtls {
		all = append(all, d.TxDtls...)
	}
	return all
}

// bookingOrValueDate returns the value date, falling back to the booking
// date, and the element name it came from.
func (e *entry) bookingOrValueDate() (string, string) {
	if e.ValDt != nil && e.ValDt.raw() != "" {
		return e.ValDt.raw(), "ValDt"
	}
	if e.BookgDt != nil && e.BookgDt.raw() != "" {
		return e.BookgDt.raw(), "BookgDt"
	}
	return "", ""
}

// description joins the unstructured remittance lines of every transaction
// detail, then falls back to additional transaction and entry information.
func (e *entry) description() string {
	txs := e.transactions()

	var lines []string
	for _, tx := range txs {
		for _, u := range tx.RmtInf.Ustrd {
			if s := xmlutils.CleanText(u); s != "" {
				lines = append(lines, s)
			}
		}
	}
	if len(lines) > 0 {
		return strings.Join(lines, " ")
	}
	for _, tx := range txs {
		if s := xmlutils.CleanText(tx.AddtlTxInf); s != "" {
			return s
		}
	}
	return xmlutils.CleanText(e.AddtlNtryInf)
}

// reference prefers the structured creditor reference, then the end-to-end
// id, then the servicer and entry references.
func (e *entry) reference() string {
	txs := e.transactions()
	for _, tx := range txs {
		for _, strd := range tx.RmtInf.Strd {
			if ref := strings.TrimSpace(strd.CdtrRefInf.Ref); ref != "" {
				return ref
			}
		}
	}
	for _, tx := range txs {
		if ref := strings.TrimSpace(tx.Refs.EndToEndID); ref != "" && !strings.EqualFold(ref, notProvided) {
			return ref
		}
	}
	if ref := strings.TrimSpace(e.AcctSvcrRef); ref != "" {
		return ref
	}
	for _, tx := range txs {
		if ref := strings.TrimSpace(tx.Refs.AcctSvcrRef); ref != "" {
			return ref
		}
	}
	return strings.TrimSpace(e.NtryRef)
}

// bankCode renders the bank transaction code as Domain/Family/SubFamily, or
// the proprietary code.
func (e *entry) bankCode() string {
	domn := e.BkTxCd.Domn
	if domn.Cd != "" {
		parts := []string{domn.Cd}
		if domn.Fmly.Cd != "" {
			parts = append(parts, domn.Fmly.Cd)
		}
		if domn.Fmly.SubFmlyCd != "" {
			parts = append(parts, domn.Fmly.SubFmlyCd)
		}
		return strings.Join(parts, "/")
	}
	return strings.TrimSpace(e.BkTxCd.Prtry.Cd)
}

// counterparty is the debtor of a credit or the creditor of a debit.
func (e *entry) counterparty(credit bool) string {
	for _, tx := range e.transactions() {
		candidates := []party{tx.RltdPties.UltmtCdtr, tx.RltdPties.Cdtr}
		if credit {
			candidates = []party{tx.RltdPties.UltmtDbtr, tx.RltdPties.Dbtr}
		}
		for _, p := range candidates {
			if name := xmlutils.CleanText(p.Nm); name != "" {
				return name
			}
		}
	}
	return ""
}
