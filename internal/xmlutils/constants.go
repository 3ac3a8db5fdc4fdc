// Package xmlutils provides XML-related utility functions used throughout the application.
package xmlutils

// CAMT053 contains the XPath expressions read from CAMT.053 documents
// without a full unmarshal.
type CAMT053 struct {
	// GroupHeader contains XPath expressions for message-level data
	GroupHeader struct {
		MessageID string
	}
}

// DefaultCamt053XPaths returns a CAMT053 struct with the default XPath expressions
func DefaultCamt053XPaths() CAMT053 {
	camt := CAMT053{}
	camt.GroupHeader.MessageID = "/Document/BkToCstmrStmt/GrpHdr/MsgId"
	return camt
}
