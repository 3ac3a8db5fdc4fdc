package logging

// Standardized field names for structured logging.
const (
	FieldFile       = "file_path"
	FieldParser     = "parser"
	FieldFormat     = "format"
	FieldEncoding   = "encoding"
	FieldLine       = "line"
	FieldRecordType = "record_type"
	FieldPath       = "element_path"
	FieldAccount    = "account"
	FieldCategory   = "category"
	FieldRule       = "rule"
	FieldCompany    = "company_id"
	FieldResolution = "resolution"
	FieldWarning    = "warning"
	FieldImportID   = "import_id"
	FieldError      = "error"
	FieldCount      = "count"
	FieldStatements = "statements"
	FieldOutputFile = "output_file"
)
