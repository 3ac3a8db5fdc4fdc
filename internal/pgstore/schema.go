package pgstore

// Schema creates the tables used by Store. Existing tables are left alone.
const Schema = `
CREATE TABLE IF NOT EXISTS companies (
	id   TEXT PRIMARY KEY,
	name TEXT NOT NULL DEFAULT '',
	iban TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS bank_statements (
	id                 UUID PRIMARY KEY,
	import_id          UUID NOT NULL,
	company_id         TEXT NOT NULL REFERENCES companies (id),
	format             TEXT NOT NULL,
	account_identifier TEXT NOT NULL,
	iban               TEXT NOT NULL DEFAULT '',
	bank_name          TEXT NOT NULL DEFAULT '',
	currency           CHAR(3) NOT NULL,
	opening_balance    NUMERIC(18, 2) NOT NULL,
	closing_balance    NUMERIC(18, 2),
	period_start       DATE,
	period_end         DATE,
	warnings           JSONB NOT NULL DEFAULT '[]',
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS bank_transactions (
	statement_id    UUID NOT NULL REFERENCES bank_statements (id) ON DELETE CASCADE,
	position        INTEGER NOT NULL,
	booking_date    DATE,
	value_date      DATE NOT NULL,
	amount          NUMERIC(18, 2) NOT NULL,
	currency        CHAR(3) NOT NULL,
	category        TEXT NOT NULL,
	description     TEXT NOT NULL DEFAULT '',
	reference       TEXT NOT NULL DEFAULT '',
	bank_code       TEXT NOT NULL DEFAULT '',
	counterparty    TEXT NOT NULL DEFAULT '',
	document_number TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (statement_id, position)
);
`
