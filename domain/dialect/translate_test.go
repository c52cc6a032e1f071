package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranslate_Postgres(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"NVARCHAR2(80)", "VARCHAR(80)"},
		{"NVARCHAR(40)", "VARCHAR(40)"},
		{"NVARCHAR2", "VARCHAR(255)"},
		{"VARCHAR2(100)", "VARCHAR(100)"},
		{"varchar2(50)", "VARCHAR(50)"},
		{"NCHAR(10)", "CHAR(10)"},
		{"CHAR(20)", "CHAR(20)"},
		{"NUMBER(10)", "NUMERIC(10)"},
		{"NUMBER(10,2)", "NUMERIC(10,2)"},
		{"NUMBER", "NUMERIC"},
		{"INTEGER", "INTEGER"},
		{"DECIMAL(10,2)", "NUMERIC(10,2)"},
		{"FLOAT", "REAL"},
		{"BINARY_FLOAT", "REAL"},
		{"BINARY_DOUBLE", "DOUBLE PRECISION"},
		{"DATE", "TIMESTAMP"},
		{"TIMESTAMP", "TIMESTAMP"},
		{"TIMESTAMP(6) WITH TIME ZONE", "TIMESTAMP"},
		{"CLOB", "TEXT"},
		{"NCLOB", "TEXT"},
		{"LONG", "TEXT"},
		{"BLOB", "BYTEA"},
		{"RAW(100)", "BYTEA"},
		{"LONG RAW", "BYTEA"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Translate(tt.in, Postgres)
			assert.Equal(t, tt.want, got.Type())
			assert.True(t, got.Exact())
			assert.Equal(t, tt.in, got.Source())
		})
	}
}

func TestTranslate_PostgresPassesThroughUnknown(t *testing.T) {
	got := Translate("XMLTYPE", Postgres)
	assert.Equal(t, "XMLTYPE", got.Type())
	assert.False(t, got.Exact())

	got = Translate("UNKNOWN", Postgres)
	assert.Equal(t, "UNKNOWN", got.Type())
	assert.False(t, got.Exact())
}

func TestTranslate_PostgresIsIdempotent(t *testing.T) {
	inputs := []string{
		"NVARCHAR2(80)", "VARCHAR2(100)", "NCHAR(10)", "NUMBER(10,2)", "NUMBER",
		"DECIMAL(12,4)", "BINARY_DOUBLE", "FLOAT", "DATE", "CLOB", "RAW(16)", "XMLTYPE",
	}
	for _, in := range inputs {
		once := Translate(in, Postgres).Type()
		twice := Translate(once, Postgres).Type()
		assert.Equal(t, once, twice, "re-translating %q", in)
	}
}

func TestTranslate_Oracle(t *testing.T) {
	assert.Equal(t, "CHAR(10)", Translate("NCHAR(10)", Oracle).Type())
	assert.Equal(t, "NVARCHAR2(40)", Translate("NVARCHAR2(40)", Oracle).Type())
	assert.Equal(t, "NUMBER(10,2)", Translate("NUMBER(10,2)", Oracle).Type())
	assert.True(t, Translate("CLOB", Oracle).Exact())
}

func TestTranslate_UnknownDialect(t *testing.T) {
	got := Translate("VARCHAR2(10)", Parse("mysql"))
	assert.Equal(t, "VARCHAR2(10)", got.Type())
	assert.False(t, got.Exact())
}

func TestTranslate_Deterministic(t *testing.T) {
	a := Translate("NUMBER(5)", Postgres)
	_ = Translate("CLOB", Postgres)
	b := Translate("NUMBER(5)", Postgres)
	assert.Equal(t, a, b)
}

func TestParse(t *testing.T) {
	assert.Equal(t, Postgres, Parse("postgres"))
	assert.Equal(t, Postgres, Parse("PostgreSQL"))
	assert.Equal(t, Oracle, Parse(" ORACLE "))
	assert.True(t, Postgres.Known())

	mysql := Parse("MySQL")
	assert.False(t, mysql.Known())
	assert.Equal(t, "mysql", mysql.String())
	assert.True(t, Parse("").IsZero())
}
