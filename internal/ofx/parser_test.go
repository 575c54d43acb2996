package ofx

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBankOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20250315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20250101120000[0:GMT]
<DTEND>20250131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20250115120000[0:GMT]
<TRNAMT>-42.10
<FITID>2025011501
<NAME>SHELL OIL #1234 FL
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20250120120000[0:GMT]
<TRNAMT>1200.00
<FITID>2025012001
<NAME>STRIPE TRANSFER
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20250125120000[0:GMT]
<TRNAMT>-15.00
<FITID>2025012501
<NAME>DEBIT
<MEMO>NETFLIX.COM
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20250131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

func TestParseFile(t *testing.T) {
	parser := NewParser()

	transactions, err := parser.ParseFile(strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	require.Len(t, transactions, 3)

	// Signed amounts are preserved: negative out, positive in.
	assert.Equal(t, "2025011501", transactions[0].ID)
	assert.Equal(t, "SHELL OIL #1234 FL", transactions[0].Description)
	assert.Equal(t, -42.10, transactions[0].Amount)
	assert.Equal(t, 2025, transactions[0].Date.Year())

	assert.Equal(t, "STRIPE TRANSFER", transactions[1].Description)
	assert.Equal(t, 1200.00, transactions[1].Amount)

	// Generic NAME falls back to MEMO.
	assert.Equal(t, "NETFLIX.COM", transactions[2].Description)
}

func TestParseFileLeadingBlankLines(t *testing.T) {
	parser := NewParser()

	transactions, err := parser.ParseFile(strings.NewReader("\n\n  " + sampleBankOFX))
	require.NoError(t, err)
	assert.Len(t, transactions, 3)
}

func TestParseFileMixedCaseSeverity(t *testing.T) {
	parser := NewParser()
	fixed := strings.ReplaceAll(sampleBankOFX, "<SEVERITY>INFO", "<SEVERITY>Info")

	transactions, err := parser.ParseFile(strings.NewReader(fixed))
	require.NoError(t, err)
	assert.Len(t, transactions, 3)
}

func TestPreprocessSeverity(t *testing.T) {
	parser := NewParser()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "sgml value line", input: "<SEVERITY>Info", want: "<SEVERITY>INFO"},
		{name: "sgml lower tag", input: "<severity>warn", want: "<SEVERITY>WARN"},
		{name: "xml closed tag", input: "<SEVERITY>Error</SEVERITY>", want: "<SEVERITY>ERROR</SEVERITY>"},
		{name: "already upper", input: "<SEVERITY>INFO", want: "<SEVERITY>INFO"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parser.preprocessOFX("<STATUS>\n" + tt.input + "\n</STATUS>")
			assert.Contains(t, got, tt.want)
		})
	}
}

func TestParseFileInvalidContent(t *testing.T) {
	parser := NewParser()

	_, err := parser.ParseFile(strings.NewReader("this is not an OFX file"))
	require.Error(t, err)
}

func TestIsGenericDescription(t *testing.T) {
	assert.True(t, isGenericDescription("DEBIT"))
	assert.True(t, isGenericDescription(" purchase "))
	assert.True(t, isGenericDescription("POS TRANSACTION"))
	assert.False(t, isGenericDescription("SHELL OIL"))
	assert.False(t, isGenericDescription(""))
}
