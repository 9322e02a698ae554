// pkg/directory/winrm_test.go

package directory

import (
	"testing"

	"github.com/CodeMonkeyCybersecurity/argus/pkg/remote"
	cerr "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRecordsArray(t *testing.T) {
	out := `[{"Name":"CORP\\jdoe","ObjectClass":"User","Description":"","LastLogon":1724140800},
	{"Name":"WS-01\\svc_backup","ObjectClass":"User","Description":"backup agent","LastLogon":0}]`

	records, err := decodeRecords[localMemberRecord](out)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, `CORP\jdoe`, records[0].Name)
	assert.Equal(t, int64(1724140800), records[0].LastLogon)
	assert.Equal(t, "backup agent", records[1].Description)
}

func TestDecodeRecordsSingleObject(t *testing.T) {
	// ConvertTo-Json drops the array brackets for one-element pipelines.
	out := `{"Name":"CORP\\Domain Admins","ObjectClass":"Group","Description":"","LastLogon":0}`

	records, err := decodeRecords[localMemberRecord](out)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, `CORP\Domain Admins`, records[0].Name)
	assert.Equal(t, "Group", records[0].ObjectClass)
}

func TestDecodeRecordsEmpty(t *testing.T) {
	records, err := decodeRecords[localMemberRecord]("")
	require.NoError(t, err)
	assert.Empty(t, records)

	records, err = decodeRecords[localMemberRecord]("   \n  ")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestDecodeRecordsMalformed(t *testing.T) {
	_, err := decodeRecords[localMemberRecord](`{"Name": unterminated`)
	assert.Error(t, err)

	_, err = decodeRecords[localMemberRecord](`[{"Name":"x"}`)
	assert.Error(t, err)
}

func TestPSQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Administrators", "'Administrators'"},
		{"Remote Desktop Users", "'Remote Desktop Users'"},
		{"O'Brien", "'O''Brien'"},
		{"'; Remove-Item C:\\ #", "'''; Remove-Item C:\\ #'"},
		{"", "''"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, psQuote(tt.in), "psQuote(%q)", tt.in)
	}
}

func TestStderrClassification(t *testing.T) {
	notFound := &remote.RemoteError{
		Machine:  "WS-01",
		ExitCode: 1,
		Stderr:   `Get-LocalGroup : Group 'Administrat0rs' was not found. ... Microsoft.PowerShell.Commands.GroupNotFoundException`,
	}
	assert.True(t, isGroupNotFound(notFound))
	assert.True(t, isGroupNotFound(cerr.Wrap(notFound, "wrapped")))

	exists := &remote.RemoteError{
		Machine:  "WS-01",
		ExitCode: 1,
		Stderr:   `Add-LocalGroupMember : ... Microsoft.PowerShell.Commands.MemberExistsException`,
	}
	assert.False(t, isGroupNotFound(exists))
	assert.True(t, stderrContains(exists, "MemberExistsException"))

	assert.False(t, stderrContains(cerr.New("plain transport failure"), "GroupNotFoundException"))
	assert.False(t, stderrContains(nil, "GroupNotFoundException"))
}
