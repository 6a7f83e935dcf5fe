package inventory

import (
	"bytes"
	"strings"
	"testing"

	"nebula/feature/inventory/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func exportFixture() []models.ExportRow {
	vmid, cpu, storage := 101, 2, 32
	ram := 4.5
	return []models.ExportRow{
		{ServerName: "S1", ServerIP: "10.0.0.5", Name: "web, frontend", VMID: &vmid, IP: "10.0.0.50", CPU: &cpu, RAM: &ram, Storage: &storage, Description: "nginx"},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, exportFixture()))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Server Name,Server IP,Service Name,VM ID,Service IP,VLAN,CPU,RAM (GB),Storage (GB),Description", lines[0])
	assert.Equal(t, `S1,10.0.0.5,"web, frontend",101,10.0.0.50,,2,4.5,32,nginx`, lines[1])
}

func TestWriteCSV_HeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, strings.Join(ExportHeader, ",")+"\n", buf.String())
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, exportFixture()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, ExportHeader, rows[0])
	assert.Equal(t, "S1", rows[1][0])
	assert.Equal(t, "101", rows[1][3])
	assert.Equal(t, "4.5", rows[1][7])
}
