package inventory

import (
	"errors"
	"testing"

	"nebula/core/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceInput(t *testing.T) {
	in := ServiceInput{ServerID: "srv_1", Name: "db", VMID: float64(100), VLAN: "20", CPU: "", RAM: "2.5", Storage: nil}
	svc, err := in.Service(true)
	require.NoError(t, err)
	assert.Equal(t, 100, *svc.VMID)
	assert.Equal(t, 20, *svc.VLAN)
	assert.Nil(t, svc.CPU)
	assert.Equal(t, 2.5, *svc.RAM)
	assert.Nil(t, svc.Storage)
}

func TestServiceInput_Invalid(t *testing.T) {
	in := ServiceInput{VMID: 1.5, CPU: "four", RAM: true}
	_, err := in.Service(true)

	var verr *response.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, map[string]string{
		"name":      "is required",
		"server_id": "is required",
		"vmid":      "must be a whole number",
		"cpu":       "must be a whole number",
		"ram":       "must be a number",
	}, verr.Fields)

	// Updates never need a server id
	_, err = ServiceInput{Name: "db"}.Service(false)
	assert.NoError(t, err)
}

func TestServerInput_BlankRack(t *testing.T) {
	blank := " "
	srv, err := ServerInput{Name: "S1", RackID: &blank}.Server()
	require.NoError(t, err)
	assert.Nil(t, srv.RackID)
}

func TestSettingsInput(t *testing.T) {
	out, err := SettingsInput(map[string]any{"palette": "red", "columns": float64(3), "compact": true})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"palette": "red", "columns": "3", "compact": "true"}, out)

	_, err = SettingsInput(map[string]any{SettingUnifiPass: "x"})
	var verr *response.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, SettingUnifiPass)
}
