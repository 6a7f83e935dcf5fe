package inventory

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"nebula/core/response"
	"nebula/core/utils"
	"nebula/feature/inventory/models"
)

// RackInput is the body of rack create and update requests.
type RackInput struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

// ServerInput is the body of server create and update requests.
type ServerInput struct {
	RackID      *string `json:"rack_id"`
	Name        string  `json:"name"`
	IP          string  `json:"ip"`
	Description string  `json:"description"`
}

// ServiceInput is the body of service create and update requests.
// Numeric fields accept JSON numbers or numeric strings; blanks mean "unset".
type ServiceInput struct {
	ServerID    string `json:"server_id"`
	Name        string `json:"name"`
	VMID        any    `json:"vmid"`
	IP          string `json:"ip"`
	VLAN        any    `json:"vlan"`
	CPU         any    `json:"cpu"`
	RAM         any    `json:"ram"`
	Storage     any    `json:"storage"`
	Description string `json:"description"`
}

// NetworkDeviceInput is the body of network device create and update requests.
type NetworkDeviceInput struct {
	RackID *string `json:"rack_id"`
	Name   string  `json:"name"`
	IP     string  `json:"ip"`
	Model  string  `json:"model"`
	Type   string  `json:"type"`
	Brand  string  `json:"brand"`
	Serial string  `json:"serial"`
}

// Rack validates the input and converts it to a row.
func (in RackInput) Rack() (*models.Rack, error) {
	verr := response.NewValidationError()
	verr.Require("name", in.Name)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return &models.Rack{Name: in.Name, Location: in.Location}, nil
}

// Server validates the input and converts it to a row.
func (in ServerInput) Server() (*models.Server, error) {
	verr := response.NewValidationError()
	verr.Require("name", in.Name)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return &models.Server{
		RackID:      blankToNil(in.RackID),
		Name:        in.Name,
		IP:          in.IP,
		Description: in.Description,
	}, nil
}

// Service validates the input and converts it to a row.
// requireServer is false for updates, which never move a service.
func (in ServiceInput) Service(requireServer bool) (*models.Service, error) {
	verr := response.NewValidationError()
	verr.Require("name", in.Name)
	if requireServer {
		verr.Require("server_id", in.ServerID)
	}

	svc := &models.Service{
		ServerID:    in.ServerID,
		Name:        in.Name,
		VMID:        optionalInt(verr, "vmid", in.VMID),
		IP:          in.IP,
		VLAN:        optionalInt(verr, "vlan", in.VLAN),
		CPU:         optionalInt(verr, "cpu", in.CPU),
		RAM:         optionalFloat(verr, "ram", in.RAM),
		Storage:     optionalInt(verr, "storage", in.Storage),
		Description: in.Description,
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return svc, nil
}

// NetworkDevice validates the input and converts it to a row.
func (in NetworkDeviceInput) NetworkDevice() (*models.NetworkDevice, error) {
	verr := response.NewValidationError()
	verr.Require("name", in.Name)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return &models.NetworkDevice{
		RackID: blankToNil(in.RackID),
		Name:   in.Name,
		IP:     in.IP,
		Model:  in.Model,
		Type:   in.Type,
		Brand:  in.Brand,
		Serial: in.Serial,
	}, nil
}

// SettingsInput validates a settings body and renders every value as text.
func SettingsInput(body map[string]any) (map[string]string, error) {
	verr := response.NewValidationError()
	out := make(map[string]string, len(body))
	for k, v := range body {
		switch {
		case strings.TrimSpace(k) == "":
			verr.Add("key", "must not be empty")
		case IsManagedSetting(k):
			verr.Add(k, "is managed by the application")
		default:
			out[k] = utils.ToString(v)
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return out, nil
}

func blankToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

func isBlank(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

func optionalInt(verr *response.ValidationError, field string, v any) *int {
	if isBlank(v) {
		return nil
	}
	switch x := v.(type) {
	case float64:
		if x != math.Trunc(x) {
			verr.Add(field, "must be a whole number")
			return nil
		}
	case json.Number:
		if _, err := x.Int64(); err != nil {
			verr.Add(field, "must be a whole number")
			return nil
		}
	case string:
		if _, err := strconv.Atoi(strings.TrimSpace(x)); err != nil {
			verr.Add(field, "must be a whole number")
			return nil
		}
	default:
		verr.Add(field, "must be a number")
		return nil
	}
	n := utils.ToInt(v)
	return &n
}

func optionalFloat(verr *response.ValidationError, field string, v any) *float64 {
	if isBlank(v) {
		return nil
	}
	switch x := v.(type) {
	case float64, json.Number:
	case string:
		if _, err := strconv.ParseFloat(strings.TrimSpace(x), 64); err != nil {
			verr.Add(field, "must be a number")
			return nil
		}
	default:
		verr.Add(field, "must be a number")
		return nil
	}
	f := utils.ToFloat64(v)
	return &f
}
