package models

// Rack is a physical rack.
type Rack struct {
	ID       string `gorm:"column:id;primaryKey" json:"id"`
	Name     string `gorm:"column:name" json:"name"`
	Location string `gorm:"column:location" json:"location"`
}

// TableName overrides the table name.
func (Rack) TableName() string {
	return "racks"
}

// Server is a physical host, optionally mounted in a rack.
type Server struct {
	ID          string  `gorm:"column:id;primaryKey" json:"id"`
	RackID      *string `gorm:"column:rack_id;index" json:"rack_id"`
	Name        string  `gorm:"column:name" json:"name"`
	IP          string  `gorm:"column:ip" json:"ip"`
	Description string  `gorm:"column:description" json:"description"`
}

// TableName overrides the table name.
func (Server) TableName() string {
	return "servers"
}

// Service is a VM, container or application running on a server.
type Service struct {
	ID          string   `gorm:"column:id;primaryKey" json:"id"`
	ServerID    string   `gorm:"column:server_id;index" json:"server_id"`
	Name        string   `gorm:"column:name" json:"name"`
	VMID        *int     `gorm:"column:vmid" json:"vmid"`
	IP          string   `gorm:"column:ip" json:"ip"`
	VLAN        *int     `gorm:"column:vlan" json:"vlan"`
	CPU         *int     `gorm:"column:cpu" json:"cpu"`
	RAM         *float64 `gorm:"column:ram" json:"ram"`         // GB
	Storage     *int     `gorm:"column:storage" json:"storage"` // GB
	Description string   `gorm:"column:description" json:"description"`
}

// TableName overrides the table name.
func (Service) TableName() string {
	return "services"
}

// NetworkDevice is a switch, router, access point or similar.
// Rows with IsManual=false belong to the controller sync and are replaced on every pull.
type NetworkDevice struct {
	ID       string  `gorm:"column:id;primaryKey" json:"id"`
	RackID   *string `gorm:"column:rack_id;index" json:"rack_id"`
	Name     string  `gorm:"column:name" json:"name"`
	IP       string  `gorm:"column:ip" json:"ip"`
	Model    string  `gorm:"column:model" json:"model"`
	Type     string  `gorm:"column:type" json:"type"`
	Brand    string  `gorm:"column:brand" json:"brand"`
	Serial   string  `gorm:"column:serial" json:"serial"`
	IsManual bool    `gorm:"column:is_manual;type:integer;default:0" json:"is_manual"` // integer keeps legacy files unaltered
}

// TableName overrides the table name.
func (NetworkDevice) TableName() string {
	return "network_devices"
}

// Setting is a key/value pair. At most one row exists per key.
type Setting struct {
	Key   string `gorm:"column:key;primaryKey" json:"key"`
	Value string `gorm:"column:value" json:"value"`
}

// TableName overrides the table name.
func (Setting) TableName() string {
	return "settings"
}

// ServerView is a server with its services nested, as returned by the snapshot.
type ServerView struct {
	Server
	Services []Service `json:"services"`
}

// Snapshot is the complete inventory as served by GET /api/data.
type Snapshot struct {
	Racks          []Rack            `json:"racks"`
	Servers        []ServerView      `json:"servers"`
	Settings       map[string]string `json:"settings"`
	NetworkDevices []NetworkDevice   `json:"network_devices"`
}

// ExportRow is one service joined with its server, in export column order.
type ExportRow struct {
	ServerName  string   `gorm:"column:server_name"`
	ServerIP    string   `gorm:"column:server_ip"`
	Name        string   `gorm:"column:name"`
	VMID        *int     `gorm:"column:vmid"`
	IP          string   `gorm:"column:ip"`
	VLAN        *int     `gorm:"column:vlan"`
	CPU         *int     `gorm:"column:cpu"`
	RAM         *float64 `gorm:"column:ram"`
	Storage     *int     `gorm:"column:storage"`
	Description string   `gorm:"column:description"`
}

// All returns every table model in creation order.
func All() []any {
	return []any{&Rack{}, &Server{}, &Service{}, &NetworkDevice{}, &Setting{}}
}
