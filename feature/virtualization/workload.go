package virtualization

// Workload is a VM or container found on a cluster node.
type Workload struct {
	VMID    int     `json:"vmid"`
	Name    string  `json:"name"`
	CPU     int     `json:"cpu"`
	RAM     float64 `json:"ram"`     // GiB, 2 decimals
	Storage float64 `json:"storage"` // GiB, 2 decimals
	Type    string  `json:"type"`    // qemu or lxc
}
