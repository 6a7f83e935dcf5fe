// Package virtualization lists the VMs and containers of a Proxmox VE cluster.
//
// A listing logs in with POST /api2/json/access/ticket (the pam realm is added to
// bare user names, port 8006 to bare hosts), then walks /nodes and each node's qemu
// and lxc guests. The first failing call aborts the listing. Nothing is written to
// the inventory; the operator picks guests and creates services from them.
//
// Identical requests in flight at the same time are served by a single run.
package virtualization
