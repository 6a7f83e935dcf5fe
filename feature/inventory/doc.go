// Package inventory implements the racks, servers, services, network devices and
// settings of the datacenter inventory.
//
// # Integrity rules
//
//   - Deleting a server deletes its services.
//   - Deleting a rack deletes its servers and their services by default; with
//     ?cascade=false the servers are detached instead. Network devices in the rack
//     are always detached.
//   - Updates replace every mutable field. Omitted optional fields become empty.
//     Updating an unknown id succeeds without effect.
//   - Network devices created through the API are manual and survive every
//     controller sync.
//
// # Reset and seed
//
// Init creates the schema, writes the default palette and seeds srv_demo and
// net_demo on a fresh database. Reset wipes all inventory tables, reseeds the
// demo rows and sets user_cleared so later starts do not seed again.
//
// # Export
//
// GET /api/export/csv and /api/export/xlsx list every service next to its server.
package inventory
