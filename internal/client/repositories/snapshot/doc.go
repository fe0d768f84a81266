// Package snapshot stores the dashboard's last synced issue list in SQLite.
// Issues are kept as their JSON wire form, in view order.
package snapshot
