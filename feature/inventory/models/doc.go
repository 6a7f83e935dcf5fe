// Package models defines the inventory tables and the views built from them.
package models
