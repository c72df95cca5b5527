// Package model defines the reference rows read from the CPE/CVE store and the lookup results built from them.
package model

// CPERecord is one distinct (vendor, product, version) row of the CPE dictionary.
// Vendor and product are lowercase and underscore-joined; the version is kept in
// its escaped form (e.g. 1\.2\.5).
type CPERecord struct {
	Vendor  string `json:"vendor" db:"vendor"`
	Product string `json:"product" db:"product"`
	Version string `json:"version" db:"version"`
}
