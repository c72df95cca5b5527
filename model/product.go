package model

import "encoding/json"

// MatchedProduct is the CPE dictionary entry chosen for a component.
// It is immutable once built; use NewMatchedProduct to create one.
type MatchedProduct struct {
	vendor  string
	product string
	version string
}

// NewMatchedProduct builds a MatchedProduct from a dictionary row.
func NewMatchedProduct(vendor, product, version string) MatchedProduct {
	return MatchedProduct{vendor: vendor, product: product, version: version}
}

// MatchedProductFromCPE builds a MatchedProduct from a CPERecord.
func MatchedProductFromCPE(rec CPERecord) MatchedProduct {
	return NewMatchedProduct(rec.Vendor, rec.Product, rec.Version)
}

// VendorName returns the dictionary vendor.
func (p MatchedProduct) VendorName() string { return p.vendor }

// ProductName returns the dictionary product.
func (p MatchedProduct) ProductName() string { return p.product }

// VersionNumber returns the escaped dictionary version.
func (p MatchedProduct) VersionNumber() string { return p.version }

// IsZero reports whether p was never set.
func (p MatchedProduct) IsZero() bool {
	return p.vendor == "" && p.product == "" && p.version == ""
}

// MarshalJSON exposes the otherwise unexported fields.
func (p MatchedProduct) MarshalJSON() ([]byte, error) {
	return json.Marshal(CPERecord{Vendor: p.vendor, Product: p.product, Version: p.version})
}
