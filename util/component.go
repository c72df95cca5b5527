package util

import (
	"strings"

	"github.com/knqyf263/go-cpe/naming"
	"github.com/ortelius/pdvd-cvelookup/model"
	"github.com/package-url/packageurl-go"
)

const (
	purlPrefix  = "pkg:"
	cpe23Prefix = "cpe:2.3:"
)

// ParseComponent splits a component label into product and version. An explicit
// version wins. Package URLs and CPE 2.3 formatted strings are parsed
// structurally; anything else is split on whitespace with the last token taken
// as the version. Labels that fail structured parsing fall back to the
// whitespace rule, so parsing never fails.
func ParseComponent(label, version string) model.Component {
	label = strings.TrimSpace(label)
	comp := model.Component{Label: label}

	if version != "" {
		comp.Product = label
		comp.Version = strings.TrimSpace(version)
		return comp
	}

	switch {
	case strings.HasPrefix(label, purlPrefix):
		if c, ok := parsePURLComponent(label); ok {
			return c
		}
	case strings.HasPrefix(label, cpe23Prefix):
		if c, ok := parseCPEComponent(label); ok {
			return c
		}
	}

	comp.Product, comp.Version = SplitLabel(label)
	return comp
}

// SplitLabel splits a free-text label on whitespace. With two or more tokens the
// last one is the version and the rest, rejoined with single spaces, the product.
// A single token is a product without version.
func SplitLabel(label string) (product, version string) {
	parts := strings.Fields(label)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	}
	return strings.Join(parts[:len(parts)-1], " "), parts[len(parts)-1]
}

func parsePURLComponent(label string) (model.Component, bool) {
	parsed, err := packageurl.FromString(label)
	if err != nil || parsed.Name == "" {
		return model.Component{}, false
	}
	return model.Component{
		Label:     label,
		Product:   spaceSeparated(parsed.Name),
		Version:   parsed.Version,
		Ecosystem: strings.ToLower(parsed.Type),
	}, true
}

func parseCPEComponent(label string) (model.Component, bool) {
	wfn, err := naming.UnbindFS(label)
	if err != nil {
		return model.Component{}, false
	}
	product := Unescape(wfn.GetString("product"))
	if isLogicalValue(product) {
		return model.Component{}, false
	}
	version := Unescape(wfn.GetString("version"))
	if isLogicalValue(version) {
		version = ""
	}
	return model.Component{
		Label:   label,
		Product: spaceSeparated(product),
		Version: version,
	}, true
}

func isLogicalValue(v string) bool {
	return v == "" || v == "*" || v == "-" || v == model.VersionAny || v == model.VersionNA
}

// spaceSeparated turns package-style names (log4j-core, windows_8) into
// whitespace-separated tokens for search term generation.
func spaceSeparated(name string) string {
	return strings.Join(strings.FieldsFunc(name, func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	}), " ")
}
