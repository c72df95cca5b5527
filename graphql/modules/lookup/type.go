// Package lookup defines the GraphQL types and queries for CVE lookups.
package lookup

import (
	"github.com/graphql-go/graphql"
	"github.com/ortelius/pdvd-cvelookup/model"
	"github.com/ortelius/pdvd-cvelookup/util"
)

func productField(get func(model.MatchedProduct) string) *graphql.Field {
	return &graphql.Field{
		Type: graphql.String,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			if res, ok := p.Source.(model.ComponentResult); ok && res.Product != nil {
				return get(*res.Product), nil
			}
			return nil, nil
		},
	}
}

// ComponentLookupType is the outcome of resolving one component.
var ComponentLookupType = graphql.NewObject(graphql.ObjectConfig{
	Name: "ComponentLookup",
	Fields: graphql.Fields{
		"component": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if res, ok := p.Source.(model.ComponentResult); ok {
					return res.Input, nil
				}
				return nil, nil
			},
		},
		"requested_product": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if res, ok := p.Source.(model.ComponentResult); ok {
					return res.Component.Product, nil
				}
				return nil, nil
			},
		},
		"requested_version": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if res, ok := p.Source.(model.ComponentResult); ok {
					return res.Component.Version, nil
				}
				return nil, nil
			},
		},
		"vendor":           productField(model.MatchedProduct.VendorName),
		"product":          productField(model.MatchedProduct.ProductName),
		"version":          productField(model.MatchedProduct.VersionNumber),
		"cves":             &graphql.Field{Type: graphql.NewList(graphql.String)},
		"by_cpe":           &graphql.Field{Type: graphql.NewList(graphql.String)},
		"by_summary":       &graphql.Field{Type: graphql.NewList(graphql.String)},
		"nearest_versions": &graphql.Field{Type: graphql.NewList(graphql.String)},
		"outcome":          &graphql.Field{Type: graphql.String},
	},
})

// LookupReportType is the aggregate of a batch lookup.
var LookupReportType = graphql.NewObject(graphql.ObjectConfig{
	Name: "LookupReport",
	Fields: graphql.Fields{
		"summary": &graphql.Field{Type: graphql.NewList(graphql.String)},
		"components": &graphql.Field{
			Type: graphql.NewList(ComponentLookupType),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if res, ok := p.Source.(*model.LookupResult); ok {
					return res.Details, nil
				}
				return nil, nil
			},
		},
	},
})

// VulnerabilityType describes a CVE from the summary table.
var VulnerabilityType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Vulnerability",
	Fields: graphql.Fields{
		"cve_id":        &graphql.Field{Type: graphql.String},
		"summary":       &graphql.Field{Type: graphql.String},
		"cvss_v2_score": &graphql.Field{Type: graphql.String},
		"cvss_v3_score": &graphql.Field{Type: graphql.String},
		"severity_score": &graphql.Field{
			Type: graphql.Float,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if rec, ok := p.Source.(model.CVESummaryRecord); ok {
					if score, found := util.HighestScore(rec.CVSSv2, rec.CVSSv3); found {
						return score, nil
					}
				}
				return nil, nil
			},
		},
		"severity_rating": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if rec, ok := p.Source.(model.CVESummaryRecord); ok {
					score, _ := util.HighestScore(rec.CVSSv2, rec.CVSSv3)
					return util.GetSeverityRating(score), nil
				}
				return nil, nil
			},
		},
	},
})
