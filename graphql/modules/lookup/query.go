package lookup

import (
	"github.com/graphql-go/graphql"
)

// GetQueryFields returns the lookup queries to be mounted in the root schema.
func GetQueryFields(engine Engine) graphql.Fields {
	return graphql.Fields{
		"cveLookup": &graphql.Field{
			Type: LookupReportType,
			Args: graphql.FieldConfigArgument{
				"components": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.String)))},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return ResolveLookup(p.Context, engine, stringArgs(p.Args["components"]))
			},
		},
		"cveDetails": &graphql.Field{
			Type: graphql.NewList(VulnerabilityType),
			Args: graphql.FieldConfigArgument{
				"ids": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.String)))},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return ResolveDetails(p.Context, engine, stringArgs(p.Args["ids"]))
			},
		},
	}
}
