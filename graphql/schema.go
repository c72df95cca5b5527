// Package graphql assembles the GraphQL schema of the lookup service.
package graphql

import (
	"github.com/graphql-go/graphql"
	"github.com/ortelius/pdvd-cvelookup/graphql/modules/lookup"
)

// CreateSchema builds the root schema with every query module mounted.
func CreateSchema(engine lookup.Engine) (graphql.Schema, error) {
	queryFields := graphql.Fields{}
	for name, field := range lookup.GetQueryFields(engine) {
		queryFields[name] = field
	}

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{
			Name:   "Query",
			Fields: queryFields,
		}),
	})
}
