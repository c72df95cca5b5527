// Package restapi provides the main router and initialization for REST API endpoints.
package restapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"
	"github.com/ortelius/pdvd-cvelookup/restapi/modules/lookup"
	"go.uber.org/zap"
)

// SetupRoutes configures all REST API routes and the GraphQL endpoint.
func SetupRoutes(app *fiber.App, engine lookup.Engine, schema graphql.Schema, logger *zap.Logger) {
	// API Group /api/v1
	api := app.Group("/api/v1")

	gql := GraphQLHandler(schema, logger)
	api.Post("/graphql", gql)
	api.Get("/graphql", gql)

	api.Post("/lookup", lookup.PostLookup(engine))
	api.Get("/cve/:id", lookup.GetCVE(engine))

	logger.Info("API routes initialized successfully")
}
