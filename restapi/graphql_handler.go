// Package restapi provides HTTP handlers for the REST API including GraphQL support.
package restapi

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"
	"go.uber.org/zap"
)

type graphQLRequest struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

func graphQLError(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"errors": []map[string]interface{}{{"message": msg}},
	})
}

// GraphQLHandler executes GraphQL requests sent as a JSON body (POST) or as
// query, operationName and variables parameters (GET).
func GraphQLHandler(schema graphql.Schema, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var params graphQLRequest
		if c.Method() == fiber.MethodGet {
			params.Query = c.Query("query")
			params.OperationName = c.Query("operationName")
			if vars := c.Query("variables"); vars != "" {
				if err := json.Unmarshal([]byte(vars), &params.Variables); err != nil {
					return graphQLError(c, "Invalid variables")
				}
			}
		} else if err := c.BodyParser(&params); err != nil {
			return graphQLError(c, "Invalid request body")
		}
		if params.Query == "" {
			return graphQLError(c, "Missing query")
		}

		opName := params.OperationName
		if opName == "" {
			opName = "-"
		}
		c.Locals("graphql_op", opName)

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  params.Query,
			VariableValues: params.Variables,
			OperationName:  params.OperationName,
			Context:        c.UserContext(),
		})
		if result.HasErrors() {
			logger.Warn("GraphQL request failed", zap.String("operation", opName), zap.Any("errors", result.Errors))
		}

		return c.JSON(result)
	}
}
