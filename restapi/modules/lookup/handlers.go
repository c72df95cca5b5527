// Package lookup provides the REST handlers for component CVE lookups.
package lookup

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/ortelius/pdvd-cvelookup/database"
	"github.com/ortelius/pdvd-cvelookup/model"
	"github.com/ortelius/pdvd-cvelookup/util"
)

// Response formats of PostLookup.
const (
	FormatMap      = "map"
	FormatDetailed = "detailed"
	FormatOSV      = "osv"
)

// Engine is the part of the lookup engine the handlers need.
type Engine interface {
	Lookup(ctx context.Context, reqs []model.ComponentRequest) (*model.LookupResult, error)
	Describe(ctx context.Context, ids []string) ([]model.CVESummaryRecord, error)
}

// LookupRequest is the body of POST /api/v1/lookup. Components are plain labels;
// Items carry an already separated version.
type LookupRequest struct {
	Components []string                 `json:"components"`
	Items      []model.ComponentRequest `json:"items"`
}

func (r LookupRequest) requests() []model.ComponentRequest {
	reqs := make([]model.ComponentRequest, 0, len(r.Components)+len(r.Items))
	for _, c := range r.Components {
		reqs = append(reqs, model.ComponentRequest{Label: c})
	}
	return append(reqs, r.Items...)
}

// PostLookup resolves the posted components. The default response is the map of
// component to CVE ids with the reserved summary key; format=detailed returns the
// per-component details and format=osv the matched CVEs as OSV records.
func PostLookup(engine Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		format := strings.ToLower(c.Query("format", FormatMap))
		if format != FormatMap && format != FormatDetailed && format != FormatOSV {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Unknown format: " + format,
			})
		}

		var req LookupRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Invalid request body: " + err.Error(),
			})
		}
		reqs := req.requests()
		if len(reqs) == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "No components given",
			})
		}

		ctx := c.UserContext()
		result, err := engine.Lookup(ctx, reqs)
		if err != nil {
			return lookupError(c, err)
		}

		switch format {
		case FormatDetailed:
			return c.JSON(result)
		case FormatOSV:
			recs, err := engine.Describe(ctx, result.Summary)
			if err != nil {
				return lookupError(c, err)
			}
			return c.JSON(fiber.Map{"vulns": util.ToOSVList(recs)})
		}
		return c.JSON(result.AsMap())
	}
}

// GetCVE returns one CVE rendered as an OSV record.
func GetCVE(engine Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		recs, err := engine.Describe(c.UserContext(), []string{id})
		if err != nil {
			return lookupError(c, err)
		}
		if len(recs) == 0 {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "CVE not found: " + id,
			})
		}
		return c.JSON(util.ToOSV(recs[0]))
	}
}

func lookupError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	if errors.Is(err, database.ErrStoreUnavailable) {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": err.Error(),
	})
}
