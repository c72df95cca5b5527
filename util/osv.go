package util

import (
	"github.com/google/osv-scanner/pkg/models"
	"github.com/ortelius/pdvd-cvelookup/model"
)

// ToOSV renders a CVE summary row as an OSV vulnerability. Raw CVSS columns are
// carried as severities and the derived base score and rating are placed in
// database_specific.
func ToOSV(rec model.CVESummaryRecord) models.Vulnerability {
	vuln := models.Vulnerability{
		ID:      rec.CveID,
		Details: rec.Summary,
	}

	if rec.CVSSv2 != "" {
		vuln.Severity = append(vuln.Severity, models.Severity{Type: models.SeverityCVSSV2, Score: rec.CVSSv2})
	}
	if rec.CVSSv3 != "" {
		vuln.Severity = append(vuln.Severity, models.Severity{Type: models.SeverityCVSSV3, Score: rec.CVSSv3})
	}

	score, ok := HighestScore(rec.CVSSv2, rec.CVSSv3)
	dbSpecific := map[string]interface{}{
		"severity_rating": GetSeverityRating(score),
	}
	if ok {
		dbSpecific["cvss_base_score"] = score
	}
	vuln.DatabaseSpecific = dbSpecific
	return vuln
}

// ToOSVList renders every row with ToOSV, preserving order.
func ToOSVList(recs []model.CVESummaryRecord) []models.Vulnerability {
	out := make([]models.Vulnerability, 0, len(recs))
	for _, rec := range recs {
		out = append(out, ToOSV(rec))
	}
	return out
}
