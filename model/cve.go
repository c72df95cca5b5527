package model

// Version sentinels used by the CVE table in place of a concrete version.
const (
	VersionAny = "ANY"
	VersionNA  = "NA"
)

// CVERecord is a row of the CVE table associating a vulnerability with a product identity.
type CVERecord struct {
	CveID                 string `json:"cve_id"`
	Vendor                string `json:"vendor"`
	Product               string `json:"product"`
	Version               string `json:"version"`
	CVSSv2                string `json:"cvss_v2_score,omitempty"`
	CVSSv3                string `json:"cvss_v3_score,omitempty"`
	VersionStartIncluding string `json:"version_start_including,omitempty"`
	VersionStartExcluding string `json:"version_start_excluding,omitempty"`
	VersionEndIncluding   string `json:"version_end_including,omitempty"`
	VersionEndExcluding   string `json:"version_end_excluding,omitempty"`
}

// HasRange reports whether any of the range bound columns is populated.
func (r CVERecord) HasRange() bool {
	return r.VersionStartIncluding != "" || r.VersionStartExcluding != "" ||
		r.VersionEndIncluding != "" || r.VersionEndExcluding != ""
}

// CVESummaryRecord is a row of the summary table holding the free-text description of a CVE.
type CVESummaryRecord struct {
	CveID   string `json:"cve_id"`
	Summary string `json:"summary"`
	CVSSv2  string `json:"cvss_v2_score,omitempty"`
	CVSSv3  string `json:"cvss_v3_score,omitempty"`
}
