package provider

import "github.com/carbonlink/backend/internal/domain/identifier"

// errDataUnavailable is the provider's per-item and per-request "no data" code
const errDataUnavailable = "DATA_UNAVAILABLE"

type convertRequest struct {
	Scheme identifier.Scheme `json:"scheme"`
	IDs    []string          `json:"ids"`
}

type convertResponse struct {
	Results []convertResult `json:"results"`
}

type convertResult struct {
	Input      string                      `json:"input"`
	Name       string                      `json:"name"`
	Identities []identifier.IdentityRecord `json:"identities"`
	Error      string                      `json:"error,omitempty"`
}

type relatedResponse struct {
	Companies []relatedCompany `json:"companies"`
	Error     string           `json:"error,omitempty"`
}

type relatedCompany struct {
	ProviderID       string            `json:"providerId"`
	Name             string            `json:"name"`
	RelationshipType string            `json:"relationshipType"`
	Sector           string            `json:"sector"`
	Region           string            `json:"region"`
	Country          string            `json:"country"`
	Identifiers      map[string]string `json:"identifiers"`
}

func (c relatedCompany) toCandidate() identifier.Candidate {
	ids := make(map[identifier.Scheme]string, len(c.Identifiers))
	for scheme, value := range c.Identifiers {
		ids[identifier.Scheme(scheme)] = value
	}
	return identifier.Candidate{
		ProviderID:               c.ProviderID,
		Name:                     c.Name,
		ProviderRelationshipType: c.RelationshipType,
		Sector:                   c.Sector,
		Region:                   c.Region,
		Country:                  c.Country,
		Identifiers:              ids,
	}
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
