package identifier

import "strings"

// ExtractCompanyIdentifier normalizes a resolved provider answer. Records
// without identities or without a name are not usable and report false. For each scheme the value supplied in the
// original request wins over the provider's identity list, and a scheme missing
// from both leaves the field empty.
func ExtractCompanyIdentifier(res Resolution) (CompanyIdentifier, bool) {
	if res.Outcome != OutcomeResolved || len(res.Identities) == 0 || strings.TrimSpace(res.Name) == "" {
		return CompanyIdentifier{}, false
	}

	return CompanyIdentifier{
		ExternalID:  resolveValue(res.Input, res.Identities, SchemeDUNS),
		SecondaryID: resolveValue(res.Input, res.Identities, SchemeProviderID),
		Name:        res.Name,
		Identities:  res.Identities,
	}, true
}

// ExtractCandidate normalizes a related-company candidate. The top-level
// provider id wins over the nested identifier map.
func ExtractCandidate(c Candidate) CompanyIdentifier {
	secondary := c.ProviderID
	if secondary == "" {
		secondary = c.Identifiers[SchemeProviderID]
	}

	identities := make([]IdentityRecord, 0, len(c.Identifiers))
	for _, scheme := range []Scheme{SchemeDUNS, SchemeProviderID} {
		if v, ok := c.Identifiers[scheme]; ok && v != "" {
			identities = append(identities, IdentityRecord{Scheme: scheme, Value: v, Active: true})
		}
	}

	return CompanyIdentifier{
		ExternalID:  c.Identifiers[SchemeDUNS],
		SecondaryID: secondary,
		Name:        c.Name,
		Identities:  identities,
	}
}

func resolveValue(input Reference, identities []IdentityRecord, scheme Scheme) string {
	if input.Scheme == scheme && input.Value != "" {
		return input.Value
	}
	return pickIdentity(identities, scheme)
}

// pickIdentity prefers a primary active record, then any active one, then the first match.
func pickIdentity(identities []IdentityRecord, scheme Scheme) string {
	var active, first string
	for _, rec := range identities {
		if rec.Scheme != scheme || rec.Value == "" {
			continue
		}
		if rec.Primary && rec.Active {
			return rec.Value
		}
		if rec.Active && active == "" {
			active = rec.Value
		}
		if first == "" {
			first = rec.Value
		}
	}
	if active != "" {
		return active
	}
	return first
}

// Classification splits provider answers into the three outcome classes.
// Entries are positions in the classified slice, so callers can pair each
// answer with the request that produced it.
type Classification struct {
	Resolved    []int
	Unavailable []int
	Failed      []int
}

// Classify groups resolutions by outcome, keeping input order within each
// class. A resolution without a recognised outcome counts as failed.
func Classify(results []Resolution) Classification {
	var c Classification
	for i, res := range results {
		switch res.Outcome {
		case OutcomeResolved:
			c.Resolved = append(c.Resolved, i)
		case OutcomeUnavailable:
			c.Unavailable = append(c.Unavailable, i)
		default:
			c.Failed = append(c.Failed, i)
		}
	}
	return c
}
