package identifier

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractCompanyIdentifier(t *testing.T) {
	t.Run("prefers requested value and primary active remote id", func(t *testing.T) {
		res := Resolution{
			Input:   Reference{Scheme: SchemeDUNS, Value: "123456789"},
			Outcome: OutcomeResolved,
			Name:    "Acme Steel",
			Identities: []IdentityRecord{
				{Scheme: SchemeDUNS, Value: "999999999", Active: true, Primary: true},
				{Scheme: SchemeProviderID, Value: "111", Active: false},
				{Scheme: SchemeProviderID, Value: "222", Active: true, Primary: true},
			},
		}

		id, ok := ExtractCompanyIdentifier(res)
		require.True(t, ok)
		assert.Equal(t, "123456789", id.ExternalID)
		assert.Equal(t, "222", id.SecondaryID)
		assert.Equal(t, "Acme Steel", id.Name)
		assert.Len(t, id.Identities, 3)
	})

	t.Run("missing secondary scheme degrades to empty", func(t *testing.T) {
		res := Resolution{
			Input:      Reference{Scheme: SchemeDUNS, Value: "123"},
			Outcome:    OutcomeResolved,
			Name:       "No Graph Id",
			Identities: []IdentityRecord{{Scheme: SchemeDUNS, Value: "123", Active: true}},
		}

		id, ok := ExtractCompanyIdentifier(res)
		require.True(t, ok)
		assert.False(t, id.HasSecondaryID())
		assert.Equal(t, "123", id.ExternalID)
	})

	t.Run("missing canonical scheme falls back to request", func(t *testing.T) {
		res := Resolution{
			Input:      Reference{Scheme: SchemeDUNS, Value: "555"},
			Outcome:    OutcomeResolved,
			Name:       "Remote Only",
			Identities: []IdentityRecord{{Scheme: SchemeProviderID, Value: "777", Active: true}},
		}

		id, ok := ExtractCompanyIdentifier(res)
		require.True(t, ok)
		assert.Equal(t, "555", id.ExternalID)
		assert.Equal(t, "777", id.SecondaryID)
	})

	t.Run("inactive only", func(t *testing.T) {
		res := Resolution{
			Input:   Reference{Scheme: SchemeDUNS, Value: "1"},
			Outcome: OutcomeResolved,
			Name:    "Dormant Ltd",
			Identities: []IdentityRecord{
				{Scheme: SchemeProviderID, Value: "old"},
				{Scheme: SchemeProviderID, Value: "older"},
			},
		}
		id, ok := ExtractCompanyIdentifier(res)
		require.True(t, ok)
		assert.Equal(t, "old", id.SecondaryID)
	})

	t.Run("duplicate identity entries are kept", func(t *testing.T) {
		res := Resolution{
			Input:   Reference{Scheme: SchemeDUNS, Value: "1"},
			Outcome: OutcomeResolved,
			Name:    "Twice Listed",
			Identities: []IdentityRecord{
				{Scheme: SchemeProviderID, Value: "9", Active: true},
				{Scheme: SchemeProviderID, Value: "9", Active: true},
			},
		}
		id, ok := ExtractCompanyIdentifier(res)
		require.True(t, ok)
		assert.Equal(t, "9", id.SecondaryID)
		assert.Len(t, id.Identities, 2)
	})

	t.Run("empty identity list is skipped", func(t *testing.T) {
		_, ok := ExtractCompanyIdentifier(Resolution{
			Input:   Reference{Scheme: SchemeDUNS, Value: "1"},
			Outcome: OutcomeResolved,
			Name:    "Ghost",
		})
		assert.False(t, ok)
	})

	t.Run("missing name is skipped", func(t *testing.T) {
		for _, name := range []string{"", "   "} {
			_, ok := ExtractCompanyIdentifier(Resolution{
				Input:      Reference{Scheme: SchemeDUNS, Value: "1"},
				Outcome:    OutcomeResolved,
				Name:       name,
				Identities: []IdentityRecord{{Scheme: SchemeProviderID, Value: "9", Active: true}},
			})
			assert.False(t, ok, "name %q", name)
		}
	})

	t.Run("unresolved outcomes are skipped", func(t *testing.T) {
		_, ok := ExtractCompanyIdentifier(Resolution{
			Outcome:    OutcomeUnavailable,
			Identities: []IdentityRecord{{Scheme: SchemeDUNS, Value: "1"}},
		})
		assert.False(t, ok)
	})
}

func TestExtractCandidate(t *testing.T) {
	t.Run("top-level id wins over nested map", func(t *testing.T) {
		id := ExtractCandidate(Candidate{
			ProviderID:  "54321",
			Name:        "Widget Co",
			Identifiers: map[Scheme]string{SchemeProviderID: "99999", SchemeDUNS: "123"},
		})
		assert.Equal(t, "54321", id.SecondaryID)
		assert.Equal(t, "123", id.ExternalID)
		assert.Len(t, id.Identities, 2)
	})

	t.Run("nested map used when top-level id absent", func(t *testing.T) {
		id := ExtractCandidate(Candidate{Identifiers: map[Scheme]string{SchemeProviderID: "99999"}})
		assert.Equal(t, "99999", id.SecondaryID)
		assert.Equal(t, "", id.ExternalID)
	})

	t.Run("nil identifier map does not crash", func(t *testing.T) {
		id := ExtractCandidate(Candidate{Name: "Bare"})
		assert.False(t, id.HasSecondaryID())
		assert.Empty(t, id.Identities)
	})
}

func TestClassify(t *testing.T) {
	results := []Resolution{
		{Input: Reference{Value: "1"}, Outcome: OutcomeResolved},
		{Input: Reference{Value: "2"}, Outcome: OutcomeUnavailable},
		{Input: Reference{Value: "3"}, Outcome: OutcomeFailed, Err: errors.New("boom")},
		{Input: Reference{Value: "4"}, Outcome: OutcomeResolved},
		{Input: Reference{Value: "5"}},
	}

	c := Classify(results)
	assert.Equal(t, []int{0, 3}, c.Resolved)
	assert.Equal(t, []int{1}, c.Unavailable)
	assert.Equal(t, []int{2, 4}, c.Failed)
}

func TestClassify_Empty(t *testing.T) {
	c := Classify(nil)
	assert.Empty(t, c.Resolved)
	assert.Empty(t, c.Unavailable)
	assert.Empty(t, c.Failed)
}
