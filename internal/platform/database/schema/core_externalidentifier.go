package schema

// CoreExternalIdentifierTable represents the 'core.externalidentifier' table
type CoreExternalIdentifierTable struct {
	Table      string
	ArtistID   string
	Provider   string
	NativeID   string
	Confidence string
	CreatedAt  string
	UpdatedAt  string
}

// CoreExternalIdentifier is the schema definition for core.externalidentifier.
// Uniqueness: one row per (provider, nativeid), and one row per (artistid, provider).
var CoreExternalIdentifier = CoreExternalIdentifierTable{
	Table:      "core.externalidentifier",
	ArtistID:   "artistid",
	Provider:   "provider",
	NativeID:   "nativeid",
	Confidence: "confidence",
	CreatedAt:  "createdat",
	UpdatedAt:  "updatedat",
}

func (t CoreExternalIdentifierTable) Columns() []string {
	return []string{t.ArtistID, t.Provider, t.NativeID, t.Confidence, t.CreatedAt, t.UpdatedAt}
}
