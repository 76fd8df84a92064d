package team

// Team is a club known to the internal identifier space. ExternalIDs keeps
// one upstream identifier per source name; the identity-mapping table is
// the source of truth for the translation, this is a convenience view.
type Team struct {
	ID          string
	Name        string
	ExternalIDs map[string]string
}
