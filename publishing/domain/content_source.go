package domain

type ContentSourceKind string

const (
	// ContentSourceExisting publishes a pre-existing content record.
	ContentSourceExisting ContentSourceKind = "existing"
	// ContentSourceGenerated creates the content from a prompt at publish time.
	ContentSourceGenerated ContentSourceKind = "generated"
)

// ContentSource is the resolved variant of a scheduled post's content origin.
type ContentSource struct {
	Kind      ContentSourceKind
	ContentID string // set when Kind == ContentSourceExisting
	Prompt    string // set when Kind == ContentSourceGenerated
}
