package pages

// CodeType identifies the kind of content stored in a page.
type CodeType string

const (
	CodeTypeHTML     CodeType = "html"
	CodeTypeMarkdown CodeType = "markdown"
	CodeTypeSVG      CodeType = "svg"
	CodeTypeMermaid  CodeType = "mermaid"
)

// Page is a stored content blob addressable by its short identifier. All
// fields except Title are immutable once created; Title can be recomputed
// from Content by a maintenance pass.
type Page struct {
	ID        string
	Content   string
	CreatedAt int64
	Password  string
	Protected bool
	CodeType  CodeType
	Title     string
}

// CreateResult carries the shareable identifier and the generated viewing
// password for a newly created page.
type CreateResult struct {
	ID       string
	Password string
}

// RecentPage is the minimal listing entry returned for the recent-pages view.
type RecentPage struct {
	ID        string
	CreatedAt int64
}

// Summary is a single row of the paged admin listing.
type Summary struct {
	ID                 string
	Title              string
	Password           string
	CreatedAt          int64
	CreatedAtFormatted string
	Protected          bool
	CodeType           CodeType
}

// Listing is one page of the searchable admin listing.
type Listing struct {
	Pages       []Summary
	Total       int64
	TotalPages  int
	CurrentPage int
}

// TypeStat counts pages of one code type.
type TypeStat struct {
	CodeType string
	Count    int64
}

// Stats aggregates page counts for the admin dashboard.
type Stats struct {
	Total            int64
	ProtectedCount   int64
	UnprotectedCount int64
	RecentCount      int64
	TodayCount       int64
	TypeStats        []TypeStat
}
