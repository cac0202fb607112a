package domain

// RouteSpec is one origin/destination city pair from the route catalog,
// identified by the provider's URL slugs. The titles are human-readable city
// names carried through to the output rows; the slugs address the search API.
// Loaded once at startup and never mutated.
type RouteSpec struct {
	FromTitle string `json:"from_title" validate:"required"`
	ToTitle   string `json:"to_title" validate:"required"`
	FromSlug  string `json:"from_slug" validate:"required"`
	ToSlug    string `json:"to_slug" validate:"required"`
}
