package catalog

// NameRequest carries the name of a new main or sub category.
type NameRequest struct {
	Name string `json:"name" validate:"required,max=120"`
}

// UpdateArticleRequest sets one article field.
type UpdateArticleRequest struct {
	Field string `json:"field" validate:"required,oneof=title details price"`
	Value string `json:"value" validate:"max=4000"`
}

// SelectionRequest changes the active category. SubID wins when both are set.
type SelectionRequest struct {
	MainID string `json:"activeMainId"`
	SubID  string `json:"activeSubId"`
}

// Response is the catalog payload returned by the API.
type Response struct {
	Catalog   Catalog   `json:"catalog"`
	Selection Selection `json:"selection"`
}
