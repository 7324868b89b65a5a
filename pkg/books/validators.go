package books

type AddBookPayload struct {
	Title  string `json:"title" mod:"trim" validate:"required,max=300"`
	Author string `json:"author" mod:"trim" validate:"required,max=200"`
}

type SearchBooksQuery struct {
	Search        string `query:"search" json:"search,omitempty" mod:"trim" validate:"max=100"`
	AvailableOnly bool   `query:"available_only" json:"available_only,omitempty"`
}
