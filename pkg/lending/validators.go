package lending

type BorrowPayload struct {
	BookID   int `json:"book_id" validate:"required,min=1"`
	MemberID int `json:"member_id" validate:"required,min=1"`
	Days     int `json:"days" validate:"required,gt=0,max=3650"`
}

type ReturnPayload struct {
	BookID int `json:"book_id" validate:"required,min=1"`
}

type ListLoansQuery struct {
	Search   string `query:"search" json:"search,omitempty" mod:"trim" validate:"max=100"`
	MemberID int    `query:"member_id" json:"member_id,omitempty" validate:"omitempty,min=1"`
}
