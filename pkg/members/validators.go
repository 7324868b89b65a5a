package members

type AddMemberPayload struct {
	Name  string `json:"name" mod:"trim" validate:"required,max=200"`
	Email string `json:"email" mod:"trim" validate:"required,contains=@,max=320"`
}
