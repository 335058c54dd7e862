package dto

type CreateSubtaskRequest struct {
	Title string `json:"title" binding:"required,max=200"`
}
