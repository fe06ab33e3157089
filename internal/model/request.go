package model

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TaskRequest carries create/update payloads. Pointer fields distinguish an
// absent key from a zero value.
type TaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Effort      *int    `json:"effort"`
	DueDate     *string `json:"due_date"`
}
