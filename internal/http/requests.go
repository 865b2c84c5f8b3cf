package http

// UpdateTaskRequest is the full-field patch the edit view sends. Dates use
// the 2006-01-02 layout.
type UpdateTaskRequest struct {
	GroupID           string   `json:"group_id"`
	AssignedToUserID  *string  `json:"assigned_to_user_id"`
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	DueOn             *string  `json:"due_on"`
	Estimation        *float64 `json:"estimation"`
	HiddenFromClients bool     `json:"hidden_from_clients"`
	Billable          bool     `json:"billable"`
	SubscribedUsers   []string `json:"subscribed_users"`
	Labels            []string `json:"labels"`
}

type CompleteTaskRequest struct {
	Completed bool `json:"completed"`
}
