package models

// Item is one entry of the todo list.
type Item struct {
	ID        string `json:"_id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// TodoPatch carries the fields of an update; nil fields are left as they are.
type TodoPatch struct {
	Title     *string `json:"title,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

// Apply returns a copy of it with the patch fields applied.
func (p TodoPatch) Apply(it Item) Item {
	if p.Title != nil {
		it.Title = *p.Title
	}
	if p.Completed != nil {
		it.Completed = *p.Completed
	}
	return it
}

// TodoEnvelope wraps a single item returned by the todo service.
type TodoEnvelope struct {
	Success *bool  `json:"success,omitempty"`
	Message string `json:"message,omitempty"`
	Data    Item   `json:"data"`
}

// TodoListEnvelope wraps the full list returned by the todo service.
type TodoListEnvelope struct {
	Success *bool  `json:"success,omitempty"`
	Message string `json:"message,omitempty"`
	Data    []Item `json:"data"`
}
