package model

// Identity is the assembled, read-only view of a user joined with its church
// and member profile. Church and member are pointers so a missing relation is
// omitted from the JSON response rather than rendered as an empty object.
type Identity struct {
	User
	Church *Church `json:"church,omitempty"`
	Member *Member `json:"member,omitempty"`
}
