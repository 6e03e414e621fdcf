package changerequest

// Category classifies what part of the site a change request touches.
type Category string

const (
	CategoryText          Category = "text"
	CategoryDesign        Category = "design"
	CategoryImages        Category = "images"
	CategoryFunctionality Category = "functionality"
	CategoryOther         Category = "other"
)

// IsValid returns true if the category is one of the defined constants.
func (c Category) IsValid() bool {
	switch c {
	case CategoryText, CategoryDesign, CategoryImages, CategoryFunctionality, CategoryOther:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer.
func (c Category) String() string {
	return string(c)
}

// Priority is the client-stated urgency of a change request.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityUrgent Priority = "urgent"
)

// IsValid returns true if the priority is one of the defined constants.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityUrgent:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer.
func (p Priority) String() string {
	return string(p)
}
