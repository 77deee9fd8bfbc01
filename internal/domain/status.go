package domain

// InquiryStatus is the lifecycle state of an inquiry. Statuses only move
// forward along the edges below; nothing ever re-enters "new".
type InquiryStatus string

const (
	StatusNew       InquiryStatus = "new"
	StatusViewed    InquiryStatus = "viewed"
	StatusContacted InquiryStatus = "contacted"
	StatusClosed    InquiryStatus = "closed"
	StatusArchived  InquiryStatus = "archived"
)

// edges holds the legal forward transitions. closed and archived are
// terminal and have no outgoing edges.
var edges = map[InquiryStatus][]InquiryStatus{
	StatusNew:       {StatusViewed, StatusArchived},
	StatusViewed:    {StatusContacted, StatusArchived},
	StatusContacted: {StatusClosed, StatusArchived},
}

func (s InquiryStatus) Valid() bool {
	switch s {
	case StatusNew, StatusViewed, StatusContacted, StatusClosed, StatusArchived:
		return true
	}
	return false
}

func (s InquiryStatus) Terminal() bool {
	return s == StatusClosed || s == StatusArchived
}

// CanTransitionTo reports whether s -> to is a legal edge. A same-state
// "transition" is not an edge; callers treat it as an idempotent no-op.
func (s InquiryStatus) CanTransitionTo(to InquiryStatus) bool {
	for _, t := range edges[s] {
		if t == to {
			return true
		}
	}
	return false
}
