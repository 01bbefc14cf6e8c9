package design

import "fmt"

var statusToDB = map[Status]string{
	StatusDraft:            "draft",
	StatusInReview:         "in_review",
	StatusChangesRequested: "changes_requested",
	StatusApproved:         "approved",
}

var statusFromDB = map[string]Status{
	"draft":             StatusDraft,
	"in_review":         StatusInReview,
	"changes_requested": StatusChangesRequested,
	"approved":          StatusApproved,
}

var reviewToDB = map[ReviewStatus]string{
	ReviewApproved:         "approved",
	ReviewChangesRequested: "changes_requested",
}

var reviewFromDB = map[string]ReviewStatus{
	"approved":          ReviewApproved,
	"changes_requested": ReviewChangesRequested,
}

func StatusToDB(s Status) (string, error) {
	v, ok := statusToDB[s]
	if !ok {
		return "", fmt.Errorf("unknown design status %q", s)
	}
	return v, nil
}

func StatusFromDB(v string) (Status, error) {
	s, ok := statusFromDB[v]
	if !ok {
		return "", fmt.Errorf("unknown persisted design status %q", v)
	}
	return s, nil
}

func ReviewToDB(s ReviewStatus) (string, error) {
	v, ok := reviewToDB[s]
	if !ok {
		return "", fmt.Errorf("unknown review status %q", s)
	}
	return v, nil
}

func ReviewFromDB(v string) (ReviewStatus, error) {
	s, ok := reviewFromDB[v]
	if !ok {
		return "", fmt.Errorf("unknown persisted review status %q", v)
	}
	return s, nil
}

func ParseStatus(raw string) (Status, bool) {
	s := Status(raw)
	_, ok := statusToDB[s]
	return s, ok
}

func ParseReviewStatus(raw string) (ReviewStatus, bool) {
	s := ReviewStatus(raw)
	_, ok := reviewToDB[s]
	return s, ok
}

// NextDesignStatus is the design status a review decision moves the design to.
func NextDesignStatus(r ReviewStatus) Status {
	if r == ReviewApproved {
		return StatusApproved
	}
	return StatusChangesRequested
}
