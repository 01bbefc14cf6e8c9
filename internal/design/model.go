package design

import "time"

type Status string

const (
	StatusDraft            Status = "draft"
	StatusInReview         Status = "in-review"
	StatusChangesRequested Status = "changes-requested"
	StatusApproved         Status = "approved"
)

type ReviewStatus string

const (
	ReviewApproved         ReviewStatus = "approved"
	ReviewChangesRequested ReviewStatus = "changes-requested"
)

// Design is one proof version for an order.
type Design struct {
	ID         string    `json:"id"`
	OrderID    string    `json:"orderId"`
	Version    int       `json:"version"`
	Status     Status    `json:"status"`
	PreviewURL string    `json:"previewUrl"`
	SourceURL  *string   `json:"sourceUrl,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Review struct {
	ID            string       `json:"id"`
	DesignID      string       `json:"designId"`
	Status        ReviewStatus `json:"status"`
	Comment       *string      `json:"comment,omitempty"`
	AttachmentURL *string      `json:"attachmentUrl,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
}

type CreateDesignInput struct {
	Version    int
	Status     Status
	PreviewURL string
	SourceURL  *string
}

type CreateReviewInput struct {
	Status        ReviewStatus
	Comment       *string
	AttachmentURL *string
}
