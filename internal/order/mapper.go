package order

import (
	"fmt"
	"strings"
)

var statusToDB = map[Status]string{
	StatusSubmitted:  "intake",
	StatusDesigning:  "designing",
	StatusReview:     "review",
	StatusApproved:   "approved",
	StatusProduction: "production",
	StatusShipping:   "shipping",
	StatusComplete:   "complete",
	StatusOnHold:     "on_hold",
	StatusCanceled:   "canceled",
}

var statusFromDB = func() map[string]Status {
	m := make(map[string]Status, len(statusToDB))
	for pub, db := range statusToDB {
		m[db] = pub
	}
	return m
}()

// statusAliases accepts both vocabularies in list filters.
var statusAliases = map[string]string{
	"submitted":  "intake",
	"intake":     "intake",
	"designing":  "designing",
	"review":     "review",
	"approved":   "approved",
	"production": "production",
	"shipping":   "shipping",
	"complete":   "complete",
	"on-hold":    "on_hold",
	"on_hold":    "on_hold",
	"canceled":   "canceled",
}

var paymentStatuses = map[PaymentStatus]struct{}{
	PaymentUnpaid:     {},
	PaymentAuthorized: {},
	PaymentPaid:       {},
	PaymentRefunded:   {},
	PaymentDisputed:   {},
}

func StatusToDB(s Status) (string, error) {
	v, ok := statusToDB[s]
	if !ok {
		return "", fmt.Errorf("unknown order status %q", s)
	}
	return v, nil
}

func StatusFromDB(v string) (Status, error) {
	s, ok := statusFromDB[v]
	if !ok {
		return "", fmt.Errorf("unknown persisted order status %q", v)
	}
	return s, nil
}

// ParseStatus accepts only the public vocabulary.
func ParseStatus(raw string) (Status, bool) {
	s := Status(raw)
	_, ok := statusToDB[s]
	return s, ok
}

func ParseType(raw string) (Type, bool) {
	switch t := Type(raw); t {
	case TypeCustom, TypeStore:
		return t, true
	}
	return "", false
}

func ParsePaymentStatus(raw string) (PaymentStatus, bool) {
	p := PaymentStatus(raw)
	_, ok := paymentStatuses[p]
	return p, ok
}

// ParseStatusFilter resolves a query-string status to its persisted value.
// Unknown input yields ok == false and the caller drops the filter.
func ParseStatusFilter(raw string) (string, bool) {
	v, ok := statusAliases[strings.ToLower(strings.TrimSpace(raw))]
	return v, ok
}

func ParseTypeFilter(raw string) (string, bool) {
	t, ok := ParseType(strings.ToLower(strings.TrimSpace(raw)))
	return string(t), ok
}

// FormatOrderNumber renders the human-readable number for the order created
// after count existing ones.
func FormatOrderNumber(count int) string {
	return fmt.Sprintf("SC-%d", 1000+count+1)
}
