package domain

// PageStatus represents the page-wide derived status shown to viewers.
type PageStatus string

// Page statuses.
const (
	PageStatusOperational   PageStatus = "operational"
	PageStatusDegraded      PageStatus = "degraded"
	PageStatusPartialOutage PageStatus = "partial_outage"
	PageStatusMajorOutage   PageStatus = "major_outage"
)

// SeverityToPageStatus converts an incident severity to the page status
// it implies while the incident is active.
func SeverityToPageStatus(severity IncidentSeverity) PageStatus {
	switch severity {
	case SeverityCritical:
		return PageStatusMajorOutage
	case SeverityMajor:
		return PageStatusPartialOutage
	case SeverityMinor:
		return PageStatusDegraded
	default:
		return PageStatusDegraded
	}
}

// DeriveOverallStatus computes a page's overall status from its
// incidents. The worst active (non-resolved) incident wins: critical
// implies major_outage, major implies partial_outage, any other active
// incident implies degraded, and no active incidents means operational.
// Component-level statuses are display-only and do not feed the
// derivation.
func DeriveOverallStatus(incidents []Incident) PageStatus {
	hasActive := false
	hasMajor := false

	for i := range incidents {
		if !incidents[i].IsActive() {
			continue
		}
		hasActive = true

		switch incidents[i].Severity {
		case SeverityCritical:
			return PageStatusMajorOutage
		case SeverityMajor:
			hasMajor = true
		}
	}

	if hasMajor {
		return PageStatusPartialOutage
	}
	if hasActive {
		return PageStatusDegraded
	}
	return PageStatusOperational
}
