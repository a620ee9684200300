package entity

type LeadStatus string

const (
	StatusNew       LeadStatus = "new"
	StatusContacted LeadStatus = "contacted"
	StatusQualified LeadStatus = "qualified"
	StatusConverted LeadStatus = "converted"
	StatusLost      LeadStatus = "lost"
)

const (
	QualifiedThreshold = 80
	ContactedThreshold = 50
	NewThreshold       = 30
)

func (s LeadStatus) Valid() bool {
	switch s {
	case StatusNew, StatusContacted, StatusQualified, StatusConverted, StatusLost:
		return true
	}
	return false
}

// engagementRank orders the statuses the score cascade is allowed to produce.
// converted and lost are set by external events only and have no rank.
func (s LeadStatus) engagementRank() (int, bool) {
	switch s {
	case StatusNew:
		return 1, true
	case StatusContacted:
		return 2, true
	case StatusQualified:
		return 3, true
	}
	return 0, false
}

// NextStatus maps a score to a lifecycle status. The cascade is an upgrade
// path only: converted and lost leads are left alone and a lower score never
// moves a lead back to a less engaged status.
func NextStatus(score int, current LeadStatus) LeadStatus {
	var candidate LeadStatus
	switch {
	case score >= QualifiedThreshold:
		candidate = StatusQualified
	case score >= ContactedThreshold:
		candidate = StatusContacted
	case score >= NewThreshold:
		candidate = StatusNew
	default:
		return current
	}

	currentRank, ranked := current.engagementRank()
	if !ranked {
		if current == "" {
			return candidate
		}
		return current
	}

	candidateRank, _ := candidate.engagementRank()
	if candidateRank < currentRank {
		return current
	}
	return candidate
}
