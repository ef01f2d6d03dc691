package domain

import "strings"

// PlanFeatures defines which features a subscription plan includes.
// Any combination of flags is valid; equality is structural.
type PlanFeatures struct {
	RealtimeData    bool `json:"realtime_data"`
	AdvancedAlerts  bool `json:"advanced_alerts"`
	ConsultingTools bool `json:"consulting_tools"`
	CommunityAccess bool `json:"community_access"`
}

// BasicFeatures is the free-tier bundle (community access only).
func BasicFeatures() PlanFeatures {
	return PlanFeatures{CommunityAccess: true}
}

// PlenoFeatures is the first paid-tier bundle.
func PlenoFeatures() PlanFeatures {
	return PlanFeatures{
		RealtimeData:    true,
		AdvancedAlerts:  true,
		CommunityAccess: true,
	}
}

// ConsultorFeatures is the top-tier bundle (everything enabled).
func ConsultorFeatures() PlanFeatures {
	return PlanFeatures{
		RealtimeData:    true,
		AdvancedAlerts:  true,
		ConsultingTools: true,
		CommunityAccess: true,
	}
}

func (f PlanFeatures) String() string {
	var enabled []string
	if f.RealtimeData {
		enabled = append(enabled, "Realtime Data")
	}
	if f.AdvancedAlerts {
		enabled = append(enabled, "Advanced Alerts")
	}
	if f.ConsultingTools {
		enabled = append(enabled, "Consulting Tools")
	}
	if f.CommunityAccess {
		enabled = append(enabled, "Community Access")
	}
	return strings.Join(enabled, ", ")
}
