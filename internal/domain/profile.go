package domain

// ============================================================
// Profile: upstream /profile/me/ and /profile/participation/
// ============================================================

// ProfileFields holds every user-editable profile field, grouped by the
// questionnaire step that collects it. It doubles as the PATCH payload.
type ProfileFields struct {
	// Step 1: basic information
	FullName               string   `json:"full_name"`
	HasSelfEmployment      *bool    `json:"has_self_employment"`
	ReadyForSelfEmployment string   `json:"ready_for_self_employment"`
	MainBlogLink           string   `json:"main_blog_link"`
	SocialLinks            []string `json:"social_links"`
	Country                string   `json:"country"`
	City                   string   `json:"city"`
	Age                    *int     `json:"age"`
	Gender                 string   `json:"gender"`
	CoverageRegions        string   `json:"coverage_regions"`

	// Step 2: content and platform
	Platforms            []string `json:"platforms"`
	BlogTopics           []string `json:"blog_topics"`
	BlogDescription      string   `json:"blog_description"`
	BlogExperience       string   `json:"blog_experience"`
	PublicationFrequency string   `json:"publication_frequency"`

	// Step 3: audience
	SubscribersByPlatform []string `json:"subscribers_by_platform"`
	AverageReach          []string `json:"average_reach"`
	AudienceGenderAge     string   `json:"audience_gender_age"`
	AudienceRegion        string   `json:"audience_region"`
	EngagementLevel       string   `json:"engagement_level"`

	// Step 4: experience and collaborations
	HasCollaborations     bool     `json:"has_collaborations"`
	CollaborationExamples []string `json:"collaboration_examples"`
	ReadyToShareResults   string   `json:"ready_to_share_results"`
	ReadyForPaidAds       string   `json:"ready_for_paid_ads"`

	// Step 5: collaboration format
	CollaborationFormats []string `json:"collaboration_formats"`
	AdPricing            []string `json:"ad_pricing"`
	ReadyForBarter       string   `json:"ready_for_barter"`
	BarterCategories     []string `json:"barter_categories"`

	// Step 6: additional
	ReadyForBrandProjects    string `json:"ready_for_brand_projects"`
	ProductsWontAdvertise    string `json:"products_wont_advertise"`
	BlogManagement           string `json:"blog_management"`
	HasMediaKit              *bool  `json:"has_media_kit"`
	MediaKitLink             string `json:"media_kit_link"`
	ReadyForBloggerCommunity string `json:"ready_for_blogger_community"`
	AdditionalInfo           string `json:"additional_info"`
	ConsentPrivacy           bool   `json:"consent_privacy"`
	ConsentMarketingEmail    bool   `json:"consent_marketing_email"`
	ConsentMarketingCalls    bool   `json:"consent_marketing_calls"`

	// Legacy
	Contact     string  `json:"contact"`
	DateOfBirth *string `json:"date_of_birth"`
	PickupPoint string  `json:"pickup_point"`
}

// Profile is the full record returned by GET/PATCH /profile/me/.
// IsCompleted and IsParticipating are derived by the server.
type Profile struct {
	User *User `json:"user,omitempty"`
	ProfileFields
	IsCompleted     bool   `json:"is_completed"`
	IsParticipating bool   `json:"is_participating"`
	CreatedAt       string `json:"created_at,omitempty"`
	UpdatedAt       string `json:"updated_at,omitempty"`
}

// ProfileUpdate is the PATCH /profile/me/ body.
type ProfileUpdate = ProfileFields

// ParticipationRequest is the body for POST /profile/participation/.
type ParticipationRequest struct {
	IsParticipating bool `json:"is_participating"`
}

// ProfileStatus is the user-facing summary shown next to the form.
type ProfileStatus struct {
	Message             string `json:"message"`
	IsCompleted         bool   `json:"is_completed"`
	IsParticipating     bool   `json:"is_participating"`
	ParticipationAction string `json:"participation_action"`
}

// StatusOf builds the status banner for a profile.
func StatusOf(p *Profile) ProfileStatus {
	if p == nil {
		return ProfileStatus{}
	}
	st := ProfileStatus{
		IsCompleted:         p.IsCompleted,
		IsParticipating:     p.IsParticipating,
		Message:             "Fill in all required fields to take part in orders.",
		ParticipationAction: "Take part in orders",
	}
	if p.IsCompleted {
		st.Message = "Profile completed"
	}
	if p.IsParticipating {
		st.ParticipationAction = "Stop participating"
	}
	return st
}
