// Package profile binds the six-step blogger questionnaire to the profile
// record: which controls exist, which step requires what, and how a record
// is loaded into the form and serialized back into a PATCH payload.
package profile

import "github.com/boddenberg/influencer-bfa-go/internal/form"

// TotalSteps is the number of questionnaire pages.
const TotalSteps = 6

// StepTitles maps step numbers to their headings.
var StepTitles = map[int]string{
	1: "Basic information",
	2: "Content and platform",
	3: "Audience",
	4: "Experience and collaborations",
	5: "Collaboration format",
	6: "Additional",
}

// ListFields are the repeated-row fields. Each renders at least one row.
var ListFields = []string{
	"social_links",
	"platforms",
	"blog_topics",
	"subscribers_by_platform",
	"average_reach",
	"collaboration_examples",
	"collaboration_formats",
	"ad_pricing",
	"barter_categories",
}

var triState = []string{"true", "false"}

// Schema lists every control of the questionnaire.
var Schema = form.NewSchema(
	// Step 1
	form.Field{Name: "full_name", Kind: form.KindText},
	form.Field{Name: "has_self_employment", Kind: form.KindSelect, Options: triState},
	form.Field{Name: "ready_for_self_employment", Kind: form.KindSelect, Options: []string{"yes", "no", "maybe"}},
	form.Field{Name: "main_blog_link", Kind: form.KindText},
	form.Field{Name: "social_links", Kind: form.KindList, Placeholder: "https://..."},
	form.Field{Name: "country", Kind: form.KindText},
	form.Field{Name: "city", Kind: form.KindText},
	form.Field{Name: "age", Kind: form.KindText},
	form.Field{Name: "gender", Kind: form.KindRadio, Options: []string{"M", "F"}},
	form.Field{Name: "coverage_regions", Kind: form.KindText},

	// Step 2
	form.Field{Name: "platforms", Kind: form.KindList, Placeholder: "e.g. Instagram"},
	form.Field{Name: "blog_topics", Kind: form.KindList, Placeholder: "e.g. Cosmetics"},
	form.Field{Name: "blog_description", Kind: form.KindText},
	form.Field{Name: "blog_experience", Kind: form.KindRadio, Options: []string{"<6months", "6months-1year", "1-2years", ">2years"}},
	form.Field{Name: "publication_frequency", Kind: form.KindRadio, Options: []string{"daily", "few_times_week", "once_week", "less_often"}},

	// Step 3
	form.Field{Name: "subscribers_by_platform", Kind: form.KindList, Placeholder: "Platform: count"},
	form.Field{Name: "average_reach", Kind: form.KindList, Placeholder: "Channel: reach"},
	form.Field{Name: "audience_gender_age", Kind: form.KindText},
	form.Field{Name: "audience_region", Kind: form.KindText},
	form.Field{Name: "engagement_level", Kind: form.KindText},

	// Step 4
	form.Field{Name: "has_collaborations", Kind: form.KindCheckbox},
	form.Field{Name: "collaboration_examples", Kind: form.KindList, Placeholder: "Cases, links, brands"},
	form.Field{Name: "ready_to_share_results", Kind: form.KindRadio, Options: []string{"yes", "no", "by_agreement"}},
	form.Field{Name: "ready_for_paid_ads", Kind: form.KindRadio, Options: []string{"yes_no_problem", "depends_on_conditions", "no"}},

	// Step 5
	form.Field{Name: "collaboration_formats", Kind: form.KindList},
	form.Field{Name: "ad_pricing", Kind: form.KindList, Placeholder: "Network, type - price"},
	form.Field{Name: "ready_for_barter", Kind: form.KindRadio, Options: []string{"yes", "no", "depends_on_product"}},
	form.Field{Name: "barter_categories", Kind: form.KindList},

	// Step 6
	form.Field{Name: "ready_for_brand_projects", Kind: form.KindRadio, Options: []string{"yes", "maybe_depends", "no"}},
	form.Field{Name: "products_wont_advertise", Kind: form.KindText},
	form.Field{Name: "blog_management", Kind: form.KindRadio, Options: []string{"myself", "assistant_manager", "agency"}},
	form.Field{Name: "has_media_kit", Kind: form.KindSelect, Options: triState},
	form.Field{Name: "media_kit_link", Kind: form.KindText},
	form.Field{Name: "ready_for_blogger_community", Kind: form.KindRadio, Options: []string{"yes", "maybe", "no"}},
	form.Field{Name: "additional_info", Kind: form.KindText},
	form.Field{Name: "consent_privacy", Kind: form.KindCheckbox},
	form.Field{Name: "consent_marketing_email", Kind: form.KindCheckbox},
	form.Field{Name: "consent_marketing_calls", Kind: form.KindCheckbox},

	// Legacy
	form.Field{Name: "contact", Kind: form.KindText},
	form.Field{Name: "date_of_birth", Kind: form.KindText},
	form.Field{Name: "pickup_point", Kind: form.KindText},
)

// mediaKitShown reports whether the media kit link control is displayed.
func mediaKitShown(v *form.Values) bool {
	return v.Get("has_media_kit") == "true"
}

// Steps returns fresh step definitions with their requirements.
// collaboration_examples is the only list field without a requirement.
func Steps() []form.Step {
	return []form.Step{
		{Title: StepTitles[1], Requirements: []form.Requirement{
			form.Text("full_name"),
			form.Text("has_self_employment"),
			form.Text("ready_for_self_employment"),
			form.Text("main_blog_link"),
			form.List("social_links"),
			form.Text("country"),
			form.Text("city"),
			form.Text("age"),
			form.Radio("gender"),
			form.Text("coverage_regions"),
		}},
		{Title: StepTitles[2], Requirements: []form.Requirement{
			form.List("platforms"),
			form.List("blog_topics"),
			form.Text("blog_description"),
			form.Radio("blog_experience"),
			form.Radio("publication_frequency"),
		}},
		{Title: StepTitles[3], Requirements: []form.Requirement{
			form.List("subscribers_by_platform"),
			form.List("average_reach"),
			form.Text("engagement_level"),
		}},
		{Title: StepTitles[4], Requirements: []form.Requirement{
			form.Radio("ready_to_share_results"),
			form.Radio("ready_for_paid_ads"),
		}},
		{Title: StepTitles[5], Requirements: []form.Requirement{
			form.List("collaboration_formats"),
			form.List("ad_pricing"),
			form.Radio("ready_for_barter"),
			form.List("barter_categories"),
		}},
		{Title: StepTitles[6], Requirements: []form.Requirement{
			form.Radio("ready_for_brand_projects"),
			form.Radio("blog_management"),
			form.When(mediaKitShown, form.Text("media_kit_link")),
			form.Radio("ready_for_blogger_community"),
			form.Checkbox("consent_privacy"),
		}},
	}
}
