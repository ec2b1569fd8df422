package profile

import (
	"strconv"
	"strings"

	"github.com/boddenberg/influencer-bfa-go/internal/domain"
	"github.com/boddenberg/influencer-bfa-go/internal/form"
)

// Form is the questionnaire state for one session: values plus the step
// controller. It is not safe for concurrent use.
type Form struct {
	values *form.Values
	wizard *form.Wizard
}

// View is the renderable state of the questionnaire.
type View struct {
	Step   form.StepView        `json:"step"`
	Values map[string]any       `json:"values"`
	Status domain.ProfileStatus `json:"status"`
}

// NewForm returns an empty questionnaire on step 1 with one empty row per
// list field.
func NewForm() *Form {
	f := &Form{
		values: form.NewValues(Schema),
		wizard: form.NewWizard(Steps()...),
	}
	for _, name := range ListFields {
		_ = f.values.SetRows(name, []string{""})
	}
	return f
}

// Values exposes the underlying values.
func (f *Form) Values() *form.Values { return f.values }

// CurrentStep returns the 1-based step.
func (f *Form) CurrentStep() int { return f.wizard.Current() }

// GoToStep navigates the questionnaire; see form.Wizard.GoToStep.
func (f *Form) GoToStep(target int) error {
	return f.wizard.GoToStep(target, f.values)
}

// ValidateCurrent checks the visible step, as a submit from it would.
func (f *Form) ValidateCurrent() error {
	return f.wizard.ValidateCurrent(f.values)
}

// ResetStep returns to step 1 and clears field highlights.
func (f *Form) ResetStep() { f.wizard.Reset() }

// Render returns the current step and all values.
func (f *Form) Render(p *domain.Profile) View {
	return View{
		Step:   f.wizard.Render(f.values),
		Values: f.values.Snapshot(),
		Status: domain.StatusOf(p),
	}
}

// Populate overwrites the form with a server record. Radio values that
// match no option leave the group unselected; every list field gets one
// row per element, or a single empty row when the list is empty.
func (f *Form) Populate(p *domain.Profile) {
	if p == nil {
		return
	}
	v := f.values
	v.Reset()

	_ = v.Set("full_name", p.FullName)
	v.Select("has_self_employment", formatTriState(p.HasSelfEmployment))
	v.Select("ready_for_self_employment", p.ReadyForSelfEmployment)
	_ = v.Set("main_blog_link", p.MainBlogLink)
	setRows(v, "social_links", p.SocialLinks)
	_ = v.Set("country", p.Country)
	_ = v.Set("city", p.City)
	_ = v.Set("age", formatInt(p.Age))
	v.Select("gender", p.Gender)
	_ = v.Set("coverage_regions", p.CoverageRegions)

	setRows(v, "platforms", p.Platforms)
	setRows(v, "blog_topics", p.BlogTopics)
	_ = v.Set("blog_description", p.BlogDescription)
	v.Select("blog_experience", p.BlogExperience)
	v.Select("publication_frequency", p.PublicationFrequency)

	setRows(v, "subscribers_by_platform", p.SubscribersByPlatform)
	setRows(v, "average_reach", p.AverageReach)
	_ = v.Set("audience_gender_age", p.AudienceGenderAge)
	_ = v.Set("audience_region", p.AudienceRegion)
	_ = v.Set("engagement_level", p.EngagementLevel)

	v.SetChecked("has_collaborations", p.HasCollaborations)
	setRows(v, "collaboration_examples", p.CollaborationExamples)
	v.Select("ready_to_share_results", p.ReadyToShareResults)
	v.Select("ready_for_paid_ads", p.ReadyForPaidAds)

	setRows(v, "collaboration_formats", p.CollaborationFormats)
	setRows(v, "ad_pricing", p.AdPricing)
	v.Select("ready_for_barter", p.ReadyForBarter)
	setRows(v, "barter_categories", p.BarterCategories)

	v.Select("ready_for_brand_projects", p.ReadyForBrandProjects)
	_ = v.Set("products_wont_advertise", p.ProductsWontAdvertise)
	v.Select("blog_management", p.BlogManagement)
	v.Select("has_media_kit", formatTriState(p.HasMediaKit))
	_ = v.Set("media_kit_link", p.MediaKitLink)
	v.Select("ready_for_blogger_community", p.ReadyForBloggerCommunity)
	_ = v.Set("additional_info", p.AdditionalInfo)
	v.SetChecked("consent_privacy", p.ConsentPrivacy)
	v.SetChecked("consent_marketing_email", p.ConsentMarketingEmail)
	v.SetChecked("consent_marketing_calls", p.ConsentMarketingCalls)

	_ = v.Set("contact", p.Contact)
	if p.DateOfBirth != nil {
		_ = v.Set("date_of_birth", *p.DateOfBirth)
	}
	_ = v.Set("pickup_point", p.PickupPoint)
}

// Apply sets user edits. Choosing anything but "true" for has_media_kit
// clears the media kit link. A list field emptied by the edit keeps one
// blank row. Invalid edits change nothing.
func (f *Form) Apply(changes map[string]any) error {
	if err := f.values.Apply(changes); err != nil {
		return err
	}
	for _, name := range ListFields {
		if _, ok := changes[name]; ok && len(f.values.Rows(name)) == 0 {
			setRows(f.values, name, nil)
		}
	}
	if _, ok := changes["has_media_kit"]; ok {
		f.syncMediaKit()
	}
	return nil
}

// SetHasMediaKit sets the media kit answer and toggles the link control.
func (f *Form) SetHasMediaKit(value string) error {
	if err := f.values.Set("has_media_kit", value); err != nil {
		return err
	}
	f.syncMediaKit()
	return nil
}

func (f *Form) syncMediaKit() {
	if !mediaKitShown(f.values) {
		_ = f.values.Set("media_kit_link", "")
	}
}

// AddRow appends an empty row to a list field. There is no upper bound.
func (f *Form) AddRow(field string) (int, error) {
	return f.values.AddRow(field)
}

// RemoveRow removes a row; the last row is cleared rather than removed.
func (f *Form) RemoveRow(field string, i int) error {
	return f.values.RemoveRow(field, i, true)
}

// Serialize builds the PATCH payload from the current values.
func (f *Form) Serialize() domain.ProfileUpdate {
	v := f.values
	return domain.ProfileUpdate{
		FullName:               v.Trimmed("full_name"),
		HasSelfEmployment:      parseTriState(v.Trimmed("has_self_employment")),
		ReadyForSelfEmployment: v.Trimmed("ready_for_self_employment"),
		MainBlogLink:           v.Trimmed("main_blog_link"),
		SocialLinks:            v.Collect("social_links"),
		Country:                v.Trimmed("country"),
		City:                   v.Trimmed("city"),
		Age:                    parseInt(v.Trimmed("age")),
		Gender:                 v.Trimmed("gender"),
		CoverageRegions:        v.Trimmed("coverage_regions"),

		Platforms:            v.Collect("platforms"),
		BlogTopics:           v.Collect("blog_topics"),
		BlogDescription:      v.Trimmed("blog_description"),
		BlogExperience:       v.Trimmed("blog_experience"),
		PublicationFrequency: v.Trimmed("publication_frequency"),

		SubscribersByPlatform: v.Collect("subscribers_by_platform"),
		AverageReach:          v.Collect("average_reach"),
		AudienceGenderAge:     v.Trimmed("audience_gender_age"),
		AudienceRegion:        v.Trimmed("audience_region"),
		EngagementLevel:       v.Trimmed("engagement_level"),

		HasCollaborations:     v.Checked("has_collaborations"),
		CollaborationExamples: v.Collect("collaboration_examples"),
		ReadyToShareResults:   v.Trimmed("ready_to_share_results"),
		ReadyForPaidAds:       v.Trimmed("ready_for_paid_ads"),

		CollaborationFormats: v.Collect("collaboration_formats"),
		AdPricing:            v.Collect("ad_pricing"),
		ReadyForBarter:       v.Trimmed("ready_for_barter"),
		BarterCategories:     v.Collect("barter_categories"),

		ReadyForBrandProjects:    v.Trimmed("ready_for_brand_projects"),
		ProductsWontAdvertise:    v.Trimmed("products_wont_advertise"),
		BlogManagement:           v.Trimmed("blog_management"),
		HasMediaKit:              parseTriState(v.Trimmed("has_media_kit")),
		MediaKitLink:             v.Trimmed("media_kit_link"),
		ReadyForBloggerCommunity: v.Trimmed("ready_for_blogger_community"),
		AdditionalInfo:           v.Trimmed("additional_info"),
		ConsentPrivacy:           v.Checked("consent_privacy"),
		ConsentMarketingEmail:    v.Checked("consent_marketing_email"),
		ConsentMarketingCalls:    v.Checked("consent_marketing_calls"),

		Contact:     v.Trimmed("contact"),
		DateOfBirth: optionalString(v.Trimmed("date_of_birth")),
		PickupPoint: v.Trimmed("pickup_point"),
	}
}

// Completion reports which required fields a record still lacks, using the
// same per-step rules as forward navigation. The server's is_completed flag
// stays authoritative.
func Completion(p *domain.Profile) []string {
	f := NewForm()
	f.Populate(p)
	var missing []string
	for _, s := range Steps() {
		missing = append(missing, form.Missing(s.Requirements, f.values)...)
	}
	return missing
}

func setRows(v *form.Values, name string, rows []string) {
	if len(rows) == 0 {
		rows = []string{""}
	}
	_ = v.SetRows(name, rows)
}

// parseTriState maps "true"/"false" to a boolean and anything else to nil.
func parseTriState(s string) *bool {
	var b bool
	switch s {
	case "true":
		b = true
	case "false":
		b = false
	default:
		return nil
	}
	return &b
}

func formatTriState(b *bool) string {
	if b == nil {
		return ""
	}
	return strconv.FormatBool(*b)
}

// parseInt reads the leading base-10 integer of s, so "3.5" is 3 and
// "12abc" is 12. No leading digits yields nil.
func parseInt(s string) *int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return nil
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return nil
	}
	return &n
}

func formatInt(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
