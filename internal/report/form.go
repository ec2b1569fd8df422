// Package report holds the test report sub-form: a single-page form keyed
// by purchase id that is either closed or open for exactly one purchase.
package report

import (
	"strconv"
	"strings"

	"github.com/boddenberg/influencer-bfa-go/internal/domain"
	"github.com/boddenberg/influencer-bfa-go/internal/form"
)

// ScoreFields are the six integer ratings.
var ScoreFields = []string{
	"quality_score",
	"packaging_score",
	"delivery_score",
	"description_match_score",
	"value_score",
	"overall_score",
}

// Schema lists every control of the sub-form.
var Schema = form.NewSchema(
	form.Field{Name: "full_name", Kind: form.KindText},
	form.Field{Name: "contact", Kind: form.KindText},
	form.Field{Name: "item_name", Kind: form.KindText},
	form.Field{Name: "category", Kind: form.KindText},
	form.Field{Name: "received_at", Kind: form.KindText},
	form.Field{Name: "completed_at", Kind: form.KindText},
	form.Field{Name: "report_type", Kind: form.KindText},
	form.Field{Name: "proof_links", Kind: form.KindList, Placeholder: "https://..."},
	form.Field{Name: "quality_score", Kind: form.KindText},
	form.Field{Name: "packaging_score", Kind: form.KindText},
	form.Field{Name: "delivery_score", Kind: form.KindText},
	form.Field{Name: "description_match_score", Kind: form.KindText},
	form.Field{Name: "value_score", Kind: form.KindText},
	form.Field{Name: "overall_score", Kind: form.KindText},
	form.Field{Name: "pros", Kind: form.KindText},
	form.Field{Name: "cons", Kind: form.KindText},
	form.Field{Name: "review_text", Kind: form.KindText},
	form.Field{Name: "suggestions", Kind: form.KindText},
	form.Field{Name: "issues_occured", Kind: form.KindCheckbox},
	form.Field{Name: "issues_note", Kind: form.KindText},
	form.Field{Name: "ready_for_next", Kind: form.KindCheckbox},
	form.Field{Name: "consent_publication", Kind: form.KindCheckbox},
	form.Field{Name: "consent_personal_data", Kind: form.KindCheckbox},
)

func issuesShown(v *form.Values) bool { return v.Checked("issues_occured") }

var requirements = []form.Requirement{
	form.Text("full_name"),
	form.Text("contact"),
	form.Text("item_name"),
	form.Text("report_type"),
	form.When(issuesShown, form.Text("issues_note")),
}

// Form is the report sub-form. The zero purchase id means closed.
// It is not safe for concurrent use.
type Form struct {
	values     *form.Values
	purchaseID int64
	staged     []string
}

// View is the renderable state of the sub-form.
type View struct {
	Open        bool           `json:"open"`
	PurchaseID  int64          `json:"purchase_id,omitempty"`
	Values      map[string]any `json:"values,omitempty"`
	Hidden      []string       `json:"hidden,omitempty"`
	StagedFiles []string       `json:"staged_files,omitempty"`
}

// NewForm returns a closed sub-form.
func NewForm() *Form {
	return &Form{values: form.NewValues(Schema)}
}

// ParsePurchaseID parses a purchase id from a path or form value.
func ParsePurchaseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, &domain.ErrValidation{Field: "purchase_id", Message: "must be a positive integer"}
	}
	return id, nil
}

// IsOpen reports whether the sub-form is bound to a purchase.
func (f *Form) IsOpen() bool { return f.purchaseID > 0 }

// PurchaseID returns the bound purchase, or 0 when closed.
func (f *Form) PurchaseID() int64 { return f.purchaseID }

// Values exposes the underlying values.
func (f *Form) Values() *form.Values { return f.values }

// Open binds the sub-form to a purchase and clears previous input.
func (f *Form) Open(purchaseID int64) error {
	if purchaseID <= 0 {
		return &domain.ErrValidation{Field: "purchase_id", Message: "must be a positive integer"}
	}
	f.values.Reset()
	f.staged = nil
	f.purchaseID = purchaseID
	return nil
}

// Close resets the sub-form and forgets staged proof files.
func (f *Form) Close() {
	f.values.Reset()
	f.staged = nil
	f.purchaseID = 0
}

// Populate loads an existing report, restoring one proof row per link.
// An empty link list yields zero rows.
func (f *Form) Populate(r *domain.TestReport) {
	if r == nil {
		return
	}
	v := f.values
	_ = v.Set("full_name", r.FullName)
	_ = v.Set("contact", r.Contact)
	_ = v.Set("item_name", r.ItemName)
	_ = v.Set("category", r.Category)
	_ = v.Set("received_at", r.ReceivedAt)
	_ = v.Set("completed_at", r.CompletedAt)
	_ = v.Set("report_type", r.ReportType)
	_ = v.SetRows("proof_links", r.ProofLinks)

	scores := map[string]*int{
		"quality_score":           r.QualityScore,
		"packaging_score":         r.PackagingScore,
		"delivery_score":          r.DeliveryScore,
		"description_match_score": r.DescriptionMatchScore,
		"value_score":             r.ValueScore,
		"overall_score":           r.OverallScore,
	}
	for name, score := range scores {
		_ = v.Set(name, formatScore(score))
	}

	_ = v.Set("pros", r.Pros)
	_ = v.Set("cons", r.Cons)
	_ = v.Set("review_text", r.ReviewText)
	_ = v.Set("suggestions", r.Suggestions)
	v.SetChecked("issues_occured", r.IssuesOccured)
	_ = v.Set("issues_note", r.IssuesNote)
	v.SetChecked("ready_for_next", r.ReadyForNext)
	v.SetChecked("consent_publication", r.ConsentPublication)
	v.SetChecked("consent_personal_data", r.ConsentPersonalData)
}

// Prefill seeds a new report with identity and item name.
func (f *Form) Prefill(fullName, contact, itemName string) {
	_ = f.values.Set("full_name", fullName)
	_ = f.values.Set("contact", contact)
	_ = f.values.Set("item_name", itemName)
}

// Apply sets user edits on an open sub-form.
func (f *Form) Apply(changes map[string]any) error {
	if !f.IsOpen() {
		return &domain.ErrReportClosed{}
	}
	if err := f.values.Apply(changes); err != nil {
		return err
	}
	if _, ok := changes["issues_occured"]; ok {
		f.SetIssuesOccured(f.values.Checked("issues_occured"))
	}
	return nil
}

// SetIssuesOccured toggles the issues flag; unchecking clears the note.
func (f *Form) SetIssuesOccured(occurred bool) {
	f.values.SetChecked("issues_occured", occurred)
	if !occurred {
		_ = f.values.Set("issues_note", "")
	}
}

// StageProofFile records a locally selected file. Staged files are never
// uploaded; they only survive until the sub-form closes.
func (f *Form) StageProofFile(name string) error {
	if !f.IsOpen() {
		return &domain.ErrReportClosed{}
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return &domain.ErrValidation{Field: "proof_file", Message: "file name is required"}
	}
	f.staged = append(f.staged, name)
	return nil
}

// StagedFiles returns the staged file names.
func (f *Form) StagedFiles() []string {
	return append([]string(nil), f.staged...)
}

// Validate checks the fields required for submission.
func (f *Form) Validate() error {
	if !f.IsOpen() {
		return &domain.ErrReportClosed{}
	}
	if missing := form.Missing(requirements, f.values); len(missing) > 0 {
		return &domain.ErrIncompleteStep{Step: 1, Fields: missing}
	}
	return nil
}

// Payload assembles the PATCH body. Scores that are blank or not integers
// become null; empty proof links are dropped.
func (f *Form) Payload() domain.TestReport {
	v := f.values
	r := domain.TestReport{
		PurchaseID:  f.purchaseID,
		FullName:    v.Trimmed("full_name"),
		Contact:     v.Trimmed("contact"),
		ItemName:    v.Trimmed("item_name"),
		Category:    v.Trimmed("category"),
		ReceivedAt:  v.Trimmed("received_at"),
		CompletedAt: v.Trimmed("completed_at"),
		ReportType:  v.Trimmed("report_type"),
		ProofLinks:  v.Collect("proof_links"),

		QualityScore:          parseScore(v.Trimmed("quality_score")),
		PackagingScore:        parseScore(v.Trimmed("packaging_score")),
		DeliveryScore:         parseScore(v.Trimmed("delivery_score")),
		DescriptionMatchScore: parseScore(v.Trimmed("description_match_score")),
		ValueScore:            parseScore(v.Trimmed("value_score")),
		OverallScore:          parseScore(v.Trimmed("overall_score")),

		Pros:        v.Trimmed("pros"),
		Cons:        v.Trimmed("cons"),
		ReviewText:  v.Trimmed("review_text"),
		Suggestions: v.Trimmed("suggestions"),

		IssuesOccured:       v.Checked("issues_occured"),
		ReadyForNext:        v.Checked("ready_for_next"),
		ConsentPublication:  v.Checked("consent_publication"),
		ConsentPersonalData: v.Checked("consent_personal_data"),
	}
	if r.IssuesOccured {
		r.IssuesNote = v.Trimmed("issues_note")
	}
	return r
}

// Render describes the sub-form.
func (f *Form) Render() View {
	if !f.IsOpen() {
		return View{}
	}
	view := View{
		Open:        true,
		PurchaseID:  f.purchaseID,
		Values:      f.values.Snapshot(),
		StagedFiles: f.StagedFiles(),
	}
	for _, r := range requirements {
		if !r.Visible(f.values) {
			view.Hidden = append(view.Hidden, r.Field())
		}
	}
	return view
}

func parseScore(s string) *int {
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

func formatScore(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}
