package domain

// ============================================================
// Test report: upstream /orders/purchases/{id}/report/
// ============================================================

// TestReport is the structured feedback for one purchase.
// Scores are nil when left blank. IssuesNote is only meaningful when
// IssuesOccured is true.
type TestReport struct {
	PurchaseID int64 `json:"purchase_id,omitempty"`

	FullName string `json:"full_name"`
	Contact  string `json:"contact"`

	ItemName    string `json:"item_name"`
	Category    string `json:"category"`
	ReceivedAt  string `json:"received_at"`
	CompletedAt string `json:"completed_at"`

	ReportType string   `json:"report_type"`
	ProofLinks []string `json:"proof_links"`

	QualityScore          *int `json:"quality_score"`
	PackagingScore        *int `json:"packaging_score"`
	DeliveryScore         *int `json:"delivery_score"`
	DescriptionMatchScore *int `json:"description_match_score"`
	ValueScore            *int `json:"value_score"`
	OverallScore          *int `json:"overall_score"`

	Pros        string `json:"pros"`
	Cons        string `json:"cons"`
	ReviewText  string `json:"review_text"`
	Suggestions string `json:"suggestions"`

	IssuesOccured       bool   `json:"issues_occured"`
	IssuesNote          string `json:"issues_note"`
	ReadyForNext        bool   `json:"ready_for_next"`
	ConsentPublication  bool   `json:"consent_publication"`
	ConsentPersonalData bool   `json:"consent_personal_data"`

	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}
