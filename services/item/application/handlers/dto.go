package handlers

import (
	"encoding/json"
	"strings"

	"github.com/ghuser/lostfound/services/item/domain/models"
)

const statusSuccess = "success"

// ItemResponse is the JSON form of an item. Attributes outside the canonical
// schema that were read back from older records are merged into the object.
type ItemResponse struct {
	ItemID             string `json:"item_id"               example:"550e8400-e29b-41d4-a716-446655440000"`
	ItemType           string `json:"item_type"             example:"FOUND"`
	CaseID             string `json:"case_id"               example:"440000"`
	Category           string `json:"category"              example:"wallet"`
	Brand              string `json:"brand,omitempty"       example:"Coach"`
	Details            string `json:"details,omitempty"     example:"brown leather, student card inside"`
	Location           string `json:"location"              example:"Central Library"`
	Date               string `json:"date,omitempty"        example:"2024-01-15"`
	Time               string `json:"time,omitempty"        example:"14:30"`
	ReporterName       string `json:"reporter_name"         example:"Somchai"`
	ReporterContact    string `json:"reporter_contact"      example:"0812345678"`
	ReporterStudentID  string `json:"reporter_student_id,omitempty"   example:"6401234567"`
	ReporterLiffUserID string `json:"reporter_liff_user_id,omitempty" example:"U4af4980629"`
	ImageURL           string `json:"image_url,omitempty"   example:"https://bucket.s3.amazonaws.com/found-items/wallet/2024-01-15/ab12.jpg"`
	Status             string `json:"status"                example:"REPORTED"`
	CreatedAt          string `json:"created_at"            example:"2024-01-15T10:30:00.000000Z"`
	UpdatedAt          string `json:"updated_at"            example:"2024-01-15T10:30:00.000000Z"`

	Extra map[string]any `json:"-" swaggerignore:"true"`
} // @name ItemResponse

// MarshalJSON merges Extra into the object. Canonical attributes win on collision.
func (r ItemResponse) MarshalJSON() ([]byte, error) {
	type plain ItemResponse
	data, err := json.Marshal(plain(r))
	if err != nil || len(r.Extra) == 0 {
		return data, err
	}
	merged := make(map[string]any, len(r.Extra)+17)
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, err
	}
	for k, v := range r.Extra {
		if _, taken := merged[k]; !taken {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

func toItemResponse(item *models.Item) ItemResponse {
	return ItemResponse{
		ItemID:             item.ID,
		ItemType:           item.Type.String(),
		CaseID:             item.CaseID,
		Category:           item.Category,
		Brand:              item.Brand,
		Details:            item.Details,
		Location:           item.Location,
		Date:               item.Date,
		Time:               item.Time,
		ReporterName:       item.Reporter.Name,
		ReporterContact:    item.Reporter.Contact,
		ReporterStudentID:  item.Reporter.StudentID,
		ReporterLiffUserID: item.Reporter.LiffUserID,
		ImageURL:           item.ImageURL,
		Status:             item.Status.String(),
		CreatedAt:          models.FormatTimestamp(item.CreatedAt),
		UpdatedAt:          models.FormatTimestamp(item.UpdatedAt),
		Extra:              item.Extra,
	}
}

func toItemResponses(items []*models.Item) []ItemResponse {
	out := make([]ItemResponse, len(items))
	for i, item := range items {
		out[i] = toItemResponse(item)
	}
	return out
}

// ItemEnvelope wraps a single item.
type ItemEnvelope struct {
	Status  string       `json:"status"            example:"success"`
	Message string       `json:"message,omitempty" example:"status changed to RETURNED"`
	Item    ItemResponse `json:"item"`
} // @name ItemEnvelope

// MessageResponse is a success acknowledgement without a payload.
type MessageResponse struct {
	Status  string `json:"status"  example:"success"`
	Message string `json:"message" example:"logged in"`
} // @name MessageResponse

// ErrorResponse is returned on all error responses.
type ErrorResponse struct {
	Status string `json:"status" example:"error"`
	Error  string `json:"error"  example:"validation failed: category is required"`
} // @name ErrorResponse

func trim(s *string) {
	*s = strings.TrimSpace(*s)
}
