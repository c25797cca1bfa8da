package handlers

import (
	"context"
	"net/http"

	"github.com/ghuser/lostfound/pkg/errhttp"
	"github.com/ghuser/lostfound/pkg/httpx"
	pkgvalidator "github.com/ghuser/lostfound/pkg/validator"
	appsvcs "github.com/ghuser/lostfound/services/item/application/services"
	"github.com/ghuser/lostfound/services/item/domain/models"
)

// ReportItemRequest is the request body for filing a lost or found report.
// Whether date is required depends on the report type and is checked by the domain.
type ReportItemRequest struct {
	Category           string `json:"category"              validate:"required,max=2000" example:"wallet"`
	Brand              string `json:"brand"                 validate:"max=2000"          example:"Coach"`
	Details            string `json:"details"               validate:"max=2000"          example:"brown leather"`
	Location           string `json:"location"              validate:"required,max=2000" example:"Central Library"`
	Date               string `json:"date"                  validate:"max=64"            example:"2024-01-15"`
	Time               string `json:"time"                  validate:"max=64"            example:"14:30"`
	ReporterName       string `json:"reporter_name"         validate:"required,max=2000" example:"Somchai"`
	ReporterContact    string `json:"reporter_contact"      validate:"required,max=2000" example:"0812345678"`
	ReporterStudentID  string `json:"reporter_student_id"   validate:"max=64"            example:"6401234567"`
	ReporterLiffUserID string `json:"reporter_liff_user_id" validate:"max=256"           example:"U4af4980629"`
	// ImageBase64 is an optional data URL, e.g. data:image/jpeg;base64,...
	ImageBase64 string `json:"image_base64" example:"data:image/jpeg;base64,/9j/4AAQ..."`
} // @name ReportItemRequest

// Trim strips surrounding whitespace from every text field.
func (r *ReportItemRequest) Trim() {
	for _, f := range []*string{
		&r.Category, &r.Brand, &r.Details, &r.Location, &r.Date, &r.Time,
		&r.ReporterName, &r.ReporterContact, &r.ReporterStudentID, &r.ReporterLiffUserID,
		&r.ImageBase64,
	} {
		trim(f)
	}
}

func (r *ReportItemRequest) draft(t models.ItemType) models.Draft {
	return models.Draft{
		Type:     t,
		Category: r.Category,
		Brand:    r.Brand,
		Details:  r.Details,
		Location: r.Location,
		Date:     r.Date,
		Time:     r.Time,
		Reporter: models.Reporter{
			Name:       r.ReporterName,
			Contact:    r.ReporterContact,
			StudentID:  r.ReporterStudentID,
			LiffUserID: r.ReporterLiffUserID,
		},
	}
}

// ReportItemResponse is returned when a report is filed.
type ReportItemResponse struct {
	Status  string       `json:"status"  example:"success"`
	Message string       `json:"message" example:"found item reported"`
	ItemID  string       `json:"item_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	CaseID  string       `json:"case_id" example:"440000"`
	Item    ItemResponse `json:"item"`
} // @name ReportItemResponse

// IntakeHandler files lost and found reports.
type IntakeHandler struct {
	svc *appsvcs.Services
}

// NewIntakeHandler returns an IntakeHandler backed by the given services.
func NewIntakeHandler(svc *appsvcs.Services) *IntakeHandler {
	return &IntakeHandler{svc: svc}
}

// Found files a found-item report.
//
//	@Summary		Report a found item
//	@Description	Stores a found item with an optional image and returns its case id
//	@Tags			items
//	@Accept			json
//	@Produce		json
//	@Param			request	body		ReportItemRequest	true	"Found item report"
//	@Success		201		{object}	ReportItemResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/items/found [post]
func (h *IntakeHandler) Found(w http.ResponseWriter, r *http.Request) {
	h.execute(w, r, models.ItemTypeFound)
}

// Lost files a lost-item report.
//
//	@Summary		Report a lost item
//	@Description	Stores a lost item report with an optional image and returns its case id
//	@Tags			items
//	@Accept			json
//	@Produce		json
//	@Param			request	body		ReportItemRequest	true	"Lost item report"
//	@Success		201		{object}	ReportItemResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/items/lost [post]
func (h *IntakeHandler) Lost(w http.ResponseWriter, r *http.Request) {
	h.execute(w, r, models.ItemTypeLost)
}

func (h *IntakeHandler) execute(w http.ResponseWriter, r *http.Request, t models.ItemType) {
	req, ok := pkgvalidator.ValidateRequest[ReportItemRequest](w, r)
	if !ok {
		return
	}
	h.create(r.Context(), w, t, req)
}

func (h *IntakeHandler) create(ctx context.Context, w http.ResponseWriter, t models.ItemType, req *ReportItemRequest) {
	item, err := h.svc.Intake.Create(ctx, req.draft(t), req.ImageBase64)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	message := "found item reported"
	if t == models.ItemTypeLost {
		message = "lost item report submitted"
	}
	httpx.JSON(w, http.StatusCreated, ReportItemResponse{
		Status:  statusSuccess,
		Message: message,
		ItemID:  item.ID,
		CaseID:  item.CaseID,
		Item:    toItemResponse(item),
	})
}
