package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/iwvelando/mortgage-simulator/internal/config"
	"github.com/iwvelando/mortgage-simulator/internal/simulation"
)

// simulationRequest is the JSON body accepted by the calculate and save
// routes. Tags only check the shape of the payload; business rules are left
// to simulation.Validate so their messages reach the caller unchanged.
type simulationRequest struct {
	ClientID               string  `json:"clientId" validate:"max=64"`
	ClientName             string  `json:"clientName" validate:"max=200"`
	TargetProgram          string  `json:"targetProgram" validate:"max=64"`
	FinancialEntity        string  `json:"financialEntity" validate:"max=64"`
	PropertyValue          float64 `json:"propertyValue"`
	DownPayment            float64 `json:"downPayment"`
	SubsidyAmount          float64 `json:"subsidyAmount"`
	RateKind               string  `json:"rateKind" validate:"omitempty,oneof=ANNUAL_EFFECTIVE MONTHLY_EFFECTIVE TEA TEM"`
	InterestRate           float64 `json:"interestRate"`
	TermMonths             int     `json:"termMonths" validate:"lte=600"`
	GracePeriodMonths      int     `json:"gracePeriodMonths"`
	PaymentStartDate       string  `json:"paymentStartDate" validate:"omitempty,datetime=2006-01-02"`
	LifeInsurance          float64 `json:"lifeInsurance"`
	PropertyInsurance      float64 `json:"propertyInsurance"`
	AppraisalFee           float64 `json:"appraisalFee"`
	NotarialFee            float64 `json:"notarialFee"`
	DisbursementCommission float64 `json:"disbursementCommission"`
}

// exportRequest carries the simulations to serialize as a config file.
type exportRequest struct {
	Simulations []simulationRequest `json:"simulations" validate:"required,min=1,dive"`
}

func (r simulationRequest) toConfig() config.Simulation {
	return config.Simulation{
		ClientID:               r.ClientID,
		ClientName:             r.ClientName,
		TargetProgram:          r.TargetProgram,
		FinancialEntity:        r.FinancialEntity,
		PropertyValue:          r.PropertyValue,
		DownPayment:            r.DownPayment,
		SubsidyAmount:          r.SubsidyAmount,
		RateKind:               r.RateKind,
		InterestRate:           r.InterestRate,
		TermMonths:             r.TermMonths,
		GracePeriodMonths:      r.GracePeriodMonths,
		PaymentStartDate:       r.PaymentStartDate,
		LifeInsurance:          r.LifeInsurance,
		PropertyInsurance:      r.PropertyInsurance,
		AppraisalFee:           r.AppraisalFee,
		NotarialFee:            r.NotarialFee,
		DisbursementCommission: r.DisbursementCommission,
	}
}

func (r simulationRequest) toInput() (simulation.Input, error) {
	return r.toConfig().ToInput()
}

type validationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error   string             `json:"error"`
	Errors  []string           `json:"errors,omitempty"`
	Stage   string             `json:"stage,omitempty"`
	Details []validationDetail `json:"details,omitempty"`
}

// requestError is a decoding or shape failure reported with status 400, or
// 413 when the body exceeded the upload limit.
type requestError struct {
	status  int
	msg     string
	details []validationDetail
}

func (e *requestError) Error() string {
	return e.msg
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeRequest reads a single JSON document into dst and validates it.
func (h *Handler) decodeRequest(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.UploadSizeBytes())

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return &requestError{
				status: http.StatusRequestEntityTooLarge,
				msg:    fmt.Sprintf("request body exceeds limit of %d bytes", h.cfg.UploadSizeBytes()),
			}
		}
		return &requestError{status: http.StatusBadRequest, msg: fmt.Sprintf("failed to decode request: %v", err)}
	}
	if _, err := decoder.Token(); err != io.EOF {
		return &requestError{status: http.StatusBadRequest, msg: "request body must contain a single JSON document"}
	}

	if err := h.validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return &requestError{status: http.StatusBadRequest, msg: err.Error()}
		}
		details := make([]validationDetail, 0, len(validationErrors))
		for _, e := range validationErrors {
			details = append(details, validationDetail{
				Field:   e.Namespace()[strings.Index(e.Namespace(), ".")+1:],
				Message: validationMessage(e),
			})
		}
		return &requestError{status: http.StatusBadRequest, msg: "request validation failed", details: details}
	}
	return nil
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "oneof":
		return "Must be one of: " + e.Param()
	case "datetime":
		return "Must be a date formatted as " + e.Param()
	case "min":
		return "Must contain at least " + e.Param() + " items"
	case "max":
		return "Must be at most " + e.Param() + " characters"
	case "lte":
		return "Must be less than or equal to " + e.Param()
	default:
		return "Invalid value"
	}
}
