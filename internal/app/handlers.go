package app

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rvceconnect/rvce-connect-go/internal/eligibility"
	domerrors "github.com/rvceconnect/rvce-connect-go/internal/errors"
	"github.com/rvceconnect/rvce-connect-go/internal/logger"
	"github.com/rvceconnect/rvce-connect-go/internal/metrics"
	"github.com/rvceconnect/rvce-connect-go/internal/signup"
	"github.com/rvceconnect/rvce-connect-go/internal/timeutil"
)

// api serves the /api/v1 validation endpoints. Every check uses clock() as
// the reference date, so one request sees a single consistent "now".
type api struct {
	inst    eligibility.Institution
	parser  *eligibility.EmailParser
	calc    *eligibility.Calculator
	signup  *signup.Validator
	clock   timeutil.Clock
	metrics *metrics.Metrics
	logger  *logger.Logger
}

func newAPI(inst eligibility.Institution, clock timeutil.Clock, m *metrics.Metrics, log *logger.Logger) *api {
	return &api{
		inst:    inst,
		parser:  eligibility.NewEmailParser(inst),
		calc:    eligibility.NewCalculator(inst),
		signup:  signup.NewValidator(inst),
		clock:   clock,
		metrics: m,
		logger:  log,
	}
}

func (h *api) register(r gin.IRoutes) {
	r.POST("/email/validate", h.validateEmail)
	r.GET("/semester/allowed", h.allowedSemester)
	r.POST("/semester/check", h.checkSemester)
	r.POST("/signup/validate", h.validateSignup)
	r.GET("/institution", h.institution)
}

type errorResponse struct {
	Error string `json:"error"`
}

type emailRequest struct {
	Email string `json:"email" binding:"max=254"`
}

type emailResponse struct {
	Valid    bool                  `json:"valid"`
	Identity *eligibility.Identity `json:"identity,omitempty"`
	Reason   eligibility.Reason    `json:"reason,omitempty"`
	Message  string                `json:"message,omitempty"`
}

type allowedSemesterQuery struct {
	Year  int `form:"year" binding:"required,min=1,max=9999"`
	Month int `form:"month" binding:"required,min=1,max=12"`
}

type allowedSemesterResponse struct {
	MaxAllowedSemester int  `json:"maxAllowedSemester"`
	ElapsedMonths      int  `json:"elapsedMonths"`
	FutureEnrollment   bool `json:"futureEnrollment"`
}

type semesterCheckRequest struct {
	DeclaredSemester int `json:"declaredSemester" binding:"required,min=1"`
	EnrollYear       int `json:"enrollYear" binding:"required,min=1,max=9999"`
	EnrollMonth      int `json:"enrollMonth" binding:"required,min=1,max=12"`
}

type semesterCheckResponse struct {
	Valid      bool               `json:"valid"`
	MaxAllowed int                `json:"maxAllowed"`
	Reason     eligibility.Reason `json:"reason,omitempty"`
	Message    string             `json:"message,omitempty"`
}

type signupResponse struct {
	Valid              bool                  `json:"valid"`
	Errors             map[string]string     `json:"errors"`
	Identity           *eligibility.Identity `json:"identity,omitempty"`
	DisplayName        string                `json:"displayName,omitempty"`
	MaxAllowedSemester int                   `json:"maxAllowedSemester,omitempty"`
}

type yearWindow struct {
	From int `json:"from"`
	To   int `json:"to"`
}

type institutionResponse struct {
	Name              string     `json:"name"`
	EmailDomain       string     `json:"emailDomain"`
	Branches          []string   `json:"branches"`
	MaxSemester       int        `json:"maxSemester"`
	MonthsPerSemester int        `json:"monthsPerSemester"`
	YearWindow        yearWindow `json:"yearWindow"`
}

// badRequest writes a 400 with the user-facing message of err.
func (h *api) badRequest(c *gin.Context, op string, err error, userMessage string) {
	wrapped := domerrors.NewWrapper("api", op).Wrap(err, userMessage)
	h.logger.WithError(wrapped).DebugContext(c.Request.Context(), "Rejected malformed request")
	c.JSON(http.StatusBadRequest, errorResponse{Error: domerrors.GetUserMessage(wrapped)})
}

func (h *api) validateEmail(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "bind_email", err, "Request body must be JSON with an email of at most 254 characters")
		return
	}

	outcome := h.parser.Validate(req.Email, h.clock())
	if !outcome.Valid() {
		h.metrics.RecordValidation(metrics.CheckEmail, string(outcome.Failure.Reason))
		h.logger.WithField("reason", outcome.Failure.Reason).DebugContext(c.Request.Context(), "Email rejected")
		c.JSON(http.StatusOK, emailResponse{
			Reason:  outcome.Failure.Reason,
			Message: outcome.Failure.Message,
		})
		return
	}

	h.metrics.RecordValidation(metrics.CheckEmail, "")
	id := outcome.Identity
	c.JSON(http.StatusOK, emailResponse{Valid: true, Identity: &id})
}

func (h *api) allowedSemester(c *gin.Context) {
	var q allowedSemesterQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.badRequest(c, "bind_allowed_semester", err, "Query parameters year (1-9999) and month (1-12) are required")
		return
	}

	enroll := eligibility.EnrollmentDate{Year: q.Year, Month: q.Month}
	if err := enroll.Validate(); err != nil {
		h.badRequest(c, "validate_allowed_semester", err, domerrors.GetUserMessage(err))
		return
	}

	now := h.clock()
	c.JSON(http.StatusOK, allowedSemesterResponse{
		MaxAllowedSemester: h.calc.AllowedSemester(enroll, now),
		ElapsedMonths:      h.calc.ElapsedMonths(enroll, now),
		FutureEnrollment:   h.calc.IsFutureEnrollment(enroll, now),
	})
}

func (h *api) checkSemester(c *gin.Context) {
	var req semesterCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "bind_semester_check", err,
			"declaredSemester, enrollYear (1-9999) and enrollMonth (1-12) must be positive integers")
		return
	}

	enroll := eligibility.EnrollmentDate{Year: req.EnrollYear, Month: req.EnrollMonth}
	if err := enroll.Validate(); err != nil {
		h.badRequest(c, "validate_semester_check", err, domerrors.GetUserMessage(err))
		return
	}

	outcome := h.calc.CheckEligibility(req.DeclaredSemester, enroll, h.clock())

	resp := semesterCheckResponse{Valid: outcome.Valid, MaxAllowed: outcome.MaxAllowed}
	reason := ""
	if outcome.Failure != nil {
		resp.Reason = outcome.Failure.Reason
		resp.Message = outcome.Failure.Message
		reason = string(outcome.Failure.Reason)
	}
	h.metrics.RecordValidation(metrics.CheckSemester, reason)
	c.JSON(http.StatusOK, resp)
}

func (h *api) validateSignup(c *gin.Context) {
	var form signup.Form
	if err := c.ShouldBindJSON(&form); err != nil {
		h.badRequest(c, "bind_signup", err, "Request body must be a JSON signup form")
		return
	}

	res := h.signup.Validate(form, h.clock())
	resp := signupResponse{
		Valid:              res.Valid(),
		Errors:             res.Errors,
		Identity:           res.Identity,
		MaxAllowedSemester: res.MaxAllowedSemester,
	}
	if res.Identity != nil && !form.Anonymous {
		resp.DisplayName = res.Identity.DisplayName()
	}

	if resp.Valid {
		h.metrics.RecordValidation(metrics.CheckSignup, "")
	} else {
		for field := range res.Errors {
			h.metrics.RecordValidation(metrics.CheckSignup, field)
		}
		h.logger.WithError(res.Err()).DebugContext(c.Request.Context(), "Signup form rejected")
	}
	c.JSON(http.StatusOK, resp)
}

func (h *api) institution(c *gin.Context) {
	low, high := h.parser.YearWindow(h.clock())
	c.JSON(http.StatusOK, institutionResponse{
		Name:              h.inst.Name,
		EmailDomain:       h.inst.DomainSuffix,
		Branches:          h.inst.BranchCodes,
		MaxSemester:       h.inst.MaxSemester,
		MonthsPerSemester: h.inst.MonthsPerSemester,
		YearWindow:        yearWindow{From: 2000 + low, To: 2000 + high},
	})
}
