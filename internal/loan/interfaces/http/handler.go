// Package http exposes the loan application endpoints.
package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	authdomain "github.com/wyfcoding/loanflow/internal/auth/domain"
	authhttp "github.com/wyfcoding/loanflow/internal/auth/interfaces/http"
	"github.com/wyfcoding/loanflow/internal/loan/application"
	"github.com/wyfcoding/loanflow/internal/loan/domain"
	"github.com/wyfcoding/pkg/logging"
	"github.com/wyfcoding/pkg/response"
)

type LoanHandler struct {
	cmd   *application.LoanCommandService
	query *application.LoanQueryService
	stats *application.StatsService
	auth  *authhttp.Authenticator
}

func NewLoanHandler(
	cmd *application.LoanCommandService,
	query *application.LoanQueryService,
	stats *application.StatsService,
	auth *authhttp.Authenticator,
) *LoanHandler {
	return &LoanHandler{cmd: cmd, query: query, stats: stats, auth: auth}
}

func (h *LoanHandler) RegisterRoutes(r *gin.RouterGroup) {
	g := r.Group("/loans")

	// Submission is public: applicants have no account.
	g.POST("/apply", h.Apply)

	reviewers := g.Group("")
	reviewers.Use(h.auth.RequireAuth())
	reviewers.GET("", h.List)
	reviewers.GET("/dashboard/stats", h.DashboardStats)
	reviewers.GET("/:id", h.Get)
	reviewers.PUT("/:id/verify", authhttp.RequireRoles(authdomain.RoleVerifier, authdomain.RoleAdmin), h.Verify)
	reviewers.PUT("/:id/approve", authhttp.RequireRoles(authdomain.RoleAdmin), h.Approve)
}

type applyRequest struct {
	FullName         string          `json:"fullName" binding:"required"`
	Email            string          `json:"email" binding:"required"`
	PhoneNumber      string          `json:"phoneNumber" binding:"required"`
	Address          string          `json:"address" binding:"required"`
	LoanAmount       decimal.Decimal `json:"loanAmount" binding:"required"`
	LoanPurpose      string          `json:"loanPurpose" binding:"required"`
	EmploymentStatus string          `json:"employmentStatus" binding:"required"`
	MonthlyIncome    decimal.Decimal `json:"monthlyIncome"`
	CreditScore      *int            `json:"creditScore"`
	Collateral       string          `json:"collateral"`
}

func (h *LoanHandler) Apply(c *gin.Context) {
	var req applyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	dto, err := h.cmd.Submit(c.Request.Context(), application.SubmitLoanCommand{
		FullName:         req.FullName,
		Email:            req.Email,
		PhoneNumber:      req.PhoneNumber,
		Address:          req.Address,
		LoanAmount:       req.LoanAmount,
		LoanPurpose:      req.LoanPurpose,
		EmploymentStatus: req.EmploymentStatus,
		MonthlyIncome:    req.MonthlyIncome,
		CreditScore:      req.CreditScore,
		Collateral:       req.Collateral,
	})
	if err != nil {
		h.respondError(c, err, "loan submission failed")
		return
	}

	response.Success(c, gin.H{
		"message":     "Loan application submitted successfully",
		"application": dto,
	})
}

func (h *LoanHandler) List(c *gin.Context) {
	actor, ok := h.currentActor(c)
	if !ok {
		response.ErrorWithStatus(c, http.StatusUnauthorized, "authentication required", "")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(application.DefaultPageSize)))

	apps, pagination, err := h.query.ListApplications(c.Request.Context(), application.ListQuery{
		Actor:  actor,
		Status: c.Query("status"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		h.respondError(c, err, "loan listing failed")
		return
	}

	response.Success(c, gin.H{
		"applications": apps,
		"pagination":   pagination,
	})
}

func (h *LoanHandler) Get(c *gin.Context) {
	dto, err := h.query.GetApplication(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "loan lookup failed")
		return
	}
	response.Success(c, gin.H{"application": dto})
}

type decisionRequest struct {
	Action          string `json:"action" binding:"required"`
	RejectionReason string `json:"rejectionReason"`
}

// Verify decides a pending application: verify or reject.
func (h *LoanHandler) Verify(c *gin.Context) {
	h.decide(c, domain.StatusPending, domain.ActionVerify)
}

// Approve decides a verified application: approve or reject.
func (h *LoanHandler) Approve(c *gin.Context) {
	h.decide(c, domain.StatusVerified, domain.ActionApprove)
}

func (h *LoanHandler) decide(c *gin.Context, stage domain.LoanStatus, positive domain.Action) {
	actor, ok := h.currentActor(c)
	if !ok {
		response.ErrorWithStatus(c, http.StatusUnauthorized, "authentication required", "")
		return
	}

	var req decisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	action := domain.Action(req.Action)
	if action != positive && action != domain.ActionReject {
		response.ErrorWithStatus(c, http.StatusBadRequest, "unsupported action for this endpoint", "")
		return
	}

	dto, err := h.cmd.Decide(c.Request.Context(), application.DecideCommand{
		ApplicationID: c.Param("id"),
		Action:        action,
		Reason:        req.RejectionReason,
		Actor:         actor,
		Stage:         stage,
	})
	if err != nil {
		h.respondError(c, err, "loan decision failed")
		return
	}

	response.Success(c, gin.H{
		"message":     "Application " + dto.Status + " successfully",
		"application": dto,
	})
}

func (h *LoanHandler) DashboardStats(c *gin.Context) {
	stats, err := h.stats.DashboardStats(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "dashboard stats failed")
		return
	}
	response.Success(c, gin.H{"stats": stats})
}

func (h *LoanHandler) currentActor(c *gin.Context) (application.Actor, bool) {
	actor, ok := authhttp.CurrentActor(c)
	if !ok {
		return application.Actor{}, false
	}
	return application.Actor{
		ID:   strconv.FormatUint(uint64(actor.ID), 10),
		Role: domain.Role(actor.Role),
	}, true
}

func (h *LoanHandler) respondError(c *gin.Context, err error, logMsg string) {
	status := StatusForError(err)
	if status == http.StatusInternalServerError {
		logging.Error(c.Request.Context(), logMsg, "error", err)
	}
	response.ErrorWithStatus(c, status, err.Error(), "")
}

// StatusForError maps the core error taxonomy onto stable HTTP statuses.
func StatusForError(err error) int {
	var validation *domain.ValidationError
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrStateConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}
