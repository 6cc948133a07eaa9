package handlers

import (
	"police_flow_app_go/config"
	"police_flow_app_go/middleware"
	"police_flow_app_go/models"
	"police_flow_app_go/services"

	"github.com/labstack/echo/v4"
)

// RegisterRoutes mounts the public and authenticated API on e
func RegisterRoutes(e *echo.Echo, wf *services.Workflow, cfg *config.Config) {
	e.Use(WithWorkflow(wf, cfg))

	// Public routes (no authentication required)
	e.POST("/login", LoginPostHandler, middleware.LoginRateLimit())
	e.GET("/most-wanted", MostWantedHandler)
	e.GET("/most-wanted.xlsx", MostWantedExportHandler)
	e.GET("/payments/callback", PaymentCallbackHandler)

	protected := e.Group("")
	protected.Use(middleware.RequireAuth())
	protected.Use(middleware.AuditContext())
	{
		protected.POST("/logout", LogoutHandler)
		protected.GET("/api/me", GetCurrentUserHandler)

		protected.GET("/api/notifications", GetNotificationsHandler)
		protected.POST("/api/notifications/:id/read", MarkNotificationReadHandler)
		protected.POST("/api/notifications/read-all", MarkAllNotificationsReadHandler)
	}

	complaints := protected.Group("/api/complaints")
	{
		complaints.POST("", SubmitComplaintHandler)
		complaints.GET("", ListComplaintsHandler)
		complaints.GET("/:id", GetComplaintHandler)
		complaints.POST("/:id/intern-review", InternReviewComplaintHandler)
		complaints.POST("/:id/officer-review", OfficerReviewComplaintHandler)
		complaints.POST("/:id/resubmit", ResubmitComplaintHandler)
	}

	cases := protected.Group("/api/cases")
	{
		cases.POST("", CreateCaseHandler)
		cases.GET("", ListCasesHandler)
		cases.GET("/:id", GetCaseHandler)
		cases.POST("/:id/approve", ApproveCaseHandler)
		cases.POST("/:id/status", UpdateCaseStatusHandler)
		cases.POST("/:id/assign-detective", AssignDetectiveHandler)
		cases.POST("/:id/assign-sergeant", AssignSergeantHandler)
		cases.POST("/:id/witnesses", AddWitnessHandler)
		cases.POST("/:id/complainants", AddComplainantHandler)
		cases.POST("/:id/evidence", AddEvidenceHandler)
		cases.GET("/:id/evidence", ListCaseEvidenceHandler)
		cases.POST("/:id/suspects", AddSuspectHandler)
		cases.GET("/:id/suspects", ListCaseSuspectsHandler)
		cases.GET("/:id/trial", GetCaseTrialHandler)
		cases.GET("/:id/dossier", GetCaseDossierHandler)
		cases.GET("/:id/board", GetBoardHandler)
		cases.POST("/:id/board", OpenBoardHandler)
		cases.PUT("/:id/board", UpdateBoardLayoutHandler)
		cases.POST("/:id/board/connections", ConnectEvidenceHandler)
	}

	suspects := protected.Group("/api/suspects")
	{
		suspects.GET("/:id", GetSuspectHandler)
		suspects.POST("/:id/status", UpdateSuspectStatusHandler)
		suspects.GET("/:id/scores", ListGuiltScoresHandler)
		suspects.POST("/:id/scores", AddGuiltScoreHandler)
		suspects.GET("/:id/decisions", ListSuspectDecisionsHandler)
		suspects.POST("/:id/decisions", CreateDecisionHandler)
		suspects.POST("/:id/interrogations", AddInterrogationHandler)
	}

	protected.GET("/api/decisions/:id", GetDecisionHandler)
	protected.POST("/api/decisions/:id/chief-approval", ChiefApprovalHandler)
	protected.GET("/api/trials/:id", GetTrialHandler)
	protected.POST("/api/trials/:id/schedule", ScheduleTrialHandler)
	protected.POST("/api/trials/:id/verdict", RecordVerdictHandler)
	protected.POST("/api/evidence/:id/verify", VerifyEvidenceHandler)

	rewards := protected.Group("")
	{
		rewards.POST("/api/reward-submissions", SubmitRewardInfoHandler)
		rewards.GET("/api/reward-submissions/:id", GetRewardSubmissionHandler)
		rewards.POST("/api/reward-submissions/:id/officer-review", OfficerReviewSubmissionHandler)
		rewards.POST("/api/reward-submissions/:id/detective-review", DetectiveReviewSubmissionHandler)
		rewards.GET("/api/rewards/lookup", LookupRewardHandler, middleware.RewardClaimRateLimit())
		rewards.POST("/api/rewards/:id/claim", ClaimRewardHandler, middleware.RewardClaimRateLimit())
	}

	payments := protected.Group("")
	{
		payments.POST("/api/bail-fines", CreateBailFineHandler)
		payments.GET("/api/bail-fines/:id", GetBailFineHandler)
		payments.POST("/api/bail-fines/:id/pay", RequestPaymentHandler)
		payments.POST("/api/payments/:trackingId/verify", VerifyPaymentHandler)
		payments.GET("/api/payments/:trackingId/inquiry", InquirePaymentHandler)
	}

	admin := protected.Group("/api/admin")
	admin.Use(middleware.RequireRole(models.RoleSystemAdministrator, models.RolePoliceChief))
	{
		admin.GET("/audit-logs", GetAuditLogsHandler)
		admin.GET("/audit-logs/:type/:id", GetResourceHistoryHandler)
		admin.GET("/security-alerts", GetSecurityAlertsHandler)
	}
}
