package routes

import (
	"net/http"
	"time"

	"shop_return_desk/app"
	"shop_return_desk/controllers"
	"shop_return_desk/models"

	"github.com/gin-gonic/gin"
)

const lastSeenThrottle = 5 * time.Minute

func RegisterRoutes(r *gin.Engine, a *app.App) {
	s := controllers.GetSrv(a)
	uc := controllers.GetUserController(a)
	inviteCtl := controllers.GetInviteController(a)
	statsCtl := controllers.NewStatsController(a.Stats)
	returnItems := controllers.NewRecordController(a.ReturnItems, a.SubmitGate(), a.Printer)
	laptopReturns := controllers.NewRecordController(a.LaptopReturns, a.SubmitGate(), a.Printer)

	authMW := app.AuthRequired(a.AppSessions(), a.Accounts, a.Config)
	adminMW := app.AdminOnly()
	seenMW := app.TouchLastSeen(a.Accounts, a.RDB, lastSeenThrottle, a.Log)

	r.GET("/healthz", func(c *app.Ctx) { c.JSON(http.StatusOK, app.H{"ok": true}) })
	r.GET("/metrics", gin.WrapH(a.Metrics.Handler()))

	// Passkeys
	wa := r.Group("/webauthn")
	{
		wa.POST("/register/begin", s.BeginRegistration)
		wa.POST("/register/finish", s.FinishRegistration)

		wa.POST("/login/begin", s.BeginLogin)
		wa.POST("/login/finish", s.FinishLogin)
	}
	waAuth := wa.Group("", authMW, seenMW)
	{
		waAuth.GET("/whoami", s.WhoAmI)
		waAuth.POST("/logout", s.Logout)
	}

	creds := r.Group("/api/credentials", authMW, seenMW)
	{
		creds.POST("/add/begin", s.BeginAddCredential)
		creds.POST("/add/finish", s.FinishAddCredential)
	}

	// Admin
	admin := r.Group("/admin", authMW, adminMW)
	{
		admin.POST("/invites", inviteCtl.CreateInvite)
	}
	users := r.Group("/api/users", authMW, adminMW)
	{
		users.GET("", uc.ListUsers) // ?q=&page=&size=
		users.GET("/:id", uc.GetUser)
		users.PUT("/:id/admin", uc.SetAdmin)
		users.DELETE("/:id", uc.DeleteUser)
	}

	// Records
	mountRecords(r.Group("/api/return-items", authMW, seenMW), returnItems)
	mountRecords(r.Group("/api/laptop-returns", authMW, seenMW), laptopReturns)

	st := r.Group("/api/stats/:collection", authMW, seenMW)
	{
		st.GET("/overview", statsCtl.Overview)
		st.GET("/trends", statsCtl.Trends)
		st.GET("/brands", statsCtl.Brands)
	}
}

func mountRecords[T any, P models.Entity[T]](g *gin.RouterGroup, rc *controllers.RecordController[T, P]) {
	g.GET("", rc.List) // ?q=&brand=&store_code=&date_from=&date_to=&sort=&order=
	g.POST("", rc.Create)
	g.GET("/facets", rc.Facets)
	g.GET("/export", rc.Export)
	g.GET("/:id", rc.Get)
	g.PUT("/:id", rc.Update)
	g.DELETE("/:id", rc.Delete)
	g.GET("/:id/receipt", rc.Receipt) // ?mode=preview|print
}
