package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"

	auditdomain "github.com/crewbase/crewbase/internal/audit/domain"
	"github.com/crewbase/crewbase/internal/authz"
	"github.com/crewbase/crewbase/internal/config"
	identitydomain "github.com/crewbase/crewbase/internal/identity/domain"
	modulesdomain "github.com/crewbase/crewbase/internal/modules/domain"
	"github.com/crewbase/crewbase/internal/permission"
	projectdomain "github.com/crewbase/crewbase/internal/project/domain"
	"github.com/crewbase/crewbase/internal/resource"
	roledomain "github.com/crewbase/crewbase/internal/role/domain"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

// NewEngine builds the shared gin engine with recovery, request logging
// and the error envelope, plus the unauthenticated operational endpoints.
func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log.Named("http")))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	log         *zap.Logger
	genID       *snowflake.Node
	identitySvc identitydomain.Service
	projectSvc  projectdomain.Service
	roleSvc     roledomain.Service
	modulesSvc  modulesdomain.Service
	auditSvc    auditdomain.Service
	authz       *authz.Engine
	catalog     *permission.Catalog
	resources   resource.Repository
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	Log         *zap.Logger
	GenID       *snowflake.Node
	IdentitySvc identitydomain.Service
	ProjectSvc  projectdomain.Service
	RoleSvc     roledomain.Service
	ModulesSvc  modulesdomain.Service
	AuditSvc    auditdomain.Service
	Authz       *authz.Engine
	Catalog     *permission.Catalog
	Resources   resource.Repository
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		log:         p.Log.Named("http.server"),
		genID:       p.GenID,
		identitySvc: p.IdentitySvc,
		projectSvc:  p.ProjectSvc,
		roleSvc:     p.RoleSvc,
		modulesSvc:  p.ModulesSvc,
		auditSvc:    p.AuditSvc,
		authz:       p.Authz,
		catalog:     p.Catalog,
		resources:   p.Resources,
	}

	s.registerAuthRoutes()
	s.registerAdminRoutes()
	s.registerRoleRoutes()
	s.registerProjectRoutes()
	s.registerResourceRoutes()

	return s
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/v1/auth")
	auth.POST("/login", s.Login)
	auth.POST("/logout", s.Logout)
	auth.GET("/me", s.AuthRequired(), s.Me)

	s.engine.POST("/v1/invites/:code/accept", s.AuthRequired(), s.AcceptInvite)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/v1/admin", s.AuthRequired(), s.RequireAdmin())
	admin.GET("/users", s.ListUsers)
	admin.POST("/users", s.CreateUser)
	admin.POST("/users/:userID/block", s.BlockUser)
	admin.POST("/users/:userID/unblock", s.UnblockUser)
	admin.POST("/users/:userID/reset-password", s.ResetPassword)
}

func (s *Server) registerRoleRoutes() {
	authed := s.engine.Group("/v1", s.AuthRequired())
	authed.GET("/roles", s.ListRoles)
	authed.GET("/roles/:roleID", s.GetRole)
	authed.GET("/permissions", s.ListPermissions)

	admin := s.engine.Group("/v1", s.AuthRequired(), s.RequireAdmin())
	admin.POST("/roles", s.CreateRole)
	admin.PATCH("/roles/:roleID", s.UpdateRole)
	admin.PUT("/roles/:roleID/permissions", s.SetRolePermissions)
	admin.DELETE("/roles/:roleID", s.DeleteRole)
}

func (s *Server) registerProjectRoutes() {
	authed := s.engine.Group("/v1", s.AuthRequired())
	authed.POST("/projects", s.CreateProject)
	authed.GET("/projects", s.ListProjects)

	project := authed.Group("/projects/:projectID", s.ProjectContext())
	project.GET("", s.GetProject)
	project.PATCH("", s.RequireManage(), s.UpdateProjectStatus)
	project.POST("/transfer", s.TransferOwnership)

	members := project.Group("/members", s.RequirePermission("projects.members"))
	members.GET("", s.ListMembers)
	members.POST("", s.AddMember)
	members.PATCH("/:userID/role", s.ChangeMemberRole)
	members.POST("/:userID/suspend", s.SuspendMember)
	members.POST("/:userID/activate", s.ActivateMember)
	members.DELETE("/:userID", s.RemoveMember)

	project.POST("/invites", s.RequirePermission("projects.members"), s.InviteMember)

	modules := project.Group("/modules")
	modules.GET("", s.ListModules)
	modules.PUT("/:moduleKey", s.RequirePermission("projects.modules"), s.SetModule)

	project.GET("/activity", s.RequirePermission("projects.view"), s.ListActivity)
}

func (s *Server) registerResourceRoutes() {
	project := s.engine.Group("/v1/projects/:projectID", s.AuthRequired(), s.ProjectContext())

	pos := project.Group("", s.RequireModule("pos"))
	pos.GET("/sales", s.RequirePermission("sale.view"), s.ListSales)
	pos.POST("/sales", s.RequirePermission("sale.create"), s.CreateSale)
	pos.PATCH("/sales/:id", s.UpdateSale)
	pos.POST("/sales/:id/cancel", s.CancelSale)
	pos.DELETE("/sales/:id", s.DeleteSale)

	pos.GET("/payments", s.RequirePermission("payment.view"), s.ListPayments)
	pos.POST("/payments", s.RequirePermission("payment.create"), s.CreatePayment)
	pos.PATCH("/payments/:id", s.UpdatePayment)
	pos.POST("/payments/:id/refund", s.RefundPayment)
	pos.POST("/payments/:id/reinstate", s.ReinstatePayment)

	hr := project.Group("", s.RequireModule("hr"))
	hr.GET("/workers", s.RequirePermission("worker.view"), s.ListWorkers)
	hr.POST("/workers", s.RequirePermission("worker.create"), s.CreateWorker)

	tasks := project.Group("", s.RequireModule("tasks"))
	tasks.GET("/tasks", s.RequirePermission("task.view"), s.ListTasks)
	tasks.POST("/tasks", s.RequirePermission("task.create"), s.CreateTask)
	tasks.GET("/tasks/:id", s.GetTask)
	tasks.POST("/tasks/:id/complete", s.CompleteTask)
	tasks.DELETE("/tasks/:id", s.RequirePermission("task.delete"), s.DeleteTask)
}
