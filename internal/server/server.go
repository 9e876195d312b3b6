package server

import (
	"context"
	"net/http"
	"time"

	"github.com/dar44/reserva-municipal-sub001/internal/auth"
	"github.com/dar44/reserva-municipal-sub001/internal/booking"
	"github.com/dar44/reserva-municipal-sub001/internal/config"
	"github.com/dar44/reserva-municipal-sub001/internal/course"
	"github.com/dar44/reserva-municipal-sub001/internal/coursebooking"
	"github.com/dar44/reserva-municipal-sub001/internal/email"
	"github.com/dar44/reserva-municipal-sub001/internal/payment"
	"github.com/dar44/reserva-municipal-sub001/internal/user"
	"github.com/dar44/reserva-municipal-sub001/internal/venue"
	"github.com/gin-gonic/gin"
)

// Handlers groups the HTTP handlers the router mounts.
type Handlers struct {
	User          *user.Handler
	Venue         *venue.Handler
	Course        *course.Handler
	Booking       *booking.Handler
	CourseBooking *coursebooking.Handler
	Payment       *payment.Handler
}

type Server struct {
	router  *gin.Engine
	http    *http.Server
	limiter *RateLimiter
	config  *config.Config
}

func New(cfg *config.Config, h Handlers, emailService *email.Service) *Server {
	limiter := NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.RateLimitTTL)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		RequestIDMiddleware(),
		RequestLoggingMiddleware(),
		MetricsMiddleware(),
		corsMiddleware(),
		limiter.Middleware(),
	)

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	SetupSwagger(router, cfg.SwaggerHost)

	public := router.Group("/auth")
	{
		public.POST("/register", h.User.Register)
		public.POST("/login", h.User.Login)
		public.POST("/refresh", h.User.RefreshToken)
	}

	// Signed by the provider, not by our JWT.
	router.POST("/webhooks/pagos", h.Payment.Webhook)

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	staffOnly := auth.RequireRole(auth.RoleWorker, auth.RoleAdmin)
	organizers := auth.RequireRole(auth.RoleOrganizer, auth.RoleAdmin)

	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", h.User.GetMe)

		protected.GET("/recintos", h.Venue.List)
		protected.GET("/recintos/:id", h.Venue.Get)
		protected.GET("/recintos/:id/reservas", staffOnly, h.Booking.ListByVenue)

		protected.POST("/reservas", h.Booking.Create)
		protected.GET("/reservas/mias", h.Booking.ListMine)
		protected.DELETE("/reservas/:id", h.Booking.Cancel)
		protected.POST("/reservas/:id/pago", h.Payment.PayReserva)

		protected.GET("/cursos", h.Course.List)
		protected.POST("/cursos", organizers, h.Course.Create)
		protected.POST("/cursos/:id/inscripciones", h.Course.Enroll)
		protected.GET("/inscripciones/mias", h.Course.ListMyEnrollments)
		protected.POST("/inscripciones/:id/pago", h.Payment.PayInscripcion)

		protected.GET("/pagos/:id/estado", h.Payment.Status)

		protected.POST("/curso-reservas", organizers, h.CourseBooking.Request)
		protected.GET("/curso-reservas/mias", organizers, h.CourseBooking.ListMine)
		protected.GET("/curso-reservas/pendientes", staffOnly, h.CourseBooking.ListPending)
		protected.PUT("/curso-reservas/:id/decision", staffOnly, h.CourseBooking.Decide)
	}

	admin := router.Group("/admin")
	admin.Use(authMiddleware, auth.RequireRole(auth.RoleAdmin))
	{
		admin.POST("/recintos", h.Venue.Create)
		admin.PUT("/recintos/:id/estado", h.Venue.SetState)
		admin.PUT("/users/:id/role", h.User.SetRole)
		admin.GET("/analytics/reservas", h.Booking.Stats)
		if emailService != nil {
			admin.GET("/test-email", TestEmail(emailService))
		}
	}

	return &Server{
		router:  router,
		limiter: limiter,
		config:  cfg,
	}
}

// Router exposes the engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:              ":" + port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s.http.ListenAndServe()
}

// Shutdown drains in-flight requests and stops background work.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID, X-Signature")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
