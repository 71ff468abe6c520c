package routers

import (
	authController "elearning/controllers/auth"
	certificateController "elearning/controllers/certificate"
	enrollmentController "elearning/controllers/enrollment"
	forumController "elearning/controllers/forum"
	invoiceController "elearning/controllers/invoice"
	programController "elearning/controllers/program"
	userController "elearning/controllers/userControllers"
	"elearning/middleware"
	"elearning/routers/authRoutes"
	"elearning/routers/certificateRoutes"
	"elearning/routers/enrollmentRoutes"
	"elearning/routers/forumRoutes"
	"elearning/routers/invoiceRoutes"
	"elearning/routers/programRoutes"
	"elearning/routers/userRoutes"
	"elearning/services"
	"elearning/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

type Services struct {
	Users        *services.UserService
	Programs     *services.ProgramService
	Enrollments  *services.EnrollmentService
	Certificates *services.CertificateService
	Invoices     *services.InvoiceService
	Forum        *services.ForumService
}

// NewServices builds every service on the same dependencies.
func NewServices(d services.Deps, tokens *utils.TokenManager, saltRound int) Services {
	return Services{
		Users:        services.NewUserService(d, tokens, saltRound),
		Programs:     services.NewProgramService(d),
		Enrollments:  services.NewEnrollmentService(d),
		Certificates: services.NewCertificateService(d),
		Invoices:     services.NewInvoiceService(d),
		Forum:        services.NewForumService(d),
	}
}

type Options struct {
	Log      *zap.SugaredLogger
	Tokens   *utils.TokenManager
	Services Services
	// StaticDir is served at "/" when set (local object storage).
	StaticDir string
	AccessLog bool
}

func NewApp(opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "elearning",
		ErrorHandler: middleware.ErrorHandler(opts.Log),
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE",
		AllowHeaders: "Content-Type,Authorization",
	}))

	// Enable the built-in logger middleware to log all requests
	if opts.AccessLog {
		app.Use(logger.New(logger.Config{
			Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
		}))
	}

	// Serve static files from the public folder
	if opts.StaticDir != "" {
		app.Static("/", opts.StaticDir)
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "OK", nil)
	})

	auth := middleware.NewAuth(opts.Tokens, opts.Services.Users)
	authRoutes.SetupAuthRoutes(app, auth, authController.New(opts.Services.Users))
	userRoutes.SetupUserRoutes(app, auth, userController.New(opts.Services.Users))
	programRoutes.SetupProgramRoutes(app, auth, programController.New(opts.Services.Programs))
	enrollmentRoutes.SetupEnrollmentRoutes(app, auth, enrollmentController.New(opts.Services.Enrollments))
	certificateRoutes.SetupCertificateRoutes(app, auth, certificateController.New(opts.Services.Certificates))
	invoiceRoutes.SetupInvoiceRoutes(app, auth, invoiceController.New(opts.Services.Invoices))
	forumRoutes.SetupForumRoutes(app, auth, forumController.New(opts.Services.Forum))

	app.Use(func(c *fiber.Ctx) error {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Route not found!", nil)
	})
	return app
}
