package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/gorilla/mux"
	"github.com/joeshaw/envdecode"
	joonix "github.com/joonix/log"
	"github.com/medbridge/backend/config"
	"github.com/medbridge/backend/db"
	"github.com/medbridge/backend/helpers"
	"github.com/medbridge/backend/middlewares"
	"github.com/medbridge/backend/notifications"
	"github.com/medbridge/backend/services"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/negroni"
)

const shutdownTimeout = 15 * time.Second

func recoveryHandler(w http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	defer func() {
		if err := recover(); err != nil {
			config.LoggerFrom(r.Context()).WithField("panic", err).Error("recovered from panic")
			middlewares.NewResponseWriter(w, r).Error(http.StatusInternalServerError, "internal server error")
		}
	}()
	next(w, r)
}

type AppHandlerFunc func(*config.AppContext, *middlewares.ResponseWriter, *http.Request)

type AppHandler struct {
	Context     *config.AppContext
	HandlerFunc AppHandlerFunc
}

func (a *AppHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.HandlerFunc(a.Context, middlewares.NewResponseWriter(w, r), r)
}

type Route struct {
	Path        string
	Handler     AppHandlerFunc
	Methods     []string
	IsProtected bool
}

func NewRouter(ctx *config.AppContext, routes []*Route) *mux.Router {
	router := mux.NewRouter()
	jwt := middlewares.NewJWTMiddleware([]byte(ctx.Config.JWTSecret))
	for _, r := range routes {
		handler := &AppHandler{Context: ctx, HandlerFunc: r.Handler}
		if r.IsProtected {
			router.Handle(r.Path, negroni.New(
				negroni.HandlerFunc(jwt.HandlerNext),
				negroni.Wrap(handler),
			)).Methods(r.Methods...)
			continue
		}
		router.Handle(r.Path, handler).Methods(r.Methods...)
	}
	return router
}

func GetAppContext() *ContextWrapper {
	log.SetFormatter(joonix.NewFormatter())
	var conf config.Configuration
	if err := envdecode.Decode(&conf); err != nil {
		log.WithError(err).Fatal("could not load the app configuration")
	}

	config.SetLogger(log.WithField("app", conf.AppName))

	return &ContextWrapper{
		Context: &config.AppContext{
			Config: conf,
		},
	}
}

type ContextWrapper struct {
	Context *config.AppContext
}

func (wrapper *ContextWrapper) CreateMySQLConnection() {
	conn, err := config.CreateConnectionSQL(wrapper.Context.Config.SQL)
	if err != nil {
		log.Fatal(err)
	}
	conn.SetConnMaxLifetime(time.Minute * 5)
	wrapper.Context.SQLConn = conn
	sqlConf := wrapper.Context.Config.SQL
	wrapper.Context.DB, err = db.New(conn, sqlConf.ConnectRetries, sqlConf.ConnectWait)
	if err != nil {
		log.WithFields(log.Fields{
			"error": err,
		}).Fatal("mysql: failed to connect")
	}
}

func (wrapper *ContextWrapper) CreateSMTPConnection() {
	conn := config.CreateNewConnectionSMTP(wrapper.Context.Config.SMTP)
	if conn == nil {
		log.Fatal(errors.Errorf("failed connecting SMTP"))
	}
	wrapper.Context.SMTP = conn
}

func (wrapper *ContextWrapper) CreateRazorpayIntegration() {
	rp := config.CreateRazorpayIntegration(wrapper.Context.Config.Razorpay)
	if rp == nil {
		log.Fatal(errors.Errorf("failed to create razorpay integration"))
	}
	wrapper.Context.Razorpay = rp
}

func (wrapper *ContextWrapper) CreateRedisConnection() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := config.CreateRedisConnection(ctx, wrapper.Context.Config.Redis)
	if err != nil {
		log.WithError(err).Fatal("redis: failed to connect")
	}
	wrapper.Context.Redis = client
}

func (wrapper *ContextWrapper) CreateNewSessionS3() {
	session, err := config.CreateNewSessionS3(wrapper.Context.Config.AwsS3)
	if err != nil {
		log.Fatal(errors.Errorf("failed to create new session s3 - %s", err.Error()))
	}
	if session == nil {
		log.Fatal(errors.Errorf("nil session s3"))
	}
	wrapper.Context.AwsS3 = session
	wrapper.Context.Images = helpers.NewImageStorage(session, wrapper.Context.Config.AwsS3.S3Bucket, wrapper.Context.Config.AwsS3.S3PathImage)
}

// CreateNotificationQueue builds the mail queue. It needs the database and SMTP connections.
func (wrapper *ContextWrapper) CreateNotificationQueue() {
	conf := wrapper.Context.Config
	logger := config.GetLogger()

	mailer := notifications.NewMailer(wrapper.Context.DB, wrapper.Context.SMTP, notifications.MailerConfig{
		EmailFrom:     conf.Mail.EmailFrom,
		NameFrom:      conf.Mail.NameFrom,
		AttachReceipt: conf.Mail.AttachReceipt,
	}, logger)

	wrapper.Context.Notifications = notifications.NewQueue(mailer, wrapper.Context.DB, logger, notifications.Options{
		Workers:     conf.Notifications.Workers,
		BufferSize:  conf.Notifications.BufferSize,
		MaxAttempts: conf.Notifications.MaxAttempts,
		RetryDelay:  conf.Notifications.RetryDelay,
	})
}

// CreateServices wires the domain services over the connections created before.
func (wrapper *ContextWrapper) CreateServices() {
	ctx := wrapper.Context
	logger := config.GetLogger()

	locker := services.NewRedisLocker(ctx.Redis, ctx.Config.Redis.Prefix)
	ctx.Payments = services.NewPaymentService(ctx.DB, ctx.Razorpay, ctx.Notifications, locker, ctx.Config.Razorpay.KeySecret, ctx.Config.Redis.LockTTL, logger)
	ctx.Ambulances = services.NewAmbulanceService(ctx.DB, logger)
	ctx.Appointments = services.NewAppointmentService(ctx.DB, ctx.Notifications, logger)
}

// Close releases every connection held by the context.
func (wrapper *ContextWrapper) Close() {
	if wrapper.Context.SQLConn != nil {
		wrapper.Context.SQLConn.Close()
	}
	if wrapper.Context.Redis != nil {
		wrapper.Context.Redis.Close()
	}
}

// UpServer serves until SIGINT or SIGTERM, then drains requests and pending notifications.
func UpServer(routes []*Route, wrapper *ContextWrapper) {
	server, err := createServer(wrapper.Context, routes)
	if err != nil {
		log.Fatal(err)
	}
	defer wrapper.Close()

	workersCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	if wrapper.Context.Notifications != nil {
		wrapper.Context.Notifications.Start(workersCtx)
	}

	log.Info("Environment " + wrapper.Context.Config.Environment)
	log.Info("Listening on " + server.Addr)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("server stopped")
		}
	case sig := <-stop:
		log.WithField("signal", sig.String()).Info("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("failed shutting down server")
	}

	if wrapper.Context.Notifications != nil {
		wrapper.Context.Notifications.Stop()
		log.WithField("stats", wrapper.Context.Notifications.Stats()).Info("notification queue drained")
	}
}

func createServer(context *config.AppContext, routes []*Route) (*http.Server, error) {
	n := negroni.New()
	c := cors.New(cors.Options{
		AllowedOrigins: context.Config.Origins(),
		AllowedMethods: []string{"GET", "POST", "DELETE", "PUT", "PATCH", "HEAD"},
		AllowedHeaders: []string{"Origin", "X-Requested-With", "Content-Type", "Accept", "Accept-Language", "Authorization", "X-Request-ID"},
	})
	n.Use(c)
	n.Use(negroni.HandlerFunc(middlewares.LoggerRequest))
	n.UseFunc(recoveryHandler)
	n.Use(middlewares.UserMiddleware())
	n.UseHandler(NewRouter(context, routes))

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", context.Config.Port),
		ReadTimeout:  time.Duration(context.Config.Timeout) * time.Second,
		WriteTimeout: time.Duration(context.Config.Timeout) * time.Second,
		Handler:      n,
	}, nil
}
