package config

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/jmoiron/sqlx"
	"github.com/medbridge/backend/db"
	"github.com/medbridge/backend/helpers"
	"github.com/medbridge/backend/notifications"
	"github.com/medbridge/backend/razorpay"
	"github.com/medbridge/backend/services"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

type Configuration struct {
	JWTSecret      string        `env:"JWT_SECRET,required"`
	TokenTTL       time.Duration `env:"TOKEN_TTL,default=24h"`
	Port           int           `env:"PORT,default=3001"`
	Timeout        int           `env:"TIMEOUT,default=10"`
	SQL            database
	SMTP           smtp
	AwsS3          awsS3
	Razorpay       razorpayConf
	Redis          redisConf
	Mail           mail
	Notifications  notificationsConf
	Environment    string `env:"ENVIRONMENT,default=development"`
	AllowedOrigins string `env:"ALLOWED_ORIGINS,default=*"`
	AppName        string `env:"APP_NAME,default=medbridge"`
}

type database struct {
	URL            string        `env:"DATA_BASE_URL,required"`
	Name           string        `env:"DATA_BASE_NAME,required"`
	User           string        `env:"DATA_BASE_USER,required"`
	Port           int           `env:"DATA_BASE_PORT,default=3306"`
	Password       string        `env:"DATA_BASE_PASSWORD,required"`
	OpenConnection int           `env:"DATA_BASE_MAX_OPEN_CONNECTION,default=5"`
	ConnectRetries int           `env:"DATA_BASE_CONNECT_RETRIES,default=3"`
	ConnectWait    time.Duration `env:"DATA_BASE_CONNECT_WAIT,default=1s"`
}

type smtp struct {
	SMTPHost     string `env:"SMTP_HOST,required"`
	SMTPPort     int    `env:"SMTP_PORT,default=587"`
	SMTPUser     string `env:"SMTP_USER,required"`
	SMTPPassword string `env:"SMTP_PASSWORD,required"`
}

type razorpayConf struct {
	KeyID     string `env:"RAZORPAY_KEY_ID,required"`
	KeySecret string `env:"RAZORPAY_KEY_SECRET,required"`
	Currency  string `env:"RAZORPAY_CURRENCY,default=INR"`
}

type awsS3 struct {
	S3Region    string `env:"S3_REGION,required"`
	S3Bucket    string `env:"S3_BUCKET,required"`
	S3Url       string `env:"S3_URL"`
	S3PathImage string `env:"S3_PATH_IMAGE,default=doctors"`
}

type redisConf struct {
	Addr     string        `env:"REDIS_ADDR,default=localhost:6379"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB,default=0"`
	Prefix   string        `env:"REDIS_PREFIX,default=medbridge:"`
	LockTTL  time.Duration `env:"REDIS_LOCK_TTL,default=30s"`
}

type mail struct {
	NameFrom      string `env:"MAIL_NAME_FROM,default=MedBridge Healthcare"`
	EmailFrom     string `env:"MAIL_EMAIL_FROM,required"`
	AttachReceipt bool   `env:"MAIL_ATTACH_RECEIPT,default=false"`
}

type notificationsConf struct {
	Workers     int           `env:"NOTIFICATIONS_WORKERS,default=2"`
	BufferSize  int           `env:"NOTIFICATIONS_BUFFER,default=100"`
	MaxAttempts int           `env:"NOTIFICATIONS_MAX_ATTEMPTS,default=3"`
	RetryDelay  time.Duration `env:"NOTIFICATIONS_RETRY_DELAY,default=500ms"`
}

type AppContext struct {
	Config        Configuration
	SQLConn       *sqlx.DB
	DB            db.Storage
	SMTP          *gomail.Dialer
	AwsS3         *session.Session
	Images        helpers.ImageStore
	Razorpay      *razorpay.RP
	Redis         *redis.Client
	Notifications *notifications.Queue
	Payments      *services.PaymentService
	Ambulances    *services.AmbulanceService
	Appointments  *services.AppointmentService
}

func CreateConnectionSQL(conf database) (*sqlx.DB, error) {
	conn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true", conf.User, conf.Password, conf.URL, strconv.Itoa(conf.Port), conf.Name)
	connection, err := sqlx.Connect("mysql", conn)
	if err != nil {
		return nil, err
	}
	connection.SetMaxOpenConns(conf.OpenConnection)
	return connection, nil
}

func CreateNewConnectionSMTP(conf smtp) *gomail.Dialer {
	return gomail.NewDialer(conf.SMTPHost, conf.SMTPPort, conf.SMTPUser, conf.SMTPPassword)
}

func CreateRazorpayIntegration(conf razorpayConf) *razorpay.RP {
	return razorpay.New(conf.KeyID, conf.KeySecret, conf.Currency)
}

func CreateRedisConnection(ctx context.Context, conf redisConf) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Addr,
		Password: conf.Password,
		DB:       conf.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

func CreateNewSessionS3(conf awsS3) (*session.Session, error) {
	cfg := &aws.Config{Region: aws.String(conf.S3Region)}
	if conf.S3Url != "" {
		cfg.Endpoint = aws.String(conf.S3Url)
		cfg.S3ForcePathStyle = aws.Bool(true)
	}
	return session.NewSession(cfg)
}

// Origins splits ALLOWED_ORIGINS on commas.
func (c Configuration) Origins() []string {
	var origins []string
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

var logger = log.NewEntry(log.StandardLogger())

// SetLogger replaces the base logger every request logger derives from.
func SetLogger(newLogger *log.Entry) {
	logger = newLogger
}

func GetLogger() *log.Entry {
	return logger
}

type loggerKey struct{}

func WithLogger(ctx context.Context, entry *log.Entry) context.Context {
	return context.WithValue(ctx, loggerKey{}, entry)
}

// LoggerFrom returns the request logger stored in ctx, or the base logger.
func LoggerFrom(ctx context.Context) *log.Entry {
	if entry, ok := ctx.Value(loggerKey{}).(*log.Entry); ok {
		return entry
	}
	return logger
}
