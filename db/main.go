package db

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type Storage interface {
	UserStorage
	AppointmentStorage
	AmbulanceStorage
	PaymentStorage
	NotificationStorage
}

type db interface {
	NewTx() (Tx, error)
}

type conn interface {
	NamedExec(string, interface{}) (sql.Result, error)
	PrepareNamed(string) (*sqlx.NamedStmt, error)
	QueryRow(string, ...interface{}) *sql.Row
	Query(string, ...interface{}) (*sql.Rows, error)
	Exec(string, ...interface{}) (sql.Result, error)
}

type Tx interface {
	conn

	Commit() error
	Rollback() error
}

type transactorImpl struct {
	*sqlx.DB
}

func (t *transactorImpl) NewTx() (Tx, error) {
	return t.Beginx()
}

type DB struct {
	conn
	db
}

// New pings conn until it answers, up to retries more times with wait
// between attempts, and wraps it as the Storage.
func New(conn *sqlx.DB, retries int, wait time.Duration) (*DB, error) {
	var err error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			log.WithFields(log.Fields{
				"driver":       conn.DriverName(),
				"retries_left": retries - attempt,
				"error":        err,
			}).Warn("database not ready, retrying")
			time.Sleep(wait)
		}

		if err = conn.Ping(); err == nil {
			return &DB{conn, &transactorImpl{conn}}, nil
		}
	}

	return nil, errors.Wrapf(err, "failed to ping %s after %d attempts", conn.DriverName(), retries+1)
}
