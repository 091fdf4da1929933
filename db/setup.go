package db

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/devflow-dev/devflow/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "postgres", "postgresql":
		return postgres.Open(dsn), nil
	case "mysql":
		return mysql.Open(dsn), nil
	case "sqlite", "sqlite3":
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// Connect opens a pool for the given driver. Unique and foreign key
// violations come back as gorm.ErrDuplicatedKey / gorm.ErrForeignKeyViolated.
func Connect(driver, dsn string) (*gorm.DB, error) {
	return open(driver, dsn, newLogger(os.Stdout))
}

// newLogger reports slow queries and failures. Lookups that find nothing are
// an ordinary outcome and are not logged.
func newLogger(w io.Writer) logger.Interface {
	return logger.New(log.New(w, "\r\n", log.LstdFlags), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

func open(driver, dsn string, l logger.Interface) (*gorm.DB, error) {
	d, err := dialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	conn, err := gorm.Open(d, &gorm.Config{
		TranslateError: true,
		Logger:         l,
	})
	if err != nil {
		return nil, err
	}

	return conn, nil
}

func MigrateDatabase(conn *gorm.DB) error {
	tables := []interface{}{
		&models.User{},
		&models.Account{},
		&models.Project{},
		&models.Column{},
		&models.Card{},
	}

	for _, model := range tables {
		if err := conn.AutoMigrate(model); err != nil {
			return err
		}
	}

	return nil
}
