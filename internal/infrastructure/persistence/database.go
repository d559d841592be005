// Package persistence는 버전이 붙은 설정 스냅샷을 SQL에 저장합니다
package persistence

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"netadmin-agent/internal/domain/errors"

	"github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// Supported store drivers.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// MySQLConfig는 원격 저장소 연결 설정입니다
type MySQLConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Database        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// OpenSQLite는 로컬 스냅샷 데이터베이스를 열거나 생성합니다
func OpenSQLite(path string, logger *logrus.Logger) (*sql.DB, error) {
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, errors.NewInternalError("failed to create database directory", err)
		}
		dsn = fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	}

	db, err := sql.Open(DriverSQLite, dsn)
	if err != nil {
		return nil, errors.NewInternalError("failed to open sqlite database", err)
	}

	// 단일 writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.NewInternalError("failed to ping sqlite database", err)
	}

	logger.WithField("path", path).Info("snapshot database opened")
	return db, nil
}

// OpenMySQL은 원격 MySQL 스냅샷 데이터베이스에 연결합니다
func OpenMySQL(cfg MySQLConfig, logger *logrus.Logger) (*sql.DB, error) {
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = cfg.Host + ":" + cfg.Port
	mc.DBName = cfg.Database
	mc.ParseTime = true

	db, err := sql.Open(DriverMySQL, mc.FormatDSN())
	if err != nil {
		return nil, errors.NewInternalError("failed to open mysql database", err)
	}

	maxOpen, maxIdle, lifetime := cfg.MaxOpenConns, cfg.MaxIdleConns, cfg.ConnMaxLifetime
	if maxOpen <= 0 {
		maxOpen = 10
	}
	if maxIdle <= 0 {
		maxIdle = 5
	}
	if lifetime <= 0 {
		lifetime = 5 * time.Minute
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(lifetime)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.NewInternalError("failed to ping mysql database", err)
	}

	logger.WithFields(logrus.Fields{
		"host":     cfg.Host,
		"database": cfg.Database,
	}).Info("snapshot database connected")
	return db, nil
}
