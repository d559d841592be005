package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"netadmin-agent/internal/domain/errors"
	"netadmin-agent/internal/domain/interfaces"
	"netadmin-agent/internal/infrastructure/metrics"

	"github.com/sirupsen/logrus"
)

var schemas = map[string]string{
	DriverSQLite: `
		CREATE TABLE IF NOT EXISTS config_snapshots (
			id                  INTEGER PRIMARY KEY AUTOINCREMENT,
			domain              TEXT NOT NULL,
			version             INTEGER NOT NULL,
			payload             BLOB NOT NULL,
			modified_interfaces TEXT NOT NULL DEFAULT '',
			checkpoint          INTEGER NOT NULL DEFAULT 0,
			created_at          INTEGER NOT NULL,
			UNIQUE (domain, version)
		)`,
	DriverMySQL: `
		CREATE TABLE IF NOT EXISTS config_snapshots (
			id                  BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
			domain              VARCHAR(32) NOT NULL,
			version             INT NOT NULL,
			payload             LONGBLOB NOT NULL,
			modified_interfaces TEXT NOT NULL,
			checkpoint          TINYINT(1) NOT NULL DEFAULT 0,
			created_at          BIGINT NOT NULL,
			UNIQUE KEY uq_domain_version (domain, version)
		)`,
}

const selectColumns = `SELECT id, domain, version, payload, modified_interfaces, checkpoint, created_at FROM config_snapshots`

// SQLRepository는 database/sql 기반의 SnapshotRepository 구현체입니다.
// sqlite와 mysql 모두 같은 쿼리를 사용하고 스키마만 다릅니다.
type SQLRepository struct {
	db     *sql.DB
	clock  interfaces.Clock
	logger *logrus.Logger
}

// NewSQLRepository는 스키마를 준비하고 새로운 SQLRepository를 생성합니다
func NewSQLRepository(ctx context.Context, db *sql.DB, driver string, clock interfaces.Clock, logger *logrus.Logger) (*SQLRepository, error) {
	schema, ok := schemas[driver]
	if !ok {
		return nil, errors.NewValidationError(fmt.Sprintf("unsupported store driver: %s", driver), nil)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, errors.NewInternalError("스키마 생성 실패", err)
	}
	return &SQLRepository{db: db, clock: clock, logger: logger}, nil
}

var _ interfaces.SnapshotRepository = (*SQLRepository)(nil)

// Save는 도메인의 다음 버전으로 스냅샷을 저장합니다
func (r *SQLRepository) Save(ctx context.Context, snapshot *interfaces.Snapshot) (*interfaces.Snapshot, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.NewInternalError("트랜잭션 시작 실패", err)
	}
	defer tx.Rollback()

	var version int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM config_snapshots WHERE domain = ?`,
		string(snapshot.Domain),
	).Scan(&version)
	if err != nil {
		return nil, errors.NewInternalError("버전 조회 실패", err)
	}

	saved := *snapshot
	saved.Version = version + 1
	saved.CreatedAt = r.clock.Now().UTC()
	saved.ModifiedInterfaces = append([]string(nil), snapshot.ModifiedInterfaces...)

	result, err := tx.ExecContext(ctx,
		`INSERT INTO config_snapshots (domain, version, payload, modified_interfaces, checkpoint, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		string(saved.Domain),
		saved.Version,
		saved.Payload,
		strings.Join(saved.ModifiedInterfaces, ","),
		boolToInt(saved.Checkpoint),
		saved.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return nil, errors.NewInternalError("스냅샷 저장 실패", err)
	}
	if saved.ID, err = result.LastInsertId(); err != nil {
		return nil, errors.NewInternalError("스냅샷 ID 확인 실패", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, errors.NewInternalError("트랜잭션 커밋 실패", err)
	}

	r.logger.WithFields(logrus.Fields{
		"domain":  saved.Domain,
		"version": saved.Version,
	}).Debug("스냅샷 저장 완료")
	return &saved, nil
}

// Latest는 도메인의 최신 스냅샷을 조회합니다
func (r *SQLRepository) Latest(ctx context.Context, domain interfaces.ConfigDomain) (*interfaces.Snapshot, error) {
	row := r.db.QueryRowContext(ctx,
		selectColumns+` WHERE domain = ? ORDER BY version DESC LIMIT 1`,
		string(domain),
	)
	snapshot, err := scanSnapshot(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("%s 스냅샷이 없음", domain))
	}
	if err != nil {
		return nil, errors.NewInternalError("데이터베이스 조회 실패", err)
	}
	return snapshot, nil
}

// Version은 특정 버전의 스냅샷을 조회합니다
func (r *SQLRepository) Version(ctx context.Context, domain interfaces.ConfigDomain, version int) (*interfaces.Snapshot, error) {
	row := r.db.QueryRowContext(ctx,
		selectColumns+` WHERE domain = ? AND version = ?`,
		string(domain), version,
	)
	snapshot, err := scanSnapshot(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("%s 스냅샷을 찾을 수 없음: version=%d", domain, version))
	}
	if err != nil {
		return nil, errors.NewInternalError("데이터베이스 조회 실패", err)
	}
	return snapshot, nil
}

// MarkCheckpoint는 스냅샷을 체크포인트로 표시합니다
func (r *SQLRepository) MarkCheckpoint(ctx context.Context, domain interfaces.ConfigDomain, version int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE config_snapshots SET checkpoint = 1 WHERE domain = ? AND version = ?`,
		string(domain), version,
	)
	if err != nil {
		return errors.NewInternalError("체크포인트 표시 실패", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternalError("영향받은 행 확인 실패", err)
	}
	// mysql은 값이 바뀌지 않으면 0을 반환하므로 존재 여부를 다시 확인합니다
	if rowsAffected == 0 {
		if _, err := r.Version(ctx, domain, version); err != nil {
			return err
		}
	}
	return nil
}

// Ping은 저장소 연결 상태를 확인하고 메트릭을 갱신합니다
func (r *SQLRepository) Ping(ctx context.Context) error {
	err := r.db.PingContext(ctx)
	metrics.SetStoreConnectionStatus(err == nil)
	if err != nil {
		return errors.NewInternalError("저장소 연결 실패", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (*interfaces.Snapshot, error) {
	var (
		snapshot   interfaces.Snapshot
		domain     string
		modified   string
		checkpoint int
		createdAt  int64
	)
	if err := row.Scan(
		&snapshot.ID,
		&domain,
		&snapshot.Version,
		&snapshot.Payload,
		&modified,
		&checkpoint,
		&createdAt,
	); err != nil {
		return nil, err
	}

	snapshot.Domain = interfaces.ConfigDomain(domain)
	snapshot.Checkpoint = checkpoint != 0
	snapshot.CreatedAt = time.UnixMilli(createdAt).UTC()
	if modified != "" {
		snapshot.ModifiedInterfaces = strings.Split(modified, ",")
	}
	return &snapshot, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
