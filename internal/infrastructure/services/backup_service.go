package services

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"netadmin-agent/internal/domain/constants"
	"netadmin-agent/internal/domain/errors"
	"netadmin-agent/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// backupDocument는 백업 파일의 YAML 구조입니다
type backupDocument struct {
	Domain             string     `yaml:"domain"`
	Version            int        `yaml:"version"`
	CreatedAt          time.Time  `yaml:"created_at"`
	ModifiedInterfaces []string   `yaml:"modified_interfaces,omitempty"`
	Config             *yaml.Node `yaml:"config,omitempty"`
}

// BackupService는 체크포인트 스냅샷을 타임스탬프가 붙은 YAML 파일로 보관합니다
type BackupService struct {
	fileSystem interfaces.FileSystem
	clock      interfaces.Clock
	logger     *logrus.Logger
	backupDir  string
	retention  int
}

// NewBackupService는 새로운 BackupService를 생성합니다.
// retention이 0 이하이면 오래된 백업을 지우지 않습니다.
func NewBackupService(
	fs interfaces.FileSystem,
	clock interfaces.Clock,
	logger *logrus.Logger,
	backupDir string,
	retention int,
) interfaces.BackupService {
	return &BackupService{
		fileSystem: fs,
		clock:      clock,
		logger:     logger,
		backupDir:  backupDir,
		retention:  retention,
	}
}

// CreateBackup은 스냅샷의 백업을 생성하고 보관 개수를 넘는 오래된 백업을 삭제합니다
func (s *BackupService) CreateBackup(ctx context.Context, snapshot *interfaces.Snapshot) error {
	if err := s.fileSystem.MkdirAll(s.backupDir, 0755); err != nil {
		return errors.NewInternalError("백업 디렉토리 생성 실패", err)
	}

	doc := backupDocument{
		Domain:             string(snapshot.Domain),
		Version:            snapshot.Version,
		CreatedAt:          snapshot.CreatedAt,
		ModifiedInterfaces: snapshot.ModifiedInterfaces,
	}
	var payload yaml.Node
	if err := yaml.Unmarshal(snapshot.Payload, &payload); err != nil {
		return errors.NewInternalError("스냅샷 내용 파싱 실패", err)
	}
	if payload.Kind == yaml.DocumentNode && len(payload.Content) > 0 {
		doc.Config = payload.Content[0]
	}
	content, err := yaml.Marshal(&doc)
	if err != nil {
		return errors.NewInternalError("백업 직렬화 실패", err)
	}

	// 예: network_20250108_150405_v000003.yaml
	timestamp := s.clock.Now().Format("20060102_150405")
	backupFileName := fmt.Sprintf("%s_%s_v%06d.yaml", snapshot.Domain, timestamp, snapshot.Version)
	backupPath := filepath.Join(s.backupDir, backupFileName)

	if err := s.fileSystem.WriteFile(backupPath, content, constants.SecretFilePermission); err != nil {
		return errors.NewInternalError("백업 파일 저장 실패", err)
	}

	s.logger.WithFields(logrus.Fields{
		"domain":      snapshot.Domain,
		"version":     snapshot.Version,
		"backup_path": backupPath,
	}).Info("설정 백업 생성 완료")

	return s.prune(snapshot.Domain)
}

// LatestBackup은 도메인의 가장 최근 백업 파일 경로를 반환합니다
func (s *BackupService) LatestBackup(ctx context.Context, domain interfaces.ConfigDomain) (string, error) {
	backupFiles, err := s.findBackupFiles(domain)
	if err != nil {
		return "", err
	}
	if len(backupFiles) == 0 {
		return "", errors.NewNotFoundError(fmt.Sprintf("%s 백업 파일을 찾을 수 없음", domain))
	}
	return filepath.Join(s.backupDir, backupFiles[len(backupFiles)-1]), nil
}

func (s *BackupService) prune(domain interfaces.ConfigDomain) error {
	if s.retention <= 0 {
		return nil
	}

	backupFiles, err := s.findBackupFiles(domain)
	if err != nil {
		return err
	}
	for len(backupFiles) > s.retention {
		oldest := filepath.Join(s.backupDir, backupFiles[0])
		if err := s.fileSystem.Remove(oldest); err != nil {
			s.logger.WithError(err).WithField("path", oldest).Warn("오래된 백업 삭제 실패")
		}
		backupFiles = backupFiles[1:]
	}
	return nil
}

// findBackupFiles는 도메인의 백업 파일들을 시간순으로 정렬해 반환합니다
func (s *BackupService) findBackupFiles(domain interfaces.ConfigDomain) ([]string, error) {
	if !s.fileSystem.Exists(s.backupDir) {
		return []string{}, nil
	}

	files, err := s.fileSystem.ListFiles(s.backupDir)
	if err != nil {
		return nil, errors.NewInternalError("백업 디렉토리 읽기 실패", err)
	}

	var backupFiles []string
	prefix := string(domain) + "_"
	for _, file := range files {
		if strings.HasPrefix(file, prefix) && strings.HasSuffix(file, ".yaml") {
			backupFiles = append(backupFiles, file)
		}
	}

	// 파일명에 타임스탬프와 버전이 고정 폭으로 들어가므로 이름순이 시간순입니다
	sort.Strings(backupFiles)
	return backupFiles, nil
}
