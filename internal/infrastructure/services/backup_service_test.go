package services

import (
	"context"
	"os"
	"testing"
	"time"

	"netadmin-agent/internal/domain/constants"
	"netadmin-agent/internal/domain/errors"
	"netadmin-agent/internal/domain/interfaces"
	"netadmin-agent/internal/mocks"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"gopkg.in/yaml.v3"
)

const backupDir = "/var/lib/netadmin/backups"

func TestBackupService_CreateBackup(t *testing.T) {
	ctx := context.Background()
	logger, _ := test.NewNullLogger()
	now := time.Date(2025, 1, 8, 15, 4, 5, 0, time.UTC)

	snapshot := &interfaces.Snapshot{
		Domain:             interfaces.DomainNetwork,
		Version:            3,
		Payload:            []byte("interfaces:\n  - name: wlan0\n"),
		ModifiedInterfaces: []string{"wlan0"},
		CreatedAt:          now,
	}

	tests := []struct {
		name       string
		retention  int
		existing   []string
		wantRemove []string
	}{
		{
			name:      "보관 개수 이내",
			retention: 5,
			existing:  []string{"network_20250108_150405_v000003.yaml"},
		},
		{
			name:      "보관 개수 초과 시 오래된 백업 삭제",
			retention: 2,
			existing: []string{
				"network_20250107_100000_v000001.yaml",
				"network_20250108_150405_v000003.yaml",
				"firewall_20250101_000000_v000001.yaml",
				"network_20250107_120000_v000002.yaml",
			},
			wantRemove: []string{backupDir + "/network_20250107_100000_v000001.yaml"},
		},
		{
			name:      "보관 개수 0은 무제한",
			retention: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			fs := mocks.NewMockFileSystem(ctrl)
			clock := mocks.NewMockClock(ctrl)
			clock.EXPECT().Now().Return(now)

			fs.EXPECT().MkdirAll(backupDir, os.FileMode(0755)).Return(nil)
			fs.EXPECT().WriteFile(backupDir+"/network_20250108_150405_v000003.yaml", gomock.Any(), os.FileMode(constants.SecretFilePermission)).
				DoAndReturn(func(path string, data []byte, perm os.FileMode) error {
					var doc struct {
						Domain  string `yaml:"domain"`
						Version int    `yaml:"version"`
						Config  struct {
							Interfaces []struct {
								Name string `yaml:"name"`
							} `yaml:"interfaces"`
						} `yaml:"config"`
					}
					require.NoError(t, yaml.Unmarshal(data, &doc))
					assert.Equal(t, "network", doc.Domain)
					assert.Equal(t, 3, doc.Version)
					require.Len(t, doc.Config.Interfaces, 1)
					assert.Equal(t, "wlan0", doc.Config.Interfaces[0].Name)
					return nil
				})
			if tt.retention > 0 {
				fs.EXPECT().Exists(backupDir).Return(true)
				fs.EXPECT().ListFiles(backupDir).Return(tt.existing, nil)
			}
			for _, path := range tt.wantRemove {
				fs.EXPECT().Remove(path).Return(nil)
			}

			service := NewBackupService(fs, clock, logger, backupDir, tt.retention)
			require.NoError(t, service.CreateBackup(ctx, snapshot))
		})
	}
}

func TestBackupService_LatestBackup(t *testing.T) {
	ctx := context.Background()
	logger, _ := test.NewNullLogger()

	t.Run("가장 최근 백업", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		fs := mocks.NewMockFileSystem(ctrl)
		fs.EXPECT().Exists(backupDir).Return(true)
		fs.EXPECT().ListFiles(backupDir).Return([]string{
			"firewall_20250109_000000_v000004.yaml",
			"firewall_20250101_000000_v000001.yaml",
			"network_20250110_000000_v000009.yaml",
		}, nil)

		path, err := NewBackupService(fs, nil, logger, backupDir, 0).LatestBackup(ctx, interfaces.DomainFirewall)
		require.NoError(t, err)
		assert.Equal(t, backupDir+"/firewall_20250109_000000_v000004.yaml", path)
	})

	t.Run("백업 디렉토리 없음", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		fs := mocks.NewMockFileSystem(ctrl)
		fs.EXPECT().Exists(backupDir).Return(false)

		_, err := NewBackupService(fs, nil, logger, backupDir, 0).LatestBackup(ctx, interfaces.DomainNetwork)
		assert.True(t, errors.IsNotFoundError(err))
	})
}
