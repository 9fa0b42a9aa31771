package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pardaaf/backoffice/pkg/dbpool"
)

// Backup cadences double as remote directory names.
const (
	cadenceDaily   = "daily"
	cadenceWeekly  = "weekly"
	cadenceMonthly = "monthly"
	cadenceYearly  = "yearly"
)

// retention is how long each cadence keeps its dumps on the remote.
var retention = map[string]time.Duration{
	cadenceDaily:   30 * 24 * time.Hour,
	cadenceWeekly:  26 * 7 * 24 * time.Hour,
	cadenceMonthly: 2 * 365 * 24 * time.Hour,
	cadenceYearly:  10 * 365 * 24 * time.Hour,
}

// BackupConfig locates the dump and copy tools and the remote target.
type BackupConfig struct {
	PgDumpPath string `env:"BACKUP_PG_DUMP_PATH" envDefault:"pg_dump"`
	RclonePath string `env:"BACKUP_RCLONE_PATH" envDefault:"rclone"`
	Remote     string `env:"BACKUP_RCLONE_REMOTE" envDefault:"r2:pardaaf_backups"`
	TempDir    string `env:"BACKUP_TEMP_DIR" envDefault:"/tmp"`
}

// runBackup dumps every tenant database plus the main one and copies each
// dump to the remote under <remote>/<db>/<cadence>/. A failing database
// aborts that database only.
func (s *Service) runBackup(cadence string) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if err := s.backupOne(ctx, dbpool.MainDatabase, cadence); err != nil {
			s.logger.ErrorContext(ctx, "main database backup failed",
				slog.String("cadence", cadence),
				slog.String("error", err.Error()))
		}
		return s.eachTenant(ctx, cadence+" backup", func(ctx context.Context, dbName string) error {
			return s.backupOne(ctx, dbName, cadence)
		})
	}
}

func (s *Service) backupOne(ctx context.Context, dbName, cadence string) error {
	stamp := time.Now().Format("2006-01-02_150405")
	fileName := fmt.Sprintf("%s-%s.dump", dbName, stamp)
	tempPath := filepath.Join(s.backup.TempDir, fileName)
	defer os.Remove(tempPath)

	dump := exec.CommandContext(ctx, s.backup.PgDumpPath,
		"-Fc",
		"-h", s.dbCfg.Host,
		"-p", strconv.Itoa(s.dbCfg.Port),
		"-U", s.dbCfg.User,
		"-f", tempPath,
		dbName,
	)
	dump.Env = append(os.Environ(), "PGPASSWORD="+s.dbCfg.Password)
	if out, err := dump.CombinedOutput(); err != nil {
		return fmt.Errorf("pg_dump %s: %w: %s", dbName, err, out)
	}

	remote := fmt.Sprintf("%s/%s/%s/%s", s.backup.Remote, dbName, cadence, fileName)
	copyCmd := exec.CommandContext(ctx, s.backup.RclonePath, "copyto", tempPath, remote)
	if out, err := copyCmd.CombinedOutput(); err != nil {
		return fmt.Errorf("rclone copyto %s: %w: %s", remote, err, out)
	}
	return nil
}

// runBackupCleanup prunes remote dumps older than the cadence's retention
// window, one hour after the corresponding backup ran.
func (s *Service) runBackupCleanup(cadence string) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		minAge := retention[cadence]

		cleanup := func(dbName string) error {
			remote := fmt.Sprintf("%s/%s/%s", s.backup.Remote, dbName, cadence)
			prune := exec.CommandContext(ctx, s.backup.RclonePath,
				"delete", remote, "--min-age", minAge.String())
			if out, err := prune.CombinedOutput(); err != nil {
				return fmt.Errorf("rclone delete %s: %w: %s", remote, err, out)
			}
			return nil
		}

		if err := cleanup(dbpool.MainDatabase); err != nil {
			s.logger.ErrorContext(ctx, "main database backup cleanup failed",
				slog.String("cadence", cadence),
				slog.String("error", err.Error()))
		}
		return s.eachTenant(ctx, cadence+" backup cleanup", func(_ context.Context, dbName string) error {
			return cleanup(dbName)
		})
	}
}
