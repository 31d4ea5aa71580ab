package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/lp-dev-web/lebonrecoin/internal/config"
	"github.com/lp-dev-web/lebonrecoin/internal/storage"
	"github.com/lp-dev-web/lebonrecoin/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status       string            `json:"status"`
	Database     string            `json:"database"`
	Storage      string            `json:"storage"`
	Details      map[string]string `json:"details,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
}

func (r *HealthCheckResult) fail(msg string) {
	r.Status = "unhealthy"
	if r.ErrorMessage == "" {
		r.ErrorMessage = msg
	} else {
		r.ErrorMessage += "; " + msg
	}
}

// HealthCheck performs a comprehensive health check of the service
func HealthCheck(ctx context.Context, cfg *config.Config, db *gorm.DB, store storage.Storage, log *zap.Logger) HealthCheckResult {
	result := HealthCheckResult{
		Status:  "healthy",
		Details: make(map[string]string),
	}

	// Networked databases: make sure the server answers before going through the pool
	if !strings.HasPrefix(cfg.DBType, "sqlite") {
		if err := utils.PingDatabaseHost(cfg.DBType, cfg.DBHost, cfg.DBPort); err != nil {
			result.Details["database_host_error"] = err.Error()
			log.Warn("health check - database host unreachable", zap.Error(err))
		}
	}

	// Check database connectivity
	sqlDB, err := db.DB()
	if err != nil {
		result.Database = "error"
		result.Details["database_error"] = err.Error()
		result.fail(fmt.Sprintf("Database connection error: %v", err))
		log.Error("health check failed - database connection", zap.Error(err))
	} else if err := sqlDB.PingContext(ctx); err != nil {
		result.Database = "unreachable"
		result.Details["database_ping_error"] = err.Error()
		result.fail(fmt.Sprintf("Database ping failed: %v", err))
		log.Error("health check failed - database ping", zap.Error(err))
	} else {
		result.Database = "ok"
		result.Details["database_type"] = cfg.DBType
		result.Details["database_name"] = cfg.DBDatabase
	}

	// Check picture storage
	if err := store.Ping(ctx); err != nil {
		result.Storage = "unreachable"
		result.Details["storage_error"] = err.Error()
		result.fail(fmt.Sprintf("Storage ping failed: %v", err))
		log.Error("health check failed - storage ping", zap.Error(err))
	} else {
		result.Storage = "ok"
		result.Details["storage_driver"] = cfg.StorageDriver
	}

	if result.Status == "healthy" {
		log.Info("health check passed - all systems operational")
	}

	return result
}
