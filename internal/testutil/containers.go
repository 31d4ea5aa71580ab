// This file is a helper for running tests against real services with testcontainers.
// It is used by the integration tests and by the cmd/testcontainers standalone executable.
// Expects environment variables to be loaded from .env files.
//

package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	_ "github.com/go-sql-driver/mysql"
	"github.com/lp-dev-web/lebonrecoin/internal/config"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	defaultMinIOImage = "minio/minio:latest"
	minioUser         = "lebonrecoin"
	minioPassword     = "lebonrecoin-secret"
)

// TestContainers holds the running service containers
type TestContainers struct {
	Network        *testcontainers.DockerNetwork
	DBContainer    testcontainers.Container
	MinIOContainer testcontainers.Container

	// Config points at the mapped ports of the running containers
	Config *config.Config
}

// Terminate stops every started container
func (tc *TestContainers) Terminate(t *testing.T) {
	ctx := context.Background()
	if tc.MinIOContainer != nil {
		if err := tc.MinIOContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate MinIO: %v", err)
		}
	}
	if tc.DBContainer != nil {
		if err := tc.DBContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate database: %v", err)
		}
	}
	if tc.Network != nil {
		if err := tc.Network.Remove(ctx); err != nil {
			logMessage(t, "Failed to remove network: %v", err)
		}
	}
}

// CreateAllTestContainers starts the database selected by DB_TYPE/DB_IMAGE and, when
// withS3 is set, a MinIO server for the s3 storage driver
func CreateAllTestContainers(t *testing.T, withS3 bool) (*TestContainers, error) {
	ctx := context.Background()
	tc := &TestContainers{}

	nw, err := network.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create network: %w", err)
	}
	tc.Network = nw

	cfg := &config.Config{
		Port:              getenv("PORT", "3000"),
		DBType:            getenv("DB_TYPE", "mariadb"),
		DBDatabase:        getenv("DB_DATABASE", "lebonrecoin"),
		DBUser:            getenv("DB_USER", "lebonrecoin"),
		DBPassword:        getenv("DB_PASSWORD", "lebonrecoin"),
		DBConnectionLimit: 5,
		DBLogLevel:        "silent",
		SeedReferenceData: true,
		StorageDriver:     "local",
		UploadMaxBytes:    5 * 1024 * 1024,
		SessionSecret:     "testcontainers-secret",
		SessionTTL:        time.Hour,
		BcryptCost:        4,
		LogLevel:          "info",
	}
	tc.Config = cfg

	if err := startDatabase(ctx, t, tc, cfg); err != nil {
		tc.Terminate(t)
		return nil, err
	}

	if withS3 {
		if err := startMinIO(ctx, t, tc, cfg); err != nil {
			tc.Terminate(t)
			return nil, err
		}
	}

	logMessage(t, "testcontainers started successfully")
	return tc, nil
}

func startDatabase(ctx context.Context, t *testing.T, tc *TestContainers, cfg *config.Config) error {
	dbImage := os.Getenv("DB_IMAGE")
	if dbImage == "" {
		return fmt.Errorf("DB_IMAGE is not set")
	}
	logPull(ctx, t, dbImage)

	tcpDbPort, err := nat.NewPort("tcp", getenv("DB_PORT", defaultPort(cfg.DBType)))
	if err != nil {
		return fmt.Errorf("failed to create DB port: %w", err)
	}

	dbContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        dbImage,
			ExposedPorts: []string{string(tcpDbPort)},
			Env:          getDBInitEnvMap(cfg),
			WaitingFor:   wait.ForListeningPort(tcpDbPort).WithStartupTimeout(60 * time.Second),
			Networks:     []string{tc.Network.Name},
			NetworkAliases: map[string][]string{
				tc.Network.Name: {"database"},
			},
			HostConfigModifier: func(hostConfig *container.HostConfig) {
				// Throwaway data directories
				hostConfig.Tmpfs = map[string]string{
					"/var/lib/mysql":           "rw",
					"/var/lib/postgresql/data": "rw",
				}
			},
		},
		Started: true,
	})
	if err != nil {
		return fmt.Errorf("failed to start database: %w", err)
	}
	tc.DBContainer = dbContainer

	dbHost, err := dbContainer.Host(ctx)
	if err != nil {
		return err
	}
	dbPort, err := dbContainer.MappedPort(ctx, tcpDbPort)
	if err != nil {
		return err
	}
	cfg.DBHost = dbHost
	cfg.DBPort = dbPort.Port()
	logMessage(t, "DB_HOST=%s DB_PORT=%s", cfg.DBHost, cfg.DBPort)

	switch cfg.DBType {
	case "mysql", "mariadb":
		return performMySQLDBInit(cfg)
	}
	return nil
}

func startMinIO(ctx context.Context, t *testing.T, tc *TestContainers, cfg *config.Config) error {
	minioImage := getenv("MINIO_IMAGE", defaultMinIOImage)
	logPull(ctx, t, minioImage)

	tcpPort, err := nat.NewPort("tcp", "9000")
	if err != nil {
		return err
	}
	minio, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        minioImage,
			ExposedPorts: []string{string(tcpPort)},
			Cmd:          []string{"server", "/data"},
			Env: map[string]string{
				"MINIO_ROOT_USER":     minioUser,
				"MINIO_ROOT_PASSWORD": minioPassword,
			},
			WaitingFor: wait.ForHTTP("/minio/health/live").WithPort(tcpPort).WithStartupTimeout(60 * time.Second),
			Networks:   []string{tc.Network.Name},
		},
		Started: true,
	})
	if err != nil {
		return fmt.Errorf("failed to start MinIO: %w", err)
	}
	tc.MinIOContainer = minio

	host, err := minio.Host(ctx)
	if err != nil {
		return err
	}
	port, err := minio.MappedPort(ctx, tcpPort)
	if err != nil {
		return err
	}

	cfg.StorageDriver = "s3"
	cfg.S3Region = "us-east-1"
	cfg.S3Bucket = "lebonrecoin-test"
	cfg.S3AccessKey = minioUser
	cfg.S3SecretKey = minioPassword
	cfg.S3Endpoint = fmt.Sprintf("http://%s:%s", host, port.Port())
	logMessage(t, "S3_ENDPOINT=%s", cfg.S3Endpoint)
	return nil
}

func defaultPort(dbType string) string {
	switch dbType {
	case "postgres", "postgresql":
		return "5432"
	case "sqlserver", "mssql":
		return "1433"
	}
	return "3306"
}

func getDBInitEnvMap(cfg *config.Config) map[string]string {
	switch cfg.DBType {
	case "postgres", "postgresql":
		return map[string]string{
			"POSTGRES_PASSWORD": cfg.DBPassword,
			"POSTGRES_USER":     cfg.DBUser,
			"POSTGRES_DB":       cfg.DBDatabase,
		}
	case "mariadb", "mysql":
		return map[string]string{
			"MYSQL_ROOT_PASSWORD": getenv("DB_ROOT_PASSWORD", "root"),
			"MYSQL_DATABASE":      cfg.DBDatabase,
			"MYSQL_USER":          cfg.DBUser,
			"MYSQL_PASSWORD":      cfg.DBPassword,
		}
	}
	return nil
}

// performMySQLDBInit waits for the server and makes sure the database exists with a utf8mb4 charset
func performMySQLDBInit(cfg *config.Config) error {
	db, err := sql.Open("mysql", fmt.Sprintf("root:%s@tcp(%s:%s)/", getenv("DB_ROOT_PASSWORD", "root"), cfg.DBHost, cfg.DBPort))
	if err != nil {
		return fmt.Errorf("failed to connect to MariaDB for setup: %w", err)
	}
	defer db.Close()

	// Wait for connection to be really ready
	for i := 0; i < 30; i++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(1 * time.Second)
	}
	if err != nil {
		return fmt.Errorf("MariaDB not ready after 30 seconds: %w", err)
	}

	_, err = db.Exec(fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci", cfg.DBDatabase))
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", cfg.DBDatabase, err)
	}
	_, err = db.Exec(fmt.Sprintf("GRANT ALL PRIVILEGES ON %s.* TO '%s'@'%%'", cfg.DBDatabase, cfg.DBUser))
	if err != nil {
		return fmt.Errorf("failed to grant privileges on %s: %w", cfg.DBDatabase, err)
	}
	return nil
}

// logPull reports whether image has to be pulled before the container starts
func logPull(ctx context.Context, t *testing.T, imageName string) {
	exists, err := imageExists(ctx, imageName)
	if err != nil {
		logMessage(t, "Could not list local images: %v", err)
		return
	}
	if !exists {
		logMessage(t, "Image %s is not available locally, pulling...", imageName)
	}
}

func imageExists(ctx context.Context, imageName string) (bool, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return false, err
	}
	defer cli.Close()

	images, err := cli.ImageList(ctx, image.ListOptions{})
	if err != nil {
		return false, err
	}

	for _, image := range images {
		for _, tag := range image.RepoTags {
			if tag == imageName {
				return true, nil
			}
		}
	}

	return false, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func logMessage(t *testing.T, format string, args ...any) {
	if t != nil {
		t.Logf(format, args...)
	} else {
		fmt.Printf(format+"\n", args...)
	}
}
